package domain

import "strings"

// Network identifies a supported external ledger.
type Network string

const (
	// NetworkHedera is the hashgraph ledger. Account ids look like 0.0.12345.
	NetworkHedera Network = "hedera"
	// NetworkStellar is the federated payments ledger. Account ids are G... strkeys.
	NetworkStellar Network = "stellar"
)

// Networks lists every supported network in a stable order.
var Networks = []Network{NetworkHedera, NetworkStellar}

// ParseNetwork maps a case-insensitive name to a Network.
func ParseNetwork(s string) (Network, bool) {
	n := Network(strings.ToLower(strings.TrimSpace(s)))
	switch n {
	case NetworkHedera, NetworkStellar:
		return n, true
	}
	return "", false
}

// NativeAsset returns the code of the ledger's native currency.
func (n Network) NativeAsset() string {
	switch n {
	case NetworkHedera:
		return "HBAR"
	case NetworkStellar:
		return "XLM"
	}
	return ""
}

// Precision is the number of decimal places the ledger's native unit supports
// (tinybars for HBAR, stroops for XLM).
func (n Network) Precision() int32 {
	switch n {
	case NetworkHedera:
		return 8
	case NetworkStellar:
		return 7
	}
	return 0
}

func (n Network) String() string {
	return string(n)
}
