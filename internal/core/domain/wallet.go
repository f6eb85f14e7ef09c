package domain

import (
	"time"

	"github.com/google/uuid"
)

// WalletAccount is a custodial ledger account held for one user on one network.
// At most one exists per (UserID, Network).
type WalletAccount struct {
	ID                  uuid.UUID `json:"id"`
	UserID              uuid.UUID `json:"user_id"`
	Network             Network   `json:"network"`
	AccountID           string    `json:"account_id"`
	PublicKey           string    `json:"public_key"`
	EncryptedPrivateKey string    `json:"-"` // AES-256-GCM sealed, never expose
	LastTransactionRef  *string   `json:"last_transaction_ref,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SecretBinding is the associated data the private key is sealed with.
// A ciphertext moved to another user's or network's row will not open.
func (w *WalletAccount) SecretBinding() string {
	return WalletSecretBinding(w.UserID, w.Network)
}

// WalletSecretBinding builds the associated data for a wallet secret.
func WalletSecretBinding(userID uuid.UUID, network Network) string {
	return "wallet:" + userID.String() + ":" + string(network)
}
