package hedera

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"social-wallet-api/internal/adapter/ledger"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/pkg/apperror"

	"github.com/tidwall/gjson"
)

const maxMirrorBody = 4 << 20

// MirrorClient reads account history from the mirror node REST API.
type MirrorClient struct {
	baseURL string
	http    *http.Client
}

func NewMirrorClient(baseURL string, timeout time.Duration) *MirrorClient {
	return &MirrorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Transactions returns up to limit entries touching accountID, newest first.
// An account the mirror node does not know yields an empty list.
func (m *MirrorClient) Transactions(ctx context.Context, accountID string, limit int) ([]domain.LedgerTransaction, error) {
	q := url.Values{}
	q.Set("account.id", accountID)
	q.Set("limit", strconv.Itoa(limit))
	q.Set("order", "desc")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/v1/transactions?"+q.Encode(), nil)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("building mirror request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return []domain.LedgerTransaction{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.ErrLedgerUnavailable(fmt.Errorf("mirror node returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMirrorBody))
	if err != nil {
		return nil, apperror.ErrLedgerUnavailable(err)
	}
	if !gjson.ValidBytes(body) {
		return nil, apperror.ErrLedgerUnavailable(errors.New("mirror node returned malformed json"))
	}

	out := make([]domain.LedgerTransaction, 0, limit)
	gjson.GetBytes(body, "transactions").ForEach(func(_, tx gjson.Result) bool {
		if entry, ok := parseMirrorTransaction(tx, accountID); ok {
			out = append(out, entry)
		}
		return len(out) < limit
	})
	return out, nil
}

// parseMirrorTransaction normalizes one mirror record from the point of view
// of accountID. The counterparty is the largest opposite-sign transfer, so
// node and fee-collector credits are ignored.
func parseMirrorTransaction(tx gjson.Result, accountID string) (domain.LedgerTransaction, bool) {
	var own int64
	var involved bool
	transfers := tx.Get("transfers").Array()
	for _, t := range transfers {
		if t.Get("account").String() == accountID {
			own += t.Get("amount").Int()
			involved = true
		}
	}
	if !involved || own == 0 {
		return domain.LedgerTransaction{}, false
	}

	var counterparty string
	var counterAmount int64
	for _, t := range transfers {
		acct := t.Get("account").String()
		amt := t.Get("amount").Int()
		if acct == accountID || (amt < 0) == (own < 0) {
			continue
		}
		if abs(amt) > abs(counterAmount) {
			counterparty, counterAmount = acct, amt
		}
	}

	units := abs(own)
	if counterparty != "" && abs(counterAmount) < units {
		units = abs(counterAmount)
	}

	direction := domain.DirectionIncoming
	if own < 0 {
		direction = domain.DirectionOutgoing
	}

	var memo string
	if raw := tx.Get("memo_base64").String(); raw != "" {
		if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
			memo = string(decoded)
		}
	}

	return domain.LedgerTransaction{
		TransactionRef: normalizeTransactionID(tx.Get("transaction_id").String()),
		Timestamp:      parseConsensusTimestamp(tx.Get("consensus_timestamp").String()),
		Counterparty:   counterparty,
		AssetCode:      domain.NetworkHedera.NativeAsset(),
		Amount:         ledger.FromMinorUnits(units, domain.NetworkHedera.Precision()),
		Direction:      direction,
		Memo:           memo,
		Result:         tx.Get("result").String(),
	}, true
}

// normalizeTransactionID turns the mirror form 0.0.1001-1700000000-000000001
// into the SDK form 0.0.1001@1700000000.000000001 returned by transfers.
func normalizeTransactionID(id string) string {
	parts := strings.Split(id, "-")
	if len(parts) != 3 {
		return id
	}
	return parts[0] + "@" + parts[1] + "." + parts[2]
}

// parseConsensusTimestamp parses "seconds.nanoseconds".
func parseConsensusTimestamp(ts string) time.Time {
	secPart, nanoPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return time.Time{}
	}
	nanos, _ := strconv.ParseInt(nanoPart, 10, 64)
	return time.Unix(sec, nanos).UTC()
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Ping checks that the mirror node answers.
func (m *MirrorClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/v1/blocks?limit=1", nil)
	if err != nil {
		return err
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxMirrorBody))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mirror node returned %d", resp.StatusCode)
	}
	return nil
}
