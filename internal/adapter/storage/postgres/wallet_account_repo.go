package postgres

import (
	"context"
	"errors"
	"fmt"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// WalletAccountRepo implements ports.WalletAccountRepository.
// Uniqueness of (user_id, network) and (network, account_id) is enforced by
// table constraints, so concurrent creates have exactly one winner.
type WalletAccountRepo struct {
	pool Pool
}

// NewWalletAccountRepo creates a new WalletAccountRepo.
func NewWalletAccountRepo(pool Pool) *WalletAccountRepo {
	return &WalletAccountRepo{pool: pool}
}

const walletAccountColumns = `id, user_id, network, account_id, public_key, encrypted_private_key,
		last_transaction_ref, created_at, updated_at`

// Create inserts a new wallet account.
func (r *WalletAccountRepo) Create(ctx context.Context, w *domain.WalletAccount) error {
	query := `INSERT INTO wallet_accounts (` + walletAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.UserID, w.Network, w.AccountID, w.PublicKey,
		w.EncryptedPrivateKey, w.LastTransactionRef, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert wallet account: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert wallet account: %w", err)
	}
	return nil
}

// Get fetches a user's wallet on a network. Returns nil, nil if absent.
func (r *WalletAccountRepo) Get(ctx context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error) {
	query := `SELECT ` + walletAccountColumns + ` FROM wallet_accounts WHERE user_id = $1 AND network = $2`
	return r.scanWallet(r.pool.QueryRow(ctx, query, userID, network))
}

// GetByAccountID fetches the wallet that owns a ledger account.
func (r *WalletAccountRepo) GetByAccountID(ctx context.Context, network domain.Network, accountID string) (*domain.WalletAccount, error) {
	query := `SELECT ` + walletAccountColumns + ` FROM wallet_accounts WHERE network = $1 AND account_id = $2`
	return r.scanWallet(r.pool.QueryRow(ctx, query, network, accountID))
}

// UpdateLastTransaction records the latest submitted transaction reference.
func (r *WalletAccountRepo) UpdateLastTransaction(ctx context.Context, userID uuid.UUID, network domain.Network, ref string) (*domain.WalletAccount, error) {
	query := `UPDATE wallet_accounts SET last_transaction_ref = $1, updated_at = NOW()
		WHERE user_id = $2 AND network = $3
		RETURNING ` + walletAccountColumns

	w, err := r.scanWallet(r.pool.QueryRow(ctx, query, ref, userID, network))
	if err != nil {
		return nil, fmt.Errorf("update last transaction: %w", err)
	}
	if w == nil {
		return nil, fmt.Errorf("update last transaction: %w", domain.ErrNotFound)
	}
	return w, nil
}

func (r *WalletAccountRepo) scanWallet(row pgx.Row) (*domain.WalletAccount, error) {
	w := &domain.WalletAccount{}
	err := row.Scan(
		&w.ID, &w.UserID, &w.Network, &w.AccountID, &w.PublicKey,
		&w.EncryptedPrivateKey, &w.LastTransactionRef, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan wallet account: %w", err)
	}
	return w, nil
}
