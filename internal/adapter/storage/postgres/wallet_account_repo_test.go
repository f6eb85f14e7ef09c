package postgres

import (
	"context"
	"testing"
	"time"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalletAccount(userID uuid.UUID) *domain.WalletAccount {
	return &domain.WalletAccount{
		ID:                  uuid.New(),
		UserID:              userID,
		Network:             domain.NetworkHedera,
		AccountID:           "0.0.4815162",
		PublicKey:           "302d300706052b8104000a032200",
		EncryptedPrivateKey: "sealed_private_key_hex",
		CreatedAt:           time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:           time.Now().UTC().Truncate(time.Microsecond),
	}
}

func walletAccountColumnNames() []string {
	return []string{"id", "user_id", "network", "account_id", "public_key", "encrypted_private_key",
		"last_transaction_ref", "created_at", "updated_at"}
}

func walletAccountRow(w *domain.WalletAccount) *pgxmock.Rows {
	return pgxmock.NewRows(walletAccountColumnNames()).AddRow(
		w.ID, w.UserID, w.Network, w.AccountID, w.PublicKey,
		w.EncryptedPrivateKey, w.LastTransactionRef, w.CreatedAt, w.UpdatedAt,
	)
}

func TestWalletAccountRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())

	mock.ExpectExec("INSERT INTO wallet_accounts").
		WithArgs(w.ID, w.UserID, w.Network, w.AccountID, w.PublicKey,
			w.EncryptedPrivateKey, w.LastTransactionRef, w.CreatedAt, w.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), w)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletAccountRepo_Create_UniqueViolationIsDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())

	mock.ExpectExec("INSERT INTO wallet_accounts").
		WithArgs(w.ID, w.UserID, w.Network, w.AccountID, w.PublicKey,
			w.EncryptedPrivateKey, w.LastTransactionRef, w.CreatedAt, w.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "wallet_accounts_user_network_key"})

	err = repo.Create(context.Background(), w)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestWalletAccountRepo_Create_OtherErrorNotDuplicate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())

	mock.ExpectExec("INSERT INTO wallet_accounts").
		WithArgs(w.ID, w.UserID, w.Network, w.AccountID, w.PublicKey,
			w.EncryptedPrivateKey, w.LastTransactionRef, w.CreatedAt, w.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err = repo.Create(context.Background(), w)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrDuplicate)
}

func TestWalletAccountRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallet_accounts WHERE user_id").
		WithArgs(w.UserID, domain.NetworkHedera).
		WillReturnRows(walletAccountRow(w))

	result, err := repo.Get(context.Background(), w.UserID, domain.NetworkHedera)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.AccountID, result.AccountID)
	assert.Equal(t, w.EncryptedPrivateKey, result.EncryptedPrivateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletAccountRepo_Get_Absent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("SELECT .+ FROM wallet_accounts WHERE user_id").
		WithArgs(userID, domain.NetworkStellar).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.Get(context.Background(), userID, domain.NetworkStellar)
	assert.NoError(t, err)
	assert.Nil(t, result)
}

func TestWalletAccountRepo_GetByAccountID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())

	mock.ExpectQuery("SELECT .+ FROM wallet_accounts WHERE network").
		WithArgs(domain.NetworkHedera, w.AccountID).
		WillReturnRows(walletAccountRow(w))

	result, err := repo.GetByAccountID(context.Background(), domain.NetworkHedera, w.AccountID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, w.UserID, result.UserID)
}

func TestWalletAccountRepo_UpdateLastTransaction(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	w := newTestWalletAccount(uuid.New())
	w.LastTransactionRef = strPtr("0.0.4815162@1700000000.000000001")

	mock.ExpectQuery("UPDATE wallet_accounts SET last_transaction_ref").
		WithArgs(*w.LastTransactionRef, w.UserID, domain.NetworkHedera).
		WillReturnRows(walletAccountRow(w))

	result, err := repo.UpdateLastTransaction(context.Background(), w.UserID, domain.NetworkHedera, *w.LastTransactionRef)
	require.NoError(t, err)
	require.NotNil(t, result.LastTransactionRef)
	assert.Equal(t, *w.LastTransactionRef, *result.LastTransactionRef)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWalletAccountRepo_UpdateLastTransaction_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewWalletAccountRepo(mock)
	userID := uuid.New()

	mock.ExpectQuery("UPDATE wallet_accounts SET last_transaction_ref").
		WithArgs("ref", userID, domain.NetworkStellar).
		WillReturnError(pgx.ErrNoRows)

	result, err := repo.UpdateLastTransaction(context.Background(), userID, domain.NetworkStellar, "ref")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)
}
