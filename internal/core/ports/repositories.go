package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
// Create returns domain.ErrDuplicate when the username or email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProfileRepository is the profile directory. Writes run inside a caller
// transaction so a profile and its socials change together.
type ProfileRepository interface {
	Create(ctx context.Context, tx pgx.Tx, profile *domain.Profile) error
	Update(ctx context.Context, tx pgx.Tx, profile *domain.Profile) error
	// ReplaceSocials overwrites the full handle set. Returns domain.ErrDuplicate
	// when a handle is already linked to another profile.
	ReplaceSocials(ctx context.Context, tx pgx.Tx, userID uuid.UUID, socials map[domain.Platform]string) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	// GetBySocialHandle is an exact match on (platform, handle).
	GetBySocialHandle(ctx context.Context, platform domain.Platform, handle string) (*domain.Profile, error)
}

// WalletAccountRepository is the wallet record store. The (user, network)
// uniqueness is enforced by the database, not by callers.
type WalletAccountRepository interface {
	// Create returns domain.ErrDuplicate if the user already has a wallet
	// on the network, or the account id is already recorded.
	Create(ctx context.Context, wallet *domain.WalletAccount) error
	Get(ctx context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error)
	GetByAccountID(ctx context.Context, network domain.Network, accountID string) (*domain.WalletAccount, error)
	// UpdateLastTransaction returns domain.ErrNotFound if no record matches.
	UpdateLastTransaction(ctx context.Context, userID uuid.UUID, network domain.Network, ref string) (*domain.WalletAccount, error)
}

// PaymentRepository is the local journal of outgoing payments.
type PaymentRepository interface {
	// Create returns domain.ErrDuplicate when the idempotency key was used before.
	Create(ctx context.Context, payment *domain.Payment) error
	GetByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*domain.Payment, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, txRef string) error
	MarkFailed(ctx context.Context, id uuid.UUID, failureCode string) error
}

// AuditRepository persists audit entries.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
