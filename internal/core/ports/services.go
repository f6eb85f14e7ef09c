package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EncryptionService seals secrets with AES-256-GCM. The associated data
// is authenticated but not encrypted; Open fails if it differs from Seal's.
type EncryptionService interface {
	Seal(plaintext, associatedData string) (string, error)
	Open(ciphertext, associatedData string) (string, error)
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(userID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID   uuid.UUID
	Username string
}

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ErrLockNotAcquired is returned by LockStore.Acquire when another holder
// kept the lock for the whole wait budget.
var ErrLockNotAcquired = errors.New("lock not acquired")

// LockStore provides short-lived mutual exclusion across API instances.
type LockStore interface {
	// Acquire blocks up to wait for key and returns the holder token.
	Acquire(ctx context.Context, key string, ttl, wait time.Duration) (string, error)
	// Release frees key only if token still owns it.
	Release(ctx context.Context, key, token string) error
}

// --- Service Ports (Business Logic) ---

// AuthService is the identity service.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	// Login accepts a username or an email as identifier.
	Login(ctx context.Context, identifier, password string) (*LoginResult, error)
	// Verify resolves a token to its user. Fails with Unauthenticated.
	Verify(ctx context.Context, token string) (*domain.User, error)
}

// RegisterRequest holds input for user registration.
type RegisterRequest struct {
	Username string
	Email    string
	Name     string
	Password string
}

// LoginResult holds the issued session.
type LoginResult struct {
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
}

// ProfileService manages public profiles and their social handles.
type ProfileService interface {
	Create(ctx context.Context, userID uuid.UUID, req ProfileInput) (*domain.Profile, error)
	Update(ctx context.Context, userID uuid.UUID, req ProfileInput) (*domain.Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetBySocialHandle(ctx context.Context, platform domain.Platform, handle string) (*domain.Profile, error)
}

// ProfileInput is the writable part of a profile.
type ProfileInput struct {
	DisplayName string
	Bio         string
	Country     string
	Socials     map[domain.Platform]string
}

// Destination is a payment target: a raw ledger account id, a username
// (Handle without Platform) or a social handle (Platform and Handle).
type Destination struct {
	Account  string
	Platform domain.Platform
	Handle   string
}

// RecipientResolver maps a Destination to an account id on a network.
type RecipientResolver interface {
	Resolve(ctx context.Context, network domain.Network, dest Destination) (string, error)
}

// WalletService is the wallet and payment orchestrator.
type WalletService interface {
	CreateWallet(ctx context.Context, userID uuid.UUID, network domain.Network) (*CreatedWallet, error)
	GetWallet(ctx context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error)
	GetBalance(ctx context.Context, userID uuid.UUID, network domain.Network) ([]domain.Balance, error)
	SendPayment(ctx context.Context, req SendPaymentRequest) (*domain.PaymentReceipt, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, network domain.Network, limit int) ([]domain.LedgerTransaction, error)
	IssueToken(ctx context.Context, req IssueTokenRequest) (*domain.IssuedToken, error)
	ListAssets(ctx context.Context, network domain.Network, limit int) ([]domain.Asset, error)
}

// CreatedWallet is the public result of wallet creation.
type CreatedWallet struct {
	Network       domain.Network `json:"network"`
	AccountID     string         `json:"account_id"`
	PublicKey     string         `json:"public_key"`
	CreationTxRef string         `json:"creation_tx_ref,omitempty"`
}

// SendPaymentRequest holds validated input for a transfer.
type SendPaymentRequest struct {
	UserID         uuid.UUID
	Network        domain.Network
	Destination    Destination
	Amount         decimal.Decimal
	Memo           string
	IdempotencyKey string
}

// IssueTokenRequest holds validated input for token issuance.
type IssueTokenRequest struct {
	UserID        uuid.UUID
	Network       domain.Network
	Name          string
	Symbol        string
	InitialSupply uint64
}

// AuditService records audit entries asynchronously.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}
