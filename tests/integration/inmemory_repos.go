package integration

import (
	"context"
	"strings"
	"sync"
	"time"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory User Repo ---

type inMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *inMemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrDuplicate
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return u.Username == username })
}

func (r *inMemoryUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *inMemoryUserRepo) find(match func(*domain.User) bool) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Profile Repo ---

type inMemoryProfileRepo struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*domain.Profile
}

func newInMemoryProfileRepo() *inMemoryProfileRepo {
	return &inMemoryProfileRepo{profiles: make(map[uuid.UUID]*domain.Profile)}
}

func (r *inMemoryProfileRepo) Create(_ context.Context, _ pgx.Tx, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[p.UserID]; ok {
		return domain.ErrDuplicate
	}
	r.profiles[p.UserID] = &domain.Profile{
		UserID: p.UserID, DisplayName: p.DisplayName, Bio: p.Bio, Country: p.Country,
		Socials: map[domain.Platform]string{}, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
	return nil
}

func (r *inMemoryProfileRepo) Update(_ context.Context, _ pgx.Tx, p *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.profiles[p.UserID]
	if !ok {
		return domain.ErrNotFound
	}
	existing.DisplayName, existing.Bio, existing.Country = p.DisplayName, p.Bio, p.Country
	existing.UpdatedAt = p.UpdatedAt
	return nil
}

func (r *inMemoryProfileRepo) ReplaceSocials(_ context.Context, _ pgx.Tx, userID uuid.UUID, socials map[domain.Platform]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for platform, handle := range socials {
		for owner, p := range r.profiles {
			if owner != userID && p.Socials[platform] == handle {
				return domain.ErrDuplicate
			}
		}
	}
	p, ok := r.profiles[userID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Socials = make(map[domain.Platform]string, len(socials))
	for platform, handle := range socials {
		p.Socials[platform] = handle
	}
	return nil
}

func (r *inMemoryProfileRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.profiles[userID]; ok {
		return copyProfile(p), nil
	}
	return nil, nil
}

func (r *inMemoryProfileRepo) GetBySocialHandle(_ context.Context, platform domain.Platform, handle string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.profiles {
		if h, ok := p.Socials[platform]; ok && h == handle {
			return copyProfile(p), nil
		}
	}
	return nil, nil
}

func copyProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.Socials = make(map[domain.Platform]string, len(p.Socials))
	for k, v := range p.Socials {
		cp.Socials[k] = v
	}
	return &cp
}

// --- In-Memory Wallet Account Repo ---

type walletKey struct {
	userID  uuid.UUID
	network domain.Network
}

type inMemoryWalletAccountRepo struct {
	mu      sync.RWMutex
	wallets map[walletKey]*domain.WalletAccount
}

func newInMemoryWalletAccountRepo() *inMemoryWalletAccountRepo {
	return &inMemoryWalletAccountRepo{wallets: make(map[walletKey]*domain.WalletAccount)}
}

func (r *inMemoryWalletAccountRepo) Create(_ context.Context, w *domain.WalletAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := walletKey{w.UserID, w.Network}
	if _, ok := r.wallets[key]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.wallets {
		if existing.Network == w.Network && existing.AccountID == w.AccountID {
			return domain.ErrDuplicate
		}
	}
	cp := *w
	r.wallets[key] = &cp
	return nil
}

func (r *inMemoryWalletAccountRepo) Get(_ context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := r.wallets[walletKey{userID, network}]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, nil
}

func (r *inMemoryWalletAccountRepo) GetByAccountID(_ context.Context, network domain.Network, accountID string) (*domain.WalletAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.Network == network && w.AccountID == accountID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletAccountRepo) UpdateLastTransaction(_ context.Context, userID uuid.UUID, network domain.Network, ref string) (*domain.WalletAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletKey{userID, network}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	w.LastTransactionRef = &ref
	w.UpdatedAt = time.Now().UTC()
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletAccountRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.wallets)
}

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(_ context.Context, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.IdempotencyKey != nil {
		for _, existing := range r.payments {
			if existing.UserID == p.UserID && existing.IdempotencyKey != nil && *existing.IdempotencyKey == *p.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRepo) GetByIdempotencyKey(_ context.Context, userID uuid.UUID, key string) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.UserID == userID && p.IdempotencyKey != nil && *p.IdempotencyKey == key {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) MarkCompleted(_ context.Context, id uuid.UUID, txRef string) error {
	return r.mark(id, func(p *domain.Payment) {
		p.Status = domain.PaymentStatusCompleted
		p.TransactionRef = &txRef
	})
}

func (r *inMemoryPaymentRepo) MarkFailed(_ context.Context, id uuid.UUID, failureCode string) error {
	return r.mark(id, func(p *domain.Payment) {
		p.Status = domain.PaymentStatusFailed
		p.FailureCode = &failureCode
	})
}

func (r *inMemoryPaymentRepo) mark(id uuid.UUID, apply func(*domain.Payment)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return domain.ErrNotFound
	}
	apply(p)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemoryPaymentRepo) byStatus(status domain.PaymentStatus) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, p := range r.payments {
		if p.Status == status {
			n++
		}
	}
	return n
}

// --- In-Memory Transactor ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []domain.AuditLog
}

func (r *inMemoryAuditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *inMemoryAuditRepo) actions() []domain.AuditAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.AuditAction, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}
