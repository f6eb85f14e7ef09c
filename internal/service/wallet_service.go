package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletOptions tunes the orchestrator. Zero values fall back to defaults.
type WalletOptions struct {
	LockTTL             time.Duration
	LockWait            time.Duration
	IdempotencyTTL      time.Duration
	DefaultHistoryLimit int
	MaxHistoryLimit     int
	// Funding is the account funding policy per network.
	Funding map[domain.Network]domain.FundingPolicy
}

func (o WalletOptions) withDefaults() WalletOptions {
	if o.LockTTL <= 0 {
		o.LockTTL = 30 * time.Second
	}
	if o.LockWait < 0 {
		o.LockWait = 0
	}
	if o.IdempotencyTTL <= 0 {
		o.IdempotencyTTL = 24 * time.Hour
	}
	if o.DefaultHistoryLimit <= 0 {
		o.DefaultHistoryLimit = 10
	}
	if o.MaxHistoryLimit <= 0 {
		o.MaxHistoryLimit = 100
	}
	if o.DefaultHistoryLimit > o.MaxHistoryLimit {
		o.DefaultHistoryLimit = o.MaxHistoryLimit
	}
	return o
}

// tokenDecimals matches the whole-unit tokens users mint.
const tokenDecimals = 0

// WalletServiceImpl implements ports.WalletService. It owns no ledger state:
// balances and history are always read from the ledger.
type WalletServiceImpl struct {
	adapters    map[domain.Network]ports.LedgerAdapter
	walletRepo  ports.WalletAccountRepository
	paymentRepo ports.PaymentRepository
	resolver    ports.RecipientResolver
	encSvc      ports.EncryptionService
	locks       ports.LockStore
	idempCache  ports.IdempotencyCache
	opts        WalletOptions
	log         zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl. Networks without an
// adapter are reported as unsupported.
func NewWalletService(
	adapters map[domain.Network]ports.LedgerAdapter,
	walletRepo ports.WalletAccountRepository,
	paymentRepo ports.PaymentRepository,
	resolver ports.RecipientResolver,
	encSvc ports.EncryptionService,
	locks ports.LockStore,
	idempCache ports.IdempotencyCache,
	opts WalletOptions,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		adapters:    adapters,
		walletRepo:  walletRepo,
		paymentRepo: paymentRepo,
		resolver:    resolver,
		encSvc:      encSvc,
		locks:       locks,
		idempCache:  idempCache,
		opts:        opts.withDefaults(),
		log:         log,
	}
}

// CreateWallet provisions a ledger account and stores its sealed key.
func (s *WalletServiceImpl) CreateWallet(ctx context.Context, userID uuid.UUID, network domain.Network) (*ports.CreatedWallet, error) {
	adapter, err := s.adapter(network)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, userID, network)
	if err != nil {
		return nil, err
	}
	defer release()

	existing, err := s.walletRepo.Get(ctx, userID, network)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrConflict(fmt.Sprintf("User already has a %s wallet", network))
	}

	// A ledger account is about to exist; finish recording it even if the
	// client goes away.
	detached := context.WithoutCancel(ctx)

	account, err := adapter.CreateAccount(detached, s.opts.Funding[network])
	if err != nil {
		return nil, ledgerError(err)
	}

	sealed, err := s.encSvc.Seal(account.PrivateKey, domain.WalletSecretBinding(userID, network))
	if err != nil {
		s.logOrphan(userID, network, account.AccountID, err)
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("seal private key: %w", err))
	}

	now := time.Now().UTC()
	wallet := &domain.WalletAccount{
		ID:                  uuid.New(),
		UserID:              userID,
		Network:             network,
		AccountID:           account.AccountID,
		PublicKey:           account.PublicKey,
		EncryptedPrivateKey: sealed,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.walletRepo.Create(detached, wallet); err != nil {
		s.logOrphan(userID, network, account.AccountID, err)
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.ErrConflict(fmt.Sprintf("User already has a %s wallet", network))
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create wallet: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("network", string(network)).
		Str("account_id", account.AccountID).
		Msg("wallet created")

	return &ports.CreatedWallet{
		Network:       network,
		AccountID:     account.AccountID,
		PublicKey:     account.PublicKey,
		CreationTxRef: account.CreationTxRef,
	}, nil
}

func (s *WalletServiceImpl) logOrphan(userID uuid.UUID, network domain.Network, accountID string, err error) {
	s.log.Error().Err(err).
		Str("user_id", userID.String()).
		Str("network", string(network)).
		Str("orphan_account_id", accountID).
		Msg("ledger account created but wallet record not stored")
}

// GetWallet returns the public wallet record.
func (s *WalletServiceImpl) GetWallet(ctx context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error) {
	if _, err := s.adapter(network); err != nil {
		return nil, err
	}
	return s.requireWallet(ctx, userID, network)
}

// GetBalance reads the balances of the user's wallet from the ledger.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID, network domain.Network) ([]domain.Balance, error) {
	adapter, err := s.adapter(network)
	if err != nil {
		return nil, err
	}
	wallet, err := s.requireWallet(ctx, userID, network)
	if err != nil {
		return nil, err
	}

	balances, err := adapter.GetBalance(ctx, wallet.AccountID)
	if err != nil {
		return nil, ledgerError(err)
	}
	return balances, nil
}

// SendPayment transfers native currency from the user's wallet. With an
// idempotency key, a completed payment is replayed instead of resent.
// A failed ledger call is never retried here.
func (s *WalletServiceImpl) SendPayment(ctx context.Context, req ports.SendPaymentRequest) (*domain.PaymentReceipt, error) {
	if !req.Amount.IsPositive() {
		return nil, apperror.ErrInvalidAmount()
	}

	adapter, err := s.adapter(req.Network)
	if err != nil {
		return nil, err
	}
	if !req.Amount.Equal(req.Amount.Truncate(req.Network.Precision())) {
		return nil, apperror.ErrInvalidAmount()
	}

	sender, err := s.requireWallet(ctx, req.UserID, req.Network)
	if err != nil {
		return nil, err
	}

	if req.IdempotencyKey != "" {
		receipt, err := s.replay(ctx, req)
		if err != nil || receipt != nil {
			return receipt, err
		}
	}

	to, err := s.resolver.Resolve(ctx, req.Network, req.Destination)
	if err != nil {
		return nil, err
	}
	if to == sender.AccountID {
		return nil, apperror.ErrInvalidDestination("Cannot send a payment to your own wallet")
	}

	release, err := s.lock(ctx, req.UserID, req.Network)
	if err != nil {
		return nil, err
	}
	defer release()

	privateKey, err := s.encSvc.Open(sender.EncryptedPrivateKey, sender.SecretBinding())
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("open private key: %w", err))
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:          uuid.New(),
		UserID:      req.UserID,
		Network:     req.Network,
		FromAccount: sender.AccountID,
		ToAccount:   to,
		Amount:      req.Amount,
		Memo:        req.Memo,
		Status:      domain.PaymentStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		payment.IdempotencyKey = &key
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, apperror.ErrDuplicateTransaction()
		}
		return nil, apperror.ErrDatabaseError(fmt.Errorf("journal payment: %w", err))
	}

	// From here on the ledger may commit; cancellation must not cut the
	// bookkeeping short.
	detached := context.WithoutCancel(ctx)

	result, err := adapter.Transfer(detached, domain.TransferOrder{
		FromAccountID: sender.AccountID,
		PrivateKey:    privateKey,
		ToAccountID:   to,
		Amount:        req.Amount,
		Memo:          req.Memo,
	})
	if err != nil {
		appErr := ledgerError(err)
		s.recordFailure(detached, payment, appErr)
		return nil, appErr
	}

	receipt := &domain.PaymentReceipt{
		PaymentID:      payment.ID,
		Network:        req.Network,
		TransactionRef: result.TransactionRef,
		From:           sender.AccountID,
		To:             to,
		Amount:         req.Amount,
		Memo:           req.Memo,
	}
	s.recordSuccess(detached, req, payment, receipt)

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("user_id", req.UserID.String()).
		Str("network", string(req.Network)).
		Str("tx_ref", receipt.TransactionRef).
		Str("amount", req.Amount.String()).
		Msg("payment sent")

	return receipt, nil
}

// replay returns the stored receipt for a reused idempotency key, nil if the
// key is new, or DuplicateTransaction if the earlier attempt did not complete.
func (s *WalletServiceImpl) replay(ctx context.Context, req ports.SendPaymentRequest) (*domain.PaymentReceipt, error) {
	cacheKey := domain.BuildPaymentIdempotencyKey(req.UserID, req.Network, req.IdempotencyKey)

	// Layer 1: Redis receipt cache
	cached, err := s.idempCache.Get(ctx, cacheKey)
	if err != nil {
		s.log.Warn().Err(err).Str("key", cacheKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		var receipt domain.PaymentReceipt
		if err := json.Unmarshal(cached, &receipt); err == nil {
			return &receipt, nil
		}
		s.log.Warn().Str("key", cacheKey).Msg("discarding unreadable cached receipt")
	}

	// Layer 2: payment journal
	prior, err := s.paymentRepo.GetByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("journal idempotency check: %w", err))
	}
	if prior == nil {
		return nil, nil
	}
	if prior.Status != domain.PaymentStatusCompleted || prior.Network != req.Network || prior.TransactionRef == nil {
		return nil, apperror.ErrDuplicateTransaction()
	}

	receipt := &domain.PaymentReceipt{
		PaymentID:      prior.ID,
		Network:        prior.Network,
		TransactionRef: *prior.TransactionRef,
		From:           prior.FromAccount,
		To:             prior.ToAccount,
		Amount:         prior.Amount,
		Memo:           prior.Memo,
	}
	s.cacheReceipt(ctx, cacheKey, receipt)
	return receipt, nil
}

// recordFailure marks the journal row FAILED when the ledger gave a
// definitive answer. An unavailable ledger may still have applied the
// transfer, so the row stays PENDING.
func (s *WalletServiceImpl) recordFailure(ctx context.Context, payment *domain.Payment, appErr *apperror.AppError) {
	if appErr.Code == apperror.CodeLedgerUnavailable {
		s.log.Warn().Err(appErr).
			Str("payment_id", payment.ID.String()).
			Msg("ledger outcome unknown, payment left pending")
		return
	}
	if err := s.paymentRepo.MarkFailed(ctx, payment.ID, appErr.Code); err != nil {
		s.log.Warn().Err(err).Str("payment_id", payment.ID.String()).Msg("failed to mark payment failed")
	}
}

// recordSuccess runs post-transfer bookkeeping. Every step is best-effort:
// the transfer already happened.
func (s *WalletServiceImpl) recordSuccess(ctx context.Context, req ports.SendPaymentRequest, payment *domain.Payment, receipt *domain.PaymentReceipt) {
	if err := s.paymentRepo.MarkCompleted(ctx, payment.ID, receipt.TransactionRef); err != nil {
		s.log.Warn().Err(err).Str("payment_id", payment.ID.String()).Msg("failed to mark payment completed")
	}
	if _, err := s.walletRepo.UpdateLastTransaction(ctx, req.UserID, req.Network, receipt.TransactionRef); err != nil {
		s.log.Warn().Err(err).Str("user_id", req.UserID.String()).Msg("failed to record last transaction")
	}
	if req.IdempotencyKey != "" {
		s.cacheReceipt(ctx, domain.BuildPaymentIdempotencyKey(req.UserID, req.Network, req.IdempotencyKey), receipt)
	}
}

func (s *WalletServiceImpl) cacheReceipt(ctx context.Context, key string, receipt *domain.PaymentReceipt) {
	data, err := json.Marshal(receipt)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to marshal receipt")
		return
	}
	if err := s.idempCache.Set(ctx, key, data, s.opts.IdempotencyTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache receipt in redis")
	}
}

// ListTransactions returns the wallet's ledger history, newest first.
func (s *WalletServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, network domain.Network, limit int) ([]domain.LedgerTransaction, error) {
	adapter, err := s.adapter(network)
	if err != nil {
		return nil, err
	}
	wallet, err := s.requireWallet(ctx, userID, network)
	if err != nil {
		return nil, err
	}

	txs, err := adapter.ListTransactions(ctx, wallet.AccountID, s.historyLimit(limit))
	if err != nil {
		return nil, ledgerError(err)
	}
	return txs, nil
}

// IssueToken mints a fungible token with the user's wallet as treasury.
func (s *WalletServiceImpl) IssueToken(ctx context.Context, req ports.IssueTokenRequest) (*domain.IssuedToken, error) {
	adapter, err := s.adapter(req.Network)
	if err != nil {
		return nil, err
	}
	issuer, ok := adapter.(ports.TokenIssuer)
	if !ok {
		return nil, apperror.ErrUnsupportedOperation("token issuance", string(req.Network))
	}

	wallet, err := s.requireWallet(ctx, req.UserID, req.Network)
	if err != nil {
		return nil, err
	}

	release, err := s.lock(ctx, req.UserID, req.Network)
	if err != nil {
		return nil, err
	}
	defer release()

	privateKey, err := s.encSvc.Open(wallet.EncryptedPrivateKey, wallet.SecretBinding())
	if err != nil {
		return nil, apperror.ErrEncryptionFailure(fmt.Errorf("open private key: %w", err))
	}

	detached := context.WithoutCancel(ctx)
	token, err := issuer.IssueToken(detached, domain.TokenIssueOrder{
		TreasuryAccountID: wallet.AccountID,
		PrivateKey:        privateKey,
		Name:              req.Name,
		Symbol:            req.Symbol,
		InitialSupply:     req.InitialSupply,
		Decimals:          tokenDecimals,
	})
	if err != nil {
		return nil, ledgerError(err)
	}

	if _, err := s.walletRepo.UpdateLastTransaction(detached, req.UserID, req.Network, token.TransactionRef); err != nil {
		s.log.Warn().Err(err).Str("user_id", req.UserID.String()).Msg("failed to record last transaction")
	}

	s.log.Info().
		Str("user_id", req.UserID.String()).
		Str("network", string(req.Network)).
		Str("token_id", token.TokenID).
		Msg("token issued")

	return token, nil
}

// ListAssets lists assets issued on the network.
func (s *WalletServiceImpl) ListAssets(ctx context.Context, network domain.Network, limit int) ([]domain.Asset, error) {
	adapter, err := s.adapter(network)
	if err != nil {
		return nil, err
	}
	lister, ok := adapter.(ports.AssetLister)
	if !ok {
		return nil, apperror.ErrUnsupportedOperation("asset listing", string(network))
	}

	assets, err := lister.ListAssets(ctx, s.historyLimit(limit))
	if err != nil {
		return nil, ledgerError(err)
	}
	return assets, nil
}

func (s *WalletServiceImpl) adapter(network domain.Network) (ports.LedgerAdapter, error) {
	adapter, ok := s.adapters[network]
	if !ok {
		return nil, apperror.ErrUnsupportedNetwork(string(network))
	}
	return adapter, nil
}

func (s *WalletServiceImpl) requireWallet(ctx context.Context, userID uuid.UUID, network domain.Network) (*domain.WalletAccount, error) {
	wallet, err := s.walletRepo.Get(ctx, userID, network)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("wallet")
	}
	return wallet, nil
}

func (s *WalletServiceImpl) historyLimit(limit int) int {
	if limit <= 0 {
		return s.opts.DefaultHistoryLimit
	}
	if limit > s.opts.MaxHistoryLimit {
		return s.opts.MaxHistoryLimit
	}
	return limit
}

// lock serializes wallet operations for one (user, network). If Redis is
// unreachable the operation proceeds unlocked; the unique constraint on
// wallet_accounts still prevents duplicate wallets.
func (s *WalletServiceImpl) lock(ctx context.Context, userID uuid.UUID, network domain.Network) (func(), error) {
	key := "wallet:" + userID.String() + ":" + string(network)

	token, err := s.locks.Acquire(ctx, key, s.opts.LockTTL, s.opts.LockWait)
	switch {
	case err == nil:
		return func() {
			if err := s.locks.Release(context.WithoutCancel(ctx), key, token); err != nil {
				s.log.Warn().Err(err).Str("lock", key).Msg("failed to release wallet lock")
			}
		}, nil
	case errors.Is(err, ports.ErrLockNotAcquired),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return nil, apperror.ErrLockTimeout(err)
	default:
		s.log.Warn().Err(err).Str("lock", key).Msg("wallet lock unavailable, proceeding without it")
		return func() {}, nil
	}
}

// ledgerError keeps adapter AppErrors intact and treats anything else as an
// unavailable ledger, so raw transport errors never reach the client.
func ledgerError(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.ErrLedgerUnavailable(err)
}
