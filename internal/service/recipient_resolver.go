package service

import (
	"context"
	"fmt"
	"strings"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"

	"github.com/google/uuid"
)

// RecipientResolverImpl implements ports.RecipientResolver. It turns a raw
// account id, a username or a social handle into a ledger account id.
type RecipientResolverImpl struct {
	adapters    map[domain.Network]ports.LedgerAdapter
	userRepo    ports.UserRepository
	profileRepo ports.ProfileRepository
	walletRepo  ports.WalletAccountRepository
}

// NewRecipientResolver creates a new RecipientResolverImpl. Adapters are
// only used for account id syntax checks.
func NewRecipientResolver(
	adapters map[domain.Network]ports.LedgerAdapter,
	userRepo ports.UserRepository,
	profileRepo ports.ProfileRepository,
	walletRepo ports.WalletAccountRepository,
) *RecipientResolverImpl {
	return &RecipientResolverImpl{
		adapters:    adapters,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		walletRepo:  walletRepo,
	}
}

func (r *RecipientResolverImpl) Resolve(ctx context.Context, network domain.Network, dest ports.Destination) (string, error) {
	adapter, ok := r.adapters[network]
	if !ok {
		return "", apperror.ErrUnsupportedNetwork(string(network))
	}

	account := strings.TrimSpace(dest.Account)
	handle := strings.TrimSpace(dest.Handle)

	if account != "" {
		if adapter.ValidateAccountID(account) {
			return account, nil
		}
		if dest.Platform == "" && handle == "" {
			return "", apperror.ErrInvalidDestination(fmt.Sprintf("%q is not a valid %s account id", account, network))
		}
	}

	var (
		userID uuid.UUID
		err    error
	)
	switch {
	case dest.Platform != "":
		userID, err = r.bySocialHandle(ctx, dest.Platform, handle)
	case handle != "":
		userID, err = r.byUsername(ctx, handle)
	default:
		return "", apperror.ErrInvalidDestination("a destination account, username or social handle is required")
	}
	if err != nil {
		return "", err
	}

	wallet, err := r.walletRepo.Get(ctx, userID, network)
	if err != nil {
		return "", apperror.ErrDatabaseError(fmt.Errorf("get recipient wallet: %w", err))
	}
	if wallet == nil {
		return "", apperror.ErrRecipientWalletNotFound()
	}
	return wallet.AccountID, nil
}

func (r *RecipientResolverImpl) bySocialHandle(ctx context.Context, platform domain.Platform, handle string) (uuid.UUID, error) {
	if !platform.IsValid() {
		return uuid.Nil, apperror.ErrInvalidDestination(fmt.Sprintf("unsupported platform %q", platform))
	}
	if handle == "" {
		return uuid.Nil, apperror.ErrInvalidDestination("handle is required with a platform")
	}

	profile, err := r.profileRepo.GetBySocialHandle(ctx, platform, handle)
	if err != nil {
		return uuid.Nil, apperror.ErrDatabaseError(fmt.Errorf("lookup %s handle: %w", platform, err))
	}
	if profile == nil {
		return uuid.Nil, apperror.ErrRecipientNotFound()
	}
	return profile.UserID, nil
}

func (r *RecipientResolverImpl) byUsername(ctx context.Context, username string) (uuid.UUID, error) {
	user, err := r.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return uuid.Nil, apperror.ErrDatabaseError(fmt.Errorf("lookup username: %w", err))
	}
	if user == nil {
		return uuid.Nil, apperror.ErrRecipientNotFound()
	}
	return user.ID, nil
}
