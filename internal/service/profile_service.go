package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileServiceImpl implements ports.ProfileService.
type ProfileServiceImpl struct {
	profileRepo ports.ProfileRepository
	userRepo    ports.UserRepository
	transactor  ports.DBTransactor
}

// NewProfileService creates a new ProfileServiceImpl.
func NewProfileService(profileRepo ports.ProfileRepository, userRepo ports.UserRepository, transactor ports.DBTransactor) *ProfileServiceImpl {
	return &ProfileServiceImpl{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		transactor:  transactor,
	}
}

// Create stores a profile and its social handles in one transaction.
func (s *ProfileServiceImpl) Create(ctx context.Context, userID uuid.UUID, req ports.ProfileInput) (*domain.Profile, error) {
	socials, err := s.checkSocials(ctx, userID, req.Socials)
	if err != nil {
		return nil, err
	}

	existing, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get profile: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrProfileExists()
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Country:     req.Country,
		Socials:     socials,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.write(ctx, profile, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.profileRepo.Create(ctx, tx, profile); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return apperror.ErrProfileExists()
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Update replaces the writable fields and the full socials set.
func (s *ProfileServiceImpl) Update(ctx context.Context, userID uuid.UUID, req ports.ProfileInput) (*domain.Profile, error) {
	socials, err := s.checkSocials(ctx, userID, req.Socials)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("get profile: %w", err))
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("profile")
	}

	profile.DisplayName = req.DisplayName
	profile.Bio = req.Bio
	profile.Country = req.Country
	profile.Socials = socials
	profile.UpdatedAt = time.Now().UTC()

	err = s.write(ctx, profile, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.profileRepo.Update(ctx, tx, profile); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperror.ErrNotFound("profile")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// write runs upsert and the socials replacement in a single transaction.
func (s *ProfileServiceImpl) write(ctx context.Context, profile *domain.Profile, upsert func(context.Context, pgx.Tx) error) error {
	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrDatabaseError(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := upsert(ctx, tx); err != nil {
		return asAppError(err)
	}

	if err := s.profileRepo.ReplaceSocials(ctx, tx, profile.UserID, profile.Socials); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return apperror.ErrHandleTaken("social")
		}
		return apperror.ErrDatabaseError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperror.ErrDatabaseError(fmt.Errorf("commit profile: %w", err))
	}
	return nil
}

// checkSocials validates platforms, drops empty handles and rejects handles
// already linked to another user. The unique index still decides races.
func (s *ProfileServiceImpl) checkSocials(ctx context.Context, userID uuid.UUID, in map[domain.Platform]string) (map[domain.Platform]string, error) {
	out := make(map[domain.Platform]string, len(in))
	for platform, handle := range in {
		if !platform.IsValid() {
			return nil, apperror.Validation(fmt.Sprintf("unsupported platform %q", platform))
		}
		handle = strings.TrimSpace(handle)
		if handle == "" {
			continue
		}

		owner, err := s.profileRepo.GetBySocialHandle(ctx, platform, handle)
		if err != nil {
			return nil, apperror.ErrDatabaseError(fmt.Errorf("check %s handle: %w", platform, err))
		}
		if owner != nil && owner.UserID != userID {
			return nil, apperror.ErrHandleTaken(string(platform))
		}
		out[platform] = handle
	}
	return out, nil
}

func (s *ProfileServiceImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("profile")
	}
	return profile, nil
}

// GetByUsername returns the profile of the user registered as username.
// An unknown user and a user without a profile are both NotFound.
func (s *ProfileServiceImpl) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lookup username: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("profile")
	}
	return s.GetByUserID(ctx, user.ID)
}

// GetBySocialHandle is an exact, case-sensitive lookup.
func (s *ProfileServiceImpl) GetBySocialHandle(ctx context.Context, platform domain.Platform, handle string) (*domain.Profile, error) {
	if !platform.IsValid() {
		return nil, apperror.Validation(fmt.Sprintf("unsupported platform %q", platform))
	}
	profile, err := s.profileRepo.GetBySocialHandle(ctx, platform, handle)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if profile == nil {
		return nil, apperror.ErrNotFound("profile")
	}
	return profile, nil
}

// asAppError passes AppErrors through and wraps anything else as a database error.
func asAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperror.ErrDatabaseError(err)
}
