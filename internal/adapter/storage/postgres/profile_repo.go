package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRepo implements ports.ProfileRepository.
type ProfileRepo struct {
	pool Pool
}

// NewProfileRepo creates a new ProfileRepo.
func NewProfileRepo(pool Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// Create inserts a profile row within a transaction.
func (r *ProfileRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, display_name, bio, country, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := tx.Exec(ctx, query, p.UserID, p.DisplayName, p.Bio, p.Country, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert profile: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// Update overwrites the scalar profile fields within a transaction.
func (r *ProfileRepo) Update(ctx context.Context, tx pgx.Tx, p *domain.Profile) error {
	query := `UPDATE profiles SET display_name = $1, bio = $2, country = $3, updated_at = $4 WHERE user_id = $5`

	tag, err := tx.Exec(ctx, query, p.DisplayName, p.Bio, p.Country, p.UpdatedAt, p.UserID)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update profile: %w", domain.ErrNotFound)
	}
	return nil
}

// ReplaceSocials deletes the user's handles and inserts the given set.
// Platforms are written in sorted order so lock acquisition is deterministic.
func (r *ProfileRepo) ReplaceSocials(ctx context.Context, tx pgx.Tx, userID uuid.UUID, socials map[domain.Platform]string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM social_handles WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("clear social handles: %w", err)
	}

	platforms := make([]string, 0, len(socials))
	for p := range socials {
		platforms = append(platforms, string(p))
	}
	sort.Strings(platforms)

	for _, p := range platforms {
		handle := socials[domain.Platform(p)]
		if handle == "" {
			continue
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO social_handles (user_id, platform, handle) VALUES ($1, $2, $3)`,
			userID, p, handle,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("insert %s handle: %w", p, domain.ErrDuplicate)
			}
			return fmt.Errorf("insert %s handle: %w", p, err)
		}
	}
	return nil
}

// GetByUserID fetches a profile with its socials. Returns nil, nil if absent.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	query := `SELECT user_id, display_name, bio, country, created_at, updated_at
		FROM profiles WHERE user_id = $1`

	p := &domain.Profile{}
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID, &p.DisplayName, &p.Bio, &p.Country, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	if p.Socials, err = r.loadSocials(ctx, userID); err != nil {
		return nil, err
	}
	return p, nil
}

// GetBySocialHandle resolves an exact (platform, handle) pair to its profile.
func (r *ProfileRepo) GetBySocialHandle(ctx context.Context, platform domain.Platform, handle string) (*domain.Profile, error) {
	query := `SELECT user_id FROM social_handles WHERE platform = $1 AND handle = $2`

	var userID uuid.UUID
	err := r.pool.QueryRow(ctx, query, string(platform), handle).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get profile by handle: %w", err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *ProfileRepo) loadSocials(ctx context.Context, userID uuid.UUID) (map[domain.Platform]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT platform, handle FROM social_handles WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list social handles: %w", err)
	}
	defer rows.Close()

	socials := make(map[domain.Platform]string)
	for rows.Next() {
		var platform, handle string
		if err := rows.Scan(&platform, &handle); err != nil {
			return nil, fmt.Errorf("scan social handle: %w", err)
		}
		socials[domain.Platform(platform)] = handle
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social handles: %w", err)
	}
	return socials, nil
}
