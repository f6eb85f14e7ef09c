package service

import (
	"context"
	"errors"
	"testing"

	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/internal/core/ports/mocks"
	"social-wallet-api/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setupProfileService(t *testing.T) (*ProfileServiceImpl, *mocks.MockProfileRepository, *mocks.MockDBTransactor, *gomock.Controller) {
	svc, repo, _, transactor, ctrl := setupProfileServiceWithUsers(t)
	return svc, repo, transactor, ctrl
}

func setupProfileServiceWithUsers(t *testing.T) (*ProfileServiceImpl, *mocks.MockProfileRepository, *mocks.MockUserRepository, *mocks.MockDBTransactor, *gomock.Controller) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProfileRepository(ctrl)
	users := mocks.NewMockUserRepository(ctrl)
	transactor := mocks.NewMockDBTransactor(ctrl)
	return NewProfileService(repo, users, transactor), repo, users, transactor, ctrl
}

func TestProfileService_Create_Success(t *testing.T) {
	svc, repo, transactor, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformGitHub, "bob").Return(nil, nil)
	repo.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)
	transactor.EXPECT().Begin(ctx).Return(tx, nil)
	repo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	repo.EXPECT().ReplaceSocials(ctx, tx, userID, map[domain.Platform]string{domain.PlatformGitHub: "bob"}).Return(nil)

	p, err := svc.Create(ctx, userID, ports.ProfileInput{
		DisplayName: "Bob",
		Socials: map[domain.Platform]string{
			domain.PlatformGitHub:  " bob ",
			domain.PlatformTwitter: "",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.DisplayName)
	assert.Equal(t, map[domain.Platform]string{domain.PlatformGitHub: "bob"}, p.Socials)
	assert.True(t, tx.committed)
}

func TestProfileService_Create_AlreadyExists(t *testing.T) {
	svc, repo, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	repo.EXPECT().GetByUserID(ctx, userID).Return(&domain.Profile{UserID: userID}, nil)

	_, err := svc.Create(ctx, userID, ports.ProfileInput{DisplayName: "Bob"})
	assertAppError(t, err, apperror.CodeProfileExists)
}

func TestProfileService_Create_UnknownPlatform(t *testing.T) {
	svc, _, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	_, err := svc.Create(context.Background(), uuid.New(), ports.ProfileInput{
		DisplayName: "Bob",
		Socials:     map[domain.Platform]string{"myspace": "bob"},
	})
	assertAppError(t, err, apperror.CodeValidation)
}

func TestProfileService_Create_HandleOwnedByOther(t *testing.T) {
	svc, repo, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformGitHub, "bob").
		Return(&domain.Profile{UserID: uuid.New()}, nil)

	_, err := svc.Create(ctx, uuid.New(), ports.ProfileInput{
		DisplayName: "Impostor",
		Socials:     map[domain.Platform]string{domain.PlatformGitHub: "bob"},
	})
	assertAppError(t, err, apperror.CodeHandleTaken)
}

func TestProfileService_Create_HandleRaceRollsBack(t *testing.T) {
	svc, repo, transactor, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}

	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformGitHub, "bob").Return(nil, nil)
	repo.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)
	transactor.EXPECT().Begin(ctx).Return(tx, nil)
	repo.EXPECT().Create(ctx, tx, gomock.Any()).Return(nil)
	repo.EXPECT().ReplaceSocials(ctx, tx, userID, gomock.Any()).
		Return(errors.Join(errors.New("insert github handle"), domain.ErrDuplicate))

	_, err := svc.Create(ctx, userID, ports.ProfileInput{
		DisplayName: "Bob",
		Socials:     map[domain.Platform]string{domain.PlatformGitHub: "bob"},
	})
	assertAppError(t, err, apperror.CodeHandleTaken)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack)
}

func TestProfileService_Update_Success(t *testing.T) {
	svc, repo, transactor, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	current := &domain.Profile{
		UserID:      userID,
		DisplayName: "Bob",
		Socials:     map[domain.Platform]string{domain.PlatformGitHub: "bob"},
	}

	// keeping your own handle is not a conflict
	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformGitHub, "bob").Return(current, nil)
	repo.EXPECT().GetByUserID(ctx, userID).Return(current, nil)
	transactor.EXPECT().Begin(ctx).Return(tx, nil)
	repo.EXPECT().Update(ctx, tx, gomock.Any()).Return(nil)
	repo.EXPECT().ReplaceSocials(ctx, tx, userID, map[domain.Platform]string{domain.PlatformGitHub: "bob"}).Return(nil)

	p, err := svc.Update(ctx, userID, ports.ProfileInput{
		DisplayName: "Robert",
		Country:     "NG",
		Socials:     map[domain.Platform]string{domain.PlatformGitHub: "bob"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert", p.DisplayName)
	assert.Equal(t, "NG", p.Country)
	assert.True(t, tx.committed)
}

func TestProfileService_Update_NoProfile(t *testing.T) {
	svc, repo, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	repo.EXPECT().GetByUserID(ctx, userID).Return(nil, nil)

	_, err := svc.Update(ctx, userID, ports.ProfileInput{DisplayName: "x"})
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestProfileService_GetBySocialHandle(t *testing.T) {
	svc, repo, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	want := &domain.Profile{UserID: uuid.New()}
	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformTwitter, "bob").Return(want, nil)
	repo.EXPECT().GetBySocialHandle(ctx, domain.PlatformTwitter, "Bob").Return(nil, nil)

	got, err := svc.GetBySocialHandle(ctx, domain.PlatformTwitter, "bob")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = svc.GetBySocialHandle(ctx, domain.PlatformTwitter, "Bob")
	assertAppError(t, err, apperror.CodeNotFound)

	_, err = svc.GetBySocialHandle(ctx, "orkut", "bob")
	assertAppError(t, err, apperror.CodeValidation)
}

func TestProfileService_GetByUserID_NotFound(t *testing.T) {
	svc, repo, _, ctrl := setupProfileService(t)
	defer ctrl.Finish()

	ctx := context.Background()
	id := uuid.New()
	repo.EXPECT().GetByUserID(ctx, id).Return(nil, nil)

	_, err := svc.GetByUserID(ctx, id)
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestProfileService_GetByUsername(t *testing.T) {
	svc, repo, users, _, ctrl := setupProfileServiceWithUsers(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Username: "alice"}
	want := &domain.Profile{UserID: user.ID, DisplayName: "Alice"}

	users.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	repo.EXPECT().GetByUserID(ctx, user.ID).Return(want, nil)

	got, err := svc.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProfileService_GetByUsername_UnknownUser(t *testing.T) {
	svc, _, users, _, ctrl := setupProfileServiceWithUsers(t)
	defer ctrl.Finish()

	ctx := context.Background()
	users.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, err := svc.GetByUsername(ctx, "ghost")
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestProfileService_GetByUsername_NoProfile(t *testing.T) {
	svc, repo, users, _, ctrl := setupProfileServiceWithUsers(t)
	defer ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Username: "bob"}
	users.EXPECT().GetByUsername(ctx, "bob").Return(user, nil)
	repo.EXPECT().GetByUserID(ctx, user.ID).Return(nil, nil)

	_, err := svc.GetByUsername(ctx, "bob")
	assertAppError(t, err, apperror.CodeNotFound)
}

func TestProfileService_GetByUsername_DBError(t *testing.T) {
	svc, _, users, _, ctrl := setupProfileServiceWithUsers(t)
	defer ctrl.Finish()

	ctx := context.Background()
	users.EXPECT().GetByUsername(ctx, "alice").Return(nil, errors.New("connection reset"))

	_, err := svc.GetByUsername(ctx, "alice")
	assertAppError(t, err, apperror.CodeInternal)
}
