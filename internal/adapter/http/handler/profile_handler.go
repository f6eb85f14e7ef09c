package handler

import (
	"context"

	"social-wallet-api/internal/adapter/http/dto"
	"social-wallet-api/internal/adapter/http/middleware"
	"social-wallet-api/internal/core/domain"
	"social-wallet-api/internal/core/ports"
	"social-wallet-api/pkg/apperror"
	"social-wallet-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProfileHandler handles the profile directory.
type ProfileHandler struct {
	profileSvc ports.ProfileService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileSvc ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// Create handles POST /api/v1/profiles.
func (h *ProfileHandler) Create(c *gin.Context) {
	h.write(c, h.profileSvc.Create, response.Created)
}

// Update handles PUT /api/v1/profiles/me.
func (h *ProfileHandler) Update(c *gin.Context) {
	h.write(c, h.profileSvc.Update, response.OK)
}

type profileWriter func(ctx context.Context, userID uuid.UUID, in ports.ProfileInput) (*domain.Profile, error)

func (h *ProfileHandler) write(c *gin.Context, save profileWriter, respond func(*gin.Context, interface{})) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	profile, err := save(c.Request.Context(), userID, ports.ProfileInput{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Country:     req.Country,
		Socials:     req.SocialsByPlatform(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respond(c, profile)
}

// Me handles GET /api/v1/profiles/me.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	profile, err := h.profileSvc.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// ByUsername handles GET /api/v1/profiles/users/:username.
func (h *ProfileHandler) ByUsername(c *gin.Context) {
	profile, err := h.profileSvc.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}

// BySocialHandle handles GET /api/v1/profiles/:platform/:handle.
func (h *ProfileHandler) BySocialHandle(c *gin.Context) {
	platform := domain.Platform(c.Param("platform"))

	profile, err := h.profileSvc.GetBySocialHandle(c.Request.Context(), platform, c.Param("handle"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, profile)
}
