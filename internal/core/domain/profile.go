package domain

import (
	"time"

	"github.com/google/uuid"
)

// Platform is a social network a profile can link a handle for.
type Platform string

const (
	PlatformTwitter  Platform = "twitter"
	PlatformFacebook Platform = "facebook"
	PlatformLinkedIn Platform = "linkedin"
	PlatformGitHub   Platform = "github"
	PlatformYouTube  Platform = "youtube"
)

// Platforms lists the supported social platforms.
var Platforms = []Platform{PlatformTwitter, PlatformFacebook, PlatformLinkedIn, PlatformGitHub, PlatformYouTube}

// IsValid reports whether p is a supported platform.
func (p Platform) IsValid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// Profile is the public face of a user. Socials maps platform to handle;
// a handle is linked to at most one profile per platform.
type Profile struct {
	UserID      uuid.UUID           `json:"user_id"`
	DisplayName string              `json:"display_name"`
	Bio         string              `json:"bio,omitempty"`
	Country     string              `json:"country,omitempty"`
	Socials     map[Platform]string `json:"socials"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}
