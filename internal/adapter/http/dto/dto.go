package dto

import (
	"time"

	"social-wallet-api/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxMemoBytes is the memo cap shared by every network.
const MaxMemoBytes = 28

// RegisterRequest is the request body for user registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30,safe_id"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
}

// LoginRequest accepts a username or an email as identifier.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required,max=254"`
	Password   string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	UserID    string `json:"user_id"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // Unix timestamp
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse drops private fields from u.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileRequest is the body for creating or replacing a profile.
// Socials maps platform name to handle; an empty handle unlinks it.
type ProfileRequest struct {
	DisplayName string            `json:"display_name" binding:"required,min=1,max=100"`
	Bio         string            `json:"bio" binding:"max=500"`
	Country     string            `json:"country" binding:"max=56"`
	Socials     map[string]string `json:"socials" binding:"omitempty,max=5,dive,keys,social_platform,endkeys,omitempty,max=100,safe_id"`
}

// SocialsByPlatform converts validated socials into domain form.
func (r ProfileRequest) SocialsByPlatform() map[domain.Platform]string {
	out := make(map[domain.Platform]string, len(r.Socials))
	for p, h := range r.Socials {
		out[domain.Platform(p)] = h
	}
	return out
}

// SendPaymentRequest is the body for POST /wallets/:network/payments.
// Exactly one way of addressing the recipient is needed: To (an account
// id), Handle (a username), or Platform plus Handle.
type SendPaymentRequest struct {
	To       string          `json:"to" binding:"required_without=Handle,max=128"`
	Platform string          `json:"platform" binding:"omitempty,social_platform"`
	Handle   string          `json:"handle" binding:"required_with=Platform,max=100"`
	Amount   decimal.Decimal `json:"amount"`
	Memo     string          `json:"memo" binding:"memo_bytes" sanitize:"-"`
}

// IssueTokenRequest is the body for POST /wallets/:network/tokens.
type IssueTokenRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=100"`
	Symbol        string `json:"symbol" binding:"required,min=1,max=32,alphanum"`
	InitialSupply uint64 `json:"initial_supply" binding:"required,gt=0"`
}

// LimitQuery is the optional ?limit= on list endpoints. Zero means default.
type LimitQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=0,max=1000"`
}

// WalletResponse is the public view of a wallet record.
type WalletResponse struct {
	Network            domain.Network `json:"network"`
	AccountID          string         `json:"account_id"`
	PublicKey          string         `json:"public_key"`
	LastTransactionRef *string        `json:"last_transaction_ref,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
}

// NewWalletResponse drops the sealed key and internal ids.
func NewWalletResponse(w *domain.WalletAccount) WalletResponse {
	return WalletResponse{
		Network:            w.Network,
		AccountID:          w.AccountID,
		PublicKey:          w.PublicKey,
		LastTransactionRef: w.LastTransactionRef,
		CreatedAt:          w.CreatedAt,
	}
}

// BalanceResponse lists the wallet's holdings.
type BalanceResponse struct {
	Network  domain.Network   `json:"network"`
	Balances []domain.Balance `json:"balances"`
}
