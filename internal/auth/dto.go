package auth

import (
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// LoginRequest captures the operator credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token for the admin API.
type LoginResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Email       string          `json:"email"`
	Role        enums.AdminRole `json:"role"`
}

// SessionResponse describes the operator a token was issued to.
type SessionResponse struct {
	Email   string          `json:"email"`
	Role    enums.AdminRole `json:"role"`
	TokenID string          `json:"token_id,omitempty"`
}
