package model

import (
	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID    uuid.UUID
	Email string
	Role  string
}

// IsAdmin reports whether the principal holds the elevated role.
func (p *Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// RefreshRequest carries a refresh token for exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}
