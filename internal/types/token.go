package types

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the authenticated identity attached to a request
type Principal struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// SessionClaims represents the claims in a session token
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
}

// Principal returns the identity carried by the claims
func (c *SessionClaims) Principal() *Principal {
	return &Principal{UserID: c.UserID, Username: c.Username}
}
