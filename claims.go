package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims is the principal extracted from a validated token
type AuthClaims interface {
	Subject() string
	Authorities() []string
	HasAuthority(name string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	Auth []string `json:"auth,omitempty"`
}

var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the principal's login
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// Authorities returns the authority names encoded in the token
func (c *JWTClaims) Authorities() []string {
	return c.Auth
}

// HasAuthority checks whether the token carries the given authority
func (c *JWTClaims) HasAuthority(name string) bool {
	for _, granted := range c.Auth {
		if granted == name {
			return true
		}
	}
	return false
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
