package register

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the structured claims carried by a session token
type AuthClaims interface {
	Subject() string
	FullName() string
	Authorities() []string
	HasAuthority(name string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// SessionClaims is the concrete implementation of AuthClaims
type SessionClaims struct {
	jwt.RegisteredClaims
	Name     string         `json:"full_name,omitempty"`
	Roles    []string       `json:"authorities,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"` // extension payload
}

// Verify interface compliance
var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim, the user's email
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// FullName returns the display name claim
func (c *SessionClaims) FullName() string {
	return c.Name
}

// Authorities returns the role names embedded in the token
func (c *SessionClaims) Authorities() []string {
	return c.Roles
}

// HasAuthority checks whether the token carries the given role name
func (c *SessionClaims) HasAuthority(name string) bool {
	for _, role := range c.Roles {
		if role == name {
			return true
		}
	}
	return false
}

// Expires returns the expiration time, zero if unset
func (c *SessionClaims) Expires() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// IssuedAt returns the issue time, zero if unset
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.IssuedAt.Time
}
