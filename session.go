package register

import (
	"time"
)

// AuthenticatedPrincipal is the value object handed to callers after a
// session token has been verified. It carries everything downstream
// request filtering needs without another store lookup.
type AuthenticatedPrincipal struct {
	Subject     string     `json:"subject,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Authorities []string   `json:"authorities,omitempty"`
	Issuer      string     `json:"issuer,omitempty"`
	IssuedAt    *time.Time `json:"issued_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// HasAuthority checks whether the principal carries the given role name
func (p *AuthenticatedPrincipal) HasAuthority(name string) bool {
	for _, role := range p.Authorities {
		if role == name {
			return true
		}
	}
	return false
}

// Expired reports whether the principal's token is past its expiration
// at the given instant. The expiration instant itself is expired.
func (p *AuthenticatedPrincipal) Expired(now time.Time) bool {
	if p.ExpiresAt == nil {
		return false
	}
	return !now.Before(*p.ExpiresAt)
}

func principalFromAuthClaims(claims AuthClaims) (*AuthenticatedPrincipal, error) {
	if claims == nil {
		return nil, ErrUnableToDecodeSession
	}

	principal := &AuthenticatedPrincipal{
		Subject:     claims.Subject(),
		DisplayName: claims.FullName(),
		Authorities: claims.Authorities(),
	}

	if issued := claims.IssuedAt(); !issued.IsZero() {
		principal.IssuedAt = &issued
	}

	if expires := claims.Expires(); !expires.IsZero() {
		principal.ExpiresAt = &expires
	}

	if sc, ok := claims.(*SessionClaims); ok {
		principal.Issuer = sc.RegisteredClaims.Issuer
	}

	return principal, nil
}
