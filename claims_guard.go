package register

import (
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

type immutableClaimsSnapshot struct {
	subject     string
	issuer      string
	name        string
	audience    []string
	authorities []string
	issuedAt    time.Time
	hasIssuedAt bool
	expiresAt   time.Time
	hasExpires  bool
}

func captureImmutableClaims(claims *SessionClaims) immutableClaimsSnapshot {
	var audienceCopy []string
	if len(claims.RegisteredClaims.Audience) > 0 {
		audienceCopy = append(audienceCopy, claims.RegisteredClaims.Audience...)
	}

	var authoritiesCopy []string
	if len(claims.Roles) > 0 {
		authoritiesCopy = append(authoritiesCopy, claims.Roles...)
	}

	snap := immutableClaimsSnapshot{
		subject:     claims.RegisteredClaims.Subject,
		issuer:      claims.RegisteredClaims.Issuer,
		name:        claims.Name,
		audience:    audienceCopy,
		authorities: authoritiesCopy,
	}

	if claims.RegisteredClaims.IssuedAt != nil {
		snap.issuedAt = claims.RegisteredClaims.IssuedAt.Time
		snap.hasIssuedAt = true
	}

	if claims.RegisteredClaims.ExpiresAt != nil {
		snap.expiresAt = claims.RegisteredClaims.ExpiresAt.Time
		snap.hasExpires = true
	}

	return snap
}

func (snap immutableClaimsSnapshot) validate(claims *SessionClaims) error {
	if claims.RegisteredClaims.Subject != snap.subject {
		return immutableClaimViolation("sub")
	}

	if claims.RegisteredClaims.Issuer != snap.issuer {
		return immutableClaimViolation("iss")
	}

	if claims.Name != snap.name {
		return immutableClaimViolation("full_name")
	}

	if !equalStrings(claims.RegisteredClaims.Audience, snap.audience) {
		return immutableClaimViolation("aud")
	}

	if !equalStrings(claims.Roles, snap.authorities) {
		return immutableClaimViolation("authorities")
	}

	if snap.hasIssuedAt {
		if claims.RegisteredClaims.IssuedAt == nil || !claims.RegisteredClaims.IssuedAt.Time.Equal(snap.issuedAt) {
			return immutableClaimViolation("iat")
		}
	} else if claims.RegisteredClaims.IssuedAt != nil {
		return immutableClaimViolation("iat")
	}

	if snap.hasExpires {
		if claims.RegisteredClaims.ExpiresAt == nil || !claims.RegisteredClaims.ExpiresAt.Time.Equal(snap.expiresAt) {
			return immutableClaimViolation("exp")
		}
	} else if claims.RegisteredClaims.ExpiresAt != nil {
		return immutableClaimViolation("exp")
	}

	return nil
}

func immutableClaimViolation(claim string) error {
	return goerrors.New(
		fmt.Sprintf("claims decorator mutated immutable claim %q", claim),
		goerrors.CategoryInternal,
	)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
