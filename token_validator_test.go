package register_test

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-register"
	"github.com/stretchr/testify/assert"
)

func TestTokenValidatorFunc(t *testing.T) {
	t.Run("delegates to the wrapped function", func(t *testing.T) {
		want := &register.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "jane@example.com"},
		}

		validator := register.TokenValidatorFunc(func(tokenString string) (register.AuthClaims, error) {
			assert.Equal(t, "raw-token", tokenString)
			return want, nil
		})

		claims, err := validator.Validate("raw-token")

		assert.NoError(t, err)
		assert.Equal(t, "jane@example.com", claims.Subject())
	})

	t.Run("nil func fails safe", func(t *testing.T) {
		var validator register.TokenValidatorFunc

		claims, err := validator.Validate("raw-token")

		assert.Nil(t, claims)
		assert.Error(t, err)
	})
}

func TestMultiTokenValidator(t *testing.T) {
	claimsFor := func(subject string) *register.SessionClaims {
		return &register.SessionClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: subject},
		}
	}

	t.Run("first validator wins", func(t *testing.T) {
		first := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			return claimsFor("first"), nil
		})
		second := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			t.Fatal("second validator should not run")
			return nil, nil
		})

		validator := register.NewMultiTokenValidator(first, second)

		claims, err := validator.Validate("raw-token")

		assert.NoError(t, err)
		assert.Equal(t, "first", claims.Subject())
	})

	t.Run("malformed errors fall through to the next validator", func(t *testing.T) {
		first := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			return nil, register.ErrTokenMalformed
		})
		second := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			return claimsFor("second"), nil
		})

		validator := register.NewMultiTokenValidator(first, second)

		claims, err := validator.Validate("raw-token")

		assert.NoError(t, err)
		assert.Equal(t, "second", claims.Subject())
	})

	t.Run("non malformed errors stop the chain", func(t *testing.T) {
		first := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			return nil, register.ErrTokenExpired
		})
		second := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			t.Fatal("second validator should not run")
			return nil, nil
		})

		validator := register.NewMultiTokenValidator(first, second)

		claims, err := validator.Validate("raw-token")

		assert.Nil(t, claims)
		assert.True(t, register.IsTokenExpiredError(err))
	})

	t.Run("all malformed returns the last malformed error", func(t *testing.T) {
		malformed := register.TokenValidatorFunc(func(string) (register.AuthClaims, error) {
			return nil, register.ErrTokenMalformed
		})

		validator := register.NewMultiTokenValidator(malformed, malformed)

		claims, err := validator.Validate("raw-token")

		assert.Nil(t, claims)
		assert.True(t, register.IsMalformedError(err))
	})

	t.Run("empty validator list reports malformed", func(t *testing.T) {
		validator := register.NewMultiTokenValidator(nil, nil)

		claims, err := validator.Validate("raw-token")

		assert.Nil(t, claims)
		assert.True(t, register.IsMalformedError(err))
	})
}
