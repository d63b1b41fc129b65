package register

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeAccountLocked       = "ACCOUNT_LOCKED"
	TextCodeAccountDisabled     = "ACCOUNT_DISABLED"
	TextCodeRoleNotConfigured   = "ROLE_NOT_CONFIGURED"
	TextCodeActivationExpired   = "ACTIVATION_CODE_EXPIRED"
	TextCodeActivationNotFound  = "ACTIVATION_CODE_NOT_FOUND"
	TextCodeActivationValidated = "ACTIVATION_CODE_USED"
	TextCodeDeliveryFailed      = "DELIVERY_FAILED"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTokenMalformed      = "TOKEN_MALFORMED"
	TextCodeSessionDecodeError  = "SESSION_DECODE_ERROR"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound)

// ErrMismatchedHashAndPassword covers both unknown identifiers and bad
// passwords so callers cannot tell which field was wrong.
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrAccountLocked rejects logins for administratively locked accounts
var ErrAccountLocked = goerrors.New("account is locked", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountLocked)

// ErrAccountNotActivated rejects logins before email activation completed
var ErrAccountNotActivated = goerrors.New("account is not activated", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled)

// ErrRoleNotConfigured means the default role is missing from the database.
// This is a deployment bug, not a user error.
var ErrRoleNotConfigured = goerrors.New("default role is not configured", goerrors.CategoryInternal).
	WithTextCode(TextCodeRoleNotConfigured)

// ErrActivationCodeNotFound is returned when no token matches the given code
var ErrActivationCodeNotFound = goerrors.New("activation code not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeActivationNotFound)

// ErrActivationCodeExpired signals the submitted code expired and a
// replacement was issued; the caller must tell the user a new code was sent.
var ErrActivationCodeExpired = goerrors.New("activation code expired, a new code has been sent", goerrors.CategoryValidation).
	WithTextCode(TextCodeActivationExpired)

// ErrActivationCodeUsed is returned when the conditional validation write
// finds the code already claimed by a concurrent activation.
var ErrActivationCodeUsed = goerrors.New("activation code has already been used", goerrors.CategoryConflict).
	WithTextCode(TextCodeActivationValidated)

// ErrTokenExpired is returned when a session token is past its expiration
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed is returned for structurally invalid or forged tokens
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrUnableToDecodeSession unable to decode claims into a session
var ErrUnableToDecodeSession = goerrors.New("unable to decode session", goerrors.CategoryAuth).
	WithTextCode(TextCodeSessionDecodeError)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.TextCode == TextCodeTokenExpired {
			return true
		}
	}

	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		if richErr.TextCode == TextCodeTokenMalformed {
			return true
		}
	}

	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
