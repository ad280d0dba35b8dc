package contacts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Login failures. Unknown email and a bad password are deliberately two
// different user-visible errors, unlike token verification which always
// collapses to ErrUnauthorized for unauthenticated callers.
var (
	// ErrInvalidEmail means no account exists for the given email.
	ErrInvalidEmail = errors.New("invalid email", errors.CategoryAuth).
			WithTextCode("INVALID_EMAIL").
			WithCode(errors.CodeUnauthorized)

	// ErrInvalidPassword means the account exists but the hash check failed.
	ErrInvalidPassword = errors.New("invalid password", errors.CategoryAuth).
				WithTextCode("INVALID_PASSWORD").
				WithCode(errors.CodeUnauthorized)

	// ErrEmailNotConfirmed blocks login until the confirmation token is redeemed.
	ErrEmailNotConfirmed = errors.New("email not confirmed", errors.CategoryAuth).
				WithTextCode("EMAIL_NOT_CONFIRMED").
				WithCode(errors.CodeUnauthorized)
)

// Token verification failures. The refresh flow surfaces these granular
// kinds; the bearer middleware flattens all of them to ErrUnauthorized.
var (
	ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	ErrBadSignature = errors.New("token signature is invalid", errors.CategoryAuth).
			WithTextCode("BAD_SIGNATURE").
			WithCode(errors.CodeUnauthorized)

	ErrWrongScope = errors.New("invalid scope for token", errors.CategoryAuth).
			WithTextCode("WRONG_SCOPE").
			WithCode(errors.CodeUnauthorized)
)

// ErrRefreshTokenRevoked means the presented refresh token no longer matches
// the one stored on the account. The stored token is cleared as a side
// effect, so the client must log in again.
var ErrRefreshTokenRevoked = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode("REFRESH_TOKEN_REVOKED").
	WithCode(errors.CodeUnauthorized)

// ErrUnauthorized is the single undistinguished outcome the bearer middleware
// reports to unauthenticated callers, whatever check actually failed.
var ErrUnauthorized = errors.New("could not validate credentials", errors.CategoryAuth).
	WithTextCode("UNAUTHORIZED").
	WithCode(errors.CodeUnauthorized)

// ErrAccountExists rejects signups against an email already on file.
var ErrAccountExists = errors.New("account already exists", errors.CategoryConflict).
	WithTextCode("ACCOUNT_EXISTS")

// ErrVerificationFailed means a confirmation token did not resolve to a
// known account.
var ErrVerificationFailed = errors.New("verification error", errors.CategoryNotFound).
	WithTextCode("VERIFICATION_FAILED")

// ErrNoEmptyString rejects empty secrets before hashing
var ErrNoEmptyString = errors.New("value should not be an empty string", errors.CategoryBadInput)

// ErrMismatchedHashAndPassword is the hasher's mismatch result. Callers map
// it to a user-facing error; it carries no message worth leaking.
var ErrMismatchedHashAndPassword = errors.New("mismatched hash and password", errors.CategoryAuth)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
