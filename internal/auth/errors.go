package auth

import "errors"

// Sentinel errors returned by Verify.
var (
	// ErrTokenMalformed indicates the token could not be decoded.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalidSignature indicates the signature does not match or
	// uses an algorithm other than HS256.
	ErrTokenInvalidSignature = errors.New("token signature invalid")

	// ErrTokenInvalid covers every other rejection, such as a wrong
	// issuer or a missing subject.
	ErrTokenInvalid = errors.New("token invalid")
)

// ErrMissingSecret is returned by NewHMACTokens without a secret.
var ErrMissingSecret = errors.New("signing secret is required")
