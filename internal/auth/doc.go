// Package auth issues and verifies the bearer tokens of the users API.
//
// Tokens are HS256 JWTs carrying the user id as subject and the email
// as a private claim. Verify reports failures through the sentinels
// ErrTokenMalformed, ErrTokenExpired, ErrTokenInvalidSignature and
// ErrTokenInvalid, which the HTTP layer maps to distinct messages.
package auth
