package middleware

// HTTP header constants.
const (
	// HeaderContentType is the Content-Type header name.
	HeaderContentType = "Content-Type"

	// HeaderAuthorization is the Authorization header name.
	HeaderAuthorization = "Authorization"

	// HeaderRetryAfter is the Retry-After header name.
	HeaderRetryAfter = "Retry-After"

	// HeaderXRequestID is the X-Request-ID header name.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXForwardedFor is the X-Forwarded-For header name.
	HeaderXForwardedFor = "X-Forwarded-For"

	// HeaderRateLimitLimit is the X-RateLimit-Limit header name.
	HeaderRateLimitLimit = "X-RateLimit-Limit"

	// HeaderRateLimitRemaining is the X-RateLimit-Remaining header name.
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
)

// Rejection messages.
const (
	MsgServerError          = "Server error"
	MsgContentTypeRequired  = "Content-Type header is required"
	MsgContentTypeJSON      = "application/json is required"
	MsgTokenNotProvided     = "Token not provided"
	MsgTokenExpired         = "Expired token"
	MsgTokenInvalid         = "Invalid token"
	MsgAuthenticationFailed = "Authentication is failed"
	MsgTooManyRequests      = "Too many requests"
	MsgBodyTooLarge         = "Request body too large"
)

// bearerScheme is the only accepted Authorization scheme.
const bearerScheme = "Bearer"
