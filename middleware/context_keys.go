package middleware

// Keys used to stash request-scoped values in the gin context.
const (
	// UserIDKey holds the authenticated user's ID.
	UserIDKey = "user_id"
	// RequestIDKey holds the request correlation ID.
	RequestIDKey = "request_id"
)
