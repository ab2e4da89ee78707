// Package common contains shared constants, storage keys and small helpers
// used across coachlogin components.
package common

// Headers set on every outbound API request.
const (
	RequestIDHeaderName = "X-Request-ID"
	UserAgentHeaderName = "User-Agent"
)

// Durable store keys. They mirror the keys the web client keeps in local
// storage, so both clients agree on the session layout.
const (
	DurableTokenKey           = "token"
	DurableRefreshTokenKey    = "refresh_token"
	DurableIsAuthenticatedKey = "isAuthenticated"
)

// Cookie names written for client-role sessions.
const (
	CookieAccessToken     = "access_token"
	CookieRefreshToken    = "refresh_token"
	CookieIsAuthenticated = "isAuthenticated"
	CookieUserInfo        = "user_info"
)

// AuthenticatedValue is the stored form of the authenticated flag.
const AuthenticatedValue = "true"
