// Package common contains shared constants and sentinel errors used across
// the SANes client components.
package common

// AuthorizationHeaderName is the HTTP header carrying the session token on
// outbound requests.
const AuthorizationHeaderName = "Authorization"

// AuthorizationScheme prefixes the token value, e.g. "Token 9944b0...".
const AuthorizationScheme = "Token"

// RequestIDHeaderName is attached to every outbound request for log correlation.
const RequestIDHeaderName = "X-Request-ID"

// Keys of the persisted session pair. They are always written and cleared together.
const (
	AuthTokenKey = "authToken"
	UserDataKey  = "userData"
)
