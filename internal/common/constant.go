// Package common contains constants shared by the transport, the local
// storage and the tests.
package common

const (
	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"
	// BearerScheme prefixes the access token in AuthorizationHeaderName.
	BearerScheme = "Bearer"
	// RequestIDHeaderName carries a per-request UUID.
	RequestIDHeaderName = "X-Request-ID"

	// Metadata keys under which the token pair is persisted.
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
)
