// Package common contains shared constants and sentinel errors used across
// PantryKeeper components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer access token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName is the header used to correlate a request across logs.
const RequestIDHeaderName = "X-Request-ID"
