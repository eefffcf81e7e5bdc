// Package client talks to the PantryKeeper HTTP API.
//
// APIClient wraps a resty client, keeps the token pair obtained at login,
// and refreshes it once when the server reports an expired access token.
// Server error bodies are decoded into *APIError, which matches the
// sentinel errors of this package with errors.Is.
package client
