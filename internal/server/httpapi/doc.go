// Package httpapi exposes the pantry services over HTTP with gin. Requests
// and responses are JSON, dates travel as YYYY-MM-DD.
package httpapi
