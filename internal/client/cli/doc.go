// Package cli provides the interactive PantryKeeper command-line client.
//
// The REPL reads one command per line and talks to the server through
// client.APIClient. Commands that change or read the pantry require a
// login; the access token is refreshed transparently when it expires.
//
// See App and runREPL for details.
package cli
