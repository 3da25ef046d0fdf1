// Package session persists the bearer token and exposes it to the rest of
// the client through an explicitly passed Session.
//
// Exactly one value is stored, under TokenKey. Absence of that value is the
// only signal of "logged out"; no expiry or refresh is tracked.
package session

import (
	"context"
	"errors"
)

// TokenKey is the well-known key the token is stored under.
const TokenKey = "token"

// ErrNoToken is returned by operations that need a stored token.
var ErrNoToken = errors.New("no session token")

// Store is durable storage for a single token.
type Store interface {
	// Get returns the stored token. ok is false when none is stored.
	Get(ctx context.Context) (token string, ok bool, err error)
	Set(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}
