// Package storage is the key-value layer behind the planner store.
//
// Keys are addressed by (scope, key). Profile data lives in the profile's
// scope; installation-wide keys use GlobalScope.
package storage

import (
	"context"
	"errors"
)

// GlobalScope holds keys that do not belong to a profile
const GlobalScope = ""

// Logical keys
const (
	KeyProfiles      = "profiles"
	KeyActiveProfile = "activeProfile"
	KeyData          = "data"
)

var (
	// ErrNotFound is returned by Get for a missing key
	ErrNotFound = errors.New("storage: key not found")
	// ErrQuotaExceeded is returned when a write does not fit
	ErrQuotaExceeded = errors.New("storage: quota exceeded")
)

// KV is a scoped key-value store
type KV interface {
	Get(ctx context.Context, scope, key string) ([]byte, error)
	Put(ctx context.Context, scope, key string, value []byte) error
	Delete(ctx context.Context, scope, key string) error
	Close() error
}
