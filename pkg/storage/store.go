package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound indicates the key has no stored value.
var ErrKeyNotFound = errors.New("storage.key_not_found")

// Store is the persistence contract for session material.
type Store interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores the value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
