// Package storage defines the durable key-value adapter backing the offline
// core. Concrete backends live in subpackages.
package storage

import "context"

// Store is a string-keyed durable blob store.
//
// Keys in use: "offline_goals", "offline_retrospects", "sync_queue",
// "goal_notifications_<goalID>" and "session".
type Store interface {
	// Get returns the blob stored under key, or errs.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the blob under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
