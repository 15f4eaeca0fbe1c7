package prefs

import "context"

// Storage keys. The state blob and the last-viewed location are persisted
// independently.
const (
	stateKey      = "skycast:state"
	lastViewedKey = "skycast:last-viewed"
)

// Repository is a namespaced key-value store for JSON-serialized blobs.
type Repository interface {
	// Get returns the value for key, or ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores the value for key, overwriting any existing value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
