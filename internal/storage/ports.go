package storage

import "context"

// KV is the persistence port used by the expense store: a flat map from
// well-known keys to serialized records, rewritten wholesale on every change.
type KV interface {
	// Get returns the value stored under key. found is false when the key
	// has never been written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
