package storage

import "context"

// Entry is one key/value record returned by a prefix scan.
type Entry struct {
	Key   []byte
	Value []byte
}

// Backend is the durable key/value store behind the pool registry. Scan
// returns entries in ascending key order. Implementations do not interpret
// keys or values.
type Backend interface {
	Load(ctx context.Context, key []byte) ([]byte, bool, error)
	Save(ctx context.Context, key, value []byte) error
	Scan(ctx context.Context, prefix []byte) ([]Entry, error)
}
