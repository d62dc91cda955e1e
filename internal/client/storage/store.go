package storage

import "context"

// Well-known keys.
const (
	KeyToken = "token"
	KeyCart  = "userCart"
)

// Store is durable client-side key/value storage.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Take returns the value and removes the key in one step.
	Take(ctx context.Context, key string) ([]byte, error)
	Clear(ctx context.Context) error
	Close() error
}
