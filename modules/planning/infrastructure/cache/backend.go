package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound      = errors.New("cache entry not found")
	ErrInvalidKey    = errors.New("invalid cache key")
	ErrInvalidConfig = errors.New("invalid cache configuration")
)

func invalidConfig(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}

// Entry is one cached upstream payload.
type Entry struct {
	Key      string
	Payload  []byte
	StoredAt time.Time
}

// Info describes an entry without its payload.
type Info struct {
	Key      string
	Size     int64
	StoredAt time.Time
}

// Backend stores entries. Implementations must replace an entry atomically on Store
// and return ErrNotFound from Load for unknown keys.
type Backend interface {
	Load(ctx context.Context, key string) (Entry, error)
	Store(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	DeleteAll(ctx context.Context) (int, error)
	List(ctx context.Context) ([]Info, error)
}
