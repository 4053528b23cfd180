package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type redisEnvelope struct {
	StoredAt int64  `json:"storedAt"`
	Payload  []byte `json:"payload"`
}

// RedisBackend stores entries as JSON envelopes under prefix. Keys carry a native
// expiry so abandoned entries disappear without a prune.
type RedisBackend struct {
	client *redis.Client
	prefix string
	expiry time.Duration
}

func NewRedisBackend(client *redis.Client, prefix string, expiry time.Duration) (*RedisBackend, error) {
	if client == nil {
		return nil, invalidConfig("redis client is required")
	}
	if prefix == "" {
		prefix = "crewplan:cache:"
	}
	return &RedisBackend{client: client, prefix: prefix, expiry: expiry}, nil
}

func (r *RedisBackend) key(k string) string {
	return r.prefix + k
}

func (r *RedisBackend) Load(ctx context.Context, key string) (Entry, error) {
	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, pkgerrors.Wrap(err, "redis get")
	}
	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		// unreadable envelope, same as a missing entry
		return Entry{}, ErrNotFound
	}
	return Entry{Key: key, Payload: env.Payload, StoredAt: time.Unix(0, env.StoredAt)}, nil
}

func (r *RedisBackend) Store(ctx context.Context, entry Entry) error {
	if !validKey(entry.Key) {
		return ErrInvalidKey
	}
	raw, err := json.Marshal(redisEnvelope{StoredAt: entry.StoredAt.UnixNano(), Payload: entry.Payload})
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key(entry.Key), raw, r.expiry).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis set")
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return pkgerrors.Wrap(err, "redis del")
	}
	return nil
}

func (r *RedisBackend) DeleteAll(ctx context.Context) (int, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, pkgerrors.Wrap(err, "redis del")
	}
	return int(n), nil
}

func (r *RedisBackend) List(ctx context.Context) ([]Info, error) {
	keys, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(keys))
	for _, k := range keys {
		raw, err := r.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, pkgerrors.Wrap(err, "redis get")
		}
		var env redisEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		out = append(out, Info{
			Key:      k[len(r.prefix):],
			Size:     int64(len(env.Payload)),
			StoredAt: time.Unix(0, env.StoredAt),
		})
	}
	return out, nil
}

func (r *RedisBackend) scan(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 200).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "redis scan")
	}
	return keys, nil
}
