package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/worldacross/membership/internal/common"
)

// RedisStore keeps the credential under "<origin>:world_across_token".
// The key expires together with the credential.
type RedisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
}

// NewRedisStore namespaces the credential key by origin so several clients
// can share one Redis.
func NewRedisStore(client *redis.Client, origin string) *RedisStore {
	key := common.CredentialKey
	if origin != "" {
		key = origin + ":" + key
	}
	return &RedisStore{client: client, key: key, now: time.Now}
}

// DialRedis connects to addr and checks it answers PING.
func DialRedis(ctx context.Context, addr, origin string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unavailable: %w", addr, err)
	}
	return NewRedisStore(client, origin), nil
}

// Key is the Redis key holding the credential.
func (r *RedisStore) Key() string {
	return r.key
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	token, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", r.key, err)
	}
	return token, nil
}

// Save stores token with a TTL matching expiresAt. A zero or past expiresAt
// stores the token without expiry; verification will discard it on next load.
func (r *RedisStore) Save(ctx context.Context, token string, expiresAt time.Time) error {
	var ttl time.Duration
	if !expiresAt.IsZero() {
		if d := expiresAt.Sub(r.now()); d > 0 {
			ttl = d
		}
	}
	if err := r.client.Set(ctx, r.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
