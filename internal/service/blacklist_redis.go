package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenBlacklist is the shared revocation store. Entries are written
// with SET EX so Redis removes them exactly when the blacklisted token
// would have expired anyway.
type RedisTokenBlacklist struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisTokenBlacklist(client redis.UniversalClient, prefix string) *RedisTokenBlacklist {
	if prefix == "" {
		prefix = "token_blacklist"
	}
	return &RedisTokenBlacklist{
		client: client,
		prefix: prefix,
	}
}

func (b *RedisTokenBlacklist) Revoke(ctx context.Context, jti, marker string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if marker == "" {
		marker = RevokedMarker
	}
	return b.client.Set(ctx, b.key(jti), marker, ttl).Err()
}

func (b *RedisTokenBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := b.client.Get(ctx, b.key(jti)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (b *RedisTokenBlacklist) key(jti string) string {
	return fmt.Sprintf("%s:%s", b.prefix, jti)
}
