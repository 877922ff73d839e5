package service

import (
	"context"
	"sync"
	"time"
)

// RevokedMarker is the value stored under a blacklisted jti. The marker is
// informational; presence of the key alone makes the token unacceptable.
const RevokedMarker = "canceled"

// TokenBlacklist is the revocation store: a shared key-value store with
// per-key TTL. An entry never outlives the token it blacklists, so expiry
// of the key and expiry of the token coincide and no explicit delete is
// needed.
type TokenBlacklist interface {
	// Revoke marks jti as revoked for ttl. A non-positive ttl is never
	// written: the token is already expired and nothing needs blacklisting.
	Revoke(ctx context.Context, jti, marker string, ttl time.Duration) error
	// IsRevoked reports whether jti is currently blacklisted.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// InMemoryTokenBlacklist keeps revocations in process memory. Suitable for
// tests and single-process runs only; horizontally scaled deployments need
// the Redis store.
type InMemoryTokenBlacklist struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{entries: make(map[string]time.Time)}
}

func (b *InMemoryTokenBlacklist) Revoke(_ context.Context, jti, _ string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = time.Now().UTC().Add(ttl)
	return nil
}

func (b *InMemoryTokenBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	now := time.Now().UTC()
	b.mu.RLock()
	expiresAt, ok := b.entries[jti]
	b.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if now.After(expiresAt) {
		b.mu.Lock()
		if exp, ok := b.entries[jti]; ok && now.After(exp) {
			delete(b.entries, jti)
		}
		b.mu.Unlock()
		return false, nil
	}
	return true, nil
}
