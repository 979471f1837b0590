package utils

import (
	"context"
	"sync"
	"time"
)

const revokedPrefix = "labsite:jwt:revoked:"

var (
	revoked   = map[string]time.Time{}
	revokedMu sync.Mutex
)

// RevokeToken stores a token until its expiry so logout takes effect before the token expires.
func RevokeToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rc.Set(ctx, revokedPrefix+token, "1", ttl).Err(); err == nil {
			return
		}
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	now := time.Now()
	for k, exp := range revoked {
		if now.After(exp) {
			delete(revoked, k)
		}
	}
	revoked[token] = expiresAt
}

// IsTokenRevoked checks if a token was revoked before natural expiration.
func IsTokenRevoked(token string) bool {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// fail open on Redis errors and fall through to the local map
		if n, err := rc.Exists(ctx, revokedPrefix+token).Result(); err == nil && n > 0 {
			return true
		}
	}

	revokedMu.Lock()
	defer revokedMu.Unlock()
	exp, ok := revoked[token]
	if !ok {
		return false
	}
	if time.Now().After(exp) {
		delete(revoked, token)
		return false
	}
	return true
}
