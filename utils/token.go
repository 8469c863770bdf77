package utils

import (
	"errors"
	"sync"
	"time"
)

var ErrTokenRevoked = errors.New("token has been revoked")

var (
	blacklistedTokens = make(map[string]time.Time)
	blacklistMutex    sync.RWMutex
	cleanupOnce       sync.Once
)

// BlacklistToken invalidates a token until its natural 24h expiry.
func BlacklistToken(token string) {
	cleanupOnce.Do(func() {
		go cleanupBlacklist()
	})

	blacklistMutex.Lock()
	defer blacklistMutex.Unlock()
	blacklistedTokens[token] = time.Now().Add(24 * time.Hour)
}

func IsTokenBlacklisted(token string) bool {
	blacklistMutex.RLock()
	defer blacklistMutex.RUnlock()

	if expiry, exists := blacklistedTokens[token]; exists {
		return time.Now().Before(expiry)
	}
	return false
}

func cleanupBlacklist() {
	for {
		time.Sleep(1 * time.Hour)
		blacklistMutex.Lock()
		now := time.Now()
		for token, expiry := range blacklistedTokens {
			if now.After(expiry) {
				delete(blacklistedTokens, token)
			}
		}
		blacklistMutex.Unlock()
	}
}

// ValidateToken parses a token and rejects blacklisted ones.
func ValidateToken(tokenString string) (*CustomClaims, error) {
	if IsTokenBlacklisted(tokenString) {
		return nil, ErrTokenRevoked
	}
	return ParseToken(tokenString)
}
