package credentials

import (
	"context"
	"sync"
	"time"

	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
)

// RefreshMargin is how long before expiry a cached token is treated as
// stale. Returning a token that would expire mid-flight in the caller's
// next request is worse than refreshing early, so the margin is a fixed
// constant rather than a tunable.
const RefreshMargin = 5 * time.Minute

// TokenCache is a thread-safe in-memory store mapping cache identities
// (client id + tenant + scope set) to the last acquired token. Entries
// are created on first successful acquisition, overwritten on refresh,
// and never evicted for the life of the process.
//
// The cache is an explicitly owned object: inject one instance wherever
// silent renewal is wanted, and give tests their own.
type TokenCache struct {
	mu     sync.RWMutex
	tokens map[string]*identity.Token
}

// NewTokenCache creates an empty token cache.
func NewTokenCache() *TokenCache {
	return &TokenCache{
		tokens: make(map[string]*identity.Token),
	}
}

// Get returns the cached token for the given cache identity, or nil.
// The token is returned regardless of freshness; use GetOrRefresh for
// expiry-aware retrieval.
func (c *TokenCache) Get(cacheID string) *identity.Token {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens[cacheID]
}

// Store saves a token under the given cache identity, overwriting any
// prior entry.
func (c *TokenCache) Store(cacheID string, token *identity.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[cacheID] = token
}

// Count returns the number of cached tokens.
func (c *TokenCache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

// GetOrRefresh returns a fresh token for the credential, silently
// reusing the cached one when it does not expire within RefreshMargin
// and acquiring a new one otherwise.
//
// Concurrent callers observing a miss for the same identity may each
// issue their own refresh; the cache does not serialize in-flight
// refreshes and the last writer wins. The refresh is idempotent, so the
// race costs at most a duplicate token request.
func (c *TokenCache) GetOrRefresh(ctx context.Context, cred *Credential) (*identity.Token, error) {
	cacheID := cred.CacheID()

	if token := c.Get(cacheID); token != nil && !token.IsExpiredWithin(RefreshMargin) {
		logging.Debug("TokenCache", "Cache hit for grant=%s", cred.Kind())
		return token, nil
	}

	token, err := cred.AcquireToken(ctx)
	if err != nil {
		return nil, err
	}

	c.Store(cacheID, token)
	logging.Debug("TokenCache", "Stored token for grant=%s expires_in=%d", cred.Kind(), token.ExpiresIn)
	return token, nil
}
