package cli

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"graphauth/pkg/credentials"
	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
)

// DefaultTokenStorageDir is the default directory for stored tokens,
// relative to the user's home directory.
const DefaultTokenStorageDir = ".config/graphauth/tokens"

// StoredToken is a token at rest together with the metadata needed to
// find and display it. Token values are never logged; only the cache
// id appears in diagnostics.
type StoredToken struct {
	identity.Token

	// CacheID is the client/tenant/scope fingerprint the token was
	// acquired for.
	CacheID string `json:"cache_id"`

	// CreatedAt is when the token was stored.
	CreatedAt time.Time `json:"created_at"`
}

// TokenStore persists tokens keyed by cache identity. Files are
// written with 0600 permissions into a 0700 directory; an in-memory
// map fronts the files.
type TokenStore struct {
	mu         sync.RWMutex
	storageDir string
	tokens     map[string]*StoredToken
	fileMode   bool
}

// TokenStoreConfig configures the token store.
type TokenStoreConfig struct {
	// StorageDir is the directory for token files. Defaults to
	// ~/.config/graphauth/tokens.
	StorageDir string

	// FileMode enables file persistence. When false, tokens live only
	// in memory.
	FileMode bool
}

// NewTokenStore creates a token store, creating the storage directory
// when file persistence is enabled.
func NewTokenStore(cfg TokenStoreConfig) (*TokenStore, error) {
	storageDir := cfg.StorageDir
	if storageDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		storageDir = filepath.Join(homeDir, DefaultTokenStorageDir)
	}

	store := &TokenStore{
		storageDir: storageDir,
		tokens:     make(map[string]*StoredToken),
		fileMode:   cfg.FileMode,
	}

	if cfg.FileMode {
		if err := os.MkdirAll(storageDir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create token storage directory: %w", err)
		}
	}

	return store, nil
}

// Store saves a token under its cache identity, overwriting any
// previous entry.
func (s *TokenStore) Store(cacheID string, token *identity.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := &StoredToken{
		Token:     *token,
		CacheID:   cacheID,
		CreatedAt: time.Now(),
	}

	key := s.fileKey(cacheID)
	s.tokens[key] = stored

	if s.fileMode {
		if err := s.writeTokenFile(key, stored); err != nil {
			logging.Warn("TokenStore", "Failed to persist token for %s: %v", cacheID, err)
			return fmt.Errorf("failed to persist token: %w", err)
		}
		logging.Debug("TokenStore", "Stored token for %s (expires %s)", cacheID,
			stored.ExpiresAt().Format(time.RFC3339))
	}

	return nil
}

// Get returns the stored token for a cache identity, or nil when none
// exists or the stored token is within the refresh margin of expiry.
func (s *TokenStore) Get(cacheID string) *StoredToken {
	key := s.fileKey(cacheID)

	s.mu.RLock()
	if token, ok := s.tokens[key]; ok && tokenUsable(token) {
		s.mu.RUnlock()
		return token
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.tokens[key]; ok {
		if tokenUsable(token) {
			return token
		}
		delete(s.tokens, key)
		return nil
	}

	if s.fileMode {
		token, err := s.readTokenFile(key)
		if err == nil && tokenUsable(token) {
			s.tokens[key] = token
			return token
		}
	}

	return nil
}

// Delete removes the stored token for a cache identity.
func (s *TokenStore) Delete(cacheID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.fileKey(cacheID)
	delete(s.tokens, key)

	if s.fileMode {
		err := os.Remove(filepath.Join(s.storageDir, key+".json"))
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	logging.Debug("TokenStore", "Deleted token for %s", cacheID)
	return nil
}

// Clear removes all stored tokens, in memory and on disk.
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens = make(map[string]*StoredToken)

	if !s.fileMode {
		return nil
	}

	entries, err := os.ReadDir(s.storageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read token directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(s.storageDir, entry.Name())); err != nil {
			return fmt.Errorf("failed to remove token file %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// tokenUsable reports whether a stored token can still be handed out.
// The executor's refresh margin doubles as the validity buffer here so
// a token returned by the store will not expire mid-use.
func tokenUsable(token *StoredToken) bool {
	if token == nil || token.AccessToken == "" {
		return false
	}
	return !token.IsExpiredWithin(credentials.RefreshMargin)
}

// fileKey hashes a cache identity into a filesystem-safe name.
func (s *TokenStore) fileKey(cacheID string) string {
	hash := sha256.Sum256([]byte(cacheID))
	return hex.EncodeToString(hash[:16])
}

func (s *TokenStore) writeTokenFile(key string, token *StoredToken) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.storageDir, key+".json"), data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func (s *TokenStore) readTokenFile(key string) (*StoredToken, error) {
	// #nosec G304 -- the path is derived from a hashed key, not user input
	data, err := os.ReadFile(filepath.Join(s.storageDir, key+".json"))
	if err != nil {
		return nil, err
	}

	var token StoredToken
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}
