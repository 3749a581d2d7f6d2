package credentials

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"graphauth/pkg/logging"
)

// DefaultDiscoveryCacheTTL is how long a fetched OpenID configuration
// document stays cached before it is re-fetched.
const DefaultDiscoveryCacheTTL = 30 * time.Minute

// OpenIDConfiguration is the OpenID Provider configuration document
// served from the well-known endpoint. It is used for diagnostics and
// validation; the normal token flow resolves endpoints without it.
type OpenIDConfiguration struct {
	Issuer                            string   `json:"issuer"`
	AuthorizationEndpoint             string   `json:"authorization_endpoint"`
	TokenEndpoint                     string   `json:"token_endpoint"`
	DeviceAuthorizationEndpoint       string   `json:"device_authorization_endpoint,omitempty"`
	UserinfoEndpoint                  string   `json:"userinfo_endpoint,omitempty"`
	JwksURI                           string   `json:"jwks_uri,omitempty"`
	ScopesSupported                   []string `json:"scopes_supported,omitempty"`
	ResponseTypesSupported            []string `json:"response_types_supported,omitempty"`
	GrantTypesSupported               []string `json:"grant_types_supported,omitempty"`
	TokenEndpointAuthMethodsSupported []string `json:"token_endpoint_auth_methods_supported,omitempty"`
	CodeChallengeMethodsSupported     []string `json:"code_challenge_methods_supported,omitempty"`
}

type discoveryCacheEntry struct {
	config    *OpenIDConfiguration
	fetchedAt time.Time
}

// Discoverer fetches and caches OpenID configuration documents.
// Concurrent requests for the same endpoint are deduplicated with
// singleflight; results are cached with a TTL.
type Discoverer struct {
	httpClient *http.Client
	ttl        time.Duration

	mu    sync.RWMutex
	cache map[string]*discoveryCacheEntry
	group singleflight.Group
}

// DiscovererOption configures a Discoverer.
type DiscovererOption func(*Discoverer)

// WithDiscoveryHTTPClient sets a custom HTTP client.
func WithDiscoveryHTTPClient(client *http.Client) DiscovererOption {
	return func(d *Discoverer) {
		d.httpClient = client
	}
}

// WithDiscoveryCacheTTL sets the cache TTL.
func WithDiscoveryCacheTTL(ttl time.Duration) DiscovererOption {
	return func(d *Discoverer) {
		d.ttl = ttl
	}
}

// NewDiscoverer creates a Discoverer with an empty cache.
func NewDiscoverer(opts ...DiscovererOption) *Discoverer {
	d := &Discoverer{
		httpClient: &http.Client{
			Timeout: DefaultHTTPTimeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			},
		},
		ttl:   DefaultDiscoveryCacheTTL,
		cache: make(map[string]*discoveryCacheEntry),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Discover fetches the OpenID configuration for the application's cloud
// instance and authority.
func (d *Discoverer) Discover(ctx context.Context, cfg AppConfig) (*OpenIDConfiguration, error) {
	endpoints, err := cfg.Endpoints()
	if err != nil {
		return nil, err
	}
	return d.discoverURL(ctx, endpoints.OpenIDConfigurationEndpoint)
}

func (d *Discoverer) discoverURL(ctx context.Context, wellKnownURL string) (*OpenIDConfiguration, error) {
	d.mu.RLock()
	if entry, ok := d.cache[wellKnownURL]; ok {
		if time.Since(entry.fetchedAt) < d.ttl {
			d.mu.RUnlock()
			return entry.config, nil
		}
	}
	d.mu.RUnlock()

	result, err, _ := d.group.Do(wellKnownURL, func() (interface{}, error) {
		// Double-check the cache after acquiring the singleflight lock.
		d.mu.RLock()
		if entry, ok := d.cache[wellKnownURL]; ok {
			if time.Since(entry.fetchedAt) < d.ttl {
				d.mu.RUnlock()
				return entry.config, nil
			}
		}
		d.mu.RUnlock()

		return d.doFetch(ctx, wellKnownURL)
	})
	if err != nil {
		return nil, err
	}
	return result.(*OpenIDConfiguration), nil
}

func (d *Discoverer) doFetch(ctx context.Context, wellKnownURL string) (*OpenIDConfiguration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, wellKnownURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openid configuration request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openid configuration request failed: status=%d", resp.StatusCode)
	}

	var config OpenIDConfiguration
	if err := json.NewDecoder(resp.Body).Decode(&config); err != nil {
		return nil, &DecodeError{Err: err}
	}

	d.mu.Lock()
	d.cache[wellKnownURL] = &discoveryCacheEntry{
		config:    &config,
		fetchedAt: time.Now(),
	}
	d.mu.Unlock()

	logging.Debug("Discovery", "Fetched openid configuration issuer=%s token_endpoint=%s",
		config.Issuer, config.TokenEndpoint)
	return &config, nil
}
