package credentials

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"

	"graphauth/pkg/identity"
)

// AppConfig is the immutable per-application identity shared by every
// credential variant. It is assembled once through NewAppConfig and
// cloned into credential state at construction; credentials never
// mutate it afterwards.
type AppConfig struct {
	// ClientID is the application (client) id from the app registration.
	// It must be a valid, non-nil UUID.
	ClientID uuid.UUID

	// Authority scopes sign-in to a tenant or a multi-tenant category.
	Authority identity.Authority

	// CloudInstance selects the sovereign cloud environment.
	CloudInstance identity.CloudInstance

	// CorrelationID identifies all requests belonging to this
	// application instance, generated at construction.
	CorrelationID uuid.UUID

	// ExtraHeaderParameters are appended to every token request.
	ExtraHeaderParameters http.Header

	// ExtraQueryParameters are appended to every token endpoint URL.
	ExtraQueryParameters map[string]string

	// hostOverride replaces the cloud instance host, used for tests
	// against mock endpoints.
	hostOverride string

	// httpClient replaces the per-call HTTP client when set.
	httpClient *http.Client
}

// AppConfigOption configures an AppConfig during construction.
type AppConfigOption func(*AppConfig)

// WithTenant scopes the authority to a specific tenant.
func WithTenant(tenantID string) AppConfigOption {
	return func(c *AppConfig) {
		c.Authority = identity.TenantAuthority(tenantID)
	}
}

// WithAuthority sets the authority explicitly.
func WithAuthority(authority identity.Authority) AppConfigOption {
	return func(c *AppConfig) {
		c.Authority = authority
	}
}

// WithCloudInstance selects a sovereign cloud environment.
func WithCloudInstance(cloud identity.CloudInstance) AppConfigOption {
	return func(c *AppConfig) {
		c.CloudInstance = cloud
	}
}

// WithExtraHeaderParameter adds a header sent on every token request.
func WithExtraHeaderParameter(name, value string) AppConfigOption {
	return func(c *AppConfig) {
		c.ExtraHeaderParameters.Add(name, value)
	}
}

// WithExtraQueryParameter adds a query parameter appended to every token
// endpoint URL.
func WithExtraQueryParameter(name, value string) AppConfigOption {
	return func(c *AppConfig) {
		c.ExtraQueryParameters[name] = value
	}
}

// WithAuthorityHost overrides the cloud instance host. Intended for
// tests against local mock token endpoints.
func WithAuthorityHost(host string) AppConfigOption {
	return func(c *AppConfig) {
		c.hostOverride = strings.TrimSuffix(host, "/")
	}
}

// WithHTTPClient sets a custom HTTP client for token requests. When not
// set, a fresh client enforcing TLS 1.2 is built per call.
func WithHTTPClient(client *http.Client) AppConfigOption {
	return func(c *AppConfig) {
		c.httpClient = client
	}
}

// NewAppConfig validates the client id and assembles the application
// configuration. All validation happens here, in a single step, rather
// than scattered across chained setters.
func NewAppConfig(clientID string, opts ...AppConfigOption) (AppConfig, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(clientID))
	if err != nil {
		return AppConfig{}, fmt.Errorf("client id must be a valid UUID: %w", err)
	}
	if parsed == uuid.Nil {
		return AppConfig{}, missingParameter("client_id")
	}

	cfg := AppConfig{
		ClientID:              parsed,
		CorrelationID:         uuid.New(),
		ExtraHeaderParameters: make(http.Header),
		ExtraQueryParameters:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, nil
}

// Endpoints resolves the identity endpoints for the configured cloud
// instance and authority, honoring any host override.
func (c *AppConfig) Endpoints() (identity.Endpoints, error) {
	endpoints, err := identity.ResolveEndpoints(c.CloudInstance, c.Authority)
	if err != nil {
		return identity.Endpoints{}, err
	}
	if c.hostOverride != "" {
		endpoints = rehost(endpoints, c.CloudInstance.Host(), c.hostOverride)
	}
	return endpoints, nil
}

func rehost(e identity.Endpoints, from, to string) identity.Endpoints {
	e.AuthorizationEndpoint = strings.Replace(e.AuthorizationEndpoint, from, to, 1)
	e.TokenEndpoint = strings.Replace(e.TokenEndpoint, from, to, 1)
	e.OpenIDConfigurationEndpoint = strings.Replace(e.OpenIDConfigurationEndpoint, from, to, 1)
	e.DeviceCodeEndpoint = strings.Replace(e.DeviceCodeEndpoint, from, to, 1)
	return e
}

// CacheKey returns the cache identity for a client, tenant, and scope
// set without building a credential. It matches Credential.CacheID for
// a credential constructed from the same configuration and scopes.
func CacheKey(cfg AppConfig, scopes []string) string {
	return cfg.cacheID(scopes)
}

// cacheID derives the cache identity for a credential: client id plus
// authority plus an order-independent scope fingerprint. Two credential
// instances with the same identity share cached tokens; different
// tenants or scope sets never collide.
//
// The parts are NUL-separated. Tenant ids and scopes can both contain
// "-", so a printable delimiter would make field boundaries ambiguous
// and alias distinct tenant/scope combinations onto one key. NUL cannot
// appear in a UUID, an authority path segment, or an RFC 6749 scope
// token, so the encoding is injective.
func (c *AppConfig) cacheID(scopes []string) string {
	authorityPath, err := c.Authority.Path()
	if err != nil {
		authorityPath = "invalid"
	}

	sorted := make([]string, len(scopes))
	for i, s := range scopes {
		sorted[i] = strings.ToLower(strings.TrimSpace(s))
	}
	sort.Strings(sorted)

	parts := []string{c.ClientID.String(), authorityPath}
	parts = append(parts, sorted...)
	return strings.Join(parts, "\x00")
}
