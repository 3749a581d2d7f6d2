package credentials

import (
	"fmt"
	"net/url"
	"time"

	"graphauth/pkg/identity"
)

// DefaultScope is the scope requested when a credential is built without
// an explicit scope list.
const DefaultScope = "https://graph.microsoft.com/.default"

// ClientAssertionType is the assertion type for certificate-signed JWT
// client assertions, per RFC 7523.
const ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"

// deviceCodeGrantType is the grant_type for the device authorization
// grant, per RFC 8628.
const deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"

// Kind tags the grant variant a Credential represents. The set is
// closed; the serializer and executor match exhaustively over it.
type Kind int

const (
	// KindAuthorizationCode exchanges an authorization code for tokens.
	KindAuthorizationCode Kind = iota
	// KindAuthorizationCodeCertificate exchanges an authorization code or
	// refresh token using a certificate-signed JWT assertion instead of a
	// client secret.
	KindAuthorizationCodeCertificate
	// KindClientSecret is the client credentials grant with a secret.
	KindClientSecret
	// KindRefreshToken redeems a refresh token for new tokens.
	KindRefreshToken
	// KindDeviceCode polls the token endpoint during a device code flow.
	KindDeviceCode
	// KindInteractive drives a browser surface to capture an
	// authorization code before behaving like KindAuthorizationCode.
	KindInteractive
)

// String makes Kind satisfy fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindAuthorizationCode:
		return "authorization_code"
	case KindAuthorizationCodeCertificate:
		return "authorization_code_certificate"
	case KindClientSecret:
		return "client_secret"
	case KindRefreshToken:
		return "refresh_token"
	case KindDeviceCode:
		return "device_code"
	case KindInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

// Credential is one grant variant together with its grant-specific
// secrets and parameters. Values are set at construction and never
// mutated; acquiring a token does not change the credential.
type Credential struct {
	cfg  AppConfig
	kind Kind

	authorizationCode string
	refreshToken      string
	redirectURI       *url.URL
	codeVerifier      string

	clientSecret    identity.RedactedToken
	clientAssertion identity.RedactedToken
	assertionType   string

	deviceCode   string
	pollInterval time.Duration
	expiresAt    time.Time

	scope []string
}

// CredentialOption configures optional grant parameters.
type CredentialOption func(*Credential)

// WithScope sets the requested scopes in insertion order.
func WithScope(scopes ...string) CredentialOption {
	return func(c *Credential) {
		c.scope = scopes
	}
}

// WithCodeVerifier attaches the PKCE code verifier that was used to
// obtain the authorization code.
func WithCodeVerifier(verifier string) CredentialOption {
	return func(c *Credential) {
		c.codeVerifier = verifier
	}
}

// NewAuthorizationCode builds a credential for the authorization code
// grant. The redirect URI must match the one used during authorization.
func NewAuthorizationCode(cfg AppConfig, code, redirectURI string, opts ...CredentialOption) (*Credential, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}

	c := &Credential{
		cfg:               cfg,
		kind:              KindAuthorizationCode,
		authorizationCode: code,
		redirectURI:       parsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewAuthorizationCodeCertificate builds a credential that authenticates
// with a certificate-signed JWT assertion. Exactly one of code and
// refreshToken should be set; when both are, the refresh token wins.
func NewAuthorizationCodeCertificate(cfg AppConfig, code, refreshToken, assertion string, opts ...CredentialOption) (*Credential, error) {
	c := &Credential{
		cfg:               cfg,
		kind:              KindAuthorizationCodeCertificate,
		authorizationCode: code,
		refreshToken:      refreshToken,
		clientAssertion:   identity.NewRedactedToken(assertion),
		assertionType:     ClientAssertionType,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithRedirectURI sets the redirect URI on credentials that support it.
func WithRedirectURI(redirectURI string) CredentialOption {
	return func(c *Credential) {
		if parsed, err := url.Parse(redirectURI); err == nil {
			c.redirectURI = parsed
		}
	}
}

// NewClientSecret builds a client credentials grant credential. The
// scope defaults to the Graph resource .default scope when empty.
func NewClientSecret(cfg AppConfig, clientSecret string, scopes ...string) *Credential {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	return &Credential{
		cfg:          cfg,
		kind:         KindClientSecret,
		clientSecret: identity.NewRedactedToken(clientSecret),
		scope:        scopes,
	}
}

// NewRefreshToken builds a refresh token grant credential.
func NewRefreshToken(cfg AppConfig, refreshToken string, scopes ...string) *Credential {
	return &Credential{
		cfg:          cfg,
		kind:         KindRefreshToken,
		refreshToken: refreshToken,
		scope:        scopes,
	}
}

// NewDeviceCode builds a credential that redeems a device code issued by
// the device authorization endpoint. interval is the polling cadence the
// provider requested; expiresAt is when the device code stops working.
func NewDeviceCode(cfg AppConfig, deviceCode string, interval time.Duration, expiresAt time.Time, scopes ...string) *Credential {
	return &Credential{
		cfg:          cfg,
		kind:         KindDeviceCode,
		deviceCode:   deviceCode,
		pollInterval: interval,
		expiresAt:    expiresAt,
		scope:        scopes,
	}
}

// NewInteractive builds the credential used by the interactive webview
// flow. It cannot be serialized until the flow has captured an
// authorization code; the flow calls WithAuthorizationCode on success.
func NewInteractive(cfg AppConfig, redirectURI string, opts ...CredentialOption) (*Credential, error) {
	parsed, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redirect uri: %w", err)
	}

	c := &Credential{
		cfg:         cfg,
		kind:        KindInteractive,
		redirectURI: parsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithAuthorizationCode returns a new authorization code credential
// carrying the captured code, inheriting this credential's
// configuration, redirect URI, scope, and code verifier. The receiver is
// not modified.
func (c *Credential) WithAuthorizationCode(code string) *Credential {
	next := *c
	next.kind = KindAuthorizationCode
	next.authorizationCode = code
	return &next
}

// Kind returns the grant variant tag.
func (c *Credential) Kind() Kind {
	return c.kind
}

// Config returns the application configuration the credential was built
// with.
func (c *Credential) Config() AppConfig {
	return c.cfg
}

// Scope returns the requested scopes in insertion order.
func (c *Credential) Scope() []string {
	return c.scope
}

// RedirectURI returns the configured redirect URI, or nil.
func (c *Credential) RedirectURI() *url.URL {
	return c.redirectURI
}

// CacheID returns the cache identity for this credential: client id,
// tenant, and order-independent scope set.
func (c *Credential) CacheID() string {
	return c.cfg.cacheID(c.scope)
}

// DeviceCodeInterval returns the polling cadence for device code
// credentials, defaulting to five seconds.
func (c *Credential) DeviceCodeInterval() time.Duration {
	if c.pollInterval <= 0 {
		return 5 * time.Second
	}
	return c.pollInterval
}

// DeviceCodeExpiresAt returns when the device code stops being
// redeemable.
func (c *Credential) DeviceCodeExpiresAt() time.Time {
	return c.expiresAt
}
