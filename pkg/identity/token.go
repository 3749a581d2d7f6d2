package identity

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Token represents an access token returned by the token endpoint,
// together with the wall-clock time it was captured. A refresh produces
// a new Token; existing values are never mutated in place.
type Token struct {
	// AccessToken is the bearer token used for authorization.
	AccessToken string `json:"access_token"`

	// TokenType is typically "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the token lifetime in seconds.
	ExpiresIn int `json:"expires_in,omitempty"`

	// RefreshToken is used to obtain new access tokens (optional).
	RefreshToken string `json:"refresh_token,omitempty"`

	// IDToken is the OIDC ID token (optional).
	IDToken string `json:"id_token,omitempty"`

	// Scope is the granted scope(s), space-separated.
	Scope string `json:"scope,omitempty"`

	// IssuedAt is the wall-clock time the token response was captured.
	// It is set by the executor when the response is decoded, not by the
	// provider.
	IssuedAt time.Time `json:"issued_at,omitempty"`
}

// ExpiresAt returns the calculated expiration timestamp. The zero time
// is returned for tokens without a lifetime.
func (t *Token) ExpiresAt() time.Time {
	if t.ExpiresIn <= 0 || t.IssuedAt.IsZero() {
		return time.Time{}
	}
	return t.IssuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
}

// IsExpiredWithin reports whether the token is expired or will expire
// within the given margin. Tokens without an expiration never expire.
func (t *Token) IsExpiredWithin(margin time.Duration) bool {
	expiresAt := t.ExpiresAt()
	if expiresAt.IsZero() {
		return false
	}
	return time.Now().Add(margin).After(expiresAt)
}

// Scopes returns the granted scope as a slice of individual scopes.
func (t *Token) Scopes() []string {
	if t.Scope == "" {
		return nil
	}
	return strings.Fields(t.Scope)
}

// ToOAuth2Token converts the Token to an oauth2.Token for use with
// golang.org/x/oauth2 transports.
func (t *Token) ToOAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       t.ExpiresAt(),
	}

	if t.IDToken != "" {
		token = token.WithExtra(map[string]interface{}{
			"id_token": t.IDToken,
		})
	}

	return token
}
