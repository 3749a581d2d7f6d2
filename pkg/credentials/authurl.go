package credentials

import (
	"net/url"
	"strings"

	"graphauth/pkg/identity"
)

// AuthCodeURL builds the authorization URL a browser surface should
// navigate to for the authorization code grant. PKCE parameters are
// included when pkce is non-nil. Extra query parameters from the
// application configuration are appended last.
func AuthCodeURL(cfg AppConfig, redirectURI string, scopes []string, state string, pkce *identity.PKCEChallenge) (string, error) {
	if strings.TrimSpace(redirectURI) == "" {
		return "", missingParameter("redirect_uri")
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return "", err
	}

	authURL, err := url.Parse(endpoints.AuthorizationEndpoint)
	if err != nil {
		return "", err
	}

	query := authURL.Query()
	query.Set("response_type", "code")
	query.Set("client_id", cfg.ClientID.String())
	query.Set("redirect_uri", redirectURI)
	if len(scopes) > 0 {
		query.Set("scope", strings.Join(scopes, " "))
	}
	if state != "" {
		query.Set("state", state)
	}
	if pkce != nil {
		query.Set("code_challenge", pkce.CodeChallenge)
		query.Set("code_challenge_method", pkce.CodeChallengeMethod)
	}
	for key, value := range cfg.ExtraQueryParameters {
		query.Set(key, value)
	}

	authURL.RawQuery = query.Encode()
	return authURL.String(), nil
}
