package credentials

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// FormBody serializes the credential into the grant-specific
// form-encoded parameter map for the token endpoint. All required-field
// rules are enforced here, before any network call; an invalid
// credential never produces a partially-filled map.
//
// The returned key set depends only on which optional fields are
// present, never on their values.
func (c *Credential) FormBody() (map[string]string, error) {
	if c.cfg.ClientID == uuid.Nil {
		return nil, missingParameter("client_id")
	}

	switch c.kind {
	case KindClientSecret:
		return c.clientSecretForm()
	case KindAuthorizationCode:
		return c.authorizationCodeForm()
	case KindAuthorizationCodeCertificate:
		return c.certificateForm()
	case KindRefreshToken:
		return c.refreshTokenForm()
	case KindDeviceCode:
		return c.deviceCodeForm()
	case KindInteractive:
		return nil, errors.New("interactive credential has no authorization code yet; run the webview flow first")
	default:
		return nil, errors.New("unknown credential kind")
	}
}

// clientSecretForm serializes the client credentials grant. The client
// id and secret travel via HTTP Basic auth and must not be duplicated in
// the form body; some providers reject requests carrying both.
func (c *Credential) clientSecretForm() (map[string]string, error) {
	if strings.TrimSpace(c.clientSecret.Value()) == "" {
		return nil, missingParameter("client_secret")
	}

	form := map[string]string{
		"grant_type": "client_credentials",
	}
	c.addScope(form, DefaultScope)
	return form, nil
}

func (c *Credential) authorizationCodeForm() (map[string]string, error) {
	if strings.TrimSpace(c.authorizationCode) == "" {
		return nil, missingParameter("code")
	}
	if c.redirectURI == nil || c.redirectURI.String() == "" {
		return nil, missingParameter("redirect_uri")
	}

	form := map[string]string{
		"grant_type":   "authorization_code",
		"client_id":    c.cfg.ClientID.String(),
		"code":         c.authorizationCode,
		"redirect_uri": c.redirectURI.String(),
	}
	if c.codeVerifier != "" {
		form["code_verifier"] = c.codeVerifier
	}
	c.addScope(form, "")
	return form, nil
}

// certificateForm serializes the certificate assertion grant. The grant
// type is derived from which secret is present: a refresh token selects
// the refresh_token grant, otherwise the authorization code is used.
// Both present resolves to the refresh token; both empty is a terminal
// validation error.
func (c *Credential) certificateForm() (map[string]string, error) {
	if strings.TrimSpace(c.clientAssertion.Value()) == "" {
		return nil, missingParameter("client_assertion")
	}

	assertionType := c.assertionType
	if strings.TrimSpace(assertionType) == "" {
		assertionType = ClientAssertionType
	}

	form := map[string]string{
		"client_id":             c.cfg.ClientID.String(),
		"client_assertion":      c.clientAssertion.Value(),
		"client_assertion_type": assertionType,
	}

	switch {
	case strings.TrimSpace(c.refreshToken) != "":
		form["grant_type"] = "refresh_token"
		form["refresh_token"] = c.refreshToken
	case strings.TrimSpace(c.authorizationCode) != "":
		form["grant_type"] = "authorization_code"
		form["code"] = c.authorizationCode
		if c.redirectURI != nil && c.redirectURI.String() != "" {
			form["redirect_uri"] = c.redirectURI.String()
		}
		if c.codeVerifier != "" {
			form["code_verifier"] = c.codeVerifier
		}
	default:
		return nil, errors.New("either authorization code or refresh token is required")
	}

	c.addScope(form, "")
	return form, nil
}

func (c *Credential) refreshTokenForm() (map[string]string, error) {
	if strings.TrimSpace(c.refreshToken) == "" {
		return nil, missingParameter("refresh_token")
	}

	form := map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     c.cfg.ClientID.String(),
		"refresh_token": c.refreshToken,
	}
	c.addScope(form, "")
	return form, nil
}

func (c *Credential) deviceCodeForm() (map[string]string, error) {
	if strings.TrimSpace(c.deviceCode) == "" {
		return nil, missingParameter("device_code")
	}

	form := map[string]string{
		"grant_type":  deviceCodeGrantType,
		"client_id":   c.cfg.ClientID.String(),
		"device_code": c.deviceCode,
	}
	c.addScope(form, "")
	return form, nil
}

// addScope space-joins the scope list in insertion order. Order matters
// for some providers' consent prompt display, not for correctness. An
// empty list falls back to the given default, or omits the key entirely.
func (c *Credential) addScope(form map[string]string, fallback string) {
	scopes := c.scope
	if len(scopes) == 0 {
		if fallback == "" {
			return
		}
		scopes = []string{fallback}
	}
	form["scope"] = strings.Join(scopes, " ")
}

// BasicAuth returns the HTTP Basic auth credentials for grants where the
// provider mandates credential transport via the Authorization header.
// Only the client secret grant uses Basic auth; its id and secret are
// then excluded from the form body.
func (c *Credential) BasicAuth() (id, secret string, ok bool) {
	if c.kind == KindClientSecret {
		return c.cfg.ClientID.String(), c.clientSecret.Value(), true
	}
	return "", "", false
}
