package credentials

import (
	"net/url"
	"testing"

	"graphauth/pkg/identity"
)

func TestAuthCodeURL(t *testing.T) {
	cfg := testAppConfig(t)
	pkce, err := identity.GeneratePKCE()
	if err != nil {
		t.Fatalf("GeneratePKCE() failed: %v", err)
	}

	raw, err := AuthCodeURL(cfg, "http://localhost:3000/callback", []string{"User.Read", "openid"}, "state-123", pkce)
	if err != nil {
		t.Fatalf("AuthCodeURL() failed: %v", err)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("generated URL does not parse: %v", err)
	}
	if parsed.Path != "/tenant-id/oauth2/v2.0/authorize" {
		t.Errorf("path = %q", parsed.Path)
	}

	query := parsed.Query()
	checks := map[string]string{
		"response_type":         "code",
		"client_id":             testClientID,
		"redirect_uri":          "http://localhost:3000/callback",
		"scope":                 "User.Read openid",
		"state":                 "state-123",
		"code_challenge":        pkce.CodeChallenge,
		"code_challenge_method": "S256",
	}
	for key, want := range checks {
		if got := query.Get(key); got != want {
			t.Errorf("query[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestAuthCodeURL_WithoutPKCE(t *testing.T) {
	raw, err := AuthCodeURL(testAppConfig(t), "http://localhost:3000/callback", nil, "", nil)
	if err != nil {
		t.Fatalf("AuthCodeURL() failed: %v", err)
	}

	parsed, _ := url.Parse(raw)
	if parsed.Query().Has("code_challenge") {
		t.Error("code_challenge present without PKCE")
	}
	if parsed.Query().Has("scope") {
		t.Error("scope present despite empty scope list")
	}
}

func TestAuthCodeURL_EmptyRedirect(t *testing.T) {
	if _, err := AuthCodeURL(testAppConfig(t), "  ", nil, "", nil); err == nil {
		t.Fatal("AuthCodeURL() accepted an empty redirect uri")
	}
}

func TestAuthCodeURL_ExtraQueryParameters(t *testing.T) {
	cfg, err := NewAppConfig(testClientID,
		WithTenant("tenant-id"),
		WithExtraQueryParameter("prompt", "select_account"),
	)
	if err != nil {
		t.Fatalf("NewAppConfig() failed: %v", err)
	}

	raw, err := AuthCodeURL(cfg, "http://localhost:3000/callback", nil, "", nil)
	if err != nil {
		t.Fatalf("AuthCodeURL() failed: %v", err)
	}
	parsed, _ := url.Parse(raw)
	if parsed.Query().Get("prompt") != "select_account" {
		t.Error("extra query parameter missing from authorization URL")
	}
}
