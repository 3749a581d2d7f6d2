package identity

import (
	"errors"
	"testing"
)

func TestResolveEndpoints_TenantAuthority(t *testing.T) {
	endpoints, err := ResolveEndpoints(CloudPublic, TenantAuthority("tenant-id"))
	if err != nil {
		t.Fatalf("ResolveEndpoints() failed: %v", err)
	}

	if endpoints.TokenEndpoint != "https://login.microsoftonline.com/tenant-id/oauth2/v2.0/token" {
		t.Errorf("unexpected token endpoint: %s", endpoints.TokenEndpoint)
	}
	if endpoints.AuthorizationEndpoint != "https://login.microsoftonline.com/tenant-id/oauth2/v2.0/authorize" {
		t.Errorf("unexpected authorization endpoint: %s", endpoints.AuthorizationEndpoint)
	}
	if endpoints.OpenIDConfigurationEndpoint != "https://login.microsoftonline.com/tenant-id/v2.0/.well-known/openid-configuration" {
		t.Errorf("unexpected openid configuration endpoint: %s", endpoints.OpenIDConfigurationEndpoint)
	}
}

func TestResolveEndpoints_CommonDefault(t *testing.T) {
	endpoints, err := ResolveEndpoints(CloudPublic, Authority{})
	if err != nil {
		t.Fatalf("ResolveEndpoints() failed: %v", err)
	}

	if endpoints.OpenIDConfigurationEndpoint != "https://login.microsoftonline.com/common/v2.0/.well-known/openid-configuration" {
		t.Errorf("unexpected openid configuration endpoint: %s", endpoints.OpenIDConfigurationEndpoint)
	}
}

func TestResolveEndpoints_MissingTenant(t *testing.T) {
	_, err := ResolveEndpoints(CloudPublic, Authority{Type: AuthorityTenant})
	if !errors.Is(err, ErrMissingTenantID) {
		t.Errorf("expected ErrMissingTenantID, got %v", err)
	}
}

func TestResolveEndpoints_SovereignClouds(t *testing.T) {
	cases := []struct {
		cloud CloudInstance
		want  string
	}{
		{CloudPublic, "https://login.microsoftonline.com/organizations/oauth2/v2.0/token"},
		{CloudChina, "https://login.chinacloudapi.cn/organizations/oauth2/v2.0/token"},
		{CloudGermany, "https://login.microsoftonline.de/organizations/oauth2/v2.0/token"},
		{CloudUsGov, "https://login.microsoftonline.us/organizations/oauth2/v2.0/token"},
	}

	for _, tc := range cases {
		endpoints, err := ResolveEndpoints(tc.cloud, Authority{Type: AuthorityOrganizations})
		if err != nil {
			t.Fatalf("ResolveEndpoints(%s) failed: %v", tc.cloud, err)
		}
		if endpoints.TokenEndpoint != tc.want {
			t.Errorf("cloud %s: token endpoint = %s, want %s", tc.cloud, endpoints.TokenEndpoint, tc.want)
		}
	}
}

func TestParseAuthority(t *testing.T) {
	if got := ParseAuthority("common"); got.Type != AuthorityCommon {
		t.Errorf("ParseAuthority(common) = %+v", got)
	}
	if got := ParseAuthority(""); got.Type != AuthorityCommon {
		t.Errorf("ParseAuthority(empty) = %+v", got)
	}
	if got := ParseAuthority("organizations"); got.Type != AuthorityOrganizations {
		t.Errorf("ParseAuthority(organizations) = %+v", got)
	}
	if got := ParseAuthority("consumers"); got.Type != AuthorityConsumers {
		t.Errorf("ParseAuthority(consumers) = %+v", got)
	}
	got := ParseAuthority("9188040d-6c67-4c5b-b112-36a304b66dad")
	if got.Type != AuthorityTenant || got.TenantID != "9188040d-6c67-4c5b-b112-36a304b66dad" {
		t.Errorf("ParseAuthority(tenant) = %+v", got)
	}
}
