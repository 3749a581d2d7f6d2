package identity

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseAuthorizationResponse_Query(t *testing.T) {
	redirect, _ := url.Parse("https://app/callback?code=ABC123&state=xyz")

	resp, err := ParseAuthorizationResponse(redirect)
	if err != nil {
		t.Fatalf("ParseAuthorizationResponse() failed: %v", err)
	}
	if resp.Code != "ABC123" {
		t.Errorf("Code = %q, want ABC123", resp.Code)
	}
	if resp.State != "xyz" {
		t.Errorf("State = %q, want xyz", resp.State)
	}
	if resp.IsError() {
		t.Error("IsError() = true for a success response")
	}
}

func TestParseAuthorizationResponse_Fragment(t *testing.T) {
	redirect, _ := url.Parse("https://app/callback#code=FRAG&state=abc&id_token=jwt")

	resp, err := ParseAuthorizationResponse(redirect)
	if err != nil {
		t.Fatalf("ParseAuthorizationResponse() failed: %v", err)
	}
	if resp.Code != "FRAG" || resp.IDToken != "jwt" {
		t.Errorf("fragment parse = %+v", resp)
	}
}

func TestParseAuthorizationResponse_Error(t *testing.T) {
	redirect, _ := url.Parse("https://app/callback?error=access_denied&error_description=user+cancelled")

	resp, err := ParseAuthorizationResponse(redirect)
	if err != nil {
		t.Fatalf("ParseAuthorizationResponse() failed: %v", err)
	}
	if !resp.IsError() {
		t.Error("IsError() = false for an error response")
	}
	if resp.Error != "access_denied" || resp.ErrorDescription != "user cancelled" {
		t.Errorf("error parse = %+v", resp)
	}
}

func TestParseAuthorizationResponse_MissingQueryAndFragment(t *testing.T) {
	redirect, _ := url.Parse("https://app/callback")

	_, err := ParseAuthorizationResponse(redirect)
	if !errors.Is(err, ErrMissingQueryOrFragment) {
		t.Errorf("expected ErrMissingQueryOrFragment, got %v", err)
	}
}
