package identity

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestToken_IsExpiredWithin(t *testing.T) {
	token := &Token{
		AccessToken: "tok",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
		IssuedAt:    time.Now().Add(-3000 * time.Second),
	}

	// 600s remaining, 5 minute margin: still fresh.
	if token.IsExpiredWithin(5 * time.Minute) {
		t.Error("token with 600s remaining reported expired within 5m margin")
	}

	// 600s remaining, 15 minute margin: inside the margin.
	if !token.IsExpiredWithin(15 * time.Minute) {
		t.Error("token with 600s remaining not reported expired within 15m margin")
	}
}

func TestToken_IsExpiredWithin_AtMarginBoundary(t *testing.T) {
	// issued_at = T-3595s, expires_in = 3600: 5s of life left.
	token := &Token{
		AccessToken: "tok",
		ExpiresIn:   3600,
		IssuedAt:    time.Now().Add(-3595 * time.Second),
	}
	if !token.IsExpiredWithin(5 * time.Minute) {
		t.Error("token expiring in 5s not reported expired within 5m margin")
	}
}

func TestToken_NoExpiryNeverExpires(t *testing.T) {
	token := &Token{AccessToken: "tok"}
	if token.IsExpiredWithin(24 * time.Hour) {
		t.Error("token without expires_in reported expired")
	}
	if !token.ExpiresAt().IsZero() {
		t.Error("token without expires_in has non-zero ExpiresAt")
	}
}

func TestToken_Scopes(t *testing.T) {
	token := &Token{Scope: "openid profile User.Read"}
	scopes := token.Scopes()
	if len(scopes) != 3 || scopes[2] != "User.Read" {
		t.Errorf("Scopes() = %v", scopes)
	}

	empty := &Token{}
	if empty.Scopes() != nil {
		t.Errorf("Scopes() on empty scope = %v, want nil", empty.Scopes())
	}
}

func TestToken_ToOAuth2Token(t *testing.T) {
	issued := time.Now()
	token := &Token{
		AccessToken:  "access",
		TokenType:    "Bearer",
		RefreshToken: "refresh",
		ExpiresIn:    3600,
		IDToken:      "id-token",
		IssuedAt:     issued,
	}

	converted := token.ToOAuth2Token()
	if converted.AccessToken != "access" || converted.RefreshToken != "refresh" {
		t.Errorf("conversion dropped fields: %+v", converted)
	}
	if !converted.Expiry.Equal(issued.Add(time.Hour)) {
		t.Errorf("Expiry = %v, want %v", converted.Expiry, issued.Add(time.Hour))
	}
	if got := converted.Extra("id_token"); got != "id-token" {
		t.Errorf("Extra(id_token) = %v", got)
	}
}

func TestRedactedToken(t *testing.T) {
	secret := NewRedactedToken("super-secret-value")

	if got := fmt.Sprintf("%s %v %#v", secret, secret, secret); strings.Contains(got, "super-secret") {
		t.Errorf("formatting leaked the secret: %q", got)
	}
	if secret.Value() != "super-secret-value" {
		t.Error("Value() did not return the wrapped secret")
	}

	data, err := json.Marshal(secret)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `"[REDACTED]"` {
		t.Errorf("MarshalJSON = %s", data)
	}

	if NewRedactedToken("").IsEmpty() != true {
		t.Error("IsEmpty() on empty token = false")
	}
}
