package credentials

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCertificate(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "graphauth-test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	return key, der
}

func TestAssertionBuilder_Sign(t *testing.T) {
	key, der := newTestCertificate(t)
	cfg := testAppConfig(t)

	signed, err := NewAssertionBuilder(key, der).Sign(cfg)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (interface{}, error) {
		return &key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	if err != nil {
		t.Fatalf("failed to parse signed assertion: %v", err)
	}

	claims := parsed.Claims.(jwt.MapClaims)
	if claims["aud"] != "https://login.microsoftonline.com/tenant-id/oauth2/v2.0/token" {
		t.Errorf("aud = %v", claims["aud"])
	}
	if claims["iss"] != testClientID || claims["sub"] != testClientID {
		t.Errorf("iss/sub = %v/%v, want client id", claims["iss"], claims["sub"])
	}
	if claims["jti"] == "" {
		t.Error("jti missing")
	}

	sum := sha1.Sum(der)
	wantThumb := base64.RawURLEncoding.EncodeToString(sum[:])
	if parsed.Header["x5t"] != wantThumb {
		t.Errorf("x5t = %v, want %v", parsed.Header["x5t"], wantThumb)
	}
}

func TestAssertionBuilder_SignWithoutKey(t *testing.T) {
	_, der := newTestCertificate(t)
	builder := NewAssertionBuilder(nil, der)

	if _, err := builder.Sign(testAppConfig(t)); err == nil {
		t.Fatal("Sign() succeeded without a private key")
	}
}

func TestAssertionFeedsCertificateCredential(t *testing.T) {
	key, der := newTestCertificate(t)
	cfg := testAppConfig(t)

	assertion, err := NewAssertionBuilder(key, der).Sign(cfg)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}

	cred, err := NewAuthorizationCodeCertificate(cfg, "auth-code", "", assertion)
	if err != nil {
		t.Fatalf("NewAuthorizationCodeCertificate() failed: %v", err)
	}

	form, err := cred.FormBody()
	if err != nil {
		t.Fatalf("FormBody() failed: %v", err)
	}
	if form["client_assertion"] != assertion {
		t.Error("assertion not carried into the form body")
	}
}
