package credentials

import (
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// assertionLifetime is the validity window of a signed client assertion.
// Assertions are minted per request, so a short lifetime is enough.
const assertionLifetime = 10 * time.Minute

// AssertionBuilder signs JWT client assertions with the certificate
// registered for the application, for use with the certificate
// credential variants (RFC 7523).
type AssertionBuilder struct {
	key     *rsa.PrivateKey
	certDER []byte
}

// NewAssertionBuilder creates a builder from the application's private
// key and the DER-encoded certificate registered in the portal.
func NewAssertionBuilder(key *rsa.PrivateKey, certDER []byte) *AssertionBuilder {
	return &AssertionBuilder{key: key, certDER: certDER}
}

// Thumbprint returns the base64url SHA-1 certificate thumbprint placed
// in the assertion's x5t header, the fingerprint format the identity
// platform matches certificates by.
func (b *AssertionBuilder) Thumbprint() string {
	sum := sha1.Sum(b.certDER)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Sign mints a client assertion for the application: an RS256-signed JWT
// with the token endpoint as audience and the client id as both issuer
// and subject.
func (b *AssertionBuilder) Sign(cfg AppConfig) (string, error) {
	if b.key == nil {
		return "", missingParameter("private_key")
	}

	endpoints, err := cfg.Endpoints()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"aud": endpoints.TokenEndpoint,
		"iss": cfg.ClientID.String(),
		"sub": cfg.ClientID.String(),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": now.Add(assertionLifetime).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["x5t"] = b.Thumbprint()

	signed, err := token.SignedString(b.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign client assertion: %w", err)
	}
	return signed, nil
}
