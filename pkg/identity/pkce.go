package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// pkceVerifierBytes is the number of random bytes for the PKCE code
	// verifier. 32 bytes provides 256 bits of entropy.
	pkceVerifierBytes = 32

	// stateRandomBytes is the number of random bytes for the state
	// parameter. 32 bytes encodes to 43 base64url characters, satisfying
	// providers that require a minimum of 32 characters.
	stateRandomBytes = 32
)

// PKCEChallenge holds a Proof Key for Code Exchange verifier/challenge
// pair. PKCE prevents authorization-code interception for public clients.
type PKCEChallenge struct {
	// CodeVerifier is the random secret, kept client-side and sent only
	// with the final token request.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier, sent in the
	// authorization request.
	CodeChallenge string

	// CodeChallengeMethod is always "S256".
	CodeChallengeMethod string
}

// GeneratePKCE generates a new PKCE code verifier and S256 challenge.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifierBytes := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(verifierBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)
	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	return &PKCEChallenge{
		CodeVerifier:        verifier,
		CodeChallenge:       challenge,
		CodeChallengeMethod: "S256",
	}, nil
}

// GenerateState generates a random state parameter for an authorization
// request. State links the redirect back to the originating request and
// protects against CSRF.
func GenerateState() (string, error) {
	buf := make([]byte, stateRandomBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
