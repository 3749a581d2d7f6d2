package cli

import "fmt"

// AuthRequiredError indicates no stored token exists for the requested
// client, tenant, and scopes.
type AuthRequiredError struct {
	// CacheID identifies the client/tenant/scope combination.
	CacheID string
}

// Error returns a user-friendly message with actionable guidance.
func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf(`No token stored for %s

To authenticate interactively, run:
  graphauth login

For an application token, run:
  graphauth token`, e.CacheID)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthRequiredError) Is(target error) bool {
	_, ok := target.(*AuthRequiredError)
	return ok
}

// AuthExpiredError indicates the stored token has expired and no
// refresh token is available.
type AuthExpiredError struct {
	// CacheID identifies the client/tenant/scope combination.
	CacheID string
}

// Error returns a user-friendly message with actionable guidance.
func (e *AuthExpiredError) Error() string {
	return fmt.Sprintf(`Stored token for %s has expired

To re-authenticate, run:
  graphauth login`, e.CacheID)
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthExpiredError) Is(target error) bool {
	_, ok := target.(*AuthExpiredError)
	return ok
}

// AuthFailedError indicates a token acquisition flow failed.
type AuthFailedError struct {
	// Reason is the underlying error.
	Reason error
}

// Error returns a user-friendly message with actionable guidance.
func (e *AuthFailedError) Error() string {
	return fmt.Sprintf("Authentication failed: %v", e.Reason)
}

// Unwrap returns the underlying error.
func (e *AuthFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *AuthFailedError) Is(target error) bool {
	_, ok := target.(*AuthFailedError)
	return ok
}
