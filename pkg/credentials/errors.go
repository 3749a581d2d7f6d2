package credentials

import (
	"errors"
	"fmt"
)

// ErrHTTPSRequired is returned when a token endpoint does not use HTTPS.
// Credentials are never sent over plaintext connections.
var ErrHTTPSRequired = errors.New("token endpoint must use https")

// MissingParameterError reports a required grant parameter that is empty
// or missing. It is always detected before any network call.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter %q is empty or missing", e.Name)
}

// missingParameter is a shorthand constructor used by the serializer.
func missingParameter(name string) error {
	return &MissingParameterError{Name: name}
}

// AuthExecutionError reports a token endpoint response with a non-2xx
// status. The raw body and any OAuth error fields parsed from it are
// preserved so callers can distinguish provider rejections from
// transport failures.
type AuthExecutionError struct {
	StatusCode       int
	Body             []byte
	OAuthError       string
	ErrorDescription string
}

func (e *AuthExecutionError) Error() string {
	if e.OAuthError != "" {
		return fmt.Sprintf("token request failed with status %d: %s", e.StatusCode, e.OAuthError)
	}
	return fmt.Sprintf("token request failed with status %d", e.StatusCode)
}

// DecodeError reports a response body that was received but could not be
// decoded into the expected shape. It is distinct from AuthExecutionError
// so callers can tell "server responded unexpectedly" from "server
// rejected the request".
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode token response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
