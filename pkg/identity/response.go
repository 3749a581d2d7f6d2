package identity

import (
	"errors"
	"fmt"
	"net/url"
)

// ErrMissingQueryOrFragment is returned when a redirect URL carries
// neither a query string nor a fragment, so no authorization code can be
// extracted from it.
var ErrMissingQueryOrFragment = errors.New("redirect url has neither a query string nor a fragment")

// AuthorizationResponse is the parsed query or fragment of the URL the
// authorization server redirected to. Exactly one of Code and Error is
// expected to be set.
type AuthorizationResponse struct {
	Code             string
	State            string
	IDToken          string
	Error            string
	ErrorDescription string
}

// IsError reports whether the provider returned an error response
// instead of an authorization code.
func (r *AuthorizationResponse) IsError() bool {
	return r.Error != ""
}

// ParseAuthorizationResponse extracts the authorization response from a
// redirect URL. The query string is preferred; the fragment is used when
// the query is empty (response_mode=fragment). A URL with neither
// returns ErrMissingQueryOrFragment.
func ParseAuthorizationResponse(redirect *url.URL) (*AuthorizationResponse, error) {
	raw := redirect.RawQuery
	if raw == "" {
		raw = redirect.Fragment
	}
	if raw == "" {
		return nil, ErrMissingQueryOrFragment
	}

	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode authorization response: %w", err)
	}

	return &AuthorizationResponse{
		Code:             values.Get("code"),
		State:            values.Get("state"),
		IDToken:          values.Get("id_token"),
		Error:            values.Get("error"),
		ErrorDescription: values.Get("error_description"),
	}, nil
}
