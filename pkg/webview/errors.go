package webview

import "fmt"

// FailureKind enumerates the terminal failure outcomes of an
// interactive flow. The set is closed; every failed flow reports
// exactly one of these.
type FailureKind int

const (
	// FailureInvalidRedirectURI is a redirect URI that cannot receive a
	// callback, such as a loopback host without a port. Detected before
	// navigation starts.
	FailureInvalidRedirectURI FailureKind = iota

	// FailureWindowClosed means the user dismissed the surface without
	// completing sign-in.
	FailureWindowClosed

	// FailureInvalidNavigation means the surface navigated somewhere
	// outside the allowed hosts while enforcement was enabled.
	FailureInvalidNavigation

	// FailureTimeoutReached means the configured timeout elapsed before
	// the redirect arrived.
	FailureTimeoutReached

	// FailureInvalidStartURI means the authorization URL itself was
	// structurally invalid.
	FailureInvalidStartURI

	// FailureMissingQueryOrFragment means the redirect arrived but
	// carried neither a query string nor a fragment, so no code could be
	// extracted.
	FailureMissingQueryOrFragment

	// FailureResponseDecode means the redirect's query or fragment did
	// not parse into an authorization response.
	FailureResponseDecode

	// FailureEventChannelClosed means the surface stopped reporting
	// events before the flow reached a terminal state.
	FailureEventChannelClosed

	// FailureAuthorizationRequest covers failures before or during the
	// authorization step itself: bad credential parameters, a failed
	// navigation, or an error response from the authorization server.
	FailureAuthorizationRequest

	// FailureTokenExchange means the captured code could not be exchanged
	// for a token.
	FailureTokenExchange
)

// String makes FailureKind satisfy fmt.Stringer.
func (k FailureKind) String() string {
	switch k {
	case FailureInvalidRedirectURI:
		return "invalid_redirect_uri"
	case FailureWindowClosed:
		return "window_closed"
	case FailureInvalidNavigation:
		return "invalid_navigation"
	case FailureTimeoutReached:
		return "timeout_reached"
	case FailureInvalidStartURI:
		return "invalid_start_uri"
	case FailureMissingQueryOrFragment:
		return "missing_query_or_fragment"
	case FailureResponseDecode:
		return "response_decode"
	case FailureEventChannelClosed:
		return "event_channel_closed"
	case FailureAuthorizationRequest:
		return "authorization_request"
	case FailureTokenExchange:
		return "token_exchange"
	default:
		return "unknown"
	}
}

// FlowError is the terminal error of a failed interactive flow.
type FlowError struct {
	// Kind identifies which terminal outcome was reached.
	Kind FailureKind

	// Reason carries human-readable detail when the kind alone is not
	// specific enough.
	Reason string

	// Err is the underlying error, when one exists.
	Err error
}

func (e *FlowError) Error() string {
	msg := fmt.Sprintf("interactive flow failed: %s", e.Kind)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FlowError) Unwrap() error {
	return e.Err
}

// flowErr is a shorthand constructor used by the state machine.
func flowErr(kind FailureKind, reason string, err error) *FlowError {
	return &FlowError{Kind: kind, Reason: reason, Err: err}
}
