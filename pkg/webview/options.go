package webview

import "time"

// DefaultTimeout bounds how long a flow waits for the redirect before
// failing with TimeoutReached.
const DefaultTimeout = 2 * time.Minute

// Options configures one interactive flow session.
type Options struct {
	// Timeout is the maximum time to wait for the redirect after
	// navigation starts. Zero means DefaultTimeout.
	Timeout time.Duration

	// EnforceInvalidNavigation fails the flow when the surface navigates
	// to a host that is neither the authorization host, the redirect
	// host, nor one of AllowedHosts. When false such navigations are
	// ignored and the flow keeps waiting.
	EnforceInvalidNavigation bool

	// AllowedHosts lists additional hosts the surface may visit without
	// tripping invalid-navigation enforcement. Federated sign-in pages
	// commonly bounce through more than one host.
	AllowedHosts []string
}

// normalized returns a per-session copy with defaults filled in. The
// caller's Options value is never mutated.
func (o Options) normalized() Options {
	out := o
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}
	out.AllowedHosts = append([]string(nil), o.AllowedHosts...)
	return out
}
