package webview

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"graphauth/pkg/credentials"
	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
)

// State is the interactive flow's position in its state machine.
type State int

const (
	// StateIdle is the state before Run is called.
	StateIdle State = iota
	// StateNavigatingToAuthURL means the surface is being pointed at the
	// authorization URL.
	StateNavigatingToAuthURL
	// StateAwaitingRedirect means navigation started and the flow is
	// waiting for the redirect back.
	StateAwaitingRedirect
	// StateSucceeded is terminal: a token was obtained.
	StateSucceeded
	// StateFailed is terminal: the flow ended with a FlowError or a
	// cancelled context.
	StateFailed
)

// String makes State satisfy fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigatingToAuthURL:
		return "navigating_to_auth_url"
	case StateAwaitingRedirect:
		return "awaiting_redirect"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Flow runs one interactive authorization code session against a
// Surface. A Flow is single-use: Run may be called once, and the
// surface is closed when Run returns. Terminal states absorb all later
// surface events.
type Flow struct {
	cred    *credentials.Credential
	surface Surface
	opts    Options
	state   State
}

// NewFlow builds a flow for an interactive credential. The surface is
// owned by the flow from here on.
func NewFlow(cred *credentials.Credential, surface Surface, opts Options) (*Flow, error) {
	if cred.Kind() != credentials.KindInteractive {
		return nil, fmt.Errorf("interactive flow requires an interactive credential, got %s", cred.Kind())
	}
	return &Flow{
		cred:    cred,
		surface: surface,
		opts:    opts.normalized(),
		state:   StateIdle,
	}, nil
}

// State returns the flow's current state machine position.
func (f *Flow) State() State {
	return f.state
}

// Run drives the flow to a terminal state: it validates the redirect
// URI, navigates the surface to the authorization URL, waits for the
// redirect, and exchanges the captured code for a token. Every failure
// is a *FlowError except context cancellation, which returns ctx.Err().
func (f *Flow) Run(ctx context.Context) (*identity.Token, error) {
	if f.state != StateIdle {
		return nil, fmt.Errorf("interactive flow already ran (state %s)", f.state)
	}
	defer func() { _ = f.surface.Close() }()

	token, err := f.run(ctx)
	if err != nil {
		f.state = StateFailed
		return nil, err
	}
	f.state = StateSucceeded
	return token, nil
}

func (f *Flow) run(ctx context.Context) (*identity.Token, error) {
	redirect := f.cred.RedirectURI()
	if err := validateRedirectURI(redirect); err != nil {
		return nil, err
	}

	state, err := identity.GenerateState()
	if err != nil {
		return nil, flowErr(FailureAuthorizationRequest, "failed to generate state", err)
	}
	pkce, err := identity.GeneratePKCE()
	if err != nil {
		return nil, flowErr(FailureAuthorizationRequest, "failed to generate PKCE challenge", err)
	}

	authURL, err := credentials.AuthCodeURL(f.cred.Config(), redirect.String(), f.cred.Scope(), state, pkce)
	if err != nil {
		return nil, flowErr(FailureAuthorizationRequest, "failed to build authorization url", err)
	}
	start, err := url.Parse(authURL)
	if err != nil {
		return nil, flowErr(FailureInvalidStartURI, "authorization url does not parse", err)
	}
	if start.Hostname() == "" {
		return nil, flowErr(FailureInvalidStartURI, "authorization url has no host", nil)
	}

	f.state = StateNavigatingToAuthURL
	logging.Debug("WebView", "Navigating surface to %s", start.Host)
	if err := f.surface.Navigate(ctx, authURL); err != nil {
		return nil, flowErr(FailureAuthorizationRequest, "failed to navigate to authorization url", err)
	}

	f.state = StateAwaitingRedirect
	redirectURL, err := f.awaitRedirect(ctx, start, redirect)
	if err != nil {
		return nil, err
	}
	return f.exchange(ctx, redirectURL, redirect, state, pkce)
}

// awaitRedirect consumes surface events until the redirect arrives, the
// timeout elapses, or a terminal failure occurs. The timeout is a plain
// select race against the event channel.
func (f *Flow) awaitRedirect(ctx context.Context, start, redirect *url.URL) (*url.URL, error) {
	timer := time.NewTimer(f.opts.Timeout)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			return nil, flowErr(FailureTimeoutReached,
				fmt.Sprintf("no redirect within %s", f.opts.Timeout), nil)

		case <-ctx.Done():
			return nil, ctx.Err()

		case ev, ok := <-f.surface.Events():
			if !ok {
				return nil, flowErr(FailureEventChannelClosed, "surface stopped reporting events", nil)
			}
			if ev.WindowClosed {
				return nil, flowErr(FailureWindowClosed, "window closed before sign-in completed", nil)
			}
			if ev.URL == nil {
				continue
			}
			if matchesRedirect(ev.URL, redirect) {
				return ev.URL, nil
			}
			if f.opts.EnforceInvalidNavigation && !f.hostAllowed(ev.URL.Hostname(), start, redirect) {
				return nil, flowErr(FailureInvalidNavigation,
					fmt.Sprintf("surface navigated to disallowed host %q", ev.URL.Hostname()), nil)
			}
			logging.Debug("WebView", "Ignoring navigation to %s", ev.URL.Host)
		}
	}
}

// exchange parses the redirect URL and trades the captured code for a
// token through the ordinary authorization code path.
func (f *Flow) exchange(ctx context.Context, redirectURL, redirect *url.URL, state string, pkce *identity.PKCEChallenge) (*identity.Token, error) {
	resp, err := identity.ParseAuthorizationResponse(redirectURL)
	if err != nil {
		if errors.Is(err, identity.ErrMissingQueryOrFragment) {
			return nil, flowErr(FailureMissingQueryOrFragment, "", err)
		}
		return nil, flowErr(FailureResponseDecode, "", err)
	}
	if resp.IsError() {
		return nil, flowErr(FailureAuthorizationRequest,
			fmt.Sprintf("provider returned %s: %s", resp.Error, resp.ErrorDescription), nil)
	}
	if resp.State != state {
		return nil, flowErr(FailureAuthorizationRequest, "state parameter mismatch", nil)
	}
	if resp.Code == "" {
		return nil, flowErr(FailureResponseDecode, "redirect carries no authorization code", nil)
	}

	codeCred, err := credentials.NewAuthorizationCode(f.cred.Config(), resp.Code, redirect.String(),
		credentials.WithScope(f.cred.Scope()...),
		credentials.WithCodeVerifier(pkce.CodeVerifier))
	if err != nil {
		return nil, flowErr(FailureAuthorizationRequest, "failed to build authorization code credential", err)
	}

	token, err := codeCred.AcquireToken(ctx)
	if err != nil {
		return nil, flowErr(FailureTokenExchange, "", err)
	}
	logging.Debug("WebView", "Interactive flow obtained token %s", identity.NewRedactedToken(token.AccessToken))
	return token, nil
}

// hostAllowed reports whether a navigated-to host is acceptable while
// invalid-navigation enforcement is on.
func (f *Flow) hostAllowed(host string, start, redirect *url.URL) bool {
	if strings.EqualFold(host, start.Hostname()) || strings.EqualFold(host, redirect.Hostname()) {
		return true
	}
	for _, allowed := range f.opts.AllowedHosts {
		if strings.EqualFold(host, allowed) {
			return true
		}
	}
	return false
}

// validateRedirectURI fails fast, before any navigation, on redirect
// URIs that cannot receive a callback.
func validateRedirectURI(redirect *url.URL) error {
	if redirect == nil || redirect.String() == "" {
		return flowErr(FailureInvalidRedirectURI, "redirect uri is empty", nil)
	}
	if redirect.Hostname() == "" {
		return flowErr(FailureInvalidRedirectURI,
			fmt.Sprintf("redirect uri %q has no host", redirect), nil)
	}
	if isLoopbackHost(redirect.Hostname()) && redirect.Port() == "" {
		return flowErr(FailureInvalidRedirectURI,
			fmt.Sprintf("loopback redirect uri %q needs an explicit port", redirect), nil)
	}
	return nil
}

// matchesRedirect reports whether a navigated-to URL is the configured
// redirect URI: same host and port, and the same path when the redirect
// URI specifies one.
func matchesRedirect(u, redirect *url.URL) bool {
	if !strings.EqualFold(u.Host, redirect.Host) {
		return false
	}
	if redirect.Path == "" || redirect.Path == "/" {
		return true
	}
	return u.Path == redirect.Path
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
