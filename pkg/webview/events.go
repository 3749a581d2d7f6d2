package webview

import (
	"context"
	"net/url"
)

// NavigationEvent is one observation reported by a browser surface:
// either the surface navigated to a URL, or the user closed the window.
type NavigationEvent struct {
	// URL is the navigated-to URL. Nil when WindowClosed is set.
	URL *url.URL

	// WindowClosed is set when the user dismissed the surface without
	// completing sign-in.
	WindowClosed bool
}

// Surface is a browser surface the flow can drive. Navigate points the
// surface at the authorization URL; Events streams what the surface
// observes back to the flow. A surface belongs to exactly one flow
// invocation at a time.
type Surface interface {
	// Navigate opens the given authorization URL in the surface.
	Navigate(ctx context.Context, authURL string) error

	// Events returns the channel of navigation events. The surface closes
	// it when it can no longer report events.
	Events() <-chan NavigationEvent

	// Close releases the surface. Safe to call more than once.
	Close() error
}
