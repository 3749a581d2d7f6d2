// Package webview drives the interactive authorization code flow: it
// navigates a browser surface to the authorization URL, watches
// navigation events for the redirect back, extracts the authorization
// code, and exchanges it for a token.
//
// The flow is an explicit state machine (Idle, NavigatingToAuthURL,
// AwaitingRedirect, Succeeded, Failed) fed by an event channel from a
// Surface. LocalServerSurface is the default surface: it runs a
// loopback callback HTTP server and opens the system browser. Tests can
// substitute any Surface implementation.
package webview
