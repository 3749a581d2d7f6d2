// Package credentials implements OAuth2 token acquisition against the
// Microsoft identity platform.
//
// A Credential is one of a closed set of grant variants (authorization
// code, authorization code with certificate assertion, client secret,
// refresh token, device code, interactive). Each variant knows how to
// serialize itself into a validated form-encoded token request, how to
// resolve its token endpoint, and whether the provider mandates HTTP
// Basic authentication for its secrets.
//
// The TokenCache layers expiry-aware silent renewal on top of the
// executor: a cached token inside its freshness window is returned
// without any network call, anything else triggers a fresh acquisition.
package credentials
