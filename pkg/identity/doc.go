// Package identity holds the basic value types of the Microsoft identity
// platform: authorities, sovereign cloud instances, endpoint resolution,
// access tokens, and the authorization response returned on a redirect.
//
// Everything in this package is pure data and pure functions; no network
// I/O happens here. The credential executor in pkg/credentials builds on
// these types to issue token requests.
package identity
