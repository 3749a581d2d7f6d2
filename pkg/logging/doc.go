// Package logging provides a small leveled logging layer over log/slog.
//
// Log calls carry a subsystem tag so output from the credential executor,
// the token cache, and the interactive flow can be told apart without
// per-package logger plumbing. Secrets must never be passed to these
// functions raw; use TruncateSecret or identity.RedactedToken.
package logging
