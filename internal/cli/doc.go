// Package cli holds the pieces shared by the graphauth commands:
// the yaml configuration file with its environment overrides, the
// file-backed token store, and the typed errors that map onto the
// CLI's semantic exit codes.
package cli
