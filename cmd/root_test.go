package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphauth/internal/cli"
)

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "auth required",
			err:  &cli.AuthRequiredError{CacheID: "cache-id"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "auth expired maps to auth required",
			err:  &cli.AuthExpiredError{CacheID: "cache-id"},
			want: ExitCodeAuthRequired,
		},
		{
			name: "auth failed",
			err:  &cli.AuthFailedError{Reason: errors.New("boom")},
			want: ExitCodeAuthFailed,
		},
		{
			name: "wrapped auth failed",
			err:  fmt.Errorf("login: %w", &cli.AuthFailedError{Reason: errors.New("boom")}),
			want: ExitCodeAuthFailed,
		},
		{
			name: "generic error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("")

	var out bytes.Buffer
	cmd := newVersionCmd()
	cmd.SetOut(&out)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "graphauth version 1.2.3\n", out.String())
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"login", "token", "device", "discover", "logout", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}
