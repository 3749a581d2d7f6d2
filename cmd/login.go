package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"graphauth/internal/cli"
	"graphauth/pkg/credentials"
	"graphauth/pkg/webview"
)

var loginPort int

// newLoginCmd creates the browser-based interactive login command.
func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in interactively through the browser",
		Long: `Sign in interactively through the system browser.

login starts a local callback server, opens the authorization URL in
the browser, and waits for the redirect. The resulting token is stored
under ~/.config/graphauth/tokens for later use.

Examples:
  graphauth login                 # Sign in with the configured client
  graphauth login --port 9000     # Use a specific callback port`,
		RunE: runLogin,
	}
	cmd.Flags().IntVar(&loginPort, "port", 0, "loopback callback port (default from config)")
	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig, err := config.AppConfig()
	if err != nil {
		return err
	}

	port := loginPort
	if port == 0 {
		port = config.RedirectPort
	}

	surface := webview.NewLocalServerSurface(port)
	redirectURI, err := surface.Start(cmd.Context())
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	cred, err := credentials.NewInteractive(appConfig, redirectURI,
		credentials.WithScope(config.Scopes...))
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	flow, err := webview.NewFlow(cred, surface, webview.Options{Timeout: config.Timeout()})
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Opening the browser to sign you in...")
	token, err := flow.Run(cmd.Context())
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	store, err := openTokenStore()
	if err != nil {
		return err
	}
	if err := store.Store(cred.CacheID(), token); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in. Token expires at %s.\n",
		token.ExpiresAt().Format(time.RFC3339))
	return nil
}
