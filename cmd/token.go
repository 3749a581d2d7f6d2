package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"graphauth/internal/cli"
	"graphauth/pkg/credentials"
)

var (
	tokenSecret     string
	tokenStoredOnly bool
)

// newTokenCmd creates the command that prints an access token, either
// from the store or freshly acquired with client credentials.
func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token",
		Long: `Print an access token for the configured client.

Without a client secret, token prints the stored token from a previous
login or device flow. With --secret (or GRAPHAUTH_CLIENT_SECRET set),
it runs the client credentials grant, stores the result, and prints it.

Examples:
  graphauth token                     # Print the stored token
  graphauth token --secret <secret>   # Application token via client credentials`,
		RunE: runToken,
	}
	cmd.Flags().StringVar(&tokenSecret, "secret", "", "client secret for the client credentials grant")
	cmd.Flags().BoolVar(&tokenStoredOnly, "stored-only", false, "never contact the token endpoint; fail when no usable token is stored")
	return cmd
}

func runToken(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig, err := config.AppConfig()
	if err != nil {
		return err
	}

	secret := tokenSecret
	if secret == "" {
		secret = os.Getenv("GRAPHAUTH_CLIENT_SECRET")
	}

	store, err := openTokenStore()
	if err != nil {
		return err
	}

	// The interactive and device flows store under the configured
	// scopes; client credentials always uses the .default scope.
	var cacheID string
	if secret != "" {
		cacheID = credentials.CacheKey(appConfig, []string{credentials.DefaultScope})
	} else {
		cacheID = credentials.CacheKey(appConfig, config.Scopes)
	}

	if stored := store.Get(cacheID); stored != nil {
		fmt.Fprintln(cmd.OutOrStdout(), stored.AccessToken)
		return nil
	}
	if secret == "" || tokenStoredOnly {
		return &cli.AuthRequiredError{CacheID: cacheID}
	}

	cred := credentials.NewClientSecret(appConfig, secret)
	token, err := credentials.NewTokenCache().GetOrRefresh(cmd.Context(), cred)
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	if err := store.Store(cred.CacheID(), token); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), token.AccessToken)
	return nil
}
