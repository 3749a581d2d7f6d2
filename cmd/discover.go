package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"graphauth/pkg/credentials"
	"graphauth/pkg/identity"
)

// newDiscoverCmd creates the command that prints the OpenID
// configuration document for the configured authority.
func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Print the OpenID configuration for the configured authority",
		Long: `Fetch and print the OpenID configuration document for the
configured cloud and tenant. Useful for verifying which endpoints a
given authority resolves to.`,
		RunE: runDiscover,
	}
}

func runDiscover(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}

	// Discovery only needs the authority and cloud, not a registered
	// client.
	appConfig := credentials.AppConfig{
		Authority:     identity.ParseAuthority(config.Tenant),
		CloudInstance: identity.ParseCloudInstance(config.Cloud),
	}

	doc, err := credentials.NewDiscoverer().Discover(cmd.Context(), appConfig)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
