package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newLogoutCmd creates the command that removes stored tokens.
func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove all stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openTokenStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stored tokens removed.")
			return nil
		},
	}
}
