package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"graphauth/internal/cli"
	"graphauth/pkg/credentials"
)

// newDeviceCmd creates the device code flow command for hosts without
// a browser.
func newDeviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Sign in with the device code flow",
		Long: `Sign in with the device code flow.

device requests a user code, prints the verification instructions, and
polls the token endpoint until you complete sign-in on another device.
The resulting token is stored for later use.`,
		RunE: runDevice,
	}
}

func runDevice(cmd *cobra.Command, args []string) error {
	config, err := loadConfig()
	if err != nil {
		return err
	}
	appConfig, err := config.AppConfig()
	if err != nil {
		return err
	}

	dc, err := credentials.RequestDeviceCode(cmd.Context(), appConfig, config.Scopes)
	if err != nil {
		return &cli.AuthFailedError{Reason: err}
	}

	if dc.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), dc.Message)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Go to %s and enter the code %s\n", dc.VerificationURI, dc.UserCode)
	}

	cred := credentials.NewDeviceCode(appConfig, dc.DeviceCode,
		time.Duration(dc.Interval)*time.Second,
		time.Now().Add(time.Duration(dc.ExpiresIn)*time.Second),
		config.Scopes...)

	token, err := credentials.PollDeviceCode(cmd.Context(), cred)
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
