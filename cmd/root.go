package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"graphauth/internal/cli"
	"graphauth/pkg/logging"
)

// Exit codes for CLI commands. They follow common conventions so
// scripts can distinguish "run login first" from a failed flow.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates authentication is required but not available.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates a token acquisition flow failed.
	ExitCodeAuthFailed = 3
)

var (
	configDir string
	debugLog  bool
)

// rootCmd is the base command of the graphauth application.
var rootCmd = &cobra.Command{
	Use:   "graphauth",
	Short: "Acquire Microsoft identity platform tokens",
	Long: `graphauth acquires OAuth2 tokens from the Microsoft identity
platform for calling Microsoft Graph: interactively through the
browser, as an application with client credentials, or on
input-constrained devices with the device code flow.`,
	// SilenceUsage keeps handled errors from being followed by the usage text.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if debugLog {
			level = logging.LevelDebug
		}
		logging.Init(level, cmd.ErrOrStderr())
	},
}

// SetVersion sets the version for the root command. Called from main
// to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a semantic exit code on
// failure. This is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "graphauth version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types onto exit codes for scripting.
func getExitCode(err error) int {
	var authRequired *cli.AuthRequiredError
	if errors.As(err, &authRequired) {
		return ExitCodeAuthRequired
	}

	var authExpired *cli.AuthExpiredError
	if errors.As(err, &authExpired) {
		return ExitCodeAuthRequired
	}

	var authFailed *cli.AuthFailedError
	if errors.As(err, &authFailed) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadConfig resolves the config directory and loads the CLI
// configuration with environment overrides applied.
func loadConfig() (cli.Config, error) {
	dir := configDir
	if dir == "" {
		var err error
		dir, err = cli.DefaultConfigPath()
		if err != nil {
			return cli.Config{}, err
		}
	}
	return cli.LoadConfig(dir)
}

// openTokenStore opens the file-backed token store.
func openTokenStore() (*cli.TokenStore, error) {
	return cli.NewTokenStore(cli.TokenStoreConfig{FileMode: true})
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default is $HOME/.config/graphauth)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newDeviceCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newLogoutCmd())
}
