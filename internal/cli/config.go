package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"graphauth/pkg/credentials"
	"graphauth/pkg/identity"
	"graphauth/pkg/logging"
	"graphauth/pkg/webview"
)

const (
	userConfigDir  = ".config/graphauth"
	configFileName = "config.yaml"
)

// Config is the graphauth CLI configuration, loaded from
// ~/.config/graphauth/config.yaml and overridable via GRAPHAUTH_*
// environment variables.
type Config struct {
	// ClientID is the application (client) id, a UUID.
	ClientID string `yaml:"client_id"`

	// Tenant selects the authority: a tenant id or one of the aliases
	// common, organizations, consumers.
	Tenant string `yaml:"tenant"`

	// Cloud selects the national cloud: public, china, germany, usgov.
	Cloud string `yaml:"cloud"`

	// Scopes are the scopes requested by login and token.
	Scopes []string `yaml:"scopes"`

	// RedirectPort is the loopback port for the interactive callback
	// server.
	RedirectPort int `yaml:"redirect_port"`

	// TimeoutSeconds bounds the interactive flow's wait for the
	// redirect.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// DefaultConfig returns the configuration used when no config file
// exists.
func DefaultConfig() Config {
	return Config{
		Cloud:          "public",
		RedirectPort:   webview.DefaultLocalPort,
		TimeoutSeconds: int(webview.DefaultTimeout / time.Second),
	}
}

// DefaultConfigPath returns the per-user configuration directory.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine user config directory: %w", err)
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// LoadConfig loads config.yaml from the given directory, falling back
// to defaults when the file does not exist. Environment overrides are
// applied last.
func LoadConfig(configPath string) (Config, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := DefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Debug("Config", "No config.yaml found at %s, using defaults", configFilePath)
			return applyEnv(config), nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}
	logging.Debug("Config", "Loaded configuration from %s", configFilePath)
	return applyEnv(config), nil
}

// applyEnv overrides config fields from GRAPHAUTH_* environment
// variables.
func applyEnv(config Config) Config {
	if v := os.Getenv("GRAPHAUTH_CLIENT_ID"); v != "" {
		config.ClientID = v
	}
	if v := os.Getenv("GRAPHAUTH_TENANT"); v != "" {
		config.Tenant = v
	}
	if v := os.Getenv("GRAPHAUTH_CLOUD"); v != "" {
		config.Cloud = v
	}
	if v := os.Getenv("GRAPHAUTH_SCOPES"); v != "" {
		config.Scopes = strings.Fields(strings.ReplaceAll(v, ",", " "))
	}
	if v := os.Getenv("GRAPHAUTH_REDIRECT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.RedirectPort = port
		}
	}
	if v := os.Getenv("GRAPHAUTH_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			config.TimeoutSeconds = secs
		}
	}
	return config
}

// AppConfig builds the credential configuration from the CLI config.
func (c Config) AppConfig() (credentials.AppConfig, error) {
	if c.ClientID == "" {
		return credentials.AppConfig{}, fmt.Errorf("client_id is not set; add it to config.yaml or set GRAPHAUTH_CLIENT_ID")
	}
	return credentials.NewAppConfig(c.ClientID,
		credentials.WithAuthority(identity.ParseAuthority(c.Tenant)),
		credentials.WithCloudInstance(identity.ParseCloudInstance(c.Cloud)))
}

// Timeout returns the interactive flow timeout as a duration.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return webview.DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
