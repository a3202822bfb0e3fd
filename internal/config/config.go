// Package config loads client configuration from the XDG config dir and
// BLOOMI_* environment variables. Only non-secret settings are kept in the
// file; credentials go to the OS keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bloomi/cli/internal/xdg"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultAPIURL         = "http://localhost:8080"
	DefaultTimeout        = 30 * time.Second
	DefaultRedirectScheme = "bloomi"
	DefaultProvider       = "google"
	fileName              = "config.json"
	envPrefix             = "BLOOMI"
)

// Config holds non-sensitive client settings.
type Config struct {
	APIURL         string        `mapstructure:"api_url" json:"api_url" validate:"required,url"`
	Timeout        time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	LogLevel       string        `mapstructure:"log_level" json:"log_level" validate:"oneof=debug info warn error"`
	LogFormat      string        `mapstructure:"log_format" json:"log_format" validate:"oneof=console json"`
	RedirectScheme string        `mapstructure:"redirect_scheme" json:"redirect_scheme" validate:"required,alpha"`
	Provider       string        `mapstructure:"provider" json:"provider" validate:"required"`
	Keyring        KeyringConfig `mapstructure:"keyring" json:"keyring"`
}

// KeyringConfig selects where credentials are stored.
type KeyringConfig struct {
	Backends []string `mapstructure:"backends" json:"backends,omitempty"`
	FileDir  string   `mapstructure:"file_dir" json:"file_dir,omitempty"`
	// FilePassword is only read from BLOOMI_KEYRING_FILE_PASSWORD, never saved.
	FilePassword   string `mapstructure:"file_password" json:"-"`
	NativeSecurity bool   `mapstructure:"native_security" json:"native_security"`
}

// Path returns the default config file location.
func Path() (string, error) {
	dir, err := xdg.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// Load reads configuration from configFile (or the default location), applies
// BLOOMI_* environment overrides and defaults, and validates the result.
// A missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		configFile = p
	}
	v.SetConfigFile(configFile)
	v.SetConfigType("json")

	// Environment variable support: BLOOMI_API_URL, BLOOMI_KEYRING_FILE_DIR
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.Keyring.FileDir == "" {
		dir, err := xdg.StateDir()
		if err != nil {
			return nil, err
		}
		cfg.Keyring.FileDir = filepath.Join(dir, "keyring")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("timeout", DefaultTimeout)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("redirect_scheme", DefaultRedirectScheme)
	v.SetDefault("provider", DefaultProvider)
	v.SetDefault("keyring.backends", []string{})
	v.SetDefault("keyring.native_security", true)
}

// bindEnvKeys binds nested keys so AutomaticEnv can resolve them on Unmarshal.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"api_url", "timeout", "log_level", "log_format", "redirect_scheme", "provider",
		"keyring.backends", "keyring.file_dir", "keyring.file_password", "keyring.native_security",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks struct tags and returns actionable messages.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Namespace()))
		case "url":
			msgs = append(msgs, fmt.Sprintf("%s must be a URL, got %q", fe.Namespace(), fe.Value()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %q validation", fe.Namespace(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// Save writes configuration to configFile (or the default location) with 0600
// permissions.
func Save(configFile string, c Config) error {
	if configFile == "" {
		p, err := Path()
		if err != nil {
			return err
		}
		configFile = p
	}
	if err := c.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configFile, b, 0o600)
}
