package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/shellpm/spm/src/internal/constants"
)

// EnvPrefix is the prefix for environment variable overrides (SPM_BASE_URL, ...)
const EnvPrefix = "SPM_"

// Settings holds user-tunable behavior.
// Priority: environment > <root>/config.yaml > defaults.
type Settings struct {
	// BaseURL is prepended to user/repo install specs
	BaseURL string `koanf:"base_url"`
	// DefaultInterpreter is used for new packages and for running bare script files
	DefaultInterpreter string `koanf:"default_interpreter"`
	// StrictLookup makes an ambiguous bare package name an error instead of picking the first match
	StrictLookup bool `koanf:"strict_lookup"`
	// RefreshContinueOnError keeps refreshing remaining dependencies after a failure
	RefreshContinueOnError bool `koanf:"refresh_continue_on_error"`
	// FetchTimeout bounds a single git fetch; zero means no timeout
	FetchTimeout time.Duration `koanf:"fetch_timeout"`
	Verbose      bool          `koanf:"verbose"`
}

// DefaultSettings returns the built-in settings
func DefaultSettings() Settings {
	return Settings{
		BaseURL:            constants.DefaultBaseURL,
		DefaultInterpreter: "sh",
	}
}

// LoadSettings reads settings for the given layout
func LoadSettings(paths *Paths) (*Settings, error) {
	k := koanf.New(".")

	defaults := DefaultSettings()
	_ = k.Set("base_url", defaults.BaseURL)
	_ = k.Set("default_interpreter", defaults.DefaultInterpreter)
	_ = k.Set("strict_lookup", defaults.StrictLookup)
	_ = k.Set("refresh_continue_on_error", defaults.RefreshContinueOnError)
	_ = k.Set("fetch_timeout", defaults.FetchTimeout)
	_ = k.Set("verbose", defaults.Verbose)

	configFile := paths.ConfigFile()
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", configFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to access %s: %w", configFile, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment config: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	s.BaseURL = strings.TrimSpace(s.BaseURL)
	if s.BaseURL == "" {
		return nil, fmt.Errorf("base_url must not be empty")
	}
	if s.FetchTimeout < 0 {
		return nil, fmt.Errorf("fetch_timeout must not be negative, got %s", s.FetchTimeout)
	}

	return &s, nil
}

// envTransform maps SPM_BASE_URL to base_url. SPM_ROOT selects the layout and is not a setting.
func envTransform(s string) string {
	if s == "SPM_ROOT" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}
