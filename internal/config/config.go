// Package config loads settings from defaults, an optional config.yaml,
// RECIPEIT_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Backends the client can read recipes from.
const (
	BackendRTDB   = "rtdb"
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// EnvPrefix prefixes every environment variable, e.g. RECIPEIT_SPEECH_KEY
// for speech.key.
const EnvPrefix = "RECIPEIT"

// Config is the complete configuration.
type Config struct {
	// Backend is one of "rtdb", "memory" or "sqlite".
	Backend string `mapstructure:"backend"`
	// DatabaseURL is the realtime database root, used by the rtdb backend.
	DatabaseURL string `mapstructure:"database_url"`
	// APIKey is the identity service web API key.
	APIKey string `mapstructure:"api_key"`
	// IdentityURL overrides the identity service endpoint, e.g. to point
	// at `recipeit serve`.
	IdentityURL string `mapstructure:"identity_url"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	LogLevel    string `mapstructure:"log_level"`
	// LogFile is where logs go; "stderr" logs to the console.
	LogFile string `mapstructure:"log_file"`

	Maps   MapsConfig   `mapstructure:"maps"`
	Speech SpeechConfig `mapstructure:"speech"`
	Home   HomeConfig   `mapstructure:"home"`
}

// MapsConfig controls external map links.
type MapsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// SpeechConfig controls step narration. Narration is off without a key.
type SpeechConfig struct {
	Key      string `mapstructure:"key"`
	Region   string `mapstructure:"region"`
	Voice    string `mapstructure:"voice"`
	CacheDir string `mapstructure:"cache_dir"`
}

// HomeConfig controls the home feed.
type HomeConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend:     BackendMemory,
		IdentityURL: "https://identitytoolkit.googleapis.com/v1",
		SQLitePath:  filepath.Join(Dir(), "recipeit.db"),
		LogLevel:    "normal",
		LogFile:     ".recipeit-logs/recipeit.log",
		Maps:        MapsConfig{BaseURL: "https://www.google.com/maps"},
		Speech: SpeechConfig{
			Voice:    "en-US-AvaNeural",
			CacheDir: ".recipeit-cache",
		},
		Home: HomeConfig{PageSize: 4},
	}
}

// SetDefaults registers every key with its default so that environment
// variables are picked up for keys absent from the config file.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("backend", d.Backend)
	v.SetDefault("database_url", d.DatabaseURL)
	v.SetDefault("api_key", d.APIKey)
	v.SetDefault("identity_url", d.IdentityURL)
	v.SetDefault("sqlite_path", d.SQLitePath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("maps.base_url", d.Maps.BaseURL)
	v.SetDefault("speech.key", d.Speech.Key)
	v.SetDefault("speech.region", d.Speech.Region)
	v.SetDefault("speech.voice", d.Speech.Voice)
	v.SetDefault("speech.cache_dir", d.Speech.CacheDir)
	v.SetDefault("home.page_size", d.Home.PageSize)
}

// Setup prepares v: defaults, environment binding and the config file
// search path. An explicit file overrides the search path.
func Setup(v *viper.Viper, file string) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The speech service's own variable names are honoured too.
	_ = v.BindEnv("speech.key", EnvPrefix+"_SPEECH_KEY", "AZURE_SPEECH_KEY")
	_ = v.BindEnv("speech.region", EnvPrefix+"_SPEECH_REGION", "AZURE_SPEECH_REGION")

	if file != "" {
		v.SetConfigFile(file)
		return
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(Dir())
	v.AddConfigPath(".")
}

// Read loads the config file if there is one. A missing file in the
// search path is not an error; a missing explicit file is.
func Read(v *viper.Viper) error {
	err := v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err == nil || errors.As(err, &notFound) {
		return nil
	}
	return fmt.Errorf("reading config: %w", err)
}

// Load unmarshals and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.SQLitePath == "" {
			return errors.New("config: sqlite_path is required for the sqlite backend")
		}
	case BackendRTDB:
		if c.DatabaseURL == "" {
			return errors.New("config: database_url is required for the rtdb backend")
		}
	default:
		return fmt.Errorf("config: unknown backend %q (want rtdb, memory or sqlite)", c.Backend)
	}
	if c.Home.PageSize < 1 {
		return fmt.Errorf("config: home.page_size must be at least 1, got %d", c.Home.PageSize)
	}
	return nil
}

// Dir is the per-user config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "recipeit")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".recipeit"
	}
	return filepath.Join(home, ".config", "recipeit")
}
