// Package config loads partyvote settings from .env, the environment and an
// optional YAML file. Command-line flags override all of them.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/abrezinsky/partyvote/internal/credential"
	"github.com/abrezinsky/partyvote/internal/session"
)

// EnvConfigFile names a YAML file to read before the environment
const EnvConfigFile = "PARTYVOTE_CONFIG"

// Features are optional behaviours of the front-ends
type Features struct {
	VotingEnabled               bool   `yaml:"voting_enabled"                env:"PARTYVOTE_VOTING_ENABLED"`
	VotingDisabledMessage       string `yaml:"voting_disabled_message"       env:"PARTYVOTE_VOTING_DISABLED_MESSAGE"       env-default:"Voting has not started yet. Please check back later."`
	RegistrationEnabled         bool   `yaml:"registration_enabled"          env:"PARTYVOTE_REGISTRATION_ENABLED"`
	RegistrationDisabledMessage string `yaml:"registration_disabled_message" env:"PARTYVOTE_REGISTRATION_DISABLED_MESSAGE" env-default:"Voting is going on."`
	PartySearch                 bool   `yaml:"party_search"                  env:"PARTYVOTE_PARTY_SEARCH"`
	ThemeToggle                 bool   `yaml:"theme_toggle"                  env:"PARTYVOTE_THEME_TOGGLE"`
	Animations                  bool   `yaml:"animations"                    env:"PARTYVOTE_ANIMATIONS"`
	RequirePlayerDetails        bool   `yaml:"require_player_details"        env:"PARTYVOTE_REQUIRE_PLAYER_DETAILS"        env-default:"false"`
	MaxLogoKB                   int    `yaml:"max_logo_kb"                   env:"PARTYVOTE_MAX_LOGO_KB"                   env-default:"100"`
}

// Config is the full application configuration
type Config struct {
	APIURL            string        `yaml:"api_url"             env:"PARTYVOTE_API_URL"             env-default:"http://localhost:8787/api"`
	DBPath            string        `yaml:"db_path"             env:"PARTYVOTE_DB"                  env-default:"partyvote.db"`
	LogLevel          string        `yaml:"log_level"           env:"PARTYVOTE_LOG_LEVEL"           env-default:"info"`
	Addr              string        `yaml:"addr"                env:"PARTYVOTE_ADDR"                env-default:":8090"`
	RequestTimeout    time.Duration `yaml:"request_timeout"     env:"PARTYVOTE_REQUEST_TIMEOUT"     env-default:"0s"`
	TallyPollInterval time.Duration `yaml:"tally_poll_interval" env:"PARTYVOTE_TALLY_POLL_INTERVAL" env-default:"5s"`
	SessionMaxAge     time.Duration `yaml:"session_max_age"     env:"PARTYVOTE_SESSION_MAX_AGE"     env-default:"24h"`
	PasswordScheme    string        `yaml:"password_scheme"     env:"PARTYVOTE_PASSWORD_SCHEME"     env-default:"base64"`
	DefaultTheme      string        `yaml:"default_theme"       env:"PARTYVOTE_DEFAULT_THEME"       env-default:"dark"`
	OpenBrowser       bool          `yaml:"open_browser"        env:"PARTYVOTE_OPEN_BROWSER"        env-default:"false"`
	Features          Features      `yaml:"features"`
}

// Load reads .env (if present), then the YAML file named by
// PARTYVOTE_CONFIG (if set), then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	return &cfg, nil
}

// defaults presets the booleans that default to true. cleanenv applies
// env-default only to zero fields, so a tag default would turn an explicit
// false in the YAML file back into true.
func defaults() Config {
	return Config{
		Features: Features{
			VotingEnabled:       true,
			RegistrationEnabled: true,
			PartySearch:         true,
			ThemeToggle:         true,
			Animations:          true,
		},
	}
}

// Default returns the configuration with every default applied
func Default() *Config {
	cfg := defaults()
	// ReadEnv only fails on malformed values; defaults are well formed.
	_ = cleanenv.ReadEnv(&cfg)
	return &cfg
}

// RegisterFlags binds command-line flags to c, using c's current values as defaults
func (c *Config) RegisterFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.APIURL, "api", c.APIURL, "Voting API base URL")
	flags.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path for session storage")
	flags.StringVar(&c.LogLevel, "loglevel", c.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&c.Addr, "addr", c.Addr, "Listen address for the local web UI")
	flags.DurationVar(&c.RequestTimeout, "timeout", c.RequestTimeout, "API request timeout (0 waits indefinitely)")
	flags.DurationVar(&c.TallyPollInterval, "poll", c.TallyPollInterval, "Live tally refresh interval")
	flags.StringVar(&c.PasswordScheme, "password-scheme", c.PasswordScheme, "Candidate password encoding (base64, bcrypt)")
	flags.StringVar(&c.DefaultTheme, "theme", c.DefaultTheme, "Default theme (dark, light)")
	flags.BoolVar(&c.OpenBrowser, "open", c.OpenBrowser, "Open the web UI in a browser on start")
	flags.BoolVar(&c.Features.VotingEnabled, "voting", c.Features.VotingEnabled, "Allow votes to be cast")
	flags.BoolVar(&c.Features.RegistrationEnabled, "registration", c.Features.RegistrationEnabled, "Allow candidates to register")
	flags.BoolVar(&c.Features.RequirePlayerDetails, "require-details", c.Features.RequirePlayerDetails, "Ask voters for edition and player name before voting")
	flags.IntVar(&c.Features.MaxLogoKB, "max-logo-kb", c.Features.MaxLogoKB, "Largest accepted party logo in KB")
}

// Validate checks values that cannot be expressed as struct tags
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API URL %q", c.APIURL)
	}
	if _, err := credential.ParseScheme(c.PasswordScheme); err != nil {
		return err
	}
	if !session.Theme(c.DefaultTheme).Valid() {
		return fmt.Errorf("invalid theme %q", c.DefaultTheme)
	}
	if c.Features.MaxLogoKB <= 0 {
		return fmt.Errorf("max logo size must be positive, got %d", c.Features.MaxLogoKB)
	}
	if c.TallyPollInterval <= 0 {
		return fmt.Errorf("tally poll interval must be positive, got %s", c.TallyPollInterval)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout cannot be negative")
	}
	return nil
}

// Scheme returns the parsed password scheme
func (c *Config) Scheme() credential.Scheme {
	s, err := credential.ParseScheme(c.PasswordScheme)
	if err != nil {
		return credential.SchemeBase64
	}
	return s
}

// Theme returns the default theme
func (c *Config) Theme() session.Theme {
	return session.Theme(c.DefaultTheme)
}
