package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
	"github.com/etnz/billsync"
	"github.com/etnz/billsync/liberty"
	"gopkg.in/yaml.v3"
)

// Config holds the settings read from the configuration file.
type Config struct {
	Endpoint       string        `yaml:"endpoint"`
	Origin         string        `yaml:"origin"`
	Referer        string        `yaml:"referer"`
	UserAgent      string        `yaml:"user_agent"`
	Sheet          string        `yaml:"sheet"`           // ledger sheet, empty for the first one
	Delay          time.Duration `yaml:"delay"`           // pause between two usage API calls
	Timeout        time.Duration `yaml:"timeout"`         // usage API request timeout
	Cache          bool          `yaml:"cache"`           // cache usage API responses for the day
	Journal        string        `yaml:"journal"`         // run journal database, empty disables it
	Accounts       []string      `yaml:"accounts"`        // accounts to sync instead of the ledger ones
	AccountPattern string        `yaml:"account_pattern"` // regexp with one group capturing the account number

	pattern *regexp.Regexp
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       liberty.DefaultEndpoint,
		Origin:         liberty.DefaultOrigin,
		UserAgent:      liberty.DefaultUserAgent,
		Delay:          billsync.DefaultDelay,
		Timeout:        30 * time.Second,
		Journal:        "bsync.db",
		AccountPattern: billsync.DefaultAccountPattern.String(),
	}
}

// LoadConfig reads the configuration file at path over the defaults.
// A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debug("no configuration file, using defaults", "path", path)
	case err != nil:
		return nil, fmt.Errorf("cannot read configuration: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
		}
	}

	if cfg.Delay < 0 || cfg.Timeout < 0 {
		return nil, fmt.Errorf("invalid configuration %q: delay and timeout cannot be negative", path)
	}
	cfg.pattern, err = regexp.Compile(cfg.AccountPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid account_pattern %q: %w", cfg.AccountPattern, err)
	}
	if cfg.pattern.NumSubexp() < 1 {
		return nil, fmt.Errorf("invalid account_pattern %q: it must capture the account number in a group", cfg.AccountPattern)
	}
	return cfg, nil
}

// Pattern returns the compiled account pattern.
func (c *Config) Pattern() *regexp.Regexp { return c.pattern }

// Client returns a usage API client configured by c.
func (c *Config) Client() (*liberty.Client, error) {
	client := liberty.NewClient(c.Timeout)
	client.Endpoint = c.Endpoint
	client.Origin = c.Origin
	client.Referer = c.Referer
	client.UserAgent = c.UserAgent
	if c.Cache {
		client.EnableDailyCache(cacheDir())
	}
	return client, nil
}

// cacheDir is where the daily response cache lives.
var cacheDir = os.TempDir

func loadConfig() (*Config, error) { return LoadConfig(*configFile) }
