package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "PROFILECTL_"

// Config holds CLI configuration. Flags override PROFILECTL_* variables.
type Config struct {
	ServerURL string `env:"SERVER" envDefault:"http://localhost:8080"`
	Token     string `env:"TOKEN"`
	TokenFile string `env:"TOKEN_FILE"`
	Output    string `env:"OUTPUT" envDefault:"text"`
	Verbose   bool   `env:"VERBOSE"`
}

// DefaultConfig reads the environment, falling back to built-in defaults
// when a variable does not parse
func DefaultConfig() *Config {
	c, err := loadConfig(env.Options{Prefix: envPrefix})
	if err != nil {
		c = &Config{ServerURL: "http://localhost:8080", Output: "text"}
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
	}
	return c
}

func loadConfig(opts env.Options) (*Config, error) {
	c := &Config{}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadToken loads the token from file if not already set
func (c *Config) LoadToken() error {
	if c.Token != "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No token file is fine
		}
		return err
	}

	c.Token = strings.TrimSpace(string(data))
	return nil
}

// SaveToken saves the token to the token file
func (c *Config) SaveToken(token string) error {
	c.Token = token

	dir := filepath.Dir(c.TokenFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.TokenFile, []byte(token), 0600)
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".profilectl/token"
	}
	return filepath.Join(home, ".profilectl", "token")
}
