package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mcoot/ranktracker/internal/config"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string `env:"RANKCTL_SERVER"     envDefault:"http://localhost:8080"`
	Token      string `env:"RANKCTL_TOKEN"`
	TokenFile  string `env:"RANKCTL_TOKEN_FILE"`
	AuthSecret string `env:"AUTH_SECRET"`
	AuthIssuer string `env:"AUTH_ISSUER"        envDefault:"ranktracker"`
	Output     string `env:"RANKCTL_OUTPUT"     envDefault:"text"`
	Verbose    bool   `env:"RANKCTL_VERBOSE"`
}

// DefaultConfig returns a Config populated from the environment
func DefaultConfig() (*Config, error) {
	c := &Config{}
	if err := config.ParseEnv(c); err != nil {
		return nil, err
	}
	if c.TokenFile == "" {
		c.TokenFile = defaultTokenFile()
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
		return ".rankctl/token"
	}
	return filepath.Join(home, ".rankctl", "token")
}
