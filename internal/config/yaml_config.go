package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLConfig represents the structure of the config.yaml file.
// The credential table is easier to manage in YAML than env vars.
type YAMLConfig struct {
	Users []UserConfig `yaml:"users"`
}

// UserConfig defines a local dashboard user.
type UserConfig struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"` // bcrypt
}

// LoadYAMLConfig loads the YAML configuration file.
// Path is determined by CONFIG_FILE env var, defaulting to "config.yaml".
// Returns nil without error if the config file doesn't exist.
func LoadYAMLConfig() (*YAMLConfig, error) {
	path := getEnv("CONFIG_FILE", "config.yaml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Config file is optional
			return nil, nil
		}
		return nil, err
	}

	var cfg YAMLConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	seen := make(map[string]bool, len(cfg.Users))
	for _, u := range cfg.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return nil, fmt.Errorf("%s: every user needs username and password_hash", path)
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("%s: duplicate user %q", path, u.Username)
		}
		seen[u.Username] = true
	}

	return &cfg, nil
}

// UserHashes returns the username to password hash table.
func (c *YAMLConfig) UserHashes() map[string]string {
	if c == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(c.Users))
	for _, u := range c.Users {
		out[u.Username] = u.PasswordHash
	}
	return out
}
