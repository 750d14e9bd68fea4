package github

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config stores adapter settings. Loaded from a TOML file; a missing
// file yields defaults so only the remote has to be supplied by hand.
type Config struct {
	// Remote is the repository root in "owner/repo" form.
	Remote string `toml:"remote"`
	// APIURL overrides the API root, e.g. for GitHub Enterprise.
	APIURL string `toml:"api_url"`
	// Token authenticates requests; GITHUB_TOKEN is used when empty.
	Token string `toml:"token"`
	// DefaultBranch backs the symbolic HEAD ref (default "master").
	DefaultBranch string `toml:"default_branch"`
	// CacheDir enables the local object cache when set.
	CacheDir string `toml:"cache_dir"`
}

// LoadConfig reads a TOML config file. A missing file returns an empty
// config with defaults applied; callers still need to set Remote.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.DefaultBranch == "" {
		c.DefaultBranch = "master"
	}
	if c.Token == "" {
		c.Token = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	}
}

// Validate checks that the config names a usable repository root.
func (c *Config) Validate() error {
	owner, repo, ok := strings.Cut(strings.TrimSpace(c.Remote), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("remote must be \"owner/repo\", got %q", c.Remote)
	}
	return nil
}
