package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

// Categories offered by the browser, in display order.
var Categories = []string{
	"tech", "general", "science", "sports", "business",
	"health", "entertainment", "politics", "food", "travel",
}

// ClientConfig configures the terminal browser
type ClientConfig struct {
	ServerURL        string `yaml:"server_url"`
	Category         string `yaml:"category"`
	Language         string `yaml:"language"`
	EndPolicy        string `yaml:"end_policy"`        // "probe" or "stop"
	FavoritesBackend string `yaml:"favorites_backend"` // "json" or "sqlite"
	FavoritesPath    string `yaml:"favorites_path,omitempty"`
	LogFile          string `yaml:"log_file,omitempty"`
}

func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ServerURL:        "http://localhost:5177",
		Category:         "tech",
		Language:         "en",
		EndPolicy:        "probe",
		FavoritesBackend: "json",
	}
}

func DefaultClientConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "flipnews", "config.yaml")
}

// DefaultFavoritesPath returns the favorites location for a backend.
func DefaultFavoritesPath(backend string) string {
	if backend == "sqlite" {
		return filepath.Join(xdg.DataHome, "flipnews", "favorites.db")
	}
	return filepath.Join(xdg.DataHome, "flipnews", "news_favorites.json")
}

// LoadClient reads the client config at path, or the default location when
// path is empty. A missing file yields the defaults.
func LoadClient(path string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()
	if path == "" {
		path = DefaultClientConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ClientConfig) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("server_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server_url scheme must be http or https, got %q", u.Scheme)
	}
	switch c.EndPolicy {
	case "", "probe", "stop":
	default:
		return fmt.Errorf("end_policy must be probe or stop, got %q", c.EndPolicy)
	}
	switch c.FavoritesBackend {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("favorites_backend must be json or sqlite, got %q", c.FavoritesBackend)
	}
	return nil
}

// ResolvedFavoritesPath returns the configured favorites path or the
// backend default.
func (c *ClientConfig) ResolvedFavoritesPath() string {
	if c.FavoritesPath != "" {
		return c.FavoritesPath
	}
	return DefaultFavoritesPath(c.FavoritesBackend)
}
