package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

// APIBaseEnv overrides api.base_url when set.
const APIBaseEnv = "CONTENT_ANALYZER_API_BASE"

// DefaultAPIBase is the loopback address of a locally running analysis service.
const DefaultAPIBase = "http://127.0.0.1:8000"

type Config struct {
	API     API     `yaml:"api"`
	Output  Output  `yaml:"output"`
	Toast   Toast   `yaml:"toast"`
	Feed    Feed    `yaml:"feed"`
	Server  Server  `yaml:"server"`
	Logging Logging `yaml:"logging"`
}

type API struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Output struct {
	DataDir   string `yaml:"data_dir"`
	ExportDir string `yaml:"export_dir"`
}

type Toast struct {
	Duration time.Duration `yaml:"duration"`
}

type Feed struct {
	MaxPosts      int           `yaml:"max_posts"`
	FetchTimeout  time.Duration `yaml:"fetch_timeout"`
	MinPostLength int           `yaml:"min_post_length"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for contentanalyzer.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "contentanalyzer")
}

// DataDir returns the XDG data directory for contentanalyzer.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "contentanalyzer")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/contentanalyzer/config.yaml > ./config.yaml.
// An empty path with a nil error means no file exists and defaults apply.
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", nil
}

// Load reads and parses a config YAML file. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults and the
// environment override of the API base.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		API: API{
			BaseURL: DefaultAPIBase,
			Timeout: 60 * time.Second,
		},
		Toast: Toast{Duration: 2500 * time.Millisecond},
		Feed: Feed{
			MaxPosts:      20,
			FetchTimeout:  15 * time.Second,
			MinPostLength: 100,
		},
		Server:  Server{Port: 8010},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if env := strings.TrimSpace(os.Getenv(APIBaseEnv)); env != "" {
		cfg.API.BaseURL = env
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultAPIBase
	}
	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// GetExportDir returns the directory exports are written to, defaulting to
// the working directory.
func (c *Config) GetExportDir() string {
	if c.Output.ExportDir != "" {
		return c.Output.ExportDir
	}
	return "."
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
