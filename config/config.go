// Package config loads the application settings and resolves credentials.
// Everything lives under a single directory, ~/.artslides by default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dirName        = ".artslides"
	configFileName = "config.yaml"

	apiKeyFileName = "anthropic_api_key.txt"
	apiKeyEnvVar   = "ANTHROPIC_API_KEY"
)

// StorageConfig selects the processed-item ledger backend.
type StorageConfig struct {
	// Type is "json" or "sqlite".
	Type string `yaml:"type"`
}

// Duration wraps time.Duration so it reads and writes as a duration
// string ("500ms", "2s") in the config file.
type Duration time.Duration

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like 500ms or 2s", value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// CrawlConfig tunes how sites are fetched.
type CrawlConfig struct {
	RequestTimeout Duration `yaml:"request_timeout"`
	PageDelay      Duration `yaml:"page_delay"`
	ItemDelay      Duration `yaml:"item_delay"`
	MaxPages       int      `yaml:"max_pages"`
}

// ImageConfig tunes the image qualification filters.
type ImageConfig struct {
	MinDimension int  `yaml:"min_dimension"`
	MinBytes     int  `yaml:"min_bytes"`
	Probe        bool `yaml:"probe"`
}

// EnhancerConfig tunes the metadata enhancer.
type EnhancerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Settings is the structure of ~/.artslides/config.yaml.
type Settings struct {
	FolderName  string         `yaml:"folder_name"`
	CatalogName string         `yaml:"catalog_name"`
	Storage     StorageConfig  `yaml:"storage"`
	Crawl       CrawlConfig    `yaml:"crawl"`
	Images      ImageConfig    `yaml:"images"`
	Enhancer    EnhancerConfig `yaml:"enhancer"`

	dir string
}

// Defaults returns the settings used when no config file exists yet.
func Defaults() *Settings {
	return &Settings{
		FolderName:  "Art Slides",
		CatalogName: "Art Slides Catalog",
		Storage:     StorageConfig{Type: "json"},
		Crawl: CrawlConfig{
			RequestTimeout: Duration(10 * time.Second),
			PageDelay:      Duration(500 * time.Millisecond),
			ItemDelay:      Duration(time.Second),
			MaxPages:       50,
		},
		Images: ImageConfig{
			MinDimension: 50,
			MinBytes:     5000,
			Probe:        true,
		},
		Enhancer: EnhancerConfig{
			Enabled:   true,
			Model:     "claude-sonnet-4-20250514",
			MaxTokens: 300,
		},
	}
}

// DefaultDir returns ~/.artslides.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, dirName), nil
}

// Load reads dir/config.yaml, creating both the directory and a default
// config file on first run. Absent fields keep their defaults.
func Load(dir string) (*Settings, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	settings := Defaults()
	settings.dir = dir

	configPath := filepath.Join(dir, configFileName)
	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		if err := settings.write(configPath); err != nil {
			return nil, err
		}
		return settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", configPath, err)
	}
	return settings, nil
}

func (s *Settings) write(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func (s *Settings) validate() error {
	switch s.Storage.Type {
	case "json", "sqlite":
	default:
		return fmt.Errorf("unknown storage type %q (want json or sqlite)", s.Storage.Type)
	}
	if s.Crawl.MaxPages <= 0 {
		return fmt.Errorf("crawl.max_pages must be positive")
	}
	return nil
}

// Dir returns the directory this configuration was loaded from.
func (s *Settings) Dir() string {
	return s.dir
}

// DataDir returns the directory holding ledger files and databases.
func (s *Settings) DataDir() string {
	return filepath.Join(s.dir, "data")
}

// CredentialsPath returns the Google OAuth client secrets file path.
func (s *Settings) CredentialsPath() string {
	return filepath.Join(s.dir, "credentials.json")
}

// TokenPath returns the stored Google OAuth token file path.
func (s *Settings) TokenPath() string {
	return filepath.Join(s.dir, "token.json")
}

// APIKey resolves the Anthropic API key: a key file in the config
// directory wins, then the environment. An empty return means the
// enhancer cannot run.
func (s *Settings) APIKey() string {
	data, err := os.ReadFile(filepath.Join(s.dir, apiKeyFileName))
	if err == nil {
		if key := strings.TrimSpace(string(data)); key != "" {
			return key
		}
	}
	return strings.TrimSpace(os.Getenv(apiKeyEnvVar))
}
