package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/robmazan/CodeAnalyzer/internal/traversal"
)

// Engine names accepted by Backfill.Engine.
const (
	EngineCLI   = "cli"
	EngineGoGit = "go-git"
)

// ErrMissingProjectKey is returned when a command needs a project key and none is configured.
var ErrMissingProjectKey = errors.New("project key is required")

// Config is the root configuration structure.
type Config struct {
	Backfill BackfillConfig `koanf:"backfill" json:"backfill"`
	Scanner  ScannerConfig  `koanf:"scanner" json:"scanner"`
	Sonar    SonarConfig    `koanf:"sonar" json:"sonar"`
	Filters  FilterConfig   `koanf:"filters" json:"filters"`
}

// BackfillConfig holds the traversal options.
type BackfillConfig struct {
	Branch     string `koanf:"branch" json:"branch"`         // Default: "master"
	Step       int    `koanf:"step" json:"step"`             // Default: 1
	MergesOnly bool   `koanf:"mergesOnly" json:"mergesOnly"` // Default: false
	ProjectKey string `koanf:"projectKey" json:"projectKey"`
	Engine     string `koanf:"engine" json:"engine"`   // "cli" or "go-git"
	Restore    bool   `koanf:"restore" json:"restore"` // Check out the original ref afterwards
}

// ScannerConfig holds the sonar-scanner invocation.
type ScannerConfig struct {
	Command string `koanf:"command" json:"command"`
	HostURL string `koanf:"hostUrl" json:"hostUrl"`
	Token   string `koanf:"token" json:"token,omitempty"`
	// Properties are extra analysis properties as "key=value" entries.
	// Property keys contain dots, so they cannot be config map keys.
	Properties []string `koanf:"properties" json:"properties"`
}

// PropertyMap parses Properties into a map.
func (s ScannerConfig) PropertyMap() (map[string]string, error) {
	props := make(map[string]string, len(s.Properties))
	for _, p := range s.Properties {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("scanner property %q is not key=value", p)
		}
		props[key] = value
	}
	return props, nil
}

// SonarConfig holds the metrics server client options.
type SonarConfig struct {
	URL         string   `koanf:"url" json:"url"`
	Token       string   `koanf:"token" json:"token,omitempty"`
	Metrics     []string `koanf:"metrics" json:"metrics"`
	Parallelism int      `koanf:"parallelism" json:"parallelism"`
}

// FilterConfig holds file path filtering options.
type FilterConfig struct {
	Include []string `koanf:"include" json:"include"`
	Exclude []string `koanf:"exclude" json:"exclude"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Backfill: BackfillConfig{
			Branch:  "master",
			Step:    1,
			Engine:  EngineCLI,
			Restore: true,
		},
		Scanner: ScannerConfig{
			Command:    "sonar-scanner",
			Properties: []string{},
		},
		Sonar: SonarConfig{
			URL: "http://localhost:9000",
			Metrics: []string{
				"ncloc",
				"bugs",
				"vulnerabilities",
				"code_smells",
				"coverage",
				"duplicated_lines_density",
			},
			Parallelism: 4,
		},
		Filters: FilterConfig{
			Include: []string{},
			Exclude: []string{},
		},
	}
}

// configNames are searched, in order, when no path is given.
var configNames = []string{
	".codeanalyzer.json",
	".codeanalyzer.yaml",
	".codeanalyzer.yml",
	".codeanalyzer.toml",
}

// LoadConfig loads configuration from a file, merging with defaults.
// With an empty path it searches the current directory, then the home directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = findConfig()
	}
	if path == "" {
		return cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}

	return cfg, nil
}

func findConfig() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		dirs = append(dirs, home)
	} else if envHome := os.Getenv("HOME"); envHome != "" {
		dirs = append(dirs, envHome)
	}

	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser()
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return kjson.Parser()
	}
}

// Validate checks values that no command can work with.
func (c *Config) Validate() error {
	if err := traversal.ValidateStep(c.Backfill.Step); err != nil {
		return fmt.Errorf("backfill.step: %w", err)
	}
	switch c.Backfill.Engine {
	case EngineCLI, EngineGoGit:
	default:
		return fmt.Errorf("backfill.engine must be %q or %q, got %q", EngineCLI, EngineGoGit, c.Backfill.Engine)
	}
	if _, err := c.Scanner.PropertyMap(); err != nil {
		return err
	}
	if c.Sonar.Parallelism < 1 {
		return fmt.Errorf("sonar.parallelism must be at least 1, got %d", c.Sonar.Parallelism)
	}
	return nil
}

// RequireProjectKey fails when no project key is configured.
func (c *Config) RequireProjectKey() error {
	if strings.TrimSpace(c.Backfill.ProjectKey) == "" {
		return ErrMissingProjectKey
	}
	return nil
}

// SaveConfig saves configuration to a file as JSON.
func SaveConfig(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
