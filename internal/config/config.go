// Package config provides configuration loading and structs for the rwascore server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hyperjump/rwascore/internal/embedding"
	"github.com/hyperjump/rwascore/internal/model"
	"github.com/hyperjump/rwascore/internal/scoring"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool             `yaml:"debug"`
	Server    ServerConfig     `yaml:"server"`
	Storage   StorageConfig    `yaml:"storage"`
	Embedding embedding.Config `yaml:"embedding"`
	Model     ModelConfig      `yaml:"model"`
	Scoring   ScoringConfig    `yaml:"scoring"`
	Inbox     InboxConfig      `yaml:"inbox"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// StorageConfig holds the catalog database and upload paths.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	UploadsDir   string `yaml:"uploads_dir"`
}

// ModelConfig configures the model-assisted strategy: the classifier and the auxiliary points.
type ModelConfig struct {
	Enabled    *bool                     `yaml:"enabled"`
	Classifier model.Config              `yaml:",inline"`
	Scorer     scoring.ModelScorerConfig `yaml:",inline"`
}

// UnmarshalYAML decodes the model section. The auxiliary points are inlined, which bypasses their
// own unmarshaler, so they are decoded a second time from the same node to keep explicit zeros.
func (m *ModelConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain ModelConfig
	if err := value.Decode((*plain)(m)); err != nil {
		return err
	}
	return value.Decode(&m.Scorer)
}

// EnabledOrDefault reports whether the model strategy is offered; defaults to true when unset.
func (m *ModelConfig) EnabledOrDefault() bool {
	if m.Enabled != nil {
		return *m.Enabled
	}
	return true
}

// ScoringConfig selects the default strategy and holds the heuristic weights.
type ScoringConfig struct {
	DefaultStrategy string                  `yaml:"default_strategy"`
	Heuristic       scoring.HeuristicConfig `yaml:"heuristic"`
}

// InboxConfig holds drop-directory watch settings.
type InboxConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	DebounceMS  int      `yaml:"debounce_ms"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (i *InboxConfig) RecursiveOrDefault() bool {
	if i.Recursive != nil {
		return *i.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies defaults, expands paths, and validates.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.UploadsDir = expandPath(cfg.Storage.UploadsDir, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.TokenizerPath = expandPath(cfg.Embedding.TokenizerPath, configDir)
	cfg.Embedding.SharedLibraryPath = expandPath(cfg.Embedding.SharedLibraryPath, configDir)
	cfg.Model.Classifier.Path = expandPath(cfg.Model.Classifier.Path, configDir)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], configDir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Scoring.DefaultStrategy {
	case scoring.StrategyHeuristic, scoring.StrategyModel:
	default:
		return fmt.Errorf("scoring.default_strategy: unknown strategy %q", c.Scoring.DefaultStrategy)
	}
	if c.Scoring.DefaultStrategy == scoring.StrategyModel && !c.Model.EnabledOrDefault() {
		return fmt.Errorf("scoring.default_strategy is model but model.enabled is false")
	}
	switch c.Scoring.Heuristic.Profile {
	case scoring.ProfilePoints, scoring.ProfileWeighted:
	default:
		return fmt.Errorf("scoring.heuristic.profile: unknown profile %q", c.Scoring.Heuristic.Profile)
	}
	switch c.Model.Classifier.Type {
	case model.TypeLinear, model.TypeONNX:
	default:
		return fmt.Errorf("model.type: unknown type %q", c.Model.Classifier.Type)
	}
	switch c.Embedding.Type {
	case embedding.TypeONNX, embedding.TypeMock:
	default:
		return fmt.Errorf("embedding.type: unknown type %q", c.Embedding.Type)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: %d out of range", c.Server.Port)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// "~/" is the home directory; other relative paths are relative to the home directory.
// Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, strings.TrimPrefix(path, "~/"))
	}
	return path
}
