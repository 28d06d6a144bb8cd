package config

import "github.com/hyperjump/rwascore/internal/scoring"

// DefaultPath is where the CLI looks for a config file.
const DefaultPath = "/usr/local/etc/rwascore/config.yaml"

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = 32 << 20
	}
	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/rwascore/db/assets.db"
	}
	if cfg.Storage.UploadsDir == "" {
		cfg.Storage.UploadsDir = "/usr/local/var/rwascore/uploads"
	}
	cfg.Embedding.ApplyDefaults()
	cfg.Model.Classifier.ApplyDefaults()
	cfg.Model.Scorer.ApplyDefaults()
	if cfg.Scoring.DefaultStrategy == "" {
		cfg.Scoring.DefaultStrategy = scoring.StrategyHeuristic
	}
	cfg.Scoring.Heuristic.ApplyDefaults()
	if cfg.Inbox.Extensions == nil {
		cfg.Inbox.Extensions = []string{".txt", ".md", ".pdf", ".docx", ".xlsx", ".odt", ".ods", ".csv"}
	}
	if cfg.Inbox.DebounceMS == 0 {
		cfg.Inbox.DebounceMS = 400
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Inbox.Directories) > 0 && cfg.Inbox.Recursive == nil {
		t := true
		cfg.Inbox.Recursive = &t
	}
}
