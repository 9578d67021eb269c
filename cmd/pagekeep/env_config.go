package main

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-pagekeep/internal/config"
)

const envPrefix = "PAGEKEEP_"

// envConfig holds PAGEKEEP_* overrides for CI use without a YAML file.
type envConfig struct {
	ConfigPath string        // PAGEKEEP_CONFIG
	Style      string        // PAGEKEEP_STYLE
	Rules      string        // PAGEKEEP_RULES
	Timeout    time.Duration // PAGEKEEP_TIMEOUT
	InputDir   string        // PAGEKEEP_INPUT_DIR
	OutputDir  string        // PAGEKEEP_OUTPUT_DIR
	PaperSize  string        // PAGEKEEP_PAPER_SIZE
	Workers    int           // PAGEKEEP_WORKERS
}

var knownEnvVars = map[string]bool{
	"PAGEKEEP_CONFIG":     true,
	"PAGEKEEP_STYLE":      true,
	"PAGEKEEP_RULES":      true,
	"PAGEKEEP_TIMEOUT":    true,
	"PAGEKEEP_INPUT_DIR":  true,
	"PAGEKEEP_OUTPUT_DIR": true,
	"PAGEKEEP_PAPER_SIZE": true,
	"PAGEKEEP_WORKERS":    true,
}

// loadEnvConfig reads PAGEKEEP_* variables. Unparsable numbers and
// durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath: getenv("PAGEKEEP_CONFIG"),
		Style:      getenv("PAGEKEEP_STYLE"),
		Rules:      getenv("PAGEKEEP_RULES"),
		InputDir:   getenv("PAGEKEEP_INPUT_DIR"),
		OutputDir:  getenv("PAGEKEEP_OUTPUT_DIR"),
		PaperSize:  getenv("PAGEKEEP_PAPER_SIZE"),
	}
	if v := getenv("PAGEKEEP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if v := getenv("PAGEKEEP_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

// warnUnknownEnvVars catches typos such as PAGEKEEP_STYEL.
func warnUnknownEnvVars(environ []string, log *zap.Logger) {
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			log.Warn("unknown environment variable (typo?)", zap.String("name", name))
		}
	}
}

// applyEnvConfig fills values the config file left empty. Flags are merged
// afterwards and win over both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Style != "" && cfg.Style.Name == "" {
		cfg.Style.Name = env.Style
	}
	if env.Rules != "" && cfg.Rules.Path == "" {
		cfg.Rules.Path = env.Rules
	}
	if env.Timeout > 0 && cfg.Render.Timeout == "" {
		cfg.Render.Timeout = env.Timeout.String()
	}
	if env.InputDir != "" && cfg.Input.DefaultDir == "" {
		cfg.Input.DefaultDir = env.InputDir
	}
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.PaperSize != "" && cfg.Page.Size == "" {
		cfg.Page.Size = env.PaperSize
	}
	if env.Workers > 0 && cfg.Render.Workers == 0 {
		cfg.Render.Workers = env.Workers
	}
}
