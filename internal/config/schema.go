package config

import (
	"fmt"
	"time"

	"slate/internal/breakdown"
	"slate/internal/providers"
)

// Config holds slate configuration.
// Stored at: ./slate.yaml or $HOME/.slate/config.yaml
type Config struct {
	Ollama   OllamaCfg   `mapstructure:"ollama" yaml:"ollama"`
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
	Output   OutputCfg   `mapstructure:"output" yaml:"output"`
}

// OllamaCfg configures the local model endpoint.
type OllamaCfg struct {
	Host           string  `mapstructure:"host" yaml:"host"`                       // e.g. http://localhost:11434
	Model          string  `mapstructure:"model" yaml:"model"`                     // Model name
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute
	MaxRetries     int     `mapstructure:"max_retries" yaml:"max_retries"`         // Retry attempts per request
	TimeoutSeconds int     `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-request timeout
}

// PipelineCfg configures the breakdown run.
type PipelineCfg struct {
	// Preset selects a named worker tier: eco, power, turbo, max.
	// An explicit workers value overrides the preset.
	Preset         string  `mapstructure:"preset" yaml:"preset"`
	Workers        int     `mapstructure:"workers" yaml:"workers"`
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	Conservative   bool    `mapstructure:"conservative" yaml:"conservative"`
	ExtractImplied bool    `mapstructure:"extract_implied" yaml:"extract_implied"`
	UseContinuity  bool    `mapstructure:"use_continuity" yaml:"use_continuity"`
	UseFlags       bool    `mapstructure:"use_flags" yaml:"use_flags"`
}

// OutputCfg configures where results land.
type OutputCfg struct {
	Dir        string `mapstructure:"dir" yaml:"dir"`               // Export directory
	Checkpoint string `mapstructure:"checkpoint" yaml:"checkpoint"` // Checkpoint file path ("" disables)
}

// presetWorkers maps performance tiers to worker counts.
var presetWorkers = map[string]int{
	"eco":   1,
	"power": 4,
	"turbo": 6,
	"max":   8,
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Ollama: OllamaCfg{
			Host:           "http://localhost:11434",
			Model:          "qwen3:8b",
			RateLimit:      60,
			MaxRetries:     3,
			TimeoutSeconds: 300,
		},
		Pipeline: PipelineCfg{
			Preset:         "power",
			Temperature:    0.1,
			ExtractImplied: true,
			UseContinuity:  true,
			UseFlags:       true,
		},
		Output: OutputCfg{
			Dir:        ".",
			Checkpoint: "slate-checkpoint.json",
		},
	}
}

// WorkerCount resolves the effective worker count: an explicit workers value
// wins, then the preset, then eco.
func (c *PipelineCfg) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	if n, ok := presetWorkers[c.Preset]; ok {
		return n
	}
	return presetWorkers["eco"]
}

// Validate checks values the pipeline cannot correct on its own.
func (c *Config) Validate() error {
	if c.Ollama.Model == "" {
		return fmt.Errorf("ollama.model must be set")
	}
	if c.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be >= 0, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.Preset != "" && c.Pipeline.Workers == 0 {
		if _, ok := presetWorkers[c.Pipeline.Preset]; !ok {
			return fmt.Errorf("unknown pipeline.preset %q (eco, power, turbo, max)", c.Pipeline.Preset)
		}
	}
	if c.Pipeline.Temperature < 0 || c.Pipeline.Temperature > 2 {
		return fmt.Errorf("pipeline.temperature must be in [0, 2], got %v", c.Pipeline.Temperature)
	}
	return nil
}

// ToOllamaConfig converts to the provider client's configuration.
func (c *Config) ToOllamaConfig() providers.OllamaConfig {
	return providers.OllamaConfig{
		Host:              c.Ollama.Host,
		Model:             c.Ollama.Model,
		RequestsPerMinute: int(c.Ollama.RateLimit),
		MaxRetries:        c.Ollama.MaxRetries,
		Timeout:           time.Duration(c.Ollama.TimeoutSeconds) * time.Second,
	}
}

// ToPipelineConfig converts to the breakdown pipeline's configuration.
func (c *Config) ToPipelineConfig() breakdown.Config {
	return breakdown.Config{
		Workers:        c.Pipeline.WorkerCount(),
		Temperature:    c.Pipeline.Temperature,
		Conservative:   c.Pipeline.Conservative,
		ExtractImplied: c.Pipeline.ExtractImplied,
		UseContinuity:  c.Pipeline.UseContinuity,
		UseFlags:       c.Pipeline.UseFlags,
	}
}
