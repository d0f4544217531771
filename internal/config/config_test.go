package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Ollama.Host == "" {
		t.Error("expected a default ollama host")
	}
	if cfg.Ollama.Model == "" {
		t.Error("expected a default model")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestPipelineCfg_WorkerCount(t *testing.T) {
	tests := []struct {
		name string
		cfg  PipelineCfg
		want int
	}{
		{"eco preset", PipelineCfg{Preset: "eco"}, 1},
		{"power preset", PipelineCfg{Preset: "power"}, 4},
		{"turbo preset", PipelineCfg{Preset: "turbo"}, 6},
		{"max preset", PipelineCfg{Preset: "max"}, 8},
		{"explicit workers override preset", PipelineCfg{Preset: "max", Workers: 2}, 2},
		{"unknown preset falls back to eco", PipelineCfg{Preset: "ludicrous"}, 1},
		{"empty config falls back to eco", PipelineCfg{}, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.WorkerCount(); got != tc.want {
				t.Errorf("WorkerCount() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Ollama.Model = ""
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for empty model")
		}
	})

	t.Run("unknown preset without workers", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Pipeline.Preset = "ludicrous"
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for unknown preset")
		}
	})

	t.Run("unknown preset with explicit workers passes", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Pipeline.Preset = "ludicrous"
		cfg.Pipeline.Workers = 3
		if err := cfg.Validate(); err != nil {
			t.Errorf("explicit workers should bypass preset check: %v", err)
		}
	})

	t.Run("temperature out of range", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Pipeline.Temperature = 3.5
		if err := cfg.Validate(); err == nil {
			t.Error("expected error for temperature > 2")
		}
	})
}

func TestConfig_ToPipelineConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.Preset = "turbo"
	cfg.Pipeline.Conservative = true

	pc := cfg.ToPipelineConfig()
	if pc.Workers != 6 {
		t.Errorf("Workers = %d, want 6", pc.Workers)
	}
	if !pc.Conservative {
		t.Error("Conservative flag lost in conversion")
	}
	if !pc.UseContinuity || !pc.UseFlags {
		t.Error("default stage toggles should be on")
	}
}

func TestConfig_ToOllamaConfig(t *testing.T) {
	cfg := DefaultConfig()
	oc := cfg.ToOllamaConfig()
	if oc.Host != cfg.Ollama.Host || oc.Model != cfg.Ollama.Model {
		t.Errorf("conversion mismatch: %+v", oc)
	}
	if oc.RequestsPerMinute != 60 {
		t.Errorf("RequestsPerMinute = %d, want 60", oc.RequestsPerMinute)
	}
}
