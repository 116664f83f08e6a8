package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageKey != "lead-qualifier-storage" {
		t.Fatalf("unexpected storage key %q", cfg.StorageKey)
	}
	if cfg.RetryAttempts != 3 || cfg.RetryBaseDelay != time.Second || cfg.BatchCooldown != time.Second {
		t.Fatalf("unexpected retry defaults %+v", cfg)
	}
	if cfg.OpenAIModel != "gpt-4o-mini" || cfg.ScoringTemperature != 0.3 || cfg.ScoringMaxTokens != 500 {
		t.Fatalf("unexpected scoring defaults %+v", cfg)
	}
	if !cfg.BatchAbortOnAuth {
		t.Fatalf("expected batch abort on auth by default")
	}
	if cfg.Provider() != "mock" {
		t.Fatalf("expected mock provider without a key, got %q", cfg.Provider())
	}
}

func TestProviderPrefersOpenAIWithKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Provider() != "openai" {
		t.Fatalf("expected openai provider, got %q", cfg.Provider())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("BATCH_COOLDOWN", "250ms")
	t.Setenv("SCORING_PROVIDER", "mock")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageDriver != "memory" || cfg.BatchCooldown != 250*time.Millisecond || cfg.Provider() != "mock" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORAGE_DRIVER", "cassandra")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
