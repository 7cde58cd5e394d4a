package config

import (
	"errors"
	"os"
	"testing"
	"time"
)

// unsetEnv clears keys for the duration of the test.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		if prev, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetEnv(t,
		"LOG_LEVEL", "LOG_FORMAT", "WORD_COUNT", "BATCH_SIZE", "LANGUAGE",
		"INPUT_DIR", "OUTPUT_DIR", "EMBEDDING_MODEL", "EMBEDDING_TIMEOUT",
		"RETRY_MODE", "RETRY_MAX_ATTEMPTS", "RETRY_BASE_DELAY", "RETRY_MAX_DELAY",
		"STORE_PROVIDER", "STORE_TABLE", "NOTIFY_PROVIDER", "SERVE_ADDR",
	)

	cfg := Load()

	tests := []struct {
		name     string
		got      interface{}
		expected interface{}
	}{
		{"LogLevel", cfg.LogLevel, "info"},
		{"LogFormat", cfg.LogFormat, "json"},
		{"WordCount", cfg.WordCount, 30},
		{"BatchSize", cfg.BatchSize, 1000},
		{"Language", cfg.Language, "english"},
		{"InputDir", cfg.InputDir, "input"},
		{"OutputDir", cfg.OutputDir, "output"},
		{"EmbeddingModel", cfg.EmbeddingModel, "text-embedding-ada-002"},
		{"EmbeddingTimeout", cfg.EmbeddingTimeout, 30 * time.Second},
		{"RetryMode", cfg.RetryMode, "retry"},
		{"RetryMaxAttempts", cfg.RetryMaxAttempts, 3},
		{"RetryBaseDelay", cfg.RetryBaseDelay, 500 * time.Millisecond},
		{"RetryMaxDelay", cfg.RetryMaxDelay, 5 * time.Second},
		{"StoreProvider", cfg.StoreProvider, "none"},
		{"StoreTable", cfg.StoreTable, "word_embeddings"},
		{"NotifyProvider", cfg.NotifyProvider, "none"},
		{"ServeAddr", cfg.ServeAddr, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("expected %s=%v, got %v", tt.name, tt.expected, tt.got)
			}
		})
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WORD_COUNT", "3")
	t.Setenv("BATCH_SIZE", "2")
	t.Setenv("RETRY_MODE", "oneshot")
	t.Setenv("EMBEDDING_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := Load()

	if cfg.WordCount != 3 {
		t.Errorf("expected word count 3, got %d", cfg.WordCount)
	}
	if cfg.BatchSize != 2 {
		t.Errorf("expected batch size 2, got %d", cfg.BatchSize)
	}
	if !cfg.OneShot() {
		t.Errorf("expected oneshot retry mode, got %s", cfg.RetryMode)
	}
	if cfg.EmbeddingTimeout != 5*time.Second {
		t.Errorf("expected timeout 5s, got %v", cfg.EmbeddingTimeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			LogFormat:        "json",
			WordCount:        30,
			BatchSize:        1000,
			Language:         "english",
			InputDir:         "input",
			OutputDir:        "output",
			RetryMode:        RetryModeRetry,
			RetryMaxAttempts: 3,
			StoreProvider:    "none",
			NotifyProvider:   "none",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, true},
		{"batch size above api limit", func(c *Config) { c.BatchSize = 5000 }, true},
		{"zero word count", func(c *Config) { c.WordCount = 0 }, true},
		{"unknown retry mode", func(c *Config) { c.RetryMode = "forever" }, true},
		{"unknown store provider", func(c *Config) { c.StoreProvider = "redis" }, true},
		{"missing input dir", func(c *Config) { c.InputDir = "" }, true},
		{"text logs", func(c *Config) { c.LogFormat = "text" }, false},
		{"input dir is working dir", func(c *Config) { c.InputDir = "." }, true},
		{"input dir is root", func(c *Config) { c.InputDir = "/" }, true},
		{"input dir equals output dir", func(c *Config) { c.InputDir = "data"; c.OutputDir = "./data/" }, true},
		{"input dir contains output dir", func(c *Config) { c.InputDir = "data"; c.OutputDir = "data/out" }, true},
		{"input dir above working dir", func(c *Config) { c.InputDir = ".." }, true},
		{"nested input dir", func(c *Config) { c.InputDir = "data/input"; c.OutputDir = "data/output" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUnsafeInputDir(t *testing.T) {
	cfg := Config{
		LogFormat:        "json",
		WordCount:        1,
		BatchSize:        1,
		Language:         "english",
		InputDir:         "out",
		OutputDir:        "out",
		RetryMode:        RetryModeOneShot,
		RetryMaxAttempts: 1,
		StoreProvider:    "none",
		NotifyProvider:   "none",
	}

	err := cfg.Validate()
	if !errors.Is(err, ErrUnsafeInputDir) {
		t.Fatalf("expected ErrUnsafeInputDir, got %v", err)
	}
}
