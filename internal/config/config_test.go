package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Backends.Generation.APIKey != "${GROQ_API_KEY}" {
		t.Error("expected generation API key placeholder")
	}
	if cfg.Backends.Citations.APIKey != "${GOOGLE_API_KEY}" {
		t.Error("expected citations API key placeholder")
	}
	if cfg.Pipeline.CitationCount != 15 {
		t.Errorf("expected 15 citations, got %d", cfg.Pipeline.CitationCount)
	}
	if cfg.Pipeline.MaxExtractChars != 1_000_000 {
		t.Errorf("expected 1M char cap, got %d", cfg.Pipeline.MaxExtractChars)
	}
	if cfg.Pipeline.RetryAttempts != 5 {
		t.Errorf("expected 5 retry attempts, got %d", cfg.Pipeline.RetryAttempts)
	}
	if cfg.Pipeline.RetryMinDelay != 4*time.Second || cfg.Pipeline.RetryMaxDelay != 10*time.Second {
		t.Error("unexpected retry delay defaults")
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		os.Setenv("TEST_API_KEY", "secret123")
		defer os.Unsetenv("TEST_API_KEY")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})
}

func TestConfig_ResolveCredentials(t *testing.T) {
	t.Run("both keys present", func(t *testing.T) {
		os.Setenv("TEST_GEN_KEY", "gen-123")
		os.Setenv("TEST_CIT_KEY", "cit-456")
		defer os.Unsetenv("TEST_GEN_KEY")
		defer os.Unsetenv("TEST_CIT_KEY")

		cfg := DefaultConfig()
		cfg.Backends.Generation.APIKey = "${TEST_GEN_KEY}"
		cfg.Backends.Citations.APIKey = "${TEST_CIT_KEY}"

		if err := cfg.ResolveCredentials(); err != nil {
			t.Fatalf("ResolveCredentials failed: %v", err)
		}
		if cfg.Backends.Generation.APIKey != "gen-123" {
			t.Errorf("generation key not resolved: %s", cfg.Backends.Generation.APIKey)
		}
		if cfg.Backends.Citations.APIKey != "cit-456" {
			t.Errorf("citations key not resolved: %s", cfg.Backends.Citations.APIKey)
		}
	})

	t.Run("missing generation key is fatal", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backends.Generation.APIKey = "${DEFINITELY_NOT_SET_12345}"
		cfg.Backends.Citations.APIKey = "literal"

		if err := cfg.ResolveCredentials(); err == nil {
			t.Error("expected error for missing generation key")
		}
	})

	t.Run("missing citations key is fatal", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Backends.Generation.APIKey = "literal"
		cfg.Backends.Citations.APIKey = "${DEFINITELY_NOT_SET_12345}"

		if err := cfg.ResolveCredentials(); err == nil {
			t.Error("expected error for missing citations key")
		}
	})
}

func TestNewManager(t *testing.T) {
	t.Run("loads from config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configFile := filepath.Join(tmpDir, "config.yaml")

		configContent := `
pipeline:
  citation_count: 7
`
		if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		mgr, err := NewManager(configFile)
		if err != nil {
			t.Fatalf("failed to create manager: %v", err)
		}

		cfg := mgr.Get()
		if cfg.Pipeline.CitationCount != 7 {
			t.Errorf("expected 7, got %d", cfg.Pipeline.CitationCount)
		}
		// Unset fields keep their defaults.
		if cfg.Backends.Generation.Model == "" {
			t.Error("expected default generation model")
		}
	})
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	content := string(data)
	for _, want := range []string{"backends:", "pipeline:", "server:", "${GROQ_API_KEY}"} {
		if !strings.Contains(content, want) {
			t.Errorf("default config missing %q:\n%s", want, content)
		}
	}
}

func TestManagerWatchConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	configContent := `
backends:
  generation:
    model: "initial-model"
`
	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	mgr, err := NewManager(configFile)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}

	if got := mgr.Get().Backends.Generation.Model; got != "initial-model" {
		t.Errorf("initial model = %q", got)
	}

	var callbackCount atomic.Int32
	var lastModel atomic.Value

	mgr.OnChange(func(cfg *Config) {
		callbackCount.Add(1)
		lastModel.Store(cfg.Backends.Generation.Model)
	})

	mgr.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)

	newContent := `
backends:
  generation:
    model: "updated-model"
`
	if err := os.WriteFile(configFile, []byte(newContent), 0o644); err != nil {
		t.Fatalf("failed to write updated config file: %v", err)
	}

	// fsnotify delivery is async
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if callbackCount.Load() > 0 {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if callbackCount.Load() == 0 {
		t.Fatal("callback was not invoked after config file change")
	}
	if got := mgr.Get().Backends.Generation.Model; got != "updated-model" {
		t.Errorf("config not updated: model = %q", got)
	}
	if v := lastModel.Load(); v != "updated-model" {
		t.Errorf("callback received wrong model: %v", v)
	}
}
