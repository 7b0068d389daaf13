package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/LayCut/internal/model"
	"go.uber.org/zap/zapcore"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Server.Addr = "127.0.0.1:8080"
	cfg.Server.ReadTimeout = 5 * time.Second
	cfg.Optimizer.Priority = model.PriorityMinCuts
	cfg.CORS.AllowOrigins = []string{"https://cutroom.example.com"}
	cfg.Export.Dir = "/var/lib/laycut"

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("expected addr 127.0.0.1:8080, got %s", loaded.Server.Addr)
	}
	if loaded.Server.ReadTimeout != 5*time.Second {
		t.Errorf("expected read timeout 5s, got %s", loaded.Server.ReadTimeout)
	}
	if loaded.Optimizer.Priority != model.PriorityMinCuts {
		t.Errorf("expected priority min-cuts, got %s", loaded.Optimizer.Priority)
	}
	if len(loaded.CORS.AllowOrigins) != 1 || loaded.CORS.AllowOrigins[0] != "https://cutroom.example.com" {
		t.Errorf("unexpected origins: %v", loaded.CORS.AllowOrigins)
	}
	if loaded.Export.Dir != "/var/lib/laycut" {
		t.Errorf("expected export dir /var/lib/laycut, got %s", loaded.Export.Dir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	defaults := Default()
	if cfg.Server.Addr != defaults.Server.Addr {
		t.Errorf("expected default addr %s, got %s", defaults.Server.Addr, cfg.Server.Addr)
	}
	if cfg.Optimizer.Priority != model.PriorityMinWaste {
		t.Errorf("expected priority min-waste, got %s", cfg.Optimizer.Priority)
	}
	if cfg.Server.WriteTimeout != defaults.Server.WriteTimeout {
		t.Errorf("expected default write timeout, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.MaxBodyBytes != defaults.Server.MaxBodyBytes {
		t.Errorf("expected default body limit, got %d", cfg.Server.MaxBodyBytes)
	}
	if cfg.Optimizer.MaxTotalQuantity != defaults.Optimizer.MaxTotalQuantity {
		t.Errorf("expected default quantity cap, got %d", cfg.Optimizer.MaxTotalQuantity)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected log level info, got %s", cfg.Log.Level)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "optimizer:\n  priority: min-cuts\nserver:\n  writeTimeout: 2m\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Optimizer.Priority != model.PriorityMinCuts {
		t.Errorf("expected min-cuts, got %s", cfg.Optimizer.Priority)
	}
	if cfg.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("expected 2m write timeout, got %s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("LAYCUT_SERVER_ADDR", ":9999")
	t.Setenv("LAYCUT_OPTIMIZER_PRIORITY", "min-cuts")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":9999" {
		t.Errorf("expected env addr :9999, got %s", cfg.Server.Addr)
	}
	if cfg.Optimizer.Priority != model.PriorityMinCuts {
		t.Errorf("expected env priority min-cuts, got %s", cfg.Optimizer.Priority)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not: valid"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
}

func TestLoadRejectsUnknownPriority(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("optimizer:\n  priority: fastest\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown priority, got nil")
	}
}

func TestSaveCreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "dir", "config.yaml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"zero timeout", func(c *Config) { c.Server.ReadTimeout = 0 }},
		{"zero upload", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad priority", func(c *Config) { c.Optimizer.Priority = "cheap" }},
		{"zero body limit", func(c *Config) { c.Server.MaxBodyBytes = 0 }},
		{"negative quantity cap", func(c *Config) { c.Optimizer.MaxTotalQuantity = -1 }},
	}
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := Default()
	cfg.Optimizer.Priority = model.PriorityMinCuts
	cfg.Optimizer.MaxTotalQuantity = 5000

	s := cfg.ApplyToSettings(model.DefaultSettings())
	if s.Priority != model.PriorityMinCuts {
		t.Errorf("expected min-cuts, got %s", s.Priority)
	}
	if s.MaxTotalQuantity != 5000 {
		t.Errorf("expected quantity cap 5000, got %d", s.MaxTotalQuantity)
	}
}

func TestZapConfig(t *testing.T) {
	cfg := Default()
	zc, err := cfg.ZapConfig(false)
	if err != nil {
		t.Fatal(err)
	}
	if zc.Level.Level() != zapcore.InfoLevel {
		t.Errorf("expected info level, got %s", zc.Level.Level())
	}

	zc, err = cfg.ZapConfig(true)
	if err != nil {
		t.Fatal(err)
	}
	if zc.Level.Level() != zapcore.DebugLevel {
		t.Errorf("verbose should force debug, got %s", zc.Level.Level())
	}
}

func TestExportPath(t *testing.T) {
	cfg := Default()
	if got := cfg.ExportPath("plan.pdf"); got != "plan.pdf" {
		t.Errorf("without dir expected plan.pdf, got %s", got)
	}
	cfg.Export.Dir = "/out"
	if got := cfg.ExportPath("plan.pdf"); got != filepath.Join("/out", "plan.pdf") {
		t.Errorf("expected /out/plan.pdf, got %s", got)
	}
	if got := cfg.ExportPath("/abs/plan.pdf"); got != "/abs/plan.pdf" {
		t.Errorf("absolute path should be kept, got %s", got)
	}
	if got := cfg.ExportPath(""); got != "" {
		t.Errorf("empty name should stay empty, got %s", got)
	}
}
