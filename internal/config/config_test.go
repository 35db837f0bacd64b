package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/harrison/codescout/internal/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int { return &i }
func boolPtr(b bool) *bool { return &b }
func durPtr(d time.Duration) *time.Duration { return &d }
func slicePtr(s ...string) *[]string { return &s }

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OutputDir != filepath.Join("docs", "research") {
		t.Errorf("OutputDir = %q, want docs/research", cfg.OutputDir)
	}
	if cfg.Format != "markdown" {
		t.Errorf("Format = %q, want markdown", cfg.Format)
	}
	if cfg.Depth != 1 {
		t.Errorf("Depth = %d, want 1", cfg.Depth)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.TaskTimeout != 10*time.Minute {
		t.Errorf("TaskTimeout = %v, want 10m", cfg.TaskTimeout)
	}
	if cfg.LogDir != filepath.Join(".codescout", "logs") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Claude.Path != "claude" || cfg.Claude.PermissionMode != "plan" {
		t.Errorf("unexpected claude defaults %+v", cfg.Claude)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `output_dir: notes/research
format: json
dirs: [api, web]
depth: 2
max_concurrency: 8
timeout: 90s
dry_run: true
log_level: debug
log_dir: /tmp/codescout-logs
exclude: ["*.generated"]
claude:
  path: /opt/claude
  model: sonnet
  allowed_tools: [Read, Grep]
  prompt_template: "Study {{.Directory}}"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.OutputDir != "notes/research" || cfg.Format != "json" || cfg.Depth != 2 {
		t.Errorf("unexpected basic fields: %+v", cfg)
	}
	if len(cfg.Dirs) != 2 || cfg.Dirs[0] != "api" {
		t.Errorf("Dirs = %v", cfg.Dirs)
	}
	if cfg.MaxConcurrency != 8 || cfg.TaskTimeout != 90*time.Second || !cfg.DryRun {
		t.Errorf("unexpected execution fields: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogDir != "/tmp/codescout-logs" {
		t.Errorf("unexpected logging fields: %+v", cfg)
	}
	if len(cfg.Exclude) != 1 || cfg.Exclude[0] != "*.generated" {
		t.Errorf("Exclude = %v", cfg.Exclude)
	}
	if cfg.Claude.Path != "/opt/claude" || cfg.Claude.Model != "sonnet" || len(cfg.Claude.AllowedTools) != 2 {
		t.Errorf("unexpected claude fields: %+v", cfg.Claude)
	}
	// unspecified values keep their defaults
	if cfg.Claude.PermissionMode != "plan" {
		t.Errorf("PermissionMode = %q, want plan", cfg.Claude.PermissionMode)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Depth != 1 || cfg.Format != "markdown" {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  string
	}{
		{"malformed yaml", "depth: [1, 2\n", "config"},
		{"bad timeout", "timeout: soon\n", "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if !models.IsConfigError(err) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			var re *models.ResearchError
			if e, ok := err.(*models.ResearchError); ok {
				re = e
			}
			if re == nil || re.Target != tt.target {
				t.Errorf("expected target %q, got %v", tt.target, err)
			}
		})
	}
}

func TestLoadConfigFromDir(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".codescout"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, ".codescout", "config.yaml"), []byte("depth: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFromDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Depth != 2 || cfg.Root != root {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Exclude = []string{"from-file"}

	cfg.MergeWithFlags(Flags{
		Root:           strPtr("/proj"),
		OutputDir:      strPtr("out"),
		Format:         strPtr("json"),
		Dirs:           slicePtr("api", "missing_dir"),
		Depth:          intPtr(2),
		MaxConcurrency: intPtr(2),
		TaskTimeout:    durPtr(time.Minute),
		DryRun:         boolPtr(true),
		Verbose:        boolPtr(true),
		LogDir:         strPtr("logs"),
		ClaudePath:     strPtr("/bin/fake-claude"),
		Exclude:        slicePtr("from-flag"),
	})

	if cfg.Root != "/proj" || cfg.OutputDir != "out" || cfg.Format != "json" {
		t.Errorf("path flags not applied: %+v", cfg)
	}
	if len(cfg.Dirs) != 2 || cfg.Dirs[1] != "missing_dir" {
		t.Errorf("Dirs = %v", cfg.Dirs)
	}
	if cfg.Depth != 2 || cfg.MaxConcurrency != 2 || cfg.TaskTimeout != time.Minute || !cfg.DryRun {
		t.Errorf("execution flags not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogDir != "logs" || cfg.Claude.Path != "/bin/fake-claude" {
		t.Errorf("logging/claude flags not applied: %+v", cfg)
	}
	if len(cfg.Exclude) != 2 || cfg.Exclude[0] != "from-file" || cfg.Exclude[1] != "from-flag" {
		t.Errorf("Exclude = %v, want file patterns then flag patterns", cfg.Exclude)
	}
}

func TestMergeWithFlagsNilKeepsValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Depth = 2
	cfg.MergeWithFlags(Flags{Verbose: boolPtr(false)})

	if cfg.Depth != 2 || cfg.LogLevel != "info" {
		t.Errorf("nil flags must not override: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		target string
	}{
		{"bad format", func(c *Config) { c.Format = "yaml" }, "format"},
		{"depth zero", func(c *Config) { c.Depth = 0 }, "depth"},
		{"depth three", func(c *Config) { c.Depth = 3 }, "depth"},
		{"no concurrency", func(c *Config) { c.MaxConcurrency = 0 }, "max_concurrency"},
		{"negative timeout", func(c *Config) { c.TaskTimeout = -time.Second }, "timeout"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"empty output", func(c *Config) { c.OutputDir = " " }, "output"},
		{"empty claude", func(c *Config) { c.Claude.Path = "" }, "claude.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			re, ok := err.(*models.ResearchError)
			if !ok {
				t.Fatalf("expected *ResearchError, got %T %v", err, err)
			}
			if re.Kind != models.KindConfig || re.Target != tt.target {
				t.Errorf("got kind %s target %q, want config %q", re.Kind, re.Target, tt.target)
			}
		})
	}

	t.Run("zero timeout allowed", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.TaskTimeout = 0
		cfg.Format = "JSON"
		if err := cfg.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestResolve(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultConfig()
	cfg.Root = root
	cfg.LogDir = "/abs/logs"

	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}
	if cfg.OutputDir != filepath.Join(root, "docs", "research") {
		t.Errorf("OutputDir = %q", cfg.OutputDir)
	}
	if cfg.LogDir != "/abs/logs" {
		t.Errorf("absolute LogDir changed: %q", cfg.LogDir)
	}
	if !filepath.IsAbs(cfg.Root) {
		t.Errorf("Root not absolute: %q", cfg.Root)
	}
	if cfg.StateDir() != filepath.Join(cfg.Root, ".codescout") {
		t.Errorf("StateDir = %q", cfg.StateDir())
	}
}

func TestFindProjectRoot(t *testing.T) {
	base := t.TempDir()
	project := filepath.Join(base, "project")
	nested := filepath.Join(project, "src", "api")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("git marker", func(t *testing.T) {
		if err := os.MkdirAll(filepath.Join(project, ".git"), 0755); err != nil {
			t.Fatal(err)
		}
		got, err := FindProjectRoot(nested)
		if err != nil {
			t.Fatal(err)
		}
		if got != project {
			t.Errorf("FindProjectRoot = %q, want %q", got, project)
		}
	})

	t.Run("settings dir wins over git", func(t *testing.T) {
		if err := os.MkdirAll(filepath.Join(project, "src", ".codescout"), 0755); err != nil {
			t.Fatal(err)
		}
		got, err := FindProjectRoot(nested)
		if err != nil {
			t.Fatal(err)
		}
		if got != filepath.Join(project, "src") {
			t.Errorf("FindProjectRoot = %q, want %q", got, filepath.Join(project, "src"))
		}
	})
}
