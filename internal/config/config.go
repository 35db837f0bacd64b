// Package config loads codescout settings from .codescout/config.yaml and
// merges command-line flags over them. The resulting Config is built once at
// startup and passed explicitly through the pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/codescout/internal/claude"
	"github.com/harrison/codescout/internal/executor"
	"github.com/harrison/codescout/internal/models"
)

// DirName is the per-project settings directory.
const DirName = ".codescout"

// ClaudeConfig configures the analyzer subprocess.
type ClaudeConfig struct {
	// Path is the claude CLI binary, looked up in PATH when not absolute
	Path string `yaml:"path"`

	// Model is passed via --model when set
	Model string `yaml:"model"`

	// AllowedTools restricts the tools the analyzer may use
	AllowedTools []string `yaml:"allowed_tools"`

	// PermissionMode must keep the analyzer read-only
	PermissionMode string `yaml:"permission_mode"`

	// PromptTemplate overrides the built-in per-directory prompt (text/template)
	PromptTemplate string `yaml:"prompt_template"`
}

// Config represents codescout configuration options
type Config struct {
	// Root is the project root to research. Never read from the file.
	Root string `yaml:"-"`

	// OutputDir is where artifacts are written; relative paths are under Root
	OutputDir string `yaml:"output_dir"`

	// Format is the artifact format: markdown or json
	Format string `yaml:"format"`

	// Dirs overrides scanning with an explicit directory list
	Dirs []string `yaml:"dirs"`

	// Depth is how many levels below Root the scanner descends (1 or 2)
	Depth int `yaml:"depth"`

	// MaxConcurrency bounds concurrent analyzer processes
	MaxConcurrency int `yaml:"max_concurrency"`

	// TaskTimeout bounds each analyzer invocation (0 = no timeout)
	TaskTimeout time.Duration `yaml:"timeout"`

	// DryRun prints the plan without invoking the analyzer or writing files
	DryRun bool `yaml:"dry_run"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where run logs are written; relative paths are under Root
	LogDir string `yaml:"log_dir"`

	// Exclude adds directory-name glob patterns to the built-in exclusions
	Exclude []string `yaml:"exclude"`

	// Claude configures the analyzer subprocess
	Claude ClaudeConfig `yaml:"claude"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Root:           ".",
		OutputDir:      filepath.Join("docs", "research"),
		Format:         string(models.FormatMarkdown),
		Depth:          1,
		MaxConcurrency: executor.DefaultMaxConcurrency,
		TaskTimeout:    executor.DefaultTaskTimeout,
		LogLevel:       "info",
		LogDir:         filepath.Join(DirName, "logs"),
		Claude: ClaudeConfig{
			Path:           "claude",
			AllowedTools:   append([]string(nil), claude.DefaultAllowedTools...),
			PermissionMode: claude.DefaultPermissionMode,
		},
	}
}

// LoadConfig loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration without error.
// If the file exists but is malformed, returns a ConfigError.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, models.NewConfigError("config", "failed to read config file "+path, err)
	}

	// Use a temporary struct to handle duration parsing
	type yamlConfig struct {
		OutputDir      string       `yaml:"output_dir"`
		Format         string       `yaml:"format"`
		Dirs           []string     `yaml:"dirs"`
		Depth          int          `yaml:"depth"`
		MaxConcurrency int          `yaml:"max_concurrency"`
		Timeout        string       `yaml:"timeout"`
		DryRun         bool         `yaml:"dry_run"`
		LogLevel       string       `yaml:"log_level"`
		LogDir         string       `yaml:"log_dir"`
		Exclude        []string     `yaml:"exclude"`
		Claude         ClaudeConfig `yaml:"claude"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, models.NewConfigError("config", "failed to parse config file "+path, err)
	}

	// Apply non-zero values from file (merging with defaults)
	if yamlCfg.OutputDir != "" {
		cfg.OutputDir = yamlCfg.OutputDir
	}
	if yamlCfg.Format != "" {
		cfg.Format = yamlCfg.Format
	}
	if len(yamlCfg.Dirs) > 0 {
		cfg.Dirs = yamlCfg.Dirs
	}
	if yamlCfg.Depth != 0 {
		cfg.Depth = yamlCfg.Depth
	}
	if yamlCfg.MaxConcurrency != 0 {
		cfg.MaxConcurrency = yamlCfg.MaxConcurrency
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, models.NewConfigError("timeout", fmt.Sprintf("invalid timeout format %q", yamlCfg.Timeout), err)
		}
		cfg.TaskTimeout = timeout
	}
	if yamlCfg.DryRun {
		cfg.DryRun = true
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.LogDir != "" {
		cfg.LogDir = yamlCfg.LogDir
	}
	cfg.Exclude = yamlCfg.Exclude

	c := yamlCfg.Claude
	if c.Path != "" {
		cfg.Claude.Path = c.Path
	}
	if c.Model != "" {
		cfg.Claude.Model = c.Model
	}
	if len(c.AllowedTools) > 0 {
		cfg.Claude.AllowedTools = c.AllowedTools
	}
	if c.PermissionMode != "" {
		cfg.Claude.PermissionMode = c.PermissionMode
	}
	if c.PromptTemplate != "" {
		cfg.Claude.PromptTemplate = c.PromptTemplate
	}

	return cfg, nil
}

// LoadConfigFromDir loads configuration from .codescout/config.yaml in the specified directory.
// If the directory or file doesn't exist, returns default configuration without error.
func LoadConfigFromDir(dir string) (*Config, error) {
	cfg, err := LoadConfig(filepath.Join(dir, DirName, "config.yaml"))
	if err != nil {
		return nil, err
	}
	cfg.Root = dir
	return cfg, nil
}

// Flags holds command-line overrides. A nil field means the flag was not given.
type Flags struct {
	Root           *string
	OutputDir      *string
	Format         *string
	Dirs           *[]string
	Depth          *int
	MaxConcurrency *int
	TaskTimeout    *time.Duration
	DryRun         *bool
	Verbose        *bool
	LogDir         *string
	ClaudePath     *string
	Exclude        *[]string
}

// MergeWithFlags merges CLI flags into the configuration.
// Non-nil flag values override configuration values, except Exclude, whose
// patterns are appended to the file's. Verbose raises the log level to debug.
func (c *Config) MergeWithFlags(f Flags) {
	if f.Root != nil {
		c.Root = *f.Root
	}
	if f.OutputDir != nil {
		c.OutputDir = *f.OutputDir
	}
	if f.Format != nil {
		c.Format = *f.Format
	}
	if f.Dirs != nil {
		c.Dirs = *f.Dirs
	}
	if f.Depth != nil {
		c.Depth = *f.Depth
	}
	if f.MaxConcurrency != nil {
		c.MaxConcurrency = *f.MaxConcurrency
	}
	if f.TaskTimeout != nil {
		c.TaskTimeout = *f.TaskTimeout
	}
	if f.DryRun != nil {
		c.DryRun = *f.DryRun
	}
	if f.Verbose != nil && *f.Verbose {
		c.LogLevel = "debug"
	}
	if f.LogDir != nil {
		c.LogDir = *f.LogDir
	}
	if f.ClaudePath != nil {
		c.Claude.Path = *f.ClaudePath
	}
	if f.Exclude != nil {
		c.Exclude = append(c.Exclude, *f.Exclude...)
	}
}

// Validate validates the configuration values.
// Every failure is a ConfigError naming the offending setting.
func (c *Config) Validate() error {
	if _, err := models.ParseFormat(c.Format); err != nil {
		return err
	}

	if c.Depth < 1 || c.Depth > 2 {
		return models.NewConfigError("depth", fmt.Sprintf("depth must be 1 or 2, got %d", c.Depth), nil)
	}

	if c.MaxConcurrency < 1 {
		return models.NewConfigError("max_concurrency", fmt.Sprintf("max_concurrency must be >= 1, got %d", c.MaxConcurrency), nil)
	}

	// Timeout can be 0 (no timeout) or positive, negative is invalid
	if c.TaskTimeout < 0 {
		return models.NewConfigError("timeout", fmt.Sprintf("timeout must be >= 0, got %v", c.TaskTimeout), nil)
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return models.NewConfigError("log_level", fmt.Sprintf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel), nil)
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return models.NewConfigError("output", "output directory cannot be empty", nil)
	}

	if strings.TrimSpace(c.Claude.Path) == "" {
		return models.NewConfigError("claude.path", "claude path cannot be empty", nil)
	}

	return nil
}

// Resolve makes Root absolute and anchors relative OutputDir and LogDir under it.
func (c *Config) Resolve() error {
	root := c.Root
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return models.NewConfigError("root", "cannot resolve project root "+root, err)
	}
	c.Root = filepath.Clean(abs)

	if c.OutputDir != "" && !filepath.IsAbs(c.OutputDir) {
		c.OutputDir = filepath.Join(c.Root, c.OutputDir)
	}
	if c.LogDir != "" && !filepath.IsAbs(c.LogDir) {
		c.LogDir = filepath.Join(c.Root, c.LogDir)
	}
	return nil
}

// StateDir returns the project's .codescout directory, which holds run locks
// and, by default, run logs.
func (c *Config) StateDir() string {
	return filepath.Join(c.Root, DirName)
}
