package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/codescout/internal/config"
	"github.com/harrison/codescout/internal/logger"
	"github.com/harrison/codescout/internal/models"
	"github.com/harrison/codescout/internal/scanner"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for codescout
func NewRootCommand() *cobra.Command {
	return newRootCommand(Deps{})
}

// newRootCommand builds the command around deps; tests inject a fake analyzer.
func newRootCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codescout",
		Short: "Parallel, read-only research of a codebase's directories",
		Long: `codescout scans a project for the directories worth researching, skips
dependency, build, version-control and cache directories, and runs one
read-only claude analysis per directory in parallel. Each analysis is
written as its own artifact, and a summary lists every directory with its
status.

Configuration is read from <root>/.codescout/config.yaml; flags override it.

Exit codes:
  0    every directory was researched, or --dry-run completed
  1    at least one directory failed, timed out, was not found or not written
  2    configuration error; nothing ran
  3    the run summary could not be written
  130  interrupted; the partial summary was written`,
		Version: Version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return models.NewConfigError("args", fmt.Sprintf("unexpected argument %q; use --dirs to name directories", args[0]), nil)
			}
			return nil
		},
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResearchCommand(cmd, deps)
		},
	}

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return models.NewConfigError("flags", err.Error(), err)
	})

	cmd.Flags().String("dirs", "", "Comma-separated directories to research instead of scanning (e.g. api,web)")
	cmd.Flags().StringP("output", "o", "", "Directory artifacts are written under (default: docs/research)")
	cmd.Flags().Bool("dry-run", false, "List the planned tasks without invoking the analyzer or writing files")
	cmd.Flags().String("format", "", "Artifact format: markdown or json (default: markdown)")
	cmd.Flags().String("root", "", "Project root (default: nearest ancestor with .codescout or .git)")
	cmd.Flags().Int("depth", 0, "Scan depth below the root: 1 or 2 (default: 1)")
	cmd.Flags().Int("max-concurrency", 0, "Maximum concurrent analyses (default: 4)")
	cmd.Flags().Duration("timeout", 0, "Per-directory analysis timeout, e.g. 5m (default: 10m, 0 disables)")
	cmd.Flags().String("config", "", "Path to config file (default: <root>/.codescout/config.yaml)")
	cmd.Flags().BoolP("verbose", "v", false, "Show debug output")
	cmd.Flags().String("log-dir", "", "Directory for run logs (default: <root>/.codescout/logs)")
	cmd.Flags().String("claude-path", "", "Path to the claude CLI (default: claude from PATH)")
	cmd.Flags().StringSlice("exclude", nil, "Additional directory-name glob to skip while scanning (repeatable)")

	return cmd
}

func runResearchCommand(cmd *cobra.Command, deps Deps) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	console := logger.NewConsoleLogger(out, cfg.LogLevel)

	if deps.Logger == nil {
		loggers := []logger.Logger{console}
		if !cfg.DryRun {
			fileLogger, err := logger.NewFileLogger(cfg.LogDir, cfg.LogLevel)
			if err != nil {
				console.LogWarn(fmt.Sprintf("File logging disabled: %v", err))
			} else {
				defer fileLogger.Close()
				loggers = append(loggers, fileLogger)
			}
		}
		deps.Logger = logger.NewMultiLogger(loggers...)
	}
	if deps.Out == nil {
		deps.Out = out
		deps.Color = logger.IsTerminal(out)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = RunResearch(ctx, cfg, deps)
	return err
}

// loadConfig resolves the project root, reads the config file and applies
// the flags that were explicitly set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Flags()

	root, _ := flags.GetString("root")
	if !flags.Changed("root") {
		detected, err := config.DefaultRoot()
		if err != nil {
			return nil, models.NewConfigError("root", "cannot determine project root", err)
		}
		root = detected
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, models.NewConfigError("root", "cannot access project root "+root, err)
	}
	if !info.IsDir() {
		return nil, models.NewConfigError("root", "project root is not a directory: "+root, nil)
	}

	var cfg *config.Config
	if flags.Changed("config") {
		configPath, _ := flags.GetString("config")
		if _, err := os.Stat(configPath); err != nil {
			return nil, models.NewConfigError("config", "cannot read config file "+configPath, err)
		}
		cfg, err = config.LoadConfig(configPath)
	} else {
		cfg, err = config.LoadConfigFromDir(root)
	}
	if err != nil {
		return nil, err
	}

	// Only explicitly set flags override the file
	f := config.Flags{Root: &root}
	if flags.Changed("dirs") {
		v, _ := flags.GetString("dirs")
		dirs := scanner.ParseDirList(v)
		f.Dirs = &dirs
	}
	if flags.Changed("output") {
		v, _ := flags.GetString("output")
		f.OutputDir = &v
	}
	if flags.Changed("dry-run") {
		v, _ := flags.GetBool("dry-run")
		f.DryRun = &v
	}
	if flags.Changed("format") {
		v, _ := flags.GetString("format")
		f.Format = &v
	}
	if flags.Changed("depth") {
		v, _ := flags.GetInt("depth")
		f.Depth = &v
	}
	if flags.Changed("max-concurrency") {
		v, _ := flags.GetInt("max-concurrency")
		f.MaxConcurrency = &v
	}
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		f.TaskTimeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		f.Verbose = &v
	}
	if flags.Changed("log-dir") {
		v, _ := flags.GetString("log-dir")
		f.LogDir = &v
	}
	if flags.Changed("claude-path") {
		v, _ := flags.GetString("claude-path")
		f.ClaudePath = &v
	}
	if flags.Changed("exclude") {
		v, _ := flags.GetStringSlice("exclude")
		f.Exclude = &v
	}
	cfg.MergeWithFlags(f)

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
