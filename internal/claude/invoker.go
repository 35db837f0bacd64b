// Package claude runs the claude CLI as a read-only directory analyzer.
package claude

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/harrison/codescout/internal/models"
)

// Analyzer performs the research for one task and returns the text to persist.
// The fanout executor depends only on this interface.
type Analyzer interface {
	Analyze(ctx context.Context, task models.ResearchTask) (string, error)
}

// DefaultAllowedTools limits the CLI to reading the tree.
var DefaultAllowedTools = []string{"Read", "Glob", "Grep", "LS"}

// DefaultPermissionMode is the CLI permission mode that forbids edits.
const DefaultPermissionMode = "plan"

// maxDiagnosticLen caps how much process output is copied into error messages.
const maxDiagnosticLen = 500

// Invoker is a reusable client for the claude CLI.
// It follows the http.Client pattern: create once, use many times.
// Thread-safe for concurrent use.
type Invoker struct {
	// ClaudePath is the path to the claude CLI binary.
	// Defaults to "claude" (found in PATH).
	ClaudePath string

	// Model is passed via --model when set.
	Model string

	// PermissionMode is passed via --permission-mode. Defaults to DefaultPermissionMode.
	PermissionMode string

	// AllowedTools is passed via --allowedTools. Defaults to DefaultAllowedTools.
	AllowedTools []string

	// ExtraArgs are appended verbatim after the generated arguments.
	ExtraArgs []string

	// Prompt renders the per-directory prompt. Defaults to the built-in template.
	Prompt *PromptBuilder
}

// NewInvoker creates an Invoker with default settings.
func NewInvoker() *Invoker {
	return &Invoker{
		ClaudePath:     "claude",
		PermissionMode: DefaultPermissionMode,
		AllowedTools:   append([]string(nil), DefaultAllowedTools...),
		Prompt:         MustPromptBuilder(""),
	}
}

// BuildCommandArgs constructs the CLI arguments for analyzing one directory.
func (inv *Invoker) BuildCommandArgs(prompt string) []string {
	args := []string{"-p", prompt}

	mode := inv.PermissionMode
	if mode == "" {
		mode = DefaultPermissionMode
	}
	args = append(args, "--permission-mode", mode)

	tools := inv.AllowedTools
	if len(tools) == 0 {
		tools = DefaultAllowedTools
	}
	args = append(args, "--allowedTools", strings.Join(tools, ","))

	if inv.Model != "" {
		args = append(args, "--model", inv.Model)
	}

	// JSON output for easier parsing
	args = append(args, "--output-format", "json")

	// Disable hooks for automation
	args = append(args, "--settings", `{"disableAllHooks": true}`)

	return append(args, inv.ExtraArgs...)
}

// Analyze runs the CLI inside the task's directory and returns the result text.
// Deadline expiry becomes a Timeout error, parent cancellation a Cancelled error,
// everything else an ExternalProcessFailure.
func (inv *Invoker) Analyze(ctx context.Context, task models.ResearchTask) (string, error) {
	pb := inv.Prompt
	if pb == nil {
		pb = MustPromptBuilder("")
	}
	prompt, err := pb.Build(task)
	if err != nil {
		return "", models.NewProcessError(task.Directory, "cannot render prompt", err)
	}

	claudePath := inv.ClaudePath
	if claudePath == "" {
		claudePath = "claude"
	}

	cmd := exec.CommandContext(ctx, claudePath, inv.BuildCommandArgs(prompt)...)
	cmd.Dir = task.AbsPath
	SetCleanEnv(cmd)
	// Give the CLI a moment to exit on its own after the context is done.
	cmd.WaitDelay = 5 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return "", models.NewTimeoutError(task.Directory, "analyzer exceeded its deadline and was terminated", ctxErr)
		}
		return "", models.NewCancelledError(task.Directory, "analyzer interrupted", ctxErr)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return "", models.NewProcessError(task.Directory,
				fmt.Sprintf("claude exited with code %d (output: %s)", exitErr.ExitCode(), diagnostic(stderr.Bytes(), stdout.Bytes())),
				runErr)
		}
		return "", models.NewProcessError(task.Directory, "claude could not be started", runErr)
	}

	resp, err := ParseResponse(stdout.Bytes())
	if err != nil {
		return "", models.NewProcessError(task.Directory, "unparsable claude output", err)
	}
	if resp.IsError {
		return "", models.NewProcessError(task.Directory, "claude reported an error: "+truncate(resp.Content, maxDiagnosticLen), nil)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", models.NewProcessError(task.Directory, "empty response from claude", nil)
	}

	return resp.Content, nil
}

// diagnostic picks the most useful process output for an error message.
func diagnostic(stderr, stdout []byte) string {
	out := strings.TrimSpace(string(stderr))
	if out == "" {
		out = strings.TrimSpace(string(stdout))
	}
	if out == "" {
		return "<none>"
	}
	return truncate(out, maxDiagnosticLen)
}

// truncate returns s truncated to maxLen characters with "..." suffix if needed.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
