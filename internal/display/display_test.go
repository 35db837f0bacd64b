package display

import (
	"bytes"
	"strings"
	"testing"

	"github.com/harrison/codescout/internal/models"
)

func tasks() []models.ResearchTask {
	return []models.ResearchTask{
		{Index: 0, Directory: "lib", OutputPath: "/proj/docs/research/lib.md"},
		{Index: 1, Directory: "src/api", OutputPath: "/proj/docs/research/src-api.md"},
	}
}

func TestShowPlanPlain(t *testing.T) {
	var buf bytes.Buffer
	ShowPlan(&buf, "/proj/docs/research", tasks(), true, false)

	want := "Planned research tasks (2):\n" +
		"  [1/2] lib -> research/lib.md\n" +
		"  [2/2] src/api -> research/src-api.md\n" +
		"✓ 2 directories planned (dry run: no analyzer invoked, nothing written)\n"
	if buf.String() != want {
		t.Errorf("unexpected listing:\n%s\nwant:\n%s", buf.String(), want)
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Error("plain listing must not contain ANSI codes")
	}
}

func TestShowPlanColorAndNonDryRun(t *testing.T) {
	var buf bytes.Buffer
	ShowPlan(&buf, "", tasks()[:1], false, true)

	out := buf.String()
	if !strings.Contains(out, "\x1b[36m  [1/1] lib -> /proj/docs/research/lib.md\x1b[0m") {
		t.Errorf("expected cyan step with absolute path, got %q", out)
	}
	if !strings.Contains(out, "\x1b[32m✓\x1b[0m 1 directories planned\n") {
		t.Errorf("expected green completion line, got %q", out)
	}
}

func TestShowPlanEmpty(t *testing.T) {
	var buf bytes.Buffer
	ShowPlan(&buf, "/out", nil, true, false)
	if !strings.HasPrefix(buf.String(), "Planned research tasks (0):\n✓ 0 directories planned") {
		t.Errorf("unexpected empty listing %q", buf.String())
	}
}

func TestWarningDisplay(t *testing.T) {
	tests := []struct {
		name     string
		warning  Warning
		contains []string
		absent   []string
	}{
		{
			name:     "title only",
			warning:  Warning{Title: "Output root locked"},
			contains: []string{"⚠️  Warning: Output root locked\n"},
			absent:   []string{"\x1b[33m", "Affected", "Suggestion"},
		},
		{
			name:     "single item",
			warning:  Warning{Title: "t", Items: []string{"api"}},
			contains: []string{"    Affected directory:\n", "      1. api\n"},
		},
		{
			name:     "plural items with suggestion and color",
			warning:  Warning{Title: "t", Message: "m", Items: []string{"a", "b"}, Suggestion: "fix it", Color: true},
			contains: []string{"\x1b[33m", "    m\n", "Affected directories:", "      2. b\n", "    Suggestion:\n    fix it\n", "\x1b[0m"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.warning.Display(&buf)
			out := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("expected %q in %q", want, out)
				}
			}
			for _, no := range tt.absent {
				if strings.Contains(out, no) {
					t.Errorf("did not expect %q in %q", no, out)
				}
			}
		})
	}
}

func TestWarnMissingDirectories(t *testing.T) {
	w := WarnMissingDirectories([]*models.ResearchError{
		models.NewNotFoundError("missing_dir", "directory does not exist", nil),
		nil,
	})
	if len(w.Items) != 1 || w.Items[0] != "missing_dir (directory does not exist)" {
		t.Errorf("unexpected items %v", w.Items)
	}
	if w.Suggestion == "" {
		t.Error("expected a suggestion")
	}
}

func TestWarnDuplicateDirectories(t *testing.T) {
	w := WarnDuplicateDirectories([]string{"api"})
	var buf bytes.Buffer
	w.Display(&buf)
	if !strings.Contains(buf.String(), "Duplicate directories ignored") || !strings.Contains(buf.String(), "1. api") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
