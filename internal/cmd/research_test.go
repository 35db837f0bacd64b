package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/codescout/internal/config"
	"github.com/harrison/codescout/internal/executor"
	"github.com/harrison/codescout/internal/filelock"
	"github.com/harrison/codescout/internal/logger"
	"github.com/harrison/codescout/internal/models"
)

// fakeAnalyzer stands in for the claude CLI.
type fakeAnalyzer struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, task models.ResearchTask) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, task.Directory)
	f.mu.Unlock()
	if err, ok := f.fail[task.Directory]; ok {
		return "", err
	}
	return "# " + task.Directory + "\n\nThe " + task.Directory + " directory holds code.\n", nil
}

func (f *fakeAnalyzer) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.calls...)
	sort.Strings(out)
	return out
}

// makeProject creates dirs (and a file in each) under a fresh root.
func makeProject(t *testing.T, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range dirs {
		p := filepath.Join(root, filepath.FromSlash(d))
		require.NoError(t, os.MkdirAll(p, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(p, "main.go"), []byte("package x\n"), 0644))
	}
	return root
}

func testConfig(root string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Root = root
	cfg.TaskTimeout = 10 * time.Second
	return cfg
}

func testDeps(a *fakeAnalyzer, out *bytes.Buffer) Deps {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return Deps{
		Analyzer: a,
		Out:      out,
		Now:      func() time.Time { return fixed },
		NewRunID: func() string { return "run-1" },
	}
}

func TestRunResearchDiscoversAndWrites(t *testing.T) {
	root := makeProject(t, "src", "node_modules/pkg", "lib", ".git")
	a := &fakeAnalyzer{}
	var out bytes.Buffer

	outcome, err := RunResearch(context.Background(), testConfig(root), testDeps(a, &out))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCodeFor(err))

	require.Len(t, outcome.Tasks, 2)
	assert.Equal(t, "lib", outcome.Tasks[0].Directory)
	assert.Equal(t, "src", outcome.Tasks[1].Directory)
	assert.Equal(t, []string{"lib", "src"}, a.called())

	outputRoot := filepath.Join(root, "docs", "research")
	for _, name := range []string{"lib.md", "src.md", "SUMMARY.md"} {
		assert.FileExists(t, filepath.Join(outputRoot, name))
	}
	assert.NoFileExists(t, filepath.Join(outputRoot, "node_modules.md"))

	// the output root holds only artifacts; the run lock lives in the state dir
	entries, err := os.ReadDir(outputRoot)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"lib.md", "src.md", "SUMMARY.md"}, names)
	assert.FileExists(t, filelock.RunLockPath(filepath.Join(root, ".codescout"), outputRoot))

	summary, err := os.ReadFile(filepath.Join(outputRoot, "SUMMARY.md"))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "`lib`")
	assert.Contains(t, string(summary), "The src directory holds code.")

	require.NotNil(t, outcome.Summary)
	assert.Equal(t, 2, outcome.Summary.Counts[models.StatusSucceeded])
	assert.Equal(t, "run-1", outcome.Summary.RunID)
}

func TestRunResearchExplicitDirsWithMissingEntry(t *testing.T) {
	root := makeProject(t, "api", "web")
	a := &fakeAnalyzer{}
	cfg := testConfig(root)
	cfg.Dirs = []string{"api", "missing_dir"}
	var out bytes.Buffer

	outcome, err := RunResearch(context.Background(), cfg, testDeps(a, &out))
	require.Error(t, err)
	assert.Equal(t, ExitTaskFailures, ExitCodeFor(err))
	assert.True(t, executor.IsTaskFailures(err))

	outputRoot := filepath.Join(root, "docs", "research")
	assert.FileExists(t, filepath.Join(outputRoot, "api.md"))
	assert.NoFileExists(t, filepath.Join(outputRoot, "web.md"))
	assert.Equal(t, []string{"api"}, a.called())

	require.NotNil(t, outcome.Summary)
	require.Len(t, outcome.Summary.Entries, 2)
	assert.Equal(t, "api", outcome.Summary.Entries[0].Directory)
	assert.Equal(t, models.StatusSucceeded, outcome.Summary.Entries[0].Status)
	assert.Equal(t, "missing_dir", outcome.Summary.Entries[1].Directory)
	assert.Equal(t, models.StatusNotFound, outcome.Summary.Entries[1].Status)
	assert.Contains(t, out.String(), "missing_dir")
}

func TestRunResearchDryRunWritesNothing(t *testing.T) {
	root := makeProject(t, "api", "web")
	a := &fakeAnalyzer{}
	cfg := testConfig(root)
	cfg.DryRun = true
	var out bytes.Buffer

	outcome, err := RunResearch(context.Background(), cfg, testDeps(a, &out))
	require.NoError(t, err)
	assert.True(t, outcome.DryRun)
	assert.Nil(t, outcome.Summary)
	assert.Len(t, outcome.Tasks, 2)
	assert.Empty(t, a.called())

	assert.NoDirExists(t, filepath.Join(root, "docs"))
	assert.Contains(t, out.String(), "Planned research tasks (2):")
	assert.Contains(t, out.String(), "api")
	assert.Contains(t, out.String(), "dry run")
}

func TestRunResearchDryRunRejectsFileOutputRoot(t *testing.T) {
	root := makeProject(t, "api")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "research"), []byte("not a dir"), 0644))
	a := &fakeAnalyzer{}
	cfg := testConfig(root)
	cfg.DryRun = true
	var out bytes.Buffer

	_, err := RunResearch(context.Background(), cfg, testDeps(a, &out))
	require.Error(t, err)
	assert.True(t, models.IsConfigError(err))
	assert.Equal(t, ExitConfig, ExitCodeFor(err))
	assert.Empty(t, a.called())
	assert.NotContains(t, out.String(), "Planned research tasks")
}

func TestRunResearchInvalidFormatIsConfigError(t *testing.T) {
	root := makeProject(t, "api")
	a := &fakeAnalyzer{}
	cfg := testConfig(root)
	cfg.Format = "xml"

	_, err := RunResearch(context.Background(), cfg, testDeps(a, &bytes.Buffer{}))
	require.Error(t, err)
	assert.True(t, models.IsConfigError(err))
	assert.Equal(t, ExitConfig, ExitCodeFor(err))
	assert.Empty(t, a.called())
	assert.NoDirExists(t, filepath.Join(root, "docs"))
}

func TestRunResearchFormatsCarrySameEntries(t *testing.T) {
	mdRoot := makeProject(t, "api", "web")
	root := makeProject(t, "api", "web")

	mdOutcome, err := RunResearch(context.Background(), testConfig(mdRoot), testDeps(&fakeAnalyzer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	jsonCfg := testConfig(root)
	jsonCfg.OutputDir = "out-json"
	jsonCfg.Format = "json"
	jsonOutcome, err := RunResearch(context.Background(), jsonCfg, testDeps(&fakeAnalyzer{}, &bytes.Buffer{}))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "out-json", "summary.json"))
	require.NoError(t, err)
	var decoded models.RunSummary
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded.Entries, len(mdOutcome.Summary.Entries))
	for i, e := range decoded.Entries {
		md := mdOutcome.Summary.Entries[i]
		assert.Equal(t, md.Directory, e.Directory)
		assert.Equal(t, md.Status, e.Status)
		assert.Equal(t, md.Synopsis, e.Synopsis)
	}
	assert.Equal(t, "api.json", jsonOutcome.Summary.Entries[0].Artifact)
	assert.FileExists(t, filepath.Join(root, "out-json", "api.json"))
}

func TestRunResearchOneFailureDoesNotStopOthers(t *testing.T) {
	root := makeProject(t, "a", "b", "c")
	a := &fakeAnalyzer{fail: map[string]error{
		"b": models.NewProcessError("b", "claude exited with status 1", errors.New("exit status 1")),
	}}

	outcome, err := RunResearch(context.Background(), testConfig(root), testDeps(a, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Equal(t, ExitTaskFailures, ExitCodeFor(err))
	assert.Equal(t, []string{"a", "b", "c"}, a.called())

	outputRoot := filepath.Join(root, "docs", "research")
	assert.FileExists(t, filepath.Join(outputRoot, "a.md"))
	assert.NoFileExists(t, filepath.Join(outputRoot, "b.md"))
	assert.FileExists(t, filepath.Join(outputRoot, "c.md"))

	assert.Equal(t, models.StatusFailed, outcome.Summary.Entries[1].Status)
	assert.Contains(t, outcome.Summary.Entries[1].Message, "claude exited")
	assert.Equal(t, 2, outcome.Summary.Counts[models.StatusSucceeded])
}

func TestRunResearchCancelledWritesPartialSummary(t *testing.T) {
	root := makeProject(t, "a", "b")
	a := &fakeAnalyzer{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := RunResearch(ctx, testConfig(root), testDeps(a, &bytes.Buffer{}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, ExitInterrupted, ExitCodeFor(err))
	assert.Empty(t, a.called())

	require.NotNil(t, outcome.Summary)
	assert.Equal(t, 2, outcome.Summary.Counts[models.StatusCancelled])
	assert.FileExists(t, filepath.Join(root, "docs", "research", "SUMMARY.md"))
}

func TestRunResearchLockedOutputRoot(t *testing.T) {
	root := makeProject(t, "api")
	outputRoot := filepath.Join(root, "docs", "research")
	require.NoError(t, os.MkdirAll(outputRoot, 0755))

	held, err := filelock.AcquireRunLock(filepath.Join(root, ".codescout"), outputRoot)
	require.NoError(t, err)
	defer held.Unlock()

	a := &fakeAnalyzer{}
	_, err = RunResearch(context.Background(), testConfig(root), testDeps(a, &bytes.Buffer{}))
	require.Error(t, err)
	assert.Equal(t, ExitConfig, ExitCodeFor(err))
	assert.Empty(t, a.called())
}

func TestRunResearchSummaryWriteFailure(t *testing.T) {
	root := makeProject(t, "api")
	outputRoot := filepath.Join(root, "docs", "research")
	// a directory where the summary file should go makes the rename fail
	require.NoError(t, os.MkdirAll(filepath.Join(outputRoot, "SUMMARY.md", "blocker"), 0755))

	var console bytes.Buffer
	deps := testDeps(&fakeAnalyzer{}, &bytes.Buffer{})
	deps.Logger = logger.NewConsoleLogger(&console, "info")

	outcome, err := RunResearch(context.Background(), testConfig(root), deps)
	require.Error(t, err)
	assert.Equal(t, models.KindWrite, models.KindOf(err))
	assert.Equal(t, ExitSummaryWrite, ExitCodeFor(err))
	assert.FileExists(t, filepath.Join(outputRoot, "api.md"))
	require.NotNil(t, outcome.Summary)

	// the terminal report is the only record left
	assert.Contains(t, console.String(), "=== Research Summary ===")
	assert.Contains(t, console.String(), "Succeeded: ")
}

func TestRunResearchSummaryPrintedAtErrorLevel(t *testing.T) {
	root := makeProject(t, "api")
	var console bytes.Buffer
	deps := testDeps(&fakeAnalyzer{}, &bytes.Buffer{})
	deps.Logger = logger.NewConsoleLogger(&console, "error")

	_, err := RunResearch(context.Background(), testConfig(root), deps)
	require.NoError(t, err)
	assert.Contains(t, console.String(), "=== Research Summary ===")
	assert.Contains(t, console.String(), "Succeeded: 1")
	assert.NotContains(t, console.String(), "Progress:")
}

func TestRunResearchSkipsOutputRoot(t *testing.T) {
	root := makeProject(t, "api", "research-out/old")
	cfg := testConfig(root)
	cfg.OutputDir = "research-out"
	cfg.Depth = 2
	a := &fakeAnalyzer{}

	outcome, err := RunResearch(context.Background(), cfg, testDeps(a, &bytes.Buffer{}))
	require.NoError(t, err)

	for _, task := range outcome.Tasks {
		assert.NotContains(t, task.Directory, "research-out")
	}
	assert.Equal(t, []string{"api"}, a.called())
}

func TestWithoutOutputRoot(t *testing.T) {
	candidates := []models.CandidateDirectory{
		{RelPath: "api"},
		{RelPath: "docs"},
		{RelPath: "docs/research"},
		{RelPath: "docs/research/old"},
		{RelPath: "docs/researchers"},
	}

	got := withoutOutputRoot(candidates, "/proj", "/proj/docs/research")
	var rels []string
	for _, c := range got {
		rels = append(rels, c.RelPath)
	}
	assert.Equal(t, []string{"api", "docs", "docs/researchers"}, rels)

	outside := withoutOutputRoot(candidates, "/proj", "/elsewhere/out")
	assert.Len(t, outside, len(candidates))
}
