package claude

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// cleanTmpDir is the temp directory handed to claude CLI invocations.
// A dedicated directory keeps editor socket files out of the CLI's TMPDIR.
var cleanTmpDir = filepath.Join(os.TempDir(), "codescout-claude")

// SetCleanEnv copies the current environment into cmd with TMPDIR pointed at
// a dedicated directory, creating it if needed. When the directory cannot be
// created the inherited TMPDIR is kept.
func SetCleanEnv(cmd *exec.Cmd) {
	cmd.Env = os.Environ()
	if err := os.MkdirAll(cleanTmpDir, 0755); err != nil {
		return
	}

	found := false
	for i, env := range cmd.Env {
		if strings.HasPrefix(env, "TMPDIR=") {
			cmd.Env[i] = "TMPDIR=" + cleanTmpDir
			found = true
			break
		}
	}
	if !found {
		cmd.Env = append(cmd.Env, "TMPDIR="+cleanTmpDir)
	}
}

// CleanTmpDir returns the temp directory used for claude CLI invocations.
func CleanTmpDir() string {
	return cleanTmpDir
}
