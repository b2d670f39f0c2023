// File: cmd/cmd_test.go
package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/feedback-cli/internal/observability"
)

// legacyVars are cleared so a developer's shell cannot leak into tests.
var legacyVars = []string{
	"ENROLLMENT_NO", "PASSWORD", "FEEDBACK_OPTION", "MENTOR_DEPT", "MENTOR_NAME",
	"THEORY_SUBJECTS", "THEORY_TEACHERS", "LAB_SUBJECTS", "LAB_TEACHERS",
	"TEACHING_SUBJECTS", "TEACHING_TEACHERS", "ENVIRONMENT",
}

// resetForTest isolates a test from the environment and global logger state.
func resetForTest(t *testing.T) {
	t.Helper()
	for _, name := range legacyVars {
		t.Setenv(name, "")
	}
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() {
		isTerminal = defaultIsTerminal
		readPassword = defaultReadPassword
	})
}

var (
	defaultIsTerminal   = isTerminal
	defaultReadPassword = readPassword
)

// executeCommand runs a fresh command tree with stdin and returns everything
// written to stdout and stderr.
func executeCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

// writeTempFile writes content to name inside a per-test directory.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// noEnvFile points --env-file at a path that does not exist.
func noEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

const sampleConfig = `
feedback:
  option: "5"
  theory:
    subjects: ["CS301", "CS302"]
    teachers: ["Dr. Verma"]
  lab:
    subjects: ["CS391"]
    teachers: ["Ms. Rao"]
  mentor:
    department: "Department of Computer Science"
    name: "Sharma"
`
