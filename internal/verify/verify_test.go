package verify

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/hyfix/model"
)

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell based runner tests need a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not available")
	}
	return sh
}

func TestRunSkipsMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "tests")
	called := false
	res, err := Run(context.Background(), dir, func(context.Context, string) (Result, error) {
		called = true
		return Result{}, nil
	})
	require.NoError(t, err)
	assert.False(t, called)
	assert.Equal(t, model.VerifySkipped, res.Status)
	assert.Contains(t, res.Reason, dir)
}

func TestRunSkipsEmptyDirAndNilRunner(t *testing.T) {
	t.Parallel()

	res, err := Run(context.Background(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, model.VerifySkipped, res.Status)

	res, err = Run(context.Background(), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, model.VerifySkipped, res.Status)
}

func TestRunDelegatesToFunc(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	res, err := Run(context.Background(), dir, func(_ context.Context, got string) (Result, error) {
		assert.Equal(t, dir, got)
		return Result{Status: model.VerifyPassed, Dir: got}, nil
	})
	require.NoError(t, err)
	assert.True(t, res.Passed())
}

func TestCommandRunnerPassAndFail(t *testing.T) {
	sh := requireShell(t)
	t.Parallel()

	root := t.TempDir()
	tests := filepath.Join(root, "tests")
	require.NoError(t, os.Mkdir(tests, 0o755))

	pass := &CommandRunner{Command: []string{sh, "-c", `echo "running $1"; pwd`, "runner"}}
	res, err := pass.Run(context.Background(), tests)
	require.NoError(t, err)
	assert.Equal(t, model.VerifyPassed, res.Status)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "running "+tests)
	resolvedRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.True(t, strings.Contains(res.Output, root+"\n") || strings.Contains(res.Output, resolvedRoot+"\n"),
		"runner must execute from the parent of the test dir, got %q", res.Output)

	fail := &CommandRunner{Command: []string{sh, "-c", `echo boom >&2; exit 3`, "runner"}}
	res, err = fail.Run(context.Background(), tests)
	require.NoError(t, err)
	assert.Equal(t, model.VerifyFailed, res.Status)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "boom")
}

func TestCommandRunnerTimeout(t *testing.T) {
	sh := requireShell(t)
	t.Parallel()

	runner := &CommandRunner{Command: []string{sh, "-c", "exec sleep 5", "runner"}, Timeout: 50 * time.Millisecond}
	res, err := runner.Run(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, model.VerifyFailed, res.Status)
	assert.Contains(t, res.Reason, "timed out")
}

func TestCommandRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	runner := &CommandRunner{Command: []string{"hyfix-no-such-runner"}}
	_, err := runner.Run(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, exec.ErrNotFound)
}

func TestCommandRunnerEmptyCommand(t *testing.T) {
	t.Parallel()

	_, err := (&CommandRunner{}).Run(context.Background(), t.TempDir())
	require.Error(t, err)
}

func TestPytestCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"python3", "-m", "pytest", "-v"}, Pytest("").Command)
	assert.Equal(t, []string{"/opt/py/bin/python", "-m", "pytest", "-v"}, Pytest("/opt/py/bin/python").Command)
}
