package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
hy_repo: /src/hy
python: /opt/py/bin/python
fix_path: fixes/repl.py
test_cmd: python -m pytest -x
test_timeout: 2m
backup: true
no_animation: true
`)

	s, err := Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/src/hy", s.Repo)
	assert.Equal(t, "/opt/py/bin/python", s.Python)
	assert.Equal(t, "fixes/repl.py", s.FixPath)
	assert.Equal(t, "python -m pytest -x", s.TestCmd)
	assert.True(t, s.Backup)
	assert.True(t, s.NoAnimation)
	assert.False(t, s.NoVerify)

	d, err := s.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nope.yaml")

	s, err := Load(missing, false)
	require.NoError(t, err)
	assert.Equal(t, &Settings{}, s)

	_, err = Load(missing, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed yaml", body: "python: [unterminated"},
		{name: "bad timeout", body: "test_timeout: soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.body), true)
			require.Error(t, err)
		})
	}
}

func TestApplyEnvOverridesFile(t *testing.T) {
	t.Parallel()

	s := &Settings{Python: "python3.11", Package: "hy", Tests: "tests"}
	env := map[string]string{
		EnvPython:  "/usr/bin/python3",
		EnvFixPath: "fix.md",
		EnvTests:   "  ",
	}
	s.ApplyEnv(func(k string) string { return env[k] })

	assert.Equal(t, "/usr/bin/python3", s.Python)
	assert.Equal(t, "hy", s.Package)
	assert.Equal(t, "fix.md", s.FixPath)
	assert.Equal(t, "tests", s.Tests, "blank variables are ignored")
}
