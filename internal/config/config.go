// Package config loads optional settings from a YAML file and the
// environment. Command-line flags are layered on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when --config is not given.
const DefaultFile = ".hyfix.yaml"

// Environment variables understood by hyfix.
const (
	EnvPython  = "HYFIX_PYTHON"
	EnvPackage = "HYFIX_PACKAGE"
	EnvFile    = "HYFIX_FILE"
	EnvFixPath = "HYFIX_FIX_PATH"
	EnvTests   = "HYFIX_TESTS"
)

// Settings mirrors the subset of flags that make sense to pin per project.
// Zero values mean "not set".
type Settings struct {
	Path            string `yaml:"path"`
	Repo            string `yaml:"hy_repo"`
	Package         string `yaml:"package"`
	File            string `yaml:"file"`
	Python          string `yaml:"python"`
	FixPath         string `yaml:"fix_path"`
	Tests           string `yaml:"tests"`
	TestCmd         string `yaml:"test_cmd"`
	TestTimeout     string `yaml:"test_timeout"`
	Backup          bool   `yaml:"backup"`
	NoVerify        bool   `yaml:"no_verify"`
	NoEditorRefresh bool   `yaml:"no_editor_refresh"`
	NoAnimation     bool   `yaml:"no_animation"`
	NoColor         bool   `yaml:"no_color"`
}

// Load reads settings from path. A missing file yields empty settings unless
// required is set.
func Load(path string, required bool) (*Settings, error) {
	s := &Settings{}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if _, err := s.Timeout(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

// ApplyEnv overrides file settings with any HYFIX_* variables that are set.
func (s *Settings) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&s.Python, EnvPython)
	set(&s.Package, EnvPackage)
	set(&s.File, EnvFile)
	set(&s.FixPath, EnvFixPath)
	set(&s.Tests, EnvTests)
}

// Timeout parses TestTimeout. An empty value is zero.
func (s *Settings) Timeout() (time.Duration, error) {
	if s.TestTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.TestTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid test_timeout %q: %w", s.TestTimeout, err)
	}
	return d, nil
}

// LoadDotEnv loads .env from the working directory into the process
// environment. A missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}
