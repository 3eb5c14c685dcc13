package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/sokinpui/hyfix/internal/config"
	"github.com/sokinpui/hyfix/internal/locate"
)

// DefaultFixPath is where the fixed file is expected when --fix-path is not
// given.
var DefaultFixPath = filepath.Join("hy-repo-fix", "hy", "repl.py")

// Config holds all the command-line flag values after config file and
// environment defaults were applied.
type Config struct {
	Path            string
	Repo            string
	Package         string
	File            string
	Python          string
	FixPath         string
	Clipboard       bool
	DiffOnly        bool
	Backup          bool
	TestsDir        string
	TestCmd         []string
	TestTimeout     time.Duration
	NoVerify        bool
	NoEditorRefresh bool
	NoAnimation     bool
	NoColor         bool
	ConfigFile      string
	Verbose         bool

	testCmd string
}

// UsageError is a flag parsing failure. Usage holds the flag help text.
type UsageError struct {
	Err   error
	Usage string
}

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

var aliases = map[string]string{
	"hy-path":   "path",
	"diff-only": "diff",
}

// Usage returns the help text for hyfix.
func Usage() string {
	fs, _ := newFlagSet()
	return usage(fs)
}

func usage(fs *pflag.FlagSet) string {
	var b strings.Builder
	b.WriteString("Usage: hyfix [flags]\n")
	b.WriteString("\nReplace repl.py inside the installed hy package with a fixed version,\n")
	b.WriteString("optionally previewing the diff, keeping a backup and running the tests.\n")
	b.WriteString("\nExample: hyfix --fix-path hy-repo-fix/hy/repl.py --backup\n")
	b.WriteString("\nFlags:\n")
	b.WriteString(fs.FlagUsages())
	return b.String()
}

func newFlagSet() (*pflag.FlagSet, *Config) {
	cfg := &Config{}
	fs := pflag.NewFlagSet("hyfix", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		if canonical, ok := aliases[name]; ok {
			name = canonical
		}
		return pflag.NormalizedName(name)
	})

	// Target
	fs.StringVar(&cfg.Path, "path", "", "Directory that contains the file to patch (alias --hy-path).")
	fs.StringVar(&cfg.Repo, "hy-repo", "", "Source checkout; patches <repo>/<package>/<file> and runs <repo>/tests.")
	fs.StringVar(&cfg.Package, "package", locate.DefaultPackage, "Installed package to look up when no path is given.")
	fs.StringVar(&cfg.File, "file", locate.DefaultFile, "Name of the file to patch inside the package.")
	fs.StringVar(&cfg.Python, "python", locate.DefaultPython, "Python interpreter used for the package lookup and the tests.")

	// Replacement
	fs.StringVar(&cfg.FixPath, "fix-path", DefaultFixPath, "Fixed file to install. Use '-' for stdin; Markdown files use their code block.")
	fs.BoolVar(&cfg.Clipboard, "clipboard", false, "Read the fixed file from the clipboard.")

	// Mode
	fs.BoolVar(&cfg.DiffOnly, "diff", false, "Only show the diff, do not change anything (alias --diff-only).")
	fs.BoolVar(&cfg.Backup, "backup", false, "Copy the original to <file>.bak before overwriting it.")

	// Verification
	fs.StringVar(&cfg.TestsDir, "tests", "", "Test directory to run after patching (default <hy-repo>/tests or tests).")
	fs.StringVar(&cfg.testCmd, "test-cmd", "", "Test command; the test directory is appended (default '<python> -m pytest -v').")
	fs.DurationVar(&cfg.TestTimeout, "test-timeout", 0, "Abort the test run after this long (0 means no limit).")
	fs.BoolVar(&cfg.NoVerify, "no-verify", false, "Skip running the tests.")

	// Output
	fs.BoolVar(&cfg.NoEditorRefresh, "no-editor-refresh", false, "Do not ask a running Neovim to reload buffers.")
	fs.BoolVar(&cfg.NoAnimation, "no-animation", false, "Disable the spinner while tests run.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML config file (default "+config.DefaultFile+" if present).")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging.")

	return fs, cfg
}

// ParseFlags parses args (without the program name) and layers the result
// over the environment, the config file and the built-in defaults.
func ParseFlags(args []string) (*Config, error) {
	fs, cfg := newFlagSet()

	if err := fs.Parse(args); err != nil {
		return nil, &UsageError{Err: err, Usage: usage(fs)}
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{
			Err:   fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " ")),
			Usage: usage(fs),
		}
	}

	cfgPath, required := config.DefaultFile, false
	if fs.Changed("config") {
		cfgPath, required = cfg.ConfigFile, true
	}
	settings, err := config.Load(cfgPath, required)
	if err != nil {
		return nil, err
	}
	settings.ApplyEnv(os.Getenv)

	if fs.Changed("path") && fs.Changed("hy-repo") {
		return nil, &UsageError{Err: errors.New("--path and --hy-repo are mutually exclusive"), Usage: usage(fs)}
	}

	if err := cfg.merge(fs, settings); err != nil {
		return nil, err
	}
	if cfg.Clipboard && fs.Changed("fix-path") {
		return nil, &UsageError{Err: errors.New("--clipboard and --fix-path are mutually exclusive"), Usage: usage(fs)}
	}
	if cfg.TestTimeout < 0 {
		return nil, &UsageError{Err: errors.New("--test-timeout must not be negative"), Usage: usage(fs)}
	}

	return cfg, nil
}

// merge fills every flag the user did not set from the settings. Choosing
// a target on the command line discards both target settings from the file.
func (c *Config) merge(fs *pflag.FlagSet, s *config.Settings) error {
	if fs.Changed("path") || fs.Changed("hy-repo") {
		s.Path, s.Repo = "", ""
	} else if s.Path != "" && s.Repo != "" {
		return errors.New("config: path and hy_repo are mutually exclusive")
	}

	str := func(flag string, dst *string, val string) {
		if !fs.Changed(flag) && val != "" {
			*dst = val
		}
	}
	boolean := func(flag string, dst *bool, val bool) {
		if !fs.Changed(flag) && val {
			*dst = true
		}
	}

	str("path", &c.Path, s.Path)
	str("hy-repo", &c.Repo, s.Repo)
	str("package", &c.Package, s.Package)
	str("file", &c.File, s.File)
	str("python", &c.Python, s.Python)
	str("fix-path", &c.FixPath, s.FixPath)
	str("tests", &c.TestsDir, s.Tests)
	str("test-cmd", &c.testCmd, s.TestCmd)
	boolean("backup", &c.Backup, s.Backup)
	boolean("no-verify", &c.NoVerify, s.NoVerify)
	boolean("no-editor-refresh", &c.NoEditorRefresh, s.NoEditorRefresh)
	boolean("no-animation", &c.NoAnimation, s.NoAnimation)
	boolean("no-color", &c.NoColor, s.NoColor)

	if !fs.Changed("test-timeout") {
		d, err := s.Timeout()
		if err != nil {
			return err
		}
		if d > 0 {
			c.TestTimeout = d
		}
	}

	c.TestCmd = strings.Fields(c.testCmd)
	if c.TestsDir == "" {
		c.TestsDir = DefaultTestsDir(c.Repo)
	}
	return nil
}

// DefaultTestsDir is <repo>/tests for a source checkout and tests otherwise.
func DefaultTestsDir(repo string) string {
	if repo != "" {
		return filepath.Join(repo, "tests")
	}
	return "tests"
}
