package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/sokinpui/hyfix/cli"
	"github.com/sokinpui/hyfix/internal/locate"
	"github.com/sokinpui/hyfix/internal/nvim"
	"github.com/sokinpui/hyfix/internal/patcher"
	"github.com/sokinpui/hyfix/internal/source"
	"github.com/sokinpui/hyfix/internal/tui"
	"github.com/sokinpui/hyfix/internal/ui"
	"github.com/sokinpui/hyfix/internal/verify"
	"github.com/sokinpui/hyfix/model"
)

// Config is everything one run needs, independent of where it came from.
type Config struct {
	Locate locate.Request
	Python string

	Source source.Request
	// Replacement, when set, is used instead of reading Source.
	Replacement *source.Replacement

	DiffOnly bool
	Backup   bool

	TestsDir    string
	TestCmd     []string
	TestTimeout time.Duration
	NoVerify    bool

	EditorRefresh bool
	Animate       bool
	Color         bool
}

// ConfigFromCLI translates parsed flags into a Config.
func ConfigFromCLI(c *cli.Config) Config {
	return Config{
		Locate: locate.Request{
			Dir:     c.Path,
			Repo:    c.Repo,
			Package: c.Package,
			File:    c.File,
		},
		Python:        c.Python,
		Source:        source.Request{Path: c.FixPath, Clipboard: c.Clipboard},
		DiffOnly:      c.DiffOnly,
		Backup:        c.Backup,
		TestsDir:      c.TestsDir,
		TestCmd:       c.TestCmd,
		TestTimeout:   c.TestTimeout,
		NoVerify:      c.NoVerify,
		EditorRefresh: !c.NoEditorRefresh,
		Animate:       !c.NoAnimation,
		Color:         !c.NoColor,
	}
}

// Refresher reloads editor buffers after the target changed on disk.
type Refresher interface {
	Refresh(path string) bool
}

// App orchestrates the entire application logic.
type App struct {
	cfg            Config
	logger         *zap.Logger
	locator        *locate.Locator
	sourceProvider *source.SourceProvider
	patcher        *patcher.Patcher
	verify         verify.Func
	refresher      Refresher
	stdout         io.Writer
	stderr         io.Writer
	ui             *ui.Printer
}

// Option customizes an App.
type Option func(*App)

func WithLogger(l *zap.Logger) Option { return func(a *App) { a.logger = l } }

func WithResolver(r locate.PackageResolver) Option {
	return func(a *App) { a.locator = locate.New(r) }
}

func WithSource(sp *source.SourceProvider) Option {
	return func(a *App) { a.sourceProvider = sp }
}

func WithVerifier(fn verify.Func) Option { return func(a *App) { a.verify = fn } }

func WithRefresher(r Refresher) Option { return func(a *App) { a.refresher = r } }

// WithOutput sets where the diff and test output (stdout) and the messages
// and spinner (stderr) are written.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *App) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// New creates a new App instance. Unset collaborators default to the real
// implementations.
func New(cfg Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	a.ui = ui.New(a.stderr)
	if a.locator == nil {
		a.locator = locate.New(locate.NewPythonResolver(cfg.Python))
	}
	if a.sourceProvider == nil {
		a.sourceProvider = source.New()
	}
	if a.patcher == nil {
		a.patcher = patcher.New(a.logger)
	}
	if a.verify == nil {
		a.verify = a.defaultRunner().Func()
	}
	if a.refresher == nil && cfg.EditorRefresh {
		a.refresher = nvim.New(a.logger)
	}
	return a
}

func (a *App) defaultRunner() *verify.CommandRunner {
	runner := verify.Pytest(a.cfg.Python)
	if len(a.cfg.TestCmd) > 0 {
		runner.Command = a.cfg.TestCmd
	}
	runner.Timeout = a.cfg.TestTimeout
	return runner
}

// Execute runs locate, patch and verify once and reports what happened.
// A returned error means the patch could not be applied; failing tests are
// reported in the Summary only.
func (a *App) Execute(ctx context.Context) (summary model.Summary, err error) {
	// Centralized panic recovery to provide stack traces for unexpected errors.
	defer func() {
		if r := recover(); r != nil {
			summary.State = model.StateFailed
			summary.Patch = model.PatchFailed
			err = &model.DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	summary = model.Summary{State: model.StateIdle, Verify: model.VerifySkipped, TestExitCode: -1}
	fail := func(err error) (model.Summary, error) {
		summary.State = model.StateFailed
		summary.Patch = model.PatchFailed
		return summary, err
	}

	target, err := a.locator.Locate(ctx, a.cfg.Locate)
	if err != nil {
		return fail(err)
	}
	summary.TargetPath = target
	summary.State = model.StateLocated
	a.ui.Info("%s installation found at: %s", packageName(a.cfg.Locate), filepath.Dir(target))

	rep, err := a.replacement(target)
	if err != nil {
		return fail(err)
	}
	a.logger.Debug("replacement loaded", zap.String("source", rep.Name), zap.Int("bytes", len(rep.Content)))

	task := model.PatchTask{
		TargetPath:      target,
		Replacement:     rep.Content,
		ReplacementName: rep.Name,
		DiffOnly:        a.cfg.DiffOnly,
		Backup:          a.cfg.Backup,
	}
	summary.Source = task.ReplacementName

	outcome, err := a.patcher.Apply(task)
	summary.State = outcome.State
	summary.Added = outcome.Diff.Stats.Added
	summary.Removed = outcome.Diff.Stats.Removed
	if err != nil {
		return fail(err)
	}
	summary.BackupPath = outcome.BackupPath

	switch {
	case a.cfg.DiffOnly:
		summary.Patch = model.PatchPreviewed
		if outcome.Diff.Empty() {
			summary.Message = "No changes needed, files are identical."
			a.ui.Success("%s", summary.Message)
		} else {
			ui.PrintDiff(a.stdout, outcome.Diff.Text, a.cfg.Color && ui.IsTerminal(a.stdout))
		}
		if a.cfg.Backup {
			summary.Warnings = append(summary.Warnings, "--backup has no effect together with --diff")
		}
		return summary, nil

	case !outcome.Changed:
		summary.Patch = model.PatchUnchanged
		summary.Message = "No changes needed, files are identical."
		a.ui.Success("%s", summary.Message)

	default:
		summary.Patch = model.PatchApplied
		if outcome.BackupPath != "" {
			a.ui.Info("Creating backup at %s", outcome.BackupPath)
		}
		summary.Message = fmt.Sprintf("Successfully patched %s with %s", target, task.ReplacementName)
		a.ui.Success("%s", summary.Message)
		a.refreshEditor(target)
	}

	if a.cfg.NoVerify {
		summary.Warnings = append(summary.Warnings, "verification disabled with --no-verify")
		return summary, nil
	}

	res, err := a.runTests(ctx)
	if ctxErr := ctx.Err(); ctxErr != nil {
		summary.Warnings = append(summary.Warnings, "test run interrupted")
		return summary, fmt.Errorf("interrupted while running tests: %w", ctxErr)
	}
	if err != nil {
		// The patch is already in place; a runner that cannot start is a warning.
		a.logger.Debug("test runner failed", zap.Error(err))
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("could not run tests: %v", err))
		return summary, nil
	}
	a.recordTests(&summary, res)
	return summary, nil
}

func (a *App) replacement(target string) (source.Replacement, error) {
	if a.cfg.Replacement != nil {
		return *a.cfg.Replacement, nil
	}
	req := a.cfg.Source
	req.TargetFile = filepath.Base(target)
	return a.sourceProvider.GetContent(req)
}

func (a *App) refreshEditor(target string) {
	if a.refresher == nil {
		return
	}
	if a.refresher.Refresh(target) {
		a.logger.Debug("editor buffers reloaded", zap.String("target", target))
	}
}

// runTests runs the verifier, behind a spinner on interactive terminals.
func (a *App) runTests(ctx context.Context) (verify.Result, error) {
	dir := a.cfg.TestsDir
	if dir == "" {
		dir = cli.DefaultTestsDir(a.cfg.Locate.Repo)
	}

	a.ui.Header("\nVerifying the fix...")
	if a.cfg.Animate && ui.IsTerminal(a.stderr) {
		return tui.Run(ctx, a.stderr, "Running tests", dir, func(ctx context.Context) (verify.Result, error) {
			return verify.Run(ctx, dir, a.verify)
		})
	}
	a.ui.Info("Running tests in %s...", dir)
	return verify.Run(ctx, dir, a.verify)
}

func (a *App) recordTests(summary *model.Summary, res verify.Result) {
	summary.Verify = res.Status
	summary.TestDir = res.Dir
	summary.TestExitCode = res.ExitCode
	summary.TestDuration = res.Duration

	switch res.Status {
	case model.VerifySkipped:
		a.ui.Warning("Warning: %s", res.Reason)
		summary.Warnings = append(summary.Warnings, res.Reason)
		return
	case model.VerifyPassed:
		summary.State = model.StateVerified
	}

	a.ui.PrintTestOutput(a.stdout, res.Output)
	if res.Reason != "" {
		summary.Warnings = append(summary.Warnings, "tests "+res.Reason)
	}
	if res.Passed() {
		a.ui.Success("\nFix verified successfully!")
	} else {
		a.ui.Warning("\nTests failed. The fix might not be working correctly.")
	}
}

func packageName(req locate.Request) string {
	if req.Package != "" {
		return req.Package
	}
	return locate.DefaultPackage
}
