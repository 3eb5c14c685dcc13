// Package hyfix replaces repl.py inside an installed hy package with a
// fixed version. It is the library form of the hyfix command.
package hyfix

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/sokinpui/hyfix/internal/app"
	"github.com/sokinpui/hyfix/internal/locate"
	"github.com/sokinpui/hyfix/internal/source"
	"github.com/sokinpui/hyfix/internal/verify"
	"github.com/sokinpui/hyfix/model"
)

// VerifyResult is what a VerifyFunc reports about a test run.
type VerifyResult struct {
	Passed   bool
	ExitCode int
	Output   string
}

// VerifyFunc runs the tests in dir.
type VerifyFunc func(ctx context.Context, dir string) (VerifyResult, error)

// Options for using hyfix as a library. Zero values fall back to the same
// defaults as the command.
type Options struct {
	// Dir is the directory that contains File. When empty, Repo is used,
	// and when that is empty too the package is looked up with Python.
	Dir     string
	Repo    string
	Package string
	File    string
	Python  string

	// Replacement is the fixed content. When empty, FixPath is read.
	Replacement string
	FixPath     string

	DiffOnly bool
	Backup   bool

	// TestsDir defaults to <Repo>/tests, or tests.
	TestsDir    string
	SkipVerify  bool
	TestTimeout time.Duration
	// Verify replaces the default pytest run.
	Verify VerifyFunc

	// Output receives progress messages, the diff and test output.
	// Nil discards them.
	Output io.Writer
	Logger *zap.Logger
}

// Apply locates the target, replaces it and runs the tests. A non-nil error
// means the target was left unchanged, except when ctx is cancelled while
// the tests run; failing tests are only reported in the Summary.
//
// Calls may run concurrently on different targets as long as they do not
// share an Output writer.
func Apply(ctx context.Context, opts Options) (model.Summary, error) {
	out := opts.Output
	if out == nil {
		out = io.Discard
	}
	cfg := app.Config{
		Locate: locate.Request{
			Dir:     opts.Dir,
			Repo:    opts.Repo,
			Package: opts.Package,
			File:    opts.File,
		},
		Python:      opts.Python,
		Source:      source.Request{Path: opts.FixPath},
		DiffOnly:    opts.DiffOnly,
		Backup:      opts.Backup,
		TestsDir:    opts.TestsDir,
		TestTimeout: opts.TestTimeout,
		NoVerify:    opts.SkipVerify,
	}
	if opts.Replacement != "" {
		cfg.Replacement = &source.Replacement{Content: opts.Replacement, Name: "<replacement>"}
	}

	appOpts := []app.Option{app.WithOutput(out, out)}
	if opts.Logger != nil {
		appOpts = append(appOpts, app.WithLogger(opts.Logger))
	}
	if opts.Verify != nil {
		appOpts = append(appOpts, app.WithVerifier(adaptVerify(opts.Verify)))
	}

	return app.New(cfg, appOpts...).Execute(ctx)
}

func adaptVerify(fn VerifyFunc) verify.Func {
	return func(ctx context.Context, dir string) (verify.Result, error) {
		start := time.Now()
		res, err := fn(ctx, dir)
		if err != nil {
			return verify.Result{}, err
		}
		status := model.VerifyFailed
		if res.Passed {
			status = model.VerifyPassed
		}
		return verify.Result{
			Status:   status,
			Dir:      dir,
			ExitCode: res.ExitCode,
			Output:   res.Output,
			Duration: time.Since(start),
		}, nil
	}
}
