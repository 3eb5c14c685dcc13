// Package locate resolves the on-disk path of the file to patch.
package locate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sokinpui/hyfix/internal/fs"
	"github.com/sokinpui/hyfix/model"
)

const (
	DefaultPackage = "hy"
	DefaultFile    = "repl.py"
	DefaultPython  = "python3"
)

// probeScript prints the directory of the package named by argv[1].
const probeScript = `import importlib, os, sys
m = importlib.import_module(sys.argv[1])
print(os.path.dirname(os.path.abspath(m.__file__)))`

// PackageResolver maps a package name to its installation directory.
type PackageResolver interface {
	PackageDir(ctx context.Context, pkg string) (string, error)
}

// Request names where the target lives. Dir wins over Repo, Repo over Package.
type Request struct {
	// Dir is a directory that directly contains File.
	Dir string
	// Repo is a source checkout; the target is Repo/Package/File.
	Repo    string
	Package string
	File    string
}

// Locator turns a Request into an absolute target path.
type Locator struct {
	resolver PackageResolver
}

// New creates a Locator. A nil resolver disables package introspection.
func New(resolver PackageResolver) *Locator {
	return &Locator{resolver: resolver}
}

// Locate returns the absolute path of the target file.
func (l *Locator) Locate(ctx context.Context, req Request) (string, error) {
	pkg := strings.TrimSpace(req.Package)
	if pkg == "" {
		pkg = DefaultPackage
	}
	file := strings.TrimSpace(req.File)
	if file == "" {
		file = DefaultFile
	}

	var dir string
	switch {
	case strings.TrimSpace(req.Dir) != "":
		dir = req.Dir
	case strings.TrimSpace(req.Repo) != "":
		dir = filepath.Join(req.Repo, filepath.FromSlash(strings.ReplaceAll(pkg, ".", "/")))
	default:
		if l.resolver == nil {
			return "", model.NewError(model.ErrDependencyMissing, pkg, errors.New("no package resolver configured")).
				WithHint("Pass the installation directory with --path.")
		}
		resolved, err := l.resolver.PackageDir(ctx, pkg)
		if err != nil {
			return "", err
		}
		dir = resolved
	}

	abs, err := filepath.Abs(filepath.Join(dir, file))
	if err != nil {
		return "", model.NewError(model.ErrTargetNotFound, filepath.Join(dir, file), err)
	}
	if !fs.IsFile(abs) {
		return "", model.NewError(model.ErrTargetNotFound, abs, nil).
			WithHint("Check that %s exists, or point --path at the directory that contains it.", file)
	}
	return abs, nil
}

// PythonResolver asks a Python interpreter where a package is installed.
type PythonResolver struct {
	Python string
}

// NewPythonResolver creates a resolver for the given interpreter.
func NewPythonResolver(python string) *PythonResolver {
	if strings.TrimSpace(python) == "" {
		python = DefaultPython
	}
	return &PythonResolver{Python: python}
}

// PackageDir runs the probe script and returns the printed directory.
func (r *PythonResolver) PackageDir(ctx context.Context, pkg string) (string, error) {
	cmd := exec.CommandContext(ctx, r.Python, "-c", probeScript, pkg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", model.NewError(model.ErrDependencyMissing, r.Python, err).
				WithHint("Python interpreter %q was not found. Install it, pass --python, or pass --path.", r.Python)
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("package lookup interrupted: %w", ctx.Err())
		}
		detail := lastLine(stderr.String())
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return "", model.NewError(model.ErrDependencyMissing, pkg, err).
			WithHint("%s package is not installed. Please install it first:\n  pip install %s", pkg, pkg)
	}

	dir := lastLine(stdout.String())
	if dir == "" {
		return "", model.NewError(model.ErrDependencyMissing, pkg, errors.New("interpreter printed no package location"))
	}
	return dir, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
