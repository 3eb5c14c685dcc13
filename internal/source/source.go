package source

import (
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/hyfix/model"
)

// Stdin is the --fix-path value that selects standard input.
const Stdin = "-"

// Replacement is the content the target file should end up with.
type Replacement struct {
	Content string
	// Name describes where the content came from, for display.
	Name string
}

// Request selects a replacement source.
type Request struct {
	// Path is a file, or "-" for stdin.
	Path      string
	Clipboard bool
	// TargetFile is the file name being patched; it picks the right block
	// out of a Markdown document.
	TargetFile string
}

// SourceProvider determines and retrieves the replacement content.
type SourceProvider struct {
	stdin         io.Reader
	readClipboard func() (string, error)
}

// New creates a new SourceProvider reading from the process stdin and the
// system clipboard.
func New() *SourceProvider {
	return &SourceProvider{stdin: os.Stdin, readClipboard: clipboard.ReadAll}
}

// NewWith creates a SourceProvider with explicit stdin and clipboard readers.
func NewWith(stdin io.Reader, readClipboard func() (string, error)) *SourceProvider {
	return &SourceProvider{stdin: stdin, readClipboard: readClipboard}
}

// GetContent retrieves the replacement named by req.
func (sp *SourceProvider) GetContent(req Request) (Replacement, error) {
	switch {
	case req.Clipboard:
		return sp.fromClipboard()
	case req.Path == Stdin:
		return sp.fromStdin()
	default:
		return fromFile(req.Path, req.TargetFile)
	}
}

func (sp *SourceProvider) fromStdin() (Replacement, error) {
	content, err := io.ReadAll(sp.stdin)
	if err != nil {
		return Replacement{}, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(content) == 0 {
		return Replacement{}, model.NewError(model.ErrReplacementNotFound, "<stdin>", errors.New("stdin is empty"))
	}
	return Replacement{Content: string(content), Name: "<stdin>"}, nil
}

func (sp *SourceProvider) fromClipboard() (Replacement, error) {
	content, err := sp.readClipboard()
	if err != nil {
		return Replacement{}, fmt.Errorf("failed to read from clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		return Replacement{}, model.NewError(model.ErrReplacementNotFound, "<clipboard>", errors.New("clipboard is empty"))
	}
	return Replacement{Content: content, Name: "<clipboard>"}, nil
}

func fromFile(path, targetFile string) (Replacement, error) {
	if strings.TrimSpace(path) == "" {
		return Replacement{}, model.NewError(model.ErrReplacementNotFound, "", errors.New("no replacement file given")).
			WithHint("Pass the fixed file with --fix-path.")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return Replacement{}, model.NewError(model.ErrReplacementNotFound, path, nil).
				WithHint("You need to have the fixed %s file at %s, or pass --fix-path.", fileOrDefault(targetFile), path)
		}
		return Replacement{}, model.NewError(model.ErrReplacementNotFound, path, err)
	}

	if !isMarkdown(path) {
		return Replacement{Content: string(data), Name: path}, nil
	}

	blocks, err := ExtractCodeBlocks(data)
	if err != nil {
		return Replacement{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	block, ok := PickBlock(blocks, targetFile)
	if !ok {
		return Replacement{}, model.NewError(model.ErrReplacementNotFound, path, errors.New("no fenced code block found"))
	}
	return Replacement{Content: block.Content, Name: path}, nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func fileOrDefault(name string) string {
	if name == "" {
		return "replacement"
	}
	return name
}
