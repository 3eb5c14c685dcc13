package source

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is one fenced block of a Markdown replacement document.
type CodeBlock struct {
	// Hint is the paragraph right above the fence, usually naming the file.
	Hint    string
	Lang    string
	Content string
}

// ExtractCodeBlocks returns the fenced blocks of a Markdown document in
// document order, including blocks nested in lists or quotes.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []CodeBlock
	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !entering || !ok {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, CodeBlock{
			Hint:    fenceHint(fenced, source),
			Lang:    string(fenced.Language(source)),
			Content: fenceBody(fenced, source),
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}

func fenceBody(fenced *ast.FencedCodeBlock, source []byte) string {
	var body bytes.Buffer
	segs := fenced.Lines()
	for i := range segs.Len() {
		seg := segs.At(i)
		body.Write(seg.Value(source))
	}
	return body.String()
}

func fenceHint(fenced *ast.FencedCodeBlock, source []byte) string {
	para, ok := fenced.PreviousSibling().(*ast.Paragraph)
	if !ok {
		return ""
	}
	return strings.TrimSpace(string(para.Lines().Value(source)))
}

// PickBlock chooses the block whose hint mentions targetFile, then the first
// Python block, then the first block.
func PickBlock(blocks []CodeBlock, targetFile string) (CodeBlock, bool) {
	if len(blocks) == 0 {
		return CodeBlock{}, false
	}
	if name := filepath.Base(targetFile); targetFile != "" {
		for _, b := range blocks {
			if strings.Contains(b.Hint, name) {
				return b, true
			}
		}
	}
	for _, b := range blocks {
		switch strings.ToLower(b.Lang) {
		case "python", "py", "python3":
			return b, true
		}
	}
	return blocks[0], true
}
