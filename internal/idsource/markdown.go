package idsource

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownReader reads identifiers from the list items of a markdown
// document. Headings and paragraphs are ignored, which lets a request ticket
// carry notes alongside its identifier list.
type MarkdownReader struct {
	markdown goldmark.Markdown
}

// NewMarkdownReader returns a MarkdownReader.
func NewMarkdownReader() *MarkdownReader {
	return &MarkdownReader{markdown: goldmark.New()}
}

// Read returns the text of every list item, nested lists included.
func (m *MarkdownReader) Read(r io.Reader) ([]Entry, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}

	doc := m.markdown.Parser().Parse(text.NewReader(source))

	var entries []Entry
	item := 0
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindListItem {
			return ast.WalkContinue, nil
		}
		item++
		block := n.FirstChild()
		if block == nil || block.Kind() == ast.KindList {
			return ast.WalkContinue, nil
		}
		value := strings.TrimSpace(extractText(block, source))
		if value != "" {
			entries = append(entries, Entry{Value: value, Location: fmt.Sprintf("list item %d", item)})
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// extractText concatenates the text below n, including inline code.
func extractText(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.WriteString(extractText(c, source))
	}
	return buf.String()
}
