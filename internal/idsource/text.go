package idsource

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TextReader reads plain identifier lists.
type TextReader struct{}

// Read returns one entry per non-empty, comma-separated value. Anything
// after a '#' on a line is a comment.
func (TextReader) Read(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		for _, part := range strings.Split(text, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			entries = append(entries, Entry{Value: part, Location: fmt.Sprintf("line %d", line)})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan line %d: %w", line+1, err)
	}
	return entries, nil
}
