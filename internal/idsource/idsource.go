// Package idsource reads identifier lists from files and command-line values.
//
// Supported file formats, chosen by extension:
//
//	.txt, .list   one identifier per line, '#' comments, commas also split
//	.csv          one column of a spreadsheet export, optional header row
//	.yaml, .yml   a sequence, or a mapping with an "identifiers" sequence
//	.md           list items of a markdown document
//
// Every entry carries its location so a malformed identifier is reported
// by line, row or item.
package idsource

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// ErrUnsupportedSource is returned for files with an unrecognized extension.
var ErrUnsupportedSource = errors.New("unsupported identifier source")

// Format is the format of an identifier source file.
type Format int

const (
	FormatUnknown Format = iota
	FormatText
	FormatCSV
	FormatYAML
	FormatMarkdown
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatCSV:
		return "csv"
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "markdown"
	default:
		return "unknown"
	}
}

// DetectFormat picks the format from the file extension.
func DetectFormat(filename string) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".list":
		return FormatText
	case ".csv":
		return FormatCSV
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatUnknown
	}
}

// Entry is one raw identifier and where it came from.
type Entry struct {
	Value    string
	Location string // e.g. "line 3", "row 2", "item 4"
}

// Reader extracts raw entries from a source.
type Reader interface {
	Read(r io.Reader) ([]Entry, error)
}

// Options tunes the readers that need it.
type Options struct {
	// Column is the zero-based CSV column holding identifiers.
	Column int
	// Header skips the first CSV row.
	Header bool
}

// NewReader returns the Reader for format.
func NewReader(format Format, opts Options) (Reader, error) {
	switch format {
	case FormatText:
		return &TextReader{}, nil
	case FormatCSV:
		return &CSVReader{Column: opts.Column, Header: opts.Header}, nil
	case FormatYAML:
		return &YAMLReader{}, nil
	case FormatMarkdown:
		return NewMarkdownReader(), nil
	default:
		return nil, fmt.Errorf("%w: format %v", ErrUnsupportedSource, format)
	}
}

// ReadFile reads and validates the identifiers in path.
func ReadFile(path string, opts Options) ([]models.Identifier, error) {
	format := DetectFormat(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s (supported: .txt, .list, .csv, .yaml, .yml, .md, .markdown)", ErrUnsupportedSource, path)
	}

	reader, err := NewReader(format, opts)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifier source: %w", err)
	}
	defer f.Close()

	entries, err := reader.Read(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	ids, err := Resolve(entries)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}

// Inline turns command-line values into entries. Each value may itself be
// a comma-separated list.
func Inline(values []string) []Entry {
	var entries []Entry
	for i, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			entries = append(entries, Entry{Value: part, Location: fmt.Sprintf("--id value %d", i+1)})
		}
	}
	return entries
}

// Resolve validates entries and converts them to identifiers, failing on
// the first malformed one.
func Resolve(entries []Entry) ([]models.Identifier, error) {
	ids := make([]models.Identifier, 0, len(entries))
	for _, e := range entries {
		id, err := matcher.ParseIdentifier(e.Value)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Location, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Load reads every file in paths, appends the inline values, and returns the
// combined identifiers in that order.
func Load(paths []string, inline []string, opts Options) ([]models.Identifier, error) {
	var ids []models.Identifier
	for _, p := range paths {
		fromFile, err := ReadFile(p, opts)
		if err != nil {
			return nil, err
		}
		ids = append(ids, fromFile...)
	}

	fromFlags, err := Resolve(Inline(inline))
	if err != nil {
		return nil, err
	}
	return append(ids, fromFlags...), nil
}
