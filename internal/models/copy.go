package models

import (
	"fmt"
	"time"
)

// Duplicate is a copy whose destination name was already taken.
type Duplicate struct {
	Identifier  string // Identifier key the source was matched for
	Source      string // Matched source path
	Basename    string // Original destination name
	Destination string // Path actually written after diversion
	IsDir       bool
}

// Name renders the duplicate the way the duplicates log lists it:
// directories carry a trailing slash.
func (d Duplicate) Name() string {
	if d.IsDir {
		return d.Basename + "/"
	}
	return d.Basename
}

// CopyError is an unexpected failure copying one matched path.
type CopyError struct {
	Identifier string
	Source     string
	Err        error
}

// Error implements the error interface.
func (e CopyError) Error() string {
	return fmt.Sprintf("copy %s (identifier %s): %v", e.Source, e.Identifier, e.Err)
}

// Unwrap returns the underlying error.
func (e CopyError) Unwrap() error {
	return e.Err
}

// DuplicateReport accumulates the outcome of a copy run.
type DuplicateReport struct {
	Entries         []Duplicate
	Errors          []CopyError
	Copied          int   // Paths copied (files or directory trees)
	SkippedArchives int   // Archives already present under the destination root
	DirsCreated     int   // Per-identifier directories created or reused
	BytesCopied     int64 // Bytes written across all copies
	Duration        time.Duration
}

// Names returns the duplicate basenames in discovery order.
func (r *DuplicateReport) Names() []string {
	out := make([]string, 0, len(r.Entries))
	for _, d := range r.Entries {
		out = append(out, d.Name())
	}
	return out
}

// HasDuplicates reports whether any collision was recorded.
func (r *DuplicateReport) HasDuplicates() bool {
	return len(r.Entries) > 0
}
