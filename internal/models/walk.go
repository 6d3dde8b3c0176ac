package models

import "time"

// Exclusion rule names recorded in the walk audit.
const (
	RuleExplicit = "explicit"
	RuleForeign  = "foreign"
)

// Exclusion is a directory pruned from the walk.
type Exclusion struct {
	Path   string // Full path of the pruned directory
	Rule   string // RuleExplicit or RuleForeign
	Reason string // Human-readable explanation
}

// WalkRecord is the audit trail of a walk: every directory visited and every
// directory pruned, in the order they were encountered.
type WalkRecord struct {
	Visited  []string
	Excluded []Exclusion
}

// Progress carries cumulative walk counters.
type Progress struct {
	DirsVisited  int    // Directories read so far
	FilesMatched int    // Files matched (by name or archive contents)
	DirsMatched  int    // Directories matched as terminal
	DirsExcluded int    // Directories pruned
	LastDir      string // Most recently visited directory
}

// WalkSummary is the final accounting of a walk.
type WalkSummary struct {
	Progress
	Duration    time.Duration
	ReadErrors  int // Directories that could not be read
	ArchiveHits int // Archives with at least one match among their member names
}
