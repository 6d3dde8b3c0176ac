package report

import (
	"bytes"
	"path/filepath"

	"github.com/harrison/mrncopy/internal/filelock"
	"github.com/harrison/mrncopy/internal/models"
)

// Default artifact names.
const (
	DefaultMatchFile      = "FileCopyDirectory.csv"
	DefaultDuplicatesFile = "duplicates.log"
	DefaultAuditFile      = "walk-audit.log"
)

// Files writes run artifacts into Dir. Each file is written atomically under
// its own lock file, since concurrent runs may share Dir.
type Files struct {
	Dir            string
	MatchFile      string
	DuplicatesFile string
	AuditFile      string
}

// NewFiles returns Files for dir with the default names.
func NewFiles(dir string) *Files {
	return &Files{
		Dir:            dir,
		MatchFile:      DefaultMatchFile,
		DuplicatesFile: DefaultDuplicatesFile,
		AuditFile:      DefaultAuditFile,
	}
}

func (f *Files) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(f.Dir, name)
}

// MatchPath returns where WriteMatches writes the match table.
func (f *Files) MatchPath() string {
	return f.path(f.MatchFile)
}

// WriteMatches writes the match table and returns its path.
func (f *Files) WriteMatches(matches *models.MatchMap) (string, error) {
	var buf bytes.Buffer
	if err := WriteMatchTable(&buf, matches); err != nil {
		return "", err
	}
	p := f.path(f.MatchFile)
	return p, filelock.LockAndWrite(p, buf.Bytes())
}

// WriteDuplicates writes the duplicates log and returns its path. Nothing is
// written, and "" is returned, when the report has no duplicates.
func (f *Files) WriteDuplicates(r *models.DuplicateReport) (string, error) {
	if r == nil || !r.HasDuplicates() {
		return "", nil
	}
	var buf bytes.Buffer
	if err := WriteDuplicates(&buf, r); err != nil {
		return "", err
	}
	p := f.path(f.DuplicatesFile)
	return p, filelock.LockAndWrite(p, buf.Bytes())
}

// WriteAudit writes the walk audit log and returns its path.
func (f *Files) WriteAudit(root string, record models.WalkRecord, summary models.WalkSummary) (string, error) {
	var buf bytes.Buffer
	if err := WriteAuditLog(&buf, root, record, summary); err != nil {
		return "", err
	}
	p := f.path(f.AuditFile)
	return p, filelock.LockAndWrite(p, buf.Bytes())
}
