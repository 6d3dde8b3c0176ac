// Package archive looks inside zip archives for identifier matches without
// extracting them. Only member names from the central directory are read;
// nested archives are not opened.
package archive

import (
	"archive/zip"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// DefaultExtensions are the archive extensions inspected when none are configured.
var DefaultExtensions = []string{".zip"}

// Inspector tests archive member names against identifiers.
type Inspector struct {
	extensions map[string]bool
	logger     logger.Logger
}

// NewInspector returns an Inspector recognizing the given extensions
// (case-insensitive, leading dot optional). An empty list means DefaultExtensions.
func NewInspector(extensions []string, log logger.Logger) *Inspector {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Inspector{
		extensions: NormalizeExtensions(extensions),
		logger:     log,
	}
}

// NormalizeExtensions lowercases extensions and ensures a leading dot.
func NormalizeExtensions(extensions []string) map[string]bool {
	set := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[ext] = true
	}
	return set
}

// IsArchive reports whether name carries a recognized archive extension.
func (in *Inspector) IsArchive(name string) bool {
	return in.extensions[strings.ToLower(filepath.Ext(name))]
}

// Members lists the member names of the archive at archivePath.
func (in *Inspector) Members(archivePath string) ([]string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", archivePath, err)
	}
	defer r.Close()

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// ContainsIdentifier reports whether any member of the archive matches
// identifier. Any error opening or listing the archive is logged and
// treated as no match.
func (in *Inspector) ContainsIdentifier(identifier, archivePath string) bool {
	members, err := in.Members(archivePath)
	if err != nil {
		in.logger.LogWarn(fmt.Sprintf("Skipping unreadable archive: %v", err))
		return false
	}
	for _, m := range members {
		if memberMatches(identifier, m) {
			return true
		}
	}
	return false
}

// MatchingIdentifiers lists the archive once and returns every id with a
// matching member, in input order. Unreadable archives yield nil.
func (in *Inspector) MatchingIdentifiers(ids []models.Identifier, archivePath string) []models.Identifier {
	if len(ids) == 0 {
		return nil
	}
	members, err := in.Members(archivePath)
	if err != nil {
		in.logger.LogWarn(fmt.Sprintf("Skipping unreadable archive: %v", err))
		return nil
	}

	var out []models.Identifier
	for _, id := range ids {
		for _, m := range members {
			if memberMatches(id.Needle, m) {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// memberMatches tests a member's full stored path. Path separators are
// non-digits, so "55081/scan.dcm" matches 55081 like "55081_scan.dcm" does.
func memberMatches(identifier, member string) bool {
	return matcher.MatchesIdentifier(identifier, member)
}
