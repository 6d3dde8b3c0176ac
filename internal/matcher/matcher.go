// Package matcher decides whether a file or directory name carries a given
// identifier.
//
// Matching is boundary-aware: the identifier must not be flanked by other
// digits, except for a run of zeros immediately before it (zero padding).
// With identifier 550 the names "t2scans550_01" and "00550.txt" match while
// "mri1550" and "5500.txt" do not.
package matcher

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrison/mrncopy/internal/models"
)

// DefaultWidth is the digit count of an identifier-shaped token.
const DefaultWidth = 7

var (
	// ErrEmptyIdentifier is returned for blank identifiers.
	ErrEmptyIdentifier = errors.New("identifier is empty")

	// ErrInvalidIdentifier is returned for identifiers with characters
	// outside letters, digits, '-' and '_'.
	ErrInvalidIdentifier = errors.New("identifier contains invalid characters")
)

// MatchesIdentifier reports whether name contains identifier bounded by
// non-digits or the string edges, tolerating leading zeros before it.
// An empty identifier never matches.
func MatchesIdentifier(identifier, name string) bool {
	if identifier == "" {
		return false
	}
	if !strings.Contains(name, identifier) {
		return false
	}

	for offset := 0; offset <= len(name)-len(identifier); {
		i := strings.Index(name[offset:], identifier)
		if i < 0 {
			return false
		}
		start := offset + i
		end := start + len(identifier)
		if boundedRight(name, end) && boundedLeft(name, start) {
			return true
		}
		offset = start + 1
	}
	return false
}

// boundedRight reports whether the match ending at end is followed by the
// end of the string or a non-digit.
func boundedRight(name string, end int) bool {
	return end == len(name) || !isDigit(name[end])
}

// boundedLeft reports whether the match starting at start is preceded, after
// skipping any zero padding, by the start of the string or a non-digit.
func boundedLeft(name string, start int) bool {
	j := start - 1
	for j >= 0 && name[j] == '0' {
		j--
	}
	return j < 0 || !isDigit(name[j])
}

// LooksLikeSomeIdentifier reports whether name contains a maximal run of
// exactly width digits. It is a heuristic for exclusion only and favours
// false negatives: dates, counters and longer numbers do not qualify.
func LooksLikeSomeIdentifier(name string, width int) bool {
	if width <= 0 {
		return false
	}
	run := 0
	for i := 0; i < len(name); i++ {
		if isDigit(name[i]) {
			run++
			continue
		}
		if run == width {
			return true
		}
		run = 0
	}
	return run == width
}

// NormalizeIdentifier trims raw and strips leading zeros from all-digit
// identifiers. Alphanumeric identifiers are returned unchanged.
func NormalizeIdentifier(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrEmptyIdentifier
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !isDigit(c) && !isLetter(c) && c != '-' && c != '_' {
			return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, raw)
		}
	}
	if !allDigits(s) {
		return s, nil
	}
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0", nil
	}
	return trimmed, nil
}

// ParseIdentifier builds an Identifier keyed by the trimmed raw string.
func ParseIdentifier(raw string) (models.Identifier, error) {
	needle, err := NormalizeIdentifier(raw)
	if err != nil {
		return models.Identifier{}, err
	}
	return models.Identifier{Key: strings.TrimSpace(raw), Needle: needle}, nil
}

// ParseIdentifiers parses every raw identifier, failing on the first bad one.
func ParseIdentifiers(raw []string) ([]models.Identifier, error) {
	ids := make([]models.Identifier, 0, len(raw))
	for i, r := range raw {
		id, err := ParseIdentifier(r)
		if err != nil {
			return nil, fmt.Errorf("identifier %d: %w", i+1, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Matcher bundles the identifier-shape width with the matching functions.
type Matcher struct {
	Width int
}

// New returns a Matcher for the given width, falling back to DefaultWidth.
func New(width int) *Matcher {
	if width <= 0 {
		width = DefaultWidth
	}
	return &Matcher{Width: width}
}

// Matches reports whether name carries id.
func (m *Matcher) Matches(id models.Identifier, name string) bool {
	return MatchesIdentifier(id.Needle, name)
}

// LooksLikeIdentifier reports whether name carries some identifier-shaped token.
func (m *Matcher) LooksLikeIdentifier(name string) bool {
	return LooksLikeSomeIdentifier(name, m.Width)
}

// MatchingIdentifiers returns every id that name matches, in input order.
func (m *Matcher) MatchingIdentifiers(ids []models.Identifier, name string) []models.Identifier {
	var out []models.Identifier
	for _, id := range ids {
		if m.Matches(id, name) {
			out = append(out, id)
		}
	}
	return out
}

// IsTarget reports whether the bare name is one of ids: the name, trimmed
// and with zero padding removed, equals an identifier's needle.
func (m *Matcher) IsTarget(ids []models.Identifier, name string) bool {
	bare, err := NormalizeIdentifier(name)
	if err != nil {
		return false
	}
	for _, id := range ids {
		if id.Needle == bare {
			return true
		}
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
