// Package exclusion decides which subdirectories a walk must not descend
// into.
//
// Two rules apply, in order, to every subdirectory of the directory being
// visited:
//
//  1. Explicit: the name contains a caller-supplied token, or the full path
//     lies under a caller-supplied path prefix.
//  2. Foreign: the name carries an identifier-shaped token that is not one
//     of the targets. Shared trees mix many patients' folders; once a folder
//     is labelled with someone else's identifier, nothing below it is ours.
//
// A name that is itself a target, or that matches a target under the
// boundary rules, is never foreign.
package exclusion

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// Policy applies the exclusion rules and records what it prunes.
type Policy struct {
	tokens  []string
	matcher *matcher.Matcher
	set     *Set
	logger  logger.Logger
}

// NewPolicy builds a Policy. Tokens containing a path separator are treated
// as path prefixes; all others as name substrings. Empty tokens are ignored.
func NewPolicy(tokens []string, m *matcher.Matcher, log logger.Logger) *Policy {
	if m == nil {
		m = matcher.New(matcher.DefaultWidth)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	var names, prefixes []string
	for _, tok := range tokens {
		tok = strings.TrimSpace(tok)
		switch {
		case tok == "":
			continue
		case strings.ContainsRune(tok, filepath.Separator) || strings.ContainsRune(tok, '/'):
			prefixes = append(prefixes, tok)
		default:
			names = append(names, tok)
		}
	}

	return &Policy{
		tokens:  names,
		matcher: m,
		set:     NewSet(prefixes...),
		logger:  log,
	}
}

// Set returns the run's exclusion set.
func (p *Policy) Set() *Set {
	return p.set
}

// Prune splits the subdirectories of dir into those to keep walking and
// those to prune. The input slice is not modified.
func (p *Policy) Prune(dir string, subdirs []string, ids []models.Identifier) ([]string, []models.Exclusion) {
	keep := make([]string, 0, len(subdirs))
	var pruned []models.Exclusion

	for _, name := range subdirs {
		full := filepath.Join(dir, name)

		ex, excluded := p.classify(full, name, ids)
		if !excluded {
			keep = append(keep, name)
			continue
		}

		pruned = append(pruned, ex)
		p.set.Add(full)
		if n := p.set.Seen(name); n == 1 {
			p.logger.LogInfo(fmt.Sprintf("Excluding %s: %s", full, ex.Reason))
		} else {
			p.logger.LogDebug(fmt.Sprintf("Excluding %s: %s (name pruned %d times)", full, ex.Reason, n))
		}
	}

	return keep, pruned
}

// classify applies the rules in order and returns the first that fires.
func (p *Policy) classify(full, name string, ids []models.Identifier) (models.Exclusion, bool) {
	if tok, ok := p.explicitToken(name); ok {
		return models.Exclusion{
			Path:   full,
			Rule:   models.RuleExplicit,
			Reason: fmt.Sprintf("name contains exclusion token %q", tok),
		}, true
	}
	if p.set.Contains(full) {
		return models.Exclusion{
			Path:   full,
			Rule:   models.RuleExplicit,
			Reason: "path is under an excluded path",
		}, true
	}
	if p.IsForeign(name, ids) {
		return models.Exclusion{
			Path:   full,
			Rule:   models.RuleForeign,
			Reason: fmt.Sprintf("name carries a %d-digit identifier that is not being searched for", p.matcher.Width),
		}, true
	}
	return models.Exclusion{}, false
}

func (p *Policy) explicitToken(name string) (string, bool) {
	for _, tok := range p.tokens {
		if strings.Contains(name, tok) {
			return tok, true
		}
	}
	return "", false
}

// IsForeign reports whether name looks like it belongs to an identifier
// outside ids.
func (p *Policy) IsForeign(name string, ids []models.Identifier) bool {
	if p.matcher.IsTarget(ids, name) {
		return false
	}
	for _, id := range ids {
		if p.matcher.Matches(id, name) {
			return false
		}
	}
	return p.matcher.LooksLikeIdentifier(name)
}
