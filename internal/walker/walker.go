// Package walker performs the recursive search for identifier matches.
//
// Each directory passes through the same steps: it is recorded as visited,
// its subdirectories are split by the exclusion policy, the survivors are
// matched against every identifier (a matching directory is terminal and is
// not entered), its files are matched by name and, for archives, by member
// name, and finally the walker descends into what is left. Pruning happens
// on a collected list before any descent, so a pruned directory is never
// read.
package walker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/harrison/mrncopy/internal/archive"
	"github.com/harrison/mrncopy/internal/exclusion"
	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// DefaultProgressInterval is the number of visited directories between
// progress events.
const DefaultProgressInterval = 50

// ErrNotDirectory is returned when the search root is not a directory.
var ErrNotDirectory = errors.New("search root is not a directory")

// Options configures a Walker. Nil collaborators get defaults.
type Options struct {
	// ProgressInterval emits a progress event every N visited directories.
	ProgressInterval int

	Matcher   *matcher.Matcher
	Inspector *archive.Inspector
	Policy    *exclusion.Policy
	Logger    logger.Logger

	// OnProgress, when set, receives every progress event.
	OnProgress func(models.Progress)
}

// Result is everything a walk produces.
type Result struct {
	Root    string
	Matches *models.MatchMap
	Record  models.WalkRecord
	Summary models.WalkSummary
}

// Walker searches a directory tree for identifier matches.
type Walker struct {
	opts Options
}

// New returns a Walker with defaults filled in.
func New(opts Options) *Walker {
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.New(matcher.DefaultWidth)
	}
	if opts.Inspector == nil {
		opts.Inspector = archive.NewInspector(nil, opts.Logger)
	}
	if opts.Policy == nil {
		opts.Policy = exclusion.NewPolicy(nil, opts.Matcher, opts.Logger)
	}
	return &Walker{opts: opts}
}

// walkState is the mutable state of one walk.
type walkState struct {
	ids     []models.Identifier
	matches *models.MatchMap
	record  models.WalkRecord
	summary models.WalkSummary
}

// Walk searches root for ids. Setup problems (root missing or not a
// directory) are returned before anything is read. Per-directory read
// errors are logged and the directory is treated as empty. If ctx is
// cancelled the partial result is returned together with ctx.Err().
func (w *Walker) Walk(ctx context.Context, root string, ids []models.Identifier) (*Result, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve search root %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("access search root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	matches := models.NewMatchMap(ids)
	st := &walkState{
		// Repeated keys collapse in the map; walk the collapsed list so a
		// path is never appended twice under one key.
		ids:     matches.Identifiers(),
		matches: matches,
	}
	result := func() *Result {
		return &Result{Root: absRoot, Matches: st.matches, Record: st.record, Summary: st.summary}
	}

	if len(st.ids) == 0 {
		w.opts.Logger.LogInfo("No identifiers to search for; skipping walk")
		return result(), nil
	}

	w.opts.Logger.LogInfo(fmt.Sprintf("Searching %s for %d identifiers", absRoot, st.matches.Len()))
	start := time.Now()
	walkErr := w.visit(ctx, st, absRoot)
	st.summary.Duration = time.Since(start)

	// Final event, unless the last directory already produced one.
	if w.opts.OnProgress != nil && st.summary.DirsVisited%w.opts.ProgressInterval != 0 {
		w.opts.OnProgress(st.summary.Progress)
	}
	w.opts.Logger.LogWalkSummary(st.summary)
	return result(), walkErr
}

// visit processes one directory and then descends into its surviving
// subdirectories, depth first in lexical order.
func (w *Walker) visit(ctx context.Context, st *walkState, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	st.record.Visited = append(st.record.Visited, dir)
	st.summary.DirsVisited++
	st.summary.LastDir = dir

	subdirs, files := w.readDir(st, dir)

	keep, pruned := w.opts.Policy.Prune(dir, subdirs, st.ids)
	st.record.Excluded = append(st.record.Excluded, pruned...)
	st.summary.DirsExcluded += len(pruned)

	remaining := w.matchDirs(st, dir, keep)
	w.matchFiles(st, dir, files)

	if st.summary.DirsVisited%w.opts.ProgressInterval == 0 {
		w.emitProgress(st.summary.Progress)
	}

	for _, name := range remaining {
		if err := w.visit(ctx, st, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// readDir lists dir, splitting entries into subdirectory and file names.
// Symlinks are treated as files and never descended. Devices, sockets and
// pipes are skipped.
func (w *Walker) readDir(st *walkState, dir string) (subdirs, files []string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		st.summary.ReadErrors++
		w.opts.Logger.LogWarn(fmt.Sprintf("Could not read directory %s: %v", dir, err))
		// ReadDir may return the entries it read before failing.
	}

	for _, e := range entries {
		switch {
		case e.IsDir():
			subdirs = append(subdirs, e.Name())
		case e.Type().IsRegular(), e.Type()&fs.ModeSymlink != 0:
			files = append(files, e.Name())
		default:
			w.opts.Logger.LogDebug(fmt.Sprintf("Skipping special file %s", filepath.Join(dir, e.Name())))
		}
	}
	return subdirs, files
}

// matchDirs records every subdirectory that matches an identifier and
// returns the ones that did not, which are still to be walked. Matched
// directories are removed only after every identifier has been tested, so
// a name matching several identifiers is recorded under each.
func (w *Walker) matchDirs(st *walkState, dir string, names []string) []string {
	terminal := make(map[string]bool)

	for _, id := range st.ids {
		for _, name := range names {
			if !w.opts.Matcher.Matches(id, name) {
				continue
			}
			full := filepath.Join(dir, name)
			st.matches.Append(id.Key, full)
			if !terminal[name] {
				terminal[name] = true
				st.summary.DirsMatched++
			}
			w.opts.Logger.LogDebug(fmt.Sprintf("Matched folder %s for identifier %s", full, id.Key))
		}
	}

	remaining := make([]string, 0, len(names))
	for _, name := range names {
		if !terminal[name] {
			remaining = append(remaining, name)
		}
	}
	return remaining
}

// matchFiles records files matching an identifier by name, and archives
// whose member names match an identifier the file name did not.
func (w *Walker) matchFiles(st *walkState, dir string, files []string) {
	for _, name := range files {
		full := filepath.Join(dir, name)
		matched := make(map[string]bool)

		for _, id := range w.opts.Matcher.MatchingIdentifiers(st.ids, name) {
			matched[id.Key] = true
		}

		if w.opts.Inspector.IsArchive(name) && len(matched) < len(st.ids) {
			var rest []models.Identifier
			for _, id := range st.ids {
				if !matched[id.Key] {
					rest = append(rest, id)
				}
			}
			hits := w.opts.Inspector.MatchingIdentifiers(rest, full)
			for _, id := range hits {
				matched[id.Key] = true
			}
			if len(hits) > 0 {
				st.summary.ArchiveHits++
			}
		}

		if len(matched) == 0 {
			continue
		}

		// Append in identifier order so discovery order is deterministic.
		for _, id := range st.ids {
			if matched[id.Key] {
				st.matches.Append(id.Key, full)
				delete(matched, id.Key)
				w.opts.Logger.LogDebug(fmt.Sprintf("Matched file %s for identifier %s", full, id.Key))
			}
		}
		st.summary.FilesMatched++
	}
}

func (w *Walker) emitProgress(p models.Progress) {
	w.opts.Logger.LogProgress(p)
	if w.opts.OnProgress != nil {
		w.opts.OnProgress(p)
	}
}
