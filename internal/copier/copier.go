// Package copier copies each identifier's matched paths into its own
// directory under a destination root.
//
// Layout of a destination root after a run:
//
//	<root>/<identifier>/<file or directory>   ordinary matches
//	<root>/<archive>.zip                      archives, copied once per run
//
// Names that are already taken are diverted with a _dupN suffix and recorded
// in the returned DuplicateReport. Files overwrite a destination left by an
// earlier run; directory trees never overwrite or merge.
package copier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/harrison/mrncopy/internal/archive"
	"github.com/harrison/mrncopy/internal/filelock"
	"github.com/harrison/mrncopy/internal/fileutil"
	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/models"
)

// DefaultMaxConcurrency is the number of identifiers copied at once when
// none is configured.
const DefaultMaxConcurrency = 1

// ErrDestinationLocked is returned when another run holds the destination.
var ErrDestinationLocked = errors.New("destination is in use by another run")

// Options configures an Engine.
type Options struct {
	// ArchiveExtensions selects the files copied once under the destination
	// root instead of per identifier. Empty means archive.DefaultExtensions.
	ArchiveExtensions []string

	// MaxConcurrency bounds how many identifiers are copied in parallel.
	MaxConcurrency int

	// DryRun computes destinations and duplicates without writing anything.
	DryRun bool

	Logger logger.Logger

	// OnIdentifier is called once per identifier when its copies finish.
	// Calls are serialized.
	OnIdentifier func(key string)
}

// Engine copies match maps into destination roots.
type Engine struct {
	opts      Options
	inspector *archive.Inspector
}

// New returns an Engine with defaults filled in.
func New(opts Options) *Engine {
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultMaxConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNoOpLogger()
	}
	return &Engine{
		opts:      opts,
		inspector: archive.NewInspector(opts.ArchiveExtensions, opts.Logger),
	}
}

// job is one identifier's share of the work.
type job struct {
	key   string
	paths []string
}

// outcome is what one job produced. Jobs fill their own outcome and the
// engine merges them in identifier order.
type outcome struct {
	entries []models.Duplicate
	errors  []models.CopyError
	copied  int
	bytes   int64
	created bool
}

// run is the state shared by the jobs of one CopyMatches call.
type run struct {
	destRoot string
	total    int

	mu              sync.Mutex // guards the fields below
	archives        map[string]bool
	skippedArchives int
	done            int
}

// CopyMatches copies every matched path in matches under destRoot.
// Identifiers without matches are skipped, and a map with no matches at all
// writes nothing. The only fatal errors are failing to create destRoot and
// finding it locked by another run; every per-path failure is recorded in
// the report and the engine moves on. If ctx is cancelled no further
// identifiers are started and ctx.Err() is returned with the partial report.
func (e *Engine) CopyMatches(ctx context.Context, matches *models.MatchMap, destRoot string) (*models.DuplicateReport, error) {
	report := &models.DuplicateReport{}

	var jobs []job
	for _, key := range matches.WithMatches() {
		jobs = append(jobs, job{key: key, paths: matches.Paths(key)})
	}
	if len(jobs) == 0 {
		e.opts.Logger.LogInfo("No matches to copy")
		return report, nil
	}

	absRoot, err := filepath.Abs(destRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %s: %w", destRoot, err)
	}

	if !e.opts.DryRun {
		if err := os.MkdirAll(absRoot, 0755); err != nil {
			return nil, fmt.Errorf("create destination root: %w", err)
		}
		lock, err := filelock.Acquire(absRoot)
		if errors.Is(err, filelock.ErrLocked) {
			return nil, fmt.Errorf("%w: %s", ErrDestinationLocked, absRoot)
		}
		if err != nil {
			return nil, fmt.Errorf("lock destination: %w", err)
		}
		defer lock.Unlock()
	}

	mode := "Copying"
	if e.opts.DryRun {
		mode = "Dry run: planning copies of"
	}
	e.opts.Logger.LogInfo(fmt.Sprintf("%s %d identifiers into %s", mode, len(jobs), absRoot))

	start := time.Now()
	r := &run{
		destRoot: absRoot,
		total:    len(jobs),
		archives: make(map[string]bool),
	}
	outcomes := make([]outcome, len(jobs))

	semaphore := make(chan struct{}, e.opts.MaxConcurrency)
	var wg sync.WaitGroup
	var launchErr error

launch:
	for i, j := range jobs {
		if err := ctx.Err(); err != nil {
			launchErr = err
			break
		}
		select {
		case <-ctx.Done():
			launchErr = ctx.Err()
			break launch
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, j job) {
			defer wg.Done()
			defer func() { <-semaphore }()

			outcomes[i] = e.copyIdentifier(r, j)
			e.finish(r, j.key)
		}(i, j)
	}
	wg.Wait()

	for _, o := range outcomes {
		report.Entries = append(report.Entries, o.entries...)
		report.Errors = append(report.Errors, o.errors...)
		report.Copied += o.copied
		report.BytesCopied += o.bytes
		if o.created {
			report.DirsCreated++
		}
	}
	report.SkippedArchives = r.skippedArchives
	report.Duration = time.Since(start)

	e.opts.Logger.LogCopySummary(report)
	return report, launchErr
}

// finish reports that key is done.
func (e *Engine) finish(r *run, key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.done++
	e.opts.Logger.LogCopyProgress(key, r.done, r.total)
	if e.opts.OnIdentifier != nil {
		e.opts.OnIdentifier(key)
	}
}

// copyIdentifier copies one identifier's paths. Names claimed in this run
// are tracked per identifier directory, which only this job writes to.
func (e *Engine) copyIdentifier(r *run, j job) outcome {
	var out outcome
	dir := filepath.Join(r.destRoot, j.key)

	if !e.opts.DryRun {
		if err := os.MkdirAll(dir, 0755); err != nil {
			e.recordError(&out, j.key, dir, fmt.Errorf("create identifier directory: %w", err))
			return out
		}
	}
	out.created = true

	claimed := make(map[string]bool)
	for _, src := range j.paths {
		// Stat follows symlinks: a link to a directory is copied as a tree.
		info, err := os.Stat(src)
		if err != nil {
			e.recordError(&out, j.key, src, err)
			continue
		}

		switch {
		case info.IsDir():
			e.copyDir(&out, j.key, dir, src, claimed)
		case e.inspector.IsArchive(src):
			e.copyArchive(&out, r, j.key, src)
		default:
			e.copyFile(&out, j.key, dir, src, claimed)
		}
	}
	return out
}

// copyFile copies src into dir. A name claimed earlier in this run, or
// occupied by a directory, is diverted; an ordinary file left by a previous
// run is overwritten.
func (e *Engine) copyFile(out *outcome, key, dir, src string, claimed map[string]bool) {
	base := filepath.Base(src)
	name := base

	if claimed[base] || isDir(filepath.Join(dir, base)) {
		name = fileutil.CollisionName(dir, base, false, func(n string) bool { return claimed[n] })
		e.recordDuplicate(out, models.Duplicate{
			Identifier:  key,
			Source:      src,
			Basename:    base,
			Destination: filepath.Join(dir, name),
		})
	}
	claimed[name] = true

	dst := filepath.Join(dir, name)
	if e.opts.DryRun {
		e.opts.Logger.LogDebug(fmt.Sprintf("Would copy %s to %s", src, dst))
		out.copied++
		return
	}

	n, err := fileutil.CopyFile(src, dst)
	out.bytes += n
	if err != nil {
		e.recordError(out, key, src, err)
		return
	}
	out.copied++
	e.opts.Logger.LogDebug(fmt.Sprintf("Copied %s to %s", src, dst))
}

// copyDir copies the tree at src into dir. Any existing destination, from
// this run or an earlier one, diverts the copy.
func (e *Engine) copyDir(out *outcome, key, dir, src string, claimed map[string]bool) {
	base := filepath.Base(src)
	name := base

	if claimed[base] || fileutil.Exists(filepath.Join(dir, base)) {
		name = fileutil.CollisionName(dir, base, true, func(n string) bool { return claimed[n] })
		e.recordDuplicate(out, models.Duplicate{
			Identifier:  key,
			Source:      src,
			Basename:    base,
			Destination: filepath.Join(dir, name),
			IsDir:       true,
		})
	}
	claimed[name] = true

	dst := filepath.Join(dir, name)
	if e.opts.DryRun {
		e.opts.Logger.LogDebug(fmt.Sprintf("Would copy folder %s to %s", src, dst))
		out.copied++
		return
	}

	n, err := fileutil.CopyTree(src, dst)
	out.bytes += n
	if err != nil {
		e.recordError(out, key, src, err)
		return
	}
	out.copied++
	e.opts.Logger.LogDebug(fmt.Sprintf("Copied folder %s to %s", src, dst))
}

// copyArchive copies src directly under the destination root unless an
// archive of the same name is already there. The name is reserved under the
// run lock, since several identifiers may match one archive, and copied
// outside it.
func (e *Engine) copyArchive(out *outcome, r *run, key, src string) {
	base := filepath.Base(src)
	dst := filepath.Join(r.destRoot, base)

	if !r.reserveArchive(base, dst) {
		e.opts.Logger.LogDebug(fmt.Sprintf("Archive %s already present under %s; skipping", base, r.destRoot))
		return
	}

	if e.opts.DryRun {
		e.opts.Logger.LogDebug(fmt.Sprintf("Would copy archive %s to %s", src, dst))
		out.copied++
		return
	}

	n, err := fileutil.CopyFile(src, dst)
	out.bytes += n
	if err != nil {
		e.recordError(out, key, src, err)
		return
	}
	out.copied++
	e.opts.Logger.LogDebug(fmt.Sprintf("Copied archive %s to %s", src, dst))
}

// reserveArchive claims base for this run. It reports false, and counts a
// skip, when base was already claimed or dst already exists.
func (r *run) reserveArchive(base, dst string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.archives[base] || fileutil.Exists(dst) {
		r.skippedArchives++
		return false
	}
	r.archives[base] = true
	return true
}

func (e *Engine) recordDuplicate(out *outcome, d models.Duplicate) {
	out.entries = append(out.entries, d)
	e.opts.Logger.LogWarn(fmt.Sprintf("Duplicate name %s for identifier %s; copying to %s", d.Name(), d.Identifier, d.Destination))
}

func (e *Engine) recordError(out *outcome, key, src string, err error) {
	ce := models.CopyError{Identifier: key, Source: src, Err: err}
	out.errors = append(out.errors, ce)
	e.opts.Logger.LogError(ce.Error())
}

func isDir(path string) bool {
	info, err := os.Lstat(path)
	return err == nil && info.IsDir()
}
