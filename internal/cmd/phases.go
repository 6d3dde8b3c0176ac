package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/mrncopy/internal/archive"
	"github.com/harrison/mrncopy/internal/copier"
	"github.com/harrison/mrncopy/internal/display"
	"github.com/harrison/mrncopy/internal/exclusion"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
	"github.com/harrison/mrncopy/internal/report"
	"github.com/harrison/mrncopy/internal/walker"
)

// searchPhase walks root for ids and writes the match table and walk audit.
// A cancelled walk still writes what it found before returning ctx.Err().
func (s *session) searchPhase(ctx context.Context, root string, ids []models.Identifier) (*walker.Result, error) {
	tokens, err := absTokens(s.cfg.Exclude)
	if err != nil {
		return nil, err
	}

	m := matcher.New(s.cfg.IdentifierWidth)
	w := walker.New(walker.Options{
		ProgressInterval: s.cfg.ProgressInterval,
		Matcher:          m,
		Inspector:        archive.NewInspector(s.cfg.ArchiveExtensions, s.log),
		Policy:           exclusion.NewPolicy(tokens, m, s.log),
		Logger:           s.log,
	})

	result, walkErr := w.Walk(ctx, root, ids)
	if result == nil {
		return nil, fmt.Errorf("search failed: %w", walkErr)
	}
	s.beginAudit(ctx, result.Root, ids)

	matchPath, err := s.files.WriteMatches(result.Matches)
	if err != nil {
		return nil, fmt.Errorf("failed to write match table: %w", err)
	}
	s.log.LogInfo(fmt.Sprintf("Match table written to %s", matchPath))

	auditPath, err := s.files.WriteAudit(result.Root, result.Record, result.Summary)
	if err != nil {
		return nil, fmt.Errorf("failed to write walk audit: %w", err)
	}
	s.log.LogInfo(fmt.Sprintf("Walk audit written to %s", auditPath))

	if s.auditStarted {
		s.auditWarn(s.store.RecordWalk(context.WithoutCancel(ctx), s.runID, result.Matches, result.Record, result.Summary))
	}

	if walkErr != nil {
		return result, fmt.Errorf("search interrupted: %w", walkErr)
	}
	return result, nil
}

// copyPhase copies matches under the configured destination, writes the
// duplicates log and shows the outcome. It returns an error for fatal copy
// failures, and for per-path failures when strict is set.
func (s *session) copyPhase(ctx context.Context, matches *models.MatchMap) (*models.DuplicateReport, error) {
	destRoot, err := filepath.Abs(s.cfg.CopyDir)
	if err != nil {
		return nil, fmt.Errorf("resolve destination %s: %w", s.cfg.CopyDir, err)
	}

	pending := matches.WithMatches()
	if len(pending) == 0 {
		fmt.Fprintln(s.out, "No matches to copy.")
		return &models.DuplicateReport{}, nil
	}

	progress := display.NewProgressIndicator(s.out, len(pending), s.useColor)
	engine := copier.New(copier.Options{
		ArchiveExtensions: s.cfg.ArchiveExtensions,
		MaxConcurrency:    s.cfg.MaxConcurrency,
		DryRun:            s.cfg.DryRun,
		Logger:            s.log,
		OnIdentifier: func(key string) {
			progress.Step(key, len(matches.Paths(key)))
		},
	})

	if s.cfg.DryRun {
		fmt.Fprintln(s.out, "Dry run: nothing will be written.")
	}
	progress.Start(destRoot)
	rep, copyErr := engine.CopyMatches(ctx, matches, destRoot)
	if rep == nil {
		return nil, fmt.Errorf("copy failed: %w", copyErr)
	}
	progress.Complete(rep)

	if s.auditStarted {
		s.auditWarn(s.store.RecordCopy(context.WithoutCancel(ctx), s.runID, destRoot, s.cfg.DryRun, rep))
	}

	var dupPath string
	if !s.cfg.DryRun {
		dupPath, err = s.files.WriteDuplicates(rep)
		if err != nil {
			return rep, fmt.Errorf("failed to write duplicates log: %w", err)
		}
	}
	if w, ok := display.DuplicatesWarning(rep, dupPath); ok {
		w.Display(s.out, s.useColor)
	}
	if w, ok := display.CopyErrorsWarning(rep); ok {
		w.Display(s.out, s.useColor)
	}

	if copyErr != nil {
		return rep, fmt.Errorf("copy interrupted: %w", copyErr)
	}
	if s.cfg.Strict && len(rep.Errors) > 0 {
		return rep, fmt.Errorf("%d paths failed to copy", len(rep.Errors))
	}
	return rep, nil
}

// printSummary renders the per-identifier table to the command output.
func (s *session) printSummary(matches *models.MatchMap, rep *models.DuplicateReport) {
	fmt.Fprintln(s.out)
	fmt.Fprintln(s.out, report.RenderSummary(matches, rep))
}
