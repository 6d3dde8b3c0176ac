package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/harrison/mrncopy/internal/models"
)

// ProgressIndicator shows one step line per identifier copied.
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int

	step    *color.Color
	success *color.Color
	warn    *color.Color
}

// NewProgressIndicator creates a progress indicator for total identifiers.
func NewProgressIndicator(w io.Writer, total int, useColor bool) *ProgressIndicator {
	p := &ProgressIndicator{
		writer:  w,
		total:   total,
		step:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{p.step, p.success, p.warn} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Start displays the header line.
func (p *ProgressIndicator) Start(destRoot string) {
	fmt.Fprintf(p.writer, "Copying matches for %d identifiers into %s:\n", p.total, destRoot)
}

// Step displays progress for one finished identifier: [N/Total] key (M paths)
func (p *ProgressIndicator) Step(key string, paths int) {
	p.current++
	noun := "paths"
	if paths == 1 {
		noun = "path"
	}
	p.step.Fprintf(p.writer, "  [%d/%d] %s (%d %s)\n", p.current, p.total, key, paths, noun)
}

// Complete displays the closing line. It is green when nothing went wrong
// and yellow when duplicates or errors were recorded.
func (p *ProgressIndicator) Complete(r *models.DuplicateReport) {
	line := fmt.Sprintf("Copied %d paths for %d identifiers", r.Copied, p.current)
	if !r.HasDuplicates() && len(r.Errors) == 0 {
		p.success.Fprintf(p.writer, "✓ %s\n", line)
		return
	}
	p.warn.Fprintf(p.writer, "! %s (%d duplicates, %d errors)\n", line, len(r.Entries), len(r.Errors))
}
