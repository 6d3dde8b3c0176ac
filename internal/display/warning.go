package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/mrncopy/internal/models"
)

// maxListed caps how many items a warning lists before summarizing the rest.
const maxListed = 10

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Items      []string // Related paths or names (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning, in yellow when useColor is set.
func (w Warning) Display(out io.Writer, useColor bool) {
	var b strings.Builder

	b.WriteString("Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	for i, item := range w.Items {
		if i == maxListed {
			fmt.Fprintf(&b, "      ... and %d more\n", len(w.Items)-maxListed)
			break
		}
		fmt.Fprintf(&b, "      %d. %s\n", i+1, item)
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion: ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	c := color.New(color.FgYellow)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprint(out, b.String())
}

// DuplicatesWarning describes the collisions of a copy run. ok is false when
// there were none.
func DuplicatesWarning(r *models.DuplicateReport, logPath string) (Warning, bool) {
	if r == nil || !r.HasDuplicates() {
		return Warning{}, false
	}
	items := make([]string, 0, len(r.Entries))
	for _, d := range r.Entries {
		items = append(items, fmt.Sprintf("%s -> %s", d.Source, d.Destination))
	}
	w := Warning{
		Title:   fmt.Sprintf("%d duplicate names were copied under new names", len(r.Entries)),
		Message: "Files or folders with the same name were found for one identifier.",
		Items:   items,
	}
	if logPath != "" {
		w.Suggestion = "Review " + logPath
	}
	return w, true
}

// CopyErrorsWarning describes the failed copies of a run. ok is false when
// there were none.
func CopyErrorsWarning(r *models.DuplicateReport) (Warning, bool) {
	if r == nil || len(r.Errors) == 0 {
		return Warning{}, false
	}
	items := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		items = append(items, e.Error())
	}
	return Warning{
		Title:      fmt.Sprintf("%d paths could not be copied", len(r.Errors)),
		Items:      items,
		Suggestion: "Check permissions on the listed paths and run the copy again",
	}, true
}
