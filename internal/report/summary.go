package report

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/harrison/mrncopy/internal/models"
)

// RenderSummary renders a per-identifier table of match counts. When a copy
// report is given, duplicate and error columns and a totals caption are
// added.
func RenderSummary(matches *models.MatchMap, r *models.DuplicateReport) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"Identifier", "Matches"}
	if r != nil {
		header = append(header, "Duplicates", "Errors")
	}
	tw.AppendHeader(header)

	dups := make(map[string]int)
	errs := make(map[string]int)
	if r != nil {
		for _, d := range r.Entries {
			dups[d.Identifier]++
		}
		for _, e := range r.Errors {
			errs[e.Identifier]++
		}
	}

	total := 0
	for _, key := range matches.Keys() {
		n := len(matches.Paths(key))
		total += n
		row := table.Row{key, strconv.Itoa(n)}
		if r != nil {
			row = append(row, strconv.Itoa(dups[key]), strconv.Itoa(errs[key]))
		}
		tw.AppendRow(row)
	}

	footer := table.Row{"Total", strconv.Itoa(total)}
	if r != nil {
		footer = append(footer, strconv.Itoa(len(r.Entries)), strconv.Itoa(len(r.Errors)))
		tw.SetCaption(fmt.Sprintf("%d copied, %d archives skipped, %s written in %s",
			r.Copied, r.SkippedArchives, humanize.Bytes(uint64(r.BytesCopied)), r.Duration.Round(time.Millisecond)))
	}
	tw.AppendFooter(footer)

	configs := []table.ColumnConfig{{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft}}
	for i := 2; i <= len(header); i++ {
		configs = append(configs, table.ColumnConfig{Number: i, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
