package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/harrison/mrncopy/internal/models"
)

// WriteDuplicates writes one duplicate name per line, directories with a
// trailing slash.
func WriteDuplicates(w io.Writer, r *models.DuplicateReport) error {
	bw := bufio.NewWriter(w)
	for _, name := range r.Names() {
		fmt.Fprintln(bw, name)
	}
	return bw.Flush()
}

// WriteAuditLog writes the walk record: a header with the totals, then
// every visited directory and every pruned one with its rule and reason, in
// the order the walk met them.
func WriteAuditLog(w io.Writer, root string, record models.WalkRecord, summary models.WalkSummary) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# mrncopy walk audit\n")
	fmt.Fprintf(bw, "# root: %s\n", root)
	fmt.Fprintf(bw, "# visited: %d, excluded: %d, matched files: %d, matched folders: %d, read errors: %d\n",
		summary.DirsVisited, summary.DirsExcluded, summary.FilesMatched, summary.DirsMatched, summary.ReadErrors)
	fmt.Fprintf(bw, "# duration: %s\n", summary.Duration)

	for _, dir := range record.Visited {
		fmt.Fprintf(bw, "VISITED\t%s\n", dir)
	}
	for _, ex := range record.Excluded {
		fmt.Fprintf(bw, "EXCLUDED\t%s\t%s\t%s\n", ex.Path, ex.Rule, ex.Reason)
	}
	return bw.Flush()
}
