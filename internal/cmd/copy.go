package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harrison/mrncopy/internal/report"
)

// NewCopyCommand creates the copy command
func NewCopyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy [match-table]",
		Short: "Copy the matches listed in a match table",
		Long: `Copy the paths listed in a match table written by "mrncopy search".
Rows may be edited or deleted before copying; each row is an identifier
followed by its matched paths.

The table defaults to the configured match file in the output directory.

Examples:
  mrncopy copy
  mrncopy copy FileCopyDirectory.csv --dest ./out --max-concurrency 4`,
		Args: cobra.MaximumNArgs(1),
		RunE: copyCommand,
	}

	addConfigFlags(cmd)
	addCopyFlags(cmd)

	return cmd
}

func copyCommand(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	tablePath := s.files.MatchPath()
	if len(args) == 1 {
		tablePath = args[0]
	}
	f, err := os.Open(tablePath)
	if err != nil {
		return fmt.Errorf("failed to open match table: %w", err)
	}
	matches, err := report.ReadMatchTable(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("failed to read match table %s: %w", tablePath, err)
	}
	s.log.LogInfo(fmt.Sprintf("Loaded %d paths for %d identifiers from %s", matches.Total(), matches.Len(), tablePath))

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	s.beginAudit(ctx, tablePath, matches.Identifiers())
	defer s.finishAudit(ctx)

	rep, err := s.copyPhase(ctx, matches)
	if rep != nil {
		s.printSummary(matches, rep)
	}
	return err
}
