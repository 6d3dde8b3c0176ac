package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewSearchCommand creates the search command
func NewSearchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <root>",
		Short: "Find matches and write the match table without copying",
		Long: `Search a directory tree for identifiers and stop after writing the match
table (FileCopyDirectory.csv by default). Review or edit the table, then copy
from it with "mrncopy copy".

Examples:
  mrncopy search /mnt/share --ids-file mrns.txt
  mrncopy search /mnt/share --id 55081,61234 --exclude Archive`,
		Args: cobra.ExactArgs(1),
		RunE: searchCommand,
	}

	addConfigFlags(cmd)
	addIdentifierFlags(cmd)
	addSearchFlags(cmd)

	return cmd
}

func searchCommand(cmd *cobra.Command, args []string) error {
	ids, err := loadIdentifiers(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	defer s.finishAudit(ctx)

	result, err := s.searchPhase(ctx, args[0], ids)
	if result != nil {
		s.printSummary(result.Matches, nil)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "\nMatch table written to %s\n", s.files.MatchPath())
	fmt.Fprintf(s.out, "Review it, then run: mrncopy copy %s\n", s.files.MatchPath())
	return nil
}
