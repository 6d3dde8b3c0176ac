package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <root>",
		Short: "Search a tree for identifiers and copy every match",
		Long: `Search a directory tree for files and folders named after the given
identifiers, then copy every match into <dest>/<identifier>/.

Folders whose names carry a different identifier are never descended, and
neither are folders matching an --exclude token. Matching archives are
copied once into the destination root.

Examples:
  mrncopy run /mnt/share --ids-file mrns.txt
  mrncopy run /mnt/share --id 0055081 --dest ./out --exclude Archive
  mrncopy run /mnt/share --ids-file mrns.csv --csv-column 2 --csv-header
  mrncopy run /mnt/share --ids-file mrns.yaml --dry-run
  mrncopy run /mnt/share --ids-file mrns.txt --audit-db audit.db --strict`,
		Args: cobra.ExactArgs(1),
		RunE: runCommand,
	}

	addConfigFlags(cmd)
	addIdentifierFlags(cmd)
	addSearchFlags(cmd)
	addCopyFlags(cmd)

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
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
	if err != nil {
		if result != nil {
			s.printSummary(result.Matches, nil)
		}
		return err
	}

	rep, err := s.copyPhase(ctx, result.Matches)
	if rep != nil {
		s.printSummary(result.Matches, rep)
	}
	if err != nil {
		return err
	}

	if s.fileLog != nil {
		fmt.Fprintf(s.out, "Log written to %s\n", s.fileLog.Path())
	}
	return nil
}
