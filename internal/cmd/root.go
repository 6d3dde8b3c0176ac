package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for mrncopy
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mrncopy",
		Short: "Find and copy every file and folder belonging to a list of identifiers",
		Long: `mrncopy searches a shared directory tree for files and folders whose
names carry one of a list of identifiers (patient or accession numbers),
skipping folders that belong to somebody else, and copies every match into
one folder per identifier.

Archives are inspected by member name; a matching archive is copied once
into the destination root. Name collisions are copied under a _dupN name and
listed in duplicates.log.

Configuration is loaded from .mrncopy/config.yaml (or config.toml) if
present, else from the user config directory. CLI flags override it.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewSearchCommand())
	cmd.AddCommand(NewCopyCommand())
	cmd.AddCommand(NewMatchCommand())

	return cmd
}
