package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/mrncopy/internal/archive"
	"github.com/harrison/mrncopy/internal/exclusion"
	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

// NewMatchCommand creates the match command
func NewMatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <name>...",
		Short: "Explain how names classify against the identifiers",
		Long: `Show, for each name, which identifiers it matches, whether it looks like
some other identifier, and whether a folder with that name would be walked
or pruned. A name that is an existing archive also has its member names
checked.

Examples:
  mrncopy match t2_55081 5508141_scan --id 55081
  mrncopy match /mnt/share/export.zip --ids-file mrns.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: matchCommand,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .mrncopy/config.yaml)")
	addIdentifierFlags(cmd)
	addSearchFlags(cmd)

	return cmd
}

func matchCommand(cmd *cobra.Command, args []string) error {
	ids, err := loadIdentifiers(cmd)
	if err != nil {
		return err
	}
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tokens, err := absTokens(cfg.Exclude)
	if err != nil {
		return err
	}

	log := logger.NewConsoleLogger(cmd.ErrOrStderr(), "warn")
	m := matcher.New(cfg.IdentifierWidth)
	policy := exclusion.NewPolicy(tokens, m, logger.NewNoOpLogger())
	inspector := archive.NewInspector(cfg.ArchiveExtensions, log)

	out := cmd.OutOrStdout()
	for i, arg := range args {
		if i > 0 {
			fmt.Fprintln(out)
		}
		explainName(out, arg, ids, m, policy, inspector)
	}
	return nil
}

// explainName writes the classification of one name.
func explainName(out io.Writer, arg string, ids []models.Identifier, m *matcher.Matcher, policy *exclusion.Policy, inspector *archive.Inspector) {
	name := filepath.Base(arg)
	fmt.Fprintf(out, "%s\n", name)

	fmt.Fprintf(out, "  matches: %s\n", keysOrNone(m.MatchingIdentifiers(ids, name)))

	shaped := "no"
	if m.LooksLikeIdentifier(name) {
		shaped = fmt.Sprintf("yes (%d-digit run)", m.Width)
	}
	fmt.Fprintf(out, "  identifier-shaped: %s\n", shaped)

	dir := filepath.Dir(arg)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	_, pruned := policy.Prune(dir, []string{name}, ids)
	if len(pruned) == 0 {
		fmt.Fprintf(out, "  as a folder: walked\n")
	} else {
		fmt.Fprintf(out, "  as a folder: pruned (%s): %s\n", pruned[0].Rule, pruned[0].Reason)
	}

	if inspector.IsArchive(name) {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			fmt.Fprintf(out, "  archive members match: %s\n", keysOrNone(inspector.MatchingIdentifiers(ids, arg)))
		}
	}
}

func keysOrNone(ids []models.Identifier) string {
	if len(ids) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, id.Key)
	}
	return strings.Join(keys, ", ")
}
