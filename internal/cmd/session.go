package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/harrison/mrncopy/internal/audit"
	"github.com/harrison/mrncopy/internal/config"
	"github.com/harrison/mrncopy/internal/idsource"
	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/models"
	"github.com/harrison/mrncopy/internal/report"
)

// ErrNoIdentifiers is returned when neither --id nor --ids-file yields any.
var ErrNoIdentifiers = errors.New("no identifiers given (use --id or --ids-file)")

// session is the state shared by the phases of one command invocation.
type session struct {
	cfg        *config.Config
	configPath string
	runID      string

	out      io.Writer
	errOut   io.Writer
	useColor bool

	log     logger.Logger
	fileLog *logger.FileLogger
	store   *audit.Store
	files   *report.Files

	auditStarted bool
}

// addConfigFlags registers the flags every command that runs a phase shares.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "Path to config file (default: .mrncopy/config.yaml)")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files (\"\" in config disables them)")
	cmd.Flags().String("output", "", "Directory for the match table, duplicates log and walk audit")
	cmd.Flags().String("audit-db", "", "Path to a sqlite audit database to record this run in")
}

// addIdentifierFlags registers the identifier input flags.
func addIdentifierFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("id", nil, "Identifier to search for (repeatable, comma-separated)")
	cmd.Flags().StringSlice("ids-file", nil, "File of identifiers: .txt, .csv, .yaml or .md (repeatable)")
	cmd.Flags().Int("csv-column", 0, "Zero-based column holding identifiers in CSV files")
	cmd.Flags().Bool("csv-header", false, "CSV identifier files start with a header row")
}

// addSearchFlags registers the flags that shape the walk.
func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("exclude", nil, "Skip folders whose name contains this text, or paths under this prefix (repeatable)")
	cmd.Flags().Int("width", 0, "Digit count of a well-formed identifier (default 7)")
	cmd.Flags().Int("progress-every", 0, "Log progress every N directories")
	cmd.Flags().StringSlice("archive-ext", nil, "Archive extensions whose member names are searched (default .zip)")
}

// addCopyFlags registers the flags that shape the copy.
func addCopyFlags(cmd *cobra.Command) {
	cmd.Flags().String("dest", "", "Destination root for copies (default FileCopyResults)")
	cmd.Flags().Int("max-concurrency", 0, "Identifiers copied in parallel")
	cmd.Flags().Bool("dry-run", false, "Report what would be copied without writing anything")
	cmd.Flags().Bool("strict", false, "Exit non-zero when any path fails to copy")
}

// loadConfig loads the config file named by --config, or the one that
// applies to the working directory, and merges the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, statErr)
		}
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		configPath = config.FindConfig(".")
		cfg, err = config.LoadConfigFromDir(".")
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.MergeWithFlags(overridesFromFlags(cmd))

	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, configPath, nil
}

// overridesFromFlags collects the flags the user actually set. Flags a
// command does not define are skipped.
func overridesFromFlags(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	flags := cmd.Flags()
	changed := func(name string) bool {
		return flags.Lookup(name) != nil && flags.Changed(name)
	}
	intFlag := func(name string) *int {
		if !changed(name) {
			return nil
		}
		v, _ := flags.GetInt(name)
		return &v
	}
	stringFlag := func(name string) *string {
		if !changed(name) {
			return nil
		}
		v, _ := flags.GetString(name)
		return &v
	}
	boolFlag := func(name string) *bool {
		if !changed(name) {
			return nil
		}
		v, _ := flags.GetBool(name)
		return &v
	}

	o.IdentifierWidth = intFlag("width")
	o.ProgressInterval = intFlag("progress-every")
	o.MaxConcurrency = intFlag("max-concurrency")
	o.OutputDir = stringFlag("output")
	o.CopyDir = stringFlag("dest")
	o.AuditDB = stringFlag("audit-db")
	o.LogLevel = stringFlag("log-level")
	o.LogDir = stringFlag("log-dir")
	o.DryRun = boolFlag("dry-run")
	o.Strict = boolFlag("strict")
	if changed("archive-ext") {
		o.ArchiveExtensions, _ = flags.GetStringSlice("archive-ext")
	}
	if changed("exclude") {
		o.Exclude, _ = flags.GetStringSlice("exclude")
	}
	return o
}

// newSession loads config and opens the log sinks and the audit store.
// The caller must call close.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, configPath, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:        cfg,
		configPath: configPath,
		runID:      uuid.New().String(),
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
	}
	s.useColor = colorEnabled(s.out)

	console := logger.NewConsoleLogger(s.errOut, cfg.LogLevel)
	console.SetColor(colorEnabled(s.errOut))
	sinks := []logger.Logger{console}
	if cfg.LogDir != "" {
		s.fileLog, err = logger.NewFileLogger(cfg.LogDir, cfg.LogLevel, s.runID)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
		sinks = append(sinks, s.fileLog)
	}
	s.log = logger.NewMultiLogger(sinks...)

	if cfg.AuditDB != "" {
		s.store, err = audit.NewStore(cfg.AuditDB)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
	}

	s.files = report.NewFiles(cfg.OutputDir)
	s.files.MatchFile = cfg.MatchFile
	s.files.DuplicatesFile = cfg.DuplicatesFile
	s.files.AuditFile = cfg.AuditFile

	if configPath != "" {
		s.log.LogDebug(fmt.Sprintf("Loaded config from %s", configPath))
	}
	s.log.LogDebug(fmt.Sprintf("Run ID %s", s.runID))
	return s, nil
}

func (s *session) close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.fileLog != nil {
		s.fileLog.Close()
	}
}

// auditWarn logs a failed audit write. The audit database is a side record
// and never fails a run.
func (s *session) auditWarn(err error) {
	if err != nil {
		s.log.LogWarn(fmt.Sprintf("Audit database: %v", err))
	}
}

// beginAudit records the run in the audit store, if one is open.
func (s *session) beginAudit(ctx context.Context, root string, ids []models.Identifier) {
	if s.store == nil {
		return
	}
	err := s.store.BeginRun(context.WithoutCancel(ctx), s.runID, root, ids)
	s.auditWarn(err)
	s.auditStarted = err == nil
}

// finishAudit stamps the run as finished, if it was recorded.
func (s *session) finishAudit(ctx context.Context) {
	if s.auditStarted {
		s.auditWarn(s.store.FinishRun(context.WithoutCancel(ctx), s.runID))
	}
}

// loadIdentifiers reads --ids-file and --id.
func loadIdentifiers(cmd *cobra.Command) ([]models.Identifier, error) {
	files, _ := cmd.Flags().GetStringSlice("ids-file")
	inline, _ := cmd.Flags().GetStringSlice("id")
	column, _ := cmd.Flags().GetInt("csv-column")
	header, _ := cmd.Flags().GetBool("csv-header")

	ids, err := idsource.Load(files, inline, idsource.Options{Column: column, Header: header})
	if err != nil {
		return nil, fmt.Errorf("failed to load identifiers: %w", err)
	}
	if len(ids) == 0 {
		return nil, ErrNoIdentifiers
	}
	return ids, nil
}

// absTokens makes path-prefix exclusion tokens absolute so they compare
// against the absolute paths the walk produces. Name tokens are unchanged.
func absTokens(tokens []string) ([]string, error) {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if strings.ContainsRune(tok, filepath.Separator) || strings.ContainsRune(tok, '/') {
			abs, err := filepath.Abs(tok)
			if err != nil {
				return nil, fmt.Errorf("resolve exclusion %s: %w", tok, err)
			}
			tok = abs
		}
		out = append(out, tok)
	}
	return out, nil
}

// colorEnabled reports whether w is a color-capable terminal.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
