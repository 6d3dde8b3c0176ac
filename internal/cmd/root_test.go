package cmd

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// workspace is a scratch search tree plus config pointing every output into
// a temp directory.
type workspace struct {
	root   string
	out    string
	dest   string
	config string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	base := t.TempDir()
	ws := &workspace{
		root:   filepath.Join(base, "share"),
		out:    filepath.Join(base, "reports"),
		dest:   filepath.Join(base, "copies"),
		config: filepath.Join(base, "config.yaml"),
	}

	files := map[string]string{
		"a/55081_scan.txt":      "scan",
		"a/unrelated.txt":       "nope",
		"t2_55081/inner.txt":    "inner",
		"5508141/55081.txt":     "foreign",
		"Archive/55081_old.txt": "old",
	}
	for rel, content := range files {
		p := filepath.Join(ws.root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	zipPath := filepath.Join(ws.root, "b", "export.zip")
	require.NoError(t, os.MkdirAll(filepath.Dir(zipPath), 0755))
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("studies/55081.dcm")
	require.NoError(t, err)
	_, err = w.Write([]byte("dicom"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	cfg := "output_dir: " + ws.out + "\n" +
		"copy_dir: " + ws.dest + "\n" +
		"log_dir: " + filepath.Join(base, "logs") + "\n" +
		"exclude: [Archive]\n"
	require.NoError(t, os.WriteFile(ws.config, []byte(cfg), 0644))
	return ws
}

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	rootCmd := NewRootCommand()
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "search", "copy", "match"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, root.SilenceUsage)
}

func TestRunCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, stderr, err := executeCommand(t, "run", ws.root, "--config", ws.config, "--id", "55081")
	require.NoError(t, err, stderr)

	assert.FileExists(t, filepath.Join(ws.dest, "55081", "55081_scan.txt"))
	assert.FileExists(t, filepath.Join(ws.dest, "55081", "t2_55081", "inner.txt"))
	assert.FileExists(t, filepath.Join(ws.dest, "export.zip"))
	assert.NoFileExists(t, filepath.Join(ws.dest, "55081", "55081.txt"), "foreign folder must be pruned")
	assert.NoFileExists(t, filepath.Join(ws.dest, "55081", "55081_old.txt"), "excluded folder must be pruned")
	assert.NoFileExists(t, filepath.Join(ws.dest, "55081", "unrelated.txt"))

	assert.FileExists(t, filepath.Join(ws.out, "FileCopyDirectory.csv"))
	assert.FileExists(t, filepath.Join(ws.out, "walk-audit.log"))
	assert.NoFileExists(t, filepath.Join(ws.out, "duplicates.log"))

	assert.Contains(t, stdout, "[1/1] 55081")
	assert.Contains(t, stdout, "Log written to")
	assert.Contains(t, stderr, "Search complete.")
}

func TestRunCommandDuplicates(t *testing.T) {
	ws := newWorkspace(t)
	p := filepath.Join(ws.root, "c", "55081_scan.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte("second"), 0644))

	stdout, _, err := executeCommand(t, "run", ws.root, "--config", ws.config, "--id", "55081")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(ws.dest, "55081", "55081_scan_dup1.txt"))
	data, err := os.ReadFile(filepath.Join(ws.out, "duplicates.log"))
	require.NoError(t, err)
	assert.Equal(t, "55081_scan.txt\n", string(data))
	assert.Contains(t, stdout, "Warning: 1 duplicate")
}

func TestRunCommandDryRun(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := executeCommand(t, "run", ws.root, "--config", ws.config, "--id", "55081", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Dry run")
	assert.NoDirExists(t, ws.dest)
	assert.FileExists(t, filepath.Join(ws.out, "FileCopyDirectory.csv"))
}

func TestRunCommandDestOverride(t *testing.T) {
	ws := newWorkspace(t)
	dest := filepath.Join(t.TempDir(), "elsewhere")

	_, _, err := executeCommand(t, "run", ws.root, "--config", ws.config, "--id", "55081", "--dest", dest)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dest, "55081", "55081_scan.txt"))
	assert.NoDirExists(t, ws.dest)
}

func TestRunCommandAuditDB(t *testing.T) {
	ws := newWorkspace(t)
	db := filepath.Join(t.TempDir(), "audit", "runs.db")

	_, stderr, err := executeCommand(t, "run", ws.root, "--config", ws.config, "--id", "55081", "--audit-db", db)
	require.NoError(t, err)

	assert.FileExists(t, db)
	assert.NotContains(t, stderr, "Audit database")
}

func TestRunCommandIdsFile(t *testing.T) {
	ws := newWorkspace(t)
	idsFile := filepath.Join(t.TempDir(), "ids.csv")
	require.NoError(t, os.WriteFile(idsFile, []byte("name,mrn\nJane,0055081\n"), 0644))

	_, _, err := executeCommand(t, "run", ws.root, "--config", ws.config,
		"--ids-file", idsFile, "--csv-column", "1", "--csv-header")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(ws.dest, "0055081", "55081_scan.txt"))
}

func TestRunCommandErrors(t *testing.T) {
	ws := newWorkspace(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
		is      error
	}{
		{
			name:    "no identifiers",
			args:    []string{"run", ws.root, "--config", ws.config},
			is:      ErrNoIdentifiers,
			wantErr: "no identifiers",
		},
		{
			name:    "bad identifier",
			args:    []string{"run", ws.root, "--config", ws.config, "--id", "55 081"},
			wantErr: "failed to load identifiers",
		},
		{
			name:    "missing root",
			args:    []string{"run", filepath.Join(ws.root, "nope"), "--config", ws.config, "--id", "55081"},
			wantErr: "search failed",
		},
		{
			name:    "missing config",
			args:    []string{"run", ws.root, "--config", filepath.Join(ws.root, "nope.yaml"), "--id", "55081"},
			wantErr: "failed to load config",
		},
		{
			name:    "invalid width",
			args:    []string{"run", ws.root, "--config", ws.config, "--id", "55081", "--width=0"},
			wantErr: "invalid configuration",
		},
		{
			name:    "no root",
			args:    []string{"run", "--config", ws.config, "--id", "55081"},
			wantErr: "accepts 1 arg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			if tt.is != nil {
				assert.True(t, errors.Is(err, tt.is))
			}
		})
	}
}

func TestSearchThenCopy(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := executeCommand(t, "search", ws.root, "--config", ws.config, "--id", "55081,61234")
	require.NoError(t, err)

	table := filepath.Join(ws.out, "FileCopyDirectory.csv")
	assert.Contains(t, stdout, "mrncopy copy "+table)
	assert.NoDirExists(t, ws.dest, "search must not copy")

	data, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Contains(t, string(data), "61234\n")

	// Keep only the scan file row entry for 55081.
	edited := "55081," + filepath.Join(ws.root, "a", "55081_scan.txt") + "\n"
	require.NoError(t, os.WriteFile(table, []byte(edited), 0644))

	stdout, _, err = executeCommand(t, "copy", "--config", ws.config)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(ws.dest, "55081", "55081_scan.txt"))
	assert.NoDirExists(t, filepath.Join(ws.dest, "55081", "t2_55081"))
	assert.Contains(t, stdout, "[1/1] 55081 (1 path)")
}

func TestCopyCommandErrors(t *testing.T) {
	ws := newWorkspace(t)

	_, _, err := executeCommand(t, "copy", filepath.Join(ws.out, "missing.csv"), "--config", ws.config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open match table")

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("not an id,/x\n"), 0644))
	_, _, err = executeCommand(t, "copy", bad, "--config", ws.config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1")
}

func TestCopyCommandNothingToCopy(t *testing.T) {
	ws := newWorkspace(t)
	table := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(table, []byte("55081\n"), 0644))

	stdout, _, err := executeCommand(t, "copy", table, "--config", ws.config)
	require.NoError(t, err)
	assert.Contains(t, stdout, "No matches to copy.")
	assert.NoDirExists(t, ws.dest)
}

func TestMatchCommand(t *testing.T) {
	ws := newWorkspace(t)

	stdout, _, err := executeCommand(t, "match", "t2_55081", "5508141_scan", "Archive_55081",
		filepath.Join(ws.root, "b", "export.zip"),
		"--config", ws.config, "--id", "55081")
	require.NoError(t, err)

	blocks := strings.Split(stdout, "\n\n")
	require.Len(t, blocks, 4)

	assert.Contains(t, blocks[0], "matches: 55081")
	assert.Contains(t, blocks[0], "as a folder: walked")

	assert.Contains(t, blocks[1], "matches: none")
	assert.Contains(t, blocks[1], "identifier-shaped: yes (7-digit run)")
	assert.Contains(t, blocks[1], "as a folder: pruned (foreign)")

	assert.Contains(t, blocks[2], "as a folder: pruned (explicit)")

	assert.Contains(t, blocks[3], "export.zip")
	assert.Contains(t, blocks[3], "archive members match: 55081")
}

func TestOverridesFromFlags(t *testing.T) {
	c := &cobra.Command{Use: "x", RunE: func(*cobra.Command, []string) error { return nil }}
	addConfigFlags(c)
	addSearchFlags(c)
	addCopyFlags(c)
	require.NoError(t, c.ParseFlags([]string{"--width", "6", "--exclude", "A,B", "--dry-run"}))

	o := overridesFromFlags(c)
	require.NotNil(t, o.IdentifierWidth)
	assert.Equal(t, 6, *o.IdentifierWidth)
	assert.Equal(t, []string{"A", "B"}, o.Exclude)
	require.NotNil(t, o.DryRun)
	assert.True(t, *o.DryRun)
	assert.Nil(t, o.ProgressInterval)
	assert.Nil(t, o.ArchiveExtensions)
	assert.Nil(t, o.Strict)
}

func TestAbsTokens(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	got, err := absTokens([]string{"Archive", "old/scans", "/mnt/x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Archive", filepath.Join(wd, "old", "scans"), "/mnt/x"}, got)
}

func TestColorEnabledForBuffers(t *testing.T) {
	assert.False(t, colorEnabled(new(bytes.Buffer)))
}
