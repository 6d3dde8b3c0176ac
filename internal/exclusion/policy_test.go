package exclusion

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mrncopy/internal/logger"
	"github.com/harrison/mrncopy/internal/matcher"
	"github.com/harrison/mrncopy/internal/models"
)

var target55081 = []models.Identifier{{Key: "55081", Needle: "55081"}}

func TestIsForeign(t *testing.T) {
	p := NewPolicy(nil, matcher.New(7), nil)

	positive := []string{"5508141", "scans1234567_01", "0508141.txt", "5508141_01"}
	negative := []string{"something completely off", "55081", "scans20161004", "t2scans55081-01"}

	for _, name := range positive {
		assert.True(t, p.IsForeign(name, target55081), "expected %q to be foreign", name)
	}
	for _, name := range negative {
		assert.False(t, p.IsForeign(name, target55081), "expected %q not to be foreign", name)
	}
}

func TestIsForeignNeverHidesTargets(t *testing.T) {
	// With a width equal to the target length, target-bearing names look
	// identifier-shaped and must still be kept.
	p := NewPolicy(nil, matcher.New(5), nil)

	assert.False(t, p.IsForeign("55081", target55081))
	assert.False(t, p.IsForeign("0055081", target55081))
	assert.False(t, p.IsForeign("scan_55081", target55081))
	assert.True(t, p.IsForeign("99999", target55081))
	assert.True(t, p.IsForeign("99999", nil))
}

func TestPruneExplicitTokens(t *testing.T) {
	p := NewPolicy([]string{"animal", "", "  "}, matcher.New(7), nil)

	keep, pruned := p.Prune("/data", []string{"animal studies", "humans", "rabbit images"}, target55081)

	assert.Equal(t, []string{"humans", "rabbit images"}, keep)
	require.Len(t, pruned, 1)
	assert.Equal(t, filepath.Join("/data", "animal studies"), pruned[0].Path)
	assert.Equal(t, models.RuleExplicit, pruned[0].Rule)
	assert.Contains(t, pruned[0].Reason, `"animal"`)
}

func TestPruneExplicitBeforeForeign(t *testing.T) {
	p := NewPolicy([]string{"archive"}, matcher.New(7), nil)

	_, pruned := p.Prune("/data", []string{"archive_5508141"}, target55081)

	require.Len(t, pruned, 1)
	assert.Equal(t, models.RuleExplicit, pruned[0].Rule, "a directory gets only the first rule that fires")
}

func TestPruneForeignIdentifiers(t *testing.T) {
	p := NewPolicy(nil, matcher.New(5), nil)

	keep, pruned := p.Prune("/data", []string{"55081", "99999", "notes", "2017"}, target55081)

	assert.Equal(t, []string{"55081", "notes", "2017"}, keep)
	require.Len(t, pruned, 1)
	assert.Equal(t, "/data/99999", pruned[0].Path)
	assert.Equal(t, models.RuleForeign, pruned[0].Rule)
	assert.True(t, p.Set().Contains("/data/99999/inner"))
}

func TestPrunePathPrefixTokens(t *testing.T) {
	p := NewPolicy([]string{"/data/private"}, matcher.New(7), nil)

	keep, pruned := p.Prune("/data", []string{"private", "public"}, target55081)
	assert.Equal(t, []string{"public"}, keep)
	require.Len(t, pruned, 1)
	assert.Equal(t, "path is under an excluded path", pruned[0].Reason)

	// Another folder named "private" elsewhere is unaffected.
	keep, pruned = p.Prune("/other", []string{"private"}, target55081)
	assert.Equal(t, []string{"private"}, keep)
	assert.Empty(t, pruned)
}

func TestPruneDoesNotModifyInput(t *testing.T) {
	p := NewPolicy([]string{"tmp"}, matcher.New(7), nil)
	subdirs := []string{"tmp", "keep"}

	p.Prune("/data", subdirs, nil)

	assert.Equal(t, []string{"tmp", "keep"}, subdirs)
}

func TestPruneLogsRepeatedNamesQuietly(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPolicy([]string{"cache"}, matcher.New(7), logger.NewConsoleLogger(buf, "info"))

	p.Prune("/a", []string{"cache"}, nil)
	p.Prune("/b", []string{"cache"}, nil)

	assert.Contains(t, buf.String(), "Excluding /a/cache")
	assert.NotContains(t, buf.String(), "Excluding /b/cache", "repeated names are logged at debug level")

	debug := &bytes.Buffer{}
	p = NewPolicy([]string{"cache"}, matcher.New(7), logger.NewConsoleLogger(debug, "debug"))
	p.Prune("/a", []string{"cache"}, nil)
	p.Prune("/b", []string{"cache"}, nil)
	assert.Contains(t, debug.String(), "Excluding /b/cache")
	assert.Contains(t, debug.String(), "name pruned 2 times")
	assert.Equal(t, 2, p.Set().Seen("cache"))
	assert.Equal(t, []string{"/a/cache", "/b/cache"}, p.Set().Paths())
}
