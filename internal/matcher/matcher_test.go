package matcher

import (
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/mrncopy/internal/models"
)

func TestMatchesIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		filename   string
		want       bool
	}{
		{"embedded with separators", "550", "t2scans550_01", true},
		{"trailing digit", "550", "5500.txt", false},
		{"leading digit", "550", "mri1550", false},
		{"zero padded", "550", "00550.txt", true},
		{"exact", "55081", "55081", true},
		{"prefixed", "55081", "scans55081_01", true},
		{"padded with extension", "55081", "0055081.txt", true},
		{"dash suffix", "55081", "t2scans55081-01", true},
		{"unrelated", "55081", "something completely off", false},
		{"longer number", "55081", "550810", false},
		{"digit before", "55081", "scans155081", false},
		{"longer with extension", "55081", "550811.txt", false},
		{"second occurrence bounded", "550", "5501_550", true},
		{"zeros after digit", "550", "100550", false},
		{"case sensitive alphanumeric", "ACC12", "acc12.dcm", false},
		{"alphanumeric", "ACC12", "study_ACC12.dcm", true},
		{"alphanumeric digit boundary", "ACC12", "ACC123", false},
		{"empty identifier", "", "550", false},
		{"empty name", "550", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchesIdentifier(tt.identifier, tt.filename))
		})
	}
}

func TestMatchesIdentifierProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	letters := "abcxyz_-. "

	noise := func(n int) string {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(letters[rng.Intn(len(letters))])
		}
		return b.String()
	}
	randomID := func() string {
		var b strings.Builder
		b.WriteByte(byte('1' + rng.Intn(9)))
		for i := rng.Intn(8); i > 0; i-- {
			b.WriteByte(byte('0' + rng.Intn(10)))
		}
		return b.String()
	}

	for i := 0; i < 500; i++ {
		id := randomID()
		prefix := noise(rng.Intn(4))
		suffix := noise(rng.Intn(4))
		padding := strings.Repeat("0", rng.Intn(3))
		nonZero := string(byte('1' + rng.Intn(9)))
		anyDigit := string(byte('0' + rng.Intn(10)))

		// Bounded by non-digits, optionally zero padded: always a match.
		name := prefix + padding + id + suffix
		require.True(t, MatchesIdentifier(id, name), "id=%s name=%q", id, name)

		// A non-zero digit on the left disqualifies.
		name = prefix + nonZero + padding + id + suffix
		require.False(t, MatchesIdentifier(id, name), "id=%s name=%q", id, name)

		// Any digit on the right disqualifies.
		name = prefix + padding + id + anyDigit + suffix
		require.False(t, MatchesIdentifier(id, name), "id=%s name=%q", id, name)
	}
}

// LooksLikeSomeIdentifier is only used to prune directories. A false
// positive hides a directory that may hold real matches, so these vectors
// pin the heuristic to rejecting anything that is not exactly width digits.
func TestLooksLikeSomeIdentifier(t *testing.T) {
	positive := []string{"5508141", "scans1234567_01", "0508141.txt", "5508141_01"}
	negative := []string{
		"something completely off",
		"t2scans_0001",  // too short
		"scans20161004", // date-like, too long
		"05-19-17.txt",  // date with separators
		"55081411",
		"",
	}

	for _, name := range positive {
		assert.True(t, LooksLikeSomeIdentifier(name, 7), "expected %q to look like an identifier", name)
	}
	for _, name := range negative {
		assert.False(t, LooksLikeSomeIdentifier(name, 7), "expected %q not to look like an identifier", name)
	}

	t.Run("width five", func(t *testing.T) {
		assert.True(t, LooksLikeSomeIdentifier("99999", 5))
		assert.False(t, LooksLikeSomeIdentifier("5508141", 5))
	})

	t.Run("non-positive width never matches", func(t *testing.T) {
		assert.False(t, LooksLikeSomeIdentifier("1234567", 0))
		assert.False(t, LooksLikeSomeIdentifier("1234567", -1))
	})
}

func TestNormalizeIdentifier(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr error
	}{
		{raw: "55081", want: "55081"},
		{raw: "  0055081 ", want: "55081"},
		{raw: "000", want: "0"},
		{raw: "ACC0012", want: "ACC0012"},
		{raw: "0A12", want: "0A12"},
		{raw: "", wantErr: ErrEmptyIdentifier},
		{raw: "   ", wantErr: ErrEmptyIdentifier},
		{raw: "550/81", wantErr: ErrInvalidIdentifier},
		{raw: "55 081", wantErr: ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := NormalizeIdentifier(tt.raw)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIdentifiers(t *testing.T) {
	ids, err := ParseIdentifiers([]string{"0550", " 55081"})
	require.NoError(t, err)
	assert.Equal(t, []models.Identifier{
		{Key: "0550", Needle: "550"},
		{Key: "55081", Needle: "55081"},
	}, ids)

	_, err = ParseIdentifiers([]string{"550", ""})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyIdentifier)
	assert.Contains(t, err.Error(), "identifier 2")
}

func TestMatcherIsTarget(t *testing.T) {
	m := New(7)
	ids := []models.Identifier{{Key: "55081", Needle: "55081"}}

	assert.True(t, m.IsTarget(ids, "55081"))
	assert.True(t, m.IsTarget(ids, "0055081"))
	assert.False(t, m.IsTarget(ids, "5508141"))
	assert.False(t, m.IsTarget(ids, "scans55081"))
}

func TestMatcherMatchingIdentifiers(t *testing.T) {
	m := New(0)
	assert.Equal(t, DefaultWidth, m.Width)

	ids := []models.Identifier{
		{Key: "550", Needle: "550"},
		{Key: "0550", Needle: "550"},
		{Key: "81", Needle: "81"},
	}
	got := m.MatchingIdentifiers(ids, "scan_550_x")
	require.Len(t, got, 2)
	assert.Equal(t, "550", got[0].Key)
	assert.Equal(t, "0550", got[1].Key)

	assert.Empty(t, m.MatchingIdentifiers(ids, "nothing"))
}
