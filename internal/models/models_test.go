package models

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewMatchMap(t *testing.T) {
	tests := []struct {
		name     string
		ids      []Identifier
		wantKeys []string
	}{
		{
			name:     "empty",
			ids:      nil,
			wantKeys: []string{},
		},
		{
			name:     "input order kept",
			ids:      []Identifier{{Key: "70000", Needle: "70000"}, {Key: "55081", Needle: "55081"}},
			wantKeys: []string{"70000", "55081"},
		},
		{
			name: "repeated keys collapse",
			ids: []Identifier{
				{Key: "55081", Needle: "55081"},
				{Key: "55081", Needle: "55081"},
			},
			wantKeys: []string{"55081"},
		},
		{
			name: "distinct keys with one needle stay distinct",
			ids: []Identifier{
				{Key: "55081", Needle: "55081"},
				{Key: "0055081", Needle: "55081"},
			},
			wantKeys: []string{"55081", "0055081"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMatchMap(tt.ids)
			assert.Equal(t, tt.wantKeys, m.Keys())
			assert.Equal(t, len(tt.wantKeys), m.Len())
			assert.Zero(t, m.Total())
			for _, k := range tt.wantKeys {
				assert.True(t, m.Has(k))
				assert.NotNil(t, m.Paths(k))
				assert.Empty(t, m.Paths(k))
			}
		})
	}
}

func TestMatchMapAppend(t *testing.T) {
	m := NewMatchMap([]Identifier{{Key: "55081", Needle: "55081"}, {Key: "61234", Needle: "61234"}})

	assert.True(t, m.Append("55081", "/a"))
	assert.True(t, m.Append("55081", "/b"))
	assert.False(t, m.Append("99999", "/c"), "unknown keys are rejected")

	assert.Equal(t, []string{"/a", "/b"}, m.Paths("55081"))
	assert.Equal(t, 2, m.Total())
	assert.Equal(t, []string{"55081"}, m.WithMatches())
	assert.False(t, m.Has("99999"))
	assert.Equal(t, []string{"55081", "61234"}, m.Keys())
}

func TestMatchMapCopiesAreIndependent(t *testing.T) {
	m := NewMatchMap([]Identifier{{Key: "55081", Needle: "55081"}})
	m.Append("55081", "/a")

	paths := m.Paths("55081")
	paths[0] = "/mutated"
	keys := m.Keys()
	keys[0] = "mutated"

	assert.Equal(t, []string{"/a"}, m.Paths("55081"))
	assert.Equal(t, []string{"55081"}, m.Keys())
	assert.Equal(t, []Identifier{{Key: "55081", Needle: "55081"}}, m.Identifiers())
}

func TestDuplicateName(t *testing.T) {
	assert.Equal(t, "scan.txt", Duplicate{Basename: "scan.txt"}.Name())
	assert.Equal(t, "t2_55081/", Duplicate{Basename: "t2_55081", IsDir: true}.Name())
}

func TestDuplicateReport(t *testing.T) {
	r := &DuplicateReport{}
	assert.False(t, r.HasDuplicates())
	assert.Empty(t, r.Names())

	r.Entries = append(r.Entries,
		Duplicate{Basename: "scan.txt"},
		Duplicate{Basename: "t2_55081", IsDir: true},
	)
	assert.True(t, r.HasDuplicates())
	assert.Equal(t, []string{"scan.txt", "t2_55081/"}, r.Names())
}

func TestCopyError(t *testing.T) {
	e := CopyError{Identifier: "55081", Source: "/data/x", Err: fs.ErrPermission}

	assert.Equal(t, "copy /data/x (identifier 55081): permission denied", e.Error())
	assert.True(t, errors.Is(e, fs.ErrPermission))
}

func TestIdentifierString(t *testing.T) {
	assert.Equal(t, "0055081", Identifier{Key: "0055081", Needle: "55081"}.String())
}
