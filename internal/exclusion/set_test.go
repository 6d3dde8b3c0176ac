package exclusion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetContains(t *testing.T) {
	s := NewSet("/data/private/", " ")

	assert.True(t, s.Contains("/data/private"))
	assert.True(t, s.Contains("/data/private/a/b"))
	assert.False(t, s.Contains("/data/privateer"))
	assert.False(t, s.Contains("/data"))
	assert.Equal(t, 1, s.Len())
}

func TestSetAdd(t *testing.T) {
	s := NewSet()
	assert.Zero(t, s.Seen("5508141"))

	s.Add("/a/5508141")
	assert.Equal(t, 1, s.Seen("5508141"))
	s.Add("/b/5508141")
	s.Add("/b/7777777")
	s.Add("/a/5508141")

	assert.Equal(t, []string{"/a/5508141", "/b/5508141", "/b/7777777"}, s.Paths())
	assert.Equal(t, 3, s.Seen("5508141"), "every prune counts, even of a known path")
	assert.Equal(t, 1, s.Seen("7777777"))
	assert.True(t, s.Contains("/b/7777777/sub"))
}
