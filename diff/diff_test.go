package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeIdentical(t *testing.T) {
	got := Compute("one two\nthree\n", "one two\nthree\n")
	assert.Equal(t, Result{TotalLines: 3, TotalChars: 14, TotalWords: 3}, got)
}

func TestComputeAddedLines(t *testing.T) {
	got := Compute("a\nb\n", "a\nb\nc\nd\n")
	assert.Equal(t, 2, got.LinesAdded)
	assert.Equal(t, 0, got.LinesRemoved)
	assert.Equal(t, 0, got.LinesModified)
	assert.Equal(t, 2, got.WordsAdded)
	assert.Equal(t, 4, got.CharsAdded)
	assert.Equal(t, 5, got.TotalLines)
}

func TestComputeRemovedLines(t *testing.T) {
	got := Compute("a\nb\nc\n", "a\n")
	assert.Equal(t, 0, got.LinesAdded)
	assert.Equal(t, 2, got.LinesRemoved)
	assert.Equal(t, 2, got.WordsRemoved)
	assert.Equal(t, 4, got.CharsRemoved)
}

func TestComputeModifiedLines(t *testing.T) {
	got := Compute("title\nold line\nend\n", "title\nnew line\nextra\nend\n")
	assert.Equal(t, 1, got.LinesModified)
	assert.Equal(t, 1, got.LinesAdded)
	assert.Equal(t, 0, got.LinesRemoved)
}

func TestComputeCountsRunes(t *testing.T) {
	got := Compute("café", "cafés")
	assert.Equal(t, 1, got.CharsAdded)
	assert.Equal(t, 5, got.TotalChars)
	assert.Equal(t, 1, got.LinesModified)
}

func TestComputeEmpty(t *testing.T) {
	got := Compute("", "")
	assert.Equal(t, 1, got.TotalLines)
	assert.Zero(t, got.TotalWords)
}

func TestServiceCaches(t *testing.T) {
	s := NewService()

	first := s.Calculate("a", "b")
	second := s.Calculate("a", "b")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, s.Len())

	s.Calculate("ab", "")
	s.Calculate("a", "b")
	assert.Equal(t, 2, s.Len())
}

func TestServiceEvictsHalf(t *testing.T) {
	s := NewService()
	for i := 0; i < CacheSize; i++ {
		s.Calculate("base", fmt.Sprint(i))
	}
	require.Equal(t, CacheSize, s.Len())

	s.Calculate("base", "one more")
	assert.Equal(t, CacheSize/2+1, s.Len())

	s.mu.RLock()
	_, oldest := s.cache[cacheKey("base", "0")]
	_, newest := s.cache[cacheKey("base", fmt.Sprint(CacheSize-1))]
	s.mu.RUnlock()
	assert.False(t, oldest)
	assert.True(t, newest)
}

func TestCacheKeyIsUnambiguous(t *testing.T) {
	assert.NotEqual(t, cacheKey("a|", "b"), cacheKey("a", "|b"))
	assert.NotEqual(t, cacheKey("ab", ""), cacheKey("a", "b"))
}

func TestUnified(t *testing.T) {
	out, err := Unified("a\nb\n", "a\nc\n", 1)
	require.NoError(t, err)
	assert.Contains(t, out, "--- saved")
	assert.Contains(t, out, "+++ current")
	assert.Contains(t, out, "-b")
	assert.Contains(t, out, "+c")
}
