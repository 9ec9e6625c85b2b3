package stats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	got := Compare(nil, "a b c d e f g h i j", "a b c")
	assert.Equal(t, 10, got.OriginalLength)
	assert.Equal(t, 3, got.SummaryLength)
	assert.InDelta(t, 0.3, got.CompressionRatio, 1e-12)
	assert.Equal(t, 1, got.OriginalReadingTime)
	assert.Equal(t, 1, got.SummaryReadingTime)
}

func TestCompareEmptyOriginal(t *testing.T) {
	got := Compare(nil, "", "")
	assert.Equal(t, SummaryStats{}, got)
}

func TestCompareReadingTime(t *testing.T) {
	long := strings.Repeat("word ", 500)
	got := Compare(nil, long, "word word")
	assert.Equal(t, 3, got.OriginalReadingTime)
	assert.Equal(t, 1, got.SummaryReadingTime)
	assert.InDelta(t, 2.0/500, got.CompressionRatio, 1e-12)
}

func TestCompareOverlap(t *testing.T) {
	got := Compare(nil, "rockets launch quickly", "rockets land")
	// {rockets, launch, quickly} vs {rockets, land}
	assert.InDelta(t, 0.25, got.Overlap, 1e-12)
}
