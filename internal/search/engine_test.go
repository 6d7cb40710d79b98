package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loose() *Engine {
	return New([]string{"name", "offers.title"}, Options{Threshold: 0.3, Distance: 100})
}

func indexes(results []Result) []int {
	out := make([]int, 0, len(results))
	for _, r := range results {
		out = append(out, r.Index)
	}
	return out
}

func TestSearchExactBeatsPartial(t *testing.T) {
	docs := []Document{
		{"name": {"Starbucks Reserve"}},
		{"name": {"Star"}},
		{"name": {"Moon"}},
	}

	results := loose().Search(docs, "star")

	assert.Equal(t, []int{1, 0}, indexes(results))
	assert.Less(t, results[0].Score, results[1].Score)
}

func TestSearchToleratesTypos(t *testing.T) {
	docs := []Document{
		{"name": {"Coffee Shop"}},
		{"name": {"Tea House"}},
	}

	assert.Equal(t, []int{0}, indexes(loose().Search(docs, "cofee")))
	assert.Equal(t, []int{0}, indexes(loose().Search(docs, "COFFEE")))
}

func TestSearchRejectsDistantMatches(t *testing.T) {
	far := "this description is long enough that the keyword sits far away: coffee"
	docs := []Document{{"name": {far}}}

	assert.Empty(t, loose().Search(docs, "coffee"))

	anywhere := New([]string{"name"}, Options{Threshold: 0.3, IgnoreLocation: true})
	assert.Equal(t, []int{0}, indexes(anywhere.Search(docs, "coffee")))
}

func TestSearchMatchesNestedValues(t *testing.T) {
	docs := []Document{
		{"name": {"Bookshop"}, "offers.title": {"Free coffee", "Discount"}},
		{"name": {"Bakery"}, "offers.title": {"Buy one get one"}},
	}

	assert.Equal(t, []int{0}, indexes(loose().Search(docs, "discount")))
}

func TestSearchIgnoresUnindexedKeys(t *testing.T) {
	docs := []Document{{"phone": {"coffee"}}}
	assert.Empty(t, loose().Search(docs, "coffee"))
}

func TestSearchEmptyPattern(t *testing.T) {
	assert.Nil(t, loose().Search([]Document{{"name": {"x"}}}, ""))
}

func TestSearchKeepsInputOrderOnTies(t *testing.T) {
	docs := []Document{
		{"name": {"Mall"}},
		{"name": {"Mall"}},
		{"name": {"Mall"}},
	}
	assert.Equal(t, []int{0, 1, 2}, indexes(loose().Search(docs, "mall")))
}

func TestSearchUnicode(t *testing.T) {
	docs := []Document{
		{"name": {"星巴克 信義店"}},
		{"name": {"全家便利商店"}},
	}
	assert.Equal(t, []int{0}, indexes(loose().Search(docs, "星巴克")))
}

func TestSearchLongPattern(t *testing.T) {
	long := "an unusually long store name that exceeds thirty two characters"
	docs := []Document{{"name": {long}}, {"name": {"short"}}}

	results := loose().Search(docs, long[:40])
	require.Len(t, results, 1)
	assert.Equal(t, 0, results[0].Index)
}

func TestFieldNorm(t *testing.T) {
	assert.Equal(t, 1.0, fieldNorm("one"))
	assert.Equal(t, 0.707, fieldNorm("two words"))
	assert.Equal(t, 0.5, fieldNorm("a b  c d"))
}

func TestSplitPattern(t *testing.T) {
	pattern := []rune("0123456789012345678901234567890123456789")
	chunks := splitPattern(pattern)

	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].startIndex)
	assert.Equal(t, 8, chunks[1].startIndex)
	assert.Len(t, chunks[1].pattern, maxBits)
}
