// Package search implements approximate text search over small in-memory
// record sets. Scoring follows the bitap approach: a pattern matches a value
// when it occurs near the start of it with few enough errors, and records are
// ranked by a combined score where lower means more relevant.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// epsilon stands in for a perfect score so it still weighs in the product.
const epsilon = 2.220446049250313e-16

// Options tune matching.
type Options struct {
	// Threshold is the worst score still considered a match (0 exact, 1 anything).
	Threshold float64
	// Location is where in a value the pattern is expected to start.
	Location int
	// Distance is how far from Location a match may drift before it costs a
	// full error. Zero requires matches exactly at Location.
	Distance int
	// IgnoreLocation scores on errors only.
	IgnoreLocation bool
	CaseSensitive  bool
}

// DefaultOptions is a loose matcher.
var DefaultOptions = Options{
	Threshold: 0.6,
	Location:  0,
	Distance:  100,
}

// Document maps dotted field paths (e.g. "offers.title") to the values found
// at that path.
type Document map[string][]string

// Result is one matching document.
type Result struct {
	Index int
	Score float64
}

// Engine searches documents on a fixed set of keys. Keys are weighted equally.
type Engine struct {
	keys   []string
	weight float64
	opts   Options
}

// New returns an engine indexing keys.
func New(keys []string, opts Options) *Engine {
	weight := 1.0
	if len(keys) > 0 {
		weight = 1 / float64(len(keys))
	}
	return &Engine{
		keys:   append([]string(nil), keys...),
		weight: weight,
		opts:   opts,
	}
}

// Search returns the matching documents, most relevant first. Documents with
// equal scores keep their input order.
func (e *Engine) Search(docs []Document, pattern string) []Result {
	if pattern == "" {
		return nil
	}
	if !e.opts.CaseSensitive {
		pattern = strings.ToLower(pattern)
	}
	runes := []rune(pattern)
	chunks := splitPattern(runes)

	results := make([]Result, 0)
	for idx, doc := range docs {
		total := 1.0
		matched := false
		for _, key := range e.keys {
			for _, value := range doc[key] {
				if isBlank(value) {
					continue
				}
				ok, score := e.searchIn(value, runes, chunks)
				if !ok {
					continue
				}
				matched = true
				if score == 0 {
					score = epsilon
				}
				total *= math.Pow(score, e.weight*fieldNorm(value))
			}
		}
		if matched {
			results = append(results, Result{Index: idx, Score: total})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	return results
}

func (e *Engine) searchIn(value string, pattern []rune, chunks []chunk) (bool, float64) {
	text := value
	if !e.opts.CaseSensitive {
		text = strings.ToLower(text)
	}
	textRunes := []rune(text)
	if equalRunes(textRunes, pattern) {
		return true, 0
	}

	total := 0.0
	hasMatch := false
	for _, c := range chunks {
		ok, score := bitap(textRunes, c, e.opts.Location+c.startIndex, e.opts.Distance, e.opts.Threshold, e.opts.IgnoreLocation)
		if ok {
			hasMatch = true
		}
		total += score
	}
	if !hasMatch {
		return false, 1
	}
	return true, total / float64(len(chunks))
}

// fieldNorm shortens the weight of long values: 1/sqrt(tokens), three decimals.
func fieldNorm(value string) float64 {
	tokens := len(strings.FieldsFunc(value, func(r rune) bool { return r == ' ' }))
	if tokens == 0 {
		return 1
	}
	return math.Round(1/math.Sqrt(float64(tokens))*1000) / 1000
}

func isBlank(value string) bool {
	return strings.TrimFunc(value, unicode.IsSpace) == ""
}

func equalRunes(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
