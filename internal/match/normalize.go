// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match decides whether an OpenAlex work and a bibliography
// entry describe the same publication. It combines text
// normalization, structured name comparison, and Levenshtein-derived
// similarity scores into one [0,100] confidence value, and applies
// threshold policy to pick zero or one match per entry.
package match

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stopwords are dropped from normalized titles before comparison.
var stopwords = map[string]bool{
	"the": true, "of": true, "and": true, "a": true, "an": true,
	"in": true, "to": true, "on": true, "for": true, "with": true,
	"la": true,
}

// punctuation is the ASCII punctuation set stripped during normalization.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// stripMarks decomposes accented characters and removes their
// combining marks, so "café" folds to "cafe".
var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// memo is a bounded cache for pure string functions. Normalization is
// the hottest path when scoring many candidates against one entry, so
// repeated inputs must not re-run the transform chain. When the map
// reaches its cap it is cleared wholesale; entries are tiny and
// recomputation is cheap, so no eviction order is tracked.
type memo[V any] struct {
	mu  sync.Mutex
	m   map[string]V
	cap int
}

func newMemo[V any](cap int) *memo[V] {
	return &memo[V]{m: make(map[string]V), cap: cap}
}

func (c *memo[V]) get(key string, compute func(string) V) V {
	c.mu.Lock()
	if v, ok := c.m[key]; ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	v := compute(key)

	c.mu.Lock()
	if len(c.m) >= c.cap {
		c.m = make(map[string]V)
	}
	c.m[key] = v
	c.mu.Unlock()
	return v
}

var (
	normalizeMemo = newMemo[string](4096)
	nameMemo      = newMemo[string](4096)
)

// foldASCII strips accents and drops any remaining non-ASCII runes.
func foldASCII(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeBase applies the shared normalization steps: accent
// folding, punctuation removal, whitespace collapsing, lowercasing.
func normalizeBase(s string) string {
	s = foldASCII(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !strings.ContainsRune(punctuation, r) {
			b.WriteRune(r)
		}
	}
	collapsed := strings.Join(strings.Fields(b.String()), " ")
	return strings.ToLower(collapsed)
}

// Normalize canonicalizes free text for comparison: accents folded to
// ASCII, punctuation stripped, whitespace collapsed, lowercased, and
// stopwords removed. It is pure and idempotent; empty input yields "".
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return normalizeMemo.get(text, func(text string) string {
		words := strings.Fields(normalizeBase(text))
		kept := words[:0]
		for _, w := range words {
			if !stopwords[w] {
				kept = append(kept, w)
			}
		}
		return strings.Join(kept, " ")
	})
}

// NormalizeName canonicalizes a person name: the same folding as
// Normalize but without stopword removal, since name particles like
// "la" carry identity.
func NormalizeName(name string) string {
	if name == "" {
		return ""
	}
	return nameMemo.get(name, normalizeBase)
}
