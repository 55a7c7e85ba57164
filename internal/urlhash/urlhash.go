// Package urlhash runs the full pipeline: canonicalize a URL, expand it into
// lookup expressions and hash every expression down to a prefix.
package urlhash

import (
	"github.com/serroba/url-hashprefix/internal/canonical"
	"github.com/serroba/url-hashprefix/internal/expression"
	"github.com/serroba/url-hashprefix/internal/hashprefix"
)

// Entry pairs a lookup expression with its hash prefix.
type Entry struct {
	Expression string            `json:"expression"`
	Prefix     hashprefix.Prefix `json:"prefix"`
}

// Result is the outcome of one pipeline run. Canonical is empty and Entries nil
// when the URL could not be canonicalized.
type Result struct {
	Canonical string
	Entries   []Entry
}

// OK reports whether the URL was canonicalized.
func (r Result) OK() bool {
	return r.Canonical != ""
}

// Compute canonicalizes rawURL and returns every expression with its prefix
// in generator order.
func Compute(rawURL string, bits int) Result {
	canonicalURL, ok := canonical.Canonicalize(rawURL)
	if !ok {
		return Result{}
	}

	expressions := expression.Generate(canonicalURL)
	entries := make([]Entry, 0, len(expressions))

	for _, expr := range expressions {
		entries = append(entries, Entry{
			Expression: expr,
			Prefix:     hashprefix.Truncate(expr, bits),
		})
	}

	return Result{Canonical: canonicalURL, Entries: entries}
}

// PrefixMap returns the expression/prefix pairs of rawURL, or an empty slice
// when it cannot be canonicalized.
func PrefixMap(rawURL string, bits int) []Entry {
	result := Compute(rawURL, bits)
	if result.Entries == nil {
		return []Entry{}
	}

	return result.Entries
}

// Prefixes returns the distinct hash prefixes of rawURL. Prefixes shorter than
// the digest may collide; each distinct value is returned once.
func Prefixes(rawURL string, bits int) []hashprefix.Prefix {
	return Unique(Compute(rawURL, bits).Entries)
}

// Unique returns the distinct prefixes of entries in first-seen order.
func Unique(entries []Entry) []hashprefix.Prefix {
	seen := make(map[string]struct{}, len(entries))
	prefixes := make([]hashprefix.Prefix, 0, len(entries))

	for _, e := range entries {
		key := string(e.Prefix)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		prefixes = append(prefixes, e.Prefix)
	}

	return prefixes
}
