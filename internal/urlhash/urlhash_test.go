package urlhash_test

import (
	"testing"

	"github.com/serroba/url-hashprefix/internal/hashprefix"
	"github.com/serroba/url-hashprefix/internal/urlhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	t.Run("canonicalizes then expands", func(t *testing.T) {
		result := urlhash.Compute("http://A.B.C/1/2.html?param=1#frag", hashprefix.DefaultBits)

		require.True(t, result.OK())
		assert.Equal(t, "http://a.b.c/1/2.html?param=1", result.Canonical)
		require.Len(t, result.Entries, 8)

		for _, e := range result.Entries {
			assert.Equal(t, hashprefix.Truncate(e.Expression, hashprefix.DefaultBits), e.Prefix)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		result := urlhash.Compute("ftp://example.com/", hashprefix.DefaultBits)

		assert.False(t, result.OK())
		assert.Empty(t, result.Entries)
	})
}

func TestPrefixMap(t *testing.T) {
	t.Run("pairs every expression with its prefix", func(t *testing.T) {
		entries := urlhash.PrefixMap("http://www.example.com/a/b", 32)

		expressions := make([]string, 0, len(entries))
		for _, e := range entries {
			expressions = append(expressions, e.Expression)
			assert.Len(t, e.Prefix, 4)
		}

		assert.ElementsMatch(t, []string{
			"www.example.com/a/b", "www.example.com/a/", "www.example.com/",
			"example.com/a/b", "example.com/a/", "example.com/",
		}, expressions)
	})

	t.Run("empty on failure", func(t *testing.T) {
		entries := urlhash.PrefixMap("", hashprefix.DefaultBits)

		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})
}

func TestPrefixes(t *testing.T) {
	t.Run("distinct prefixes", func(t *testing.T) {
		prefixes := urlhash.Prefixes("http://a.b.c/1/2.html?param=1", 32)

		assert.Len(t, prefixes, 8)
		assert.Contains(t, prefixes, hashprefix.Truncate("a.b.c/", 32))
	})

	t.Run("colliding prefixes collapse", func(t *testing.T) {
		prefixes := urlhash.Prefixes("http://a.b.c/1/2.html?param=1", 0)

		require.Len(t, prefixes, 1)
		assert.Empty(t, prefixes[0])
	})

	t.Run("empty iff canonicalization fails", func(t *testing.T) {
		assert.Empty(t, urlhash.Prefixes("http:///nohost", hashprefix.DefaultBits))
		assert.NotEmpty(t, urlhash.Prefixes("nohost", hashprefix.DefaultBits))
	})
}
