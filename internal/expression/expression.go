// Package expression enumerates the host-suffix/path-prefix combinations that
// are looked up for a canonical URL.
package expression

import (
	"slices"
	"strings"
)

const (
	maxHostSuffixes = 5
	maxPathPrefixes = 6
)

// Generate returns the deduplicated lookup expressions of an already canonical
// URL, host-major. Scheme and port are not part of an expression.
func Generate(canonicalURL string) []string {
	if canonicalURL == "" {
		return nil
	}

	host, path, query, hasQuery := split(canonicalURL)
	if host == "" {
		return nil
	}

	hosts := HostSuffixes(host)
	paths := PathPrefixes(path, query, hasQuery)

	seen := make(map[string]struct{}, len(hosts)*len(paths))
	expressions := make([]string, 0, len(hosts)*len(paths))

	for _, h := range hosts {
		for _, p := range paths {
			expr := h + p
			if _, ok := seen[expr]; ok {
				continue
			}

			seen[expr] = struct{}{}
			expressions = append(expressions, expr)
		}
	}

	return expressions
}

// HostSuffixes returns the host followed by up to four shorter suffixes built
// from its last five labels. A dotted-quad IP yields only itself.
func HostSuffixes(host string) []string {
	suffixes := []string{host}
	if isDottedQuad(host) {
		return suffixes
	}

	labels := strings.Split(host, ".")
	if len(labels) > maxHostSuffixes {
		labels = labels[len(labels)-maxHostSuffixes:]
	}

	for n := 2; n <= len(labels) && len(suffixes) < maxHostSuffixes; n++ {
		suffix := strings.Join(labels[len(labels)-n:], ".")
		if suffix != host {
			suffixes = append(suffixes, suffix)
		}
	}

	return suffixes
}

// PathPrefixes returns up to six path variants: path with query, bare path,
// then cumulative directory prefixes, with the root always present when room
// is left.
func PathPrefixes(path, query string, hasQuery bool) []string {
	prefixes := make([]string, 0, maxPathPrefixes)

	add := func(p string) {
		if len(prefixes) < maxPathPrefixes && !slices.Contains(prefixes, p) {
			prefixes = append(prefixes, p)
		}
	}

	if hasQuery {
		add(path + "?" + query)
	}

	add(path)

	if path != "/" {
		segments := slices.DeleteFunc(strings.Split(path, "/"), func(s string) bool { return s == "" })
		trailing := strings.HasSuffix(path, "/")
		prefix := "/"

		for i, seg := range segments {
			if len(prefixes) >= maxPathPrefixes {
				break
			}

			prefix += seg
			if i < len(segments)-1 || trailing {
				prefix += "/"
			}

			add(prefix)
		}
	}

	add("/")

	return prefixes
}

// split pulls host, path and query out of a canonical URL.
func split(u string) (host, path, query string, hasQuery bool) {
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}

	end := strings.IndexAny(u, "/?")
	if end < 0 {
		end = len(u)
	}

	host, rest := stripPort(u[:end]), u[end:]

	path = rest
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		path, query, hasQuery = rest[:i], rest[i+1:], true
	}

	if path == "" {
		path = "/"
	}

	return host, path, query, hasQuery
}

func stripPort(authority string) string {
	if strings.HasPrefix(authority, "[") {
		if end := strings.IndexByte(authority, ']'); end >= 0 {
			return authority[:end+1]
		}

		return authority
	}

	if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		return authority[:i]
	}

	return authority
}

// isDottedQuad reports whether host is exactly four dot-separated digit groups.
func isDottedQuad(host string) bool {
	groups := strings.Split(host, ".")
	if len(groups) != 4 {
		return false
	}

	for _, g := range groups {
		if g == "" {
			return false
		}

		for i := 0; i < len(g); i++ {
			if g[i] < '0' || g[i] > '9' {
				return false
			}
		}
	}

	return true
}
