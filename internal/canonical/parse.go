package canonical

import (
	"strconv"
	"strings"
)

// components is a URL split along the generic URI grammar, fragment removed.
type components struct {
	scheme   string
	host     string
	port     string
	path     string
	query    string
	hasQuery bool
}

// split breaks s, which must contain "://", into its components. User info is
// discarded and literal spaces in the authority are escaped before splitting.
func split(s string) (components, bool) {
	sep := strings.Index(s, "://")
	if sep <= 0 {
		return components{}, false
	}

	c := components{scheme: s[:sep]}
	rest := s[sep+3:]

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		rest = rest[:i]
	}

	end := strings.IndexAny(rest, "/?")
	if end < 0 {
		end = len(rest)
	}

	authority, rest := strings.ReplaceAll(rest[:end], " ", "%20"), rest[end:]

	if i := strings.IndexByte(rest, '?'); i >= 0 {
		c.path, c.query, c.hasQuery = rest[:i], rest[i+1:], true
	} else {
		c.path = rest
	}

	if c.path == "" {
		c.path = "/"
	}

	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		authority = authority[i+1:]
	}

	var ok bool

	c.host, c.port, ok = splitHostPort(authority)
	if !ok || c.host == "" {
		return components{}, false
	}

	return c, true
}

func splitHostPort(authority string) (host, port string, ok bool) {
	if strings.HasPrefix(authority, "[") {
		end := strings.IndexByte(authority, ']')
		if end < 0 {
			return "", "", false
		}

		literal, rest := authority[:end+1], authority[end+1:]
		if rest == "" {
			return literal, "", true
		}

		if rest[0] != ':' {
			return "", "", false
		}

		port, ok = normalizePort(rest[1:])

		return literal, port, ok
	}

	if strings.ContainsAny(authority, "[]") {
		return "", "", false
	}

	i := strings.LastIndexByte(authority, ':')
	if i < 0 {
		return authority, "", true
	}

	port, ok = normalizePort(authority[i+1:])

	return authority[:i], port, ok
}

// normalizePort validates a decimal port and strips leading zeros.
// An empty port is allowed and means none was given.
func normalizePort(p string) (string, bool) {
	if p == "" {
		return "", true
	}

	for i := 0; i < len(p); i++ {
		if p[i] < '0' || p[i] > '9' {
			return "", false
		}
	}

	n, err := strconv.Atoi(p)
	if err != nil || n > 65535 {
		return "", false
	}

	return strconv.Itoa(n), true
}
