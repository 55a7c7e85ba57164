// Package canonical rewrites arbitrary URLs into the byte-exact form used to
// derive threat-list lookup expressions.
package canonical

import "strings"

const asciiSpace = " \t\n\v\f\r"

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
}

// Canonicalize returns the canonical form of rawURL. The boolean is false when
// the input has no usable host, an unparseable authority, a host longer than
// 255 characters once decoded, or a scheme other than http and https.
func Canonicalize(rawURL string) (string, bool) {
	s := strings.Trim(stripControl(rawURL), asciiSpace)
	if s == "" {
		return "", false
	}

	switch {
	case strings.HasPrefix(s, "//"):
		s = "http:" + s
	case !strings.Contains(s, "://"):
		s = "http://" + s
	}

	c, ok := split(s)
	if !ok {
		return "", false
	}

	scheme := asciiLower(c.scheme)

	defaultPort, ok := defaultPorts[scheme]
	if !ok {
		return "", false
	}

	host, ok := normalizeHost(c.host)
	if !ok {
		return "", false
	}

	var b strings.Builder

	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)

	if c.port != "" && c.port != defaultPort {
		b.WriteByte(':')
		b.WriteString(c.port)
	}

	b.WriteString(normalizePath(c.path))

	if c.hasQuery {
		b.WriteByte('?')
		b.WriteString(c.query)
	}

	return b.String(), true
}
