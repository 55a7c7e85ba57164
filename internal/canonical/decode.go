package canonical

import (
	"strings"
	"unicode/utf8"
)

// maxUnescapePasses bounds the decode loop for input crafted never to converge.
const maxUnescapePasses = 1000

const replacementChar = "\uFFFD"

// unescapeFully percent-decodes s until a pass no longer changes it.
// Tab, CR and LF revealed by a pass are dropped before the next one.
func unescapeFully(s string) string {
	s = stripControl(s)

	for range maxUnescapePasses {
		next := stripControl(unescapeOnce(s))
		if next == s {
			return s
		}

		s = next
	}

	return s
}

// unescapeOnce decodes every maximal run of %XX tokens in s once.
func unescapeOnce(s string) string {
	if strings.IndexByte(s, '%') < 0 {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		if !isEscapeAt(s, i) {
			b.WriteByte(s[i])
			i++

			continue
		}

		end := i
		for end < len(s) && isEscapeAt(s, end) {
			end += 3
		}

		b.WriteString(decodeRun(s[i:end]))
		i = end
	}

	return b.String()
}

// decodeRun decodes a run of %XX tokens. When the run is not valid text, tokens
// are split off the left until the remainder decodes; the split-off part stays
// encoded. Nothing decodable leaves the run untouched.
func decodeRun(run string) string {
	for start := 0; start < len(run); start += 3 {
		if decoded, ok := decodeTokens(run[start:]); ok {
			return run[:start] + decoded
		}
	}

	return run
}

func decodeTokens(run string) (string, bool) {
	raw := make([]byte, 0, len(run)/3)
	for i := 0; i+2 < len(run); i += 3 {
		raw = append(raw, unhex(run[i+1])<<4|unhex(run[i+2]))
	}

	switch string(raw) {
	case "\xfe\xff", "\xff\xfe":
		return replacementChar + replacementChar, true
	case "\xc2":
		return replacementChar, true
	}

	if !utf8.Valid(raw) {
		return "", false
	}

	return string(raw), true
}

// stripControl removes tab, carriage return and line feed bytes.
func stripControl(s string) string {
	if strings.IndexAny(s, "\t\r\n") < 0 {
		return s
	}

	b := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\t', '\r', '\n':
			continue
		}

		b = append(b, s[i])
	}

	return string(b)
}

func isEscapeAt(s string, i int) bool {
	return i+2 < len(s) && s[i] == '%' && isHex(s[i+1]) && isHex(s[i+2])
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}

	return 0
}
