package canonical

const upperHex = "0123456789ABCDEF"

// escape percent-encodes control bytes, space, DEL, every non-ASCII byte, '%'
// and '#'. An existing well-formed %XX token is kept with uppercase hex digits.
func escape(s string) string {
	buf := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch {
		case c == '%' && isEscapeAt(s, i):
			buf = append(buf, '%', toUpper(s[i+1]), toUpper(s[i+2]))
			i += 2
		case c <= 0x20 || c >= 0x7f || c == '%' || c == '#':
			buf = append(buf, '%', upperHex[c>>4], upperHex[c&0x0f])
		default:
			buf = append(buf, c)
		}
	}

	return string(buf)
}

func toUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}

	return c
}

// asciiLower lowercases ASCII letters only, leaving any other byte intact.
func asciiLower(s string) string {
	buf := []byte(s)

	for i, c := range buf {
		if 'A' <= c && c <= 'Z' {
			buf[i] = c + ('a' - 'A')
		}
	}

	return string(buf)
}
