package canonical

import (
	"math"
	"net/netip"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

const maxHostLength = 255

// idnaProfile maps Unicode hostnames the way a lookup would, but accepts the
// underscores and other ASCII characters that show up in real-world hosts.
var idnaProfile = idna.New(
	idna.MapForLookup(),
	idna.StrictDomainName(false),
	idna.Transitional(true),
)

// normalizeHost turns the raw authority host into its canonical form.
func normalizeHost(raw string) (string, bool) {
	if strings.HasPrefix(raw, "[") {
		if len(raw) < 3 || len(raw) > maxHostLength || !strings.HasSuffix(raw, "]") {
			return "", false
		}

		addr, err := netip.ParseAddr(raw[1 : len(raw)-1])
		if err != nil || !addr.Is6() {
			return "", false
		}

		return asciiLower(raw), true
	}

	host := unescapeFully(raw)
	if len(host) > maxHostLength {
		return "", false
	}

	host = collapseDots(host)
	if host == "" {
		return "", false
	}

	if ip, ok := parseNumericIPv4(host); ok {
		host = ip
	} else if !isASCII(host) && utf8.ValidString(host) {
		// A host that cannot be converted is kept in its decoded form.
		if ascii, err := idnaProfile.ToASCII(host); err == nil && ascii != "" {
			host = ascii
		}
	}

	return escapeHost(asciiLower(host)), true
}

// authorityDelimiters re-encodes characters that would end or split the host
// once written back into the authority.
var authorityDelimiters = strings.NewReplacer(
	":", "%3A",
	"/", "%2F",
	"?", "%3F",
	"@", "%40",
	"[", "%5B",
	"]", "%5D",
)

// escapeHost escapes a decoded host so it reads back as the same host.
func escapeHost(host string) string {
	return authorityDelimiters.Replace(escape(host))
}

// collapseDots squeezes runs of '.' and trims them from both ends.
func collapseDots(s string) string {
	buf := make([]byte, 0, len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '.' && (len(buf) == 0 || buf[len(buf)-1] == '.') {
			continue
		}

		buf = append(buf, s[i])
	}

	for len(buf) > 0 && buf[len(buf)-1] == '.' {
		buf = buf[:len(buf)-1]
	}

	return string(buf)
}

// parseNumericIPv4 recognises hosts written as 1 to 4 dotted numbers, each in
// decimal, 0x-prefixed hex or leading-zero octal, and returns the dotted quad.
func parseNumericIPv4(host string) (string, bool) {
	parts := strings.Split(host, ".")
	if len(parts) > 4 {
		return "", false
	}

	values := make([]uint64, len(parts))

	for i, part := range parts {
		v, ok := parseIPComponent(part)
		if !ok {
			return "", false
		}

		values[i] = v
	}

	var addr uint64

	switch len(values) {
	case 1:
		addr = values[0]
	case 2:
		addr = values[0]<<24 | values[1]&0xffffff
	case 3:
		addr = values[0]<<24 | values[1]<<16 | values[2]&0xffff
	case 4:
		for _, v := range values {
			if v > 0xff {
				return "", false
			}
		}

		addr = values[0]<<24 | values[1]<<16 | values[2]<<8 | values[3]
	}

	if addr > math.MaxUint32 {
		return "", false
	}

	ip := netip.AddrFrom4([4]byte{byte(addr >> 24), byte(addr >> 16), byte(addr >> 8), byte(addr)})

	return ip.String(), true
}

func parseIPComponent(s string) (uint64, bool) {
	base := 10

	switch {
	case len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X'):
		s, base = s[2:], 16
	case len(s) > 1 && s[0] == '0':
		s, base = s[1:], 8
	}

	if s == "" || s[0] == '+' || s[0] == '-' {
		return 0, false
	}

	v, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return 0, false
	}

	return v, true
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
