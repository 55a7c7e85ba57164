package canonical

import "strings"

// normalizePath resolves dot segments, drops empty segments and re-escapes.
// A trailing slash on the decoded input survives the resolution.
func normalizePath(raw string) string {
	decoded := unescapeFully(raw)

	segments := make([]string, 0, strings.Count(decoded, "/"))

	for _, seg := range strings.Split(decoded, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(segments) > 0 {
				segments = segments[:len(segments)-1]
			}
		default:
			segments = append(segments, seg)
		}
	}

	path := escape(unescapeFully("/" + strings.Join(segments, "/")))

	if strings.HasSuffix(decoded, "/") && !strings.HasSuffix(path, "/") {
		path += "/"
	}

	return path
}
