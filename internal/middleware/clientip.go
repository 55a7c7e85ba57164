package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// ClientIPFunc resolves the client address of a request.
type ClientIPFunc func(ctx huma.Context) string

// ClientIPFor picks ForwardedIP when the server sits behind a trusted proxy
// and RemoteIP otherwise.
func ClientIPFor(trustProxy bool) ClientIPFunc {
	if trustProxy {
		return ForwardedIP
	}

	return RemoteIP
}

// RemoteIP returns the address of the connected peer. Forwarding headers are
// ignored since any client can set them.
func RemoteIP(ctx huma.Context) string {
	addr := ctx.RemoteAddr()
	if addr == "" {
		addr = ctx.Host()
	}

	ip, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return ip
}

// ForwardedIP trusts the first X-Forwarded-For hop, then X-Real-IP, and falls
// back to RemoteIP. Only use it behind a proxy that overwrites both headers.
func ForwardedIP(ctx huma.Context) string {
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}

	if xri := strings.TrimSpace(ctx.Header("X-Real-IP")); xri != "" {
		return xri
	}

	return RemoteIP(ctx)
}
