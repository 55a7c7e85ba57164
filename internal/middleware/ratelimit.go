package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-hashprefix/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware that limits requests based on client IP and User-Agent.
func RateLimiter(
	api huma.API,
	limiter ratelimit.Limiter,
	clientIP ClientIPFunc,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		ip := clientIP(ctx)

		decision, err := limiter.Allow(ctx.Context(), clientKey(ip, ctx.Header("User-Agent")))
		if err != nil {
			logger.Error("rate limit check failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

			return
		}

		if decision.Limit > 0 {
			ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
			ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		}

		if !decision.Allowed {
			logger.Warn("rate limit exceeded",
				zap.String("method", ctx.Method()),
				zap.String("client_ip", ip),
				zap.Int64("count", decision.Count),
				zap.Int64("max", decision.Limit),
				zap.Duration("window", decision.Window),
			)

			ctx.SetHeader("Retry-After", strconv.Itoa(max(int(decision.Window.Seconds()), 1)))
			_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, "rate limit exceeded")

			return
		}

		next(ctx)
	}
}

// clientKey generates a unique key for rate limiting based on IP and User-Agent.
func clientKey(ip, userAgent string) string {
	hash := sha256.Sum256([]byte(ip + "|" + userAgent))

	return hex.EncodeToString(hash[:])
}
