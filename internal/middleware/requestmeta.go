package middleware

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-hashprefix/internal/handlers"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

// IDGenerator produces request IDs.
type IDGenerator func() string

// RequestMeta is a middleware that adds request ID, client IP and user-agent to the request context.
// An incoming X-Request-ID is kept; otherwise one is generated. The ID is echoed in the response.
func RequestMeta(
	_ huma.API,
	generateID IDGenerator,
	clientIP ClientIPFunc,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		requestID := ctx.Header(RequestIDHeader)
		if requestID == "" {
			requestID = generateID()
		}

		meta := handlers.RequestMeta{
			RequestID: requestID,
			ClientIP:  clientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
		}

		ctx.SetHeader(RequestIDHeader, requestID)

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}
