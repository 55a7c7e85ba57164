package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/url-hashprefix/internal/analytics"
	"github.com/serroba/url-hashprefix/internal/canonical"
	"github.com/serroba/url-hashprefix/internal/expression"
	"github.com/serroba/url-hashprefix/internal/lookup"
	"github.com/serroba/url-hashprefix/internal/messaging"
	"go.uber.org/zap"
)

const errNotCanonical = "url cannot be canonicalized"

// LookupHandler serves canonicalization, expression and hash-prefix lookups.
type LookupHandler struct {
	service     lookup.Service
	defaultBits int
	publish     messaging.Publish[analytics.PrefixesComputedEvent]
	logger      *zap.Logger
}

// NewLookupHandler creates a new lookup handler.
func NewLookupHandler(
	service lookup.Service,
	defaultBits int,
	publish messaging.Publish[analytics.PrefixesComputedEvent],
	logger *zap.Logger,
) *LookupHandler {
	return &LookupHandler{
		service:     service,
		defaultBits: defaultBits,
		publish:     publish,
		logger:      logger,
	}
}

func (h *LookupHandler) Canonicalize(_ context.Context, req *CanonicalizeRequest) (*CanonicalizeResponse, error) {
	c, ok := canonical.Canonicalize(req.Body.URL)
	if !ok {
		return nil, huma.Error422UnprocessableEntity(errNotCanonical)
	}

	resp := &CanonicalizeResponse{}
	resp.Body.URL = req.Body.URL
	resp.Body.Canonical = c

	return resp, nil
}

func (h *LookupHandler) Expressions(_ context.Context, req *ExpressionsRequest) (*ExpressionsResponse, error) {
	c, ok := canonical.Canonicalize(req.Body.URL)
	if !ok {
		return nil, huma.Error422UnprocessableEntity(errNotCanonical)
	}

	resp := &ExpressionsResponse{}
	resp.Body.Canonical = c
	resp.Body.Expressions = expression.Generate(c)

	return resp, nil
}

func (h *LookupHandler) Prefixes(ctx context.Context, req *PrefixesRequest) (*PrefixesResponse, error) {
	result, err := h.compute(ctx, req.Body.URL, h.bits(req.Body.Bits))
	if err != nil {
		return nil, err
	}

	return &PrefixesResponse{Body: *result}, nil
}

func (h *LookupHandler) BatchPrefixes(ctx context.Context, req *BatchPrefixesRequest) (*BatchPrefixesResponse, error) {
	if len(req.Body.URLs) > MaxBatchURLs {
		return nil, huma.Error400BadRequest(fmt.Sprintf("at most %d urls per batch", MaxBatchURLs))
	}

	bits := h.bits(req.Body.Bits)
	resp := &BatchPrefixesResponse{}
	resp.Body.Results = make([]PrefixesResult, 0, len(req.Body.URLs))

	for _, rawURL := range req.Body.URLs {
		result, err := h.compute(ctx, rawURL, bits)
		if err != nil {
			return nil, err
		}

		resp.Body.Results = append(resp.Body.Results, *result)
	}

	return resp, nil
}

func (h *LookupHandler) bits(requested *int) int {
	if requested == nil {
		return h.defaultBits
	}

	return *requested
}

func (h *LookupHandler) compute(ctx context.Context, rawURL string, bits int) (*PrefixesResult, error) {
	computation, err := h.service.Compute(ctx, rawURL, bits)
	if err != nil {
		if errors.Is(err, lookup.ErrInvalidBits) {
			return nil, huma.Error400BadRequest(err.Error())
		}

		h.logger.Error("lookup failed", zap.String("url", rawURL), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to compute prefixes")
	}

	h.publishComputed(ctx, computation)

	return toResult(computation), nil
}

func (h *LookupHandler) publishComputed(ctx context.Context, c *lookup.Computation) {
	meta := RequestMetaFromContext(ctx)

	event := &analytics.PrefixesComputedEvent{
		RequestID:       meta.RequestID,
		RawURL:          c.RawURL,
		Canonical:       c.Canonical,
		Bits:            c.Bits,
		ExpressionCount: len(c.Entries),
		CacheHit:        c.CacheHit,
		ClientIP:        meta.ClientIP,
		UserAgent:       meta.UserAgent,
		ComputedAt:      c.ComputedAt,
	}

	if err := h.publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish prefixes computed event",
			zap.String("requestId", meta.RequestID),
			zap.Error(err),
		)
	}
}

func toResult(c *lookup.Computation) *PrefixesResult {
	prefixes := c.Prefixes()

	result := &PrefixesResult{
		URL:       c.RawURL,
		Canonical: c.Canonical,
		Bits:      c.Bits,
		Prefixes:  make([]string, 0, len(prefixes)),
		Entries:   make([]EntryBody, 0, len(c.Entries)),
		CacheHit:  c.CacheHit,
	}

	for _, p := range prefixes {
		result.Prefixes = append(result.Prefixes, p.String())
	}

	for _, e := range c.Entries {
		result.Entries = append(result.Entries, EntryBody{
			Expression: e.Expression,
			Prefix:     e.Prefix.String(),
		})
	}

	return result
}
