package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// RegisterRoutes registers all lookup routes.
func RegisterRoutes(api huma.API, h *LookupHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "canonicalize",
		Method:      http.MethodPost,
		Path:        "/canonicalize",
		Summary:     "Canonicalize URL",
		Description: "Returns the canonical form of a URL, or 422 when it has none.",
		Tags:        []string{"Lookup"},
	}, h.Canonicalize)

	huma.Register(api, huma.Operation{
		OperationID: "expressions",
		Method:      http.MethodPost,
		Path:        "/expressions",
		Summary:     "List lookup expressions",
		Description: "Returns the host-suffix/path-prefix expressions checked against threat lists.",
		Tags:        []string{"Lookup"},
	}, h.Expressions)

	huma.Register(api, huma.Operation{
		OperationID: "prefixes",
		Method:      http.MethodPost,
		Path:        "/prefixes",
		Summary:     "Compute hash prefixes",
		Description: "Returns the truncated SHA-256 prefixes of every lookup expression of a URL.",
		Tags:        []string{"Lookup"},
	}, h.Prefixes)

	huma.Register(api, huma.Operation{
		OperationID: "batch-prefixes",
		Method:      http.MethodPost,
		Path:        "/prefixes/batch",
		Summary:     "Compute hash prefixes for several URLs",
		Description: "Batch form of /prefixes. Results keep request order.",
		Tags:        []string{"Lookup"},
	}, h.BatchPrefixes)
}
