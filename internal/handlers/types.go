package handlers

// MaxBatchURLs bounds the number of URLs accepted by the batch endpoint.
const MaxBatchURLs = 100

// CanonicalizeRequest is the request body for canonicalizing a URL.
type CanonicalizeRequest struct {
	Body struct {
		URL string `doc:"The URL to canonicalize" example:"HTTP://www.GOOgle.com/a/../b#frag" json:"url" maxLength:"8192"`
	}
}

// CanonicalizeResponse is the response for a canonicalized URL.
type CanonicalizeResponse struct {
	Body struct {
		URL       string `doc:"The URL as submitted" example:"HTTP://www.GOOgle.com/a/../b#frag" json:"url"`
		Canonical string `doc:"The canonical form"   example:"http://www.google.com/b"           json:"canonical"`
	}
}

// ExpressionsRequest is the request body for listing lookup expressions.
type ExpressionsRequest struct {
	Body struct {
		URL string `doc:"The URL to expand" example:"http://a.b.c/1/2.html?param=1" json:"url" maxLength:"8192"`
	}
}

// ExpressionsResponse lists the host-suffix/path-prefix expressions of a URL.
type ExpressionsResponse struct {
	Body struct {
		Canonical   string   `doc:"The canonical form"                    example:"http://a.b.c/1/2.html?param=1" json:"canonical"`
		Expressions []string `doc:"Lookup expressions in generator order" json:"expressions"`
	}
}

// PrefixesRequest is the request body for computing hash prefixes.
type PrefixesRequest struct {
	Body struct {
		URL  string `doc:"The URL to hash" example:"http://a.b.c/1/2.html?param=1" json:"url" maxLength:"8192"`
		Bits *int   `doc:"Prefix size in bits, 0..256 (default 256)" example:"32" json:"bits,omitempty"`
	}
}

// EntryBody pairs an expression with its hex-encoded hash prefix.
type EntryBody struct {
	Expression string `doc:"Lookup expression"          example:"a.b.c/1/"  json:"expression"`
	Prefix     string `doc:"Hex-encoded hash prefix" example:"ba7816bf" json:"prefix"`
}

// PrefixesResult is the hash-prefix computation for a single URL.
type PrefixesResult struct {
	URL       string      `doc:"The URL as submitted"                 json:"url"`
	Canonical string      `doc:"The canonical form, empty on failure" json:"canonical"`
	Bits      int         `doc:"Prefix size in bits"                  json:"bits"`
	Prefixes  []string    `doc:"Distinct hex-encoded prefixes"         json:"prefixes"`
	Entries   []EntryBody `doc:"Expression to prefix mapping"         json:"entries"`
	CacheHit  bool        `doc:"Served from the result cache"         json:"cacheHit"`
}

// PrefixesResponse is the response for a single-URL prefix computation.
type PrefixesResponse struct {
	Body PrefixesResult
}

// BatchPrefixesRequest is the request body for computing prefixes of several URLs.
type BatchPrefixesRequest struct {
	Body struct {
		URLs []string `doc:"URLs to hash" json:"urls" maxItems:"100" minItems:"1"`
		Bits *int     `doc:"Prefix size in bits, 0..256 (default 256)" example:"32" json:"bits,omitempty"`
	}
}

// BatchPrefixesResponse holds per-URL results in request order.
type BatchPrefixesResponse struct {
	Body struct {
		Results []PrefixesResult `json:"results"`
	}
}
