package analytics

import "time"

// TopicPrefixesComputed carries one event per served lookup.
const TopicPrefixesComputed = "prefixes.computed"

// PrefixesComputedEvent is emitted whenever the API computes hash prefixes for a URL.
type PrefixesComputedEvent struct {
	RequestID       string    `json:"requestId"`
	RawURL          string    `json:"rawUrl"`
	Canonical       string    `json:"canonical,omitempty"`
	Bits            int       `json:"bits"`
	ExpressionCount int       `json:"expressionCount"`
	CacheHit        bool      `json:"cacheHit"`
	ClientIP        string    `json:"clientIp"`
	UserAgent       string    `json:"userAgent"`
	ComputedAt      time.Time `json:"computedAt"`
}

// Canonicalized reports whether the raw URL produced a canonical form.
func (e *PrefixesComputedEvent) Canonicalized() bool {
	return e.Canonical != ""
}
