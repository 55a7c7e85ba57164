// Package lookup exposes the hash-prefix pipeline as a service that can be
// memoized and instrumented without touching the pure core.
package lookup

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/serroba/url-hashprefix/internal/hashprefix"
	"github.com/serroba/url-hashprefix/internal/urlhash"
)

var (
	// ErrNotFound is returned by a Cache that has no entry for a key.
	ErrNotFound = errors.New("computation not found")

	// ErrInvalidBits is returned for a prefix size outside 0..256.
	ErrInvalidBits = errors.New("invalid prefix bits")
)

// Computation is the stored result of running the pipeline on one URL.
type Computation struct {
	RawURL     string          `json:"rawUrl"`
	Canonical  string          `json:"canonical"`
	Bits       int             `json:"bits"`
	Entries    []urlhash.Entry `json:"entries"`
	ComputedAt time.Time       `json:"computedAt"`
	CacheHit   bool            `json:"-"`
}

// OK reports whether the URL could be canonicalized.
func (c *Computation) OK() bool {
	return c.Canonical != ""
}

// Key identifies the computation in a cache.
func (c *Computation) Key() string {
	return Key(c.RawURL, c.Bits)
}

// Prefixes returns the distinct hash prefixes of the computation.
func (c *Computation) Prefixes() []hashprefix.Prefix {
	return urlhash.Unique(c.Entries)
}

// Service computes hash prefixes for raw URLs.
type Service interface {
	Compute(ctx context.Context, rawURL string, bits int) (*Computation, error)
}

// Cache stores computations by key.
type Cache interface {
	Get(ctx context.Context, key string) (*Computation, error)
	Set(ctx context.Context, computation *Computation) error
}

// Key derives the cache key of a raw URL at a given prefix size.
func Key(rawURL string, bits int) string {
	h := sha256.Sum256([]byte(strconv.Itoa(bits) + "|" + rawURL))

	return hex.EncodeToString(h[:])
}

// ValidateBits rejects prefix sizes the digest cannot serve.
func ValidateBits(bits int) error {
	if bits < 0 || bits > hashprefix.DigestBits {
		return fmt.Errorf("%w: %d not in 0..%d", ErrInvalidBits, bits, hashprefix.DigestBits)
	}

	return nil
}

// Pipeline runs the pure pipeline on every call.
type Pipeline struct {
	now func() time.Time
}

// NewPipeline creates a pipeline service.
func NewPipeline() *Pipeline {
	return &Pipeline{now: time.Now}
}

func (p *Pipeline) Compute(_ context.Context, rawURL string, bits int) (*Computation, error) {
	if err := ValidateBits(bits); err != nil {
		return nil, err
	}

	result := urlhash.Compute(rawURL, bits)

	return &Computation{
		RawURL:     rawURL,
		Canonical:  result.Canonical,
		Bits:       bits,
		Entries:    result.Entries,
		ComputedAt: p.now(),
	}, nil
}

// Compile-time check.
var _ Service = (*Pipeline)(nil)
