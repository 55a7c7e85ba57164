// Package hashprefix truncates SHA-256 digests of lookup expressions to the
// prefixes that threat lists are distributed as.
package hashprefix

import (
	"crypto/sha256"
	"encoding/hex"
)

// Prefix length constants, in bits.
const (
	// DigestBits is the size of a full SHA-256 digest.
	DigestBits = sha256.Size * 8

	// DefaultBits requests the whole digest.
	DefaultBits = DigestBits

	// MinBits is the shortest prefix threat lists are published with.
	MinBits = 32
)

// Prefix is the leading part of the SHA-256 digest of an expression.
type Prefix []byte

// String returns the lowercase hex encoding of the prefix.
func (p Prefix) String() string {
	return hex.EncodeToString(p)
}

// Truncate returns the first bits/8 bytes of SHA-256(input). Fewer than eight
// bits give an empty prefix; anything past the digest size gives the digest.
func Truncate(input string, bits int) Prefix {
	n := bits / 8

	switch {
	case n <= 0:
		return Prefix{}
	case n > sha256.Size:
		n = sha256.Size
	}

	sum := sha256.Sum256([]byte(input))

	prefix := make(Prefix, n)
	copy(prefix, sum[:n])

	return prefix
}

// Parse decodes a hex-encoded prefix.
func Parse(s string) (Prefix, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}

	return Prefix(b), nil
}

// MarshalText encodes the prefix as lowercase hex.
func (p Prefix) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a hex-encoded prefix.
func (p *Prefix) UnmarshalText(text []byte) error {
	decoded, err := Parse(string(text))
	if err != nil {
		return err
	}

	*p = decoded

	return nil
}
