// Package idgen handles short code generation.
package idgen

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// alphabet is the Base62 character set used for generated codes: URL-safe
// and case-sensitive, so 62^7 possible codes at the default length.
const alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

const (
	// DefaultCodeLength is the default length for generated short codes.
	DefaultCodeLength = 7

	// MaxCodeLength is the upper bound for a generated code length.
	MaxCodeLength = 50
)

// ErrInvalidLength is returned when the requested code length is out of range.
var ErrInvalidLength = errors.New("code length must be between 1 and 50")

// Generator defines the interface for generating short codes.
type Generator interface {
	// Generate creates a new random short code.
	Generate() (string, error)

	// Length returns the configured code length.
	Length() int
}

// RandomGenerator generates random Base62 short codes. It holds no state
// beyond the configured length; uniqueness is the store's job.
type RandomGenerator struct {
	length int
}

// NewRandomGenerator creates a new RandomGenerator with the specified code
// length. The length must be in [1, MaxCodeLength].
func NewRandomGenerator(length int) (*RandomGenerator, error) {
	if length < 1 || length > MaxCodeLength {
		return nil, ErrInvalidLength
	}
	return &RandomGenerator{length: length}, nil
}

// Generate creates a new random Base62 short code.
// Uses crypto/rand for cryptographically secure randomness.
func (g *RandomGenerator) Generate() (string, error) {
	result := make([]byte, g.length)
	max := big.NewInt(int64(len(alphabet)))

	for i := 0; i < g.length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = alphabet[n.Int64()]
	}

	return string(result), nil
}

// Length returns the configured code length.
func (g *RandomGenerator) Length() int {
	return g.length
}

// isBase62 reports whether s contains only alphabet characters. Generated
// codes always satisfy this; user-chosen slugs may not.
func isBase62(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
