// Package wheel provides the deterministic selection primitives behind the
// treat wheel. Draws look random to the user but are pure functions of a seed
// and a purpose salt, so any historical spin can be replayed for audits.
package wheel

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Purpose salts keep the per-spin draws independent: picking the reward
// must not correlate with picking the portion or the bonus.
const (
	PurposeTreat   = "treat"
	PurposePortion = "portion"
	PurposeBonus   = "bonus"
)

// Seed is an opaque draw seed combining an optional client component
// with server entropy.
type Seed string

// serverEntropyBytes is the amount of server randomness mixed into every seed.
const serverEntropyBytes = 16

// BuildSeed combines an optional client-supplied string with server entropy.
// The server component guarantees a client can never fully control the outcome.
func BuildSeed(clientSeed string) (Seed, error) {
	entropy := make([]byte, serverEntropyBytes)
	if _, err := rand.Read(entropy); err != nil {
		return "", fmt.Errorf("failed to read server entropy: %w", err)
	}

	return Seed(clientSeed + ":" + hex.EncodeToString(entropy)), nil
}

// NewTestSeed returns a fixed seed with no server entropy, for reproducible tests.
func NewTestSeed(s string) Seed {
	return Seed(s)
}

// PickIndex maps (seed, purpose) to an index in [0, length).
// length must be positive; violating that is a programmer error.
func PickIndex(length int, seed Seed, purpose string) int {
	if length <= 0 {
		panic(fmt.Sprintf("wheel: PickIndex called with non-positive length %d", length))
	}

	return int(draw(seed, purpose) % uint64(length))
}

// PickWeighted draws one value from a discrete weighted distribution.
// Weights need not sum to 100. A zero-weight value is never returned as long
// as a nonzero-weight value exists. Mismatched slice lengths, empty slices and
// non-positive total weight are programmer errors.
func PickWeighted[T any](values []T, weights []int, seed Seed, purpose string) T {
	if len(values) != len(weights) {
		panic(fmt.Sprintf("wheel: PickWeighted called with %d values and %d weights",
			len(values), len(weights)))
	}

	if len(values) == 0 {
		panic("wheel: PickWeighted called with no values")
	}

	total := uint64(0)
	for _, w := range weights {
		if w < 0 {
			panic(fmt.Sprintf("wheel: PickWeighted called with negative weight %d", w))
		}

		total += uint64(w)
	}

	if total == 0 {
		panic("wheel: PickWeighted called with zero total weight")
	}

	// Walk the cumulative distribution until it exceeds the draw.
	point := draw(seed, purpose) % total
	cumulative := uint64(0)

	for i, w := range weights {
		cumulative += uint64(w)
		if point < cumulative {
			return values[i]
		}
	}

	// Unreachable: point < total and the final cumulative equals total.
	return values[len(values)-1]
}

// draw hashes the seed and purpose into a uniform 64-bit value.
func draw(seed Seed, purpose string) uint64 {
	h := sha256.Sum256([]byte(string(seed) + "|" + purpose))
	return binary.BigEndian.Uint64(h[:8])
}
