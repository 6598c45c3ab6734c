// Package telemetry synthesizes internally consistent match telemetry:
// phases, events, reaction-time curves, voice turns and combo statistics.
// Every generator takes its randomness from an injected Rand so a run can
// be replayed from a seed.
package telemetry

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Rand is the randomness every generator draws from. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Int63n(n int64) int64
	Float64() float64
}

// NewSeededRNG returns a deterministic generator for seed. A zero seed is
// replaced with a crypto-random one; the seed actually used is returned.
func NewSeededRNG(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = newSeed()
	}
	return rand.New(rand.NewSource(seed)), seed
}

func newSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1)
}

// randomRange returns an int in [min, max]. When min >= max it returns min.
func randomRange(rng Rand, min, max int) int {
	if min >= max {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// uniform returns a float64 in [lo, hi).
func uniform(rng Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

// offsetIn returns a duration in [0, span) with millisecond granularity.
func offsetIn(rng Rand, span time.Duration) time.Duration {
	ms := int64(span / time.Millisecond)
	if ms <= 0 {
		return 0
	}
	return time.Duration(rng.Int63n(ms)) * time.Millisecond
}

func pick[T any](rng Rand, items []T) T {
	return items[rng.Intn(len(items))]
}

// pickDistinct draws n distinct items without replacement.
func pickDistinct[T any](rng Rand, items []T, n int) []T {
	if n > len(items) {
		n = len(items)
	}
	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
