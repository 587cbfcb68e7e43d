package engine

import (
	"hash/fnv"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
)

// deriveSeed folds the configured seed together with a set of key fields
// into a single int64 seed, so a new *rand.Rand constructed from it is a
// pure, deterministic function of (configSeed, keys...). Used both for the
// per-call pairing PRNG and for the per-player random tiebreaker, matching
// the design note that randomness must be ambient-free and reproducible.
func deriveSeed(base int64, keys ...string) int64 {
	h := fnv.New64a()
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(base >> (8 * i))
	}
	h.Write(buf[:])
	for _, k := range keys {
		h.Write([]byte{0})
		h.Write([]byte(k))
	}
	return int64(h.Sum64())
}

// newPairingRNG returns the PRNG used for one pairing call (round-1 shuffle,
// bye-assignment tiebreak), keyed by tournament and round so repeated calls
// against the same snapshot reproduce the same pairings.
func newPairingRNG(seed int64, tournamentID uuid.UUID, round int) *rand.Rand {
	s := deriveSeed(seed, tournamentID.String(), strconv.Itoa(round))
	return rand.New(rand.NewSource(s))
}

// randomTiebreakValue returns the seeded random tiebreaker for one player,
// keyed by (tournament, round, player) per spec §4.B so identical inputs
// always yield the same value regardless of call order.
func randomTiebreakValue(seed int64, tournamentID uuid.UUID, round int, playerID uuid.UUID) float64 {
	s := deriveSeed(seed, tournamentID.String(), strconv.Itoa(round), playerID.String())
	r := rand.New(rand.NewSource(s))
	return r.Float64()
}
