package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTiebreak_Triangle covers S1: three players in a beats-beats-beats
// cycle, each 1-1-0 at 3 points, so OMW% is identical for all three under
// the MTG floor (max(0.5, 0.33) = 0.5); only the seeded random tiebreaker
// separates them, and it must be stable for a fixed seed.
func TestTiebreak_Triangle(t *testing.T) {
	a, b, c := newReg(1, Active), newReg(2, Active), newReg(3, Active)
	matches := []Match{
		completedMatch(1, a.PlayerID, b.PlayerID, 2, 0),
		completedMatch(2, b.PlayerID, c.PlayerID, 2, 0),
		completedMatch(3, c.PlayerID, a.PlayerID, 2, 0),
	}
	cfg := MTGStandard(3, 42)
	regs := []Registration{a, b, c}

	entries, err := ComputeStandings(regs, matches, 3, cfg, "final")
	require.NoError(t, err)

	for _, e := range entries {
		assert.Equal(t, 1, e.MatchWins)
		assert.Equal(t, 1, e.MatchLosses)
		assert.Equal(t, 3, e.MatchPoints)
		omw := e.Tiebreakers[0]
		assert.Equal(t, string(TBOpponentMatchWinPct), omw.Name)
		assert.InDelta(t, 0.5, omw.Value, 1e-9)
	}

	entries2, err := ComputeStandings(regs, matches, 3, cfg, "final")
	require.NoError(t, err)
	for i := range entries {
		assert.Equal(t, entries[i].Registration.PlayerID, entries2[i].Registration.PlayerID, "seeded tiebreak order must be deterministic")
	}
}

func TestTiebreak_GameWinPercentGateAndFloor(t *testing.T) {
	cfg := DefaultConfig(3, 1)
	cfg.MinGamesForGW = 3
	cfg.GWFloor = 0.4

	e := StandingsEntry{GameWins: 1, GameLosses: 1}
	assert.Equal(t, 0.0, gameWinPercent(e, cfg), "below min_games_for_gw gates to 0")

	e = StandingsEntry{GameWins: 0, GameLosses: 4}
	assert.Equal(t, 0.4, gameWinPercent(e, cfg), "floored at gw_floor")

	e = StandingsEntry{GameWins: 4, GameLosses: 0}
	assert.Equal(t, 1.0, gameWinPercent(e, cfg))
}

func TestTiebreak_OMWAndOGWZeroWithNoOpponents(t *testing.T) {
	// Bye-exclusion invariant (quantified invariant 6): a player whose history is only byes has
	// no recorded opponents, so OMW%/OGW% must both be 0.
	tc := &tieContext{cfg: DefaultConfig(3, 1), records: map[uuid.UUID]StandingsEntry{}}
	pid := uuid.New()
	tc.records[pid] = StandingsEntry{ByeCount: 2, MatchWins: 2, MatchPoints: 6}

	assert.Equal(t, 0.0, calcOMW(pid, tc))
	assert.Equal(t, 0.0, calcOGW(pid, tc))
}

func TestTiebreak_BuchholzVariants(t *testing.T) {
	opp1, opp2, opp3 := uuid.New(), uuid.New(), uuid.New()
	pid := uuid.New()
	records := map[uuid.UUID]StandingsEntry{
		opp1: {MatchPoints: 3},
		opp2: {MatchPoints: 6},
		opp3: {MatchPoints: 9},
	}
	records[pid] = StandingsEntry{Opponents: []uuid.UUID{opp1, opp2, opp3}}

	std := DefaultConfig(3, 1)
	std.BuchholzVariant = BuchholzStandard
	tc := &tieContext{cfg: std, records: records}
	assert.Equal(t, 18.0, calcBuchholz(pid, tc))

	median := std
	median.BuchholzVariant = BuchholzMedian
	tc.cfg = median
	assert.Equal(t, 6.0, calcBuchholz(pid, tc), "median drops the highest and lowest")

	modified := std
	modified.BuchholzVariant = BuchholzModified
	tc.cfg = modified
	assert.Equal(t, 15.0, calcBuchholz(pid, tc), "modified drops only the lowest")
}

func TestTiebreak_SonnebornBergerWeightsEachEncounter(t *testing.T) {
	p, opp := uuid.New(), uuid.New()
	matches := []Match{
		completedMatch(1, p, opp, 2, 0),
		completedMatch(2, opp, p, 2, 0),
	}
	records := map[uuid.UUID]StandingsEntry{
		opp: {MatchPoints: 3},
	}
	tc := &tieContext{cfg: DefaultConfig(3, 1), records: records, matches: matches, round: 2}

	// one win (1 * 3) + one loss (0 * 3) against the same opponent, weighted
	// per encounter rather than once per distinct opponent.
	assert.Equal(t, 3.0, calcSonnebornBerger(p, tc))
}

func TestTiebreak_PlayerNumberPrefersLowerSequence(t *testing.T) {
	reg := newReg(4, Active)
	tc := &tieContext{registrations: map[uuid.UUID]Registration{reg.PlayerID: reg}}
	assert.InDelta(t, 0.25, calcPlayerNumber(reg.PlayerID, tc), 1e-9)
}

func TestConfigValidate_RejectsUnknownTiebreaker(t *testing.T) {
	cfg := DefaultConfig(3, 1)
	cfg.PairingTiebreakers = []TiebreakerName{"nonsense"}
	err := cfg.Validate()
	require.Error(t, err)
	var engErr *Error
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, KindInvalidConfig, engErr.Kind)
}
