package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStandings_MonotoneRankAndTotalOrder(t *testing.T) {
	a, b, c, d := newReg(1, Active), newReg(2, Active), newReg(3, Active), newReg(4, Active)
	regs := []Registration{a, b, c, d}
	matches := []Match{
		completedMatch(1, a.PlayerID, b.PlayerID, 2, 0),
		completedMatch(1, c.PlayerID, d.PlayerID, 2, 1),
	}
	cfg := MTGStandard(3, 7)

	entries, err := ComputeStandings(regs, matches, 1, cfg, "final")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	for i := 0; i+1 < len(entries); i++ {
		assert.LessOrEqual(t, entries[i].Rank, entries[i+1].Rank)
		if entries[i].MatchPoints > entries[i+1].MatchPoints {
			assert.Less(t, entries[i].Rank, entries[i+1].Rank, "monotone rank invariant")
		}
	}

	seen := map[int]bool{}
	for _, e := range entries {
		assert.False(t, seen[e.Rank], "total order: ranks must be distinct")
		seen[e.Rank] = true
	}
}

// TestComputeStandings_DroppedPlayerRemains covers S5: P1 drops
// during round 3 with the P1-vs-P2 match unfinished; once the engine closes
// that match as a 2-0 win for P2, P1 still appears in final standings.
func TestComputeStandings_DroppedPlayerRemains(t *testing.T) {
	p1 := newReg(1, Active)
	p2 := newReg(2, Active)
	round := 3
	dr := round
	p1.Status = Dropped
	p1.DropRound = &dr

	cfg := MTGStandard(5, 1)
	unfinished := Match{MatchID: uuid.New(), RoundNumber: round, Player1ID: p1.PlayerID, Player2ID: &p2.PlayerID}
	closed, err := CloseForfeitedMatch(unfinished, p1.PlayerID, cfg, time.Unix(int64(round)*1000, 0))
	require.NoError(t, err)

	entries, err := ComputeStandings([]Registration{p1, p2}, []Match{closed}, round, cfg, "final")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var p1Entry StandingsEntry
	for _, e := range entries {
		if e.Registration.PlayerID == p1.PlayerID {
			p1Entry = e
		}
	}
	assert.True(t, p1Entry.Dropped)
	assert.Equal(t, 1, p1Entry.MatchLosses)
}

func TestComputeStandings_PairingPurposeUsesPairingChain(t *testing.T) {
	cfg := ChessStyle(3, 1)
	a, b := newReg(1, Active), newReg(2, Active)
	entries, err := ComputeStandings([]Registration{a, b}, nil, 0, cfg, "pairing")
	require.NoError(t, err)
	require.NotEmpty(t, entries[0].Tiebreakers)
	assert.Equal(t, string(TBBuchholz), entries[0].Tiebreakers[0].Name)
}

func TestComputeStandings_InvalidConfigRejected(t *testing.T) {
	cfg := DefaultConfig(99, 1)
	_, err := ComputeStandings(nil, nil, 0, cfg, "final")
	require.Error(t, err)
}
