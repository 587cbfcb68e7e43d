package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReg(seq int, status RegistrationStatus) Registration {
	return Registration{
		RegistrationID: uuid.New(),
		PlayerID:       uuid.New(),
		TournamentID:   uuid.New(),
		SequenceID:     seq,
		Status:         status,
	}
}

func completedMatch(round int, p1, p2 uuid.UUID, p1Wins, p2Wins int) Match {
	end := time.Unix(int64(round)*1000, 0)
	return Match{
		MatchID:         uuid.New(),
		RoundNumber:     round,
		Player1ID:       p1,
		Player2ID:       &p2,
		Player1GameWins: p1Wins,
		Player2GameWins: p2Wins,
		EndTime:         &end,
	}
}

func byeMatch(round int, p uuid.UUID) Match {
	end := time.Unix(int64(round)*1000, 0)
	return Match{MatchID: uuid.New(), RoundNumber: round, Player1ID: p, EndTime: &end}
}

func TestAggregate_WinAndLoss(t *testing.T) {
	a := newReg(1, Active)
	b := newReg(2, Active)
	matches := []Match{
		completedMatch(1, a.PlayerID, b.PlayerID, 2, 0),
	}
	cfg := DefaultConfig(3, 1)

	ea := aggregate(a, matches, 1, cfg)
	assert.Equal(t, 1, ea.MatchWins)
	assert.Equal(t, PointsForWin, ea.MatchPoints)
	assert.Equal(t, 2, ea.GameWins)
	assert.Equal(t, []uuid.UUID{b.PlayerID}, ea.Opponents)

	eb := aggregate(b, matches, 1, cfg)
	assert.Equal(t, 1, eb.MatchLosses)
	assert.Equal(t, PointsForLoss, eb.MatchPoints)
	assert.Equal(t, 2, eb.GameLosses)
}

func TestAggregate_Bye(t *testing.T) {
	a := newReg(1, Active)
	cfg := DefaultConfig(3, 1)
	cfg.ByePoints = ByePoints{Wins: 2, Draws: 0}
	matches := []Match{byeMatch(1, a.PlayerID)}

	e := aggregate(a, matches, 1, cfg)
	require.Equal(t, 1, e.ByeCount)
	assert.Equal(t, 1, e.MatchWins)
	assert.Equal(t, PointsForWin, e.MatchPoints)
	assert.Equal(t, 2, e.GameWins)
	assert.Empty(t, e.Opponents, "byes never contribute an opponent")
}

// TestAggregate_LateEntryForfeits covers S4: a player joining at
// entry_round=3 shows two forfeit losses after round 2 and contributes no
// opponents to anyone's OMW%.
func TestAggregate_LateEntryForfeits(t *testing.T) {
	p := newReg(1, LateEntry)
	p.EntryRound = 3
	cfg := DefaultConfig(5, 1)

	e := aggregate(p, nil, 2, cfg)
	assert.Equal(t, 2, e.MatchLosses)
	assert.Equal(t, 0, e.MatchWins)
	assert.Equal(t, 2*PointsForLoss, e.MatchPoints)
	assert.Equal(t, 2, e.MatchesPlayed)
	assert.Empty(t, e.Opponents, "forfeits never contribute an opponent")
}

func TestAggregate_LateEntryForfeitCappedAtUpToRound(t *testing.T) {
	p := newReg(1, LateEntry)
	p.EntryRound = 3
	cfg := DefaultConfig(5, 1)

	e := aggregate(p, nil, 1, cfg)
	assert.Equal(t, 1, e.MatchesPlayed, "forfeit synthesis stops at upToRound")
}

func TestAggregate_StoredForfeitRowTakesPrecedence(t *testing.T) {
	p := newReg(1, LateEntry)
	p.EntryRound = 3
	cfg := DefaultConfig(5, 1)
	end := time.Unix(1, 0)
	stored := Match{MatchID: uuid.New(), RoundNumber: 1, Player1ID: p.PlayerID, IsLossForfeit: true, EndTime: &end}

	e := aggregate(p, []Match{stored}, 2, cfg)
	// round 1 covered by the stored row, round 2 synthesized: still 2 losses total.
	assert.Equal(t, 2, e.MatchLosses)
	assert.Equal(t, 2, e.MatchesPlayed)
}

func TestCloseForfeitedMatch(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	m := Match{MatchID: uuid.New(), RoundNumber: 3, Player1ID: a, Player2ID: &b}
	cfg := DefaultConfig(5, 1)
	cfg.ByePoints = ByePoints{Wins: 2, Draws: 0}

	closed, err := CloseForfeitedMatch(m, a, cfg, time.Unix(99, 0))
	require.NoError(t, err)
	assert.Equal(t, 0, closed.Player1GameWins)
	assert.Equal(t, 2, closed.Player2GameWins)
	require.NotNil(t, closed.EndTime)

	_, err = CloseForfeitedMatch(closed, a, cfg, time.Unix(100, 0))
	assert.Error(t, err, "already-closed match cannot be closed again")

	_, err = CloseForfeitedMatch(m, uuid.New(), cfg, time.Unix(99, 0))
	assert.Error(t, err, "unrelated player cannot forfeit-close a match")
}
