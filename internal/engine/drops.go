package engine

import (
	"time"

	"github.com/google/uuid"
)

// CloseForfeitedMatch implements spec §4.D "Drops and late entries": when a
// registration drops mid-round, any Match left unfinished for that round is
// closed as a win for the opponent, scored at the configured bye-equivalent
// game score. The caller (not the engine) persists the returned Match.
func CloseForfeitedMatch(m Match, droppedPlayerID uuid.UUID, cfg SwissConfig, endTime time.Time) (Match, error) {
	if m.EndTime != nil {
		return m, invalidInputf("match %s already has an end_time set", m.MatchID)
	}
	if m.Player2ID == nil {
		return m, invalidInputf("match %s is a bye, nothing to forfeit-close", m.MatchID)
	}

	switch droppedPlayerID {
	case m.Player1ID:
		m.Player1GameWins = 0
		m.Player2GameWins = cfg.ByePoints.Wins
		m.Draws = cfg.ByePoints.Draws
	case *m.Player2ID:
		m.Player2GameWins = 0
		m.Player1GameWins = cfg.ByePoints.Wins
		m.Draws = cfg.ByePoints.Draws
	default:
		return m, invalidInputf("player %s dropped but is not part of match %s", droppedPlayerID, m.MatchID)
	}

	m.EndTime = &endTime
	return m, nil
}
