package engine

import "github.com/google/uuid"

// forfeitGameLosses is the number of game losses charged to the player for a
// late-entry forfeit round (spec §4.D "Drops and late entries"): the spec pins the
// match result (0 match wins) but is silent on the game score, so forfeits
// use the same losing line as a normal 0-2 defeat. This keeps forfeited
// rounds from silently inflating GW% (a 0-0 line would be indistinguishable
// from "no game played") while still not granting the phantom opponent a
// counted win anywhere. See DESIGN.md, "late-entry forfeit game score".
const forfeitGameLosses = 2

// aggregate derives one player's match record (everything in StandingsEntry
// except Rank and Tiebreakers) from the match log, per spec §4.A.
//
// A LATE_ENTRY registration's pre-entry rounds (1..EntryRound-1) never
// appear as real Pairings (invariant 4), so no repository ever persists a
// Match row for them; those forfeit rounds are synthesized here rather than
// required as stored rows, unless the repository already recorded one
// explicitly (in which case the stored row wins and synthesis is skipped
// for that round).
func aggregate(reg Registration, matches []Match, upToRound int, cfg SwissConfig) StandingsEntry {
	var e StandingsEntry
	seenRounds := make(map[int]bool)

	for _, m := range matches {
		if m.EndTime == nil || m.RoundNumber > upToRound {
			continue
		}
		switch {
		case m.Player1ID == reg.PlayerID:
			aggregateOne(&e, m, true, cfg)
			seenRounds[m.RoundNumber] = true
		case m.Player2ID != nil && *m.Player2ID == reg.PlayerID:
			aggregateOne(&e, m, false, cfg)
			seenRounds[m.RoundNumber] = true
		}
	}

	if reg.Status == LateEntry && reg.EntryRound > 1 {
		last := reg.EntryRound - 1
		if last > upToRound {
			last = upToRound
		}
		for round := 1; round <= last; round++ {
			if seenRounds[round] {
				continue
			}
			e.MatchLosses++
			e.MatchPoints += PointsForLoss
			e.GameLosses += forfeitGameLosses
			e.MatchesPlayed++
		}
	}

	return e
}

// aggregateOne folds a single match into e from the perspective of the
// player, where asP1 indicates whether the player was player1 in the match.
func aggregateOne(e *StandingsEntry, m Match, asP1 bool, cfg SwissConfig) {
	if m.IsBye() {
		e.MatchWins++
		e.MatchPoints += PointsForWin
		e.GameWins += cfg.ByePoints.Wins
		e.GameDraws += cfg.ByePoints.Draws
		e.ByeCount++
		e.MatchesPlayed++
		return
	}

	if m.IsLossForfeit {
		e.MatchLosses++
		e.MatchPoints += PointsForLoss
		e.GameLosses += forfeitGameLosses
		e.MatchesPlayed++
		return
	}

	myWins, oppWins := m.Player1GameWins, m.Player2GameWins
	if !asP1 {
		myWins, oppWins = oppWins, myWins
	}
	e.GameWins += myWins
	e.GameLosses += oppWins
	e.GameDraws += m.Draws
	e.MatchesPlayed++

	switch {
	case myWins > oppWins:
		e.MatchWins++
		e.MatchPoints += PointsForWin
	case myWins < oppWins:
		e.MatchLosses++
		e.MatchPoints += PointsForLoss
	default:
		e.MatchDraws++
		e.MatchPoints += PointsForDraw
	}

	var opponent uuid.UUID
	if asP1 {
		opponent = *m.Player2ID
	} else {
		opponent = m.Player1ID
	}
	e.Opponents = append(e.Opponents, opponent)
}

// Match points per spec §3/GLOSSARY.
const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)
