package engine

import (
	"sort"

	"github.com/google/uuid"
)

// Calculator is a pure tiebreaker function: (player, tie context) -> score,
// higher is better in ranking. Registered by name in calculators so that
// Validate rejects a SwissConfig naming an unknown tiebreaker before any
// calculator runs.
type Calculator func(playerID uuid.UUID, tc *tieContext) float64

// tieContext is the read-only state every calculator needs: every player's
// own aggregated record, the raw match log (for per-encounter results), the
// registration list (for sequence_id), and the config governing floors and
// the random seed.
type tieContext struct {
	tournamentID uuid.UUID
	round        int
	cfg          SwissConfig
	records      map[uuid.UUID]StandingsEntry
	registrations map[uuid.UUID]Registration
	matches      []Match
}

var calculators = map[TiebreakerName]Calculator{
	TBMatchWinPercent:     calcMatchWinPercent,
	TBGameWinPercent:      calcGameWinPercent,
	TBOpponentMatchWinPct: calcOMW,
	TBOpponentGameWinPct:  calcOGW,
	TBMatchWins:           calcMatchWins,
	TBGameWins:            calcGameWins,
	TBBuchholz:            calcBuchholz,
	TBSonnebornBerger:     calcSonnebornBerger,
	TBRandom:              calcRandom,
	TBPlayerNumber:        calcPlayerNumber,
}

// nonByeMatchesPlayed is matches_played excluding byes, per spec §4.B.
func nonByeMatchesPlayed(e StandingsEntry) int {
	return e.MatchesPlayed - e.ByeCount
}

// matchWinPercent is the ungated MW% of one player: match_points over 3x
// non-bye matches played, 0 if that player has played no non-bye matches.
func matchWinPercent(e StandingsEntry) float64 {
	n := nonByeMatchesPlayed(e)
	if n <= 0 {
		return 0
	}
	return float64(e.MatchPoints) / float64(3*n)
}

func calcMatchWinPercent(playerID uuid.UUID, tc *tieContext) float64 {
	return matchWinPercent(tc.records[playerID])
}

func totalGames(e StandingsEntry) int {
	return e.GameWins + e.GameLosses + e.GameDraws
}

// gameWinPercent is GW% of one player: bye games count on numerator and
// denominator (per MTG DCI rules), gated by min_games_for_gw and floored by
// gw_floor once the gate is satisfied.
func gameWinPercent(e StandingsEntry, cfg SwissConfig) float64 {
	total := totalGames(e)
	if total < cfg.MinGamesForGW {
		return 0
	}
	if total == 0 {
		return 0
	}
	gw := float64(e.GameWins) / float64(total)
	return max(gw, cfg.GWFloor)
}

func calcGameWinPercent(playerID uuid.UUID, tc *tieContext) float64 {
	return gameWinPercent(tc.records[playerID], tc.cfg)
}

// calcOMW averages MW% of every non-bye opponent, each floored at omw_floor
// before averaging; 0 with zero non-bye opponents.
func calcOMW(playerID uuid.UUID, tc *tieContext) float64 {
	e := tc.records[playerID]
	if len(e.Opponents) == 0 {
		return 0
	}
	sum := 0.0
	for _, opp := range e.Opponents {
		sum += max(matchWinPercent(tc.records[opp]), tc.cfg.OMWFloor)
	}
	return sum / float64(len(e.Opponents))
}

// calcOGW averages GW% (already floor/gate-applied) of every non-bye
// opponent; 0 with zero opponents.
func calcOGW(playerID uuid.UUID, tc *tieContext) float64 {
	e := tc.records[playerID]
	if len(e.Opponents) == 0 {
		return 0
	}
	sum := 0.0
	for _, opp := range e.Opponents {
		sum += gameWinPercent(tc.records[opp], tc.cfg)
	}
	return sum / float64(len(e.Opponents))
}

func calcMatchWins(playerID uuid.UUID, tc *tieContext) float64 {
	return float64(tc.records[playerID].MatchWins)
}

func calcGameWins(playerID uuid.UUID, tc *tieContext) float64 {
	return float64(tc.records[playerID].GameWins)
}

// calcBuchholz sums opponents' match-points, trimmed per configured variant.
func calcBuchholz(playerID uuid.UUID, tc *tieContext) float64 {
	e := tc.records[playerID]
	if len(e.Opponents) == 0 {
		return 0
	}
	points := make([]int, 0, len(e.Opponents))
	for _, opp := range e.Opponents {
		points = append(points, tc.records[opp].MatchPoints)
	}
	sort.Ints(points)

	switch tc.cfg.BuchholzVariant {
	case BuchholzMedian:
		if len(points) >= 3 {
			points = points[1 : len(points)-1]
		}
	case BuchholzModified:
		if len(points) >= 2 {
			points = points[1:]
		}
	}

	sum := 0
	for _, p := range points {
		sum += p
	}
	return float64(sum)
}

// calcSonnebornBerger sums, over every non-bye encounter, the opponent's
// current match-points weighted by the result against that opponent in that
// encounter (1 win, 0.5 draw, 0 loss). Computed from the raw match log,
// since the Opponents list records who was faced but not the result, so a
// permitted rematch is weighted once per encounter with its own result.
func calcSonnebornBerger(playerID uuid.UUID, tc *tieContext) float64 {
	sum := 0.0
	for _, m := range tc.matches {
		if m.EndTime == nil || m.RoundNumber > tc.round || m.IsBye() || m.IsLossForfeit {
			continue
		}
		var opponent uuid.UUID
		var myWins, oppWins int
		switch {
		case m.Player1ID == playerID:
			opponent = *m.Player2ID
			myWins, oppWins = m.Player1GameWins, m.Player2GameWins
		case m.Player2ID != nil && *m.Player2ID == playerID:
			opponent = m.Player1ID
			myWins, oppWins = m.Player2GameWins, m.Player1GameWins
		default:
			continue
		}
		var result float64
		switch {
		case myWins > oppWins:
			result = 1
		case myWins == oppWins:
			result = 0.5
		default:
			result = 0
		}
		sum += float64(tc.records[opponent].MatchPoints) * result
	}
	return sum
}

func calcRandom(playerID uuid.UUID, tc *tieContext) float64 {
	return randomTiebreakValue(tc.cfg.Seed, tc.tournamentID, tc.round, playerID)
}

// calcPlayerNumber ranks lower sequence_id higher, per GLOSSARY.
func calcPlayerNumber(playerID uuid.UUID, tc *tieContext) float64 {
	reg, ok := tc.registrations[playerID]
	if !ok || reg.SequenceID <= 0 {
		return 0
	}
	return 1 / float64(reg.SequenceID)
}
