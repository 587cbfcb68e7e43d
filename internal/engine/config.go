package engine

// TiebreakerName identifies one registered calculator in the tiebreaker
// library (§4.B). It is a string type, so an unknown name is not rejected
// when a SwissConfig is built; Validate rejects it, and every engine entry
// point runs Validate before computing anything.
type TiebreakerName string

const (
	TBMatchWinPercent        TiebreakerName = "mw"
	TBGameWinPercent         TiebreakerName = "gw"
	TBOpponentMatchWinPct    TiebreakerName = "omw"
	TBOpponentGameWinPct     TiebreakerName = "ogw"
	TBMatchWins              TiebreakerName = "match_wins"
	TBGameWins               TiebreakerName = "game_wins"
	TBBuchholz               TiebreakerName = "buchholz"
	TBSonnebornBerger        TiebreakerName = "sonneborn_berger"
	TBRandom                 TiebreakerName = "random"
	TBPlayerNumber           TiebreakerName = "player_number"
)

// BuchholzVariant selects which opponents contribute to a player's Buchholz
// score.
type BuchholzVariant string

const (
	BuchholzStandard BuchholzVariant = "standard"
	BuchholzMedian   BuchholzVariant = "median"
	BuchholzModified BuchholzVariant = "modified"
)

// ByeAssignmentPolicy selects how the bye recipient is chosen among tied
// candidates.
type ByeAssignmentPolicy string

const (
	ByeRandom           ByeAssignmentPolicy = "random"
	ByeLowestTiebreaker ByeAssignmentPolicy = "lowest_tiebreaker"
)

// Round1Mode selects how round 1 is paired.
type Round1Mode string

const (
	Round1Random Round1Mode = "random"
	Round1Seeded Round1Mode = "seeded"
)

// ByePoints is the match score credited to a bye recipient.
type ByePoints struct {
	Wins  int
	Draws int
}

// SwissConfig is the immutable configuration governing one tournament's
// pairing and standings computation. Every field is documented in spec §6;
// defaults are applied by DefaultConfig.
type SwissConfig struct {
	Rounds                int
	PairingTiebreakers    []TiebreakerName
	StandingsTiebreakers  []TiebreakerName
	AvoidRepeatPairings   bool
	TrackPairDowns        bool
	MaxByesPerPlayer       int // a negative value means unlimited
	ByeAssignment         ByeAssignmentPolicy
	ByePoints             ByePoints
	OMWFloor              float64
	GWFloor               float64
	MinGamesForGW         int
	BuchholzVariant       BuchholzVariant
	Round1Mode            Round1Mode
	Seed                  int64
}

// unlimitedByes is the sentinel MaxByesPerPlayer value meaning "no cap".
const unlimitedByes = -1

// DefaultConfig returns the spec §6 default SwissConfig for the given
// required fields (rounds, seed). Callers override fields by assignment;
// there is no string-keyed escape hatch.
func DefaultConfig(rounds int, seed int64) SwissConfig {
	return SwissConfig{
		Rounds:               rounds,
		PairingTiebreakers:   []TiebreakerName{TBOpponentMatchWinPct, TBGameWinPercent, TBOpponentGameWinPct, TBRandom},
		StandingsTiebreakers: []TiebreakerName{TBOpponentMatchWinPct, TBGameWinPercent, TBOpponentGameWinPct, TBRandom},
		AvoidRepeatPairings:  true,
		TrackPairDowns:       true,
		MaxByesPerPlayer:     1,
		ByeAssignment:        ByeRandom,
		ByePoints:            ByePoints{Wins: 2, Draws: 0},
		OMWFloor:             0.33,
		GWFloor:              0.33,
		MinGamesForGW:        1,
		BuchholzVariant:      BuchholzStandard,
		Round1Mode:           Round1Random,
		Seed:                 seed,
	}
}

// Validate checks the structural invariants a SwissConfig must satisfy
// before the engine will accept it (spec §7 InvalidConfig).
func (c SwissConfig) Validate() error {
	if c.Rounds < 1 || c.Rounds > 20 {
		return invalidConfigf("rounds must be in [1,20], got %d", c.Rounds)
	}
	if c.OMWFloor < 0 || c.OMWFloor > 1 {
		return invalidConfigf("omw_floor must be in [0,1], got %v", c.OMWFloor)
	}
	if c.GWFloor < 0 || c.GWFloor > 1 {
		return invalidConfigf("gw_floor must be in [0,1], got %v", c.GWFloor)
	}
	if c.MinGamesForGW < 0 {
		return invalidConfigf("min_games_for_gw must be >= 0, got %d", c.MinGamesForGW)
	}
	switch c.BuchholzVariant {
	case BuchholzStandard, BuchholzMedian, BuchholzModified, "":
	default:
		return invalidConfigf("unknown buchholz_variant %q", c.BuchholzVariant)
	}
	switch c.ByeAssignment {
	case ByeRandom, ByeLowestTiebreaker, "":
	default:
		return invalidConfigf("unknown bye_assignment %q", c.ByeAssignment)
	}
	switch c.Round1Mode {
	case Round1Random, Round1Seeded, "":
	default:
		return invalidConfigf("unknown round1 mode %q", c.Round1Mode)
	}
	for _, chain := range [][]TiebreakerName{c.PairingTiebreakers, c.StandingsTiebreakers} {
		for _, name := range chain {
			if _, ok := calculators[name]; !ok {
				return invalidConfigf("unknown tiebreaker %q", name)
			}
		}
	}
	return nil
}

func (c SwissConfig) maxByes() int {
	if c.MaxByesPerPlayer < 0 {
		return unlimitedByes
	}
	return c.MaxByesPerPlayer
}
