package engine

// Named SwissConfig presets, reproduced from GLOSSARY. Each takes Rounds and
// Seed as arguments, since those two fields have no sensible
// tournament-agnostic default.

// MTGStandard is the Magic: the Gathering DCI-style preset.
func MTGStandard(rounds int, seed int64) SwissConfig {
	cfg := DefaultConfig(rounds, seed)
	cfg.PairingTiebreakers = []TiebreakerName{TBOpponentMatchWinPct, TBGameWinPercent, TBOpponentGameWinPct, TBRandom}
	cfg.StandingsTiebreakers = cfg.PairingTiebreakers
	cfg.OMWFloor = 0.33
	cfg.GWFloor = 0.33
	cfg.ByePoints = ByePoints{Wins: 2, Draws: 0}
	cfg.MaxByesPerPlayer = 1
	return cfg
}

// PokemonStandard is the Pokémon TCG tiebreaker chain (no GW% of your own,
// only OMW%/OGW%, per published Play! Pokémon rules).
func PokemonStandard(rounds int, seed int64) SwissConfig {
	cfg := DefaultConfig(rounds, seed)
	cfg.PairingTiebreakers = []TiebreakerName{TBOpponentMatchWinPct, TBOpponentGameWinPct, TBRandom}
	cfg.StandingsTiebreakers = cfg.PairingTiebreakers
	cfg.OMWFloor = 0.25
	cfg.GWFloor = 0.25
	cfg.ByePoints = ByePoints{Wins: 2, Draws: 0}
	cfg.MaxByesPerPlayer = 1
	return cfg
}

// ChessStyle mirrors the FIDE Swiss tiebreaker chain: Buchholz, then
// Sonneborn-Berger, then player number, with byes worth a single game win
// and bye assignment pinned to the lowest-ranked eligible player.
func ChessStyle(rounds int, seed int64) SwissConfig {
	cfg := DefaultConfig(rounds, seed)
	cfg.PairingTiebreakers = []TiebreakerName{TBBuchholz, TBSonnebornBerger, TBPlayerNumber}
	cfg.StandingsTiebreakers = cfg.PairingTiebreakers
	cfg.ByePoints = ByePoints{Wins: 1, Draws: 0}
	cfg.ByeAssignment = ByeLowestTiebreaker
	return cfg
}

// SimpleRandom uses only the random tiebreaker for pairing, so players are
// ordered at random within each match-point bracket (brackets and the
// no-rematch rule still apply); standings keep the default chain so results
// remain orderable even though pairing ignores it.
func SimpleRandom(rounds int, seed int64) SwissConfig {
	cfg := DefaultConfig(rounds, seed)
	cfg.PairingTiebreakers = []TiebreakerName{TBRandom}
	return cfg
}
