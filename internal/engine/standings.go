package engine

import (
	"sort"

	"github.com/google/uuid"
)

// ComputeStandings implements spec §4.C. purpose selects which tiebreaker
// chain from cfg to use: "pairing" uses cfg.PairingTiebreakers, anything
// else (including "final") uses cfg.StandingsTiebreakers.
func ComputeStandings(registrations []Registration, matches []Match, upToRound int, cfg SwissConfig, purpose string) ([]StandingsEntry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chain := cfg.StandingsTiebreakers
	if purpose == "pairing" {
		chain = cfg.PairingTiebreakers
	}

	tournamentID := uuid.Nil
	byPlayer := make(map[uuid.UUID]Registration, len(registrations))
	eligible := make([]Registration, 0, len(registrations))
	for _, r := range registrations {
		byPlayer[r.PlayerID] = r
		if tournamentID == uuid.Nil {
			tournamentID = r.TournamentID
		}
		if isEligibleForStandings(r, matches) {
			eligible = append(eligible, r)
		}
	}

	records := make(map[uuid.UUID]StandingsEntry, len(eligible))
	for _, r := range eligible {
		e := aggregate(r, matches, upToRound, cfg)
		e.Registration = r
		e.Dropped = r.Status == Dropped
		records[r.PlayerID] = e
	}

	tc := &tieContext{
		tournamentID:  tournamentID,
		round:         upToRound,
		cfg:           cfg,
		records:       records,
		registrations: byPlayer,
		matches:       matches,
	}

	entries := make([]StandingsEntry, 0, len(eligible))
	for _, r := range eligible {
		e := records[r.PlayerID]
		e.Tiebreakers = make([]TiebreakerValue, len(chain))
		for i, name := range chain {
			calc := calculators[name]
			e.Tiebreakers[i] = TiebreakerValue{Name: string(name), Value: calc(r.PlayerID, tc)}
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.MatchPoints != b.MatchPoints {
			return a.MatchPoints > b.MatchPoints
		}
		for k := range a.Tiebreakers {
			if a.Tiebreakers[k].Value != b.Tiebreakers[k].Value {
				return a.Tiebreakers[k].Value > b.Tiebreakers[k].Value
			}
		}
		return a.Registration.SequenceID < b.Registration.SequenceID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries, nil
}

// isEligibleForStandings keeps a registration in standings if it is ACTIVE,
// DROPPED, or LATE_ENTRY, or if it appears in at least one match. Dropped
// players stay in standings after they leave; a late entrant is listed with
// its synthesized pre-entry forfeits, which also puts it into the pool
// PairRound draws from once its entry round arrives.
func isEligibleForStandings(r Registration, matches []Match) bool {
	if r.Status == Active {
		return true
	}
	for _, m := range matches {
		if m.Player1ID == r.PlayerID || (m.Player2ID != nil && *m.Player2ID == r.PlayerID) {
			return true
		}
	}
	return r.Status == Dropped || r.Status == LateEntry
}
