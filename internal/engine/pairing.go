package engine

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// RoundState reports the lifecycle state of one round from the match log,
// per spec §4.D (cont.): PENDING if no Match rows exist for it yet, ACTIVE
// if some are still missing an end_time, COMPLETED once every Match in that
// round has one.
func RoundState(matches []Match, round int) RoundStatus {
	found := false
	allDone := true
	for _, m := range matches {
		if m.RoundNumber != round {
			continue
		}
		found = true
		if m.EndTime == nil {
			allDone = false
		}
	}
	if !found {
		return RoundPending
	}
	if allDone {
		return RoundCompleted
	}
	return RoundActive
}

// filterEligible returns registrations that appear in pairings for the
// given round, per invariant 4: ACTIVE always; DROPPED only through
// DropRound; LATE_ENTRY only from EntryRound on.
func filterEligible(registrations []Registration, round int) []Registration {
	out := make([]Registration, 0, len(registrations))
	for _, r := range registrations {
		if isEligibleForRound(r, round) {
			out = append(out, r)
		}
	}
	return out
}

func isEligibleForRound(r Registration, round int) bool {
	switch r.Status {
	case Dropped:
		return r.DropRound != nil && round <= *r.DropRound
	case LateEntry:
		return round >= r.EntryRound
	default:
		return true
	}
}

func ptrUUID(id uuid.UUID) *uuid.UUID { return &id }

// PairRound1 implements spec §4.D "Round 1": seeded sort-and-split or a
// full random shuffle, with the last player in post-ordering taking the
// bye when the active count is odd.
func PairRound1(registrations []Registration, cfg SwissConfig, tournamentID uuid.UUID) ([]Pairing, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	active := filterEligible(registrations, 1)
	if len(active) < 2 {
		return nil, tooFewPlayers(len(active))
	}

	ordered := append([]Registration(nil), active...)
	switch cfg.Round1Mode {
	case Round1Seeded:
		sort.Slice(ordered, func(i, j int) bool { return ordered[i].SequenceID < ordered[j].SequenceID })
	default:
		rng := newPairingRNG(cfg.Seed, tournamentID, 1)
		rng.Shuffle(len(ordered), func(i, j int) { ordered[i], ordered[j] = ordered[j], ordered[i] })
	}

	var pairings []Pairing
	i := 0
	for ; i+1 < len(ordered); i += 2 {
		pairings = append(pairings, Pairing{
			RoundNumber: 1,
			Player1ID:   ordered[i].PlayerID,
			Player2ID:   ptrUUID(ordered[i+1].PlayerID),
		})
	}
	if len(ordered)%2 == 1 {
		pairings = append(pairings, Pairing{
			RoundNumber: 1,
			Player1ID:   ordered[len(ordered)-1].PlayerID,
			IsBye:       true,
		})
	}
	assignTables(pairings)
	return pairings, nil
}

// buildHistory collects, from every completed non-bye, non-forfeit match up
// to (but not including) the given round, the set of opponents each player
// has faced.
func buildHistory(matches []Match, round int) map[uuid.UUID]map[uuid.UUID]bool {
	h := make(map[uuid.UUID]map[uuid.UUID]bool)
	add := func(a, b uuid.UUID) {
		if h[a] == nil {
			h[a] = make(map[uuid.UUID]bool)
		}
		h[a][b] = true
	}
	for _, m := range matches {
		if m.EndTime == nil || m.RoundNumber >= round || m.IsBye() || m.IsLossForfeit || m.Player2ID == nil {
			continue
		}
		add(m.Player1ID, *m.Player2ID)
		add(*m.Player2ID, m.Player1ID)
	}
	return h
}

func buildByeCount(matches []Match, round int) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	for _, m := range matches {
		if m.EndTime == nil || m.RoundNumber >= round || !m.IsBye() {
			continue
		}
		counts[m.Player1ID]++
	}
	return counts
}

// derivePairDownCounts reconstructs, from the match log alone, how many
// times each player has previously been paired down: a single pass that
// keeps a running match-point total per player and, for every past round's
// non-bye matches, credits a pair-down to whichever side already had the
// higher point total going into that round (bracket membership is exactly
// partitioned by match-point total, so "different bracket" and "different
// point total at the time" coincide).
func derivePairDownCounts(matches []Match, round int) map[uuid.UUID]int {
	counts := make(map[uuid.UUID]int)
	points := make(map[uuid.UUID]int)

	byRound := make(map[int][]Match)
	maxRound := 0
	for _, m := range matches {
		if m.EndTime == nil || m.RoundNumber >= round {
			continue
		}
		byRound[m.RoundNumber] = append(byRound[m.RoundNumber], m)
		if m.RoundNumber > maxRound {
			maxRound = m.RoundNumber
		}
	}

	for r := 1; r <= maxRound; r++ {
		for _, m := range byRound[r] {
			if !m.IsBye() && !m.IsLossForfeit && m.Player2ID != nil {
				p1, p2 := points[m.Player1ID], points[*m.Player2ID]
				if p1 != p2 {
					if p1 > p2 {
						counts[m.Player1ID]++
					} else {
						counts[*m.Player2ID]++
					}
				}
			}
		}
		for _, m := range byRound[r] {
			switch {
			case m.IsBye():
				points[m.Player1ID] += PointsForWin
			case m.IsLossForfeit:
				// no points change
			case m.Player2ID != nil:
				switch {
				case m.Player1GameWins > m.Player2GameWins:
					points[m.Player1ID] += PointsForWin
				case m.Player1GameWins < m.Player2GameWins:
					points[*m.Player2ID] += PointsForWin
				default:
					points[m.Player1ID] += PointsForDraw
					points[*m.Player2ID] += PointsForDraw
				}
			}
		}
	}
	return counts
}

// groupByPoints partitions an already points-descending-sorted standings
// slice into contiguous brackets sharing the same MatchPoints.
func groupByPoints(entries []StandingsEntry) [][]StandingsEntry {
	if len(entries) == 0 {
		return nil
	}
	var brackets [][]StandingsEntry
	start := 0
	for i := 1; i <= len(entries); i++ {
		if i == len(entries) || entries[i].MatchPoints != entries[start].MatchPoints {
			brackets = append(brackets, entries[start:i])
			start = i
		}
	}
	return brackets
}

// candidate is one player still to be paired this round, tagged with the
// bracket it originated in (before any carry-down), needed to classify
// pair-downs. Which player is carried down is decided by the greedy scan
// alone; pair-down counts do not influence it.
type candidate struct {
	entry         StandingsEntry
	originBracket int
}

func (c candidate) id() uuid.UUID { return c.entry.Registration.PlayerID }

// roundPairer holds the state gathered once at the top of PairRound and
// implements the within-bracket greedy algorithm of spec §4.D.
type roundPairer struct {
	cfg           SwissConfig
	history       map[uuid.UUID]map[uuid.UUID]bool
	byeCount      map[uuid.UUID]int
	pairDownCount map[uuid.UUID]int
	round         int
	rng           interface{ Intn(int) int }
}

func (p *roundPairer) played(a, b uuid.UUID) bool {
	if !p.cfg.AvoidRepeatPairings {
		return false
	}
	return p.history[a][b]
}

// pairBrackets runs the bracket-by-bracket greedy pairing with carry-over,
// returning ImpossiblePairing if no recovery resolves a stuck bracket. The
// bye recipient, when the bottom bracket's pool is odd, is chosen up front
// by cfg.ByeAssignment rather than left as an artifact of pairing order. If
// no one left in the bottom pool is bye-eligible, the bye is upshifted into
// an already-paired higher bracket (upshiftBye) right here, since this is
// the only point in the algorithm where a preselection actually happens.
// Pool parity (an even pool always leaves an even number unpaired) means no
// single player is left over after the loop, so the upshift needs no
// separate post-loop case.
func (p *roundPairer) pairBrackets(brackets [][]StandingsEntry) ([]Pairing, error) {
	var result []Pairing
	var carry []candidate
	var preselectedBye *candidate

	for bIdx, bracket := range brackets {
		pool := make([]candidate, 0, len(carry)+len(bracket))
		pool = append(pool, carry...)
		for _, e := range bracket {
			pool = append(pool, candidate{entry: e, originBracket: bIdx})
		}
		carry = nil

		isBottom := bIdx == len(brackets)-1
		if isBottom && len(pool)%2 == 1 {
			chosen, rest, ok := p.selectByeCandidate(pool)
			if ok {
				preselectedBye = &chosen
				pool = rest
			} else {
				swapped, chosenEntry, err := p.upshiftBye(result, pool[len(pool)-1].entry)
				if err != nil {
					return nil, err
				}
				result = swapped
				preselectedBye = &candidate{entry: chosenEntry}
				pool = pool[:len(pool)-1]
			}
		}

		pairs, leftover, err := p.pairPool(pool, isBottom)
		if err != nil {
			return nil, err
		}
		result = append(result, pairs...)
		carry = leftover
	}

	switch {
	case len(carry) > 1:
		return nil, impossiblePairingFor(carry)
	case len(carry) == 1:
		// Unreachable by pool parity (see above); kept as a defensive report
		// of the lone leftover together with the preselected bye.
		return nil, impossiblePairingFor(append(carry, *preselectedBye))
	case preselectedBye != nil:
		result = append(result, Pairing{RoundNumber: p.round, Player1ID: preselectedBye.id(), IsBye: true})
	}

	return result, nil
}

// sameRank reports whether two standings entries are tied on every ranking
// key (match points and the full pairing tiebreaker chain), meaning either
// could equally be chosen as the odd-one-out for a bye.
func sameRank(a, b StandingsEntry) bool {
	if a.MatchPoints != b.MatchPoints || len(a.Tiebreakers) != len(b.Tiebreakers) {
		return false
	}
	for i := range a.Tiebreakers {
		if a.Tiebreakers[i].Value != b.Tiebreakers[i].Value {
			return false
		}
	}
	return true
}

// selectByeCandidate implements spec §6 bye_assignment: first among the
// group of players tied for last place in pool, pick the bye recipient per
// policy (uniformly at random, or the lowest-ranked bye-eligible one),
// skipping anyone already at the bye cap. If nobody in that tie group is
// eligible, keep walking upward through the rest of pool in rank order for
// the first eligible candidate, rather than giving up as soon as the exact
// tie group is exhausted. Returns ok=false only when no one anywhere in
// pool is bye-eligible, so the caller can fall back to upshifting into an
// already-paired higher bracket.
func (p *roundPairer) selectByeCandidate(pool []candidate) (candidate, []candidate, bool) {
	last := pool[len(pool)-1]
	start := len(pool) - 1
	for start > 0 && sameRank(pool[start-1].entry, last.entry) {
		start--
	}
	tieGroup := pool[start:]

	var eligible []int
	for i, c := range tieGroup {
		if p.byeEligible(c.id()) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) > 0 {
		var chosenIdx int
		switch p.cfg.ByeAssignment {
		case ByeLowestTiebreaker:
			chosenIdx = eligible[len(eligible)-1]
		default:
			chosenIdx = eligible[p.rng.Intn(len(eligible))]
		}

		chosen := tieGroup[chosenIdx]
		rest := make([]candidate, 0, len(pool)-1)
		rest = append(rest, pool[:start]...)
		for i, c := range tieGroup {
			if i != chosenIdx {
				rest = append(rest, c)
			}
		}
		return chosen, rest, true
	}

	for i := start - 1; i >= 0; i-- {
		if p.byeEligible(pool[i].id()) {
			chosen := pool[i]
			rest := make([]candidate, 0, len(pool)-1)
			rest = append(rest, pool[:i]...)
			rest = append(rest, pool[i+1:]...)
			return chosen, rest, true
		}
	}

	return candidate{}, nil, false
}

// pairPool runs one bracket's greedy pass: highest-ranked unpaired player
// scans downward for the first opponent not in history; failures carry the
// player to the next bracket (or, at the bottom bracket, attempt the
// one-level backtrack recovery before giving up).
func (p *roundPairer) pairPool(pool []candidate, isBottom bool) ([]Pairing, []candidate, error) {
	paired := make(map[uuid.UUID]bool, len(pool))
	var pairings []Pairing
	var leftover []candidate

	for i := 0; i < len(pool); i++ {
		if paired[pool[i].id()] {
			continue
		}
		p1 := pool[i]
		j := p.findOpponent(pool, i, paired)
		if j < 0 {
			leftover = append(leftover, p1)
			paired[p1.id()] = true
			continue
		}
		p2 := pool[j]
		paired[p1.id()] = true
		paired[p2.id()] = true
		pairings = append(pairings, p.emit(p1, p2))
	}

	if isBottom && len(leftover) > 1 {
		if recovered, ok := p.backtrack(pairings, leftover); ok {
			return recovered, nil, nil
		}
	}

	return pairings, leftover, nil
}

func (p *roundPairer) emit(p1, p2 candidate) Pairing {
	isPairDown := p1.originBracket != p2.originBracket
	if isPairDown && p.cfg.TrackPairDowns {
		if p1.originBracket < p2.originBracket {
			p.pairDownCount[p1.id()]++
		} else {
			p.pairDownCount[p2.id()]++
		}
	}
	return Pairing{
		RoundNumber: p.round,
		Player1ID:   p1.id(),
		Player2ID:   ptrUUID(p2.id()),
		IsPairDown:  isPairDown,
	}
}

// findOpponent scans pool in rank order (spec §4.D step 2.b) for the first
// unpaired candidate the player at index i has not already faced.
func (p *roundPairer) findOpponent(pool []candidate, i int, paired map[uuid.UUID]bool) int {
	self := pool[i]
	for j := i + 1; j < len(pool); j++ {
		if paired[pool[j].id()] {
			continue
		}
		if !p.played(self.id(), pool[j].id()) {
			return j
		}
	}
	return -1
}

// backtrack implements recovery step 1: swap adjacent pairs among the
// already-emitted pairings of this bracket to free a compatible opponent
// for each still-unpaired leftover player.
func (p *roundPairer) backtrack(pairings []Pairing, leftover []candidate) ([]Pairing, bool) {
	work := append([]Pairing(nil), pairings...)
	remaining := append([]candidate(nil), leftover...)

	for len(remaining) > 1 {
		stuck := remaining[0]
		swapped := false
		for idx, pr := range work {
			if pr.Player2ID == nil {
				continue
			}
			a, b := pr.Player1ID, *pr.Player2ID
			if !p.played(stuck.id(), a) {
				work[idx].Player2ID = ptrUUID(stuck.id())
				remaining[0] = candidate{entry: StandingsEntry{Registration: Registration{PlayerID: b}}, originBracket: stuck.originBracket}
				swapped = true
				break
			}
			if !p.played(stuck.id(), b) {
				work[idx].Player1ID = stuck.id()
				remaining[0] = candidate{entry: StandingsEntry{Registration: Registration{PlayerID: a}}, originBracket: stuck.originBracket}
				swapped = true
				break
			}
		}
		if !swapped {
			return nil, false
		}
		if len(remaining) == 2 {
			if !p.played(remaining[0].id(), remaining[1].id()) {
				work = append(work, Pairing{
					RoundNumber: p.round,
					Player1ID:   remaining[0].id(),
					Player2ID:   ptrUUID(remaining[1].id()),
					IsPairDown:  remaining[0].originBracket != remaining[1].originBracket,
				})
				remaining = nil
				break
			}
			return nil, false
		}
		remaining = remaining[:1]
	}
	return work, true
}

func (p *roundPairer) byeEligible(pid uuid.UUID) bool {
	max := p.cfg.maxByes()
	if max == unlimitedByes {
		return true
	}
	return p.byeCount[pid] < max
}

// upshiftBye implements the bye-ineligibility recovery: find the
// lowest-ranked bye-eligible player among the already-emitted pairings and
// swap them into the bye slot, re-pairing their former opponent against the
// originally ineligible candidate.
func (p *roundPairer) upshiftBye(pairings []Pairing, ineligible StandingsEntry) ([]Pairing, StandingsEntry, error) {
	for i := len(pairings) - 1; i >= 0; i-- {
		pr := pairings[i]
		if pr.Player2ID == nil {
			continue
		}
		for _, candidateID := range []uuid.UUID{*pr.Player2ID, pr.Player1ID} {
			if !p.byeEligible(candidateID) || candidateID == ineligible.Registration.PlayerID {
				continue
			}
			other := pr.Player1ID
			if candidateID == pr.Player1ID {
				other = *pr.Player2ID
			}
			if p.played(other, ineligible.Registration.PlayerID) {
				continue
			}
			newPairings := append([]Pairing(nil), pairings[:i]...)
			newPairings = append(newPairings, Pairing{
				RoundNumber: p.round,
				Player1ID:   other,
				Player2ID:   ptrUUID(ineligible.Registration.PlayerID),
				IsPairDown:  pr.IsPairDown,
			})
			newPairings = append(newPairings, pairings[i+1:]...)
			return newPairings, StandingsEntry{Registration: Registration{PlayerID: candidateID}}, nil
		}
	}
	return nil, StandingsEntry{}, impossiblePairing(
		fmt.Sprintf("no bye-eligible player available to upshift for %s", ineligible.Registration.PlayerID),
		Suggestion{Action: RemedyAllowRematch, Detail: "permit a rematch so the bye cap can be honored"},
		Suggestion{Action: RemedyEndSwissEarly, Detail: "end the Swiss portion before this round"},
	)
}

func impossiblePairingFor(stuck []candidate) *Error {
	ids := make([]string, 0, len(stuck))
	for _, c := range stuck {
		ids = append(ids, c.id().String())
	}
	return impossiblePairing(
		fmt.Sprintf("cannot pair %d remaining player(s) without a rematch: %v", len(stuck), ids),
		Suggestion{Action: RemedyDropPlayer, Detail: "drop one of the stuck players from the tournament"},
		Suggestion{Action: RemedyAllowRematch, Detail: "permit a specific rematch for this round"},
		Suggestion{Action: RemedyEndSwissEarly, Detail: "end the Swiss portion of the tournament early"},
	)
}

func assignTables(pairings []Pairing) {
	for i := range pairings {
		pairings[i].TableNumber = i + 1
	}
}

// PairRound implements spec §4.D "Round N (N >= 2)": bracket formation by
// match points, greedy within-bracket pairing with carry-over, pair-down
// and bye-cap bookkeeping, and the impossible-pairing recovery chain.
func PairRound(registrations []Registration, matches []Match, round int, cfg SwissConfig, tournamentID uuid.UUID) ([]Pairing, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if round < 2 {
		return nil, invalidInputf("PairRound requires round >= 2 (got %d); use PairRound1 for the first round", round)
	}
	if round > cfg.Rounds {
		return nil, invalidInputf("round %d exceeds configured rounds %d", round, cfg.Rounds)
	}
	if st := RoundState(matches, round-1); st != RoundCompleted {
		return nil, roundNotReady(round)
	}

	eligible := filterEligible(registrations, round)
	if len(eligible) < 2 {
		return nil, tooFewPlayers(len(eligible))
	}

	standings, err := ComputeStandings(registrations, matches, round-1, cfg, "pairing")
	if err != nil {
		return nil, err
	}

	eligibleSet := make(map[uuid.UUID]bool, len(eligible))
	for _, r := range eligible {
		eligibleSet[r.PlayerID] = true
	}

	pool := make([]StandingsEntry, 0, len(eligible))
	for _, e := range standings {
		if eligibleSet[e.Registration.PlayerID] {
			pool = append(pool, e)
		}
	}

	pairer := &roundPairer{
		cfg:           cfg,
		history:       buildHistory(matches, round),
		byeCount:      buildByeCount(matches, round),
		pairDownCount: derivePairDownCounts(matches, round),
		round:         round,
		rng:           newPairingRNG(cfg.Seed, tournamentID, round),
	}

	pairings, err := pairer.pairBrackets(groupByPoints(pool))
	if err != nil {
		return nil, err
	}

	assignTables(pairings)
	return pairings, nil
}
