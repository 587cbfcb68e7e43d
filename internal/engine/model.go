// Package engine implements the Swiss pairing and standings core: a pure,
// deterministic (given a seed) set of algorithms over a snapshot of
// registrations and matches. The engine never touches a database or the
// network; callers (internal/store, internal/api) own persistence and
// transport and hand the engine plain values.
package engine

import (
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the lifecycle state of a player's registration.
type RegistrationStatus string

const (
	Active     RegistrationStatus = "ACTIVE"
	Dropped    RegistrationStatus = "DROPPED"
	LateEntry  RegistrationStatus = "LATE_ENTRY"
)

// Registration is a player's identity within one tournament.
type Registration struct {
	RegistrationID uuid.UUID
	PlayerID       uuid.UUID
	TournamentID   uuid.UUID
	SequenceID     int // 1-based registration order, unique within tournament
	Status         RegistrationStatus
	DropRound      *int // first round after which the player no longer appears in pairings
	EntryRound     int  // first round a LATE_ENTRY actually plays; 0/unused for ACTIVE/DROPPED at entry
}

// Match is one head-to-head or bye result.
type Match struct {
	MatchID         uuid.UUID
	TournamentID    uuid.UUID
	RoundNumber     int
	Player1ID       uuid.UUID
	Player2ID       *uuid.UUID // absent -> bye
	Player1GameWins int
	Player2GameWins int
	Draws           int
	TableNumber     int
	EndTime         *time.Time // absent -> match not yet complete
	IsLossForfeit   bool       // late-entry forfeit for a round the player did not play
}

// IsBye reports whether this match has no opponent.
func (m Match) IsBye() bool { return m.Player2ID == nil && !m.IsLossForfeit }

// StandingsEntry is one ranked row of a standings computation.
type StandingsEntry struct {
	Registration Registration
	Rank         int
	MatchWins    int
	MatchLosses  int
	MatchDraws   int
	MatchPoints  int
	GameWins     int
	GameLosses   int
	GameDraws    int
	MatchesPlayed int
	ByeCount     int
	Opponents    []uuid.UUID // opponent player IDs in encounter order, byes excluded
	Tiebreakers  []TiebreakerValue
	Dropped      bool
}

// TiebreakerValue is one named, computed tiebreaker score, kept in the order
// declared by the configured chain.
type TiebreakerValue struct {
	Name  string
	Value float64
}

// Pairing is one round's head-to-head or bye assignment.
type Pairing struct {
	RoundNumber int
	Player1ID   uuid.UUID
	Player2ID   *uuid.UUID // absent -> bye
	TableNumber int
	IsPairDown  bool
	IsBye       bool
}

// RoundStatus is the lifecycle state of a single round.
type RoundStatus string

const (
	RoundPending   RoundStatus = "PENDING"
	RoundActive    RoundStatus = "ACTIVE"
	RoundCompleted RoundStatus = "COMPLETED"
)
