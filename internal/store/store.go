// Package store defines the repository contract the Swiss engine is driven
// through. The engine package (internal/engine) never imports store: callers
// read a snapshot via ReadModel, hand it to the pure engine functions, and
// persist the result back via WriteModel. internal/store/memstore,
// internal/store/pgstore, and internal/store/jsonstore are concrete
// implementations of the same contract.
package store

import (
	"context"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/google/uuid"
)

// Tournament is the metadata envelope around a Swiss event: the engine
// itself is stateless and knows nothing of names or creation times, so that
// bookkeeping lives here rather than in internal/engine.
type Tournament struct {
	ID           uuid.UUID
	Name         string
	Config       engine.SwissConfig
	CurrentRound int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ErrNotFound is returned by lookups for an ID the store has no record of.
var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "store: not found" }

// ReadModel is the snapshot view the engine's pure functions are driven
// from: PairRound1, PairRound, and ComputeStandings all take exactly the
// slices these two methods return.
type ReadModel interface {
	GetTournament(ctx context.Context, tournamentID uuid.UUID) (Tournament, error)
	ListRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]engine.Registration, error)
	ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]engine.Match, error)
}

// WriteModel is every mutation the API layer needs to perform: registering
// players, persisting a freshly computed round's pairings as open matches,
// recording a reported result, and handling drops/late entries.
type WriteModel interface {
	CreateTournament(ctx context.Context, t Tournament) error
	SetCurrentRound(ctx context.Context, tournamentID uuid.UUID, round int) error

	AddRegistration(ctx context.Context, reg engine.Registration) error
	DropRegistration(ctx context.Context, tournamentID, playerID uuid.UUID, round int) error

	SavePairings(ctx context.Context, tournamentID uuid.UUID, pairings []engine.Pairing) ([]engine.Match, error)
	RecordResult(ctx context.Context, match engine.Match) error
	SaveMatch(ctx context.Context, match engine.Match) error
}

// Store is the full contract: every concrete backend implements both halves.
type Store interface {
	ReadModel
	WriteModel
}

// ErrAlreadyExists is returned by the in-memory backends' CreateTournament
// (memstore, and jsonstore through it) when the tournament ID is already
// present. AddRegistration does not check for duplicates, and pgstore
// returns the database's own error instead.
var ErrAlreadyExists = errAlreadyExists{}

type errAlreadyExists struct{}

func (errAlreadyExists) Error() string { return "store: already exists" }

// PairingToMatch converts a freshly computed Pairing into the Match row a
// backend persists for it. A bye has no opponent to report a result for, so
// it is stamped complete (EndTime set) at creation using the configured
// bye-equivalent game score; a real pairing is left open (EndTime nil) until
// RecordResult reports it.
func PairingToMatch(tournamentID uuid.UUID, p engine.Pairing, cfg engine.SwissConfig, now time.Time) engine.Match {
	m := engine.Match{
		MatchID:      uuid.New(),
		TournamentID: tournamentID,
		RoundNumber:  p.RoundNumber,
		Player1ID:    p.Player1ID,
		Player2ID:    p.Player2ID,
		TableNumber:  p.TableNumber,
	}
	if p.IsBye {
		m.Player1GameWins = cfg.ByePoints.Wins
		m.Draws = cfg.ByePoints.Draws
		m.EndTime = &now
	}
	return m
}
