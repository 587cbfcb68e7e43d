// Package memstore is an in-memory store.Store, grounded in the teacher's
// repository package structure (one constructor per aggregate, context-aware
// methods) but backed by guarded maps instead of database/sql. It is the
// default backend for tests and for running a single-process event without
// Postgres.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/google/uuid"
)

type memStore struct {
	mu            sync.RWMutex
	tournaments   map[uuid.UUID]store.Tournament
	registrations map[uuid.UUID][]engine.Registration // keyed by tournament
	matches       map[uuid.UUID][]engine.Match         // keyed by tournament
}

// New returns an empty, ready-to-use in-memory store.
func New() store.Store {
	return &memStore{
		tournaments:   make(map[uuid.UUID]store.Tournament),
		registrations: make(map[uuid.UUID][]engine.Registration),
		matches:       make(map[uuid.UUID][]engine.Match),
	}
}

func (s *memStore) GetTournament(_ context.Context, id uuid.UUID) (store.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tournaments[id]
	if !ok {
		return store.Tournament{}, store.ErrNotFound
	}
	return t, nil
}

func (s *memStore) ListRegistrations(_ context.Context, tournamentID uuid.UUID) ([]engine.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.Registration, len(s.registrations[tournamentID]))
	copy(out, s.registrations[tournamentID])
	return out, nil
}

func (s *memStore) ListMatches(_ context.Context, tournamentID uuid.UUID) ([]engine.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]engine.Match, len(s.matches[tournamentID]))
	copy(out, s.matches[tournamentID])
	return out, nil
}

func (s *memStore) CreateTournament(_ context.Context, t store.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tournaments[t.ID]; exists {
		return store.ErrAlreadyExists
	}
	s.tournaments[t.ID] = t
	return nil
}

func (s *memStore) SetCurrentRound(_ context.Context, tournamentID uuid.UUID, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[tournamentID]
	if !ok {
		return store.ErrNotFound
	}
	t.CurrentRound = round
	t.UpdatedAt = time.Now()
	s.tournaments[tournamentID] = t
	return nil
}

func (s *memStore) AddRegistration(_ context.Context, reg engine.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registrations[reg.TournamentID] = append(s.registrations[reg.TournamentID], reg)
	return nil
}

func (s *memStore) DropRegistration(_ context.Context, tournamentID, playerID uuid.UUID, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	regs := s.registrations[tournamentID]
	for i := range regs {
		if regs[i].PlayerID == playerID {
			regs[i].Status = engine.Dropped
			r := round
			regs[i].DropRound = &r
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) SavePairings(_ context.Context, tournamentID uuid.UUID, pairings []engine.Pairing) ([]engine.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[tournamentID]
	if !ok {
		return nil, store.ErrNotFound
	}
	now := time.Now()
	out := make([]engine.Match, 0, len(pairings))
	for _, p := range pairings {
		out = append(out, store.PairingToMatch(tournamentID, p, t.Config, now))
	}
	s.matches[tournamentID] = append(s.matches[tournamentID], out...)
	return out, nil
}

func (s *memStore) RecordResult(_ context.Context, match engine.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.matches[match.TournamentID]
	for i := range rows {
		if rows[i].MatchID == match.MatchID {
			rows[i] = match
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *memStore) SaveMatch(_ context.Context, match engine.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.matches[match.TournamentID]
	for i := range rows {
		if rows[i].MatchID == match.MatchID {
			rows[i] = match
			return nil
		}
	}
	s.matches[match.TournamentID] = append(rows, match)
	return nil
}
