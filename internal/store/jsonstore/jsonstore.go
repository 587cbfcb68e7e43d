// Package jsonstore is a store.Store that keeps its working set in memory
// (delegating to memstore for the actual reads/writes) and persists a
// versioned JSON snapshot to a single file on disk, grounded in the
// teacher's json.Marshal/Unmarshal-of-a-JSONB-column pattern in
// internal/repository (e.g. match_proofs, bracket metadata) but applied to
// a whole-store dump instead of a single column. Intended for CLI runs and
// small events that do not warrant a Postgres instance.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store/memstore"
	"github.com/google/uuid"
)

// snapshotVersion is bumped whenever the on-disk shape changes incompatibly.
const snapshotVersion = 1

type snapshot struct {
	Version       int                                `json:"version"`
	Tournaments   []store.Tournament                  `json:"tournaments"`
	Registrations map[uuid.UUID][]engine.Registration `json:"registrations"`
	Matches       map[uuid.UUID][]engine.Match         `json:"matches"`
}

// Store is a file-backed store.Store: every mutating call is applied to an
// in-memory delegate and then the whole snapshot is rewritten to Path.
type Store struct {
	mu            sync.Mutex
	path          string
	delegate      store.Store
	tournamentIDs []uuid.UUID
}

// Open loads path if it exists, or starts from an empty store if it does
// not. Every mutating method rewrites the snapshot file itself, so there is
// no separate save step for callers.
func Open(path string) (*Store, error) {
	s := &Store{path: path, delegate: memstore.New()}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonstore: reading %s: %w", path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("jsonstore: decoding %s: %w", path, err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("jsonstore: %s has snapshot version %d, want %d", path, snap.Version, snapshotVersion)
	}

	ctx := context.Background()
	for _, t := range snap.Tournaments {
		if err := s.delegate.CreateTournament(ctx, t); err != nil {
			return nil, err
		}
		s.tournamentIDs = append(s.tournamentIDs, t.ID)
		for _, r := range snap.Registrations[t.ID] {
			if err := s.delegate.AddRegistration(ctx, r); err != nil {
				return nil, err
			}
		}
		for _, m := range snap.Matches[t.ID] {
			if err := s.delegate.SaveMatch(ctx, m); err != nil {
				return nil, err
			}
		}
	}
	return s, nil
}

func (s *Store) GetTournament(ctx context.Context, id uuid.UUID) (store.Tournament, error) {
	return s.delegate.GetTournament(ctx, id)
}

func (s *Store) ListRegistrations(ctx context.Context, id uuid.UUID) ([]engine.Registration, error) {
	return s.delegate.ListRegistrations(ctx, id)
}

func (s *Store) ListMatches(ctx context.Context, id uuid.UUID) ([]engine.Match, error) {
	return s.delegate.ListMatches(ctx, id)
}

func (s *Store) CreateTournament(ctx context.Context, t store.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.CreateTournament(ctx, t); err != nil {
		return err
	}
	s.tournamentIDs = append(s.tournamentIDs, t.ID)
	return s.save(ctx)
}

func (s *Store) SetCurrentRound(ctx context.Context, id uuid.UUID, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.SetCurrentRound(ctx, id, round); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Store) AddRegistration(ctx context.Context, reg engine.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.AddRegistration(ctx, reg); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Store) DropRegistration(ctx context.Context, tournamentID, playerID uuid.UUID, round int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.DropRegistration(ctx, tournamentID, playerID, round); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Store) SavePairings(ctx context.Context, tournamentID uuid.UUID, pairings []engine.Pairing) ([]engine.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := s.delegate.SavePairings(ctx, tournamentID, pairings)
	if err != nil {
		return nil, err
	}
	return out, s.save(ctx)
}

func (s *Store) RecordResult(ctx context.Context, match engine.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.RecordResult(ctx, match); err != nil {
		return err
	}
	return s.save(ctx)
}

func (s *Store) SaveMatch(ctx context.Context, match engine.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.delegate.SaveMatch(ctx, match); err != nil {
		return err
	}
	return s.save(ctx)
}

// save rewrites the whole snapshot file. Caller must hold s.mu.
func (s *Store) save(ctx context.Context) error {
	snap := snapshot{
		Version:       snapshotVersion,
		Registrations: make(map[uuid.UUID][]engine.Registration),
		Matches:       make(map[uuid.UUID][]engine.Match),
	}
	for _, id := range s.tournamentIDs {
		t, err := s.delegate.GetTournament(ctx, id)
		if err != nil {
			return err
		}
		snap.Tournaments = append(snap.Tournaments, t)

		regs, err := s.delegate.ListRegistrations(ctx, id)
		if err != nil {
			return err
		}
		snap.Registrations[id] = regs

		matches, err := s.delegate.ListMatches(ctx, id)
		if err != nil {
			return err
		}
		snap.Matches[id] = matches
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonstore: encoding snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonstore: writing %s: %w", tmp, err)
	}
	return os.Rename(tmp, s.path)
}
