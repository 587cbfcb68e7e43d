package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTournament(cfg engine.SwissConfig) store.Tournament {
	return store.Tournament{ID: uuid.New(), Name: "test cup", Config: cfg, CreatedAt: time.Now(), UpdatedAt: time.Now()}
}

func TestMemStore_CreateAndGetTournament(t *testing.T) {
	ctx := context.Background()
	s := New()
	tour := newTournament(engine.DefaultConfig(3, 1))

	require.NoError(t, s.CreateTournament(ctx, tour))
	got, err := s.GetTournament(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, tour.Name, got.Name)

	assert.ErrorIs(t, s.CreateTournament(ctx, tour), store.ErrAlreadyExists)

	_, err = s.GetTournament(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMemStore_SavePairingsStampsByesComplete(t *testing.T) {
	ctx := context.Background()
	s := New()
	cfg := engine.DefaultConfig(3, 1)
	cfg.ByePoints = engine.ByePoints{Wins: 2, Draws: 0}
	tour := newTournament(cfg)
	require.NoError(t, s.CreateTournament(ctx, tour))

	p1, p2 := uuid.New(), uuid.New()
	pairings := []engine.Pairing{
		{RoundNumber: 1, Player1ID: p1, Player2ID: &p2, TableNumber: 1},
		{RoundNumber: 1, Player1ID: uuid.New(), IsBye: true, TableNumber: 2},
	}

	matches, err := s.SavePairings(ctx, tour.ID, pairings)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	var real, bye engine.Match
	for _, m := range matches {
		if m.Player2ID == nil {
			bye = m
		} else {
			real = m
		}
	}
	assert.Nil(t, real.EndTime, "a paired-but-not-yet-reported match stays open")
	require.NotNil(t, bye.EndTime, "a bye is stamped complete at creation")
	assert.Equal(t, 2, bye.Player1GameWins)

	stored, err := s.ListMatches(ctx, tour.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestMemStore_DropRegistrationAndRecordResult(t *testing.T) {
	ctx := context.Background()
	s := New()
	tour := newTournament(engine.DefaultConfig(3, 1))
	require.NoError(t, s.CreateTournament(ctx, tour))

	reg := engine.Registration{RegistrationID: uuid.New(), PlayerID: uuid.New(), TournamentID: tour.ID, SequenceID: 1, Status: engine.Active}
	require.NoError(t, s.AddRegistration(ctx, reg))

	require.NoError(t, s.DropRegistration(ctx, tour.ID, reg.PlayerID, 2))
	regs, err := s.ListRegistrations(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, engine.Dropped, regs[0].Status)
	require.NotNil(t, regs[0].DropRound)
	assert.Equal(t, 2, *regs[0].DropRound)

	assert.ErrorIs(t, s.DropRegistration(ctx, tour.ID, uuid.New(), 2), store.ErrNotFound)

	p2 := uuid.New()
	matches, err := s.SavePairings(ctx, tour.ID, []engine.Pairing{{RoundNumber: 1, Player1ID: reg.PlayerID, Player2ID: &p2, TableNumber: 1}})
	require.NoError(t, err)

	closed, err := engine.CloseForfeitedMatch(matches[0], reg.PlayerID, tour.Config, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.RecordResult(ctx, closed))

	stored, err := s.ListMatches(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.NotNil(t, stored[0].EndTime)
}
