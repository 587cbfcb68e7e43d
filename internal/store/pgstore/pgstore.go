// Package pgstore is a store.Store backed by Postgres via database/sql and
// lib/pq, grounded in the teacher's internal/repository package: one struct
// per aggregate wrapping *sql.DB, context-aware methods, ExecContext for
// writes and QueryRowContext/QueryContext with explicit Scan for reads.
package pgstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

func encodeConfig(cfg engine.SwissConfig) ([]byte, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("pgstore: encoding config: %w", err)
	}
	return data, nil
}

func decodeConfig(data []byte, cfg *engine.SwissConfig) error {
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("pgstore: decoding config: %w", err)
	}
	return nil
}

// Schema is the DDL pgstore expects to already exist; callers run it once
// (via a migration tool or psql) before constructing a Store.
const Schema = `
CREATE TABLE IF NOT EXISTS tournaments (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	rounds         INT NOT NULL,
	seed           BIGINT NOT NULL,
	config         JSONB NOT NULL,
	current_round  INT NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS registrations (
	registration_id UUID PRIMARY KEY,
	tournament_id    UUID NOT NULL REFERENCES tournaments(id),
	player_id        UUID NOT NULL,
	sequence_id      INT NOT NULL,
	status           TEXT NOT NULL,
	drop_round       INT,
	entry_round      INT NOT NULL DEFAULT 0,
	UNIQUE (tournament_id, sequence_id)
);

CREATE TABLE IF NOT EXISTS matches (
	match_id          UUID PRIMARY KEY,
	tournament_id     UUID NOT NULL REFERENCES tournaments(id),
	round_number      INT NOT NULL,
	player1_id        UUID NOT NULL,
	player2_id        UUID,
	player1_game_wins INT NOT NULL DEFAULT 0,
	player2_game_wins INT NOT NULL DEFAULT 0,
	draws             INT NOT NULL DEFAULT 0,
	table_number      INT NOT NULL DEFAULT 0,
	end_time          TIMESTAMPTZ,
	is_loss_forfeit   BOOLEAN NOT NULL DEFAULT FALSE
);
`

type pgStore struct {
	db *sql.DB
}

// New wraps an already-opened *sql.DB (callers dial with
// sql.Open("postgres", dsn), per the teacher's cmd/main.go).
func New(db *sql.DB) store.Store {
	return &pgStore{db: db}
}

func (s *pgStore) GetTournament(ctx context.Context, id uuid.UUID) (store.Tournament, error) {
	var (
		t          store.Tournament
		configJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, current_round, config, created_at, updated_at
		FROM tournaments WHERE id = $1
	`, id).Scan(&t.ID, &t.Name, &t.CurrentRound, &configJSON, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return store.Tournament{}, store.ErrNotFound
	}
	if err != nil {
		return store.Tournament{}, fmt.Errorf("pgstore: get tournament: %w", err)
	}
	if err := decodeConfig(configJSON, &t.Config); err != nil {
		return store.Tournament{}, err
	}
	return t, nil
}

func (s *pgStore) ListRegistrations(ctx context.Context, tournamentID uuid.UUID) ([]engine.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT registration_id, tournament_id, player_id, sequence_id, status, drop_round, entry_round
		FROM registrations WHERE tournament_id = $1 ORDER BY sequence_id
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list registrations: %w", err)
	}
	defer rows.Close()

	var out []engine.Registration
	for rows.Next() {
		var r engine.Registration
		var status string
		if err := rows.Scan(&r.RegistrationID, &r.TournamentID, &r.PlayerID, &r.SequenceID, &status, &r.DropRound, &r.EntryRound); err != nil {
			return nil, fmt.Errorf("pgstore: scan registration: %w", err)
		}
		r.Status = engine.RegistrationStatus(status)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *pgStore) ListMatches(ctx context.Context, tournamentID uuid.UUID) ([]engine.Match, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT match_id, tournament_id, round_number, player1_id, player2_id,
		       player1_game_wins, player2_game_wins, draws, table_number,
		       end_time, is_loss_forfeit
		FROM matches WHERE tournament_id = $1 ORDER BY round_number, table_number
	`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("pgstore: list matches: %w", err)
	}
	defer rows.Close()

	var out []engine.Match
	for rows.Next() {
		var m engine.Match
		var p2 uuid.NullUUID
		var end sql.NullTime
		if err := rows.Scan(&m.MatchID, &m.TournamentID, &m.RoundNumber, &m.Player1ID, &p2,
			&m.Player1GameWins, &m.Player2GameWins, &m.Draws, &m.TableNumber, &end, &m.IsLossForfeit); err != nil {
			return nil, fmt.Errorf("pgstore: scan match: %w", err)
		}
		if p2.Valid {
			id := p2.UUID
			m.Player2ID = &id
		}
		if end.Valid {
			t := end.Time
			m.EndTime = &t
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *pgStore) CreateTournament(ctx context.Context, t store.Tournament) error {
	configJSON, err := encodeConfig(t.Config)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, rounds, seed, config, current_round, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.ID, t.Name, t.Config.Rounds, t.Config.Seed, configJSON, t.CurrentRound, t.CreatedAt, t.UpdatedAt)
	if pqErr, ok := err.(*pq.Error); ok {
		return fmt.Errorf("pgstore: create tournament (%s: %s): %w", pqErr.Code, pqErr.Message, err)
	}
	if err != nil {
		return fmt.Errorf("pgstore: create tournament: %w", err)
	}
	return nil
}

func (s *pgStore) SetCurrentRound(ctx context.Context, id uuid.UUID, round int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tournaments SET current_round = $1, updated_at = $2 WHERE id = $3
	`, round, time.Now(), id)
	if err != nil {
		return fmt.Errorf("pgstore: set current round: %w", err)
	}
	return requireOneRow(res)
}

func (s *pgStore) AddRegistration(ctx context.Context, reg engine.Registration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations (registration_id, tournament_id, player_id, sequence_id, status, drop_round, entry_round)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, reg.RegistrationID, reg.TournamentID, reg.PlayerID, reg.SequenceID, string(reg.Status), reg.DropRound, reg.EntryRound)
	if err != nil {
		return fmt.Errorf("pgstore: add registration: %w", err)
	}
	return nil
}

func (s *pgStore) DropRegistration(ctx context.Context, tournamentID, playerID uuid.UUID, round int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE registrations SET status = $1, drop_round = $2
		WHERE tournament_id = $3 AND player_id = $4
	`, string(engine.Dropped), round, tournamentID, playerID)
	if err != nil {
		return fmt.Errorf("pgstore: drop registration: %w", err)
	}
	return requireOneRow(res)
}

func (s *pgStore) SavePairings(ctx context.Context, tournamentID uuid.UUID, pairings []engine.Pairing) ([]engine.Match, error) {
	t, err := s.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("pgstore: save pairings: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	out := make([]engine.Match, 0, len(pairings))
	for _, p := range pairings {
		m := store.PairingToMatch(tournamentID, p, t.Config, now)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO matches (match_id, tournament_id, round_number, player1_id, player2_id,
			                     player1_game_wins, player2_game_wins, draws, table_number, end_time, is_loss_forfeit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`, m.MatchID, m.TournamentID, m.RoundNumber, m.Player1ID, m.Player2ID,
			m.Player1GameWins, m.Player2GameWins, m.Draws, m.TableNumber, m.EndTime, m.IsLossForfeit)
		if err != nil {
			return nil, fmt.Errorf("pgstore: insert match: %w", err)
		}
		out = append(out, m)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("pgstore: save pairings: commit: %w", err)
	}
	return out, nil
}

func (s *pgStore) RecordResult(ctx context.Context, match engine.Match) error {
	return s.SaveMatch(ctx, match)
}

func (s *pgStore) SaveMatch(ctx context.Context, match engine.Match) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE matches SET
			player1_game_wins = $1, player2_game_wins = $2, draws = $3,
			end_time = $4, is_loss_forfeit = $5
		WHERE match_id = $6
	`, match.Player1GameWins, match.Player2GameWins, match.Draws, match.EndTime, match.IsLossForfeit, match.MatchID)
	if err != nil {
		return fmt.Errorf("pgstore: save match: %w", err)
	}
	return requireOneRow(res)
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgstore: rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
