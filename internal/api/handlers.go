package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/engine"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/store"
	"github.com/cliffdoyle/swiss-pairing-engine/internal/wsbroadcast"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Server holds the dependencies every handler needs: a repository, the
// spectator broadcast registry, and nothing else, in the teacher's
// "services built in main, closed over by handlers" shape.
type Server struct {
	Store store.Store
	Hubs  *wsbroadcast.Registry
}

// engineErrorStatus maps an engine.Error Kind to the HTTP status the
// teacher's handlers would have used for an equivalent domain error (its
// ErrTournamentNotFound -> 404 pattern, everything else -> 500/400).
func engineErrorStatus(err error) int {
	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		return http.StatusInternalServerError
	}
	switch engErr.Kind {
	case engine.KindInvalidConfig, engine.KindInvalidInput, engine.KindTooFewPlayers:
		return http.StatusBadRequest
	case engine.KindRoundNotReady, engine.KindImpossiblePairing:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondEngineError(c *gin.Context, err error) {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		c.JSON(engineErrorStatus(err), gin.H{
			"error":       engErr.Message,
			"kind":        engErr.Kind,
			"suggestions": engErr.Suggestions,
		})
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

type createTournamentRequest struct {
	Name   string `json:"name" binding:"required"`
	Rounds int    `json:"rounds" binding:"required"`
	Seed   int64  `json:"seed"`
	Preset string `json:"preset"` // "mtg", "pokemon", "chess", "simple"; default "mtg"
}

func presetConfig(name string, rounds int, seed int64) engine.SwissConfig {
	switch name {
	case "pokemon":
		return engine.PokemonStandard(rounds, seed)
	case "chess":
		return engine.ChessStyle(rounds, seed)
	case "simple":
		return engine.SimpleRandom(rounds, seed)
	default:
		return engine.MTGStandard(rounds, seed)
	}
}

// CreateTournament handles POST /tournaments.
func (s *Server) CreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := presetConfig(req.Preset, req.Rounds, req.Seed)
	if err := cfg.Validate(); err != nil {
		respondEngineError(c, err)
		return
	}

	now := time.Now()
	tour := store.Tournament{ID: uuid.New(), Name: req.Name, Config: cfg, CreatedAt: now, UpdatedAt: now}
	if err := s.Store.CreateTournament(c.Request.Context(), tour); err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tour)
}

// GetTournament handles GET /tournaments/:tournamentId.
func (s *Server) GetTournament(c *gin.Context) {
	id, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	tour, err := s.Store.GetTournament(c.Request.Context(), id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, tour)
}

type registerPlayerRequest struct {
	PlayerID   *string `json:"player_id,omitempty"` // omit to let the server mint one
	SequenceID int     `json:"sequence_id" binding:"required"`
	LateEntry  bool    `json:"late_entry"`
	EntryRound int     `json:"entry_round"`
}

// RegisterPlayer handles POST /tournaments/:tournamentId/registrations.
func (s *Server) RegisterPlayer(c *gin.Context) {
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	var req registerPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := uuid.New()
	if req.PlayerID != nil {
		parsed, err := uuid.Parse(*req.PlayerID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player_id"})
			return
		}
		playerID = parsed
	}

	reg := engine.Registration{
		RegistrationID: uuid.New(),
		PlayerID:       playerID,
		TournamentID:   tournamentID,
		SequenceID:     req.SequenceID,
		Status:         engine.Active,
		EntryRound:     req.EntryRound,
	}
	if req.LateEntry {
		reg.Status = engine.LateEntry
	}

	if err := s.Store.AddRegistration(c.Request.Context(), reg); err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reg)
}

// DropPlayer handles POST /tournaments/:tournamentId/registrations/:playerId/drop.
// Any match left unfinished for the round it drops in is closed as a win for
// the opponent via engine.CloseForfeitedMatch (spec §4.D).
func (s *Server) DropPlayer(c *gin.Context) {
	ctx := c.Request.Context()
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	playerID, err := uuid.Parse(c.Param("playerId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}
	var req struct {
		Round int `json:"round" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tour, err := s.Store.GetTournament(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if err := s.Store.DropRegistration(ctx, tournamentID, playerID, req.Round); err != nil {
		respondEngineError(c, err)
		return
	}

	matches, err := s.Store.ListMatches(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	now := time.Now()
	for _, m := range matches {
		if m.RoundNumber != req.Round || m.EndTime != nil {
			continue
		}
		if m.Player1ID != playerID && (m.Player2ID == nil || *m.Player2ID != playerID) {
			continue
		}
		closed, err := engine.CloseForfeitedMatch(m, playerID, tour.Config, now)
		if err != nil {
			respondEngineError(c, err)
			return
		}
		if err := s.Store.RecordResult(ctx, closed); err != nil {
			respondEngineError(c, err)
			return
		}
	}

	s.Hubs.Publish(tournamentID, wsbroadcast.EventPlayerDropped, gin.H{"player_id": playerID, "round": req.Round})
	c.Status(http.StatusNoContent)
}

// PairRound handles POST /tournaments/:tournamentId/rounds/:round/pair.
func (s *Server) PairRound(c *gin.Context) {
	ctx := c.Request.Context()
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	round, err := parseRound(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tour, err := s.Store.GetTournament(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	regs, err := s.Store.ListRegistrations(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	var pairings []engine.Pairing
	if round == 1 {
		pairings, err = engine.PairRound1(regs, tour.Config, tournamentID)
	} else {
		matches, listErr := s.Store.ListMatches(ctx, tournamentID)
		if listErr != nil {
			respondEngineError(c, listErr)
			return
		}
		pairings, err = engine.PairRound(regs, matches, round, tour.Config, tournamentID)
	}
	if err != nil {
		respondEngineError(c, err)
		return
	}

	matches, err := s.Store.SavePairings(ctx, tournamentID, pairings)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	if err := s.Store.SetCurrentRound(ctx, tournamentID, round); err != nil {
		respondEngineError(c, err)
		return
	}

	s.Hubs.Publish(tournamentID, wsbroadcast.EventPairingsPosted, gin.H{"round": round, "matches": matches})
	c.JSON(http.StatusCreated, matches)
}

type reportResultRequest struct {
	Player1GameWins int `json:"player1_game_wins"`
	Player2GameWins int `json:"player2_game_wins"`
	Draws           int `json:"draws"`
}

// ReportResult handles PUT /tournaments/:tournamentId/matches/:matchId.
func (s *Server) ReportResult(c *gin.Context) {
	ctx := c.Request.Context()
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	matchID, err := uuid.Parse(c.Param("matchId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}
	var req reportResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	matches, err := s.Store.ListMatches(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	var target *engine.Match
	for i := range matches {
		if matches[i].MatchID == matchID {
			target = &matches[i]
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	now := time.Now()
	target.Player1GameWins = req.Player1GameWins
	target.Player2GameWins = req.Player2GameWins
	target.Draws = req.Draws
	target.EndTime = &now

	if err := s.Store.RecordResult(ctx, *target); err != nil {
		respondEngineError(c, err)
		return
	}

	s.Hubs.Publish(tournamentID, wsbroadcast.EventResultReported, target)
	c.JSON(http.StatusOK, target)
}

// GetStandings handles GET /tournaments/:tournamentId/standings.
func (s *Server) GetStandings(c *gin.Context) {
	ctx := c.Request.Context()
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	tour, err := s.Store.GetTournament(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	regs, err := s.Store.ListRegistrations(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	matches, err := s.Store.ListMatches(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	entries, err := engine.ComputeStandings(regs, matches, tour.CurrentRound, tour.Config, "final")
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetRoundState handles GET /tournaments/:tournamentId/rounds/:round/state.
func (s *Server) GetRoundState(c *gin.Context) {
	ctx := c.Request.Context()
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}
	round, err := parseRound(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	matches, err := s.Store.ListMatches(ctx, tournamentID)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round, "state": engine.RoundState(matches, round)})
}
