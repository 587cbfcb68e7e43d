// Package api is the gin HTTP surface driving the engine, grounded in the
// teacher's cmd/main.go route layout (public reads, a protected group
// guarded by bearer-JWT auth for writes) and gin-contrib/cors setup, but
// exposing the Swiss engine's operations instead of bracket-tournament CRUD.
package api

import (
	"net/http"
	"strconv"

	"github.com/cliffdoyle/swiss-pairing-engine/internal/wsbroadcast"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// NewRouter builds the full gin engine: health check, public tournament/
// standings reads, a protected group for registration/pairing/result writes,
// and a websocket spectator feed per tournament.
func NewRouter(s *Server, allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowOrigins = allowedOrigins
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"}
	corsCfg.AllowCredentials = true
	corsCfg.MaxAge = 86400
	router.Use(cors.New(corsCfg))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/tournaments/:tournamentId", s.GetTournament)
	router.GET("/tournaments/:tournamentId/standings", s.GetStandings)
	router.GET("/tournaments/:tournamentId/rounds/:round/state", s.GetRoundState)
	router.GET("/tournaments/:tournamentId/ws", s.ServeSpectatorFeed)

	protected := router.Group("")
	protected.Use(AuthMiddleware(), RequireOrganizer())
	{
		protected.POST("/tournaments", s.CreateTournament)
		protected.POST("/tournaments/:tournamentId/registrations", s.RegisterPlayer)
		protected.POST("/tournaments/:tournamentId/registrations/:playerId/drop", s.DropPlayer)
		protected.POST("/tournaments/:tournamentId/rounds/:round/pair", s.PairRound)
		protected.PUT("/tournaments/:tournamentId/matches/:matchId", s.ReportResult)
	}

	return router
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ServeSpectatorFeed upgrades GET /tournaments/:tournamentId/ws to a
// websocket connection subscribed to that tournament's broadcast hub,
// adapted from the teacher's internal/handlers websocket upgrade handler.
func (s *Server) ServeSpectatorFeed(c *gin.Context) {
	tournamentID, err := uuid.Parse(c.Param("tournamentId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tournament id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := &wsbroadcast.Client{Conn: conn, Send: make(chan []byte, 16)}
	hub := s.Hubs.HubFor(tournamentID)
	hub.Register(client)

	go client.WritePump()
	client.ReadPump(hub)
}

func parseRound(c *gin.Context) (int, error) {
	round, err := strconv.Atoi(c.Param("round"))
	if err != nil || round < 1 {
		return 0, errInvalidRound
	}
	return round, nil
}

var errInvalidRound = &routeError{"round must be a positive integer"}

type routeError struct{ msg string }

func (e *routeError) Error() string { return e.msg }
