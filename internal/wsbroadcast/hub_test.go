package wsbroadcast

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func TestRegistry_PublishReachesSubscribedClient(t *testing.T) {
	registry := NewRegistry()
	tournamentID := uuid.New()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		client := &Client{Conn: conn, Send: make(chan []byte, 4)}
		registry.HubFor(tournamentID).Register(client)
		go client.WritePump()
		client.ReadPump(registry.HubFor(tournamentID))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	time.Sleep(20 * time.Millisecond) // let the server finish registering

	registry.Publish(tournamentID, EventPairingsPosted, map[string]int{"round": 1})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(data), string(EventPairingsPosted))
	require.Contains(t, string(data), tournamentID.String())
}

func TestRegistry_HubForIsStablePerTournament(t *testing.T) {
	registry := NewRegistry()
	id := uuid.New()
	require.Same(t, registry.HubFor(id), registry.HubFor(id))
}
