package brackets

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesEditionRoom(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	go hub.Run()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		client := NewClient(hub, conn, EditionRoom(7))
		hub.Register <- client
		go client.WritePump()
		go client.ReadPump()
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.RoomSize(EditionRoom(7)) == 1 }, time.Second, 10*time.Millisecond)

	hub.Publish(8, EventRoundDrawn, map[string]int{"round_id": 1})
	hub.Publish(7, EventRoundResolved, map[string]int{"round_id": 2})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type    string         `json:"type"`
		RoomID  string         `json:"room_id"`
		Payload map[string]int `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, EventRoundResolved, msg.Type)
	assert.Equal(t, "edition_7", msg.RoomID)
	assert.Equal(t, 2, msg.Payload["round_id"])
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NotPanics(t, func() { hub.Publish(1, EventRoundDrawn, nil) })
	assert.Equal(t, 0, hub.RoomSize(EditionRoom(1)))
}
