package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/cup-engine/brackets"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origins are enforced by the CORS layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub    *brackets.Hub
	logger *slog.Logger
}

func NewWebSocketHandler(hub *brackets.Hub, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// ServeWs subscribes the client to live events of one edition at
// /ws/editions/{editionID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	editionID, err := getIDFromURL(r, "editionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.Int("edition_id", editionID), slog.Any("error", err))
		return
	}

	client := brackets.NewClient(h.hub, conn, brackets.EditionRoom(editionID))
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	h.logger.DebugContext(r.Context(), "websocket client subscribed", slog.Int("edition_id", editionID))
}
