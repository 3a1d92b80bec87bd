package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Dosada05/tournament-sessions/live"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin.
		return true
	},
}

type WebSocketHandler struct {
	hub *live.Hub
}

func NewWebSocketHandler(hub *live.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

// ServeWs подписывает клиента на события генерации расписания турнира.
// Клиент подключается к /ws/tournaments/{tournamentID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentIDStr := chi.URLParam(r, "tournamentID")
	tournamentID, err := strconv.Atoi(tournamentIDStr)
	if err != nil || tournamentID <= 0 {
		http.Error(w, "Invalid tournamentID", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отправляет HTTP-ошибку клиенту.
		log.Printf("Failed to upgrade connection for tournament %d: %v", tournamentID, err)
		return
	}

	client := live.NewClient(h.hub, conn, live.RoomForTournament(tournamentID))
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
