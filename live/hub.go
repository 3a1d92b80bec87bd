package live

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
)

// Типы сообщений, которые поток генерации публикует в комнату турнира.
const (
	MessageGenerationStatus  = "GENERATION_STATUS"
	MessageSessionsGenerated = "SESSIONS_GENERATED"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub держит WebSocket-подключения, сгруппированные по комнатам турниров,
// и рассылает им события жизненного цикла генерации расписания.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.mu.Lock()
					if !client.isClosed {
						close(client.Send)
						client.isClosed = true
					}
					client.mu.Unlock()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// RoomForTournament возвращает идентификатор комнаты для турнира.
func RoomForTournament(tournamentID int) string {
	return strconv.Itoa(tournamentID)
}

// BroadcastToRoom отправляет сообщение всем клиентам в указанной комнате.
func (h *Hub) BroadcastToRoom(roomID string, message Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	message.RoomID = roomID
	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling message for room %s: %v", roomID, err)
		return
	}

	for client := range roomClients {
		client.mu.Lock()
		if client.isClosed {
			client.mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Канал клиента переполнен, сообщение пропускаем.
		}
		client.mu.Unlock()
	}
}

// BroadcastJobStatus публикует обновление статуса фоновой задачи генерации.
func (h *Hub) BroadcastJobStatus(tournamentID int, payload interface{}) {
	h.BroadcastToRoom(RoomForTournament(tournamentID), Message{
		Type:    MessageGenerationStatus,
		Payload: payload,
	})
}

// BroadcastGenerated уведомляет комнату, что расписание сгенерировано.
func (h *Hub) BroadcastGenerated(tournamentID, sessionsCount int) {
	h.BroadcastToRoom(RoomForTournament(tournamentID), Message{
		Type: MessageSessionsGenerated,
		Payload: map[string]int{
			"tournament_id":  tournamentID,
			"sessions_count": sessionsCount,
		},
	})
}
