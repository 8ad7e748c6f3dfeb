package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// Client represents a connected WebSocket client
type Client struct {
	conn       *websocket.Conn
	playerID   string
	matchToken string
	send       chan []byte
}

// Hub maintains the set of active clients grouped per match
type Hub struct {
	clients    map[string]*Client            // playerID -> Client
	matchRooms map[string]map[string]*Client // matchToken -> playerID -> Client
	mu         sync.RWMutex
}

// MatchHub is the global hub shared by the HTTP layer and the event subscriber
var MatchHub = NewHub()

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		matchRooms: make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A replaced client must leave its room before its channel closes, or a
	// later broadcast to that room would hit the closed channel.
	if old, exists := h.clients[c.playerID]; exists {
		if room, ok := h.matchRooms[old.matchToken]; ok && room[old.playerID] == old {
			delete(room, old.playerID)
			if len(room) == 0 {
				delete(h.matchRooms, old.matchToken)
			}
		}
		close(old.send)
	}
	h.clients[c.playerID] = c

	room, exists := h.matchRooms[c.matchToken]
	if !exists {
		room = make(map[string]*Client)
		h.matchRooms[c.matchToken] = room
	}
	room[c.playerID] = c
	log.Printf("[WS] player %s joined match %s (room_size=%d)", c.playerID, c.matchToken, len(room))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, exists := h.clients[c.playerID]; exists && current == c {
		delete(h.clients, c.playerID)
		close(c.send)
	}
	if room, exists := h.matchRooms[c.matchToken]; exists {
		if room[c.playerID] == c {
			delete(room, c.playerID)
		}
		if len(room) == 0 {
			delete(h.matchRooms, c.matchToken)
		}
	}
}

// BroadcastToMatch sends a message to every spectator and player on a match
func (h *Hub) BroadcastToMatch(matchToken string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, exists := h.matchRooms[matchToken]; exists {
		for _, client := range room {
			select {
			case client.send <- data:
			default:
				// Client's buffer is full
				log.Printf("Client send buffer full for player %s in match %s, dropping message", client.playerID, matchToken)
			}
		}
	}
}

// SendToPlayer sends a message to a specific player
func (h *Hub) SendToPlayer(playerID string, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[playerID]; exists {
		select {
		case client.send <- data:
		default:
			log.Printf("[WS] SendToPlayer dropped message for player %s (buffer full)", playerID)
		}
	}
}

// writePump writes messages to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed: connection is being replaced or cleaned up.
				// Best-effort close frame; the conn may already be gone.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("WebSocket write error for player %s: %v", c.playerID, err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("WebSocket ping error for player %s: %v", c.playerID, err)
				return
			}
		}
	}
}

// readPump drains inbound frames so pings/pongs are processed; the stream
// toward the service is otherwise one-way
func (c *Client) readPump(hub *Hub) {
	defer func() {
		hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("WebSocket read error for player %s: %v", c.playerID, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}

// ServeMatch upgrades the request and attaches the client to a match room
func ServeMatch(w http.ResponseWriter, r *http.Request, matchToken, playerID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{
		conn:       conn,
		playerID:   playerID,
		matchToken: matchToken,
		send:       make(chan []byte, 16),
	}
	MatchHub.register(client)

	go client.writePump()
	go client.readPump(MatchHub)
	return nil
}
