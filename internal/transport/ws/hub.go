package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

// MsgFormClosed is sent before the hub drops the connections of a deleted form.
// Other types mirror the service event names.
const MsgFormClosed MessageType = "form_closed"

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub manages admin WebSocket connections per form
type Hub struct {
	// formID -> connections
	conns map[int64]map[*Connection]bool

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan int64
}

// Connection represents an admin watching one form
type Connection struct {
	FormID  int64
	AdminID string
	Send    chan []byte
	Hub     *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	FormID  int64
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[int64]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan int64),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.FormID] == nil {
				h.conns[conn.FormID] = make(map[*Connection]bool)
			}
			h.conns[conn.FormID][conn] = true
			h.mu.Unlock()
			log.Printf("[WS] admin %s watching form %d", conn.AdminID, conn.FormID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.FormID]; ok && set[conn] {
				delete(set, conn)
				close(conn.Send)
				if len(set) == 0 {
					delete(h.conns, conn.FormID)
				}
				log.Printf("[WS] admin %s left form %d", conn.AdminID, conn.FormID)
			}
			h.mu.Unlock()

		case formID := <-h.disconnect:
			h.mu.Lock()
			data, _ := json.Marshal(&Message{Type: MsgFormClosed, Payload: json.RawMessage(`{}`)})
			for conn := range h.conns[formID] {
				select {
				case conn.Send <- data:
				default:
				}
				close(conn.Send)
			}
			delete(h.conns, formID)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.FormID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToForm sends an event to every admin watching the form (implements service.Broadcaster)
func (h *Hub) BroadcastToForm(formID int64, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[WS] failed to encode %s for form %d: %v", msgType, formID, err)
		return
	}
	h.broadcast <- &BroadcastMessage{
		FormID: formID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

// DisconnectForm closes every connection of a form (implements service.Broadcaster)
func (h *Hub) DisconnectForm(formID int64) {
	h.disconnect <- formID
}

// Watching returns how many admins are connected to a form
func (h *Hub) Watching(formID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[formID])
}
