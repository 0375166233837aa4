// Package ws delivers per-user dashboard notifications over websockets.
package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Hub routes messages to the single connection registered per account.
// A user with no open connection simply misses the message; notifications
// are best-effort and never persisted here.
type Hub struct {
	Clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	Broadcast  chan Message
	mu         sync.Mutex
}

type Message struct {
	UserID  string `json:"userId"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.Clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.Unregister:
			h.mu.Lock()
			if current, ok := h.Clients[client.UserID]; ok && current == client {
				delete(h.Clients, client.UserID)
				close(client.Send)
			}
			h.mu.Unlock()
		case message := <-h.Broadcast:
			h.mu.Lock()
			client, ok := h.Clients[message.UserID]
			h.mu.Unlock()
			if ok {
				select {
				case client.Send <- encode(message):
				default:
					// Slow consumer; drop rather than block the hub.
				}
			}
		}
	}
}

// Notify queues a message for the given account without blocking the caller.
func (h *Hub) Notify(userID, kind, content string) {
	select {
	case h.Broadcast <- Message{UserID: userID, Kind: kind, Content: content}:
	default:
	}
}
