package demo

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// hub fans broadcast frames out to connected WebSocket clients. Slow or
// broken clients are dropped rather than allowed to block the effect
// that produces frames.
type hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte
}

func newHub() *hub {
	return &hub{clients: make(map[*websocket.Conn]chan []byte)}
}

// add registers a connection and starts its write pump.
func (h *hub) add(conn *websocket.Conn) {
	send := make(chan []byte, 16)

	h.mu.Lock()
	h.clients[conn] = send
	h.mu.Unlock()

	go func() {
		defer conn.Close()
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.remove(conn)
				return
			}
		}
	}()
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	send, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
	}
	h.mu.Unlock()

	if ok {
		close(send)
	}
}

// broadcast queues a frame for every client. Clients whose buffer is
// full are disconnected.
func (h *hub) broadcast(msg []byte) {
	h.mu.Lock()
	var stale []*websocket.Conn
	for conn, send := range h.clients {
		select {
		case send <- msg:
		default:
			stale = append(stale, conn)
		}
	}
	h.mu.Unlock()

	for _, conn := range stale {
		log.Printf("[demo] dropping slow client %s", conn.RemoteAddr())
		h.remove(conn)
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		h.remove(conn)
	}
}
