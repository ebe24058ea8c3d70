package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"unibase/internal/game"
	"unibase/internal/metrics"

	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingEvery  = 30 * time.Second
	writeWait  = 5 * time.Second
	bufferSize = 64
)

type WSMessage struct {
	Type  string     `json:"type"`
	State *game.View `json:"state,omitempty"`
}

func StateMessage(v game.View) WSMessage {
	return WSMessage{Type: "state", State: &v}
}

// Hub fans broadcast frames out to every connected client. Only Run writes
// to connections.
type Hub struct {
	log        *slog.Logger
	current    func() game.View
	clients    map[*websocket.Conn]struct{}
	broadcast  chan []byte
	register   chan registration
	unregister chan *websocket.Conn
}

// registration carries the frame a client receives before any broadcast.
type registration struct {
	conn  *websocket.Conn
	hello []byte
}

// NewHub sends current() to each client as it connects; current may be nil.
func NewHub(logger *slog.Logger, current func() game.View) *Hub {
	return &Hub{
		log:        logger,
		current:    current,
		clients:    make(map[*websocket.Conn]struct{}),
		broadcast:  make(chan []byte, bufferSize),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
	}
}

func (h *Hub) Run(ctx context.Context) {
	ping := time.NewTicker(pingEvery)
	defer ping.Stop()
	defer func() {
		for conn := range h.clients {
			conn.Close()
		}
		metrics.WebSocketClients.Set(0)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			h.clients[reg.conn] = struct{}{}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			h.log.Info("ws client connected", "total", len(h.clients))
			if reg.hello != nil {
				reg.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := reg.conn.WriteMessage(websocket.TextMessage, reg.hello); err != nil {
					h.drop(reg.conn)
				}
			}

		case conn := <-h.unregister:
			h.drop(conn)

		case msg := <-h.broadcast:
			for conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					h.drop(conn)
				}
			}

		case <-ping.C:
			for conn := range h.clients {
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					h.drop(conn)
				}
			}
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

// Broadcast never blocks; frames are dropped while the buffer is full.
func (h *Hub) Broadcast(msg WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	reg := registration{conn: conn}
	if h.current != nil {
		if data, err := json.Marshal(StateMessage(h.current())); err == nil {
			reg.hello = data
		}
	}
	select {
	case h.register <- reg:
	case <-time.After(writeWait):
		conn.Close()
		return
	}

	go func() {
		defer func() {
			// The hub may already be gone on shutdown.
			select {
			case h.unregister <- conn:
			case <-time.After(time.Second):
				conn.Close()
			}
		}()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
