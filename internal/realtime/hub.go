package realtime

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 32
)

// subscription is one viewer. An empty collection receives every change; a
// non-zero tableID narrows it to that table.
type subscription struct {
	id         string
	conn       *websocket.Conn
	collection string
	tableID    uint
	send       chan Change
}

func (s *subscription) wants(c Change) bool {
	if s.collection != "" && s.collection != c.Collection {
		return false
	}
	if s.tableID != 0 && (c.TableID == nil || *c.TableID != s.tableID) {
		return false
	}
	return true
}

type Hub struct {
	clients    map[*subscription]bool
	broadcast  chan Change
	register   chan *subscription
	unregister chan *subscription
	done       chan struct{}
	mu         sync.Mutex
	logger     *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*subscription]bool),
		broadcast:  make(chan Change, 64),
		register:   make(chan *subscription),
		unregister: make(chan *subscription),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves register, unregister and broadcast until ctx is done, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for sub := range h.clients {
				close(sub.send)
				delete(h.clients, sub)
			}
			h.mu.Unlock()
			return nil

		case sub := <-h.register:
			h.mu.Lock()
			h.clients[sub] = true
			h.mu.Unlock()
			h.logger.Debug("viewer subscribed", zap.String("client_id", sub.id), zap.String("collection", sub.collection))

		case sub := <-h.unregister:
			h.mu.Lock()
			if h.clients[sub] {
				delete(h.clients, sub)
				close(sub.send)
			}
			h.mu.Unlock()

		case change := <-h.broadcast:
			h.mu.Lock()
			for sub := range h.clients {
				if !sub.wants(change) {
					continue
				}
				select {
				case sub.send <- change:
				default:
					// Slow viewer; it will re-fetch on reconnect.
					h.logger.Warn("dropping slow viewer", zap.String("client_id", sub.id))
					delete(h.clients, sub)
					close(sub.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues a change for delivery. It never blocks the caller for
// long: a full queue drops the change.
func (h *Hub) Broadcast(c Change) {
	select {
	case h.broadcast <- c:
	case <-h.done:
	case <-time.After(time.Second):
		h.logger.Warn("change feed queue full", zap.String("collection", c.Collection))
	}
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleWebSocket upgrades GET /api/changes. Optional query parameters:
// collection and table_id.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	var tableID uint
	if raw := c.Query("table_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid table_id"})
			return
		}
		tableID = uint(id)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscription{
		id:         uuid.NewString(),
		conn:       conn,
		collection: c.Query("collection"),
		tableID:    tableID,
		send:       make(chan Change, sendBuffer),
	}
	select {
	case h.register <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(sub)
	go h.readPump(sub)
}

// readPump only drains control frames; viewers never send data.
func (h *Hub) readPump(sub *subscription) {
	defer func() {
		select {
		case h.unregister <- sub:
		case <-h.done:
		}
	}()

	sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	sub.conn.SetPongHandler(func(string) error {
		return sub.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(sub *subscription) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case change, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteJSON(change); err != nil {
				h.logger.Debug("websocket write failed", zap.String("client_id", sub.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
