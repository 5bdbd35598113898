package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"phase10-tracker/apps/server/internal/codec"
	"phase10-tracker/apps/server/internal/tracker"
)

const (
	sendBuffer   = 64
	readLimit    = 4096
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second
	writeWait    = 10 * time.Second
)

// Client frame types. Viewers are read-only; they may only ask for a resync.
const frameSync = "sync"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Connection is one viewer socket.
type Connection struct {
	ID       string
	Conn     *websocket.Conn
	Send     chan []byte
	Gateway  *Gateway
	LastPing time.Time
}

// Gateway pushes every committed ledger change to connected viewers.
type Gateway struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	tracker     *tracker.Tracker
	log         *logrus.Entry
}

// New creates a gateway and subscribes it to t.
func New(t *tracker.Tracker, logger *logrus.Logger) *Gateway {
	g := &Gateway{
		connections: make(map[string]*Connection),
		tracker:     t,
		log:         logger.WithField("component", "gateway"),
	}
	t.Subscribe(g.pushView)
	return g
}

// HandleWebSocket upgrades the request and sends the current state.
func (g *Gateway) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade failed")
		return
	}

	c := &Connection{
		ID:       uuid.NewString(),
		Conn:     conn,
		Send:     make(chan []byte, sendBuffer),
		Gateway:  g,
		LastPing: time.Now(),
	}
	if frame, err := codec.EncodeState(g.tracker.View()); err == nil {
		c.Send <- frame
	} else {
		g.log.WithError(err).Error("encode initial state failed")
	}

	g.mu.Lock()
	g.connections[c.ID] = c
	total := len(g.connections)
	g.mu.Unlock()

	g.log.WithFields(logrus.Fields{"conn": c.ID, "total": total}).Info("viewer connected")

	go c.readPump()
	go c.writePump()
}

// ConnectionCount reports the number of open viewer sockets.
func (g *Gateway) ConnectionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.connections)
}

func (c *Connection) readPump() {
	defer func() {
		c.Gateway.removeConnection(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(readLimit)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		c.LastPing = time.Now()
		return nil
	})

	for {
		messageType, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Gateway.log.WithError(err).WithField("conn", c.ID).Warn("read failed")
			}
			break
		}

		if messageType == websocket.BinaryMessage {
			c.handleMessage(message)
		}
	}
}

func (c *Connection) handleMessage(data []byte) {
	env, err := codec.Decode(data)
	if err != nil {
		c.sendError("invalid message format")
		return
	}

	switch env["type"] {
	case frameSync:
		frame, err := codec.EncodeState(c.Gateway.tracker.View())
		if err != nil {
			c.sendError("encode state failed")
			return
		}
		c.enqueue(frame)
	default:
		c.sendError("viewers are read-only")
	}
}

func (c *Connection) sendError(msg string) {
	data, err := codec.Encode(codec.WrapServerEnvelope(codec.FrameError, 0, codec.ErrorToProto(msg)))
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Connection) enqueue(data []byte) {
	c.Gateway.mu.RLock()
	defer c.Gateway.mu.RUnlock()
	if _, ok := c.Gateway.connections[c.ID]; !ok {
		return
	}
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (g *Gateway) removeConnection(c *Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.connections[c.ID]; !ok {
		return
	}
	delete(g.connections, c.ID)
	close(c.Send)
	g.log.WithFields(logrus.Fields{"conn": c.ID, "total": len(g.connections)}).Info("viewer disconnected")
}

func (g *Gateway) pushView(v tracker.View) {
	frame, err := codec.EncodeState(v)
	if err != nil {
		g.log.WithError(err).Error("encode state failed")
		return
	}
	g.Broadcast(frame)
}

// Broadcast sends a frame to all viewers. Slow viewers drop frames.
func (g *Gateway) Broadcast(message []byte) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range g.connections {
		select {
		case c.Send <- message:
		default:
		}
	}
}
