package session

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/PreritO/cartesia-hackathon/pkg/protocol"
)

const (
	// writeWait is how long to wait for a write to complete
	writeWait = 10 * time.Second

	// pongWait is how long to wait for a pong response
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds inbound messages; live JPEG frames are the
	// largest payload
	maxMessageSize = 512 * 1024
)

// ControlHandler receives parsed control messages from the client.
type ControlHandler func(*protocol.Control)

// FrameHandler receives binary JPEG frames pushed by live clients.
type FrameHandler func([]byte)

// Conn wraps one client WebSocket. All writes go through the send channel
// so a single goroutine owns the connection.
type Conn struct {
	ws     *websocket.Conn
	send   chan []byte
	done   chan struct{}
	logger *slog.Logger
}

// NewConn wraps a connection. Call Run to start the pumps.
func NewConn(ws *websocket.Conn, logger *slog.Logger) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	return &Conn{
		ws:     ws,
		send:   make(chan []byte, 64),
		done:   make(chan struct{}),
		logger: logger.With("component", "session.conn"),
	}
}

// Send marshals and queues a message. Returns false when the connection
// is closed or the queue is full; a dropped message is not retried.
func (c *Conn) Send(v interface{}) bool {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("marshal outbound message", "error", err)
		return false
	}

	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		c.logger.Warn("outbound queue full, dropping message")
		return false
	}
}

// Run starts the write pump and blocks reading inbound messages until the
// client disconnects. Malformed control messages are logged and ignored.
func (c *Conn) Run(onControl ControlHandler, onFrame FrameHandler) {
	go c.writePump()
	c.readPump(onControl, onFrame)
}

// Done is closed when the connection has shut down.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// readPump reads inbound messages: text frames carry control JSON, binary
// frames carry pushed JPEG images.
func (c *Conn) readPump(onControl ControlHandler, onFrame FrameHandler) {
	defer func() {
		close(c.done)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if onFrame != nil {
				onFrame(data)
			}
		case websocket.TextMessage:
			msg, err := protocol.ParseControl(data)
			if err != nil {
				c.logger.Warn("ignoring malformed control message", "error", err)
				continue
			}
			if onControl != nil {
				onControl(msg)
			}
		}
	}
}

// writePump owns all writes to the connection.
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case <-c.done:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			c.ws.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
