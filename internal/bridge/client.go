package bridge

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Errors
var (
	ErrClientClosed = errors.New("client closed")
)

const sendBufferSize = 256

// Client is one connected browser. Outbound frames go through a buffered
// send channel drained by a single write goroutine, so any goroutine
// (handler or relay) may call Send.
type Client struct {
	ID uuid.UUID

	conn   *websocket.Conn
	logger *slog.Logger

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewClient wraps an upgraded WebSocket connection and starts its write
// pump.
func NewClient(conn *websocket.Conn, writeWait, pongWait time.Duration, maxMessageSize int64, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		ID:         uuid.New(),
		conn:       conn,
		logger:     logger,
		writeWait:  writeWait,
		pongWait:   pongWait,
		pingPeriod: pongWait * 9 / 10,
		send:       make(chan []byte, sendBufferSize),
		closed:     make(chan struct{}),
	}

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	c.wg.Add(1)
	go c.writePump()

	return c
}

// Send queues one frame for delivery. Blocks only when the send buffer is
// full; returns ErrClientClosed once the client is torn down.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.closed:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- data:
		return nil
	case <-c.closed:
		return ErrClientClosed
	}
}

// ReadMessage blocks until the next inbound frame.
func (c *Client) ReadMessage() ([]byte, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		return data, nil
	}
}

// Close tears the connection down and waits for the write pump to exit.
// Safe to call more than once.
func (c *Client) Close() {
	c.markClosed()
	c.wg.Wait()
}

// markClosed unblocks senders and drops the transport without waiting.
func (c *Client) markClosed() {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// RemoteAddr returns the browser's address for logging.
func (c *Client) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// writePump serializes all writes to the WebSocket connection and keeps
// the peer alive with periodic pings.
func (c *Client) writePump() {
	defer c.wg.Done()
	// A write failure means the browser is gone; unblock senders so the
	// relay and handler do not stall on a full buffer.
	defer c.markClosed()

	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug("client write failed", "conn_id", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
