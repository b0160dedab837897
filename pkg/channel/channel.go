// Package channel manages a single retrying WebSocket connection.
// It owns the connect/read/reconnect lifecycle and surfaces raw message
// payloads and status transitions through callbacks, leaving frame
// interpretation to the caller.
package channel

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sophiie/orbit/errors"
	"github.com/sophiie/orbit/logging"
)

// Status describes the connection state of a channel.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusError        Status = "error"
)

// DefaultReconnectDelay is the fixed delay between a connection loss and
// the next dial attempt.
const DefaultReconnectDelay = 2 * time.Second

// Config describes a channel before it is opened.
type Config struct {
	// Name identifies the channel in logs and errors ("session", "leads").
	Name string

	// URL is called before every dial attempt so that rotated credentials
	// are picked up. Returning an empty string defers the attempt until
	// the next reconnect tick.
	URL func() string

	// OnMessage receives every text message read from the socket.
	OnMessage func(data []byte)

	// OnStatus receives every status transition, in order. It is called
	// from channel goroutines and must not block. Calling Send from it
	// is safe. Optional.
	OnStatus func(status Status)

	// ReconnectDelay overrides DefaultReconnectDelay when positive.
	ReconnectDelay time.Duration

	// PingMessage, when non-nil, is written to the socket every
	// PingInterval while the connection is open.
	PingMessage  []byte
	PingInterval time.Duration

	// Dialer overrides websocket.DefaultDialer. Used in tests.
	Dialer *websocket.Dialer
}

// Channel is a WebSocket connection that reconnects itself after loss.
// All methods are safe for concurrent use.
type Channel struct {
	cfg Config
	log *logrus.Entry

	mu             sync.Mutex
	conn           *websocket.Conn
	status         Status
	dialing        bool
	closed         bool
	gen            int
	reconnectTimer *time.Timer

	// writeMu serializes writers; gorilla permits one concurrent writer.
	writeMu sync.Mutex
}

// New creates a channel in the disconnected state. Call Connect to open it.
func New(cfg Config) *Channel {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	return &Channel{
		cfg:    cfg,
		log:    logging.NewLogger("channel-" + cfg.Name),
		status: StatusDisconnected,
	}
}

// Status returns the current connection status.
func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Connect starts a dial attempt unless one is already in flight or the
// channel is already open. It returns immediately; the outcome arrives
// through the status callback.
func (c *Channel) Connect() {
	c.mu.Lock()
	if c.closed || c.dialing || c.conn != nil {
		c.mu.Unlock()
		return
	}
	c.dialing = true
	c.gen++
	gen := c.gen
	changed := c.setStatusLocked(StatusConnecting)
	c.mu.Unlock()

	c.notify(changed, StatusConnecting)
	go c.dial(gen)
}

func (c *Channel) dial(gen int) {
	url := c.cfg.URL()
	if url == "" {
		c.log.Debug("No endpoint available yet, deferring connection")
		c.mu.Lock()
		c.dialing = false
		var changed bool
		if !c.closed && gen == c.gen {
			changed = c.setStatusLocked(StatusDisconnected)
			c.scheduleReconnectLocked()
		}
		c.mu.Unlock()
		c.notify(changed, StatusDisconnected)
		return
	}

	dialer := c.cfg.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	conn, _, err := dialer.Dial(url, nil)

	c.mu.Lock()
	c.dialing = false
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.log.WithError(err).Warn("Failed to connect")
		changed := c.setStatusLocked(StatusError)
		c.scheduleReconnectLocked()
		c.mu.Unlock()
		c.notify(changed, StatusError)
		return
	}

	c.conn = conn
	changed := c.setStatusLocked(StatusConnected)
	c.mu.Unlock()
	c.notify(changed, StatusConnected)

	c.log.Info("Connected")

	if c.cfg.PingMessage != nil && c.cfg.PingInterval > 0 {
		go c.pingLoop(conn, gen)
	}
	go c.readLoop(conn, gen)
}

func (c *Channel) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			c.handleConnectionLoss(gen, err)
			return
		}
		if c.cfg.OnMessage != nil {
			c.cfg.OnMessage(data)
		}
	}
}

func (c *Channel) pingLoop(conn *websocket.Conn, gen int) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()
	for range ticker.C {
		c.mu.Lock()
		stale := c.closed || gen != c.gen || c.conn != conn
		c.mu.Unlock()
		if stale {
			return
		}
		c.writeMu.Lock()
		err := conn.WriteMessage(websocket.TextMessage, c.cfg.PingMessage)
		c.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// handleConnectionLoss tears down a lost connection and schedules the
// reconnect. A stale generation means Close or a newer connect already
// superseded this connection.
func (c *Channel) handleConnectionLoss(gen int, err error) {
	c.mu.Lock()
	if c.closed || gen != c.gen {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.log.WithError(err).Warn("Connection lost")
	changed := c.setStatusLocked(StatusDisconnected)
	c.scheduleReconnectLocked()
	c.mu.Unlock()
	c.notify(changed, StatusDisconnected)
}

// scheduleReconnectLocked arms the reconnect timer. Callers hold c.mu.
func (c *Channel) scheduleReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
	}
	c.reconnectTimer = time.AfterFunc(c.cfg.ReconnectDelay, func() {
		c.Connect()
	})
}

// Send writes the given payload as a single text message. It returns an
// error without writing when the channel is not open.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	conn := c.conn
	open := conn != nil && c.status == StatusConnected && !c.closed
	c.mu.Unlock()

	if !open {
		return errors.ChannelClosed(c.cfg.Name)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return errors.Wrap(err, errors.ErrCodeChannelClosed, "failed to write to channel").
			WithDetail("channel", c.cfg.Name)
	}
	return nil
}

// Close shuts the channel down permanently. The reconnect timer is
// cancelled before the socket is closed so no further attempts fire.
// Close is idempotent.
func (c *Channel) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	changed := c.setStatusLocked(StatusDisconnected)
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.notify(changed, StatusDisconnected)
	c.log.Debug("Channel closed")
}

// setStatusLocked records a status change and reports whether it changed.
// Callers hold c.mu and fire the callback via notify after unlocking.
func (c *Channel) setStatusLocked(status Status) bool {
	if c.status == status {
		return false
	}
	c.status = status
	return true
}

func (c *Channel) notify(changed bool, status Status) {
	if changed && c.cfg.OnStatus != nil {
		c.cfg.OnStatus(status)
	}
}
