package game

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxFrameSize = 4096
	sendBuffer   = 256
)

// Conn wraps a websocket connection into a Session: a stable id, a
// buffered outbound queue drained by WritePump, and a rate-limited
// ReadPump that decodes envelopes and hands them to a dispatch func.
type Conn struct {
	id        string
	sock      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	limiter   *rate.Limiter
}

func NewConn(sock *websocket.Conn) *Conn {
	sock.SetReadLimit(maxFrameSize)
	sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		return sock.SetReadDeadline(time.Now().Add(pongWait))
	})
	return &Conn{
		id:      uuid.NewString(),
		sock:    sock,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(8, 16),
	}
}

func (c *Conn) ID() string { return c.id }

// Send queues a frame without blocking. False means the connection is
// gone or its buffer is full; the write pump's exit handles cleanup.
func (c *Conn) Send(data []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.sock.Close()
	})
}

// ReadPump blocks until the connection drops, decoding each frame and
// dispatching it. Frames beyond the rate limit are dropped, not fatal.
func (c *Conn) ReadPump(dispatch func(event string, data json.RawMessage)) {
	defer c.Close()
	for {
		_, raw, err := c.sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Str("session_id", c.id).Msg("websocket read ended")
			}
			return
		}
		if !c.limiter.Allow() {
			log.Warn().Str("session_id", c.id).Msg("rate limit exceeded, frame dropped")
			continue
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			log.Debug().Err(err).Str("session_id", c.id).Msg("malformed frame")
			continue
		}
		dispatch(env.Event, env.Data)
	}
}

func (c *Conn) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
