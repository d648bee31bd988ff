/*
Package chat contains the real-time room, session, and presence engine.

This file defines the Client struct, the websocket-backed connection handle. It
runs the read and write pumps, feeds inbound frames to the Hub in arrival order,
and implements the Subscriber delivery queue.
*/
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"parley/internal/app/user"
	"parley/internal/pkg/logx"
	"parley/internal/pkg/randx"
)

const (
	// timeout duration for writing to the WebSocket connection.
	writeWait = 10 * time.Second

	// maximum time allowed for the server to wait for a Pong message from the client.
	pongWait = 60 * time.Second

	// frequency at which the server sends a Ping message.
	pingPeriod = (pongWait * 9) / 10

	// maximum allowed size (in bytes) of a frame sent by the client.
	maxMessageSize = 8192

	// actionTimeout bounds the storage work of one inbound action. The budget
	// is independent of the connection's lifetime on purpose: a message whose
	// sender disconnects mid-flight is still persisted and broadcast.
	actionTimeout = 10 * time.Second

	// sendQueueSize is the per-connection outbound buffer.
	sendQueueSize = 256
)

// Client represents one live websocket connection bound to an authenticated user.
type Client struct {
	hub *Hub

	// underlying WebSocket connection object.
	conn *websocket.Conn

	// the authenticated identity, set once at handshake, immutable thereafter.
	identity user.User

	// opaque connection id, unique for the connection's lifetime.
	connID string

	// a buffered channel used to queue events waiting to be sent to the client.
	// sendMu serializes queueing against the close during teardown: the broker
	// fans out from other connections' goroutines, so an unguarded close would
	// let an in-flight delivery hit a closed channel and panic the process.
	sendMu     sync.Mutex
	sendClosed bool
	send       chan []byte

	// structured logger with connection context.
	logger zerolog.Logger
}

// NewClient constructs a Client around an upgraded websocket connection.
func NewClient(hub *Hub, wsConn *websocket.Conn, identity user.User) *Client {
	connID := randx.ConnectionID()

	clientLogger := logx.Logger().With().
		Str("conn_id", connID).
		Str("user_id", identity.ID).
		Logger()

	return &Client{
		hub:      hub,
		conn:     wsConn,
		identity: identity,
		connID:   connID,
		send:     make(chan []byte, sendQueueSize),
		logger:   clientLogger,
	}
}

// ConnID returns the connection's opaque identifier.
func (c *Client) ConnID() string { return c.connID }

// Identity returns the authenticated identity bound to the connection.
func (c *Client) Identity() user.User { return c.identity }

// Enqueue implements Subscriber. It marshals the event and queues it without
// blocking; when the queue is full the event is dropped. After teardown every
// call fails without touching the channel.
func (c *Client) Enqueue(env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		c.logger.Error().Err(err).Str("event", env.Event).Msg("Error marshaling event for client")
		return err
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return fmt.Errorf("connection closed")
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn().Int("queue_len", len(c.send)).Str("event", env.Event).Msg("Client send channel full, dropping event")
		return fmt.Errorf("client send queue full")
	}
}

// ReadPump reads frames from the websocket connection and hands them to the
// hub one at a time, preserving per-connection ordering. It performs teardown
// when the connection closes for any reason.
func (c *Client) ReadPump() {
	defer c.cleanupOnDisconnect()

	c.conn.SetReadLimit(maxMessageSize)

	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Info().Err(err).Msg("Error reading frame (client close/going away)")
			}
			break
		}

		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		c.hub.Dispatch(ctx, c, frame)
		cancel()
	}
}

// cleanupOnDisconnect runs the teardown steps when the read pump terminates.
func (c *Client) cleanupOnDisconnect() {
	c.logger.Info().Msg("Client connection cleanup starting.")

	ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
	c.hub.Disconnect(ctx, c.connID)
	cancel()

	c.closeSend()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("Client connection close error")
	}
}

func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

// WritePump writes queued events from the send channel to the websocket
// connection and maintains the heartbeat.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()

		if err := c.conn.Close(); err != nil {
			c.logger.Debug().Err(err).Msg("Client connection close error in WritePump")
		}
	}()

	for {
		select {
		case payload, ok := <-c.send:
			if !c.writeQueuedFrame(payload, ok) {
				return
			}

		case <-ticker.C:
			if !c.writePingFrame() {
				return
			}
		}
	}
}

// writeQueuedFrame writes one queued payload to the websocket.
// Returns true if the WritePump loop should continue, false if it should terminate.
func (c *Client) writeQueuedFrame(payload []byte, ok bool) bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline")
		return false
	}

	if !ok {
		if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
			c.logger.Debug().Err(err).Msg("Error writing close message")
		}
		return false
	}

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		c.logger.Error().Err(err).Msg("Error writing frame")
		return false
	}

	return true
}

// writePingFrame sends a periodic websocket Ping to maintain the heartbeat.
// Returns false if the WritePump loop should terminate due to write failure.
func (c *Client) writePingFrame() bool {
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to set write deadline on ping")
		return false
	}

	if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
		c.logger.Error().Err(err).Msg("Error writing ping")
		return false
	}

	return true
}
