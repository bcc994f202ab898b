package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"ticker-desk/src/dashboard"
	"ticker-desk/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

type Client struct {
	hub     *WebServer
	conn    *websocket.Conn
	session *dashboard.Session
	ctx     context.Context
	cancel  context.CancelFunc

	// Only the newest snapshot matters; older ones are overwritten.
	mu     sync.Mutex
	latest *models.MDashboardState
	wake   chan struct{}
}

// push is the session's notifier. It never blocks.
func (c *Client) push(state models.MDashboardState) {
	c.mu.Lock()
	c.latest = &state
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Client) take() *models.MDashboardState {
	c.mu.Lock()
	defer c.mu.Unlock()
	state := c.latest
	c.latest = nil
	return state
}

// -----------------------------------------------------------------------------
// readPump - handles incoming commands from the page
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
		c.hub.Logger.Debug("Dashboard session closed")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			return
		}

		var cmd models.MDashboardCommand
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.Logger.Info("Failed to parse dashboard command: %v, disconnecting client", err)
			return
		}

		c.dispatch(cmd)
	}
}

// dispatch applies keystrokes in arrival order. Commands that call the
// backend may overlap, e.g. a start while a reload is running.
func (c *Client) dispatch(cmd models.MDashboardCommand) {
	if cmd.Command == models.CommandInput {
		c.session.Handle(c.ctx, cmd)
		return
	}
	go c.session.Handle(c.ctx, cmd)
}

// -----------------------------------------------------------------------------
// writePump - sends state snapshots to the page
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.wake:
			state := c.take()
			if state == nil {
				continue
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(state); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				c.cancel()
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.cancel()
				return
			}

		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
