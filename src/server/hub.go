package server

import (
	"context"
	"net/http"

	"ticker-desk/src/dashboard"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

// runHub tracks live sessions until ctx ends, then tears all of them down.
func (s *WebServer) runHub(ctx context.Context) {
	defer close(s.done)

	for {
		select {
		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.setCount(len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				s.setCount(len(s.clients))
			}

		case <-ctx.Done():
			for client := range s.clients {
				client.cancel()
				delete(s.clients, client)
			}
			s.setCount(0)
			return
		}
	}
}

func (s *WebServer) setCount(n int) {
	s.countMu.Lock()
	s.count = n
	s.countMu.Unlock()
}

// Sessions is the number of connected dashboards.
func (s *WebServer) Sessions() int {
	s.countMu.RLock()
	defer s.countMu.RUnlock()
	return s.count
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

// handleWebSocket gives every connection its own dashboard session. The
// session lives exactly as long as the socket.
func (s *WebServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	// The request context ends when this handler returns.
	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    s,
		conn:   conn,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
	}
	client.session = dashboard.NewSession(s.API, s.Logger, client.push)

	select {
	case s.register <- client:
	case <-s.done:
		cancel()
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
	go client.session.LoadStocks(ctx)
}
