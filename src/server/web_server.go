// Package server is the dashboard front end: HTML pages, the /api reverse
// proxy and the websocket that streams session state to the page.
package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"sync"
	"time"

	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"

	"github.com/gin-gonic/gin"
)

//go:embed web/*.html
var webFS embed.FS

const shutdownTimeout = 5 * time.Second

// -----------------------------------------------------------------------------
// WebServer
// -----------------------------------------------------------------------------

type WebServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	API     interfaces.IBackendAPI
	APIBase *url.URL

	engine *gin.Engine
	proxy  *httputil.ReverseProxy

	// WebSocket clients
	clients    map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	countMu    sync.RWMutex
	count      int
	done       chan struct{}
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewWebServer(cfg *models.MConfig, api interfaces.IBackendAPI, log *logger.Logger) (*WebServer, error) {
	base, err := url.Parse(cfg.APIBase)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid api base %q", cfg.APIBase)
	}

	tmpl, err := template.ParseFS(webFS, "web/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &WebServer{
		Config:     cfg,
		Logger:     log,
		API:        api,
		APIBase:    base,
		engine:     gin.New(),
		clients:    make(map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	s.proxy = newAPIProxy(base, log)

	s.engine.Use(gin.Recovery(), s.requestLogger())
	s.engine.SetHTMLTemplate(tmpl)
	s.setupRoutes()
	return s, nil
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *WebServer) setupRoutes() {
	s.engine.GET("/", s.getHome)
	s.engine.GET("/tickers", s.getTickers)
	s.engine.GET("/healthz", s.getHealth)

	// Everything under /api belongs to the backend
	s.engine.Any("/api/*path", s.forwardAPI)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// Handler exposes the router, mainly for tests.
func (s *WebServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Run serves until ctx is cancelled, then closes every session and drains
// in-flight HTTP requests.
func (s *WebServer) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.runHub(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Dashboard listening on %s (api base %s)", addr, s.APIBase)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("Shutting down dashboard")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	stopHub()
	<-s.done
	return srv.Shutdown(shutdownCtx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *WebServer) getHome(c *gin.Context) {
	c.HTML(http.StatusOK, "home.html", gin.H{"Title": "Ticker Desk"})
}

// -----------------------------------------------------------------------------

func (s *WebServer) getTickers(c *gin.Context) {
	c.HTML(http.StatusOK, "tickers.html", gin.H{
		"Title":     "Tracked Tickers",
		"MaxLength": models.MaxTickerLength,
	})
}

// -----------------------------------------------------------------------------

func (s *WebServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.Sessions(),
		"api_base": s.APIBase.String(),
	})
}

// -----------------------------------------------------------------------------

func (s *WebServer) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
