package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
	"ticker-desk/src/storage"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// APIServer
// -----------------------------------------------------------------------------

type APIServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service *Service
	engine  *gin.Engine
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewAPIServer(cfg *models.MConfig, svc *Service, log *logger.Logger) *APIServer {
	if !strings.EqualFold(cfg.LogLevel, "DEBUG") {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &APIServer{
		Config:  cfg,
		Logger:  log,
		Service: svc,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery())

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		if origin := c.Request.Header.Get("Origin"); origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *APIServer) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/stocks", s.listStocks)
	api.POST("/stocks", s.addStock)
	api.POST("/stocks/:id/start", s.startJob)
	api.GET("/tasks/:id", s.getTask)
	api.GET("/health", s.getHealth)

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewAPIError("Not found"))
	})
}

func (s *APIServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *APIServer) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.Config.Backend.Host, s.Config.Backend.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("Backend API listening on %s", addr)
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *APIServer) listStocks(c *gin.Context) {
	stocks, err := s.Service.ListStocks(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stocks)
}

// -----------------------------------------------------------------------------

// addStock accepts ?ticker=... or a JSON body. The query wins when both
// are present.
func (s *APIServer) addStock(c *gin.Context) {
	var in models.MStockCreate
	if c.Request.ContentLength != 0 && strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, models.NewAPIError("Invalid JSON body"))
			return
		}
	}
	if q := c.Query("ticker"); q != "" {
		in.Ticker = q
	}
	if strings.TrimSpace(in.Ticker) == "" {
		s.fail(c, ErrTickerIsRequired)
		return
	}

	created, err := s.Service.AddStock(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// -----------------------------------------------------------------------------

func (s *APIServer) startJob(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		s.fail(c, ErrInvalidStockID)
		return
	}

	res, err := s.Service.StartJob(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, res)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getTask(c *gin.Context) {
	task, err := s.Service.Task(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// -----------------------------------------------------------------------------

func (s *APIServer) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"queue_depth": s.Service.QueueDepth(),
	})
}

// -----------------------------------------------------------------------------

// fail maps err to a status and writes the documented error body.
func (s *APIServer) fail(c *gin.Context, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, models.NewAPIError(msg))
}

func classify(err error) (int, string) {
	var vErr *helpers.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Message
	case errors.Is(err, ErrTickerIsRequired), errors.Is(err, ErrInvalidStockID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrTickerExists):
		return http.StatusConflict, storage.ErrTickerExists.Error()
	case errors.Is(err, storage.ErrStockNotFound):
		return http.StatusNotFound, storage.ErrStockNotFound.Error()
	case errors.Is(err, ErrTaskNotFound):
		return http.StatusNotFound, ErrTaskNotFound.Error()
	case errors.Is(err, ErrScheduleFailed):
		return http.StatusServiceUnavailable, ErrScheduleFailed.Error()
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
