// Package backend is the reference ticker API: stock storage, job
// scheduling and the REST surface the dashboard talks to.
package backend

import (
	"context"
	"errors"
	"fmt"

	"ticker-desk/src/interfaces"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
)

var (
	ErrTaskNotFound     = errors.New("Task not found")
	ErrScheduleFailed   = errors.New("Failed to schedule refresh")
	ErrInvalidStockID   = errors.New("Invalid stock id")
	ErrTickerIsRequired = errors.New("Ticker is required")
)

// Service implements the stock operations shared by the REST and gRPC
// transports.
type Service struct {
	Store  interfaces.IStockStore
	Queue  interfaces.IJobQueue
	Logger *logger.Logger
}

func NewService(store interfaces.IStockStore, queue interfaces.IJobQueue, log *logger.Logger) *Service {
	return &Service{Store: store, Queue: queue, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *Service) ListStocks(ctx context.Context) ([]models.MStock, error) {
	return s.Store.ListStocks(ctx)
}

// -----------------------------------------------------------------------------

// AddStock stores the ticker and schedules its first metadata refresh.
func (s *Service) AddStock(ctx context.Context, in models.MStockCreate) (models.MAddStockResponse, error) {
	stock, err := s.Store.CreateStock(ctx, in)
	if err != nil {
		return models.MAddStockResponse{}, err
	}
	s.Logger.Info("Added ticker %s (#%d)", stock.Ticker, stock.ID)

	taskID, err := s.Queue.Enqueue(models.JobStockFetch, stock.ID)
	if err != nil {
		s.Logger.Error("Could not schedule refresh for %s: %v", stock.Ticker, err)
		return models.MAddStockResponse{MStock: stock}, fmt.Errorf("%w: %v", ErrScheduleFailed, err)
	}

	return models.MAddStockResponse{MStock: stock, TaskID: taskID}, nil
}

// -----------------------------------------------------------------------------

// StartJob queues a metadata refresh for an existing stock.
func (s *Service) StartJob(ctx context.Context, id int64) (models.MStartJobResponse, error) {
	if id <= 0 {
		return models.MStartJobResponse{}, ErrInvalidStockID
	}

	stock, err := s.Store.GetStock(ctx, id)
	if err != nil {
		return models.MStartJobResponse{}, err
	}

	taskID, err := s.Queue.Enqueue(models.JobStockFetch, stock.ID)
	if err != nil {
		return models.MStartJobResponse{}, fmt.Errorf("%w: %v", ErrScheduleFailed, err)
	}

	s.Logger.Info("Queued refresh for %s (task %s)", stock.Ticker, taskID)
	return models.MStartJobResponse{TaskID: taskID, StockID: stock.ID}, nil
}

// -----------------------------------------------------------------------------

func (s *Service) Task(taskID string) (models.MTask, error) {
	task, ok := s.Queue.Task(taskID)
	if !ok {
		return models.MTask{}, ErrTaskNotFound
	}
	return task, nil
}

func (s *Service) QueueDepth() int {
	return s.Queue.Depth()
}
