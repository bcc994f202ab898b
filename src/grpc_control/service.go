// Package grpc_control exposes the backend's stock operations over gRPC for
// operator tooling.
package grpc_control

import (
	"context"
	"encoding/json"
	"errors"
	"net"

	"ticker-desk/src/backend"
	"ticker-desk/src/helpers"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
	"ticker-desk/src/storage"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements StockControlServer on top of backend.Service.
type ControlService struct {
	Service *backend.Service
	Logger  *logger.Logger
}

func NewControlService(svc *backend.Service, log *logger.Logger) *ControlService {
	return &ControlService{Service: svc, Logger: log}
}

// -----------------------------------------------------------------------------

func (s *ControlService) ListStocks(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	stocks, err := s.Service.ListStocks(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"stocks": stocks})
}

// -----------------------------------------------------------------------------

func (s *ControlService) AddStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	in := models.MStockCreate{
		Ticker:   fields["ticker"].GetStringValue(),
		Name:     models.StringPtr(fields["name"].GetStringValue()),
		Exchange: models.StringPtr(fields["exchange"].GetStringValue()),
	}
	if in.Ticker == "" {
		return nil, status.Error(codes.InvalidArgument, backend.ErrTickerIsRequired.Error())
	}

	created, err := s.Service.AddStock(ctx, in)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"stock": created.MStock, "task_id": created.TaskID})
}

// -----------------------------------------------------------------------------

func (s *ControlService) StartJob(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id := int64(req.GetFields()["id"].GetNumberValue())

	res, err := s.Service.StartJob(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(res)
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetTask(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	taskID := req.GetFields()["task_id"].GetStringValue()
	if taskID == "" {
		return nil, status.Error(codes.InvalidArgument, "task_id is required")
	}

	task, err := s.Service.Task(taskID)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{"task": task})
}

// -----------------------------------------------------------------------------
// Server
// -----------------------------------------------------------------------------

// Serve runs the control service on lis until ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, svc *ControlService) error {
	srv := grpc.NewServer()
	RegisterStockControlServer(srv, svc)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	svc.Logger.Info("gRPC control service listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	var vErr *helpers.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, backend.ErrInvalidStockID),
		errors.Is(err, backend.ErrTickerIsRequired):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, storage.ErrTickerExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, storage.ErrStockNotFound), errors.Is(err, backend.ErrTaskNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, backend.ErrScheduleFailed):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// toStruct converts v through its JSON form so Struct fields match the
// REST bodies.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
