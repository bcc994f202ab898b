package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Messages are well-known Struct values so the service needs no generated
// code; field names follow the REST JSON bodies.

const (
	ServiceName = "tickerdesk.v1.StockControl"

	listStocksMethod = "/" + ServiceName + "/ListStocks"
	addStockMethod   = "/" + ServiceName + "/AddStock"
	startJobMethod   = "/" + ServiceName + "/StartJob"
	getTaskMethod    = "/" + ServiceName + "/GetTask"
)

// StockControlServer is the server API for the StockControl service.
type StockControlServer interface {
	ListStocks(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	AddStock(context.Context, *structpb.Struct) (*structpb.Struct, error)
	StartJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTask(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterStockControlServer(s grpc.ServiceRegistrar, srv StockControlServer) {
	s.RegisterService(&StockControl_ServiceDesc, srv)
}

// -----------------------------------------------------------------------------

var StockControl_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StockControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListStocks", Handler: listStocksHandler},
		{MethodName: "AddStock", Handler: structHandler(addStockMethod, StockControlServer.AddStock)},
		{MethodName: "StartJob", Handler: structHandler(startJobMethod, StockControlServer.StartJob)},
		{MethodName: "GetTask", Handler: structHandler(getTaskMethod, StockControlServer.GetTask)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tickerdesk/v1/control.proto",
}

func listStocksHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(StockControlServer).ListStocks(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: listStocksMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(StockControlServer).ListStocks(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func structHandler(
	fullMethod string,
	call func(StockControlServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StockControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StockControlServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// -----------------------------------------------------------------------------
// Client
// -----------------------------------------------------------------------------

type StockControlClient struct {
	cc grpc.ClientConnInterface
}

func NewStockControlClient(cc grpc.ClientConnInterface) *StockControlClient {
	return &StockControlClient{cc: cc}
}

func (c *StockControlClient) ListStocks(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, listStocksMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *StockControlClient) AddStock(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, addStockMethod, in, opts)
}

func (c *StockControlClient) StartJob(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, startJobMethod, in, opts)
}

func (c *StockControlClient) GetTask(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getTaskMethod, in, opts)
}

func (c *StockControlClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
