package grpc_control

import (
	"context"
	"net"
	"testing"

	"ticker-desk/src/backend"
	"ticker-desk/src/jobs"
	"ticker-desk/src/logger"
	"ticker-desk/src/models"
	"ticker-desk/src/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

func newControlClient(t *testing.T) *StockControlClient {
	t.Helper()
	log := logger.NewNop("grpc")
	cfg := &models.MConfig{Storage: models.MStorageConfig{DBType: "sqlite", DBPath: ":memory:"}}

	store, err := storage.NewStockStore(cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Initialize(context.Background()))

	q := jobs.NewQueue(jobs.QueueConfig{QueueSize: 8}, log)
	q.Register(models.JobStockFetch, jobs.PingHandler)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, lis, NewControlService(backend.NewService(store, q, log), log))
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		assert.NoError(t, <-done)
		store.Close()
	})
	return NewStockControlClient(conn)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

// -----------------------------------------------------------------------------

func TestControlService_Flow(t *testing.T) {
	ctx := context.Background()
	client := newControlClient(t)

	added, err := client.AddStock(ctx, mustStruct(t, map[string]any{"ticker": "aapl", "name": "Apple"}))
	require.NoError(t, err)
	stock := added.GetFields()["stock"].GetStructValue().GetFields()
	assert.Equal(t, "AAPL", stock["ticker"].GetStringValue())
	assert.Equal(t, "Apple", stock["name"].GetStringValue())
	taskID := added.GetFields()["task_id"].GetStringValue()
	require.NotEmpty(t, taskID)

	list, err := client.ListStocks(ctx)
	require.NoError(t, err)
	assert.Len(t, list.GetFields()["stocks"].GetListValue().GetValues(), 1)

	started, err := client.StartJob(ctx, mustStruct(t, map[string]any{"id": stock["id"].GetNumberValue()}))
	require.NoError(t, err)
	assert.NotEmpty(t, started.GetFields()["task_id"].GetStringValue())

	task, err := client.GetTask(ctx, mustStruct(t, map[string]any{"task_id": taskID}))
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.GetFields()["task"].GetStructValue().GetFields()["state"].GetStringValue())
}

func TestControlService_ErrorCodes(t *testing.T) {
	ctx := context.Background()
	client := newControlClient(t)

	_, err := client.AddStock(ctx, mustStruct(t, map[string]any{"ticker": "MSFT"}))
	require.NoError(t, err)

	cases := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{"duplicate", func() error {
			_, err := client.AddStock(ctx, mustStruct(t, map[string]any{"ticker": "msft"}))
			return err
		}, codes.AlreadyExists},
		{"empty ticker", func() error {
			_, err := client.AddStock(ctx, mustStruct(t, map[string]any{}))
			return err
		}, codes.InvalidArgument},
		{"too long", func() error {
			_, err := client.AddStock(ctx, mustStruct(t, map[string]any{"ticker": "ABCDEFGHIJKLM"}))
			return err
		}, codes.InvalidArgument},
		{"unknown stock", func() error {
			_, err := client.StartJob(ctx, mustStruct(t, map[string]any{"id": 404}))
			return err
		}, codes.NotFound},
		{"bad id", func() error {
			_, err := client.StartJob(ctx, mustStruct(t, map[string]any{}))
			return err
		}, codes.InvalidArgument},
		{"unknown task", func() error {
			_, err := client.GetTask(ctx, mustStruct(t, map[string]any{"task_id": "nope"}))
			return err
		}, codes.NotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(tc.call()))
		})
	}
}
