package grpc

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	appCitation "github.com/turtacn/keyip-citation-network/internal/application/citation"
	"github.com/turtacn/keyip-citation-network/internal/config"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/keyip-citation-network/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/keyip-citation-network/internal/testutil"
)

func testConfig() config.GRPCConfig {
	return config.GRPCConfig{Host: "127.0.0.1", Port: 0, GracefulTimeout: time.Second}
}

// startServer serves impl on a free port and returns a connected client.
func startServer(t *testing.T, impl CitationNetworkServer, opts ...Option) (*Server, *grpc.ClientConn) {
	t.Helper()
	srv, err := NewServer(testConfig(), opts...)
	require.NoError(t, err)
	RegisterCitationService(srv, impl)

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	t.Cleanup(func() {
		require.NoError(t, srv.Stop(context.Background()))
		require.NoError(t, <-done)
	})

	conn, err := grpc.Dial(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return srv, conn
}

func newCitationService(source *testutil.StaticCitationSource) *CitationService {
	svc := appCitation.NewService(source, logging.NewNopLogger())
	return NewCitationService(svc, logging.NewNopLogger())
}

type panickingServer struct{}

func (panickingServer) GetCitationNetwork(context.Context, *NetworkRequest) (*structpb.Struct, error) {
	panic("boom")
}

func TestGetCitationNetwork_RoundTrip(t *testing.T) {
	source := testutil.NewStaticCitationSource().
		SetBackward("US1", testutil.BackwardRecords("US1", "B", 2)).
		SetForward("US1", testutil.ForwardRecords("US1", "F", 1))
	_, conn := startServer(t, newCitationService(source))

	network, err := NewCitationNetworkClient(conn).GetCitationNetwork(context.Background(), " US1 ", 1, 1)
	require.NoError(t, err)

	assert.Equal(t, "US1", network.PatentID)
	assert.Len(t, network.Nodes, 4)
	assert.Len(t, network.Edges, 3)
	assert.ElementsMatch(t, []string{"B1", "B2"}, network.Cited())
	assert.Equal(t, []string{"F1"}, network.Citing())
	require.NotNil(t, network.Metrics)
	assert.Equal(t, 4, network.Metrics.TotalNodes)
	assert.False(t, network.GeneratedAt.IsZero())
}

func TestGetCitationNetwork_ZeroDepthSkipsDirection(t *testing.T) {
	source := testutil.NewStaticCitationSource().
		SetBackward("US1", testutil.BackwardRecords("US1", "B", 1))
	_, conn := startServer(t, newCitationService(source))

	network, err := NewCitationNetworkClient(conn).GetCitationNetwork(context.Background(), "US1", 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, network.ForwardDepth)
	assert.EqualValues(t, 0, source.ForwardCalls)
}

func TestGetCitationNetwork_DefaultDepths(t *testing.T) {
	source := testutil.NewStaticCitationSource().
		SetForward("US1", testutil.ForwardRecords("US1", "F", 1))
	_, conn := startServer(t, newCitationService(source))

	in, err := structpb.NewStruct(map[string]interface{}{"patent_id": "US1"})
	require.NoError(t, err)
	out, err := NewCitationNetworkClient(conn).Invoke(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, float64(1), out.GetFields()["backward_depth"].GetNumberValue())
	assert.Equal(t, float64(1), out.GetFields()["forward_depth"].GetNumberValue())
	assert.EqualValues(t, 1, source.ForwardCalls)
}

func TestGetCitationNetwork_InvalidArguments(t *testing.T) {
	source := testutil.NewStaticCitationSource()
	_, conn := startServer(t, newCitationService(source))
	client := NewCitationNetworkClient(conn)

	_, err := client.GetCitationNetwork(context.Background(), "   ", 1, 1)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	cases := []map[string]interface{}{
		{"patent_id": 42},
		{"patent_id": "US1", "backward_depth": 0.5},
		{"patent_id": "US1", "forward_depth": "one"},
	}
	for _, fields := range cases {
		in, err := structpb.NewStruct(fields)
		require.NoError(t, err)
		_, err = client.Invoke(context.Background(), in)
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", fields)
	}
	assert.EqualValues(t, 0, source.BackwardCalls)
}

func TestRecoveryInterceptor_PanicBecomesInternal(t *testing.T) {
	_, conn := startServer(t, panickingServer{})

	_, err := NewCitationNetworkClient(conn).GetCitationNetwork(context.Background(), "US1", 1, 1)
	assert.Equal(t, codes.Internal, status.Code(err))
}

func TestMetricsInterceptor_RecordsCode(t *testing.T) {
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "grpc_test"}, logging.NewNopLogger())
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)
	_, conn := startServer(t, newCitationService(testutil.NewStaticCitationSource()), WithMetrics(metrics))
	client := NewCitationNetworkClient(conn)

	_, err = client.GetCitationNetwork(context.Background(), "US1", 1, 1)
	require.NoError(t, err)
	_, err = client.GetCitationNetwork(context.Background(), "", 1, 1)
	require.Error(t, err)

	counter := func(code string) float64 {
		c := metrics.GRPCRequestsTotal.WithLabelValues(CitationServiceName, "GetCitationNetwork", code)
		return promtestutil.ToFloat64(c.(promclient.Collector))
	}
	assert.Equal(t, float64(1), counter("OK"))
	assert.Equal(t, float64(1), counter("InvalidArgument"))
}

func TestHealth_ServingUntilStop(t *testing.T) {
	srv, err := NewServer(testConfig())
	require.NoError(t, err)
	RegisterCitationService(srv, newCitationService(testutil.NewStaticCitationSource()))
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	conn, err := grpc.Dial(srv.Addr(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()
	health := healthpb.NewHealthClient(conn)

	resp, err := health.Check(context.Background(), &healthpb.HealthCheckRequest{Service: CitationServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, <-done)
}

func TestServer_Lifecycle(t *testing.T) {
	srv, err := NewServer(testConfig(), WithLogger(nil))
	require.NoError(t, err)
	assert.NotEmpty(t, srv.Addr())
	// stopping before Start only releases the listener
	require.NoError(t, srv.Stop(context.Background()))

	srv, err = NewServer(testConfig())
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	require.Eventually(t, func() bool {
		srv.mu.Lock()
		defer srv.mu.Unlock()
		return srv.started
	}, time.Second, 5*time.Millisecond)
	assert.Error(t, srv.Start())
	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, <-done)

	_, err = NewServer(config.GRPCConfig{Host: "256.0.0.1", Port: 1})
	assert.Error(t, err)
}

func TestSplitMethodName(t *testing.T) {
	svc, method := splitMethodName(getCitationNetworkMethod)
	assert.Equal(t, CitationServiceName, svc)
	assert.Equal(t, "GetCitationNetwork", method)

	svc, method = splitMethodName("bare")
	assert.Equal(t, "unknown", svc)
	assert.Equal(t, "bare", method)

	assert.True(t, isHealthCheck("/grpc.health.v1.Health/Check"))
	assert.False(t, isHealthCheck(getCitationNetworkMethod))
}

func TestNetworkRequest_Validate(t *testing.T) {
	req := parseNetworkRequest(&structpb.Struct{})
	assert.Equal(t, 1, req.BackwardDepth)
	assert.Equal(t, 1, req.ForwardDepth)
	assert.Error(t, req.Validate())

	in, err := structpb.NewStruct(map[string]interface{}{"patent_id": "US1", "backward_depth": 5, "forward_depth": nil})
	require.NoError(t, err)
	req = parseNetworkRequest(in)
	require.NoError(t, req.Validate())
	assert.Equal(t, 5, req.BackwardDepth)
	assert.Equal(t, 1, req.ForwardDepth)
}

//Personal.AI order the ending
