package grpcx

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"

	"github.com/md-rashed-zaman/salonbook/libs/httpx"
)

func TestHealthOverBufconn(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
	lis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(logger)
	srv.SetServing("booking", true)
	srv.Serve(ctx, lis)

	conn, err := Dial(ctx, "passthrough:///bufnet", DialOptions{},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	defer conn.Close()

	st, err := CheckHealth(ctx, conn, "booking")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	srv.SetServing("booking", false)
	st, err = CheckHealth(ctx, conn, "booking")
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, st)
}

func TestServerEchoesRequestID(t *testing.T) {
	interceptor := UnaryServerRequestIDInterceptor()
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDMetadataKey, "req-42"))

	var seen string
	_, err := interceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: "/test"}, func(ctx context.Context, _ any) (any, error) {
		seen = httpx.RequestIDFromContext(ctx)
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "req-42", seen)
}
