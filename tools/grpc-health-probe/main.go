package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/md-rashed-zaman/salonbook/libs/grpcx"
)

// Exits 0 when the service reports SERVING. Used as the container health check.
func main() {
	var (
		addr    = flag.String("addr", "localhost:9092", "grpc address")
		service = flag.String("service", "booking-service", "service name to check, empty for the whole server")
		timeout = flag.Duration("timeout", 3*time.Second, "dial and check timeout")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := grpcx.Dial(ctx, *addr, grpcx.DialOptions{Timeout: *timeout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(2)
	}
	defer conn.Close()

	status, err := grpcx.CheckHealth(ctx, conn, *service)
	if err != nil {
		fmt.Fprintf(os.Stderr, "check: %v\n", err)
		os.Exit(2)
	}
	fmt.Println(status.String())
	if status != healthpb.HealthCheckResponse_SERVING {
		os.Exit(1)
	}
}
