package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/DjordjeVuckovic/probe-report/internal/probe"
	"google.golang.org/grpc"
)

// probe_serve exposes a linear probe over gRPC so reports can run against a remote probe.
func main() {
	path := flag.String("probe", "", "Path to linear probe parameters (JSON)")
	addr := flag.String("addr", ":50051", "Listen address")
	flag.Parse()

	if *path == "" {
		slog.Error("Missing -probe")
		os.Exit(2)
	}

	p, err := probe.Load(*path)
	if err != nil {
		slog.Error("Failed to load probe", "path", *path, "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", *addr)
	if err != nil {
		slog.Error("Failed to listen", "addr", *addr, "error", err)
		os.Exit(1)
	}

	s := grpc.NewServer()
	probe.RegisterService(s, p)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("Shutting down probe service")
		s.GracefulStop()
	}()

	slog.Info("Probe service listening", "addr", lis.Addr().String(), "service", probe.ServiceName, "rank", p.Rank())
	if err := s.Serve(lis); err != nil {
		slog.Error("Probe service stopped", "error", err)
		os.Exit(1)
	}
}
