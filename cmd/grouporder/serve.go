package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"grouporder/internal/delivery"
	ordergrpc "grouporder/internal/delivery/grpc"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the gRPC order service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.log
	logger.Info("Starting Group Order Service...")

	b, err := openBackend(ctx, a.cfg, logger)
	if err != nil {
		logger.Errorf("Failed to open backend: %v", err)
		return err
	}
	defer b.Close(logger)

	uc := b.useCases(a.cfg, logger)
	router := delivery.NewRouter(uc, logger)
	grpcServer := ordergrpc.NewServer(uc.Orders, uc.Auth, logger)

	lis, err := net.Listen("tcp", a.cfg.GrpcPort)
	if err != nil {
		logger.Errorf("Failed to listen on port %s: %v", a.cfg.GrpcPort, err)
		return err
	}

	// Request contexts derive from ctx so open summary streams end on shutdown.
	httpServer := &http.Server{
		Addr:              a.cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", a.cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Failed to serve HTTP: %v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", a.cfg.GrpcPort)
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Errorf("Failed to serve gRPC: %v", err)
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Warn("Shutdown signal received...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("HTTP server shutdown failed: %v", err)
		}

		stopped := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-shutdownCtx.Done():
			grpcServer.Stop()
		}
		logger.Info("Servers stopped.")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Group Order Service shut down gracefully.")
	return nil
}
