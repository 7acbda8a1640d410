package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/cardmarket-backend/internal/app"
	"github.com/yungbote/cardmarket-backend/internal/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}
	log := a.Log

	if err := a.Start(); err != nil {
		log.Error("Failed to start event forwarder", "error", err)
		a.Close(context.Background())
		os.Exit(1)
	}

	server := http.NewServer(":"+a.Cfg.Port, a.Router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", a.Cfg.Port)
		return server.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	runErr := g.Wait()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	a.Close(closeCtx)
	cancel()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Server stopped: %v\n", runErr)
		os.Exit(1)
	}
}
