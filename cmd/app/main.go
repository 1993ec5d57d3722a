package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fooddelivery/cmd"
	httpapi "fooddelivery/internal/adapters/in/http"
	"fooddelivery/internal/pkg/logging"

	"github.com/labstack/echo/v4"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configs, err := cmd.LoadConfig(".env")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := logging.New(os.Stderr, logging.ParseLevel(configs.LogLevel))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cmd.NewCompositionRoot(ctx, configs, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := app.Close(); closeErr != nil {
			logger.Error("close resources", "error", closeErr)
		}
	}()

	jobManager := app.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		return err
	}
	defer jobManager.StopAll()

	errCh := make(chan error, 2)

	if consumer := app.CreateCheckoutConsumer(); consumer != nil {
		defer consumer.Close()
		go func() {
			if runErr := consumer.Run(ctx); runErr != nil {
				errCh <- fmt.Errorf("checkout consumer: %w", runErr)
			}
		}()
	}

	e, err := httpapi.NewEcho(ctx, app.CreateHTTPServer(), app.CreateAuthenticator(), logger)
	if err != nil {
		return err
	}
	go startWebServer(e, configs.HTTPPort, logger, errCh)

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err = <-errCh:
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
		logger.Error("shutdown http server", "error", shutdownErr)
	}
	return err
}

func startWebServer(e *echo.Echo, port string, logger *slog.Logger, errCh chan<- error) {
	addr := fmt.Sprintf("0.0.0.0:%s", port)
	logger.Info("http server listening", "addr", addr)
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		errCh <- err
	}
}
