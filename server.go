package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newApp wires middleware, the API routes and the static file root.
func newApp(cfg *Config, board *Board, logger *Logger) (*fiber.App, error) {
	doc, err := loadAPIDoc()
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               AppName,
		BodyLimit:             cfg.MaxBodyBytes,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})

	app.Use(requestid.New())
	app.Use(securityHeaders)
	app.Use(recordMetrics)
	app.Use(logRequests(logger))
	app.Use(recover.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	if err := RegisterRoutes(app, doc, NewHandlers(board, cfg, logger), logger); err != nil {
		return nil, err
	}

	app.Static("/", cfg.StaticDir)
	return app, nil
}

// startServer opens the stores, serves until SIGINT/SIGTERM and then shuts
// down gracefully.
func startServer(cfg *Config, logger *Logger) error {
	board, err := OpenBoard(cfg.DataDir, logger)
	if err != nil {
		return err
	}

	app, err := newApp(cfg, board, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ComponentHTTPServer, "Bulletin board running at http://"+cfg.Addr)
		logger.Info(ComponentHTTPServer, "Data directory: "+cfg.DataDir+", static root: "+cfg.StaticDir)
		errCh <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(ComponentHTTPServer, "Shutting down")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logger.Info(ComponentHTTPServer, "Server stopped")
	return nil
}
