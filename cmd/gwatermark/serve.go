package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gcslaoli/gemini-watermark-server/internal/fetch"
	"github.com/gcslaoli/gemini-watermark-server/internal/server"
)

// ServeCmd runs the HTTP service until interrupted.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides config and PORT)"`
}

// Run starts the server. It fails before listening if the engine cannot be built.
func (c *ServeCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}

	// The service never starts without a working engine.
	engine, err := g.engine(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("watermark engine initialized")

	fetcher := fetch.New(cfg.Fetch.TimeoutDuration(), cfg.Fetch.MaxBytes, cfg.Fetch.UserAgent)
	srv := server.New(engine, fetcher, logger, server.Options{
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		MaxConnections: cfg.Server.MaxConnections,
	})
	return srv.ListenAndServe(ctx, cfg.Server.Addr)
}
