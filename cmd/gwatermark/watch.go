package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gcslaoli/gemini-watermark-server/internal/watch"
)

// WatchCmd cleans images as they appear in a directory.
type WatchCmd struct {
	Dir      string        `help:"Directory to watch (overrides config)" type:"path"`
	Out      string        `help:"Output directory, relative to --dir unless absolute (overrides config)"`
	Debounce time.Duration `help:"Quiet period before a file is processed (overrides config)"`
}

// Run watches until interrupted.
func (c *WatchCmd) Run(g *Globals) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := g.load()
	if err != nil {
		return err
	}
	if c.Dir != "" {
		cfg.Watch.Dir = c.Dir
	}
	if c.Out != "" {
		cfg.Watch.Out = c.Out
	}
	debounce := cfg.Watch.DebounceDuration()
	if c.Debounce > 0 {
		debounce = c.Debounce
	}
	if cfg.Watch.Dir == "" {
		cfg.Watch.Dir = "."
	}

	engine, err := g.engine(ctx, cfg, logger)
	if err != nil {
		return err
	}

	w := &watch.Watcher{
		Engine:   engine,
		Dir:      cfg.Watch.Dir,
		Out:      cfg.Watch.Out,
		Debounce: debounce,
		Logger:   logger,
	}
	return w.Run(ctx)
}
