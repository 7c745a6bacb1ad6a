package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	watermark "github.com/gcslaoli/gemini-watermark-server"
	"github.com/gcslaoli/gemini-watermark-server/internal/config"
	"github.com/gcslaoli/gemini-watermark-server/internal/logging"
)

// gwatermark remove --in image.png --out image_unwatermarked.png
// gwatermark remove --in-base64 "data:image/png;base64,..." --out-base64
// gwatermark detect --in image.png
// gwatermark serve --config gwatermark.toml
// gwatermark watch --dir ./incoming

// Globals are flags shared by every command.
type Globals struct {
	Config    string `help:"Path to a TOML or YAML config file" type:"path" default:"gwatermark.toml"`
	Assets    string `help:"Directory holding bg_48.png and bg_96.png (overrides config)"`
	LogLevel  string `help:"Log level (debug, info, warn, error; overrides config)"`
	LogFormat string `help:"Log format (text, json; overrides config)"`

	stdout io.Writer `kong:"-"`
}

// load reads the config and applies command line overrides.
func (g *Globals) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, nil, err
	}
	if g.Assets != "" {
		cfg.Engine.Assets = g.Assets
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.Log.Format = g.LogFormat
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// engine builds the watermark engine; a failure here must stop the command.
func (g *Globals) engine(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*watermark.Engine, error) {
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, watermark.WithObserver(watermark.NewLogObserver(logger)))

	e, err := watermark.NewFromDir(ctx, cfg.Engine.Assets, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize watermark engine from %s: %w", cfg.Engine.Assets, err)
	}
	logger.Debug("watermark engine initialized", "assets", cfg.Engine.Assets)
	return e, nil
}

func (g *Globals) out() io.Writer {
	if g.stdout == nil {
		return os.Stdout
	}
	return g.stdout
}

// CLI is the command tree parsed by kong.
type CLI struct {
	Globals

	Remove RemoveCmd `cmd:"" help:"Remove the watermark from a single image"`
	Detect DetectCmd `cmd:"" help:"Report whether an image carries the watermark"`
	Serve  ServeCmd  `cmd:"" help:"Run the HTTP removal service"`
	Watch  WatchCmd  `cmd:"" help:"Clean images dropped into a directory"`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("gwatermark"),
		kong.Description("Lossless Gemini watermark remover."),
		kong.UsageOnError(),
	)
	kctx.FatalIfErrorf(kctx.Run(&cli.Globals))
}
