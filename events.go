package watermark

import (
	"context"
	"log/slog"
	"time"
)

// EventKind identifies a point in the removal pipeline.
type EventKind int

const (
	// EventPlacement is emitted once the overlay tier and offset are chosen.
	EventPlacement EventKind = iota
	// EventCacheHit is emitted when an alpha map is served from the cache.
	EventCacheHit
	// EventCacheMiss is emitted when an alpha map had to be derived.
	EventCacheMiss
	// EventInverted is emitted after the composite has been reversed.
	EventInverted
)

func (k EventKind) String() string {
	switch k {
	case EventPlacement:
		return "placement"
	case EventCacheHit:
		return "cache_hit"
	case EventCacheMiss:
		return "cache_miss"
	case EventInverted:
		return "inverted"
	default:
		return "unknown"
	}
}

// Event carries the details of a pipeline step. Width and Height are the
// input image dimensions; Duration is only set for EventInverted.
type Event struct {
	Kind     EventKind
	Size     int
	OffsetX  int
	OffsetY  int
	Width    int
	Height   int
	Duration time.Duration
}

// Observer receives pipeline events. Implementations must be safe for
// concurrent use; Observe is called synchronously from Process.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// LogObserver writes events to a structured logger at debug level.
type LogObserver struct {
	Logger *slog.Logger
}

// NewLogObserver returns an observer logging to logger, or to slog.Default()
// when logger is nil.
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{Logger: logger}
}

// Observe logs ev.
func (o *LogObserver) Observe(ev Event) {
	attrs := []slog.Attr{
		slog.String("event", ev.Kind.String()),
		slog.Int("size", ev.Size),
	}

	switch ev.Kind {
	case EventPlacement:
		attrs = append(attrs,
			slog.Int("x", ev.OffsetX),
			slog.Int("y", ev.OffsetY),
			slog.Int("width", ev.Width),
			slog.Int("height", ev.Height),
		)
	case EventInverted:
		attrs = append(attrs, slog.Duration("took", ev.Duration))
	}

	o.Logger.LogAttrs(context.Background(), slog.LevelDebug, "watermark engine", attrs...)
}
