package watermark

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"time"

	"golang.org/x/image/draw"
)

// Result is a restored image together with the placement that was reversed.
type Result struct {
	Image     *image.NRGBA
	Width     int
	Height    int
	Placement Placement
	// Format is the detected input format when the engine decoded the input.
	Format string
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver installs an observer for pipeline events.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithInk sets the overlay colour at full opacity. The default is White.
func WithInk(ink Ink) Option {
	return func(e *Engine) { e.ink = ink }
}

// WithBackground sets the flat background the reference assets were captured
// on. The default is Black.
func WithBackground(bg Ink) Option {
	return func(e *Engine) { e.background = bg }
}

// WithUpscaledLarge derives the 96x96 reference from the 48x48 one when the
// large asset is absent.
func WithUpscaledLarge() Option {
	return func(e *Engine) { e.upscaleLarge = true }
}

// Engine removes the overlay by reverse alpha blending. It is safe for
// concurrent use: the only shared state is its alpha map cache.
type Engine struct {
	refs         referenceSet
	cache        *AlphaMapCache
	observer     Observer
	ink          Ink
	background   Ink
	upscaleLarge bool
}

// New loads the reference overlays from assets (bg_48.png and bg_96.png) and
// returns a ready engine. A missing or corrupt asset fails with ErrAssetLoad,
// a wrongly sized one with ErrShapeMismatch; either must abort startup.
func New(ctx context.Context, assets fs.FS, opts ...Option) (*Engine, error) {
	e := &Engine{
		observer:   nopObserver{},
		ink:        White,
		background: Black,
	}
	for _, opt := range opts {
		opt(e)
	}

	refs, err := loadReferences(ctx, assets, e.upscaleLarge)
	if err != nil {
		return nil, err
	}
	e.refs = refs
	e.cache = NewAlphaMapCache(e.deriveAlphaMap)

	return e, nil
}

// NewFromDir is New with assets read from a directory.
func NewFromDir(ctx context.Context, dir string, opts ...Option) (*Engine, error) {
	return New(ctx, AssetsFromDir(dir), opts...)
}

func (e *Engine) deriveAlphaMap(size int) (*AlphaMap, error) {
	ref, ok := e.refs[size]
	if !ok {
		return nil, fmt.Errorf("%w: no reference for overlay size %d", ErrShapeMismatch, size)
	}
	return DeriveAlphaMap(ref, size, e.background, e.ink)
}

// Placement returns the overlay placement for an image of the given size.
func (e *Engine) Placement(width, height int) Placement {
	return Resolve(width, height)
}

// AlphaMap returns the cached alpha map for an overlay size.
func (e *Engine) AlphaMap(size int) (*AlphaMap, error) {
	return e.cache.GetOrCompute(size)
}

// Process removes the overlay from img. The input is not modified; the
// restored pixels are returned in a new NRGBA image with the same bounds.
func (e *Engine) Process(img image.Image) (*Result, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image provided", ErrUnsupportedInput)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid image dimensions %dx%d", ErrUnsupportedInput, width, height)
	}

	p := e.Placement(width, height)
	e.observer.Observe(Event{
		Kind:    EventPlacement,
		Size:    p.Size,
		OffsetX: p.OffsetX,
		OffsetY: p.OffsetY,
		Width:   width,
		Height:  height,
	})

	alphaMap, hit, err := e.cache.get(p.Size)
	if err != nil {
		return nil, err
	}
	kind := EventCacheMiss
	if hit {
		kind = EventCacheHit
	}
	e.observer.Observe(Event{Kind: kind, Size: p.Size})

	start := time.Now()
	out := cloneToNRGBA(img)
	Invert(out, alphaMap, p, e.ink)
	e.observer.Observe(Event{
		Kind:     EventInverted,
		Size:     p.Size,
		OffsetX:  p.OffsetX,
		OffsetY:  p.OffsetY,
		Width:    width,
		Height:   height,
		Duration: time.Since(start),
	})

	return &Result{Image: out, Width: width, Height: height, Placement: p}, nil
}

// ProcessBytes decodes data and removes the overlay from it. Bytes in an
// unknown format fail with ErrUnsupportedInput, corrupt bytes with ErrDecode.
func (e *Engine) ProcessBytes(data []byte) (*Result, error) {
	img, format, err := DecodeImageBytes(data)
	if err != nil {
		return nil, err
	}

	res, err := e.Process(img)
	if err != nil {
		return nil, err
	}
	res.Format = format
	return res, nil
}

// cloneToNRGBA copies the image into a mutable, non-premultiplied buffer.
func cloneToNRGBA(src image.Image) *image.NRGBA {
	bounds := src.Bounds()
	dst := image.NewNRGBA(bounds)
	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	return dst
}
