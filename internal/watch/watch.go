// Package watch cleans images dropped into a directory.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	watermark "github.com/gcslaoli/gemini-watermark-server"
)

const outputSuffix = "_unwatermarked"

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// Watcher processes images appearing in Dir and writes the cleaned PNGs to Out.
type Watcher struct {
	Engine   *watermark.Engine
	Dir      string
	Out      string
	Debounce time.Duration
	Logger   *slog.Logger

	// processed is called after each file, mainly for tests.
	processed func(src, dst string, err error)
}

// Run watches until ctx is cancelled. Out is created if needed; a relative
// Out is resolved against Dir.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := w.Out
	if !filepath.IsAbs(out) {
		out = filepath.Join(w.Dir, out)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return fmt.Errorf("unable to create output folder %q: %w", out, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	logger.Info("watching", "dir", w.Dir, "out", out)

	db := newDebouncer(w.Debounce, func(path string) {
		dst, err := w.processFile(path, out)
		if err != nil {
			logger.Error("could not process image", "file", path, "error", err)
		} else {
			logger.Info("processed", "file", path, "out", dst)
		}
		if w.processed != nil {
			w.processed(path, dst, err)
		}
	})
	defer db.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if !isCandidate(ev.Name) {
				continue
			}
			db.trigger(ev.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}

// isCandidate reports whether path is an input image rather than one of our
// outputs or a partial download.
func isCandidate(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if !imageExts[ext] {
		return false
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return !strings.HasSuffix(base, outputSuffix) && !strings.HasPrefix(filepath.Base(path), ".")
}

// OutputName returns the cleaned file name for src.
func OutputName(src string) string {
	base := filepath.Base(src)
	return strings.TrimSuffix(base, filepath.Ext(base)) + outputSuffix + ".png"
}

func (w *Watcher) processFile(src, outDir string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", err
	}

	res, err := w.Engine.ProcessBytes(data)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(outDir, OutputName(src))
	if err := writeAtomic(dst, res); err != nil {
		return "", err
	}
	return dst, nil
}

// writeAtomic encodes into a hidden temp file next to dst and renames it
// into place.
func writeAtomic(dst string, res *watermark.Result) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", dst, err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = watermark.EncodePNG(tmp, res.Image); err != nil {
		return fmt.Errorf("could not encode PNG destination %q: %w", dst, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("could not flush temporary destination %q: %w", dst, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not close temporary destination %q: %w", dst, err)
	}
	if err = os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("could not rename destination file %q: %w", dst, err)
	}
	return nil
}

// debouncer coalesces rapid event bursts into a single callback per file.
type debouncer struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	timers  map[string]*pending
	nextID  uint64
	stopped bool
	delay   time.Duration
	onFire  func(path string)
}

type pending struct {
	id    uint64
	timer *time.Timer
}

func newDebouncer(delay time.Duration, onFire func(path string)) *debouncer {
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &debouncer{
		timers: make(map[string]*pending),
		delay:  delay,
		onFire: onFire,
	}
}

func (d *debouncer) trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if p, ok := d.timers[path]; ok && p.timer.Stop() {
		p.timer.Reset(d.delay)
		return
	}

	d.nextID++
	id := d.nextID
	d.wg.Add(1)
	d.timers[path] = &pending{id: id, timer: time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if p, ok := d.timers[path]; ok && p.id == id {
			delete(d.timers, path)
		}
		d.mu.Unlock()
		d.onFire(path)
	})}
}

// stop cancels pending callbacks and waits for running ones.
func (d *debouncer) stop() {
	d.mu.Lock()
	d.stopped = true
	for path, p := range d.timers {
		if p.timer.Stop() {
			d.wg.Done()
		}
		delete(d.timers, path)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
