// Package server exposes the watermark engine over HTTP.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mailru/easyjson"
	"golang.org/x/net/netutil"

	watermark "github.com/gcslaoli/gemini-watermark-server"
	"github.com/gcslaoli/gemini-watermark-server/internal/fetch"
)

const (
	outputBinary = "binary"
	outputBase64 = "base64"
)

// Fetcher downloads the source image for a request.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Options tune the HTTP layer.
type Options struct {
	// MaxUploadBytes caps raw upload bodies. Zero means 32 MiB.
	MaxUploadBytes int64
	// MaxConnections caps concurrently accepted connections. Zero disables the cap.
	MaxConnections int
}

// Server handles watermark removal requests.
type Server struct {
	engine  *watermark.Engine
	fetcher Fetcher
	logger  *slog.Logger
	opts    Options
}

// New returns a Server. The engine must already be constructed; a server is
// never started without one.
func New(engine *watermark.Engine, fetcher Fetcher, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{engine: engine, fetcher: fetcher, logger: logger, opts: opts}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /remove-watermark", s.handleRemove)
	mux.HandleFunc("POST /remove-watermark/upload", s.handleUpload)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.opts.MaxConnections > 0 {
		ln = netutil.LimitListener(ln, s.opts.MaxConnections)
	}

	srv := secureServer(s.Handler())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// secureServer creates an HTTP server with bounded read and write times.
func secureServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := newRequestID()
	logger := s.logger.With("request_id", reqID)

	var req removeRequest
	if err := easyjson.UnmarshalFromReader(io.LimitReader(r.Body, 1<<20), &req); err != nil {
		logger.Warn("validation failed", "error", err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body", RequestID: reqID})
		return
	}

	outputType := parseOutputType(req.OutputType)
	if req.ImageURL == "" {
		logger.Warn("validation failed: imageUrl is missing")
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "imageUrl is required", RequestID: reqID})
		return
	}

	logger.Info("incoming request", "url", req.ImageURL, "output", outputType)

	fetchStart := time.Now()
	data, err := s.fetcher.Get(r.Context(), req.ImageURL)
	if err != nil {
		s.fail(w, logger, reqID, start, fetchStatus(err), "Failed to fetch image", err)
		return
	}
	logger.Info("image fetched", "took", time.Since(fetchStart), "bytes", len(data))

	s.respond(w, logger, reqID, start, data, outputType, req.Detect)
}

// handleUpload accepts the encoded image as the request body. The output
// type and detection flag come from the query string.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := newRequestID()
	logger := s.logger.With("request_id", reqID)

	query := r.URL.Query()
	outputType := parseOutputType(query.Get("outputType"))
	detect, _ := strconv.ParseBool(query.Get("detect"))

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		s.fail(w, logger, reqID, start, status, "Failed to read upload", err)
		return
	}

	logger.Info("incoming upload", "bytes", len(data), "output", outputType)
	s.respond(w, logger, reqID, start, data, outputType, detect)
}

func (s *Server) respond(w http.ResponseWriter, logger *slog.Logger, reqID string, start time.Time, data []byte, outputType string, detect bool) {
	processStart := time.Now()
	img, width, height, detected, err := s.process(data, detect)
	if err != nil {
		s.fail(w, logger, reqID, start, processStatus(err), "Failed to process image", err)
		return
	}

	encoded, err := watermark.EncodePNGBytes(img)
	if err != nil {
		s.fail(w, logger, reqID, start, http.StatusInternalServerError, "Failed to encode image", err)
		return
	}
	processing := time.Since(processStart)
	logger.Info("image processed", "took", processing, "width", width, "height", height, "detected", detected)

	total := time.Since(start)
	w.Header().Set("X-Request-Id", reqID)
	w.Header().Set("X-Watermark-Detected", strconv.FormatBool(detected))

	if outputType == outputBase64 {
		logger.Info("returning base64 response", "total", total)
		s.writeJSON(w, http.StatusOK, base64Response{
			Image:        watermark.PNGDataURL(encoded),
			Width:        width,
			Height:       height,
			ProcessingMS: processing.Milliseconds(),
			TotalMS:      total.Milliseconds(),
		})
		return
	}

	logger.Info("returning binary response", "total", total)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(encoded)))
	w.Header().Set("X-Processing-Time", strconv.FormatInt(processing.Milliseconds(), 10))
	w.Header().Set("X-Total-Time", strconv.FormatInt(total.Milliseconds(), 10))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(encoded); err != nil {
		logger.Warn("write response", "error", err)
	}
}

// process decodes data and removes the overlay. With detect set, an image
// without a detectable overlay is returned unchanged and detected is false.
func (s *Server) process(data []byte, detect bool) (img image.Image, width, height int, detected bool, err error) {
	src, _, err := watermark.DecodeImageBytes(data)
	if err != nil {
		return nil, 0, 0, false, err
	}

	if detect {
		det, err := s.engine.Detect(src)
		if err != nil {
			return nil, 0, 0, false, err
		}
		if !det.Present {
			b := src.Bounds()
			return src, b.Dx(), b.Dy(), false, nil
		}
	}

	res, err := s.engine.Process(src)
	if err != nil {
		return nil, 0, 0, false, err
	}
	return res.Image, res.Width, res.Height, true, nil
}

func (s *Server) fail(w http.ResponseWriter, logger *slog.Logger, reqID string, start time.Time, status int, msg string, err error) {
	logger.Error("request failed", "status", status, "took", time.Since(start), "error", err)
	s.writeJSON(w, status, errorResponse{Error: msg, Message: err.Error(), RequestID: reqID})
}

// parseOutputType selects base64 only when asked for explicitly; anything
// else gets the binary image.
func parseOutputType(s string) string {
	if s == outputBase64 {
		return outputBase64
	}
	return outputBinary
}

func fetchStatus(err error) int {
	if errors.Is(err, fetch.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadGateway
}

func processStatus(err error) int {
	if errors.Is(err, watermark.ErrUnsupportedInput) || errors.Is(err, watermark.ErrDecode) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v easyjson.Marshaler) {
	data, err := easyjson.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func newRequestID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(b[:])
}
