package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/nao1215/a11yscan/internal/fetch"
)

// Path is the route of the fetch endpoint.
const Path = "/api/proxy"

// DefaultUpstreamTimeout bounds each upstream fetch.
const DefaultUpstreamTimeout = 15 * time.Second

// Server handles fetch requests by retrieving the target through a Source.
type Server struct {
	source  fetch.Source
	timeout time.Duration
	logger  *slog.Logger
	router  *mux.Router
}

// Option configures a Server.
type Option func(*Server)

// WithUpstreamTimeout sets the per-request upstream timeout.
func WithUpstreamTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a Server that fetches upstream pages with source,
// typically a *fetch.DirectSource.
func NewServer(source fetch.Source, opts ...Option) *Server {
	s := &Server{
		source:  source,
		timeout: DefaultUpstreamTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(corsMiddleware)
	r.HandleFunc(Path, s.handleFetch).Methods(http.MethodGet, http.MethodOptions)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.timeout + 5*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("proxy listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down proxy: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	target := r.URL.Query().Get("url")
	if !isFetchableURL(target) {
		respondWithError(w, http.StatusBadRequest, "url parameter must be an absolute http or https URL")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	raw, err := s.source.FetchRaw(ctx, target)
	if err != nil {
		s.handleFetchError(ctx, w, r, target, err)
		return
	}

	finalURL := raw.FinalURL
	if finalURL == "" {
		finalURL = target
	}
	respondWithJSON(w, http.StatusOK, fetch.ProxyResponse{
		HTML:       string(raw.Body),
		Status:     raw.StatusCode,
		StatusText: http.StatusText(raw.StatusCode),
		URL:        finalURL,
	})
}

func (s *Server) handleFetchError(ctx context.Context, w http.ResponseWriter, r *http.Request, target string, err error) {
	if r.Context().Err() != nil {
		s.logger.Debug("client went away", "url", target)
		return
	}

	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		s.logger.Warn("upstream timed out", "url", target, "timeout", s.timeout)
		respondWithError(w, http.StatusGatewayTimeout, fmt.Sprintf("upstream did not respond within %s", s.timeout))
		return
	}

	var fe *fetch.FetchError
	if errors.As(err, &fe) && fe.StatusCode != 0 {
		respondWithError(w, fe.StatusCode, fmt.Sprintf("HTTP %d: %s", fe.StatusCode, fe.Message))
		return
	}

	s.logger.Warn("upstream fetch failed", "url", target, "error", err)
	respondWithError(w, http.StatusBadGateway, err.Error())
}

// isFetchableURL reports whether raw is an absolute http or https URL.
func isFetchableURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, fetch.ProxyResponse{Error: message})
}

// respondWithJSON sends a JSON response with the given status code and payload.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to encode response"}`)) //nolint:errcheck
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body) //nolint:errcheck // client may be gone
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("proxy request",
			"method", r.Method,
			"url", r.URL.Query().Get("url"),
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}
