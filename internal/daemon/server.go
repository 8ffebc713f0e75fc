package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"daapshare/internal/config"
	"daapshare/internal/logging"
	"daapshare/internal/services"
	"daapshare/internal/share"
)

const requestIDHeader = "X-Request-ID"

type shareServer struct {
	bind              string
	logger            *slog.Logger
	router            *share.Router
	handler           http.Handler
	readHeaderTimeout time.Duration
	idleTimeout       time.Duration

	mu       sync.Mutex
	listener net.Listener
	server   *http.Server
}

func newShareServer(cfg *config.Config, router *share.Router, logger *slog.Logger) *shareServer {
	srv := &shareServer{
		bind:              strings.TrimSpace(cfg.Server.Bind),
		logger:            logging.NewComponentLogger(logger, "server"),
		router:            router,
		readHeaderTimeout: cfg.ReadHeaderTimeout(),
		idleTimeout:       cfg.IdleTimeout(),
	}
	srv.handler = srv.routes()
	return srv
}

func (s *shareServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(chimiddleware.Recoverer)
	r.Get("/", s.handle)
	r.Get("/*", s.handle)
	return r
}

// requestID stamps each request with a correlation id, reusing the client's
// X-Request-ID when present.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *shareServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("share listen: %w", err)
	}
	server := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.readHeaderTimeout,
		IdleTimeout:       s.idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.mu.Lock()
	s.listener = listener
	s.server = server
	s.mu.Unlock()

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("share server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("share server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *shareServer) stop(timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	s.mu.Lock()
	server, listener := s.server, s.listener
	s.server, s.listener = nil, nil
	s.mu.Unlock()

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
	if listener != nil {
		_ = listener.Close()
	}
}

func (s *shareServer) addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *shareServer) handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.WithContext(ctx, s.logger)
	started := time.Now()

	resp, err := s.router.Handle(ctx, r.URL.Path, r.URL.Query())
	if err != nil {
		status := services.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed", logging.String("path", r.URL.Path), logging.Int("status", status), logging.Error(err))
		} else {
			logger.Info("request rejected", logging.String("path", r.URL.Path), logging.Int("status", status), logging.Error(err))
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	w.Header().Set("DAAP-Server", "daapshare")
	switch resp.Kind {
	case share.ResponseTree:
		w.Header().Set("Content-Type", share.ContentType)
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(resp.Body); err != nil {
			logger.Debug("write response", logging.Error(err))
		}
	case share.ResponseFile:
		s.serveFile(w, r, logger, resp)
	default:
		w.WriteHeader(http.StatusOK)
	}
	logger.Debug("request served",
		logging.String("path", r.URL.Path),
		logging.Duration("elapsed", time.Since(started)),
	)
}

func (s *shareServer) serveFile(w http.ResponseWriter, r *http.Request, logger *slog.Logger, resp share.Response) {
	f, err := os.Open(resp.FilePath)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		logger.Warn("open track file", logging.String("path", resp.FilePath), logging.Error(err))
		http.Error(w, http.StatusText(status), status)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		logger.Warn("stat track file", logging.String("path", resp.FilePath), logging.Error(err))
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}
	if ct := mime.TypeByExtension("." + resp.Format); ct != "" {
		w.Header().Set("Content-Type", ct)
	} else {
		w.Header().Set("Content-Type", "application/octet-stream")
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
