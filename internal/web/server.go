// Package web serves the layout controller over HTTP: a JSON API for card edits and drops, and a
// datastar SSE stream that pushes layout changes to connected editors.
package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"prysma/internal/config"
	"prysma/internal/layout"
	"prysma/internal/model"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrClosed is returned for requests that arrive after Close.
var ErrClosed = errors.New("web: server closed")

// Store is what the server needs from persistence.
type Store interface {
	layout.Persister
	GetProfile(ctx context.Context, userID string) (model.Profile, error)
}

type ServerConfig struct {
	Addr          string
	AuthMode      string // none|token
	SessionSecret []byte
	WriteDebounce time.Duration
	WriteTimeout  time.Duration
	Logger        *zap.Logger

	// KeepAlive is the SSE keep-alive interval. Zero means 25s.
	KeepAlive time.Duration
}

type Server struct {
	cfg   ServerConfig
	store Store
	log   *zap.Logger
	hubs  *hubRegistry

	mu          sync.Mutex
	controllers map[string]*layout.Controller
	closed      bool
}

func NewServer(cfg ServerConfig, st Store) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	cfg.AuthMode = strings.ToLower(strings.TrimSpace(cfg.AuthMode))
	if st == nil {
		return nil, errors.New("web: store is nil")
	}
	if cfg.AuthMode == "" {
		cfg.AuthMode = config.AuthNone
	}
	switch cfg.AuthMode {
	case config.AuthNone:
	case config.AuthToken:
		if len(cfg.SessionSecret) == 0 {
			return nil, errors.New("web: token auth requires a session secret")
		}
	default:
		return nil, errors.Errorf("web: invalid auth mode %q (expected none|token)", cfg.AuthMode)
	}
	if cfg.WriteDebounce <= 0 {
		cfg.WriteDebounce = layout.DefaultDebounce
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = layout.DefaultWriteTimeout
	}
	if cfg.KeepAlive <= 0 {
		cfg.KeepAlive = 25 * time.Second
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:         cfg,
		store:       st,
		log:         log.Named("web"),
		hubs:        newHubRegistry(),
		controllers: map[string]*layout.Controller{},
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("GET /users/{userId}/layout", s.handleLayout)
	mux.HandleFunc("GET /users/{userId}/layout/stream", s.handleLayoutStream)
	mux.HandleFunc("POST /users/{userId}/layout/reorder", s.handleReorder)
	mux.HandleFunc("POST /users/{userId}/layout/drag-start", s.handleDragStart)
	mux.HandleFunc("POST /users/{userId}/layout/drop", s.handleDrop)
	mux.HandleFunc("POST /users/{userId}/sections", s.handleSectionAdd)
	mux.HandleFunc("PATCH /users/{userId}/sections/{sectionId}", s.handleSectionEdit)
	mux.HandleFunc("DELETE /users/{userId}/sections/{sectionId}", s.handleSectionRemove)
	mux.HandleFunc("GET /users/{userId}/card", s.handleCardPage)
	return s.logRequests(mux)
}

// controllerFor returns the user's controller, creating and loading it on first use.
func (s *Server) controllerFor(ctx context.Context, userID string) (*layout.Controller, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	c := s.controllers[userID]
	if c == nil {
		hub := s.hubs.hubFor(userID)
		c = layout.New(s.store,
			layout.WithLogger(s.log.With(zap.String("user", userID))),
			layout.WithDebounce(s.cfg.WriteDebounce),
			layout.WithWriteTimeout(s.cfg.WriteTimeout),
			layout.WithOnChange(func(layout.State) { hub.broadcast() }),
		)
		s.controllers[userID] = c
	}
	s.mu.Unlock()

	// Load runs once per user; later calls return the in-memory state. A failed load is retried
	// on the next request. The fetch must not die with the request that triggered it.
	lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.WriteTimeout)
	defer cancel()
	if st := c.Load(lctx, userID); st.Err != nil && errors.Is(st.Err, layout.ErrLoad) {
		return nil, st.Err
	}
	return c, nil
}

// Close stops accepting layout requests and flushes every controller's queued writes.
func (s *Server) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	ctrls := make([]*layout.Controller, 0, len(s.controllers))
	for _, c := range s.controllers {
		ctrls = append(ctrls, c)
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for _, c := range ctrls {
		g.Go(func() error { return c.Close(gctx) })
	}
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps SSE streaming working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }
