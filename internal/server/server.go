// Package server exposes the resolver over HTTP.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lodestone/pkg/errors"
	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
	"github.com/matzehuels/lodestone/pkg/resolve"
	"github.com/matzehuels/lodestone/pkg/version"
)

// Resolver is the subset of *resolve.Resolver the server calls.
type Resolver interface {
	Resolve(ctx context.Context, p *version.Profile) (*version.Version, error)
	Query(ctx context.Context, p *version.Profile, name string) (version.MetaData, error)
	Versions(ctx context.Context) (*mojang.Manifest, error)
	LoaderVersions(ctx context.Context, l version.Loader, minecraft string) ([]string, error)
	Stats(ctx context.Context) (resolve.CacheStats, error)
	Clear(ctx context.Context, persistent bool) error
}

// Options configures New.
type Options struct {
	Resolver Resolver
	Logger   *log.Logger
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// Timeout bounds each request. Zero means no limit.
	Timeout time.Duration
}

// Server routes HTTP requests to a Resolver.
type Server struct {
	Router   *chi.Mux
	resolver Resolver
	logger   *log.Logger
}

// New builds the router.
//
//	GET    /healthz
//	GET    /v1/versions
//	GET    /v1/versions/{loader}/{minecraft}
//	GET    /v1/resolve/{loader}/{minecraft}[/{query}]?loader_version=&name=
//	GET    /v1/cache
//	DELETE /v1/cache[?persistent=true]
//	GET    /metrics
//
// For the updateserver loader the {minecraft} segment names the server
// entry instead.
func New(opts Options) *Server {
	s := &Server{Router: chi.NewRouter(), resolver: opts.Resolver, logger: opts.Logger}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}

	r := s.Router
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(chimw.Timeout(opts.Timeout))
		}
		r.Get("/versions", s.handleVersions)
		r.Get("/versions/{loader}/{minecraft}", s.handleLoaderVersions)
		r.Get("/resolve/{loader}/{minecraft}", s.handleResolve)
		r.Get("/resolve/{loader}/{minecraft}/{query}", s.handleQuery)
		r.Get("/cache", s.handleStats)
		r.Delete("/cache", s.handleClear)
	})
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	m, err := s.resolver.Versions(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleLoaderVersions(w http.ResponseWriter, r *http.Request) {
	l, err := version.ParseLoader(chi.URLParam(r, "loader"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.resolver.LoaderVersions(r.Context(), l, chi.URLParam(r, "minecraft"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	p, err := profileFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.resolver.Resolve(r.Context(), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	p, err := profileFromRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	md, err := s.resolver.Query(r.Context(), p, chi.URLParam(r, "query"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.resolver.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	persistent, _ := strconv.ParseBool(r.URL.Query().Get("persistent"))
	if err := s.resolver.Clear(r.Context(), persistent); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// profileFromRequest builds the profile named by the route. Without a
// name parameter the profile is named after its loader and versions, so
// identical requests share cache entries.
func profileFromRequest(r *http.Request) (*version.Profile, error) {
	l, err := version.ParseLoader(chi.URLParam(r, "loader"))
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	p := &version.Profile{
		Name:          q.Get("name"),
		Loader:        l,
		LoaderVersion: q.Get("loader_version"),
	}
	second := chi.URLParam(r, "minecraft")
	if l == version.UpdateServer {
		p.Name = second
		return p, nil
	}
	p.MinecraftVersion = second
	if p.Name == "" {
		p.Name = string(l) + "-" + second
		if p.LoaderVersion != "" {
			p.Name += "-" + p.LoaderVersion
		}
	}
	return p, nil
}

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	var rl *errors.RateLimitedError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	}

	var body errorBody
	body.Error.Code = errors.GetCode(err)
	if body.Error.Code == "" {
		body.Error.Code = errors.ErrCodeInternal
	}
	body.Error.Message = errors.UserMessage(err)
	writeJSON(w, status, body)
}

// StatusCode maps err to an HTTP status.
func StatusCode(err error) int {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return 499
	}
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLoader, errors.ErrCodeInvalidProfile:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeVersionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeMissingField, errors.ErrCodeJSONParse,
		errors.ErrCodeConversion, errors.ErrCodeIntegrity:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"id", chimw.GetReqID(r.Context()))
	})
}
