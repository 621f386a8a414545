// Package httpserver exposes the auth API over HTTP/JSON.
package httpserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/dbsauth/internal/logging"
	"github.com/dmitrijs2005/dbsauth/internal/server/metrics"
	"github.com/dmitrijs2005/dbsauth/internal/server/services"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// UserService is the subset of services.UserService the handlers need.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

// Options tune cookies, CORS and security headers.
type Options struct {
	AllowedOrigins []string
	Production     bool
	RefreshTTL     time.Duration
}

type HTTPServer struct {
	address string
	users   UserService
	metrics *metrics.Metrics
	logger  logging.Logger
	opts    Options
}

func NewHTTPServer(a string, l logging.Logger, us UserService, m *metrics.Metrics, opts Options) *HTTPServer {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
		metrics: m,
		opts:    opts,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *HTTPServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully. It returns nil after a clean shutdown.
func (s *HTTPServer) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// Handler returns the routed API wrapped in the middleware chain.
func (s *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/auth/register", s.instrument("register", http.HandlerFunc(s.handleRegister)))
	mux.Handle("POST /api/auth/login", s.instrument("login", http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/refresh", s.instrument("refresh", http.HandlerFunc(s.handleRefresh)))
	mux.Handle("POST /api/auth/logout", s.instrument("logout", http.HandlerFunc(s.handleLogout)))
	mux.HandleFunc("GET /{$}", s.handleRoot)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	var h http.Handler = mux
	h = s.cors(h)
	h = s.securityHeaders(h)
	h = s.recoverer(h)
	h = s.logRequests(h)
	return h
}
