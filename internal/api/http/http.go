package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"

	"github.com/vitralis/atelier-manager/internal/dependency"
	"github.com/vitralis/atelier-manager/internal/middleware"
	"github.com/vitralis/atelier-manager/internal/ratelimit"
)

// Config is the configuration for the http server
type Config struct {
	Port           string   `mapstructure:"port"`
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig guards the admin surface. A single shared password issues
// short-lived JWTs; there is no user database behind the console.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	MasterPassword string        `mapstructure:"master_password"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
}

// Server is the http server
type Server struct {
	hs           *http.Server
	c            *Config
	ac           *AuthConfig
	tokenAuth    *jwtauth.JWTAuth
	loginLimiter *ratelimit.Limiter
	analytics    dependency.Analytics
	settings     dependency.Settings
	done         chan struct{}
}

// New creates a new server
func New(config *Config, authConfig *AuthConfig, analytics dependency.Analytics, settings dependency.Settings) *Server {
	return &Server{
		c:            config,
		ac:           authConfig,
		tokenAuth:    jwtauth.New("HS256", []byte(authConfig.JWTSecret), nil),
		loginLimiter: ratelimit.NewLimiter(time.Minute, 10),
		analytics:    analytics,
		settings:     settings,
		done:         make(chan struct{}),
	}
}

// Done returns a channel that is closed when the http server exits
func (s *Server) Done() <-chan struct{} {
	return s.done
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.ClientIdentifier)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins(),
		AllowedMethods:   []string{"GET", "PUT", "POST", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: true,
	}))

	r.Get("/healthz", s.handleHealthz)
	r.Post("/api/auth/login", s.handleLogin)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(jwtauth.Verifier(s.tokenAuth))
		r.Use(jwtauth.Authenticator)

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/analytics", s.handleAnalytics)
		r.Get("/analytics/trend", s.handleTrend)
		r.Get("/analytics/geography", s.handleGeography)
		r.Get("/analytics/top-products", s.handleTopProducts)
		r.Get("/settings/currency", s.handleGetCurrency)
		r.Put("/settings/currency", s.handleSetCurrency)
	})

	return r
}

func (s *Server) allowedOrigins() []string {
	origins := []string{"http://localhost:*", "https://localhost:*"}
	return append(origins, s.c.AllowedOrigins...)
}

// Start starts the server
func (s *Server) Start(ctx context.Context) error {
	listenerAddr := fmt.Sprintf("%s:%s", s.c.Address, s.c.Port)
	s.hs = &http.Server{
		Addr:              listenerAddr,
		Handler:           s.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Default().InfoContext(ctx, fmt.Sprintf("atelier-manager new listener on: http://%v", listenerAddr))
		err := s.hs.ListenAndServe()
		if err == http.ErrServerClosed {
			slog.Default().InfoContext(ctx, "http server returned")
		} else {
			slog.Default().ErrorContext(ctx, "http server exited with an error",
				slog.String("err", err.Error()),
			)
		}
		close(s.done)
	}()

	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) {
	if s.hs == nil {
		return
	}
	if err := s.hs.Shutdown(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "http server shutdown",
			slog.String("err", err.Error()),
		)
	}
}
