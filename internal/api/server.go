// Package api exposes the navigation gateway over HTTP. Every filesystem
// operation is addressed by a capability token; no route accepts a raw path
// as a navigation or selection parameter.
package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/heimgewebe/lenskit/internal/auth"
	"github.com/heimgewebe/lenskit/internal/fsview"
	"github.com/heimgewebe/lenskit/internal/metrics"
	"github.com/heimgewebe/lenskit/internal/retrieval"
	"github.com/heimgewebe/lenskit/internal/security"
)

// Server holds the gateway dependencies.
type Server struct {
	echo    *echo.Echo
	issuer  *security.Issuer
	sec     *security.Config
	lister  fsview.Lister
	indexes *retrieval.Store
}

// NewServer creates the gateway with all routes configured. The auth token
// guards every route except health and metrics.
func NewServer(issuer *security.Issuer, sec *security.Config, lister fsview.Lister, indexes *retrieval.Store, authToken string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:    e,
		issuer:  issuer,
		sec:     sec,
		lister:  lister,
		indexes: indexes,
	}

	// Global middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())
	e.Use(metrics.EchoMiddleware())

	// Health and metrics (no auth)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	// API routes (with auth)
	api := e.Group("")
	api.Use(auth.TokenMiddleware(authToken))

	// Navigation
	api.GET("/fs/capability", s.rootCapability)
	api.GET("/fs/roots", s.listRoots)
	api.POST("/fs/list", s.listDir)
	api.POST("/fs/materialize", s.materialize)

	// Retrieval
	api.POST("/index/build", s.buildIndex)
	api.POST("/index/query", s.queryIndex)

	return s
}

// Start starts the HTTP server on the given address.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	return s.echo.Close()
}

// ServeHTTP makes the server usable with httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// securityStatus maps the error taxonomy onto HTTP statuses. Expired tokens
// are 401 so clients treat them as "refresh by re-navigating"; signature and
// allowlist failures are 403; malformed input is 400; a missing signing
// secret is 503 since only an operator can fix it.
func securityStatus(err error) int {
	switch {
	case errors.Is(err, security.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, security.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, security.ErrAuthentication), errors.Is(err, security.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, security.ErrConfiguration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func securityError(c echo.Context, err error) error {
	return c.JSON(securityStatus(err), map[string]string{"error": err.Error()})
}
