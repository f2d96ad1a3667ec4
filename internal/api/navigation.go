package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/heimgewebe/lenskit/internal/metrics"
	"github.com/heimgewebe/lenskit/internal/security"
	"github.com/heimgewebe/lenskit/internal/tree"
	"github.com/heimgewebe/lenskit/pkg/types"
)

// listRequestTimeout bounds a single directory read so a stalled
// filesystem never holds a request goroutine forever.
const listRequestTimeout = 30 * time.Second

func (s *Server) rootCapability(c echo.Context) error {
	allowed, reason := s.sec.RootBrowsing()
	return c.JSON(http.StatusOK, types.RootCapability{Allowed: allowed, Reason: reason})
}

// listRoots mints one fresh token per allowlisted root, plus the system
// root when the loopback+secret capability is active. This is the only
// entry point into navigation; clients never submit a starting path.
func (s *Server) listRoots(c echo.Context) error {
	roots := s.sec.Roots()
	if allowed, _ := s.sec.RootBrowsing(); allowed {
		roots = append(roots, "/")
	}

	resp := types.RootsResponse{Roots: []types.RootEntry{}}
	for _, root := range roots {
		token, err := s.issuer.Issue(root)
		if err != nil {
			metrics.TokensIssuedTotal.WithLabelValues("error").Inc()
			return securityError(c, err)
		}
		metrics.TokensIssuedTotal.WithLabelValues("ok").Inc()
		resp.Roots = append(resp.Roots, types.RootEntry{Path: root, Token: token})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) verifyToken(c echo.Context, token string) (security.TrustedPath, error) {
	trusted, err := s.issuer.Verify(token)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("error").Inc()
		if errors.Is(err, security.ErrAuthentication) {
			// Security event: a token that fails the signature check was
			// either tampered with or minted under a different secret.
			log.Printf("lenskit: token signature rejected (request %s)",
				c.Response().Header().Get(echo.HeaderXRequestID))
		}
		return security.TrustedPath{}, err
	}
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()
	return trusted, nil
}

func contextWithTimeout(c echo.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), d)
}

// listDir verifies the token, reads one directory level, and hands back a
// fresh token per entry. Clients accumulate canonical paths purely from the
// tokens they are issued.
func (s *Server) listDir(c echo.Context) error {
	var req types.ListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	trusted, err := s.verifyToken(c, req.Token)
	if err != nil {
		return securityError(c, err)
	}

	ctx, cancel := contextWithTimeout(c, listRequestTimeout)
	defer cancel()

	entries, err := s.lister.ListDir(ctx, trusted)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	selfToken, err := s.issuer.Issue(trusted.Path())
	if err != nil {
		return securityError(c, err)
	}

	resp := types.ListResponse{
		Path:      trusted.Path(),
		SelfToken: selfToken,
		Entries:   make([]types.DirEntry, 0, len(entries)),
	}
	for _, e := range entries {
		childToken, err := s.issuer.Issue(e.Path)
		if err != nil {
			metrics.TokensIssuedTotal.WithLabelValues("error").Inc()
			return securityError(c, err)
		}
		metrics.TokensIssuedTotal.WithLabelValues("ok").Inc()
		resp.Entries = append(resp.Entries, types.DirEntry{
			Name:  e.Name,
			Type:  string(e.Type),
			Token: childToken,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// materialize verifies the base token, re-validates the selection lineage,
// snapshots the subtree, and expands the selection into explicit files.
func (s *Server) materialize(c echo.Context) error {
	var req types.MaterializeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	_, files, err := s.materializeSelection(c, req.Token, req.Selection)
	if err != nil {
		return securityError(c, err)
	}
	if files == nil {
		files = []string{}
	}
	return c.JSON(http.StatusOK, types.MaterializeResponse{Files: files})
}

// materializeSelection is the shared verify, lineage-check, snapshot,
// expand path used by both the materialize and index-build endpoints.
func (s *Server) materializeSelection(c echo.Context, token string, selection []string) (security.TrustedPath, []string, error) {
	trusted, err := s.verifyToken(c, token)
	if err != nil {
		return security.TrustedPath{}, nil, err
	}
	if err := s.issuer.ValidateSelection(trusted, selection); err != nil {
		return security.TrustedPath{}, nil, err
	}

	ctx, cancel := contextWithTimeout(c, listRequestTimeout)
	defer cancel()

	snapshot, err := s.lister.Snapshot(ctx, trusted)
	if err != nil {
		return security.TrustedPath{}, nil, err
	}

	start := time.Now()
	files := tree.Materialize(snapshot, selection)
	metrics.MaterializeDuration.Observe(time.Since(start).Seconds())
	return trusted, files, nil
}
