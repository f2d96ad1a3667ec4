package api

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/heimgewebe/lenskit/internal/metrics"
	"github.com/heimgewebe/lenskit/internal/retrieval"
	"github.com/heimgewebe/lenskit/pkg/types"
)

var errIndexingNotAvailable = map[string]string{"error": "retrieval indexing not available"}

// buildIndex materializes a selection and ingests every resulting file into
// a fresh retrieval index. The file list flows straight from the verified
// materialization; no path in it ever came from the client directly.
func (s *Server) buildIndex(c echo.Context) error {
	if s.indexes == nil {
		return c.JSON(http.StatusServiceUnavailable, errIndexingNotAvailable)
	}

	var req types.IndexBuildRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	trusted, files, err := s.materializeSelection(c, req.Token, req.Selection)
	if err != nil {
		return securityError(c, err)
	}

	start := time.Now()
	ix, err := s.indexes.Create(trusted.Path())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	totalChunks := 0
	ingested := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			// Files can vanish between snapshot and read; skip rather than
			// fail the whole build.
			continue
		}
		n, err := ix.AddFile(path, content)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": fmt.Sprintf("ingest %s: %v", path, err),
			})
		}
		totalChunks += n
		ingested++
	}
	metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())

	return c.JSON(http.StatusCreated, types.IndexBuildResponse{
		IndexID: ix.ID(),
		Files:   ingested,
		Chunks:  totalChunks,
	})
}

func (s *Server) queryIndex(c echo.Context) error {
	if s.indexes == nil {
		return c.JSON(http.StatusServiceUnavailable, errIndexingNotAvailable)
	}

	var req types.QueryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.IndexID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "indexId is required"})
	}

	ix, err := s.indexes.Get(req.IndexID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}

	result, err := ix.Query(req.Query, req.K, retrieval.Filters{
		PathContains: req.PathContains,
		Ext:          req.Ext,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	resp := types.QueryResponse{
		Query: result.Query,
		Mode:  result.Mode,
		Count: result.Count,
		Hits:  make([]types.QueryHit, 0, len(result.Hits)),
	}
	for _, h := range result.Hits {
		resp.Hits = append(resp.Hits, types.QueryHit{
			ChunkID: h.ChunkID,
			Path:    h.Path,
			Range:   h.Range,
			Score:   h.Score,
			SHA256:  h.SHA256,
		})
	}
	return c.JSON(http.StatusOK, resp)
}
