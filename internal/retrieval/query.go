package retrieval

import (
	"fmt"
	"strings"
)

// Filters narrow a query by chunk metadata. Zero values are ignored.
type Filters struct {
	PathContains string // substring match on the lowercased path
	Ext          string // file extension, with or without leading dot
}

// Hit is one ranked query result. Range is "startLine-endLine". For FTS
// queries Score is the raw BM25 value (lower is better); metadata-only
// queries report zero.
type Hit struct {
	ChunkID string  `json:"chunkId"`
	Path    string  `json:"path"`
	Range   string  `json:"range"`
	Score   float64 `json:"score"`
	SHA256  string  `json:"sha256"`
}

// Result carries query hits plus the mode the engine ran in ("fts" or
// "metadata").
type Result struct {
	Query string `json:"query"`
	K     int    `json:"k"`
	Mode  string `json:"mode"`
	Count int    `json:"count"`
	Hits  []Hit  `json:"hits"`
}

// Query runs a BM25-ranked full-text query, or a metadata-only scan when
// the query text is empty. Ties break on path then start line so results
// are deterministic.
func (ix *Index) Query(queryText string, k int, filters Filters) (*Result, error) {
	if k <= 0 {
		k = 10
	}

	var (
		sqlText string
		params  []interface{}
		mode    string
	)

	var where []string
	if filters.PathContains != "" {
		where = append(where, "c.path_norm LIKE ?")
	}
	if filters.Ext != "" {
		where = append(where, "c.path_norm LIKE ?")
	}

	if queryText != "" {
		mode = "fts"
		// FTS5 treats embedded double quotes as phrase syntax; escape them.
		cleaned := strings.ReplaceAll(queryText, `"`, `""`)
		sqlText = `SELECT c.chunk_id, c.path, c.start_line, c.end_line, c.content_sha256,
			bm25(chunks_fts) AS score
			FROM chunks_fts
			JOIN chunks c ON c.chunk_id = chunks_fts.chunk_id
			WHERE chunks_fts MATCH ?`
		params = append(params, cleaned)
		if len(where) > 0 {
			sqlText += " AND " + strings.Join(where, " AND ")
		}
		sqlText += " ORDER BY score ASC, c.path ASC, c.start_line ASC LIMIT ?"
	} else {
		mode = "metadata"
		sqlText = `SELECT c.chunk_id, c.path, c.start_line, c.end_line, c.content_sha256,
			0 AS score
			FROM chunks c`
		if len(where) > 0 {
			sqlText += " WHERE " + strings.Join(where, " AND ")
		}
		sqlText += " ORDER BY c.path ASC, c.start_line ASC LIMIT ?"
	}

	if filters.PathContains != "" {
		params = append(params, "%"+strings.ToLower(filters.PathContains)+"%")
	}
	if filters.Ext != "" {
		ext := strings.ToLower(filters.Ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		params = append(params, "%"+ext)
	}
	params = append(params, k)

	rows, err := ix.db.Query(sqlText, params...)
	if err != nil {
		return nil, classifyQueryError(err, queryText)
	}
	defer rows.Close()

	result := &Result{Query: queryText, K: k, Mode: mode, Hits: []Hit{}}
	for rows.Next() {
		var (
			h                  Hit
			startLine, endLine int
		)
		if err := rows.Scan(&h.ChunkID, &h.Path, &startLine, &endLine, &h.SHA256, &h.Score); err != nil {
			return nil, err
		}
		h.Range = fmt.Sprintf("%d-%d", startLine, endLine)
		result.Hits = append(result.Hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	result.Count = len(result.Hits)
	return result, nil
}

// classifyQueryError turns opaque SQLite failures into actionable messages.
func classifyQueryError(err error, queryText string) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no such module: fts5"):
		return fmt.Errorf("sqlite build lacks the FTS5 extension: %w", err)
	case strings.Contains(msg, "no such table: chunks_fts"):
		return fmt.Errorf("index missing FTS table, reindex required: %w", err)
	case strings.Contains(msg, "syntax error"):
		return fmt.Errorf("fts syntax error in query %q, try simpler terms: %w", queryText, err)
	default:
		return fmt.Errorf("query failed: %w", err)
	}
}
