package types

// IndexBuildRequest materializes a selection and ingests the resulting
// files into a new retrieval index.
type IndexBuildRequest struct {
	Token     string   `json:"token"`
	Selection []string `json:"selection"`
}

// IndexBuildResponse reports the newly built index.
type IndexBuildResponse struct {
	IndexID string `json:"indexId"`
	Files   int    `json:"files"`
	Chunks  int    `json:"chunks"`
}

// QueryRequest runs a full-text query against a built index. An empty
// query runs in metadata-only mode.
type QueryRequest struct {
	IndexID      string `json:"indexId"`
	Query        string `json:"query"`
	K            int    `json:"k,omitempty"`
	PathContains string `json:"path,omitempty"`
	Ext          string `json:"ext,omitempty"`
}

// QueryHit is one ranked result.
type QueryHit struct {
	ChunkID string  `json:"chunkId"`
	Path    string  `json:"path"`
	Range   string  `json:"range"`
	Score   float64 `json:"score"`
	SHA256  string  `json:"sha256"`
}

// QueryResponse carries the ranked hits.
type QueryResponse struct {
	Query string     `json:"query"`
	Mode  string     `json:"mode"`
	Count int        `json:"count"`
	Hits  []QueryHit `json:"hits"`
}
