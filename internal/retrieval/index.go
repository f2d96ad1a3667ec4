// Package retrieval builds and queries SQLite full-text indexes over
// materialized file selections. This is the downstream consumer the
// navigation gateway feeds: a selection is expanded to files, chunked, and
// ingested into an FTS5 index that answers BM25-ranked queries.
package retrieval

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

const indexSchemaVersion = "v1"

const indexSchema = `
CREATE TABLE IF NOT EXISTS index_meta (
    key TEXT PRIMARY KEY,
    value TEXT
);

CREATE TABLE IF NOT EXISTS chunks (
    chunk_id TEXT PRIMARY KEY,
    path TEXT,
    path_norm TEXT,
    start_byte INTEGER,
    end_byte INTEGER,
    start_line INTEGER,
    end_line INTEGER,
    content_sha256 TEXT,
    size_bytes INTEGER,
    content_z BLOB
);

CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
    chunk_id UNINDEXED,
    content,
    path_tokens
);

CREATE INDEX IF NOT EXISTS idx_chunks_path ON chunks(path_norm);
`

// Chunk content is stored zstd-compressed beside the FTS text; one shared
// encoder/decoder pair serves all indexes.
var (
	zstdEnc, _ = zstd.NewWriter(nil)
	zstdDec, _ = zstd.NewReader(nil)
)

// Index is one open retrieval index.
type Index struct {
	db *sql.DB
	id string
}

// ID returns the index identifier.
func (ix *Index) ID() string {
	return ix.id
}

// Close closes the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// AddFile chunks content and ingests it under the given canonical path.
// Returns the number of chunks written.
func (ix *Index) AddFile(path string, content []byte) (int, error) {
	chunks := ChunkFile(path, string(content))
	if len(chunks) == 0 {
		return 0, nil
	}

	tx, err := ix.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin ingest tx: %w", err)
	}
	defer tx.Rollback()

	insChunk, err := tx.Prepare(`INSERT OR REPLACE INTO chunks
		(chunk_id, path, path_norm, start_byte, end_byte, start_line, end_line, content_sha256, size_bytes, content_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insChunk.Close()

	insFTS, err := tx.Prepare(`INSERT INTO chunks_fts (chunk_id, content, path_tokens) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insFTS.Close()

	pathNorm := strings.ToLower(path)
	pathTokens := strings.NewReplacer("/", " ", ".", " ", "_", " ", "-", " ").Replace(path)

	for _, c := range chunks {
		compressed := zstdEnc.EncodeAll([]byte(c.Content), nil)
		if _, err := insChunk.Exec(c.ChunkID, path, pathNorm,
			c.StartByte, c.EndByte, c.StartLine, c.EndLine,
			c.ContentSHA256, c.SizeBytes, compressed); err != nil {
			return 0, fmt.Errorf("insert chunk %s: %w", c.ChunkID, err)
		}
		if _, err := insFTS.Exec(c.ChunkID, c.Content, pathTokens); err != nil {
			return 0, fmt.Errorf("insert fts row %s: %w", c.ChunkID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// ChunkContent returns the decompressed content of a chunk.
func (ix *Index) ChunkContent(chunkID string) (string, error) {
	var blob []byte
	err := ix.db.QueryRow(`SELECT content_z FROM chunks WHERE chunk_id = ?`, chunkID).Scan(&blob)
	if err != nil {
		return "", fmt.Errorf("chunk %s: %w", chunkID, err)
	}
	data, err := zstdDec.DecodeAll(blob, nil)
	if err != nil {
		return "", fmt.Errorf("decompress chunk %s: %w", chunkID, err)
	}
	return string(data), nil
}

func (ix *Index) setMeta(key, value string) error {
	_, err := ix.db.Exec(`INSERT OR REPLACE INTO index_meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Store manages retrieval indexes under a data directory, one SQLite file
// per index.
type Store struct {
	dataDir string
	mu      sync.RWMutex
	indexes map[string]*Index
}

// NewStore creates an index store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		indexes: make(map[string]*Index),
	}
}

func (s *Store) indexPath(id string) string {
	return filepath.Join(s.dataDir, "indexes", id+".db")
}

// Create opens a fresh, empty index with a generated ID.
func (s *Store) Create(basePath string) (*Index, error) {
	id := uuid.NewString()
	dir := filepath.Join(s.dataDir, "indexes")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite3", s.indexPath(id)+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	if _, err := db.Exec(indexSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply index schema: %w", err)
	}

	ix := &Index{db: db, id: id}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, kv := range [][2]string{
		{"schema_version", indexSchemaVersion},
		{"created_at", now},
		{"base_path", basePath},
	} {
		if err := ix.setMeta(kv[0], kv[1]); err != nil {
			db.Close()
			return nil, fmt.Errorf("write index meta: %w", err)
		}
	}

	s.mu.Lock()
	s.indexes[id] = ix
	s.mu.Unlock()
	return ix, nil
}

// Get returns an open index by ID, opening the database file on first use.
func (s *Store) Get(id string) (*Index, error) {
	s.mu.RLock()
	if ix, ok := s.indexes[id]; ok {
		s.mu.RUnlock()
		return ix, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock
	if ix, ok := s.indexes[id]; ok {
		return ix, nil
	}

	path := s.indexPath(id)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("index %s not found: %w", id, err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open index db: %w", err)
	}
	ix := &Index{db: db, id: id}
	s.indexes[id] = ix
	return ix, nil
}

// Remove closes and deletes an index.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	ix, ok := s.indexes[id]
	delete(s.indexes, id)
	s.mu.Unlock()

	if ok {
		ix.Close()
	}
	return os.Remove(s.indexPath(id))
}

// Close closes all open indexes.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ix := range s.indexes {
		ix.Close()
	}
	s.indexes = make(map[string]*Index)
}
