package retrieval

import (
	"strings"
	"testing"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir())
	t.Cleanup(s.Close)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := testStore(t)

	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if ix.ID() == "" {
		t.Error("expected non-empty index ID")
	}

	again, err := s.Get(ix.ID())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if again != ix {
		t.Error("Get should return the cached handle")
	}

	if _, err := s.Get("no-such-index"); err == nil {
		t.Error("expected error for unknown index ID")
	}
}

func TestAddFileAndQuery(t *testing.T) {
	s := testStore(t)
	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	n, err := ix.AddFile("/srv/hub/repo/auth.go", []byte("func VerifyToken() {}\nconstant time comparison\n"))
	if err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 chunk, got %d", n)
	}
	if _, err := ix.AddFile("/srv/hub/repo/readme.md", []byte("nothing relevant here\n")); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}

	result, err := ix.Query("comparison", 10, Filters{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Mode != "fts" {
		t.Errorf("expected fts mode, got %s", result.Mode)
	}
	if result.Count != 1 {
		t.Fatalf("expected 1 hit, got %d: %+v", result.Count, result.Hits)
	}
	if result.Hits[0].Path != "/srv/hub/repo/auth.go" {
		t.Errorf("unexpected hit path %s", result.Hits[0].Path)
	}
}

func TestQueryMetadataMode(t *testing.T) {
	s := testStore(t)
	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	for _, f := range []string{"/b/two.go", "/a/one.go"} {
		if _, err := ix.AddFile(f, []byte("package main\n")); err != nil {
			t.Fatalf("AddFile(%s) error: %v", f, err)
		}
	}

	result, err := ix.Query("", 10, Filters{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Mode != "metadata" {
		t.Errorf("expected metadata mode, got %s", result.Mode)
	}
	if result.Count != 2 {
		t.Fatalf("expected 2 hits, got %d", result.Count)
	}
	// Deterministic path ordering
	if result.Hits[0].Path != "/a/one.go" || result.Hits[1].Path != "/b/two.go" {
		t.Errorf("unexpected ordering: %+v", result.Hits)
	}
}

func TestQueryFilters(t *testing.T) {
	s := testStore(t)
	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	files := map[string]string{
		"/repo/src/main.go":  "shared token text\n",
		"/repo/docs/notes.md": "shared token text\n",
	}
	for path, content := range files {
		if _, err := ix.AddFile(path, []byte(content)); err != nil {
			t.Fatalf("AddFile(%s) error: %v", path, err)
		}
	}

	byExt, err := ix.Query("shared", 10, Filters{Ext: "go"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if byExt.Count != 1 || byExt.Hits[0].Path != "/repo/src/main.go" {
		t.Errorf("ext filter failed: %+v", byExt.Hits)
	}

	byPath, err := ix.Query("shared", 10, Filters{PathContains: "docs"})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if byPath.Count != 1 || byPath.Hits[0].Path != "/repo/docs/notes.md" {
		t.Errorf("path filter failed: %+v", byPath.Hits)
	}
}

func TestChunkContentRoundTrip(t *testing.T) {
	s := testStore(t)
	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	content := strings.Repeat("compressible line of text\n", 100)
	if _, err := ix.AddFile("/repo/big.txt", []byte(content)); err != nil {
		t.Fatalf("AddFile() error: %v", err)
	}

	result, err := ix.Query("compressible", 1, Filters{})
	if err != nil {
		t.Fatalf("Query() error: %v", err)
	}
	if result.Count == 0 {
		t.Fatal("expected a hit")
	}

	got, err := ix.ChunkContent(result.Hits[0].ChunkID)
	if err != nil {
		t.Fatalf("ChunkContent() error: %v", err)
	}
	if !strings.HasPrefix(got, "compressible line of text\n") {
		t.Errorf("decompressed content mismatch: %q...", got[:40])
	}
}

func TestRemove(t *testing.T) {
	s := testStore(t)
	ix, err := s.Create("/srv/hub/repo")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	id := ix.ID()

	if err := s.Remove(id); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := s.Get(id); err == nil {
		t.Error("expected error after remove")
	}
}
