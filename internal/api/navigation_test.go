package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/heimgewebe/lenskit/internal/fsview"
	"github.com/heimgewebe/lenskit/internal/retrieval"
	"github.com/heimgewebe/lenskit/internal/security"
	"github.com/heimgewebe/lenskit/pkg/types"
)

type testEnv struct {
	server *Server
	root   string
}

func newTestEnv(t *testing.T, host string, ttl time.Duration) *testEnv {
	t.Helper()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0755); err != nil {
		t.Fatal(err)
	}
	for _, f := range []string{"a.js", "b.js", "sub/c.js"} {
		if err := os.WriteFile(filepath.Join(root, f), []byte("content of "+f+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	sec := security.NewConfig([]string{root}, host, "test-secret", false)
	issuer := security.NewIssuer(sec, ttl)
	indexes := retrieval.NewStore(t.TempDir())
	t.Cleanup(indexes.Close)

	return &testEnv{
		server: NewServer(issuer, sec, fsview.NewOSLister(), indexes, ""),
		root:   root,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body, out interface{}) int {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("decode %s %s response: %v (body: %s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code
}

func (e *testEnv) rootToken(t *testing.T) string {
	t.Helper()
	var roots types.RootsResponse
	if code := e.do(t, http.MethodGet, "/fs/roots", nil, &roots); code != http.StatusOK {
		t.Fatalf("roots returned %d", code)
	}
	if len(roots.Roots) != 1 {
		t.Fatalf("expected 1 root, got %+v", roots.Roots)
	}
	return roots.Roots[0].Token
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, "127.0.0.1", time.Minute)
	if code := env.do(t, http.MethodGet, "/health", nil, nil); code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
}

func TestRootCapabilityLoopback(t *testing.T) {
	env := newTestEnv(t, "127.0.0.1", time.Minute)
	var capability types.RootCapability
	if code := env.do(t, http.MethodGet, "/fs/capability", nil, &capability); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !capability.Allowed {
		t.Errorf("expected root capability allowed on loopback with secret, got %+v", capability)
	}
}

func TestRootCapabilityNonLoopback(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	var capability types.RootCapability
	env.do(t, http.MethodGet, "/fs/capability", nil, &capability)
	if capability.Allowed {
		t.Error("expected root capability refused on non-loopback bind")
	}
	if capability.Reason == "" {
		t.Error("expected a reason for refusal")
	}
}

func TestNavigationFlow(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	var listing types.ListResponse
	if code := env.do(t, http.MethodPost, "/fs/list", types.ListRequest{Token: token}, &listing); code != http.StatusOK {
		t.Fatalf("list returned %d", code)
	}
	if listing.Path != env.root {
		t.Errorf("expected path %s, got %s", env.root, listing.Path)
	}
	if listing.SelfToken == "" {
		t.Error("expected a self token")
	}
	if len(listing.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %+v", listing.Entries)
	}

	// Descend into sub using only the issued child token.
	var subToken string
	for _, e := range listing.Entries {
		if e.Name == "sub" {
			if e.Type != "dir" {
				t.Errorf("expected sub to be a dir, got %s", e.Type)
			}
			subToken = e.Token
		}
	}
	if subToken == "" {
		t.Fatal("no token issued for sub")
	}

	var subListing types.ListResponse
	if code := env.do(t, http.MethodPost, "/fs/list", types.ListRequest{Token: subToken}, &subListing); code != http.StatusOK {
		t.Fatalf("sub list returned %d", code)
	}
	if len(subListing.Entries) != 1 || subListing.Entries[0].Name != "c.js" {
		t.Errorf("unexpected sub entries: %+v", subListing.Entries)
	}
}

func TestMaterializeEndpoint(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	var resp types.MaterializeResponse
	code := env.do(t, http.MethodPost, "/fs/materialize", types.MaterializeRequest{
		Token:     token,
		Selection: []string{filepath.Join(env.root, "sub") + "/", filepath.Join(env.root, "a.js")},
	}, &resp)
	if code != http.StatusOK {
		t.Fatalf("materialize returned %d", code)
	}

	want := []string{filepath.Join(env.root, "a.js"), filepath.Join(env.root, "sub", "c.js")}
	if len(resp.Files) != len(want) {
		t.Fatalf("expected %v, got %v", want, resp.Files)
	}
	for i := range want {
		if resp.Files[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], resp.Files[i])
		}
	}
}

func TestMaterializeEmptySelection(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	var resp types.MaterializeResponse
	code := env.do(t, http.MethodPost, "/fs/materialize", types.MaterializeRequest{Token: token}, &resp)
	if code != http.StatusOK {
		t.Fatalf("materialize returned %d", code)
	}
	if len(resp.Files) != 0 {
		t.Errorf("expected no files, got %v", resp.Files)
	}
}

func TestMaterializeRejectsOutOfScopeSelection(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	code := env.do(t, http.MethodPost, "/fs/materialize", types.MaterializeRequest{
		Token:     token,
		Selection: []string{"/etc/passwd"},
	}, nil)
	if code != http.StatusForbidden {
		t.Errorf("expected 403 for out-of-scope selection, got %d", code)
	}
}

func TestExpiredTokenIs401(t *testing.T) {
	// Tokens born expired: TTL is negative.
	env := newTestEnv(t, "0.0.0.0", -time.Second)
	token := env.rootToken(t)

	code := env.do(t, http.MethodPost, "/fs/list", types.ListRequest{Token: token}, nil)
	if code != http.StatusUnauthorized {
		t.Errorf("expected 401 for expired token, got %d", code)
	}
}

func TestTamperedTokenIs403(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	last := token[len(token)-1]
	flipped := byte('A')
	if last == 'A' {
		flipped = 'B'
	}
	tampered := token[:len(token)-1] + string(flipped)

	code := env.do(t, http.MethodPost, "/fs/list", types.ListRequest{Token: tampered}, nil)
	if code != http.StatusForbidden {
		t.Errorf("expected 403 for tampered token, got %d", code)
	}
}

func TestNoRawPathRoutes(t *testing.T) {
	// The protocol cut: a path query parameter on the list endpoint must
	// not exist. The only addressing mechanism is the token body field.
	env := newTestEnv(t, "0.0.0.0", time.Minute)

	req := httptest.NewRequest(http.MethodPost, "/fs/list?path=/etc", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("list without a token must not succeed, path params are not accepted")
	}
}

func TestIndexBuildAndQuery(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	token := env.rootToken(t)

	var build types.IndexBuildResponse
	code := env.do(t, http.MethodPost, "/index/build", types.IndexBuildRequest{
		Token:     token,
		Selection: []string{env.root},
	}, &build)
	if code != http.StatusCreated {
		t.Fatalf("index build returned %d", code)
	}
	if build.Files != 3 {
		t.Errorf("expected 3 files indexed, got %d", build.Files)
	}
	if build.IndexID == "" {
		t.Fatal("expected an index ID")
	}

	var query types.QueryResponse
	code = env.do(t, http.MethodPost, "/index/query", types.QueryRequest{
		IndexID: build.IndexID,
		Query:   "content",
	}, &query)
	if code != http.StatusOK {
		t.Fatalf("query returned %d", code)
	}
	if query.Count != 3 {
		t.Errorf("expected 3 hits, got %d: %+v", query.Count, query.Hits)
	}
}

func TestQueryUnknownIndex(t *testing.T) {
	env := newTestEnv(t, "0.0.0.0", time.Minute)
	code := env.do(t, http.MethodPost, "/index/query", types.QueryRequest{IndexID: "nope"}, nil)
	if code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown index, got %d", code)
	}
}
