package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vkozyrev/ragdex/internal/engine"
	"github.com/vkozyrev/ragdex/internal/manifest"
	"github.com/vkozyrev/ragdex/internal/runlog"
)

// fakeEngine returns canned responses and records the calls it sees.
type fakeEngine struct {
	indexErr   error
	queryErr   error
	lastForced bool
}

func (f *fakeEngine) IndexProject(_ context.Context, projectID string, force bool) (*engine.IndexResult, error) {
	if f.indexErr != nil {
		return nil, f.indexErr
	}
	f.lastForced = force
	return &engine.IndexResult{Total: 3, Indexed: 2, Failed: 1, VectorCount: 7}, nil
}

func (f *fakeEngine) Query(_ context.Context, projectID string, req engine.QueryRequest) (*engine.QueryResponse, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &engine.QueryResponse{
		Results: []engine.QueryResult{
			{ID: "p:doc.txt:0", DocumentPath: "doc.txt", Text: "hello", Score: 0.9},
		},
		StrategiesUsed: []string{"direct"},
		FusionMethod:   "rrf",
	}, nil
}

func (f *fakeEngine) Manifest(projectID string) (*manifest.Manifest, error) {
	if projectID == "missing" {
		return nil, engine.ErrProjectNotFound
	}
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	return &manifest.Manifest{
		ID:          projectID,
		VectorCount: 7,
		Documents: map[string]manifest.DocumentRecord{
			"a.txt": {Path: "a.txt", Status: manifest.StatusIndexed},
			"b.txt": {Path: "b.txt", Status: manifest.StatusFailed},
		},
		LastIndexedAt: &now,
		Settings:      manifest.DefaultSettings(),
	}, nil
}

func newTestServer(t *testing.T, eng EngineAPI) *Server {
	t.Helper()
	runs, err := runlog.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { runs.Close() })
	return New(Config{Host: "127.0.0.1", Port: 0}, eng, runs)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, &fakeEngine{})
	w := doRequest(t, s, "GET", "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestIndexEndpoint(t *testing.T) {
	eng := &fakeEngine{}
	s := newTestServer(t, eng)

	w := doRequest(t, s, "POST", "/api/projects/proj/index", `{"force":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !eng.lastForced {
		t.Error("force flag not forwarded")
	}

	var resp indexResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Total != 3 || resp.Indexed != 2 || resp.Failed != 1 || resp.VectorCount != 7 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.RunID == "" {
		t.Error("run not recorded")
	}

	// The run shows up in history.
	w = doRequest(t, s, "GET", "/api/projects/proj/runs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("runs: expected 200, got %d", w.Code)
	}
	var history struct {
		Runs []runlog.Run `json:"runs"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &history); err != nil {
		t.Fatalf("unmarshal runs: %v", err)
	}
	if len(history.Runs) != 1 || history.Runs[0].ID != resp.RunID {
		t.Errorf("unexpected run history: %+v", history.Runs)
	}
}

func TestIndexErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{engine.ErrProjectNotFound, http.StatusNotFound},
		{engine.ErrAlreadyIndexing, http.StatusConflict},
		{fmt.Errorf("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		s := newTestServer(t, &fakeEngine{indexErr: tt.err})
		w := doRequest(t, s, "POST", "/api/projects/proj/index", "")
		if w.Code != tt.code {
			t.Errorf("error %v: got status %d, want %d", tt.err, w.Code, tt.code)
		}
	}
}

func TestQueryEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeEngine{})

	w := doRequest(t, s, "POST", "/api/projects/proj/query", `{"query":"hello","top_k":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp engine.QueryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].DocumentPath != "doc.txt" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
	if resp.FusionMethod != "rrf" {
		t.Errorf("FusionMethod = %q", resp.FusionMethod)
	}

	w = doRequest(t, s, "POST", "/api/projects/proj/query", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty query: got %d, want 400", w.Code)
	}
	w = doRequest(t, s, "POST", "/api/projects/proj/query", `{garbage`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json: got %d, want 400", w.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeEngine{})

	w := doRequest(t, s, "GET", "/api/projects/proj/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp statusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Documents != 2 || resp.Indexed != 1 || resp.Failed != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if resp.VectorCount != 7 {
		t.Errorf("VectorCount = %d, want 7", resp.VectorCount)
	}

	w = doRequest(t, s, "GET", "/api/projects/missing/status", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing project: got %d, want 404", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	runs, _ := runlog.OpenMemory()
	defer runs.Close()
	s := New(Config{Port: 0, AllowAll: true}, &fakeEngine{}, runs)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}
