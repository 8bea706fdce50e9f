package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// TestServer is a wrapper around httptest.Server for testing
type TestServer struct {
	*httptest.Server
	mux  *http.ServeMux
	hits atomic.Int64
}

// NewTestServer creates a new test HTTP server
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	ts := &TestServer{mux: http.NewServeMux()}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		ts.mux.ServeHTTP(w, r)
	}))

	t.Cleanup(func() {
		ts.Server.Close()
	})

	return ts
}

// Handle registers a handler for a specific path
func (ts *TestServer) Handle(t *testing.T, path string, handler http.HandlerFunc) {
	t.Helper()
	ts.mux.HandleFunc(path, handler)
}

// HandleArchive serves data at path, optionally with a Content-Disposition
func (ts *TestServer) HandleArchive(t *testing.T, path string, data []byte, disposition string) {
	t.Helper()
	ts.mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		if disposition != "" {
			w.Header().Set("Content-Disposition", disposition)
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(data)
	})
}

// Hits returns the number of requests served
func (ts *TestServer) Hits() int64 {
	return ts.hits.Load()
}
