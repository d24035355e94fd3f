// Package testutil provides testing utilities for the dashboard service.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockGitHub is a configurable fake GitHub API for handler and client
// tests. It serves paginated listings from in-memory fixtures and lets
// tests override individual paths.
type MockGitHub struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	// Fixtures served by the default handlers.
	User         map[string]any
	Repositories []map[string]any
	Gists        []map[string]any
	Issues       []map[string]any
	Remaining    int

	// Tracking
	RequestCount int
	PathCounts   map[string]int
}

// NewMockGitHub starts a mock GitHub API with a healthy rate limit and
// empty collections.
func NewMockGitHub() *MockGitHub {
	mock := &MockGitHub{
		handlers:   make(map[string]http.HandlerFunc),
		PathCounts: make(map[string]int),
		Remaining:  5000,
		User: map[string]any{
			"id":           int64(1),
			"login":        "octocat",
			"public_repos": 0,
			"public_gists": 0,
		},
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.PathCounts[r.URL.Path]++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}
		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server origin.
func (m *MockGitHub) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockGitHub) Close() {
	m.server.Close()
}

// SetHandler overrides the handler for one path.
func (m *MockGitHub) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// FailPath makes one path return the given status.
func (m *MockGitHub) FailPath(path string, status int) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"message": "mock failure %d"}`, status)
	})
}

// Requests returns how many requests hit the given path.
func (m *MockGitHub) Requests(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PathCounts[path]
}

func (m *MockGitHub) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	m.mu.RLock()
	defer m.mu.RUnlock()

	switch r.URL.Path {
	case "/user":
		writeJSON(w, m.User)
	case "/user/repos":
		writeJSON(w, pageOf(m.Repositories, r))
	case "/gists":
		writeJSON(w, pageOf(m.Gists, r))
	case "/user/issues":
		writeJSON(w, pageOf(m.Issues, r))
	case "/user/followers", "/user/following":
		writeJSON(w, []map[string]any{})
	case "/rate_limit":
		writeJSON(w, map[string]any{
			"resources": map[string]any{
				"core": map[string]any{
					"limit":     5000,
					"remaining": m.Remaining,
					"reset":     0,
				},
			},
		})
	case "/search/issues":
		writeJSON(w, map[string]any{"total_count": len(m.Issues)})
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	}
}

// pageOf slices one page out of a fixture collection using the request's
// page and per_page parameters, mirroring upstream pagination.
func pageOf(items []map[string]any, r *http.Request) []map[string]any {
	page := queryInt(r, "page", 1)
	perPage := queryInt(r, "per_page", 30)

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, body any) {
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(body)
}

// RepoFixture builds a minimal repository record for tests.
func RepoFixture(id int64, name, language string, stars int, updatedAt string) map[string]any {
	return map[string]any{
		"id":               id,
		"name":             name,
		"full_name":        "octocat/" + name,
		"language":         language,
		"stargazers_count": stars,
		"updated_at":       updatedAt,
		"private":          false,
	}
}

// GistFixture builds a minimal gist record for tests.
func GistFixture(id, description, updatedAt string, files ...string) map[string]any {
	fileMap := make(map[string]any, len(files))
	for _, name := range files {
		fileMap[name] = map[string]any{"filename": name, "language": "Go"}
	}
	return map[string]any{
		"id":          id,
		"description": description,
		"public":      true,
		"updated_at":  updatedAt,
		"files":       fileMap,
	}
}

// IssueFixture builds a minimal issues-API pull request record for tests.
func IssueFixture(id int64, number int, title, updatedAt, detailURL string) map[string]any {
	return map[string]any{
		"id":             id,
		"number":         number,
		"title":          title,
		"state":          "open",
		"updated_at":     updatedAt,
		"repository_url": "https://api.github.com/repos/octocat/hello-world",
		"user":           map[string]any{"id": int64(1), "login": "octocat"},
		"pull_request":   map[string]any{"url": detailURL},
	}
}
