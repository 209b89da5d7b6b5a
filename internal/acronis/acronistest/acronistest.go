// Package acronistest provides a recording fake of the backup platform API.
package acronistest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"alert-notifier/internal/models"
)

// Server is an httptest server answering the token, resource status,
// resource and client endpoints.
type Server struct {
	mu       sync.Mutex
	ts       *httptest.Server
	URL      string
	requests []Request
	closed   bool

	// AccessToken and ExpiresOn are returned by the token endpoint.
	AccessToken string
	ExpiresOn   int64
	// TokenStatus overrides the token endpoint status when non-zero.
	TokenStatus int
	// StatusesCode overrides the resource status listing status when non-zero.
	StatusesCode int
	Statuses     []models.ResourceStatus
	// Names maps resource ids to names; unknown ids answer 404.
	Names    map[string]string
	TenantID string
}

// Request is what the server saw for one call.
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
	Form          map[string]string
}

// NewServer starts a fake whose base URL (with trailing slash) is URL.
func NewServer() *Server {
	s := &Server{Names: make(map[string]string)}
	s.ts = httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = s.ts.URL + "/"
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	req := Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		RawQuery:      r.URL.RawQuery,
		Authorization: r.Header.Get("Authorization"),
	}
	if r.Method == http.MethodPost {
		_ = r.ParseForm()
		req.Form = make(map[string]string)
		for k := range r.PostForm {
			req.Form[k] = r.PostForm.Get(k)
		}
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/api/2/idp/token":
		s.mu.Lock()
		status, token, exp := s.TokenStatus, s.AccessToken, s.ExpiresOn
		s.mu.Unlock()
		if status != 0 && status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "invalid_client"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"access_token": token,
			"token_type":   "bearer",
			"expires_on":   exp,
		})
	case r.URL.Path == "/api/alert_manager/v1/resource_status":
		s.mu.Lock()
		status, items := s.StatusesCode, s.Statuses
		s.mu.Unlock()
		if status != 0 && status != http.StatusOK {
			writeJSON(w, status, map[string]string{"error": "unavailable"})
			return
		}
		if items == nil {
			items = []models.ResourceStatus{}
		}
		writeJSON(w, http.StatusOK, models.ResourceStatusList{Items: items})
	case strings.HasPrefix(r.URL.Path, "/api/resource_management/v4/resources/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/resource_management/v4/resources/")
		s.mu.Lock()
		name, ok := s.Names[id]
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, models.Resource{ID: id, Name: name})
	case strings.HasPrefix(r.URL.Path, "/api/2/clients/"):
		s.mu.Lock()
		tenant := s.TenantID
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"tenant_id": tenant})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests whose path equals path.
func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// SetToken changes what the token endpoint hands out next.
func (s *Server) SetToken(token string, expiresOn int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.AccessToken = token
	s.ExpiresOn = expiresOn
}

// Close shuts the server down. It is safe to call more than once.
func (s *Server) Close() {
	s.mu.Lock()
	closed := s.closed
	s.closed = true
	s.mu.Unlock()
	// ts.Close waits for in-flight handlers, which take mu.
	if !closed {
		s.ts.Close()
	}
}
