// Package infobiptest provides a recording fake of the communications
// platform API.
package infobiptest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"alert-notifier/internal/models"
)

// Server answers scenario listing/creation and the three send endpoints.
type Server struct {
	mu       sync.Mutex
	ts       *httptest.Server
	URL      string
	requests []Request
	created  int
	closed   bool

	scenarios  []models.Scenario
	listStatus int
	createFail bool
	rejectTo   map[string]bool
}

// Request is what the server saw for one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	UserAgent     string
	Body          []byte
}

// Decode unmarshals the recorded body into v.
func (r Request) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// NewServer starts a fake seeded with the given remote scenarios. URL has a
// trailing slash.
func NewServer(scenarios ...models.Scenario) *Server {
	s := &Server{scenarios: scenarios, rejectTo: make(map[string]bool)}
	s.ts = httptest.NewServer(http.HandlerFunc(s.handle))
	s.URL = s.ts.URL + "/"
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		UserAgent:     r.Header.Get("User-Agent"),
		Body:          body,
	})

	switch {
	case r.URL.Path == "/omni/1/scenarios" && r.Method == http.MethodGet:
		if s.listStatus != 0 {
			writeJSON(w, s.listStatus, map[string]string{"error": "unavailable"})
			return
		}
		list := models.ScenarioList{Scenarios: s.scenarios}
		if list.Scenarios == nil {
			list.Scenarios = []models.Scenario{}
		}
		writeJSON(w, http.StatusOK, list)
	case r.URL.Path == "/omni/1/scenarios" && r.Method == http.MethodPost:
		if s.createFail {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad scenario"})
			return
		}
		var sc models.Scenario
		if err := json.Unmarshal(body, &sc); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.created++
		sc.Key = fmt.Sprintf("created-%d", s.created)
		s.scenarios = append(s.scenarios, sc)
		writeJSON(w, http.StatusOK, sc)
	case r.URL.Path == "/sms/2/text/advanced",
		r.URL.Path == "/whatsapp/1/message/text",
		r.URL.Path == "/omni/1/advanced":
		if to := recipient(r.URL.Path, body); s.rejectTo[to] {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rejected " + to})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "PENDING"})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func recipient(path string, body []byte) string {
	var v struct {
		To       string `json:"to"`
		Messages []struct {
			Destinations []struct {
				To string `json:"to"`
			} `json:"destinations"`
		} `json:"messages"`
		Destinations []struct {
			To struct {
				PhoneNumber string `json:"phoneNumber"`
			} `json:"to"`
		} `json:"destinations"`
	}
	if json.Unmarshal(body, &v) != nil {
		return ""
	}
	switch path {
	case "/sms/2/text/advanced":
		if len(v.Messages) > 0 && len(v.Messages[0].Destinations) > 0 {
			return v.Messages[0].Destinations[0].To
		}
	case "/omni/1/advanced":
		if len(v.Destinations) > 0 {
			return v.Destinations[0].To.PhoneNumber
		}
	default:
		return v.To
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// FailListing makes scenario listing answer status.
func (s *Server) FailListing(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listStatus = status
}

// FailCreation makes scenario creation answer 400.
func (s *Server) FailCreation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createFail = true
}

// Reject makes sends to the given recipient answer 400.
func (s *Server) Reject(to string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejectTo[to] = true
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// RequestsTo returns the recorded requests matching method and path.
func (s *Server) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
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
