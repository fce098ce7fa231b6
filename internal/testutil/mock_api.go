// Package testutil provides testing utilities for the polls client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines a canned response for a mock endpoint.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// PageRequest records the paging parameters of one GET /polls call.
type PageRequest struct {
	Skip  int
	Limit int
}

// MockAPI is a configurable in-memory polls API for testing.
//
// GET /polls serves slices of the configured polls; POST /register accepts
// each username once and rejects duplicates with 400, like the real service.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc

	polls       []map[string]any
	maxPageSize int
	failAtSkip  map[int]MockResponse
	users       map[string]int

	// Tracking
	RequestCount      int
	PageRequests      []PageRequest
	LastRequestHeader http.Header
}

// NewMockAPI creates a new mock polls API server.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers:   make(map[string]http.HandlerFunc),
		failAtSkip: make(map[int]MockResponse),
		users:      make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestHeader = r.Header.Clone()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		switch r.URL.Path {
		case "/polls":
			mock.handlePolls(w, r)
		case "/register":
			mock.handleRegister(w, r)
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Not Found"})
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.PageRequests = nil
	m.LastRequestHeader = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeMockResponse(w, resp)
	})
}

// SetPolls replaces the backing collection.
func (m *MockAPI) SetPolls(polls []map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.polls = polls
}

// SetPollCount fills the backing collection with n generated polls.
func (m *MockAPI) SetPollCount(n int) {
	m.SetPolls(GeneratePolls(n))
}

// SetMaxPageSize caps the number of records returned per page,
// regardless of the requested limit. Zero disables the cap.
func (m *MockAPI) SetMaxPageSize(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxPageSize = n
}

// FailPollsAt makes GET /polls with the given skip return resp.
func (m *MockAPI) FailPollsAt(skip int, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failAtSkip[skip] = resp
}

// AddUser pre-registers a username.
func (m *MockAPI) AddUser(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[username] = len(m.users) + 1
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPageRequests returns the paging parameters of every GET /polls call, in order.
func (m *MockAPI) GetPageRequests() []PageRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PageRequest, len(m.PageRequests))
	copy(out, m.PageRequests)
	return out
}

// GetLastRequestHeader returns the headers of the most recent request.
func (m *MockAPI) GetLastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.LastRequestHeader
}

func (m *MockAPI) handlePolls(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
		return
	}

	skip, errSkip := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, errLimit := strconv.Atoi(r.URL.Query().Get("limit"))
	if errSkip != nil || errLimit != nil || skip < 0 || limit < 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": "invalid skip or limit"})
		return
	}

	m.mu.Lock()
	m.PageRequests = append(m.PageRequests, PageRequest{Skip: skip, Limit: limit})
	failure, fail := m.failAtSkip[skip]
	if m.maxPageSize > 0 && limit > m.maxPageSize {
		limit = m.maxPageSize
	}
	page := make([]map[string]any, 0, limit)
	for i := skip; i < len(m.polls) && i < skip+limit; i++ {
		page = append(page, m.polls[i])
	}
	m.mu.Unlock()

	if fail {
		writeMockResponse(w, failure)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

func (m *MockAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"detail": "Method Not Allowed"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]any{{"loc": []string{"body"}, "msg": "field required"}},
		})
		return
	}

	m.mu.Lock()
	if _, taken := m.users[req.Username]; taken {
		m.mu.Unlock()
		writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "Username already registered"})
		return
	}
	id := len(m.users) + 1
	m.users[req.Username] = id
	m.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "username": req.Username})
}

// GeneratePolls builds n polls with sequential ids starting at 1.
func GeneratePolls(n int) []map[string]any {
	polls := make([]map[string]any, n)
	for i := range polls {
		polls[i] = map[string]any{
			"id":       float64(i + 1),
			"question": fmt.Sprintf("Question %d?", i+1),
		}
	}
	return polls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMockResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		_, _ = w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a response with a JSON content type.
func NewJSONResponse(status int, body string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return NewJSONResponse(http.StatusNotFound, `{"detail": "Not Found"}`)
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewJSONResponse(http.StatusInternalServerError, `{"detail": "Internal server error"}`)
}
