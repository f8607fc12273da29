//go:build integration

package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is a call captured by ApiMock.
type Request struct {
	Headers map[string]string
	Body    map[string]any
}

type stubResponse struct {
	status int
	body   any
}

// ApiMock is an HTTP stub for third party APIs such as the Resend email API.
// Responses are configured per method and path and every request is recorded.
type ApiMock struct {
	mu        sync.Mutex
	server    *httptest.Server
	responses map[string]stubResponse
	defaults  map[string]stubResponse
	requests  map[string][]Request
}

// NewApiServer creates a stub with an optional default response per route.
func NewApiServer() *ApiMock {
	return &ApiMock{
		responses: map[string]stubResponse{},
		defaults:  map[string]stubResponse{},
		requests:  map[string][]Request{},
	}
}

// Start begins serving on a random local port.
func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

// Close stops the server.
func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

// GetUrl returns the base URL of the running stub.
func (a *ApiMock) GetUrl() string {
	return a.server.URL
}

// SetDefaultResponse sets the response used when no override is configured.
func (a *ApiMock) SetDefaultResponse(method, path string, status int, body any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.defaults[method+path] = stubResponse{status: status, body: body}
}

// SetResponse overrides the response for a route until Reset.
func (a *ApiMock) SetResponse(method, path string, status int, body any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses[method+path] = stubResponse{status: status, body: body}
}

// Requests returns the calls received on a route, oldest first.
func (a *ApiMock) Requests(method, path string) []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Request(nil), a.requests[method+path]...)
}

// Reset clears overrides and recorded requests, keeping defaults.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = map[string]stubResponse{}
	a.requests = map[string][]Request{}
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	raw, _ := io.ReadAll(r.Body)
	body := map[string]any{}
	_ = json.Unmarshal(raw, &body)

	headers := map[string]string{}
	for name, values := range r.Header {
		headers[name] = values[0]
	}

	a.mu.Lock()
	a.requests[key] = append(a.requests[key], Request{Headers: headers, Body: body})
	resp, ok := a.responses[key]
	if !ok {
		resp, ok = a.defaults[key]
	}
	a.mu.Unlock()

	if !ok {
		resp = stubResponse{status: http.StatusNotFound, body: map[string]any{"message": "no stub for " + key}}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_ = json.NewEncoder(w).Encode(resp.body)
}
