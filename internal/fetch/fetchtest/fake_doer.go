package fetchtest

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/swagindex/mcp-server/internal/fetch"
)

type route struct {
	status int
	body   string
	header http.Header
}

// FakeDoer implements fetch.Doer so callers can run tests without making
// outbound HTTP requests. Responses are keyed by full URL; unknown URLs get
// a 404.
type FakeDoer struct {
	t        testing.TB
	mu       sync.Mutex
	routes   map[string]route
	requests []*http.Request
}

func NewFakeDoer(t testing.TB) *FakeDoer {
	return &FakeDoer{t: t, routes: map[string]route{}}
}

// Handle registers the response returned for url.
func (f *FakeDoer) Handle(url string, status int, body string) *FakeDoer {
	return f.HandleWithHeader(url, status, body, nil)
}

// HandleWithHeader registers a response carrying header.
func (f *FakeDoer) HandleWithHeader(url string, status int, body string, header http.Header) *FakeDoer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if header == nil {
		header = make(http.Header)
	}
	f.routes[url] = route{status: status, body: body, header: header}
	return f
}

// Do records the request and returns the registered response.
func (f *FakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	r, ok := f.routes[req.URL.String()]
	if !ok {
		f.t.Logf("fake http client has no route for %s %s", req.Method, req.URL.String())
		r = route{status: http.StatusNotFound, body: "not found", header: make(http.Header)}
	}
	return NewStringResponse(r.status, r.body, r.header), nil
}

// Requests returns the HTTP requests captured so far.
func (f *FakeDoer) Requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.requests...)
}

// NewStringResponse builds a minimal http.Response with the provided status
// code and body string.
func NewStringResponse(status int, body string, header http.Header) *http.Response {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     header.Clone(),
	}
}

var _ fetch.Doer = (*FakeDoer)(nil)
