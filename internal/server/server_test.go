package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/matzehuels/geoprofile/pkg/errors"
	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/observability"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

const inputABC = `{"line": [[0, 0], [10, 0]], "columns": [
	{"name": "C", "x": 10, "y": 0},
	{"name": "A", "x": 0, "y": 0},
	{"name": "B", "x": 5, "y": 5}]}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	cfg.Logger = log.New(io.Discard)
	cfg.Defaults = pipeline.Options{Reproject: true}
	srv := httptest.NewServer(New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string, header ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("request id %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}
}

func TestSection(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := post(t, srv.URL+"/v1/sections", `{"input": `+inputABC+`}`)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d: %s", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if resp.Header.Get("X-Cache") != "miss" || resp.Header.Get("X-Run-ID") == "" {
		t.Errorf("headers = %v", resp.Header)
	}

	var doc gpio.SectionDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(doc.Columns))
	for i, c := range doc.Columns {
		names[i] = c.Name
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, names); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if !doc.Reproject || doc.Columns[1].Position != [2]float64{5, 0} {
		t.Errorf("server defaults not applied: %+v", doc.Columns[1])
	}
}

func TestSectionOptionsOverrideDefaults(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp := post(t, srv.URL+"/v1/sections", `{"input": `+inputABC+`, "options": {"policy": "input", "reproject": false}}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var doc gpio.SectionDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatal(err)
	}
	if doc.Policy != "input" || doc.Reproject {
		t.Errorf("options not applied: policy %q reproject %v", doc.Policy, doc.Reproject)
	}
	if doc.Columns[0].Name != "C" {
		t.Errorf("first column = %q, want input order", doc.Columns[0].Name)
	}
}

func TestRequestIDPassthrough(t *testing.T) {
	srv := newTestServer(t, Config{})
	id := uuid.NewString()
	resp := post(t, srv.URL+"/v1/sections", `{"input": `+inputABC+`}`, RequestIDHeader, id)
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("request id = %q, want %q", got, id)
	}

	resp = post(t, srv.URL+"/v1/sections", `{"input": `+inputABC+`}`, RequestIDHeader, "not a uuid")
	if got := resp.Header.Get(RequestIDHeader); got == "not a uuid" {
		t.Error("malformed request id was echoed")
	}
}

func TestErrors(t *testing.T) {
	srv := newTestServer(t, Config{MaxBodyBytes: 4096})

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed json", "/v1/sections", `{"input": `, 400, errors.ErrCodeInvalidFormat},
		{"unknown field", "/v1/sections", `{"input": ` + inputABC + `, "extra": 1}`, 400, errors.ErrCodeInvalidFormat},
		{"missing input", "/v1/sections", `{}`, 400, errors.ErrCodeInvalidInput},
		{"unknown policy", "/v1/sections", `{"input": ` + inputABC + `, "options": {"policy": "zigzag"}}`, 400, errors.ErrCodeInvalidPolicy},
		{"empty columns", "/v1/sections", `{"input": {"line": [[0,0],[1,0]], "columns": []}}`, 422, errors.ErrCodeEmptyColumnSet},
		{"degenerate line", "/v1/sections", `{"input": {"line": [[1,1],[1,1]], "columns": [{"name": "A", "x": 0, "y": 0}]}}`, 422, errors.ErrCodeDegenerateLine},
		{"bad map format", "/v1/sections/map?format=pdf", `{"input": ` + inputABC + `}`, 400, errors.ErrCodeInvalidFormat},
		{"too large", "/v1/sections", `{"input": {"name": "` + strings.Repeat("x", 8192) + `"}}`, 413, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body errorResponse
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", body.Error.Code, tt.code, body.Error.Message)
			}
			if body.RequestID == "" {
				t.Error("error response lacks request id")
			}
		})
	}
}

func TestMapAndProfile(t *testing.T) {
	srv := newTestServer(t, Config{})
	tests := []struct {
		path        string
		contentType string
		prefix      string
	}{
		{"/v1/sections/map?format=dot", "text/vnd.graphviz", "digraph"},
		{"/v1/sections/map?format=geojson", "application/geo+json", "{"},
		{"/v1/sections/profile", "image/svg+xml", "<svg"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, `{"input": `+inputABC+`}`)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", ct, tt.contentType)
			}
			body, _ := io.ReadAll(resp.Body)
			if !bytes.HasPrefix(body, []byte(tt.prefix)) {
				t.Errorf("body starts %.20q, want %q", body, tt.prefix)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeTourInfeasible, "x"), 500},
		{errors.New(errors.ErrCodeInvalidColumn, "x"), 400},
		{errors.New(errors.ErrCodeDegenerateLine, "x"), 422},
		{errors.New(errors.ErrCodeFileNotFound, "x"), 500},
		{&http.MaxBytesError{Limit: 1}, 413},
		{io.ErrUnexpectedEOF, 500},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type recordingHTTPHooks struct {
	mu        sync.Mutex
	requests  []string
	responses []string
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.responses = append(h.responses, method+" "+route+" "+http.StatusText(status))
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if diff := cmp.Diff([]string{"GET /healthz"}, hooks.requests); diff != "" {
		t.Errorf("requests (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"GET /healthz OK"}, hooks.responses); diff != "" {
		t.Errorf("responses (-want +got):\n%s", diff)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(pipeline.NewRunner(nil, nil, log.New(io.Discard)), Config{Logger: log.New(io.Discard)})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
