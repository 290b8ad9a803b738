package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/rhc/internal/restfile"
	"github.com/unkn0wn-root/rhc/internal/telemetry"
)

func TestBuildRequestAppendsQueryAndHeaders(t *testing.T) {
	def := &restfile.Definition{
		Request: restfile.Request{Method: restfile.MethodGet, URL: "https://api.test/items?page=2"},
		Query: []restfile.KeyValue{
			{Name: "q", Value: "a b"},
			{Name: "page", Value: "3"},
		},
		Headers: []restfile.KeyValue{
			{Name: "X-Tag", Value: "one"},
			{Name: "X-Tag", Value: "two"},
		},
	}
	req, err := BuildRequest(context.Background(), def)
	if err != nil {
		t.Fatalf("BuildRequest: %v", err)
	}
	if got, want := req.URL.RawQuery, "page=2&q=a+b&page=3"; got != want {
		t.Fatalf("query = %q, want %q", got, want)
	}
	if diff := cmp.Diff([]string{"one", "two"}, req.Header.Values("X-Tag")); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	if req.Body != nil {
		t.Fatalf("expected no body")
	}
}

func TestBuildRequestBodies(t *testing.T) {
	cases := []struct {
		name        string
		body        *restfile.Body
		headers     []restfile.KeyValue
		wantType    string
		wantContent string
	}{
		{
			name:        "json",
			body:        &restfile.Body{Type: restfile.BodyJSON, Content: `{"id": 1}`},
			wantType:    "application/json",
			wantContent: `{"id": 1}`,
		},
		{
			name:        "text",
			body:        &restfile.Body{Type: restfile.BodyText, Content: "hello"},
			wantType:    "text/plain; charset=utf-8",
			wantContent: "hello",
		},
		{
			name: "urlencoded",
			body: &restfile.Body{Type: restfile.BodyURLEncoded, Form: []restfile.KeyValue{
				{Name: "user", Value: "a&b"},
				{Name: "pass", Value: "x y"},
			}},
			wantType:    "application/x-www-form-urlencoded",
			wantContent: "user=a%26b&pass=x+y",
		},
		{
			name:        "explicit content type wins",
			body:        &restfile.Body{Type: restfile.BodyJSON, Content: `[]`},
			headers:     []restfile.KeyValue{{Name: "Content-Type", Value: "application/vnd.api+json"}},
			wantType:    "application/vnd.api+json",
			wantContent: `[]`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			def := &restfile.Definition{
				Request: restfile.Request{Method: restfile.MethodPost, URL: "http://api.test/"},
				Headers: tc.headers,
				Body:    tc.body,
			}
			req, err := BuildRequest(context.Background(), def)
			if err != nil {
				t.Fatalf("BuildRequest: %v", err)
			}
			if got := req.Header.Get("Content-Type"); got != tc.wantType {
				t.Fatalf("content type = %q, want %q", got, tc.wantType)
			}
			data, err := io.ReadAll(req.Body)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if string(data) != tc.wantContent {
				t.Fatalf("body = %q, want %q", data, tc.wantContent)
			}
		})
	}
}

func TestBuildRequestRejectsInvalidJSON(t *testing.T) {
	def := &restfile.Definition{
		Request: restfile.Request{Method: restfile.MethodPost, URL: "http://api.test/"},
		Body:    &restfile.Body{Type: restfile.BodyJSON, Content: `{"name": "say "hi""}`},
	}
	_, err := BuildRequest(context.Background(), def)
	if !errors.Is(err, ErrInvalidJSONBody) {
		t.Fatalf("expected ErrInvalidJSONBody, got %v", err)
	}
}

func TestBuildRequestRejectsRelativeURL(t *testing.T) {
	def := &restfile.Definition{Request: restfile.Request{URL: "/only/path"}}
	if _, err := BuildRequest(context.Background(), def); err == nil {
		t.Fatalf("expected error for relative url")
	}
}

func TestExecuteRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("unexpected method %s", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Echo", r.Header.Get("X-Token"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(strings.ToUpper(string(body))))
	}))
	defer srv.Close()

	recorder := tracetest.NewSpanRecorder()
	inst, err := telemetry.New(telemetry.Config{}, telemetry.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })

	client := NewClient(Options{Timeout: 5 * time.Second})
	client.SetTelemetry(inst)

	def := &restfile.Definition{
		Request: restfile.Request{Method: restfile.MethodPut, URL: srv.URL + "/items/1"},
		Headers: []restfile.KeyValue{{Name: "X-Token", Value: "abc"}},
		Body:    &restfile.Body{Type: restfile.BodyText, Content: "payload"},
	}
	resp, err := client.Execute(context.Background(), def, RequestInfo{Name: "items/update", SessionID: "s1"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if string(resp.Body) != "PAYLOAD" {
		t.Fatalf("body = %q", resp.Body)
	}
	if resp.Headers.Get("X-Echo") != "abc" {
		t.Fatalf("header not forwarded: %v", resp.Headers)
	}
	if resp.EffectiveURL != srv.URL+"/items/1" {
		t.Fatalf("effective url = %q", resp.EffectiveURL)
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "items/update" {
		t.Fatalf("expected one span named items/update, got %d", len(spans))
	}
}

func TestExecuteReadTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Options{ReadTimeout: 50 * time.Millisecond})
	def := &restfile.Definition{Request: restfile.Request{Method: restfile.MethodGet, URL: srv.URL}}
	if _, err := client.Execute(context.Background(), def, RequestInfo{}); err == nil {
		t.Fatalf("expected timeout error")
	}
}
