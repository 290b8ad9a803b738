package respfmt

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"

	"github.com/unkn0wn-root/rhc/internal/httpclient"
)

func jsonResponse() *httpclient.Response {
	return &httpclient.Response{
		Status:        "200 OK",
		StatusCode:    200,
		Proto:         "HTTP/1.1",
		Headers:       http.Header{"Content-Type": {"application/json"}, "X-Id": {"7"}},
		Body:          []byte(`{"id":1,"tags":["a"]}`),
		Duration:      12 * time.Millisecond,
		EffectiveURL:  "http://api.test/items/1",
		RequestMethod: "GET",
	}
}

func TestWritePrettyPrintsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, jsonResponse(), Options{Profile: termenv.Ascii}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "200 OK\n{\n  \"id\": 1,\n  \"tags\": [\"a\"]\n}\n"
	if buf.String() != want {
		t.Fatalf("output = %q, want %q", buf.String(), want)
	}
}

func TestWriteOnlyBody(t *testing.T) {
	resp := &httpclient.Response{
		Status:  "404 Not Found",
		Headers: http.Header{"Content-Type": {"text/plain"}},
		Body:    []byte("missing"),
	}
	var buf bytes.Buffer
	if err := Write(&buf, resp, Options{OnlyBody: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "missing\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestWriteVerboseIncludesHeaders(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, jsonResponse(), Options{Verbose: true, Profile: termenv.Ascii}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"GET http://api.test/items/1\n",
		"HTTP/1.1 200 OK (12ms)\n",
		"Content-Type: application/json\nX-Id: 7\n\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestWriteHighlightsWhenColored(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, jsonResponse(), Options{OnlyBody: true, Profile: termenv.ANSI256}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got %q", buf.String())
	}
}

func TestWriteLeavesInvalidJSONAlone(t *testing.T) {
	resp := &httpclient.Response{
		Status:  "200 OK",
		Headers: http.Header{"Content-Type": {"application/json"}},
		Body:    []byte("{oops"),
	}
	var buf bytes.Buffer
	if err := Write(&buf, resp, Options{OnlyBody: true, Profile: termenv.TrueColor}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.String() != "{oops\n" {
		t.Fatalf("output = %q", buf.String())
	}
}
