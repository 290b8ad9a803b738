package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/unkn0wn-root/rhc/internal/restfile"
)

// ErrInvalidJSONBody is returned when a json body is not valid JSON after
// substitution. Values are inserted verbatim, so a quote inside a bound value
// is the usual cause.
var ErrInvalidJSONBody = errors.New("body is not valid JSON")

const (
	contentTypeJSON = "application/json"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeForm = "application/x-www-form-urlencoded"
)

// BuildRequest turns a rendered definition into an *http.Request. Query
// params are appended to any already in the URL and headers are added in
// definition order.
func BuildRequest(ctx context.Context, def *restfile.Definition) (*http.Request, error) {
	if def == nil {
		return nil, errors.New("definition is nil")
	}
	method := def.Request.Method
	if method == "" {
		method = restfile.MethodGet
	}
	rawURL := strings.TrimSpace(def.Request.URL)
	if rawURL == "" {
		return nil, errors.New("request url is empty")
	}
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("url %q must be absolute", rawURL)
	}
	if len(def.Query) > 0 {
		extra := encodePairs(def.Query)
		if target.RawQuery == "" {
			target.RawQuery = extra
		} else {
			target.RawQuery += "&" + extra
		}
	}

	body, contentType, err := prepareBody(def.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, string(method), target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for _, h := range def.Headers {
		req.Header.Add(h.Name, h.Value)
	}
	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

func prepareBody(body *restfile.Body) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch body.Type {
	case restfile.BodyJSON:
		if !gjson.Valid(body.Content) {
			return nil, "", fmt.Errorf("%w: %s", ErrInvalidJSONBody, excerpt(body.Content))
		}
		return strings.NewReader(body.Content), contentTypeJSON, nil
	case restfile.BodyText, "":
		return strings.NewReader(body.Content), contentTypeText, nil
	case restfile.BodyURLEncoded:
		return strings.NewReader(encodePairs(body.Form)), contentTypeForm, nil
	default:
		return nil, "", fmt.Errorf("unsupported body type %q", body.Type)
	}
}

// encodePairs keeps pair order, which url.Values.Encode would sort away.
func encodePairs(pairs []restfile.KeyValue) string {
	parts := make([]string, 0, len(pairs))
	for _, kv := range pairs {
		parts = append(parts, url.QueryEscape(kv.Name)+"="+url.QueryEscape(kv.Value))
	}
	return strings.Join(parts, "&")
}

func excerpt(s string) string {
	const limit = 60
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
