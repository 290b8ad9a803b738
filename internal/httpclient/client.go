package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/unkn0wn-root/rhc/internal/logger"
	"github.com/unkn0wn-root/rhc/internal/restfile"
	"github.com/unkn0wn-root/rhc/internal/telemetry"
)

type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	Timeout        time.Duration
}

type Client struct {
	http      *http.Client
	telemetry telemetry.Instrumenter
	log       logger.Logger
}

func NewClient(opts Options) *Client {
	return &Client{
		http:      buildHTTPClient(opts),
		telemetry: telemetry.Noop(),
		log:       logger.NewNop(),
	}
}

// SetTelemetry configures the instrumenter used to emit OpenTelemetry spans.
// Passing nil restores the no-op implementation.
func (c *Client) SetTelemetry(instr telemetry.Instrumenter) {
	if instr == nil {
		instr = telemetry.Noop()
	}
	c.telemetry = instr
}

func (c *Client) SetLogger(l logger.Logger) {
	if l == nil {
		l = logger.NewNop()
	}
	c.log = l
}

// RequestInfo labels the request in spans and logs.
type RequestInfo struct {
	Name        string
	Environment string
	SessionID   string
}

type Response struct {
	Status         string
	StatusCode     int
	Proto          string
	Headers        http.Header
	Body           []byte
	Duration       time.Duration
	EffectiveURL   string
	RequestMethod  string
	RequestHeaders http.Header
}

// Execute sends a fully rendered definition. The span is always ended, even
// when the request fails before a response arrives.
func (c *Client) Execute(
	ctx context.Context,
	def *restfile.Definition,
	info RequestInfo,
) (resp *Response, err error) {
	httpReq, err := BuildRequest(ctx, def)
	if err != nil {
		return nil, err
	}

	spanCtx, span := c.telemetry.Start(httpReq.Context(), telemetry.RequestStart{
		Name:        info.Name,
		Description: def.Metadata.Description,
		Environment: info.Environment,
		SessionID:   info.SessionID,
		HTTPRequest: httpReq,
	})
	httpReq = httpReq.WithContext(spanCtx)

	start := time.Now()
	defer func() {
		result := telemetry.RequestResult{Err: err, Duration: time.Since(start)}
		if resp != nil {
			result.StatusCode = resp.StatusCode
			result.BodyBytes = len(resp.Body)
		}
		span.End(result)
	}()

	c.log.Debug("sending request",
		"name", info.Name,
		"method", httpReq.Method,
		"url", httpReq.URL.Redacted(),
	)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.log.Warn("request failed", "name", info.Name, "err", err)
		return nil, fmt.Errorf("perform request: %w", err)
	}
	defer func() {
		if closeErr := httpResp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close response body: %w", closeErr)
		}
	}()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	duration := time.Since(start)

	c.log.Info("request complete",
		"name", info.Name,
		"status", httpResp.StatusCode,
		"duration", duration,
		"bytes", len(body),
	)

	resp = &Response{
		Status:         httpResp.Status,
		StatusCode:     httpResp.StatusCode,
		Proto:          httpResp.Proto,
		Headers:        httpResp.Header.Clone(),
		Body:           body,
		Duration:       duration,
		EffectiveURL:   effectiveURL(httpReq, httpResp),
		RequestMethod:  httpReq.Method,
		RequestHeaders: httpReq.Header.Clone(),
	}
	return resp, nil
}

func effectiveURL(req *http.Request, resp *http.Response) string {
	if resp != nil && resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	if req != nil && req.URL != nil {
		return req.URL.String()
	}
	return ""
}
