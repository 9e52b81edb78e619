// Package apiclient is the authenticated client for the StudyMate backend.
//
// Every operation goes through Do, which attaches a freshly requested bearer
// credential, encodes the body and normalizes failures into APIError or
// NetworkError. Calls are single attempts: no retries, no client-side timeout.
package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"studymate/internal/config"
	"studymate/internal/identity"
)

// CredentialSource is the part of the identity session the client depends on.
type CredentialSource interface {
	CurrentPrincipal() *identity.Principal
	RequestCredential(ctx context.Context) (string, error)
}

// Routes are the backend paths. "{id}" is replaced by the escaped document id.
type Routes struct {
	Upload      string
	List        string
	Content     string
	Summarize   string
	Explain     string
	Questions   string
	Ask         string
	Speech      string
	Discussions string
}

// DefaultRoutes returns the route layout of the StudyMate backend.
func DefaultRoutes() Routes {
	return Routes{
		Upload:      "/documents/upload",
		List:        "/documents/list",
		Content:     "/documents/{id}/content",
		Summarize:   "/ai/summarize",
		Explain:     "/ai/explain",
		Questions:   "/ai/questions",
		Ask:         "/ai/ask-document",
		Speech:      "/ai/text-to-speech",
		Discussions: "/discussions/{id}",
	}
}

// RoutesFromConfig maps backend configuration onto Routes.
func RoutesFromConfig(c config.BackendConfig) Routes {
	return Routes{
		Upload:      c.UploadPath,
		List:        c.ListPath,
		Content:     c.ContentPath,
		Summarize:   c.SummarizePath,
		Explain:     c.ExplainPath,
		Questions:   c.QuestionsPath,
		Ask:         c.AskPath,
		Speech:      c.SpeechPath,
		Discussions: c.DiscussionsPath,
	}
}

// ResponseKind selects how a successful response body is handled.
type ResponseKind int

const (
	// ResponseJSON decodes the body into Request.Out.
	ResponseJSON ResponseKind = iota
	// ResponseBinary returns the raw bytes in Result.Data.
	ResponseBinary
)

// Request describes one backend call.
type Request struct {
	// Operation labels metrics and spans; defaults to "METHOD path".
	Operation string
	Method    string
	Path      string
	// Query is appended to Path as the URL query string.
	Query     url.Values
	Body      Body
	Header    http.Header
	Expect    ResponseKind
	Out       any
}

// Result is a successful backend response.
type Result struct {
	StatusCode  int
	ContentType string
	Data        []byte
}

// Client is safe for concurrent use. It holds no per-call state.
type Client struct {
	baseURL string
	routes  Routes
	creds   CredentialSource
	http    *http.Client
	metrics *Metrics
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client. Its Timeout should stay zero; callers bound calls with ctx.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRoutes overrides the backend route layout.
func WithRoutes(r Routes) Option {
	return func(c *Client) { c.routes = r }
}

// WithMetrics records every call in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a Client for the backend at baseURL using creds for authentication.
func New(baseURL string, creds CredentialSource, opts ...Option) (*Client, error) {
	if creds == nil {
		return nil, ErrNoCredentialSource
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("backend url must be absolute http(s): %q", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		routes:  DefaultRoutes(),
		creds:   creds,
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		tracer:  otel.Tracer("studymate/internal/apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do issues req once. A signed-in principal is required; without one no request is sent.
func (c *Client) Do(ctx context.Context, req Request) (res *Result, err error) {
	op := req.Operation
	if op == "" {
		op = req.Method + " " + req.Path
	}
	start := time.Now()
	status := 0

	ctx, span := c.tracer.Start(ctx, "backend "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("studymate.operation", op)),
	)
	defer func() {
		c.metrics.observe(op, start, status, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if c.creds.CurrentPrincipal() == nil {
		return nil, identity.ErrUnauthenticated
	}
	token, err := c.creds.RequestCredential(ctx)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, req, token)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: httpReq.URL.String(), Err: err}
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: httpReq.URL.String(), Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errorFromResponse(resp.StatusCode, resp.Status, data)
	}

	res = &Result{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Data:        data,
	}
	if req.Expect == ResponseJSON && req.Out != nil {
		if err := json.Unmarshal(data, req.Out); err != nil {
			return nil, fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	var (
		body        io.Reader
		contentType string
	)
	if !isNilBody(req.Body) {
		var err error
		body, contentType, err = req.Body.encode()
		if err != nil {
			return nil, err
		}
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	switch req.Body.(type) {
	case MultipartBody, *MultipartBody:
		// boundary must match the encoded body
		httpReq.Header.Del("Content-Type")
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		if req.Expect == ResponseBinary {
			httpReq.Header.Set("Accept", "audio/*, application/octet-stream")
		} else {
			httpReq.Header.Set("Accept", "application/json")
		}
	}
	httpReq.Header.Set("Authorization", "Bearer "+token)
	return httpReq, nil
}

// documentPath expands "{id}" in tmpl with the path-escaped id.
func documentPath(tmpl, id string) string {
	return strings.ReplaceAll(tmpl, "{id}", url.PathEscape(id))
}
