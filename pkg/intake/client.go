// Package intake sends packaged submissions to the remote intake endpoint.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/goliatone/go-docsubmit/pkg/contract"
	"github.com/goliatone/go-docsubmit/pkg/packager"
)

const (
	// DefaultEndpoint is the intake path used when no contract or override is
	// configured.
	DefaultEndpoint = "/api/v1/submit-form"
	// DefaultTimeout bounds a single submission round trip.
	DefaultTimeout = 30 * time.Second
	// SubmissionIDHeader carries the client-generated id used to correlate logs.
	SubmissionIDHeader = "X-Submission-ID"

	maxErrorBody = 64 << 10
	tracerName   = "github.com/goliatone/go-docsubmit/pkg/intake"
)

// Client accepts a packaged payload and reports the intake outcome.
type Client interface {
	Submit(ctx context.Context, payload packager.Payload) (Response, error)
}

// Response describes a successful submission.
type Response struct {
	StatusCode   int
	SubmissionID string
	Body         []byte
	Data         map[string]any
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient swaps the underlying *http.Client. The client is copied, so
// WithTimeout and WithCookieJar never change the caller's value, and its own
// Timeout is kept unless WithTimeout is given.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClient) {
		if client != nil {
			c.http = client
		}
	}
}

// WithEndpoint overrides the intake path, including the one a contract
// declares.
func WithEndpoint(path string) Option {
	return func(c *HTTPClient) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			c.endpoint = trimmed
			c.endpointSet = true
		}
	}
}

// WithTimeout bounds each request.
func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.timeout = timeout
			c.timeoutSet = true
		}
	}
}

// WithBearerToken attaches an Authorization header to every request.
func WithBearerToken(token string) Option {
	return func(c *HTTPClient) {
		c.token = strings.TrimSpace(token)
	}
}

// WithCookieJar sends session cookies along with each submission.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *HTTPClient) {
		c.jar = jar
	}
}

// WithContract resolves the endpoint from the contract's operation and checks
// payloads against it before sending.
func WithContract(ct *contract.Contract, operationID string) Option {
	return func(c *HTTPClient) {
		c.contract = ct
		if strings.TrimSpace(operationID) != "" {
			c.operationID = operationID
		}
	}
}

// WithEncoder overrides the multipart encoder.
func WithEncoder(enc *packager.Encoder) Option {
	return func(c *HTTPClient) {
		if enc != nil {
			c.encoder = enc
		}
	}
}

// WithLogger routes request logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer overrides the tracer used for submission spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *HTTPClient) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithIDGenerator overrides how submission ids are produced.
func WithIDGenerator(fn func() string) Option {
	return func(c *HTTPClient) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// HTTPClient posts payloads as multipart/form-data.
type HTTPClient struct {
	baseURL     *url.URL
	endpoint    string
	endpointSet bool
	method      string
	timeout     time.Duration
	timeoutSet  bool
	token       string
	jar         http.CookieJar
	http        *http.Client
	contract    *contract.Contract
	operationID string
	encoder     *packager.Encoder
	logger      *slog.Logger
	tracer      trace.Tracer
	newID       func() string
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient builds a client rooted at baseURL.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("intake: parse base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("intake: base url %q must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL:     parsed,
		endpoint:    DefaultEndpoint,
		method:      http.MethodPost,
		timeout:     DefaultTimeout,
		operationID: contract.DefaultOperationID,
		encoder:     packager.NewEncoder(),
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:      otel.Tracer(tracerName),
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}

	if c.contract != nil {
		method, path, err := c.contract.Endpoint(c.operationID)
		if err != nil {
			return nil, fmt.Errorf("intake: %w", err)
		}
		c.method = method
		if !c.endpointSet {
			c.endpoint = path
		}
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	} else {
		cp := *c.http
		c.http = &cp
		if c.timeoutSet {
			c.http.Timeout = c.timeout
		}
	}
	if c.jar != nil {
		c.http.Jar = c.jar
	}
	return c, nil
}

// URL returns the absolute intake URL.
func (c *HTTPClient) URL() string {
	ref := &url.URL{Path: c.endpoint}
	return c.baseURL.ResolveReference(ref).String()
}

// Submit encodes payload and sends it. Failures are returned as
// *TransportError except for contract violations, which are detected before
// anything is sent. Submit does not retry.
func (c *HTTPClient) Submit(ctx context.Context, payload packager.Payload) (Response, error) {
	id := c.newID()
	ctx, span := c.tracer.Start(ctx, "intake.Submit", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("docsubmit.submission_id", id),
		attribute.Int("docsubmit.files", len(payload.FileParts())),
	)

	if c.contract != nil {
		if err := c.contract.Check(c.operationID, payload); err != nil {
			span.SetStatus(codes.Error, "contract violation")
			c.logger.WarnContext(ctx, "submission blocked by contract", "submission_id", id, "error", err)
			return Response{}, fmt.Errorf("%w: %v", ErrContractViolation, err)
		}
	}

	encoded, err := c.encoder.Encode(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode")
		return Response{}, fmt.Errorf("intake: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, c.URL(), encoded.Reader())
	if err != nil {
		return Response{}, fmt.Errorf("intake: build request: %w", err)
	}
	req.Header.Set("Content-Type", encoded.ContentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(SubmissionIDHeader, id)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	started := time.Now()
	c.logger.InfoContext(ctx, "submitting form", "submission_id", id, "url", req.URL.String(), "bytes", len(encoded.Body))

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		c.logger.ErrorContext(ctx, "submission transport failed", "submission_id", id, "error", err)
		return Response{}, &TransportError{Kind: KindNetwork, SubmissionID: id, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		span.SetStatus(codes.Error, resp.Status)
		c.logger.WarnContext(ctx, "submission rejected", "submission_id", id, "status", resp.StatusCode, "duration", time.Since(started))
		return Response{}, &TransportError{Kind: KindRejected, StatusCode: resp.StatusCode, SubmissionID: id, Body: body}
	}
	if readErr != nil {
		span.RecordError(readErr)
		return Response{}, &TransportError{Kind: KindNetwork, StatusCode: resp.StatusCode, SubmissionID: id, Err: readErr}
	}

	out := Response{StatusCode: resp.StatusCode, SubmissionID: id, Body: body}
	if isJSON(resp.Header.Get("Content-Type")) && len(body) > 0 {
		var data map[string]any
		if err := json.Unmarshal(body, &data); err == nil {
			out.Data = data
		}
	}

	c.logger.InfoContext(ctx, "submission accepted", "submission_id", id, "status", resp.StatusCode, "duration", time.Since(started))
	return out, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
