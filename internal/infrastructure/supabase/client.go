package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/compliance/domain"
	appLogger "github.com/fastygo/compliance/pkg/logger"
)

const (
	restPath = "/rest/v1/"
	authPath = "/auth/v1/"

	PreferRepresentation = "return=representation"
	PreferMinimal        = "return=minimal"
)

// Config holds the project endpoint and API keys.
type Config struct {
	URL        string
	AnonKey    string
	ServiceKey string
	Timeout    time.Duration
}

// Client talks to a Supabase project over its REST (PostgREST) and auth (GoTrue) APIs.
type Client struct {
	http       *fasthttp.Client
	baseURL    string
	anonKey    string
	serviceKey string
	timeout    time.Duration
	logger     *zap.Logger
}

// APIError is the error body returned by PostgREST and GoTrue.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
	// GoTrue uses different field names.
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.ErrorDescription
	}
	if msg == "" {
		msg = e.Msg
	}
	if e.Code != "" {
		return fmt.Sprintf("supabase: status %d (%s): %s", e.Status, e.Code, msg)
	}
	return fmt.Sprintf("supabase: status %d: %s", e.Status, msg)
}

// Request describes one REST call against a table.
type Request struct {
	Method string
	Table  domain.Entity
	Query  url.Values
	Body   interface{}
	// Token is the caller's access token; the service key is used when empty.
	Token  string
	Prefer string
}

// New validates the configuration and builds a client.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, errors.New("supabase: url and anon key are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "compliance-backend",
			MaxIdleConnDuration: 90 * time.Second,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
		},
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		anonKey:    cfg.AnonKey,
		serviceKey: cfg.ServiceKey,
		timeout:    cfg.Timeout,
		logger:     logger,
	}, nil
}

// Rest executes a PostgREST request and decodes the JSON response into out (when non-nil).
func (c *Client) Rest(ctx context.Context, r Request, out interface{}) error {
	target := c.baseURL + restPath + string(r.Table)
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	headers := map[string]string{}
	if r.Prefer != "" {
		headers["Prefer"] = r.Prefer
	}
	return c.do(ctx, r.Method, target, c.bearer(r.Token), headers, r.Body, out)
}

// Ping checks that the REST endpoint answers.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.baseURL+restPath, c.bearer(""), nil, nil, nil)
}

func (c *Client) bearer(token string) string {
	switch {
	case token != "":
		return token
	case c.serviceKey != "":
		return c.serviceKey
	default:
		return c.anonKey
	}
}

func (c *Client) do(ctx context.Context, method, target, token string, headers map[string]string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "request cancelled", err)
	}
	log := appLogger.FromContext(ctx, c.logger)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(target)
	req.Header.SetMethod(method)
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return domain.WrapError(domain.ErrCodeValidation, "encode request body", err)
		}
		req.SetBodyRaw(payload)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		log.Warn("supabase request failed",
			zap.String("method", method),
			zap.String("url", target),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return domain.WrapError(domain.ErrCodeTransport, "remote service unavailable", err)
	}

	status := resp.StatusCode()
	log.Debug("supabase request completed",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status_code", status),
		zap.Duration("duration", time.Since(start)))

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		_ = json.Unmarshal(resp.Body(), apiErr)
		log.Warn("supabase returned non-2xx status",
			zap.Int("status_code", status),
			zap.ByteString("response_body", resp.Body()))
		return classify(apiErr)
	}

	if out == nil || len(resp.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return domain.WrapError(domain.ErrCodeTransport, "decode remote response", err)
	}
	return nil
}

// classify maps a non-2xx response onto the domain error taxonomy.
func classify(apiErr *APIError) error {
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.WrapError(domain.ErrCodeUnauthorized, "not authorized", apiErr)
	case http.StatusNotFound, http.StatusNotAcceptable:
		return domain.WrapError(domain.ErrCodeNotFound, "record not found", apiErr)
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		// PostgREST reports constraint violations (23xxx) and bad enum input (22P02) here.
		if apiErr.Code == "42501" {
			return domain.WrapError(domain.ErrCodeUnauthorized, "not authorized", apiErr)
		}
		return domain.WrapError(domain.ErrCodeValidation, "rejected by remote store", apiErr)
	default:
		return domain.WrapError(domain.ErrCodeTransport, "remote service error", apiErr)
	}
}
