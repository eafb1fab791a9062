// Package httpclient performs JSON requests against the portal backend and
// the geography service, and turns every response into a value or an error
// in one place.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrisure/portal/internal/api/metrics"
	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// SessionExpiredFunc is called after a 401 cleared the token store.
type SessionExpiredFunc func(ctx context.Context, ev ports.SessionExpired)

// Options configures an Executor.
type Options struct {
	// Name labels log lines and metrics ("backend", "geo").
	Name    string
	BaseURL string
	// HTTPClient defaults to a client without a timeout.
	HTTPClient *http.Client
	// Tokens supplies the bearer token. A nil store means requests are never
	// authorised and a 401 never expires a session.
	Tokens ports.TokenStore
	// Headers are sent with every request.
	Headers http.Header
	// StrictJSON rejects every response that is not application/json, even
	// a 2xx. The legacy backend contract relied on this.
	StrictJSON       bool
	OnSessionExpired SessionExpiredFunc
	Logger           zerolog.Logger
}

// Executor implements ports.Executor.
type Executor struct {
	name      string
	baseURL   string
	client    *http.Client
	tokens    ports.TokenStore
	headers   http.Header
	strict    bool
	onExpired SessionExpiredFunc
	log       zerolog.Logger
	now       func() time.Time
}

var _ ports.Executor = (*Executor)(nil)

func New(opts Options) *Executor {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	name := opts.Name
	if name == "" {
		name = "backend"
	}
	return &Executor{
		name:      name,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		client:    client,
		tokens:    opts.Tokens,
		headers:   opts.Headers.Clone(),
		strict:    opts.StrictJSON,
		onExpired: opts.OnSessionExpired,
		log:       opts.Logger.With().Str("component", "executor").Str("client", name).Logger(),
		now:       time.Now,
	}
}

// Execute sends req and returns the raw JSON body of a successful response.
// It never retries.
func (e *Executor) Execute(ctx context.Context, req ports.Request) (json.RawMessage, error) {
	start := e.now()

	var token string
	if e.tokens != nil && !req.Anonymous {
		token, _ = e.tokens.Token(ctx)
	}

	httpReq, err := e.build(ctx, req, token)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.observe(req.Method, "error", start)
		e.log.Debug().Err(err).Str("method", req.Method).Str("path", req.Path).Msg("request failed")
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	e.observe(req.Method, strconv.Itoa(resp.StatusCode), start)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", req.Method, req.Path, err)
	}

	e.log.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", e.now().Sub(start)).
		Msg("request completed")

	if resp.StatusCode == http.StatusUnauthorized && e.tokens != nil && !req.Anonymous {
		e.expireSession(ctx, req, token)
		return nil, domain.ErrAuthRequired
	}

	return e.interpret(resp, body)
}

func (e *Executor) build(ctx context.Context, req ports.Request, token string) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := encodeBody(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, req.Path, err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, e.url(req), body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, req.Path, err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	for k, vs := range e.headers {
		httpReq.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range req.Headers {
		httpReq.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	return httpReq, nil
}

func (e *Executor) url(req ports.Request) string {
	u := e.baseURL
	if p := strings.TrimLeft(req.Path, "/"); p != "" {
		u += "/" + p
	}
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// interpret maps a non-401 response to its result. Error message priority
// for JSON failures is message > error > detail > generic.
func (e *Executor) interpret(resp *http.Response, body []byte) (json.RawMessage, error) {
	ok := resp.StatusCode >= 200 && resp.StatusCode < 300

	if !isJSON(resp.Header.Get("Content-Type")) {
		if ok && !e.strict {
			return nil, nil
		}
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = domain.GenericHTTPMessage(resp.StatusCode)
		}
		return nil, &domain.APIError{Status: resp.StatusCode, Message: msg}
	}

	if !ok {
		return nil, &domain.APIError{Status: resp.StatusCode, Message: errorMessage(body, resp.StatusCode)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: response is not valid JSON", errMalformed)
	}
	return json.RawMessage(trimmed), nil
}

// expireSession clears the store only when it still holds the rejected
// token. A 401 that arrives after a new sign-in leaves the new session alone.
func (e *Executor) expireSession(ctx context.Context, req ports.Request, token string) {
	if cur, ok := e.tokens.Token(ctx); ok && cur != token {
		e.log.Info().Str("method", req.Method).Str("path", req.Path).Msg("401 for a replaced session, keeping current one")
		return
	}
	if err := e.tokens.Clear(ctx); err != nil {
		e.log.Warn().Err(err).Msg("clear session after 401 failed")
	}
	metrics.SessionExpiredTotal.Inc()
	e.log.Info().Str("method", req.Method).Str("path", req.Path).Msg("session expired")

	if e.onExpired != nil {
		e.onExpired(ctx, ports.SessionExpired{Method: req.Method, Path: req.Path, Token: token, At: e.now()})
	}
}

func (e *Executor) observe(method, status string, start time.Time) {
	metrics.BackendRequestsTotal.WithLabelValues(e.name, method, status).Inc()
	metrics.BackendRequestDuration.WithLabelValues(e.name).Observe(e.now().Sub(start).Seconds())
}

var errMalformed = errors.New("malformed response")

func encodeBody(v any) ([]byte, error) {
	switch b := v.(type) {
	case json.RawMessage:
		return b, nil
	case []byte:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

func errorMessage(body []byte, status int) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return domain.GenericHTTPMessage(status)
	}
	for _, key := range []string{"message", "error", "detail"} {
		v, ok := fields[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s != "" {
				return s
			}
			continue
		}
		if raw, err := json.Marshal(v); err == nil {
			return string(raw)
		}
	}
	return domain.GenericHTTPMessage(status)
}
