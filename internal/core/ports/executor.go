package ports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// Request describes one call to a remote JSON service. Path is relative to
// the executor's base URL.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    any
	Headers http.Header
	// Anonymous requests never carry the bearer token, and a 401 on them is
	// reported as a plain API error instead of expiring the session.
	Anonymous bool
}

// Executor performs a single request and normalises its outcome. A nil
// RawMessage with a nil error means the call succeeded without a JSON body.
type Executor interface {
	Execute(ctx context.Context, req Request) (json.RawMessage, error)
}

// SessionExpired is emitted after a 401 forced the local session to be cleared.
type SessionExpired struct {
	Method string
	Path   string
	// Token is the bearer token the backend rejected, empty when the request
	// carried none. Subscribers compare it with their own session.
	Token string
	At    time.Time
}
