// Package backend binds the shared request executor to the portal backend's
// resource families. Clients hold no state beyond their base path.
package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/agrisure/portal/internal/core/ports"
	"github.com/agrisure/portal/internal/infrastructure/httpclient"
)

// ListFilter is the common query of list endpoints. Zero fields are omitted.
type ListFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
	// Extra carries resource-specific parameters verbatim.
	Extra url.Values
}

func (f ListFilter) values() url.Values {
	q := url.Values{}
	for k, vs := range f.Extra {
		q[k] = append([]string(nil), vs...)
	}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

// resource is a base path over an executor.
type resource struct {
	ex   ports.Executor
	base string
}

func newResource(ex ports.Executor, base string) resource {
	return resource{ex: ex, base: "/" + strings.Trim(base, "/")}
}

// path joins escaped segments onto the base path.
func (r resource) path(segments ...string) string {
	var b strings.Builder
	b.WriteString(r.base)
	for _, s := range segments {
		if !strings.HasSuffix(b.String(), "/") {
			b.WriteByte('/')
		}
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (r resource) request(method, path string, q url.Values, body any) ports.Request {
	if len(q) == 0 {
		q = nil
	}
	return ports.Request{Method: method, Path: path, Query: q, Body: body}
}

func fetch[T any](ctx context.Context, r resource, path string, q url.Values) (T, error) {
	return httpclient.Do[T](ctx, r.ex, r.request(http.MethodGet, path, q, nil))
}

func fetchList[T any](ctx context.Context, r resource, path string, q url.Values) ([]T, error) {
	return httpclient.List[T](ctx, r.ex, r.request(http.MethodGet, path, q, nil))
}

func send[T any](ctx context.Context, r resource, method, path string, body any) (T, error) {
	return httpclient.Do[T](ctx, r.ex, r.request(method, path, nil, body))
}

func remove(ctx context.Context, r resource, path string) error {
	_, err := r.ex.Execute(ctx, r.request(http.MethodDelete, path, nil, nil))
	return err
}
