package backend

import (
	"context"
	"net/http"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

type PoliciesClient struct {
	r resource
}

func NewPoliciesClient(ex ports.Executor) *PoliciesClient {
	return &PoliciesClient{r: newResource(ex, "/policies")}
}

func (c *PoliciesClient) List(ctx context.Context, f ListFilter) ([]domain.Policy, error) {
	return fetchList[domain.Policy](ctx, c.r, c.r.path(), f.values())
}

func (c *PoliciesClient) Get(ctx context.Context, id string) (domain.Policy, error) {
	return fetch[domain.Policy](ctx, c.r, c.r.path(id), nil)
}

func (c *PoliciesClient) Create(ctx context.Context, p domain.Policy) (domain.Policy, error) {
	return send[domain.Policy](ctx, c.r, http.MethodPost, c.r.path(), p)
}

func (c *PoliciesClient) Update(ctx context.Context, id string, p domain.Policy) (domain.Policy, error) {
	return send[domain.Policy](ctx, c.r, http.MethodPut, c.r.path(id), p)
}

func (c *PoliciesClient) Delete(ctx context.Context, id string) error {
	return remove(ctx, c.r, c.r.path(id))
}

func (c *PoliciesClient) Approve(ctx context.Context, id string) (domain.Policy, error) {
	return send[domain.Policy](ctx, c.r, http.MethodPost, c.r.path(id, "approve"), nil)
}

func (c *PoliciesClient) Reject(ctx context.Context, id, reason string) (domain.Policy, error) {
	return send[domain.Policy](ctx, c.r, http.MethodPost, c.r.path(id, "reject"), map[string]string{"reason": reason})
}

func (c *PoliciesClient) ListByFarmer(ctx context.Context, farmerID string) ([]domain.Policy, error) {
	return fetchList[domain.Policy](ctx, c.r, c.r.path("farmer", farmerID), nil)
}
