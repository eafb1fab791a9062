package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// AdminClient covers the /admin endpoints used by the admin dashboard.
type AdminClient struct {
	r resource
}

func NewAdminClient(ex ports.Executor) *AdminClient {
	return &AdminClient{r: newResource(ex, "/admin")}
}

func (c *AdminClient) Statistics(ctx context.Context) (domain.AdminStatistics, error) {
	return fetch[domain.AdminStatistics](ctx, c.r, c.r.path("statistics"), nil)
}

// ListUsers pages through accounts. An empty role lists every role.
func (c *AdminClient) ListUsers(ctx context.Context, role domain.Role, page, limit int) ([]domain.AdminUser, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", string(role))
	}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return fetchList[domain.AdminUser](ctx, c.r, c.r.path("users"), q)
}

func (c *AdminClient) GetUser(ctx context.Context, id string) (domain.AdminUser, error) {
	return fetch[domain.AdminUser](ctx, c.r, c.r.path("users", id), nil)
}

func (c *AdminClient) CreateUser(ctx context.Context, in AccountInput) (domain.AdminUser, error) {
	return send[domain.AdminUser](ctx, c.r, http.MethodPost, c.r.path("users"), in)
}

func (c *AdminClient) UpdateUser(ctx context.Context, id string, in AccountInput) (domain.AdminUser, error) {
	return send[domain.AdminUser](ctx, c.r, http.MethodPut, c.r.path("users", id), in)
}

func (c *AdminClient) DeleteUser(ctx context.Context, id string) error {
	return remove(ctx, c.r, c.r.path("users", id))
}

func (c *AdminClient) ListAssessments(ctx context.Context, f ListFilter) ([]domain.Assessment, error) {
	return fetchList[domain.Assessment](ctx, c.r, c.r.path("assessments"), f.values())
}

func (c *AdminClient) AssignAssessment(ctx context.Context, assessmentID, assessorID string) (domain.Assessment, error) {
	body := map[string]string{"assessorId": assessorID}
	return send[domain.Assessment](ctx, c.r, http.MethodPost, c.r.path("assessments", assessmentID, "assign"), body)
}

// SystemLogs returns log entries as the backend formats them.
func (c *AdminClient) SystemLogs(ctx context.Context, f ListFilter) (json.RawMessage, error) {
	return c.r.ex.Execute(ctx, c.r.request(http.MethodGet, c.r.path("logs"), f.values(), nil))
}
