package backend

import (
	"context"
	"net/http"

	"github.com/agrisure/portal/internal/core/domain"
	"github.com/agrisure/portal/internal/core/ports"
)

// StartMonitoringInput opens a monitoring campaign on an insured farm.
type StartMonitoringInput struct {
	PolicyID   string `json:"policyId" validate:"required"`
	FarmID     string `json:"farmId,omitempty"`
	SurveyorID string `json:"surveyorId,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// MonitoringUpdate is a partial update; empty fields are left unchanged.
type MonitoringUpdate struct {
	CropHealth string `json:"cropHealth,omitempty"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type CropMonitoringClient struct {
	r resource
}

func NewCropMonitoringClient(ex ports.Executor) *CropMonitoringClient {
	return &CropMonitoringClient{r: newResource(ex, "/crop-monitoring")}
}

func (c *CropMonitoringClient) Start(ctx context.Context, in StartMonitoringInput) (domain.MonitoringRecord, error) {
	return send[domain.MonitoringRecord](ctx, c.r, http.MethodPost, c.r.path("start"), in)
}

func (c *CropMonitoringClient) List(ctx context.Context, f ListFilter) ([]domain.MonitoringRecord, error) {
	return fetchList[domain.MonitoringRecord](ctx, c.r, c.r.path(), f.values())
}

func (c *CropMonitoringClient) Get(ctx context.Context, id string) (domain.MonitoringRecord, error) {
	return fetch[domain.MonitoringRecord](ctx, c.r, c.r.path(id), nil)
}

func (c *CropMonitoringClient) Update(ctx context.Context, id string, patch MonitoringUpdate) (domain.MonitoringRecord, error) {
	return send[domain.MonitoringRecord](ctx, c.r, http.MethodPut, c.r.path(id), patch)
}

func (c *CropMonitoringClient) Complete(ctx context.Context, id string) (domain.MonitoringRecord, error) {
	return send[domain.MonitoringRecord](ctx, c.r, http.MethodPost, c.r.path(id, "complete"), nil)
}

func (c *CropMonitoringClient) ListByPolicy(ctx context.Context, policyID string) ([]domain.MonitoringRecord, error) {
	return fetchList[domain.MonitoringRecord](ctx, c.r, c.r.path("policy", policyID), nil)
}
