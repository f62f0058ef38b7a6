package hubspot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/johnwards/hubsync/internal/domain"
)

func pipelinesPath(t domain.ObjectType) string {
	return "/crm/v3/pipelines/" + t.String()
}

// ListPipelines fetches all pipelines for an object type.
func (c *Client) ListPipelines(ctx context.Context, t domain.ObjectType) ([]domain.Pipeline, error) {
	var envelope listEnvelope[domain.Pipeline]
	if err := c.Do(ctx, http.MethodGet, pipelinesPath(t), nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list %s pipelines: %w", t, err)
	}
	return envelope.Results, nil
}

// CreatePipeline creates a pipeline with its full stage list.
func (c *Client) CreatePipeline(ctx context.Context, t domain.ObjectType, in domain.PipelineInput) (*domain.Pipeline, error) {
	var created domain.Pipeline
	if err := c.Do(ctx, http.MethodPost, pipelinesPath(t), nil, in, &created); err != nil {
		return nil, fmt.Errorf("create %s pipeline %q: %w", t, in.Label, err)
	}
	return &created, nil
}

// UpdatePipeline patches a pipeline's label and display order.
func (c *Client) UpdatePipeline(ctx context.Context, t domain.ObjectType, id string, in domain.PipelineInput) (*domain.Pipeline, error) {
	patch := struct {
		Label        string `json:"label"`
		DisplayOrder int    `json:"displayOrder"`
	}{Label: in.Label, DisplayOrder: in.DisplayOrder}

	var updated domain.Pipeline
	if err := c.Do(ctx, http.MethodPatch, pipelinesPath(t)+"/"+id, nil, patch, &updated); err != nil {
		return nil, fmt.Errorf("update %s pipeline %s: %w", t, id, err)
	}
	return &updated, nil
}

// DeletePipeline deletes a pipeline. Default pipelines cannot be deleted and
// return an error from the API.
func (c *Client) DeletePipeline(ctx context.Context, t domain.ObjectType, id string) error {
	if err := c.Do(ctx, http.MethodDelete, pipelinesPath(t)+"/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s pipeline %s: %w", t, id, err)
	}
	return nil
}
