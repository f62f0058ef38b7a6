package hubspot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/johnwards/hubsync/internal/domain"
)

// ListAssociations fetches the ids of objects of type spec.To associated
// with the given object of type spec.From.
func (c *Client) ListAssociations(ctx context.Context, spec domain.AssociationSpec, fromID string) ([]string, error) {
	path := fmt.Sprintf("/crm/v3/objects/%s/%s/associations/%s", spec.From, fromID, spec.To)

	var envelope listEnvelope[domain.AssociationPreviewEntry]
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list %s→%s associations for %s: %w", spec.From, spec.To, fromID, err)
	}
	ids := make([]string, 0, len(envelope.Results))
	for _, entry := range envelope.Results {
		ids = append(ids, entry.ID)
	}
	return ids, nil
}

// BatchCreateAssociations creates associations between pairs of objects in
// one call. An already-existing association comes back as a 409 and is
// treated as success by the client.
func (c *Client) BatchCreateAssociations(ctx context.Context, spec domain.AssociationSpec, inputs []domain.AssociationInput) (*domain.AssociationBatchResult, error) {
	if len(inputs) == 0 {
		return &domain.AssociationBatchResult{Status: "COMPLETE"}, nil
	}
	path := fmt.Sprintf("/crm/v3/associations/%s/%s/batch/create", spec.From, spec.To)
	req := struct {
		Inputs []domain.AssociationInput `json:"inputs"`
	}{Inputs: inputs}

	var result domain.AssociationBatchResult
	if err := c.Do(ctx, http.MethodPost, path, nil, req, &result); err != nil {
		return nil, fmt.Errorf("batch create %s→%s associations: %w", spec.From, spec.To, err)
	}
	return &result, nil
}
