package hubspot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/johnwards/hubsync/internal/domain"
)

const schemasPath = "/crm/v3/schemas"

// ListSchemas fetches all custom object schemas in the portal.
func (c *Client) ListSchemas(ctx context.Context) ([]domain.ObjectSchema, error) {
	var envelope listEnvelope[domain.ObjectSchema]
	if err := c.Do(ctx, http.MethodGet, schemasPath, nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list schemas: %w", err)
	}
	return envelope.Results, nil
}

// CreateSchema creates a custom object schema.
func (c *Client) CreateSchema(ctx context.Context, in domain.ObjectSchema) (*domain.ObjectSchema, error) {
	var created domain.ObjectSchema
	if err := c.Do(ctx, http.MethodPost, schemasPath, nil, in, &created); err != nil {
		return nil, fmt.Errorf("create schema %s: %w", in.Name, err)
	}
	return &created, nil
}
