package hubspot

import (
	"context"
	"fmt"
	"net/http"

	"github.com/johnwards/hubsync/internal/domain"
)

func propertiesPath(t domain.ObjectType) string {
	return "/crm/v3/properties/" + t.String()
}

// ListProperties fetches all property definitions for an object type.
func (c *Client) ListProperties(ctx context.Context, t domain.ObjectType) ([]domain.Property, error) {
	var envelope listEnvelope[domain.Property]
	if err := c.Do(ctx, http.MethodGet, propertiesPath(t), nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list %s properties: %w", t, err)
	}
	return envelope.Results, nil
}

// CreateProperty creates a property definition.
func (c *Client) CreateProperty(ctx context.Context, t domain.ObjectType, p domain.Property) (*domain.Property, error) {
	var created domain.Property
	if err := c.Do(ctx, http.MethodPost, propertiesPath(t), nil, p, &created); err != nil {
		return nil, fmt.Errorf("create %s property %s: %w", t, p.Name, err)
	}
	return &created, nil
}

// DeleteProperty archives a property definition.
func (c *Client) DeleteProperty(ctx context.Context, t domain.ObjectType, name string) error {
	if err := c.Do(ctx, http.MethodDelete, propertiesPath(t)+"/"+name, nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s property %s: %w", t, name, err)
	}
	return nil
}

// ListPropertyGroups fetches all property groups for an object type.
func (c *Client) ListPropertyGroups(ctx context.Context, t domain.ObjectType) ([]domain.PropertyGroup, error) {
	var envelope listEnvelope[domain.PropertyGroup]
	if err := c.Do(ctx, http.MethodGet, propertiesPath(t)+"/groups", nil, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list %s property groups: %w", t, err)
	}
	return envelope.Results, nil
}

// CreatePropertyGroup creates a property group.
func (c *Client) CreatePropertyGroup(ctx context.Context, t domain.ObjectType, g domain.PropertyGroup) (*domain.PropertyGroup, error) {
	var created domain.PropertyGroup
	if err := c.Do(ctx, http.MethodPost, propertiesPath(t)+"/groups", nil, g, &created); err != nil {
		return nil, fmt.Errorf("create %s property group %s: %w", t, g.Name, err)
	}
	return &created, nil
}
