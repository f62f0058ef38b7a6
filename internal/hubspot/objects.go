package hubspot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
)

// listEnvelope is the standard paginated collection response.
type listEnvelope[T any] struct {
	Results []T             `json:"results"`
	Paging  *pagingEnvelope `json:"paging"`
}

type pagingEnvelope struct {
	Next struct {
		After string `json:"after"`
	} `json:"next"`
}

func objectsPath(t domain.ObjectType) string {
	return "/crm/v3/objects/" + t.String()
}

// ListObjects fetches one page of objects of the given type.
func (c *Client) ListObjects(ctx context.Context, t domain.ObjectType, opts domain.ListOpts) (*domain.ObjectPage, error) {
	params := url.Values{}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.After != "" {
		params.Set("after", opts.After)
	}
	if len(opts.Properties) > 0 {
		params.Set("properties", strings.Join(opts.Properties, ","))
	}
	if len(opts.Associations) > 0 {
		names := make([]string, 0, len(opts.Associations))
		for _, at := range opts.Associations {
			names = append(names, at.String())
		}
		params.Set("associations", strings.Join(names, ","))
	}
	if opts.Sort != "" {
		params.Set("sorts", opts.Sort)
	}

	var envelope listEnvelope[*domain.Object]
	if err := c.Do(ctx, http.MethodGet, objectsPath(t), params, nil, &envelope); err != nil {
		return nil, fmt.Errorf("list %s: %w", t, err)
	}
	page := &domain.ObjectPage{Results: envelope.Results}
	if envelope.Paging != nil && envelope.Paging.Next.After != "" {
		page.After = envelope.Paging.Next.After
		page.HasMore = true
	}
	return page, nil
}

// GetObject fetches a single object, optionally restricted to the given
// properties.
func (c *Client) GetObject(ctx context.Context, t domain.ObjectType, id string, properties []string) (*domain.Object, error) {
	params := url.Values{}
	if len(properties) > 0 {
		params.Set("properties", strings.Join(properties, ","))
	}
	var obj domain.Object
	if err := c.Do(ctx, http.MethodGet, objectsPath(t)+"/"+id, params, nil, &obj); err != nil {
		return nil, fmt.Errorf("get %s %s: %w", t, id, err)
	}
	return &obj, nil
}

// CreateObject creates a new object and returns the created record.
func (c *Client) CreateObject(ctx context.Context, t domain.ObjectType, in domain.CreateInput) (*domain.Object, error) {
	var obj domain.Object
	if err := c.Do(ctx, http.MethodPost, objectsPath(t), nil, in, &obj); err != nil {
		return nil, fmt.Errorf("create %s: %w", t, err)
	}
	return &obj, nil
}

// UpdateObject patches an existing object's properties.
func (c *Client) UpdateObject(ctx context.Context, t domain.ObjectType, id string, in domain.UpdateInput) (*domain.Object, error) {
	var obj domain.Object
	if err := c.Do(ctx, http.MethodPatch, objectsPath(t)+"/"+id, nil, in, &obj); err != nil {
		return nil, fmt.Errorf("update %s %s: %w", t, id, err)
	}
	return &obj, nil
}

// DeleteObject archives an object.
func (c *Client) DeleteObject(ctx context.Context, t domain.ObjectType, id string) error {
	if err := c.Do(ctx, http.MethodDelete, objectsPath(t)+"/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete %s %s: %w", t, id, err)
	}
	return nil
}

// SearchObjects runs a CRM search request against the given object type.
func (c *Client) SearchObjects(ctx context.Context, t domain.ObjectType, req domain.SearchRequest) (*domain.SearchResult, error) {
	var result domain.SearchResult
	if err := c.Do(ctx, http.MethodPost, objectsPath(t)+"/search", nil, req, &result); err != nil {
		return nil, fmt.Errorf("search %s: %w", t, err)
	}
	return &result, nil
}

// BatchReadObjects fetches a set of objects by id in one call.
func (c *Client) BatchReadObjects(ctx context.Context, t domain.ObjectType, ids []string, properties []string) ([]*domain.Object, error) {
	type batchInput struct {
		ID string `json:"id"`
	}
	req := struct {
		Inputs     []batchInput `json:"inputs"`
		Properties []string     `json:"properties,omitempty"`
	}{Properties: properties}
	for _, id := range ids {
		req.Inputs = append(req.Inputs, batchInput{ID: id})
	}

	var envelope listEnvelope[*domain.Object]
	if err := c.Do(ctx, http.MethodPost, objectsPath(t)+"/batch/read", nil, req, &envelope); err != nil {
		return nil, fmt.Errorf("batch read %s: %w", t, err)
	}
	return envelope.Results, nil
}
