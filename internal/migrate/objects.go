package migrate

import (
	"context"
	"log/slog"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/filter"
	"github.com/johnwards/hubsync/internal/hubspot"
)

// searchOne runs a search and returns the first hit, or nil when the portal
// has no match. A failed lookup is reported as no match: the caller then
// creates the record, and the worst case is a duplicate rather than a lost
// one.
func searchOne(ctx context.Context, c *hubspot.Client, t domain.ObjectType, req domain.SearchRequest) *domain.Object {
	result, err := c.SearchObjects(ctx, t, req)
	if err != nil {
		slog.Warn("dedup search failed", "type", t, "error", err)
		return nil
	}
	if len(result.Results) == 0 {
		return nil
	}
	return result.Results[0]
}

// searchMany returns up to limit hits for a search, or nil on error.
func searchMany(ctx context.Context, c *hubspot.Client, t domain.ObjectType, req domain.SearchRequest, limit int) []*domain.Object {
	req.Limit = limit
	result, err := c.SearchObjects(ctx, t, req)
	if err != nil {
		slog.Warn("candidate search failed", "type", t, "error", err)
		return nil
	}
	return result.Results
}

// upsert writes one source record to the destination: a PATCH against the
// matched twin when existing is non-nil, a POST otherwise. The outcome is
// recorded on res; errors never propagate past the record.
func (b *base) upsert(ctx context.Context, t domain.ObjectType, policy filter.Policy, src, existing *domain.Object, props map[string]string, label string, res *ObjectResult) *domain.Object {
	if existing != nil {
		update := make(map[string]string, len(props))
		for name, value := range props {
			update[name] = value
		}
		delete(update, policy.DedupKey())

		if len(update) > 0 {
			if _, err := b.dest.UpdateObject(ctx, t, existing.ID, domain.UpdateInput{Properties: update}); err != nil {
				res.failed(src.ID, label, err)
				slog.Warn("update failed", "type", t, "sourceId", src.ID, "label", label, "error", err)
				return nil
			}
		}
		res.updated(src.ID, existing.ID, label)
		return existing
	}

	created, err := b.dest.CreateObject(ctx, t, domain.CreateInput{Properties: props})
	if err != nil {
		res.failed(src.ID, label, err)
		slog.Warn("create failed", "type", t, "sourceId", src.ID, "label", label, "error", err)
		return nil
	}
	res.created(src.ID, created.ID, label)
	return created
}

// verifyKeyProperties re-reads a freshly created record and patches any of
// the named key properties that were sent but did not stick. Failures here
// only warn: the record itself exists.
func (b *base) verifyKeyProperties(ctx context.Context, t domain.ObjectType, destID string, names []string, sent map[string]string) {
	wanted := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := sent[name]; ok {
			wanted = append(wanted, name)
		}
	}
	if len(wanted) == 0 {
		return
	}

	current, err := b.dest.GetObject(ctx, t, destID, wanted)
	if err != nil {
		slog.Warn("key property verification failed", "type", t, "destId", destID, "error", err)
		return
	}

	missing := map[string]string{}
	for _, name := range wanted {
		if current.Property(name) == "" {
			missing[name] = sent[name]
		}
	}
	if len(missing) == 0 {
		return
	}

	if _, err := b.dest.UpdateObject(ctx, t, destID, domain.UpdateInput{Properties: missing}); err != nil {
		slog.Warn("key property fix failed", "type", t, "destId", destID, "error", err)
		return
	}
	slog.Debug("patched missing key properties", "type", t, "destId", destID, "count", len(missing))
}
