package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/filter"
	"github.com/johnwards/hubsync/internal/hubspot"
)

// CustomObjectMigrator copies records of one custom object schema. The
// schema must already exist at the destination (see SchemaSyncer); records
// are deduplicated by the schema's primary display property when it has
// one, otherwise every source record is created.
type CustomObjectMigrator struct {
	base
	schema     domain.ObjectSchema
	objectType domain.ObjectType
	policy     filter.Policy
}

// NewCustomObjectMigrator returns a migrator for one custom schema.
func NewCustomObjectMigrator(source, dest *hubspot.Client, schema domain.ObjectSchema, opts Options) *CustomObjectMigrator {
	t := schema.ObjectType()
	return &CustomObjectMigrator{
		base:       newBase(source, dest, opts),
		schema:     schema,
		objectType: t,
		policy:     filter.CustomObjectPolicy(t, schema.PrimaryDisplayProperty),
	}
}

// Migrate copies up to opts.Limit records of the schema's type.
func (m *CustomObjectMigrator) Migrate(ctx context.Context) (*ObjectResult, error) {
	defs, err := m.source.ListProperties(ctx, m.objectType)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s properties: %w", m.objectType, err)
	}
	names := m.policy.SafePropertyNames(defs)

	records, err := m.listAll(ctx, m.source, m.objectType, domain.ListOpts{Properties: names}, m.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s records: %w", m.objectType, err)
	}
	slog.Info("migrating custom objects", "type", m.objectType, "count", len(records))

	displayProp := m.schema.PrimaryDisplayProperty
	res := newObjectResult(m.objectType)
	for _, src := range records {
		props := m.policy.FilterProperties(src.Properties, false)
		if len(props) == 0 {
			res.Skipped++
			continue
		}

		var existing *domain.Object
		label := "record " + src.ID
		if displayProp != "" {
			if value := strings.TrimSpace(src.Property(displayProp)); value != "" {
				label = value
				existing = searchOne(ctx, m.dest, m.objectType, domain.EqFilter(displayProp, value, displayProp))
			}
		}

		m.upsert(ctx, m.objectType, m.policy, src, existing, props, label, res)
		m.pause()
	}

	slog.Info("custom object migration complete",
		"type", m.objectType,
		"created", len(res.Created),
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"skipped", res.Skipped,
	)
	return res, nil
}
