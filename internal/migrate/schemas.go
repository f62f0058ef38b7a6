package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// SchemaSyncer recreates the source portal's custom object schemas at the
// destination. Schemas are matched by name; object type ids differ between
// portals, so callers address custom object records by fully qualified name
// rather than by the ids this syncer returns.
type SchemaSyncer struct {
	base
}

// NewSchemaSyncer returns a schema syncer over the two portals.
func NewSchemaSyncer(source, dest *hubspot.Client, opts Options) *SchemaSyncer {
	return &SchemaSyncer{base: newBase(source, dest, opts)}
}

// SchemaSyncResult summarizes one schema sync pass.
type SchemaSyncResult struct {
	Created int
	Matched int
	Failed  int

	// Schemas holds the source schema definitions, whether created or
	// already present, so object migration can iterate custom types.
	Schemas  []domain.ObjectSchema
	Failures []report.FailureEntry
}

// AddTo merges the result into a run report.
func (res *SchemaSyncResult) AddTo(r *report.Report) {
	r.Count("schemas_created", res.Created)
	r.Count("schemas_matched", res.Matched)
	r.Count("schemas_failed", res.Failed)
	for _, f := range res.Failures {
		r.AddError(fmt.Sprintf("schema %s: %s", f.Label, f.Error))
	}
}

// Sync creates every source schema missing at the destination. Schemas that
// fail to create are excluded from the returned set so record migration
// does not try to write records of a type that does not exist.
func (s *SchemaSyncer) Sync(ctx context.Context) (*SchemaSyncResult, error) {
	sourceSchemas, err := s.source.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch source schemas: %w", err)
	}
	destSchemas, err := s.dest.ListSchemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch destination schemas: %w", err)
	}

	destNames := make(map[string]struct{}, len(destSchemas))
	for _, schema := range destSchemas {
		destNames[schema.Name] = struct{}{}
	}

	res := &SchemaSyncResult{}
	for _, schema := range sourceSchemas {
		if _, exists := destNames[schema.Name]; exists {
			res.Matched++
			res.Schemas = append(res.Schemas, schema)
			continue
		}

		if _, err := s.dest.CreateSchema(ctx, schema.CreationInput()); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, report.FailureEntry{SourceID: schema.ID, Label: schema.Name, Error: err.Error()})
			slog.Warn("schema create failed", "name", schema.Name, "error", err)
			continue
		}
		res.Created++
		res.Schemas = append(res.Schemas, schema)
		fmt.Printf("  + schema %q (%d properties)\n", schema.Name, len(schema.Properties))
		s.pause()
	}

	slog.Info("schema sync complete",
		"created", res.Created,
		"matched", res.Matched,
		"failed", res.Failed,
	)
	return res, nil
}
