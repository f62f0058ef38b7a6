package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// AssociationMigrator recreates associations between already-migrated
// records. It lists the source objects with their association previews
// inlined, translates both endpoint ids through the id mapping tables, and
// batch-creates the result at the destination. An endpoint that was never
// migrated has no mapping; its association is skipped, not failed.
type AssociationMigrator struct {
	base
}

// NewAssociationMigrator returns an association migrator over the two
// portals.
func NewAssociationMigrator(source, dest *hubspot.Client, opts Options) *AssociationMigrator {
	return &AssociationMigrator{base: newBase(source, dest, opts)}
}

// AssociationSyncResult summarizes one association pass for one spec.
type AssociationSyncResult struct {
	Spec    domain.AssociationSpec
	Created int
	Skipped int
	Failed  int

	Failures []report.FailureEntry
}

// AddTo merges the result into a run report.
func (res *AssociationSyncResult) AddTo(r *report.Report) {
	key := "associations_" + res.Spec.TypeName()
	r.Count(key+"_created", res.Created)
	r.Count(key+"_skipped", res.Skipped)
	r.Count(key+"_failed", res.Failed)
	r.Count("associations_created", res.Created)
	r.Count("associations_skipped", res.Skipped)
	r.Count("associations_failed", res.Failed)
	for _, f := range res.Failures {
		r.AddError(fmt.Sprintf("association %s: %s", res.Spec.TypeName(), f.Error))
	}
}

// Migrate recreates all spec associations among the records in fromMap and
// toMap. The destination search index lags recent writes, so the pass
// starts with an indexing pause.
func (m *AssociationMigrator) Migrate(ctx context.Context, spec domain.AssociationSpec, fromMap, toMap domain.IDMap) (*AssociationSyncResult, error) {
	res := &AssociationSyncResult{Spec: spec}
	if len(fromMap) == 0 || len(toMap) == 0 {
		return res, nil
	}
	m.indexingPause()

	// One paginated listing with inline previews replaces a read per
	// source record.
	records, err := m.listAll(ctx, m.source, spec.From, domain.ListOpts{
		Associations: []domain.ObjectType{spec.To},
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("list %s associations: %w", spec.TypeName(), err)
	}

	typeName := spec.TypeName()
	var batch []domain.AssociationInput

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if _, err := m.dest.BatchCreateAssociations(ctx, spec, batch); err != nil {
			res.Failed += len(batch)
			res.Failures = append(res.Failures, report.FailureEntry{Error: err.Error()})
			slog.Warn("association batch failed", "spec", typeName, "size", len(batch), "error", err)
		} else {
			res.Created += len(batch)
		}
		batch = batch[:0]
		m.pause()
	}

	for _, src := range records {
		destFromID, ok := fromMap.Lookup(src.ID)
		if !ok {
			continue
		}

		destToIDs, skipped := toMap.Translate(src.AssociationIDs(spec.To))
		res.Skipped += skipped

		for _, destToID := range destToIDs {
			batch = append(batch, domain.AssociationInput{
				From: domain.AssociationEndpoint{ID: destFromID},
				To:   domain.AssociationEndpoint{ID: destToID},
				Type: typeName,
			})
			if len(batch) >= m.opts.BatchSize {
				flush()
			}
		}
	}
	flush()

	slog.Info("association migration complete",
		"spec", typeName,
		"created", res.Created,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}
