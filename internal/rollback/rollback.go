// Package rollback undoes prior migrations by replaying run reports in
// reverse: every record, property, and pipeline a report lists as created
// at the destination gets a DELETE. Reports are the only state the tool
// keeps, so anything a report does not mention cannot be rolled back.
// Associations have no bulk-delete endpoint and are never touched.
package rollback

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// Scope selects which reports to roll back and what to delete from them.
type Scope struct {
	// LastN rolls back the N most recent migration reports; 0 means 1.
	// Full ignores LastN and rolls back every stored migration and
	// selective sync report.
	LastN int
	Full  bool

	// RecordsOnly deletes only records; PropertiesOnly deletes only
	// property definitions and pipelines. Both unset deletes everything.
	RecordsOnly    bool
	PropertiesOnly bool

	// DryRun reports what would be deleted without calling the API.
	DryRun bool
}

// Manager deletes migrated data from the destination portal.
type Manager struct {
	dest  *hubspot.Client
	store report.Store
	sleep func(time.Duration)
	delay time.Duration
}

// New returns a rollback manager over the destination portal and report
// store.
func New(dest *hubspot.Client, store report.Store) *Manager {
	return &Manager{dest: dest, store: store, sleep: time.Sleep, delay: 200 * time.Millisecond}
}

// Rollback loads the scoped reports and deletes what they record as
// created, newest report first. Records go before property definitions so
// no record ever references an already-deleted property. Undeletable items
// (default pipelines, hubspotDefined properties, records already gone) are
// warnings, not failures. The outcome is itself saved as a rollback report.
func (m *Manager) Rollback(ctx context.Context, scope Scope) (*report.Report, error) {
	reports, err := m.loadReports(scope)
	if err != nil {
		return nil, err
	}

	out := report.New(report.KindRollback)
	if scope.DryRun {
		out.SyncType = "dry_run"
	}
	slog.Info("rolling back", "reports", len(reports), "dryRun", scope.DryRun)

	for _, r := range reports {
		if !scope.PropertiesOnly {
			m.deleteRecords(ctx, r, scope.DryRun, out)
		}
		if !scope.RecordsOnly {
			m.deletePipelines(ctx, r, scope.DryRun, out)
			m.deleteProperties(ctx, r, scope.DryRun, out)
		}
	}

	out.AddError("associations are not rolled back: the API has no bulk delete, remove them manually if needed")

	slog.Info("rollback complete", "runId", out.RunID)
	if m.store != nil && !scope.DryRun {
		if path, err := m.store.Save(out); err != nil {
			slog.Error("rollback report save failed", "error", err)
		} else {
			fmt.Printf("report written to %s\n", path)
		}
	}
	return out, nil
}

func (m *Manager) loadReports(scope Scope) ([]*report.Report, error) {
	if scope.Full {
		all, err := m.store.List(time.Time{})
		if err != nil {
			return nil, fmt.Errorf("load reports: %w", err)
		}
		kept := all[:0]
		for _, r := range all {
			if r.Kind == report.KindMigration || r.Kind == report.KindSelectiveSync {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			return nil, report.ErrNoReports
		}
		return kept, nil
	}

	n := scope.LastN
	if n <= 0 {
		n = 1
	}
	reports, err := m.store.LatestN(report.KindMigration, n)
	if err != nil {
		return nil, fmt.Errorf("load migration reports: %w", err)
	}
	return reports, nil
}

func (m *Manager) deleteRecords(ctx context.Context, r *report.Report, dryRun bool, out *report.Report) {
	for typeName, entries := range r.Created {
		t := domain.ObjectType(typeName)
		for _, entry := range entries {
			if dryRun {
				out.Count("would_delete_"+typeName, 1)
				continue
			}
			if err := m.dest.DeleteObject(ctx, t, entry.DestID); err != nil {
				if hubspot.IsNotFound(err) {
					out.Count(typeName+"_already_gone", 1)
					continue
				}
				out.Count(typeName+"_delete_failed", 1)
				out.AddFailed(t, report.FailureEntry{SourceID: entry.SourceID, Label: entry.Label, Error: err.Error()})
				slog.Warn("record delete failed", "type", t, "destId", entry.DestID, "error", err)
				continue
			}
			out.Count(typeName+"_deleted", 1)
			m.sleep(m.delay)
		}
	}
}

func (m *Manager) deleteProperties(ctx context.Context, r *report.Report, dryRun bool, out *report.Report) {
	for typeName, names := range r.CreatedProperties {
		t := domain.ObjectType(typeName)
		for _, name := range names {
			if dryRun {
				out.Count("would_delete_"+typeName+"_properties", 1)
				continue
			}
			if err := m.dest.DeleteProperty(ctx, t, name); err != nil {
				// hubspotDefined properties refuse deletion.
				out.Count(typeName+"_properties_undeletable", 1)
				slog.Warn("property delete refused", "type", t, "name", name, "error", err)
				continue
			}
			out.Count(typeName+"_properties_deleted", 1)
			m.sleep(m.delay)
		}
	}
}

func (m *Manager) deletePipelines(ctx context.Context, r *report.Report, dryRun bool, out *report.Report) {
	for typeName, ids := range r.CreatedPipelines {
		t := domain.ObjectType(typeName)
		for _, id := range ids {
			if id == t.DefaultPipelineID() {
				continue
			}
			if dryRun {
				out.Count("would_delete_"+typeName+"_pipelines", 1)
				continue
			}
			if err := m.dest.DeletePipeline(ctx, t, id); err != nil {
				out.Count(typeName+"_pipelines_undeletable", 1)
				slog.Warn("pipeline delete refused", "type", t, "id", id, "error", err)
				continue
			}
			out.Count(typeName+"_pipelines_deleted", 1)
			m.sleep(m.delay)
		}
	}
}
