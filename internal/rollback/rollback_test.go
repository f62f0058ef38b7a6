package rollback

import (
	"context"
	"testing"
	"time"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubtest"
	"github.com/johnwards/hubsync/internal/report"
)

// newManager wires a manager to a fake portal and an empty file store, with
// sleeps disabled.
func newManager(t *testing.T) (*hubtest.Portal, *Manager, *report.FileStore) {
	t.Helper()
	portal := hubtest.NewPortal(t)
	store, err := report.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	m := New(portal.Client(), store)
	m.sleep = func(time.Duration) {}
	return portal, m, store
}

func TestRollbackDeletesCreatedRecords(t *testing.T) {
	portal, m, store := newManager(t)

	kept := portal.AddObject(domain.TypeContact, map[string]string{"email": "old@x.com"})
	created := portal.AddObject(domain.TypeContact, map[string]string{"email": "new@x.com"})
	portal.SetProperties(domain.TypeContact, []domain.Property{
		{Name: "custom_score", Label: "Score"},
	})

	rep := report.New(report.KindMigration)
	rep.AddCreated(domain.TypeContact, report.RecordEntry{SourceID: "s1", DestID: created, Label: "new@x.com"})
	rep.AddUpdated(domain.TypeContact, report.RecordEntry{SourceID: "s2", DestID: kept, Label: "old@x.com"})
	rep.AddCreatedProperty(domain.TypeContact, "custom_score")
	if _, err := store.Save(rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := m.Rollback(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if out.Summary["contacts_deleted"] != 1 {
		t.Errorf("contacts_deleted = %d, want 1", out.Summary["contacts_deleted"])
	}
	if out.Summary["contacts_properties_deleted"] != 1 {
		t.Errorf("contacts_properties_deleted = %d, want 1", out.Summary["contacts_properties_deleted"])
	}

	// Only the created record is gone; updated records are left alone.
	if portal.FindByProperty(domain.TypeContact, "email", "new@x.com") != nil {
		t.Error("created record still present")
	}
	if portal.FindByProperty(domain.TypeContact, "email", "old@x.com") == nil {
		t.Error("updated record was deleted")
	}
	for _, name := range portal.PropertyNames(domain.TypeContact) {
		if name == "custom_score" {
			t.Error("created property still present")
		}
	}

	// The rollback run is itself recorded.
	saved, err := store.Latest(report.KindRollback)
	if err != nil {
		t.Fatalf("Latest(rollback) error = %v", err)
	}
	if saved.RunID != out.RunID {
		t.Errorf("saved RunID = %s, want %s", saved.RunID, out.RunID)
	}
}

func TestRollbackSkipsDefaultPipeline(t *testing.T) {
	portal, m, store := newManager(t)

	extra := portal.AddPipeline(domain.TypeDeal, domain.Pipeline{
		Label:  "Enterprise",
		Stages: []domain.PipelineStage{{Label: "Qualify"}},
	})

	rep := report.New(report.KindMigration)
	rep.AddCreatedPipeline(domain.TypeDeal, extra.ID)
	rep.AddCreatedPipeline(domain.TypeDeal, domain.TypeDeal.DefaultPipelineID())
	if _, err := store.Save(rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := m.Rollback(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if out.Summary["deals_pipelines_deleted"] != 1 {
		t.Errorf("deals_pipelines_deleted = %d, want 1", out.Summary["deals_pipelines_deleted"])
	}

	pipes := portal.Pipelines(domain.TypeDeal)
	if len(pipes) != 1 || pipes[0].ID != domain.TypeDeal.DefaultPipelineID() {
		t.Errorf("remaining pipelines = %v, want only the default", pipes)
	}
}

func TestRollbackRecordsOnly(t *testing.T) {
	portal, m, store := newManager(t)

	created := portal.AddObject(domain.TypeContact, map[string]string{"email": "new@x.com"})
	portal.SetProperties(domain.TypeContact, []domain.Property{{Name: "custom_score"}})

	rep := report.New(report.KindMigration)
	rep.AddCreated(domain.TypeContact, report.RecordEntry{SourceID: "s1", DestID: created})
	rep.AddCreatedProperty(domain.TypeContact, "custom_score")
	if _, err := store.Save(rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := m.Rollback(context.Background(), Scope{RecordsOnly: true})
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if out.Summary["contacts_deleted"] != 1 {
		t.Errorf("contacts_deleted = %d, want 1", out.Summary["contacts_deleted"])
	}
	if out.Summary["contacts_properties_deleted"] != 0 {
		t.Errorf("contacts_properties_deleted = %d, want 0", out.Summary["contacts_properties_deleted"])
	}
	found := false
	for _, name := range portal.PropertyNames(domain.TypeContact) {
		if name == "custom_score" {
			found = true
		}
	}
	if !found {
		t.Error("property deleted despite RecordsOnly")
	}
}

func TestRollbackDryRunDeletesNothing(t *testing.T) {
	portal, m, store := newManager(t)

	created := portal.AddObject(domain.TypeContact, map[string]string{"email": "new@x.com"})
	rep := report.New(report.KindMigration)
	rep.AddCreated(domain.TypeContact, report.RecordEntry{SourceID: "s1", DestID: created})
	if _, err := store.Save(rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := m.Rollback(context.Background(), Scope{DryRun: true})
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if out.Summary["would_delete_contacts"] != 1 {
		t.Errorf("would_delete_contacts = %d, want 1", out.Summary["would_delete_contacts"])
	}
	if portal.FindByProperty(domain.TypeContact, "email", "new@x.com") == nil {
		t.Error("dry run deleted a record")
	}
	// Dry runs must not persist a rollback report.
	if _, err := store.Latest(report.KindRollback); err == nil {
		t.Error("dry run saved a report")
	}
}

func TestRollbackAlreadyGoneRecords(t *testing.T) {
	_, m, store := newManager(t)

	rep := report.New(report.KindMigration)
	rep.AddCreated(domain.TypeContact, report.RecordEntry{SourceID: "s1", DestID: "999"})
	if _, err := store.Save(rep); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	out, err := m.Rollback(context.Background(), Scope{})
	if err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	if out.Summary["contacts_already_gone"] != 1 {
		t.Errorf("contacts_already_gone = %d, want 1", out.Summary["contacts_already_gone"])
	}
	if out.Summary["contacts_delete_failed"] != 0 {
		t.Errorf("contacts_delete_failed = %d, want 0", out.Summary["contacts_delete_failed"])
	}
}

func TestRollbackNoReports(t *testing.T) {
	_, m, _ := newManager(t)

	if _, err := m.Rollback(context.Background(), Scope{}); err == nil {
		t.Fatal("Rollback() with no reports should fail")
	}
}
