package report

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/johnwards/hubsync/internal/domain"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	return store
}

func TestFileStoreSaveAndLatest(t *testing.T) {
	store := newTestStore(t)

	// Distinct timestamps so filenames order deterministically.
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute), base.Add(2 * time.Minute)}
	var i int
	store.now = func() time.Time { t := times[i]; i++; return t }

	var lastID string
	for n := 0; n < 3; n++ {
		r := New(KindMigration)
		r.Count("contacts_created", n)
		lastID = r.RunID
		path, err := store.Save(r)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		name := filepath.Base(path)
		if !strings.HasPrefix(name, "migration_") || !strings.HasSuffix(name, ".json") {
			t.Errorf("report filename = %q, want migration_*.json", name)
		}
	}

	latest, err := store.Latest(KindMigration)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.RunID != lastID {
		t.Errorf("Latest().RunID = %q, want %q", latest.RunID, lastID)
	}
	if latest.Summary["contacts_created"] != 2 {
		t.Errorf("Latest() summary = %v, want contacts_created 2", latest.Summary)
	}

	two, err := store.LatestN(KindMigration, 2)
	if err != nil {
		t.Fatalf("LatestN() error = %v", err)
	}
	if len(two) != 2 || two[0].RunID != lastID {
		t.Errorf("LatestN(2) wrong order or count: %d reports", len(two))
	}
}

func TestFileStoreLatestNoReports(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Latest(KindMigration); !errors.Is(err, ErrNoReports) {
		t.Errorf("Latest() error = %v, want ErrNoReports", err)
	}
}

func TestFileStoreLatestFiltersByKind(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute)}
	var i int
	store.now = func() time.Time { t := times[i]; i++; return t }

	m := New(KindMigration)
	if _, err := store.Save(m); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := store.Save(New(KindRollback)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	latest, err := store.Latest(KindMigration)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}
	if latest.RunID != m.RunID {
		t.Errorf("Latest(migration) = %q, want %q (rollback report leaked in)", latest.RunID, m.RunID)
	}
}

func TestReportIDMappingsRoundTrip(t *testing.T) {
	store := newTestStore(t)

	r := New(KindMigration)
	r.AddCreated(domain.TypeContact, RecordEntry{SourceID: "1", DestID: "101", Label: "a@b.com"})
	r.AddUpdated(domain.TypeContact, RecordEntry{SourceID: "2", DestID: "102"})
	r.AddFailed(domain.TypeContact, FailureEntry{SourceID: "3", Error: "boom"})

	if _, err := store.Save(r); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	loaded, err := store.Latest(KindMigration)
	if err != nil {
		t.Fatalf("Latest() error = %v", err)
	}

	m := loaded.IDMap(domain.TypeContact)
	if dest, ok := m.Lookup("1"); !ok || dest != "101" {
		t.Errorf("IDMap lookup 1 = (%q, %v), want (101, true)", dest, ok)
	}
	if dest, ok := m.Lookup("2"); !ok || dest != "102" {
		t.Errorf("IDMap lookup 2 = (%q, %v), want (102, true)", dest, ok)
	}
	if _, ok := m.Lookup("3"); ok {
		t.Error("failed record leaked into IDMap")
	}
}

func TestSuccessRate(t *testing.T) {
	r := New(KindMigration)
	if got := r.SuccessRate(); got != 100 {
		t.Errorf("empty SuccessRate() = %v, want 100", got)
	}

	r.AddCreated(domain.TypeContact, RecordEntry{SourceID: "1", DestID: "101"})
	r.AddUpdated(domain.TypeContact, RecordEntry{SourceID: "2", DestID: "102"})
	r.AddFailed(domain.TypeContact, FailureEntry{SourceID: "3", Error: "boom"})
	r.AddCreated(domain.TypeDeal, RecordEntry{SourceID: "4", DestID: "104"})

	if got := r.SuccessRate(); got != 75 {
		t.Errorf("SuccessRate() = %v, want 75", got)
	}
}

func TestIDMapIgnoresEmptyIDs(t *testing.T) {
	m := domain.IDMap{}
	m.Put("", "101")
	m.Put("1", "")
	m.Put("1", "101")

	if len(m) != 1 {
		t.Fatalf("len = %d, want 1", len(m))
	}
	dest, skipped := m.Translate([]string{"1", "2"})
	if len(dest) != 1 || dest[0] != "101" || skipped != 1 {
		t.Errorf("Translate = (%v, %d), want ([101], 1)", dest, skipped)
	}
}
