package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestContactMigrationDedupByEmail(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	aliceID := src.AddObject(domain.TypeContact, map[string]string{
		"email": "alice@x.com", "firstname": "Alice", "city": "Leeds",
	})
	bobID := src.AddObject(domain.TypeContact, map[string]string{
		"email": "bob@y.com", "firstname": "Bob", "jobtitle": "CTO",
	})
	existingBob := dst.AddObject(domain.TypeContact, map[string]string{
		"email": "bob@y.com", "firstname": "Robert",
	})

	m := NewContactMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if len(res.Created) != 1 || len(res.Updated) != 1 || len(res.Failed) != 0 {
		t.Fatalf("created/updated/failed = %d/%d/%d, want 1/1/0",
			len(res.Created), len(res.Updated), len(res.Failed))
	}

	// Bob resolved to the pre-existing destination record.
	if mapped, ok := res.IDMap.Lookup(bobID); !ok || mapped != existingBob {
		t.Errorf("IDMap[%s] = (%q, %v), want (%q, true)", bobID, mapped, ok, existingBob)
	}
	if _, ok := res.IDMap.Lookup(aliceID); !ok {
		t.Errorf("IDMap missing created contact %s", aliceID)
	}

	// No duplicate bob at the destination.
	if n := len(dst.Objects(domain.TypeContact)); n != 2 {
		t.Errorf("destination contacts = %d, want 2", n)
	}

	// The update patched bob's writable fields without touching email.
	bob := dst.FindByProperty(domain.TypeContact, "email", "bob@y.com")
	if bob == nil {
		t.Fatal("bob missing at destination")
	}
	if bob.Property("jobtitle") != "CTO" || bob.Property("firstname") != "Bob" {
		t.Errorf("bob properties = %v, want patched firstname/jobtitle", bob.Properties)
	}
}

func TestContactMigrationSkipsWithoutEmail(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeContact, map[string]string{"firstname": "Ghost"})
	src.AddObject(domain.TypeContact, map[string]string{"email": "real@x.com"})

	opts := testOptions()
	opts.SkipContactsWithoutEmail = true
	m := NewContactMigrator(source, dest, opts)
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if res.Skipped != 1 || len(res.Created) != 1 {
		t.Errorf("skipped/created = %d/%d, want 1/1", res.Skipped, len(res.Created))
	}
	if n := len(dst.Objects(domain.TypeContact)); n != 1 {
		t.Errorf("destination contacts = %d, want 1", n)
	}
}

func TestContactMigrationCreatesWithoutEmailByDefault(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeContact, map[string]string{"firstname": "Ghost", "lastname": "Writer"})

	m := NewContactMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("created = %d, want 1", len(res.Created))
	}
	if res.Created[0].Label != "Ghost Writer" {
		t.Errorf("label = %q, want name fallback", res.Created[0].Label)
	}
	if n := len(dst.Objects(domain.TypeContact)); n != 1 {
		t.Errorf("destination contacts = %d, want 1", n)
	}
}

func TestContactMigrationLimit(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	for i := 0; i < 5; i++ {
		src.AddObject(domain.TypeContact, map[string]string{
			"email": string(rune('a'+i)) + "@x.com",
		})
	}

	opts := testOptions()
	opts.Limit = 3
	m := NewContactMigrator(source, dest, opts)
	res, err := m.Migrate(context.Background())
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if res.Total() != 3 {
		t.Errorf("Total = %d, want 3", res.Total())
	}
	if n := len(dst.Objects(domain.TypeContact)); n != 3 {
		t.Errorf("destination contacts = %d, want 3", n)
	}
}

func TestContactMigrationLimitTakesNewest(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	for i := 0; i < 5; i++ {
		src.AddObject(domain.TypeContact, map[string]string{
			"email": string(rune('a'+i)) + "@x.com",
		})
	}

	opts := testOptions()
	opts.Limit = 2
	m := NewContactMigrator(source, dest, opts)
	if _, err := m.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	// The cap keeps the most recently created records.
	for _, email := range []string{"e@x.com", "d@x.com"} {
		if dst.FindByProperty(domain.TypeContact, "email", email) == nil {
			t.Errorf("newest contact %s missing at destination", email)
		}
	}
	if dst.FindByProperty(domain.TypeContact, "email", "a@x.com") != nil {
		t.Error("oldest contact migrated despite limit")
	}
}
