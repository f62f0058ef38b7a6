package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestPropertySyncCreatesMissing(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.SetProperties(domain.TypeContact, []domain.Property{
		{Name: "custom_score", Label: "Custom Score", Type: "number", FieldType: "number"},
		{Name: "hs_internal_thing", Label: "Internal", Type: "string", FieldType: "text"},
		{Name: "email", Label: "Email", Type: "string", FieldType: "text", HubspotDefined: true},
	})
	dst.SetProperties(domain.TypeContact, []domain.Property{
		{Name: "email", Label: "Email", Type: "string", FieldType: "text", HubspotDefined: true},
	})

	syncer := NewPropertySyncer(source, dest, domain.TypeContact, testOptions())
	res, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if res.Created != 1 {
		t.Errorf("Created = %d, want 1", res.Created)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2 (hs_ prefix and already present)", res.Skipped)
	}
	if res.Failed != 0 {
		t.Errorf("Failed = %d, want 0", res.Failed)
	}

	names := dst.PropertyNames(domain.TypeContact)
	var found bool
	for _, n := range names {
		if n == "custom_score" {
			found = true
		}
		if n == "hs_internal_thing" {
			t.Error("system-prefixed property was created at destination")
		}
	}
	if !found {
		t.Errorf("destination properties = %v, want custom_score present", names)
	}
}

func TestPropertySyncSecondRunCreatesNothing(t *testing.T) {
	src, _, source, dest := newPortals(t)

	src.SetProperties(domain.TypeDeal, []domain.Property{
		{Name: "deal_region", Label: "Region", Type: "string", FieldType: "text"},
		{Name: "deal_tier", Label: "Tier", Type: "enumeration", FieldType: "select"},
	})

	syncer := NewPropertySyncer(source, dest, domain.TypeDeal, testOptions())
	first, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}
	if first.Created != 2 {
		t.Fatalf("first run Created = %d, want 2", first.Created)
	}

	second, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if second.Created != 0 {
		t.Errorf("second run Created = %d, want 0", second.Created)
	}
	if second.Skipped != second.Total {
		t.Errorf("second run Skipped = %d, want %d (everything already exists)", second.Skipped, second.Total)
	}
}
