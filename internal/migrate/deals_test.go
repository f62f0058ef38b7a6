package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func pipelineMapping(pairs, stagePairs map[string]string) *PipelineSyncResult {
	res := &PipelineSyncResult{PipelineMap: domain.IDMap{}, StageMap: domain.IDMap{}}
	for src, dst := range pairs {
		res.PipelineMap.Put(src, dst)
	}
	for src, dst := range stagePairs {
		res.StageMap.Put(src, dst)
	}
	return res
}

func TestDealMigrationRemapsPipeline(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Widget Rollout", "amount": "5000",
		"pipeline": "src-p1", "dealstage": "src-s1",
	})

	pipelines := pipelineMapping(
		map[string]string{"src-p1": "dst-p9"},
		map[string]string{"src-s1": "dst-s9"},
	)

	m := NewDealMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background(), pipelines)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("created = %d, want 1", len(res.Created))
	}

	deal := dst.FindByProperty(domain.TypeDeal, "dealname", "Widget Rollout")
	if deal == nil {
		t.Fatal("deal missing at destination")
	}
	if deal.Property("pipeline") != "dst-p9" || deal.Property("dealstage") != "dst-s9" {
		t.Errorf("pipeline/stage = %q/%q, want dst-p9/dst-s9",
			deal.Property("pipeline"), deal.Property("dealstage"))
	}
}

func TestDealMigrationUnmappedPipelineDropped(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Orphan Deal", "pipeline": "gone", "dealstage": "gone-stage",
	})

	m := NewDealMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background(), pipelineMapping(nil, nil))
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(res.Created) != 1 {
		t.Fatalf("created = %d, want 1", len(res.Created))
	}

	deal := dst.FindByProperty(domain.TypeDeal, "dealname", "Orphan Deal")
	if deal == nil {
		t.Fatal("deal missing at destination")
	}
	if deal.Property("pipeline") != "" || deal.Property("dealstage") != "" {
		t.Errorf("pipeline/stage = %q/%q, want both dropped",
			deal.Property("pipeline"), deal.Property("dealstage"))
	}
}

func TestDealMigrationUnmappedStageDropsStageOnly(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Half Mapped", "pipeline": "src-p1", "dealstage": "unknown-stage",
	})

	pipelines := pipelineMapping(map[string]string{"src-p1": "dst-p9"}, nil)

	m := NewDealMigrator(source, dest, testOptions())
	if _, err := m.Migrate(context.Background(), pipelines); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	deal := dst.FindByProperty(domain.TypeDeal, "dealname", "Half Mapped")
	if deal == nil {
		t.Fatal("deal missing at destination")
	}
	if deal.Property("pipeline") != "dst-p9" {
		t.Errorf("pipeline = %q, want dst-p9", deal.Property("pipeline"))
	}
	if deal.Property("dealstage") != "" {
		t.Errorf("dealstage = %q, want dropped", deal.Property("dealstage"))
	}
}

func TestDealMigrationDedupByNameAndAmount(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	srcID := src.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Renewal 2026", "amount": "1200", "dealtype": "existingbusiness",
	})
	existing := dst.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Renewal 2026", "amount": "1200",
	})
	// Same name, different amount: must not match.
	dst.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Renewal 2026", "amount": "9999",
	})

	m := NewDealMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if len(res.Updated) != 1 || len(res.Created) != 0 {
		t.Fatalf("created/updated = %d/%d, want 0/1", len(res.Created), len(res.Updated))
	}
	if mapped, _ := res.IDMap.Lookup(srcID); mapped != existing {
		t.Errorf("IDMap[%s] = %q, want %q", srcID, mapped, existing)
	}
	if n := len(dst.Objects(domain.TypeDeal)); n != 2 {
		t.Errorf("destination deals = %d, want 2", n)
	}
}

func TestDealMigrationTokenFallbackTrimsWhitespace(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	srcID := src.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Platform Expansion", "amount": "300",
	})
	// Trailing space defeats the exact-match search but not the token
	// fallback, which compares trimmed names.
	existing := dst.AddObject(domain.TypeDeal, map[string]string{
		"dealname": "Platform Expansion ", "amount": "300",
	})

	m := NewDealMigrator(source, dest, testOptions())
	res, err := m.Migrate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	if len(res.Updated) != 1 {
		t.Fatalf("updated = %d, want 1 (token fallback)", len(res.Updated))
	}
	if mapped, _ := res.IDMap.Lookup(srcID); mapped != existing {
		t.Errorf("IDMap[%s] = %q, want %q", srcID, mapped, existing)
	}
}
