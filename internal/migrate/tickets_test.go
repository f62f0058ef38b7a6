package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestTicketMigrationDedupBySubject(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	srcID := src.AddObject(domain.TypeTicket, map[string]string{
		"subject": "Login broken", "content": "Cannot log in since Tuesday",
	})
	existing := dst.AddObject(domain.TypeTicket, map[string]string{
		"subject": "Login broken",
	})

	m := NewTicketMigrator(source, dest, testOptions())
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

	got := dst.FindByProperty(domain.TypeTicket, "subject", "Login broken")
	if got == nil || got.Property("content") != "Cannot log in since Tuesday" {
		t.Errorf("update did not carry content, got %v", got)
	}
}

func TestTicketMigrationRemapsPipeline(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	src.AddObject(domain.TypeTicket, map[string]string{
		"subject": "Slow dashboard", "hs_pipeline": "src-tp", "hs_pipeline_stage": "src-ts",
	})

	pipelines := pipelineMapping(
		map[string]string{"src-tp": "dst-tp"},
		map[string]string{"src-ts": "dst-ts"},
	)

	m := NewTicketMigrator(source, dest, testOptions())
	if _, err := m.Migrate(context.Background(), pipelines); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	ticket := dst.FindByProperty(domain.TypeTicket, "subject", "Slow dashboard")
	if ticket == nil {
		t.Fatal("ticket missing at destination")
	}
	if ticket.Property("hs_pipeline") != "dst-tp" || ticket.Property("hs_pipeline_stage") != "dst-ts" {
		t.Errorf("pipeline/stage = %q/%q, want dst-tp/dst-ts",
			ticket.Property("hs_pipeline"), ticket.Property("hs_pipeline_stage"))
	}
}
