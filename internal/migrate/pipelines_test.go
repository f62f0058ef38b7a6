package migrate

import (
	"context"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestPipelineSyncCreatesAndMaps(t *testing.T) {
	src, dst, source, dest := newPortals(t)

	enterprise := src.AddPipeline(domain.TypeDeal, domain.Pipeline{
		Label: "Enterprise",
		Stages: []domain.PipelineStage{
			{Label: "Discovery", DisplayOrder: 0, Metadata: map[string]string{"probability": "0.1"}},
			{Label: "Won", DisplayOrder: 1, Metadata: map[string]string{"probability": "1.0", "isClosed": "true", "closeWon": "true", "portalSpecific": "x"}},
		},
	})

	syncer := NewPipelineSyncer(source, dest, domain.TypeDeal, testOptions())
	res, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync() error = %v", err)
	}

	if res.Created != 1 {
		t.Errorf("Created = %d, want 1", res.Created)
	}
	if res.Matched != 1 {
		t.Errorf("Matched = %d, want 1 (shared default pipeline)", res.Matched)
	}

	// Default pipeline maps onto the destination default.
	if mapped, ok := res.PipelineMap.Lookup("default"); !ok || mapped != "default" {
		t.Errorf("default pipeline mapping = (%q, %v), want (default, true)", mapped, ok)
	}
	destID, ok := res.PipelineMap.Lookup(enterprise.ID)
	if !ok {
		t.Fatalf("no mapping for created pipeline %s", enterprise.ID)
	}

	// The new pipeline exists at the destination with both stages and
	// only the portable stage metadata.
	var found bool
	for _, pipe := range dst.Pipelines(domain.TypeDeal) {
		if pipe.ID != destID {
			continue
		}
		found = true
		if pipe.Label != "Enterprise" || len(pipe.Stages) != 2 {
			t.Errorf("destination pipeline = %+v, want Enterprise with 2 stages", pipe)
		}
		for _, stage := range pipe.Stages {
			if _, leaked := stage.Metadata["portalSpecific"]; leaked {
				t.Error("portal-specific stage metadata leaked into creation payload")
			}
		}
		// Stage ids mapped by label.
		for _, srcStage := range enterprise.Stages {
			if _, ok := res.StageMap.Lookup(srcStage.ID); !ok {
				t.Errorf("no stage mapping for %q", srcStage.Label)
			}
		}
	}
	if !found {
		t.Errorf("created pipeline %s not found at destination", destID)
	}
}

func TestPipelineSyncSecondRunCreatesNothing(t *testing.T) {
	src, _, source, dest := newPortals(t)

	src.AddPipeline(domain.TypeTicket, domain.Pipeline{
		Label:  "Escalations",
		Stages: []domain.PipelineStage{{Label: "Open"}, {Label: "Done", Metadata: map[string]string{"isClosed": "true"}}},
	})

	syncer := NewPipelineSyncer(source, dest, domain.TypeTicket, testOptions())
	if _, err := syncer.Sync(context.Background()); err != nil {
		t.Fatalf("first Sync() error = %v", err)
	}

	second, err := syncer.Sync(context.Background())
	if err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}
	if second.Created != 0 {
		t.Errorf("second run Created = %d, want 0", second.Created)
	}
	if second.Matched != 2 {
		t.Errorf("second run Matched = %d, want 2", second.Matched)
	}
}
