package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/filter"
	"github.com/johnwards/hubsync/internal/hubspot"
)

// DealMigrator copies deals from the source portal. Pipeline and stage ids
// are portal-local, so each deal's pipeline reference is rewritten through
// the pipeline sync mapping; a deal whose pipeline has no destination
// counterpart is created without one and lands in the default pipeline.
type DealMigrator struct {
	base
	policy filter.Policy
}

// NewDealMigrator returns a deal migrator over the two portals.
func NewDealMigrator(source, dest *hubspot.Client, opts Options) *DealMigrator {
	return &DealMigrator{base: newBase(source, dest, opts), policy: filter.DealPolicy()}
}

// SafeProperties returns the names of source deal properties worth
// requesting.
func (m *DealMigrator) SafeProperties(ctx context.Context) ([]string, error) {
	defs, err := m.source.ListProperties(ctx, domain.TypeDeal)
	if err != nil {
		return nil, fmt.Errorf("fetch source deal properties: %w", err)
	}
	return m.policy.SafePropertyNames(defs), nil
}

// Migrate copies up to opts.Limit deals, rewriting pipeline references
// through pipelines (which may be nil when pipeline sync was skipped).
// Duplicates are detected by exact (dealname, amount), with a token search
// fallback for renamed-in-place deals.
func (m *DealMigrator) Migrate(ctx context.Context, pipelines *PipelineSyncResult) (*ObjectResult, error) {
	names, err := m.SafeProperties(ctx)
	if err != nil {
		return nil, err
	}
	records, err := m.listAll(ctx, m.source, domain.TypeDeal, domain.ListOpts{Properties: names}, m.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch source deals: %w", err)
	}
	return m.MigrateRecords(ctx, records, pipelines), nil
}

// MigrateRecords migrates an already-fetched set of source deals.
func (m *DealMigrator) MigrateRecords(ctx context.Context, records []*domain.Object, pipelines *PipelineSyncResult) *ObjectResult {
	slog.Info("migrating deals", "count", len(records))

	res := newObjectResult(domain.TypeDeal)
	for _, src := range records {
		props := m.policy.FilterProperties(src.Properties, false)
		if len(props) == 0 {
			res.Skipped++
			continue
		}
		remapPipeline(props, src, "pipeline", "dealstage", pipelines)

		existing := m.findExisting(ctx, src)
		m.upsert(ctx, domain.TypeDeal, m.policy, src, existing, props, dealLabel(src), res)
		m.pause()
	}

	slog.Info("deal migration complete",
		"created", len(res.Created),
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"skipped", res.Skipped,
	)
	return res
}

// remapPipeline rewrites a record's pipeline and stage properties through
// the sync mapping. An unmapped pipeline drops both fields; an unmapped
// stage drops just the stage, leaving the destination portal to place the
// record in the pipeline's first stage.
func remapPipeline(props map[string]string, src *domain.Object, pipelineProp, stageProp string, pipelines *PipelineSyncResult) {
	sourcePipeline := src.Property(pipelineProp)
	if sourcePipeline == "" {
		return
	}
	if pipelines == nil {
		delete(props, pipelineProp)
		delete(props, stageProp)
		return
	}
	destPipeline, ok := pipelines.PipelineMap.Lookup(sourcePipeline)
	if !ok {
		delete(props, pipelineProp)
		delete(props, stageProp)
		return
	}
	props[pipelineProp] = destPipeline

	if sourceStage := src.Property(stageProp); sourceStage != "" {
		if destStage, ok := pipelines.StageMap.Lookup(sourceStage); ok {
			props[stageProp] = destStage
		} else {
			delete(props, stageProp)
		}
	}
}

// findExisting looks the deal up at the destination by exact name and
// amount, then falls back to a token search over the name's most
// distinctive term.
func (m *DealMigrator) findExisting(ctx context.Context, src *domain.Object) *domain.Object {
	name := strings.TrimSpace(src.Property("dealname"))
	if name == "" {
		return nil
	}
	amount := strings.TrimSpace(src.Property("amount"))

	filters := []domain.Filter{{PropertyName: "dealname", Operator: domain.OpEq, Value: name}}
	if amount != "" {
		filters = append(filters, domain.Filter{PropertyName: "amount", Operator: domain.OpEq, Value: amount})
	}
	if match := searchOne(ctx, m.dest, domain.TypeDeal, domain.SearchRequest{
		FilterGroups: []domain.FilterGroup{{Filters: filters}},
		Properties:   []string{"dealname", "amount"},
		Limit:        1,
	}); match != nil {
		return match
	}

	terms := KeyTerms(name)
	if len(terms) == 0 {
		return nil
	}
	candidates := searchMany(ctx, m.dest, domain.TypeDeal, domain.SearchRequest{
		FilterGroups: []domain.FilterGroup{{Filters: []domain.Filter{{
			PropertyName: "dealname",
			Operator:     domain.OpContainsToken,
			Value:        terms[0],
		}}}},
		Properties: []string{"dealname", "amount"},
	}, 10)
	for _, candidate := range candidates {
		if !strings.EqualFold(strings.TrimSpace(candidate.Property("dealname")), name) {
			continue
		}
		if amount != "" && strings.TrimSpace(candidate.Property("amount")) != amount {
			continue
		}
		return candidate
	}
	return nil
}

func dealLabel(src *domain.Object) string {
	if name := strings.TrimSpace(src.Property("dealname")); name != "" {
		return name
	}
	return "deal " + src.ID
}
