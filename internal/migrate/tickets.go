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

// TicketMigrator copies tickets from the source portal, deduplicating by
// subject and rewriting ticket pipeline references the same way deals are.
type TicketMigrator struct {
	base
	policy filter.Policy
}

// NewTicketMigrator returns a ticket migrator over the two portals.
func NewTicketMigrator(source, dest *hubspot.Client, opts Options) *TicketMigrator {
	return &TicketMigrator{base: newBase(source, dest, opts), policy: filter.TicketPolicy()}
}

// Migrate copies up to opts.Limit tickets. pipelines may be nil when ticket
// pipeline sync was skipped.
func (m *TicketMigrator) Migrate(ctx context.Context, pipelines *PipelineSyncResult) (*ObjectResult, error) {
	defs, err := m.source.ListProperties(ctx, domain.TypeTicket)
	if err != nil {
		return nil, fmt.Errorf("fetch source ticket properties: %w", err)
	}
	names := m.policy.SafePropertyNames(defs)

	records, err := m.listAll(ctx, m.source, domain.TypeTicket, domain.ListOpts{Properties: names}, m.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch source tickets: %w", err)
	}
	slog.Info("migrating tickets", "count", len(records))

	res := newObjectResult(domain.TypeTicket)
	for _, src := range records {
		props := m.policy.FilterProperties(src.Properties, false)
		if len(props) == 0 {
			res.Skipped++
			continue
		}
		remapPipeline(props, src, "hs_pipeline", "hs_pipeline_stage", pipelines)

		var existing *domain.Object
		if subject := strings.TrimSpace(src.Property("subject")); subject != "" {
			existing = searchOne(ctx, m.dest, domain.TypeTicket, domain.EqFilter("subject", subject, "subject"))
		}

		m.upsert(ctx, domain.TypeTicket, m.policy, src, existing, props, ticketLabel(src), res)
		m.pause()
	}

	slog.Info("ticket migration complete",
		"created", len(res.Created),
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"skipped", res.Skipped,
	)
	return res, nil
}

func ticketLabel(src *domain.Object) string {
	if subject := strings.TrimSpace(src.Property("subject")); subject != "" {
		return subject
	}
	return "ticket " + src.ID
}
