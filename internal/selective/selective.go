// Package selective migrates a chosen slice of the source portal instead of
// everything. Contact-centric selection picks specific contact ids,
// companies by domain, records changed since a date, or just the N most
// recent; deal-centric selection does the same for deals. Selected records
// are pushed through the same migrators a full run uses, then their one-hop
// related objects follow, and finally the associations between them.
package selective

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/migrate"
	"github.com/johnwards/hubsync/internal/report"
)

// Criteria describes what to select. When several fields are set the first
// matching tier wins: ids, then domains, then dates, then a plain limited
// query. Tiers do not combine.
type Criteria struct {
	ContactIDs     []string
	CompanyDomains []string

	// DealIDs selects specific deals; only SyncDeals reads it.
	DealIDs []string

	// CreatedAfter and ModifiedAfter are passed to the search API as-is
	// (ISO date or millisecond epoch).
	CreatedAfter  string
	ModifiedAfter string

	Limit int

	// IncludeRelated pulls the one-hop neighbors across too: companies
	// and deals for selected contacts, contacts for selected deals.
	IncludeRelated bool
}

func (c Criteria) syncType() string {
	switch {
	case len(c.ContactIDs) > 0:
		return "selective_ids"
	case len(c.CompanyDomains) > 0:
		return "selective_domains"
	case c.CreatedAfter != "" || c.ModifiedAfter != "":
		return "selective_dates"
	default:
		return "selective_recent"
	}
}

func (c Criteria) dealSyncType() string {
	switch {
	case len(c.DealIDs) > 0:
		return "selective_deal_ids"
	case c.CreatedAfter != "" || c.ModifiedAfter != "":
		return "selective_deal_dates"
	default:
		return "selective_deal_recent"
	}
}

// Syncer runs criteria-driven syncs between two portals.
type Syncer struct {
	source *hubspot.Client
	dest   *hubspot.Client
	store  report.Store
	opts   migrate.Options
}

// New returns a selective syncer. store receives the final report; nil
// skips persistence.
func New(source, dest *hubspot.Client, store report.Store, opts migrate.Options) *Syncer {
	return &Syncer{source: source, dest: dest, store: store, opts: opts}
}

// Sync selects contacts per the criteria, migrates them, optionally pulls
// the related companies and deals across, recreates the associations among
// everything migrated, and saves a selective sync report.
func (s *Syncer) Sync(ctx context.Context, criteria Criteria) (*report.Report, error) {
	rep := report.New(report.KindSelectiveSync)
	rep.SyncType = criteria.syncType()

	contacts := migrate.NewContactMigrator(s.source, s.dest, s.opts)
	names, err := contacts.SafeProperties(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := s.selectContacts(ctx, criteria, names)
	if err != nil {
		return nil, fmt.Errorf("select contacts: %w", err)
	}
	slog.Info("selective sync", "syncType", rep.SyncType, "selected", len(selected))

	contactRes := contacts.MigrateRecords(ctx, selected)
	contactRes.AddTo(rep)

	if criteria.IncludeRelated && len(contactRes.IDMap) > 0 {
		s.syncRelated(ctx, selected, contactRes, rep)
	}

	s.save(rep)
	return rep, nil
}

// SyncDeals selects deals per the criteria (ids, then dates, then a limited
// recent query), migrates them, optionally pulls the contacts associated
// with them across, recreates the deal-contact associations, and saves a
// selective sync report. Pipeline references are rewritten through the
// mapping of the latest full migration report when one exists.
func (s *Syncer) SyncDeals(ctx context.Context, criteria Criteria) (*report.Report, error) {
	rep := report.New(report.KindSelectiveSync)
	rep.SyncType = criteria.dealSyncType()

	deals := migrate.NewDealMigrator(s.source, s.dest, s.opts)
	names, err := deals.SafeProperties(ctx)
	if err != nil {
		return nil, err
	}

	selected, err := s.selectDeals(ctx, criteria, names)
	if err != nil {
		return nil, fmt.Errorf("select deals: %w", err)
	}
	slog.Info("selective deal sync", "syncType", rep.SyncType, "selected", len(selected))

	dealRes := deals.MigrateRecords(ctx, selected, s.pipelineMapping(domain.TypeDeal))
	dealRes.AddTo(rep)

	if criteria.IncludeRelated && len(dealRes.IDMap) > 0 {
		s.syncDealContacts(ctx, selected, dealRes, rep)
	}

	s.save(rep)
	return rep, nil
}

func (s *Syncer) save(rep *report.Report) {
	slog.Info("selective sync complete", "runId", rep.RunID, "successRate", fmt.Sprintf("%.1f%%", rep.SuccessRate()))
	if s.store == nil {
		return
	}
	if path, err := s.store.Save(rep); err != nil {
		slog.Error("report save failed", "error", err)
		rep.AddError(fmt.Sprintf("report save: %s", err))
	} else {
		fmt.Printf("report written to %s\n", path)
	}
}

// pipelineMapping rebuilds the pipeline sync mapping for an object type
// from the freshest full migration report. Selective runs never sync
// pipelines themselves; without a prior report the mapping is nil and
// records land in the destination default pipeline.
func (s *Syncer) pipelineMapping(t domain.ObjectType) *migrate.PipelineSyncResult {
	if s.store == nil {
		return nil
	}
	prev, err := s.store.Latest(report.KindMigration)
	if err != nil {
		if !errors.Is(err, report.ErrNoReports) {
			slog.Warn("prior migration report unavailable", "error", err)
		}
		return nil
	}
	pm := prev.PipelineMappings[t.String()]
	if len(pm) == 0 {
		return nil
	}
	slog.Info("pipeline mapping reloaded from report", "type", t, "runId", prev.RunID)
	return &migrate.PipelineSyncResult{Type: t, PipelineMap: pm, StageMap: prev.StageMappings[t.String()]}
}

// selectContacts resolves the criteria into a set of full source records.
func (s *Syncer) selectContacts(ctx context.Context, criteria Criteria, properties []string) ([]*domain.Object, error) {
	switch {
	case len(criteria.ContactIDs) > 0:
		return s.source.BatchReadObjects(ctx, domain.TypeContact, criteria.ContactIDs, properties)

	case len(criteria.CompanyDomains) > 0:
		return s.contactsByDomains(ctx, criteria.CompanyDomains, properties)

	case criteria.CreatedAfter != "" || criteria.ModifiedAfter != "":
		prop, value := "createdate", criteria.CreatedAfter
		if value == "" {
			prop, value = "lastmodifieddate", criteria.ModifiedAfter
		}
		result, err := s.source.SearchObjects(ctx, domain.TypeContact, domain.SearchRequest{
			FilterGroups: []domain.FilterGroup{{Filters: []domain.Filter{{
				PropertyName: prop,
				Operator:     domain.OpGte,
				Value:        value,
			}}}},
			Sorts:      []domain.Sort{{PropertyName: prop, Direction: "DESCENDING"}},
			Properties: properties,
			Limit:      searchLimit(criteria.Limit),
		})
		if err != nil {
			return nil, err
		}
		return result.Results, nil

	default:
		result, err := s.source.SearchObjects(ctx, domain.TypeContact, domain.SearchRequest{
			Sorts:      []domain.Sort{{PropertyName: "createdate", Direction: "DESCENDING"}},
			Properties: properties,
			Limit:      searchLimit(criteria.Limit),
		})
		if err != nil {
			return nil, err
		}
		return result.Results, nil
	}
}

// selectDeals resolves deal-centric criteria into a set of full source
// records.
func (s *Syncer) selectDeals(ctx context.Context, criteria Criteria, properties []string) ([]*domain.Object, error) {
	switch {
	case len(criteria.DealIDs) > 0:
		return s.source.BatchReadObjects(ctx, domain.TypeDeal, criteria.DealIDs, properties)

	case criteria.CreatedAfter != "" || criteria.ModifiedAfter != "":
		prop, value := "createdate", criteria.CreatedAfter
		if value == "" {
			prop, value = "hs_lastmodifieddate", criteria.ModifiedAfter
		}
		result, err := s.source.SearchObjects(ctx, domain.TypeDeal, domain.SearchRequest{
			FilterGroups: []domain.FilterGroup{{Filters: []domain.Filter{{
				PropertyName: prop,
				Operator:     domain.OpGte,
				Value:        value,
			}}}},
			Sorts:      []domain.Sort{{PropertyName: prop, Direction: "DESCENDING"}},
			Properties: properties,
			Limit:      searchLimit(criteria.Limit),
		})
		if err != nil {
			return nil, err
		}
		return result.Results, nil

	default:
		result, err := s.source.SearchObjects(ctx, domain.TypeDeal, domain.SearchRequest{
			Sorts:      []domain.Sort{{PropertyName: "createdate", Direction: "DESCENDING"}},
			Properties: properties,
			Limit:      searchLimit(criteria.Limit),
		})
		if err != nil {
			return nil, err
		}
		return result.Results, nil
	}
}

// contactsByDomains finds companies by domain at the source, then the
// contacts associated with them.
func (s *Syncer) contactsByDomains(ctx context.Context, domains, properties []string) ([]*domain.Object, error) {
	seen := map[string]struct{}{}
	var ids []string
	for _, d := range domains {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		result, err := s.source.SearchObjects(ctx, domain.TypeCompany, domain.EqFilter("domain", d, "domain"))
		if err != nil {
			return nil, fmt.Errorf("find company %s: %w", d, err)
		}
		if len(result.Results) == 0 {
			slog.Warn("no company for domain", "domain", d)
			continue
		}
		contactIDs, err := s.source.ListAssociations(ctx, domain.AssociationSpec{From: domain.TypeCompany, To: domain.TypeContact}, result.Results[0].ID)
		if err != nil {
			return nil, fmt.Errorf("contacts for company %s: %w", d, err)
		}
		for _, id := range contactIDs {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return s.source.BatchReadObjects(ctx, domain.TypeContact, ids, properties)
}

// syncRelated migrates the companies and deals one association hop away
// from the selected contacts, then recreates the associations. Failures
// here never fail the run; the contacts themselves are already across.
func (s *Syncer) syncRelated(ctx context.Context, selected []*domain.Object, contactRes *migrate.ObjectResult, rep *report.Report) {
	companyIDs := s.relatedIDs(ctx, selected, domain.AssociationSpec{From: domain.TypeContact, To: domain.TypeCompany})
	dealIDs := s.relatedIDs(ctx, selected, domain.AssociationSpec{From: domain.TypeContact, To: domain.TypeDeal})

	var companyRes, dealRes *migrate.ObjectResult

	if len(companyIDs) > 0 {
		companies := migrate.NewCompanyMigrator(s.source, s.dest, s.opts)
		if names, err := companies.SafeProperties(ctx); err != nil {
			rep.AddError(fmt.Sprintf("related companies: %s", err))
		} else if records, err := s.source.BatchReadObjects(ctx, domain.TypeCompany, companyIDs, names); err != nil {
			rep.AddError(fmt.Sprintf("related companies: %s", err))
		} else {
			companyRes = companies.MigrateRecords(ctx, records)
			companyRes.AddTo(rep)
		}
	}

	if len(dealIDs) > 0 {
		deals := migrate.NewDealMigrator(s.source, s.dest, s.opts)
		if names, err := deals.SafeProperties(ctx); err != nil {
			rep.AddError(fmt.Sprintf("related deals: %s", err))
		} else if records, err := s.source.BatchReadObjects(ctx, domain.TypeDeal, dealIDs, names); err != nil {
			rep.AddError(fmt.Sprintf("related deals: %s", err))
		} else {
			dealRes = deals.MigrateRecords(ctx, records, s.pipelineMapping(domain.TypeDeal))
			dealRes.AddTo(rep)
		}
	}

	assoc := migrate.NewAssociationMigrator(s.source, s.dest, s.opts)
	pairs := []struct {
		spec    domain.AssociationSpec
		fromsTo [2]*migrate.ObjectResult
	}{
		{domain.AssociationSpec{From: domain.TypeContact, To: domain.TypeCompany}, [2]*migrate.ObjectResult{contactRes, companyRes}},
		{domain.AssociationSpec{From: domain.TypeDeal, To: domain.TypeContact}, [2]*migrate.ObjectResult{dealRes, contactRes}},
		{domain.AssociationSpec{From: domain.TypeDeal, To: domain.TypeCompany}, [2]*migrate.ObjectResult{dealRes, companyRes}},
	}
	for _, p := range pairs {
		if p.fromsTo[0] == nil || p.fromsTo[1] == nil {
			continue
		}
		res, err := assoc.Migrate(ctx, p.spec, p.fromsTo[0].IDMap, p.fromsTo[1].IDMap)
		if err != nil {
			rep.AddError(fmt.Sprintf("associations %s: %s", p.spec.TypeName(), err))
			continue
		}
		res.AddTo(rep)
	}
}

// syncDealContacts migrates the contacts one association hop away from the
// selected deals, then recreates the deal-contact associations. Failures
// here never fail the run; the deals themselves are already across.
func (s *Syncer) syncDealContacts(ctx context.Context, selected []*domain.Object, dealRes *migrate.ObjectResult, rep *report.Report) {
	spec := domain.AssociationSpec{From: domain.TypeDeal, To: domain.TypeContact}
	contactIDs := s.relatedIDs(ctx, selected, spec)
	if len(contactIDs) == 0 {
		return
	}

	contacts := migrate.NewContactMigrator(s.source, s.dest, s.opts)
	names, err := contacts.SafeProperties(ctx)
	if err != nil {
		rep.AddError(fmt.Sprintf("related contacts: %s", err))
		return
	}
	records, err := s.source.BatchReadObjects(ctx, domain.TypeContact, contactIDs, names)
	if err != nil {
		rep.AddError(fmt.Sprintf("related contacts: %s", err))
		return
	}
	contactRes := contacts.MigrateRecords(ctx, records)
	contactRes.AddTo(rep)

	assoc := migrate.NewAssociationMigrator(s.source, s.dest, s.opts)
	res, err := assoc.Migrate(ctx, spec, dealRes.IDMap, contactRes.IDMap)
	if err != nil {
		rep.AddError(fmt.Sprintf("associations %s: %s", spec.TypeName(), err))
		return
	}
	res.AddTo(rep)
}

// relatedIDs collects the ids of spec.To objects associated with the given
// spec.From records at the source, deduplicated and sorted.
func (s *Syncer) relatedIDs(ctx context.Context, records []*domain.Object, spec domain.AssociationSpec) []string {
	seen := map[string]struct{}{}
	for _, record := range records {
		ids, err := s.source.ListAssociations(ctx, spec, record.ID)
		if err != nil {
			slog.Warn("related lookup failed", "type", spec.To, "fromId", record.ID, "error", err)
			continue
		}
		for _, id := range ids {
			seen[id] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func searchLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}
