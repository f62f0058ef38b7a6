package migrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// RunConfig selects which phases of a full migration run execute. The zero
// value runs everything.
type RunConfig struct {
	// DryRun lists what would be migrated without writing anything.
	DryRun bool

	SkipProperties bool
	SkipPipelines  bool
	SkipSchemas    bool

	// ContactsOnly and DealsOnly restrict record migration to one object
	// type. SkipDeals drops deals from an otherwise full run.
	ContactsOnly bool
	DealsOnly    bool
	SkipDeals    bool
}

func (c RunConfig) migrates(t domain.ObjectType) bool {
	if c.ContactsOnly {
		return t == domain.TypeContact
	}
	if c.DealsOnly {
		return t == domain.TypeDeal
	}
	if c.SkipDeals && t == domain.TypeDeal {
		return false
	}
	return true
}

// associationSpecs are the association directions a full run recreates.
var associationSpecs = []domain.AssociationSpec{
	{From: domain.TypeContact, To: domain.TypeCompany},
	{From: domain.TypeDeal, To: domain.TypeContact},
	{From: domain.TypeDeal, To: domain.TypeCompany},
	{From: domain.TypeTicket, To: domain.TypeContact},
}

// Runner orchestrates a full migration: property definitions first, then
// pipelines and schemas, then records, then associations. A phase that
// fails during setup is aborted and recorded on the report; the remaining
// phases still run with whatever mappings exist.
type Runner struct {
	base
	store report.Store
}

// NewRunner returns a full-run orchestrator. store receives the final
// report; a nil store skips persistence.
func NewRunner(source, dest *hubspot.Client, store report.Store, opts Options) *Runner {
	return &Runner{base: newBase(source, dest, opts), store: store}
}

// Run executes the configured phases and returns the saved report.
func (r *Runner) Run(ctx context.Context, cfg RunConfig) (*report.Report, error) {
	if cfg.DryRun {
		return r.dryRun(ctx, cfg)
	}

	rep := report.New(report.KindMigration)
	rep.SyncType = "full"

	if !cfg.SkipProperties {
		fmt.Println("== property definitions ==")
		for _, t := range []domain.ObjectType{domain.TypeContact, domain.TypeCompany, domain.TypeDeal, domain.TypeTicket} {
			if !cfg.migrates(t) {
				continue
			}
			syncer := NewPropertySyncer(r.source, r.dest, t, r.opts)
			if res, err := syncer.Sync(ctx); err != nil {
				rep.AddError(fmt.Sprintf("property sync %s: %s", t, err))
				slog.Error("property sync aborted", "type", t, "error", err)
			} else {
				res.AddTo(rep)
			}
		}
	}

	pipelineResults := map[domain.ObjectType]*PipelineSyncResult{}
	if !cfg.SkipPipelines {
		fmt.Println("== pipelines ==")
		for _, t := range []domain.ObjectType{domain.TypeDeal, domain.TypeTicket} {
			if !cfg.migrates(t) {
				continue
			}
			syncer := NewPipelineSyncer(r.source, r.dest, t, r.opts)
			if res, err := syncer.Sync(ctx); err != nil {
				rep.AddError(fmt.Sprintf("pipeline sync %s: %s", t, err))
				slog.Error("pipeline sync aborted", "type", t, "error", err)
			} else {
				pipelineResults[t] = res
				res.AddTo(rep)
			}
		}
	}

	// Mappings built in earlier runs persist in the report file; when a
	// phase was skipped this run, the freshest prior report stands in.
	var prior *report.Report
	var priorLoaded bool
	loadPrior := func() *report.Report {
		if !priorLoaded {
			priorLoaded = true
			prior = r.latestReport()
		}
		return prior
	}
	pipelineMapping := func(t domain.ObjectType) *PipelineSyncResult {
		if res := pipelineResults[t]; res != nil {
			return res
		}
		prev := loadPrior()
		if prev == nil {
			return nil
		}
		pm := prev.PipelineMappings[t.String()]
		if len(pm) == 0 {
			return nil
		}
		slog.Info("pipeline mapping reloaded from report", "type", t, "runId", prev.RunID)
		return &PipelineSyncResult{Type: t, PipelineMap: pm, StageMap: prev.StageMappings[t.String()]}
	}

	var schemas *SchemaSyncResult
	if !cfg.SkipSchemas && !cfg.ContactsOnly && !cfg.DealsOnly {
		fmt.Println("== custom object schemas ==")
		var err error
		schemas, err = NewSchemaSyncer(r.source, r.dest, r.opts).Sync(ctx)
		if err != nil {
			rep.AddError(fmt.Sprintf("schema sync: %s", err))
			slog.Error("schema sync aborted", "error", err)
		} else {
			schemas.AddTo(rep)
		}
	}

	results := map[domain.ObjectType]*ObjectResult{}
	record := func(t domain.ObjectType, res *ObjectResult, err error) {
		if err != nil {
			rep.AddError(fmt.Sprintf("%s migration: %s", t, err))
			slog.Error("object migration aborted", "type", t, "error", err)
			return
		}
		results[t] = res
		res.AddTo(rep)
	}

	if cfg.migrates(domain.TypeContact) {
		fmt.Println("== contacts ==")
		res, err := NewContactMigrator(r.source, r.dest, r.opts).Migrate(ctx)
		record(domain.TypeContact, res, err)
	}
	if cfg.migrates(domain.TypeCompany) {
		fmt.Println("== companies ==")
		res, err := NewCompanyMigrator(r.source, r.dest, r.opts).Migrate(ctx)
		record(domain.TypeCompany, res, err)
	}
	if cfg.migrates(domain.TypeDeal) {
		fmt.Println("== deals ==")
		res, err := NewDealMigrator(r.source, r.dest, r.opts).Migrate(ctx, pipelineMapping(domain.TypeDeal))
		record(domain.TypeDeal, res, err)
	}
	if cfg.migrates(domain.TypeTicket) {
		fmt.Println("== tickets ==")
		res, err := NewTicketMigrator(r.source, r.dest, r.opts).Migrate(ctx, pipelineMapping(domain.TypeTicket))
		record(domain.TypeTicket, res, err)
	}

	if schemas != nil {
		for _, schema := range schemas.Schemas {
			fmt.Printf("== %s ==\n", schema.Name)
			m := NewCustomObjectMigrator(r.source, r.dest, schema, r.opts)
			res, err := m.Migrate(ctx)
			record(schema.ObjectType(), res, err)
		}
	}

	fmt.Println("== associations ==")
	idMapFor := func(t domain.ObjectType) domain.IDMap {
		if res, ok := results[t]; ok {
			return res.IDMap
		}
		if prev := loadPrior(); prev != nil {
			return prev.IDMap(t)
		}
		return nil
	}
	assoc := NewAssociationMigrator(r.source, r.dest, r.opts)
	for _, spec := range associationSpecs {
		fromMap := idMapFor(spec.From)
		toMap := idMapFor(spec.To)
		if len(fromMap) == 0 || len(toMap) == 0 {
			continue
		}
		res, err := assoc.Migrate(ctx, spec, fromMap, toMap)
		if err != nil {
			rep.AddError(fmt.Sprintf("associations %s: %s", spec.TypeName(), err))
			continue
		}
		res.AddTo(rep)
	}

	r.finish(rep)
	return rep, nil
}

// dryRun counts what a real run would touch without writing anything.
func (r *Runner) dryRun(ctx context.Context, cfg RunConfig) (*report.Report, error) {
	rep := report.New(report.KindMigration)
	rep.SyncType = "dry_run"

	for _, t := range []domain.ObjectType{domain.TypeContact, domain.TypeCompany, domain.TypeDeal, domain.TypeTicket} {
		if !cfg.migrates(t) {
			continue
		}
		records, err := r.listAll(ctx, r.source, t, domain.ListOpts{}, r.opts.Limit)
		if err != nil {
			rep.AddError(fmt.Sprintf("%s dry run: %s", t, err))
			continue
		}
		rep.Count("would_migrate_"+t.String(), len(records))
		fmt.Printf("would migrate %d %s\n", len(records), t)
	}

	r.finish(rep)
	return rep, nil
}

// latestReport returns the freshest stored migration report, or nil when
// none exists.
func (r *Runner) latestReport() *report.Report {
	if r.store == nil {
		return nil
	}
	prev, err := r.store.Latest(report.KindMigration)
	if err != nil {
		if !errors.Is(err, report.ErrNoReports) {
			slog.Warn("prior report unavailable", "error", err)
		}
		return nil
	}
	return prev
}

func (r *Runner) finish(rep *report.Report) {
	slog.Info("run complete", "runId", rep.RunID, "successRate", fmt.Sprintf("%.1f%%", rep.SuccessRate()))
	if r.store == nil {
		return
	}
	if path, err := r.store.Save(rep); err != nil {
		slog.Error("report save failed", "error", err)
		rep.AddError(fmt.Sprintf("report save: %s", err))
	} else {
		fmt.Printf("report written to %s\n", path)
	}
}
