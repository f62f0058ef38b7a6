package migrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// PipelineSyncer mirrors the source portal's pipelines for one object type
// at the destination. Pipelines are matched by label, never by id: ids are
// portal-local, so the syncer's real output is the id mapping table that
// lets record migration rewrite pipeline and stage references.
type PipelineSyncer struct {
	base
	objectType domain.ObjectType
}

// NewPipelineSyncer returns a syncer for the given object type.
func NewPipelineSyncer(source, dest *hubspot.Client, t domain.ObjectType, opts Options) *PipelineSyncer {
	return &PipelineSyncer{base: newBase(source, dest, opts), objectType: t}
}

// PipelineSyncResult summarizes one pipeline sync pass.
type PipelineSyncResult struct {
	Type    domain.ObjectType
	Created int
	Matched int
	Failed  int

	// PipelineMap maps source pipeline ids to destination pipeline ids.
	// StageMap does the same for stage ids, across all mapped pipelines;
	// stages are matched by label and a stage missing at the destination
	// is simply absent from the table.
	PipelineMap domain.IDMap
	StageMap    domain.IDMap

	CreatedIDs []string
	Failures   []report.FailureEntry
}

// AddTo merges the result into a run report.
func (res *PipelineSyncResult) AddTo(r *report.Report) {
	r.SetPipelineMapping(res.Type, res.PipelineMap)
	r.SetStageMapping(res.Type, res.StageMap)
	for _, id := range res.CreatedIDs {
		r.AddCreatedPipeline(res.Type, id)
	}
	r.Count(res.Type.String()+"_pipelines_created", res.Created)
	r.Count(res.Type.String()+"_pipelines_matched", res.Matched)
	r.Count(res.Type.String()+"_pipelines_failed", res.Failed)
	for _, f := range res.Failures {
		r.AddError(fmt.Sprintf("%s pipeline %s: %s", res.Type, f.Label, f.Error))
	}
}

// Sync creates every source pipeline missing at the destination and builds
// the pipeline and stage id tables. The portal default pipeline (which
// cannot be created or deleted) maps onto the destination's own default.
func (s *PipelineSyncer) Sync(ctx context.Context) (*PipelineSyncResult, error) {
	sourcePipelines, err := s.source.ListPipelines(ctx, s.objectType)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s pipelines: %w", s.objectType, err)
	}
	destPipelines, err := s.dest.ListPipelines(ctx, s.objectType)
	if err != nil {
		return nil, fmt.Errorf("fetch destination %s pipelines: %w", s.objectType, err)
	}

	destByLabel := make(map[string]*domain.Pipeline, len(destPipelines))
	for i := range destPipelines {
		destByLabel[destPipelines[i].Label] = &destPipelines[i]
	}

	res := &PipelineSyncResult{
		Type:        s.objectType,
		PipelineMap: domain.IDMap{},
		StageMap:    domain.IDMap{},
	}
	defaultID := s.objectType.DefaultPipelineID()

	for i := range sourcePipelines {
		src := &sourcePipelines[i]
		if src.ID == defaultID && defaultID != "" {
			// Both portals always have the default pipeline.
			res.PipelineMap.Put(src.ID, defaultID)
			if dest, ok := destByLabel[src.Label]; ok {
				s.mapStages(src, dest, res.StageMap)
			}
			res.Matched++
			continue
		}

		if dest, ok := destByLabel[src.Label]; ok {
			res.PipelineMap.Put(src.ID, dest.ID)
			s.mapStages(src, dest, res.StageMap)
			res.Matched++
			continue
		}

		created, err := s.dest.CreatePipeline(ctx, s.objectType, src.CreationInput())
		if err != nil {
			res.Failed++
			res.Failures = append(res.Failures, report.FailureEntry{SourceID: src.ID, Label: src.Label, Error: err.Error()})
			slog.Warn("pipeline create failed", "type", s.objectType, "label", src.Label, "error", err)
			continue
		}
		res.PipelineMap.Put(src.ID, created.ID)
		s.mapStages(src, created, res.StageMap)
		res.Created++
		res.CreatedIDs = append(res.CreatedIDs, created.ID)
		fmt.Printf("  + pipeline %s %q (%d stages)\n", s.objectType, src.Label, len(created.Stages))
		s.pause()
	}

	slog.Info("pipeline sync complete",
		"type", s.objectType,
		"created", res.Created,
		"matched", res.Matched,
		"failed", res.Failed,
	)
	return res, nil
}

// mapStages fills stage id mappings for stages present in both pipelines,
// matched by label.
func (s *PipelineSyncer) mapStages(src, dest *domain.Pipeline, stages domain.IDMap) {
	destStages := make(map[string]string, len(dest.Stages))
	for _, stage := range dest.Stages {
		destStages[stage.Label] = stage.ID
	}
	for _, stage := range src.Stages {
		if destID, ok := destStages[stage.Label]; ok {
			stages.Put(stage.ID, destID)
		}
	}
}
