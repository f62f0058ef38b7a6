// Package report defines the JSON run-report documents that migrations emit
// and rollback consumes. The report schema is the contract between the two:
// it is the only state that survives a run.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/johnwards/hubsync/internal/domain"
)

// Kind names the run that produced a report and prefixes its filename.
type Kind string

const (
	KindMigration     Kind = "migration"
	KindPropertySync  Kind = "property_sync"
	KindPipelineSync  Kind = "pipeline_sync"
	KindSchemaSync    Kind = "schema_sync"
	KindSelectiveSync Kind = "selective_sync"
	KindRollback      Kind = "rollback"
)

// RecordEntry records one migrated object as a source/destination id pair.
type RecordEntry struct {
	SourceID string `json:"sourceId"`
	DestID   string `json:"destId"`
	Label    string `json:"label,omitempty"`
}

// FailureEntry records one object that could not be migrated.
type FailureEntry struct {
	SourceID string `json:"sourceId,omitempty"`
	Label    string `json:"label,omitempty"`
	Error    string `json:"error"`
}

// Report is the append-only document emitted at the end of a run.
type Report struct {
	RunID       string    `json:"runId"`
	Kind        Kind      `json:"kind"`
	GeneratedAt time.Time `json:"generatedAt"`
	SyncType    string    `json:"syncType,omitempty"`

	Summary map[string]int `json:"summary"`

	// Created/Updated/Failed are keyed by object type.
	Created map[string][]RecordEntry  `json:"created,omitempty"`
	Updated map[string][]RecordEntry  `json:"updated,omitempty"`
	Failed  map[string][]FailureEntry `json:"failed,omitempty"`

	// CreatedProperties and CreatedPipelines list what rollback may
	// delete, keyed by object type.
	CreatedProperties map[string][]string `json:"createdProperties,omitempty"`
	CreatedPipelines  map[string][]string `json:"createdPipelines,omitempty"`

	// IDMappings holds per-object-type source→destination id tables.
	// PipelineMappings and StageMappings are the same for pipelines and
	// their stages, so a later run can remap records without re-syncing.
	IDMappings       map[string]domain.IDMap `json:"idMappings,omitempty"`
	PipelineMappings map[string]domain.IDMap `json:"pipelineMappings,omitempty"`
	StageMappings    map[string]domain.IDMap `json:"stageMappings,omitempty"`

	Errors []string `json:"errors,omitempty"`
}

// New returns an empty report of the given kind with a fresh run id.
func New(kind Kind) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Kind:        kind,
		GeneratedAt: time.Now().UTC(),
		Summary:     map[string]int{},
	}
}

// AddCreated records a created object and its id mapping.
func (r *Report) AddCreated(t domain.ObjectType, entry RecordEntry) {
	if r.Created == nil {
		r.Created = map[string][]RecordEntry{}
	}
	r.Created[t.String()] = append(r.Created[t.String()], entry)
	r.mapID(t, entry)
}

// AddUpdated records an object that already existed at the destination.
func (r *Report) AddUpdated(t domain.ObjectType, entry RecordEntry) {
	if r.Updated == nil {
		r.Updated = map[string][]RecordEntry{}
	}
	r.Updated[t.String()] = append(r.Updated[t.String()], entry)
	r.mapID(t, entry)
}

// AddFailed records a per-record failure.
func (r *Report) AddFailed(t domain.ObjectType, entry FailureEntry) {
	if r.Failed == nil {
		r.Failed = map[string][]FailureEntry{}
	}
	r.Failed[t.String()] = append(r.Failed[t.String()], entry)
}

// AddError appends a run-level error message.
func (r *Report) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

func (r *Report) mapID(t domain.ObjectType, entry RecordEntry) {
	if entry.SourceID == "" || entry.DestID == "" {
		return
	}
	if r.IDMappings == nil {
		r.IDMappings = map[string]domain.IDMap{}
	}
	m := r.IDMappings[t.String()]
	if m == nil {
		m = domain.IDMap{}
		r.IDMappings[t.String()] = m
	}
	m.Put(entry.SourceID, entry.DestID)
}

// IDMap returns the id mapping table for an object type, never nil.
func (r *Report) IDMap(t domain.ObjectType) domain.IDMap {
	if m, ok := r.IDMappings[t.String()]; ok {
		return m
	}
	return domain.IDMap{}
}

// SetPipelineMapping stores the pipeline id table for an object type.
func (r *Report) SetPipelineMapping(t domain.ObjectType, m domain.IDMap) {
	if len(m) == 0 {
		return
	}
	if r.PipelineMappings == nil {
		r.PipelineMappings = map[string]domain.IDMap{}
	}
	r.PipelineMappings[t.String()] = m
}

// SetStageMapping stores the pipeline stage id table for an object type.
func (r *Report) SetStageMapping(t domain.ObjectType, m domain.IDMap) {
	if len(m) == 0 {
		return
	}
	if r.StageMappings == nil {
		r.StageMappings = map[string]domain.IDMap{}
	}
	r.StageMappings[t.String()] = m
}

// AddCreatedProperty records a property created at the destination.
func (r *Report) AddCreatedProperty(t domain.ObjectType, name string) {
	if r.CreatedProperties == nil {
		r.CreatedProperties = map[string][]string{}
	}
	r.CreatedProperties[t.String()] = append(r.CreatedProperties[t.String()], name)
}

// AddCreatedPipeline records a pipeline created at the destination.
func (r *Report) AddCreatedPipeline(t domain.ObjectType, id string) {
	if r.CreatedPipelines == nil {
		r.CreatedPipelines = map[string][]string{}
	}
	r.CreatedPipelines[t.String()] = append(r.CreatedPipelines[t.String()], id)
}

// Count adds n to a named summary counter.
func (r *Report) Count(key string, n int) {
	r.Summary[key] += n
}

// SuccessRate returns created+updated over total processed as a percentage.
func (r *Report) SuccessRate() float64 {
	var ok, failed int
	for _, entries := range r.Created {
		ok += len(entries)
	}
	for _, entries := range r.Updated {
		ok += len(entries)
	}
	for _, entries := range r.Failed {
		failed += len(entries)
	}
	total := ok + failed
	if total == 0 {
		return 100
	}
	return float64(ok) / float64(total) * 100
}
