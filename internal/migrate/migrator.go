// Package migrate moves CRM data from a production portal to a sandbox
// portal: property definitions, property groups, pipelines, custom object
// schemas, object records, and the associations between them. Every create
// is idempotent by convention — an "already exists" conflict counts as
// success — and per-record failures never abort a batch.
package migrate

import (
	"context"
	"time"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

const (
	pageSize = 100

	// Destination search indexing lags writes. A fixed pause before the
	// dedup search and before association creation keeps lookups from
	// missing records that were just created.
	defaultRateLimitDelay = 200 * time.Millisecond
	defaultIndexingDelay  = 3 * time.Second
)

// Options tunes a migration run. The zero value gets sensible defaults.
type Options struct {
	Limit          int
	BatchSize      int
	RateLimitDelay time.Duration
	IndexingDelay  time.Duration

	SkipContactsWithoutEmail bool

	// Fuzzy company matching knobs; see matching.go.
	SimilarityThreshold float64
	MinFuzzyNameLen     int

	// Sleep replaces time.Sleep in tests. Nil means time.Sleep.
	Sleep func(time.Duration)
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.RateLimitDelay <= 0 {
		o.RateLimitDelay = defaultRateLimitDelay
	}
	if o.IndexingDelay <= 0 {
		o.IndexingDelay = defaultIndexingDelay
	}
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = defaultSimilarityThreshold
	}
	if o.MinFuzzyNameLen <= 0 {
		o.MinFuzzyNameLen = defaultMinFuzzyNameLen
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	return o
}

// base carries the two portal clients and shared pacing helpers. Source is
// read-only; every write goes to dest.
type base struct {
	source *hubspot.Client
	dest   *hubspot.Client
	opts   Options
}

func newBase(source, dest *hubspot.Client, opts Options) base {
	return base{source: source, dest: dest, opts: opts.withDefaults()}
}

// pause sleeps the fixed inter-record delay.
func (b *base) pause() { b.opts.Sleep(b.opts.RateLimitDelay) }

// indexingPause sleeps long enough for destination search indexing to catch
// up with recent writes.
func (b *base) indexingPause() { b.opts.Sleep(b.opts.IndexingDelay) }

// listAll paginates objects newest-first until max records are collected or
// the portal runs out. max <= 0 means no cap. Newest-first matters when a
// limit is set: the cap takes the most recently created records, not the
// oldest.
func (b *base) listAll(ctx context.Context, c *hubspot.Client, t domain.ObjectType, opts domain.ListOpts, max int) ([]*domain.Object, error) {
	var all []*domain.Object
	if opts.Sort == "" {
		opts.Sort = "createdate:desc"
	}
	opts.Limit = pageSize
	if max > 0 && max < pageSize {
		opts.Limit = max
	}
	for {
		page, err := c.ListObjects(ctx, t, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if max > 0 && len(all) >= max {
			return all[:max], nil
		}
		if !page.HasMore {
			return all, nil
		}
		opts.After = page.After
		b.opts.Sleep(100 * time.Millisecond)
	}
}

// ObjectResult is the outcome of migrating one object type.
type ObjectResult struct {
	Type    domain.ObjectType
	Created []report.RecordEntry
	Updated []report.RecordEntry
	Failed  []report.FailureEntry
	Skipped int

	// IDMap holds source→destination ids for every record confirmed to
	// exist at the destination, created or found.
	IDMap domain.IDMap
}

func newObjectResult(t domain.ObjectType) *ObjectResult {
	return &ObjectResult{Type: t, IDMap: domain.IDMap{}}
}

func (res *ObjectResult) created(sourceID, destID, label string) {
	res.Created = append(res.Created, report.RecordEntry{SourceID: sourceID, DestID: destID, Label: label})
	res.IDMap.Put(sourceID, destID)
}

func (res *ObjectResult) updated(sourceID, destID, label string) {
	res.Updated = append(res.Updated, report.RecordEntry{SourceID: sourceID, DestID: destID, Label: label})
	res.IDMap.Put(sourceID, destID)
}

func (res *ObjectResult) failed(sourceID, label string, err error) {
	res.Failed = append(res.Failed, report.FailureEntry{SourceID: sourceID, Label: label, Error: err.Error()})
}

// Total returns the number of records processed.
func (res *ObjectResult) Total() int {
	return len(res.Created) + len(res.Updated) + len(res.Failed) + res.Skipped
}

// AddTo merges the result into a run report.
func (res *ObjectResult) AddTo(r *report.Report) {
	for _, entry := range res.Created {
		r.AddCreated(res.Type, entry)
	}
	for _, entry := range res.Updated {
		r.AddUpdated(res.Type, entry)
	}
	for _, entry := range res.Failed {
		r.AddFailed(res.Type, entry)
	}
	r.Count(res.Type.String()+"_created", len(res.Created))
	r.Count(res.Type.String()+"_updated", len(res.Updated))
	r.Count(res.Type.String()+"_failed", len(res.Failed))
	r.Count(res.Type.String()+"_skipped", res.Skipped)
	r.Count(res.Type.String()+"_synced", len(res.Created)+len(res.Updated))
}
