// Package hubtest is an in-memory stand-in for a HubSpot portal, serving
// the slice of the CRM v3 API the migration tool calls: object CRUD and
// search, properties and groups, pipelines, schemas, and associations.
// Tests start two portals, seed one, and run migrations between them over
// real HTTP.
package hubtest

import (
	"fmt"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
)

// Token is the bearer token every test portal accepts.
const Token = "pat-na1-00000000-0000-0000-0000-000000000000"

// Portal holds one fake portal's state behind a mutex and serves it over
// an httptest server.
type Portal struct {
	mu sync.Mutex

	seq        int
	objects    map[string][]*domain.Object
	properties map[string][]domain.Property
	groups     map[string][]domain.PropertyGroup
	pipelines  map[string][]domain.Pipeline
	pipeSeq    int
	schemas    []domain.ObjectSchema

	// assocs is keyed "fromType/toType" -> fromID -> toID set.
	assocs map[string]map[string]map[string]bool

	srv *httptest.Server
}

// NewPortal starts an empty portal with the standard default pipelines
// (deals "default", tickets "0") and shuts it down when the test ends.
func NewPortal(t *testing.T) *Portal {
	t.Helper()

	p := &Portal{
		objects:    map[string][]*domain.Object{},
		properties: map[string][]domain.Property{},
		groups:     map[string][]domain.PropertyGroup{},
		pipelines:  map[string][]domain.Pipeline{},
		assocs:     map[string]map[string]map[string]bool{},
	}
	p.pipelines[domain.TypeDeal.String()] = []domain.Pipeline{{
		ID:    "default",
		Label: "Sales Pipeline",
		Stages: []domain.PipelineStage{
			{ID: "appointmentscheduled", Label: "Appointment Scheduled", DisplayOrder: 0, Metadata: map[string]string{"probability": "0.2"}},
			{ID: "closedwon", Label: "Closed Won", DisplayOrder: 1, Metadata: map[string]string{"probability": "1.0", "isClosed": "true", "closeWon": "true"}},
			{ID: "closedlost", Label: "Closed Lost", DisplayOrder: 2, Metadata: map[string]string{"probability": "0.0", "isClosed": "true"}},
		},
	}}
	p.pipelines[domain.TypeTicket.String()] = []domain.Pipeline{{
		ID:    "0",
		Label: "Support Pipeline",
		Stages: []domain.PipelineStage{
			{ID: "1", Label: "New", DisplayOrder: 0, Metadata: map[string]string{}},
			{ID: "4", Label: "Closed", DisplayOrder: 3, Metadata: map[string]string{"isClosed": "true"}},
		},
	}}

	p.srv = httptest.NewServer(p.mux())
	t.Cleanup(p.srv.Close)
	return p
}

// URL returns the portal's base URL.
func (p *Portal) URL() string { return p.srv.URL }

// Client returns an API client pointed at this portal with retry sleeps
// disabled.
func (p *Portal) Client() *hubspot.Client {
	return hubspot.New(Token,
		hubspot.WithBaseURL(p.srv.URL),
		hubspot.WithSleep(func(time.Duration) {}),
	)
}

// AddObject seeds a record and returns its id.
func (p *Portal) AddObject(t domain.ObjectType, props map[string]string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addObjectLocked(t, props).ID
}

func (p *Portal) addObjectLocked(t domain.ObjectType, props map[string]string) *domain.Object {
	p.seq++
	copied := make(map[string]string, len(props))
	for k, v := range props {
		copied[k] = v
	}
	obj := &domain.Object{
		ID:         strconv.Itoa(100 + p.seq),
		Properties: copied,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	p.objects[t.String()] = append(p.objects[t.String()], obj)
	return obj
}

// SetProperties seeds the property definitions for an object type.
func (p *Portal) SetProperties(t domain.ObjectType, defs []domain.Property) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.properties[t.String()] = append([]domain.Property(nil), defs...)
}

// AddPipeline seeds a pipeline, assigning ids where missing, and returns
// the stored value.
func (p *Portal) AddPipeline(t domain.ObjectType, pipe domain.Pipeline) domain.Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.addPipelineLocked(t, pipe)
}

func (p *Portal) addPipelineLocked(t domain.ObjectType, pipe domain.Pipeline) domain.Pipeline {
	if pipe.ID == "" {
		p.pipeSeq++
		pipe.ID = fmt.Sprintf("p%d", p.pipeSeq)
	}
	for i := range pipe.Stages {
		if pipe.Stages[i].ID == "" {
			pipe.Stages[i].ID = fmt.Sprintf("%s-%d", pipe.ID, i+1)
		}
		if pipe.Stages[i].Metadata == nil {
			pipe.Stages[i].Metadata = map[string]string{}
		}
	}
	p.pipelines[t.String()] = append(p.pipelines[t.String()], pipe)
	return pipe
}

// AddSchema seeds a custom object schema.
func (p *Portal) AddSchema(s domain.ObjectSchema) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.schemas = append(p.schemas, s)
}

// Associate seeds an association between two records.
func (p *Portal) Associate(spec domain.AssociationSpec, fromID, toID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.associateLocked(specKey(spec), fromID, toID)
}

func (p *Portal) associateLocked(key, fromID, toID string) bool {
	froms, ok := p.assocs[key]
	if !ok {
		froms = map[string]map[string]bool{}
		p.assocs[key] = froms
	}
	tos, ok := froms[fromID]
	if !ok {
		tos = map[string]bool{}
		froms[fromID] = tos
	}
	if tos[toID] {
		return false
	}
	tos[toID] = true
	return true
}

// Objects returns copies of all live records of a type, insertion order.
func (p *Portal) Objects(t domain.ObjectType) []*domain.Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*domain.Object
	for _, obj := range p.objects[t.String()] {
		if obj.Archived {
			continue
		}
		out = append(out, copyObject(obj))
	}
	return out
}

// FindByProperty returns the first live record whose property equals value,
// or nil.
func (p *Portal) FindByProperty(t domain.ObjectType, name, value string) *domain.Object {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, obj := range p.objects[t.String()] {
		if !obj.Archived && obj.Properties[name] == value {
			return copyObject(obj)
		}
	}
	return nil
}

// AssociationPairs returns all stored (fromID, toID) pairs for a spec,
// sorted for stable assertions.
func (p *Portal) AssociationPairs(spec domain.AssociationSpec) [][2]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var pairs [][2]string
	for fromID, tos := range p.assocs[specKey(spec)] {
		for toID := range tos {
			pairs = append(pairs, [2]string{fromID, toID})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i][0] != pairs[j][0] {
			return pairs[i][0] < pairs[j][0]
		}
		return pairs[i][1] < pairs[j][1]
	})
	return pairs
}

// Pipelines returns the stored pipelines for a type.
func (p *Portal) Pipelines(t domain.ObjectType) []domain.Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Pipeline(nil), p.pipelines[t.String()]...)
}

// PropertyNames returns the names of the stored property definitions for a
// type, sorted.
func (p *Portal) PropertyNames(t domain.ObjectType) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var names []string
	for _, def := range p.properties[t.String()] {
		names = append(names, def.Name)
	}
	sort.Strings(names)
	return names
}

func specKey(spec domain.AssociationSpec) string {
	return spec.From.String() + "/" + spec.To.String()
}

func copyObject(obj *domain.Object) *domain.Object {
	props := make(map[string]string, len(obj.Properties))
	for k, v := range obj.Properties {
		props[k] = v
	}
	return &domain.Object{ID: obj.ID, Properties: props, CreatedAt: obj.CreatedAt, Archived: obj.Archived}
}
