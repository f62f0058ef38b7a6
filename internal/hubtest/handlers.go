package hubtest

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
)

type collectionResponse struct {
	Results any     `json:"results"`
	Paging  *paging `json:"paging,omitempty"`
	Total   int     `json:"total,omitempty"`
}

type paging struct {
	Next pagingNext `json:"next"`
}

type pagingNext struct {
	After string `json:"after"`
}

func (p *Portal) mux() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /crm/v3/objects/{objectType}", p.listObjects)
	mux.HandleFunc("POST /crm/v3/objects/{objectType}", p.createObject)
	mux.HandleFunc("GET /crm/v3/objects/{objectType}/{objectId}", p.getObject)
	mux.HandleFunc("PATCH /crm/v3/objects/{objectType}/{objectId}", p.updateObject)
	mux.HandleFunc("DELETE /crm/v3/objects/{objectType}/{objectId}", p.archiveObject)
	mux.HandleFunc("POST /crm/v3/objects/{objectType}/search", p.searchObjects)
	mux.HandleFunc("POST /crm/v3/objects/{objectType}/batch/read", p.batchReadObjects)
	mux.HandleFunc("GET /crm/v3/objects/{objectType}/{objectId}/associations/{toType}", p.listAssociations)
	mux.HandleFunc("POST /crm/v3/associations/{fromType}/{toType}/batch/create", p.batchCreateAssociations)

	mux.HandleFunc("GET /crm/v3/properties/{objectType}", p.listProperties)
	mux.HandleFunc("POST /crm/v3/properties/{objectType}", p.createProperty)
	mux.HandleFunc("DELETE /crm/v3/properties/{objectType}/{name}", p.deleteProperty)
	mux.HandleFunc("GET /crm/v3/properties/{objectType}/groups", p.listGroups)
	mux.HandleFunc("POST /crm/v3/properties/{objectType}/groups", p.createGroup)

	mux.HandleFunc("GET /crm/v3/pipelines/{objectType}", p.listPipelines)
	mux.HandleFunc("POST /crm/v3/pipelines/{objectType}", p.createPipeline)
	mux.HandleFunc("DELETE /crm/v3/pipelines/{objectType}/{pipelineId}", p.deletePipeline)

	mux.HandleFunc("GET /crm/v3/schemas", p.listSchemas)
	mux.HandleFunc("POST /crm/v3/schemas", p.createSchema)

	return p.requireAuth(mux)
}

func (p *Portal) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+Token {
			writeError(w, http.StatusUnauthorized, "Authentication credentials not found", "INVALID_AUTHENTICATION")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, category string) {
	writeJSON(w, status, map[string]string{
		"status":   "error",
		"message":  message,
		"category": category,
	})
}

func (p *Portal) listObjects(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if v := r.URL.Query().Get("after"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	p.mu.Lock()
	var live []*domain.Object
	for _, obj := range p.objects[objectType] {
		if !obj.Archived {
			live = append(live, copyObject(obj))
		}
	}
	if assocTypes := r.URL.Query().Get("associations"); assocTypes != "" {
		for _, obj := range live {
			p.attachPreviewsLocked(objectType, obj, strings.Split(assocTypes, ","))
		}
	}
	p.mu.Unlock()

	// Ids are assigned in creation order, so newest-first is a reversal.
	if r.URL.Query().Get("sorts") == "createdate:desc" {
		for i, j := 0, len(live)-1; i < j; i, j = i+1, j-1 {
			live[i], live[j] = live[j], live[i]
		}
	}

	if offset > len(live) {
		offset = len(live)
	}
	page := live[offset:]
	resp := collectionResponse{}
	if len(page) > limit {
		page = page[:limit]
		resp.Paging = &paging{Next: pagingNext{After: strconv.Itoa(offset + limit)}}
	}
	resp.Results = page
	writeJSON(w, http.StatusOK, resp)
}

func (p *Portal) createObject(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var body domain.CreateInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Properties == nil {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	obj := copyObject(p.addObjectLocked(domain.ObjectType(objectType), body.Properties))
	p.mu.Unlock()

	writeJSON(w, http.StatusCreated, obj)
}

func (p *Portal) getObject(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")
	objectID := r.PathValue("objectId")

	p.mu.Lock()
	obj := p.findLocked(objectType, objectID)
	if obj != nil {
		obj = copyObject(obj)
	}
	p.mu.Unlock()

	if obj == nil {
		writeError(w, http.StatusNotFound, "Object not found", "OBJECT_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (p *Portal) updateObject(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")
	objectID := r.PathValue("objectId")

	var body domain.UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Properties == nil {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	obj := p.findLocked(objectType, objectID)
	if obj != nil {
		for k, v := range body.Properties {
			obj.Properties[k] = v
		}
		obj = copyObject(obj)
	}
	p.mu.Unlock()

	if obj == nil {
		writeError(w, http.StatusNotFound, "Object not found", "OBJECT_NOT_FOUND")
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func (p *Portal) archiveObject(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")
	objectID := r.PathValue("objectId")

	p.mu.Lock()
	obj := p.findLocked(objectType, objectID)
	if obj != nil {
		obj.Archived = true
	}
	p.mu.Unlock()

	if obj == nil {
		writeError(w, http.StatusNotFound, "Object not found", "OBJECT_NOT_FOUND")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (p *Portal) batchReadObjects(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var body struct {
		Inputs []struct {
			ID string `json:"id"`
		} `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	var results []*domain.Object
	for _, in := range body.Inputs {
		if obj := p.findLocked(objectType, in.ID); obj != nil {
			results = append(results, copyObject(obj))
		}
	}
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: results})
}

// attachPreviewsLocked fills obj.Associations with the stored associations
// toward each requested type; callers hold the lock.
func (p *Portal) attachPreviewsLocked(objectType string, obj *domain.Object, toTypes []string) {
	for _, toType := range toTypes {
		toType = strings.TrimSpace(toType)
		tos := p.assocs[objectType+"/"+toType][obj.ID]
		if len(tos) == 0 {
			continue
		}
		ids := make([]string, 0, len(tos))
		for id := range tos {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		preview := domain.AssociationPreview{}
		for _, id := range ids {
			preview.Results = append(preview.Results, domain.AssociationPreviewEntry{ID: id})
		}
		if obj.Associations == nil {
			obj.Associations = map[string]domain.AssociationPreview{}
		}
		obj.Associations[toType] = preview
	}
}

// findLocked returns the live record with the given id; callers hold the
// lock.
func (p *Portal) findLocked(objectType, id string) *domain.Object {
	for _, obj := range p.objects[objectType] {
		if obj.ID == id && !obj.Archived {
			return obj
		}
	}
	return nil
}

func (p *Portal) listAssociations(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("objectType") + "/" + r.PathValue("toType")
	fromID := r.PathValue("objectId")

	p.mu.Lock()
	var results []domain.AssociationPreviewEntry
	for toID := range p.assocs[key][fromID] {
		results = append(results, domain.AssociationPreviewEntry{ID: toID})
	}
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: results})
}

func (p *Portal) batchCreateAssociations(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("fromType") + "/" + r.PathValue("toType")

	var body struct {
		Inputs []domain.AssociationInput `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Inputs) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	added := 0
	for _, in := range body.Inputs {
		if p.associateLocked(key, in.From.ID, in.To.ID) {
			added++
		}
	}
	p.mu.Unlock()

	if added == 0 {
		// Every pair already existed.
		writeError(w, http.StatusConflict, "Association already exists", "CONFLICT")
		return
	}
	writeJSON(w, http.StatusCreated, domain.AssociationBatchResult{Status: "COMPLETE"})
}

func (p *Portal) listProperties(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	p.mu.Lock()
	defs := append([]domain.Property(nil), p.properties[objectType]...)
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: defs})
}

func (p *Portal) createProperty(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var def domain.Property
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil || def.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.properties[objectType] {
		if existing.Name == def.Name {
			writeError(w, http.StatusConflict, "Property already exists", "OBJECT_ALREADY_EXISTS")
			return
		}
	}
	p.properties[objectType] = append(p.properties[objectType], def)
	writeJSON(w, http.StatusCreated, def)
}

func (p *Portal) deleteProperty(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")
	name := r.PathValue("name")

	p.mu.Lock()
	defer p.mu.Unlock()
	defs := p.properties[objectType]
	for i, def := range defs {
		if def.Name != name {
			continue
		}
		if def.HubspotDefined {
			writeError(w, http.StatusBadRequest, "HubSpot defined properties cannot be deleted", "VALIDATION_ERROR")
			return
		}
		p.properties[objectType] = append(defs[:i], defs[i+1:]...)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeError(w, http.StatusNotFound, "Property not found", "OBJECT_NOT_FOUND")
}

func (p *Portal) listGroups(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	p.mu.Lock()
	groups := append([]domain.PropertyGroup(nil), p.groups[objectType]...)
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: groups})
}

func (p *Portal) createGroup(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var group domain.PropertyGroup
	if err := json.NewDecoder(r.Body).Decode(&group); err != nil || group.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.groups[objectType] {
		if existing.Name == group.Name {
			writeError(w, http.StatusConflict, "Property group already exists", "OBJECT_ALREADY_EXISTS")
			return
		}
	}
	p.groups[objectType] = append(p.groups[objectType], group)
	writeJSON(w, http.StatusCreated, group)
}

func (p *Portal) listPipelines(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	p.mu.Lock()
	pipes := append([]domain.Pipeline(nil), p.pipelines[objectType]...)
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: pipes})
}

func (p *Portal) createPipeline(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var in domain.PipelineInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Label == "" {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.pipelines[objectType] {
		if existing.Label == in.Label {
			writeError(w, http.StatusConflict, "Pipeline already exists", "OBJECT_ALREADY_EXISTS")
			return
		}
	}
	created := p.addPipelineLocked(domain.ObjectType(objectType), domain.Pipeline{
		Label:        in.Label,
		DisplayOrder: in.DisplayOrder,
		Stages:       in.Stages,
	})
	writeJSON(w, http.StatusCreated, created)
}

func (p *Portal) deletePipeline(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")
	pipelineID := r.PathValue("pipelineId")

	if pipelineID == domain.ObjectType(objectType).DefaultPipelineID() {
		writeError(w, http.StatusBadRequest, "Default pipeline cannot be deleted", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	pipes := p.pipelines[objectType]
	for i, pipe := range pipes {
		if pipe.ID == pipelineID {
			p.pipelines[objectType] = append(pipes[:i], pipes[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "Pipeline not found", "OBJECT_NOT_FOUND")
}

func (p *Portal) listSchemas(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	schemas := append([]domain.ObjectSchema(nil), p.schemas...)
	p.mu.Unlock()

	writeJSON(w, http.StatusOK, collectionResponse{Results: schemas})
}

func (p *Portal) createSchema(w http.ResponseWriter, r *http.Request) {
	var schema domain.ObjectSchema
	if err := json.NewDecoder(r.Body).Decode(&schema); err != nil || schema.Name == "" {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, existing := range p.schemas {
		if existing.Name == schema.Name {
			writeError(w, http.StatusConflict, "Schema already exists", "OBJECT_ALREADY_EXISTS")
			return
		}
	}
	if schema.FullyQualifiedName == "" {
		schema.FullyQualifiedName = schema.Name
	}
	p.schemas = append(p.schemas, schema)
	writeJSON(w, http.StatusCreated, schema)
}
