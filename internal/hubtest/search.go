package hubtest

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
)

func (p *Portal) searchObjects(w http.ResponseWriter, r *http.Request) {
	objectType := r.PathValue("objectType")

	var req domain.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input JSON", "VALIDATION_ERROR")
		return
	}

	p.mu.Lock()
	var matched []*domain.Object
	for _, obj := range p.objects[objectType] {
		if obj.Archived {
			continue
		}
		if matchesSearch(obj, req) {
			matched = append(matched, copyObject(obj))
		}
	}
	p.mu.Unlock()

	total := len(matched)
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	writeJSON(w, http.StatusOK, domain.SearchResult{Total: total, Results: matched})
}

// matchesSearch applies the filter groups: groups combine with OR, filters
// within a group with AND. No filter groups matches everything.
func matchesSearch(obj *domain.Object, req domain.SearchRequest) bool {
	if len(req.FilterGroups) == 0 {
		return true
	}
	for _, group := range req.FilterGroups {
		if matchesGroup(obj, group) {
			return true
		}
	}
	return false
}

func matchesGroup(obj *domain.Object, group domain.FilterGroup) bool {
	for _, f := range group.Filters {
		if !matchesFilter(obj, f) {
			return false
		}
	}
	return true
}

func matchesFilter(obj *domain.Object, f domain.Filter) bool {
	value := obj.Property(f.PropertyName)

	switch f.Operator {
	case domain.OpEq:
		return strings.EqualFold(value, f.Value)

	case domain.OpContainsToken:
		for _, token := range strings.Fields(strings.ToLower(value)) {
			if token == strings.ToLower(f.Value) {
				return true
			}
		}
		return false

	case domain.OpGte:
		if a, errA := strconv.ParseFloat(value, 64); errA == nil {
			if b, errB := strconv.ParseFloat(f.Value, 64); errB == nil {
				return a >= b
			}
		}
		return value >= f.Value

	case domain.OpIn:
		for _, candidate := range f.Values {
			if strings.EqualFold(value, candidate) {
				return true
			}
		}
		return false

	default:
		return false
	}
}
