// Package filter classifies CRM properties into writable and read-only for
// cross-portal migration. Read-only, calculated, analytics, and
// production-specific identifier fields must never be written to the
// destination portal; each object type carries its own Policy value.
package filter

import (
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
)

// Policy is an immutable per-object-type classification of which properties
// are safe to write. IsWritable is a pure function of the policy and the
// property metadata.
type Policy struct {
	objectType domain.ObjectType

	// coreFields are always writable, even when the portal flags them
	// hubspotDefined. Certain standard fields (email, firstname, ...)
	// carry that flag yet remain user-writable.
	coreFields set

	systemPrefixes        []string
	readonlyPrefixes      []string
	readonlyExactFields   set
	productionIdentifiers set
	analyticsFields       set

	// dedupKey is the property used to find the destination twin of a
	// record. Updates never overwrite it.
	dedupKey string
}

type set map[string]struct{}

func newSet(names ...string) set {
	s := make(set, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s set) has(name string) bool {
	_, ok := s[name]
	return ok
}

// idSuffixExceptions are names ending in "_id" that are nonetheless valid
// cross-portal values.
var idSuffixExceptions = newSet("email", "phone", "mobile")

// sharedReadonlyPrefixes mark derived/rollup fields outside the hs_
// namespace.
var sharedReadonlyPrefixes = []string{"num_", "first_", "recent_", "last_", "total_"}

// ObjectType returns the object type the policy applies to.
func (p Policy) ObjectType() domain.ObjectType { return p.objectType }

// DedupKey returns the property updates must never overwrite.
func (p Policy) DedupKey() string { return p.dedupKey }

// IsWritableName classifies a property by name alone, without definition
// metadata. Used when filtering raw record property maps.
func (p Policy) IsWritableName(name string) bool {
	name = strings.ToLower(name)

	if p.coreFields.has(name) {
		return true
	}
	return p.nameAllowed(name)
}

// IsWritable classifies a full property definition. Core fields win over
// every flag; otherwise hubspotDefined, readOnlyValue, and calculated
// definitions are rejected before the name heuristics run.
func (p Policy) IsWritable(prop domain.Property) bool {
	name := strings.ToLower(prop.Name)

	if p.coreFields.has(name) {
		return true
	}
	if prop.HubspotDefined || prop.IsReadOnly() {
		return false
	}
	return p.nameAllowed(name)
}

func (p Policy) nameAllowed(name string) bool {
	if p.readonlyExactFields.has(name) ||
		p.productionIdentifiers.has(name) ||
		p.analyticsFields.has(name) {
		return false
	}
	for _, prefix := range p.systemPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	for _, prefix := range p.readonlyPrefixes {
		if strings.HasPrefix(name, prefix) {
			return false
		}
	}
	if strings.HasSuffix(name, "_id") && !idSuffixExceptions.has(name) {
		return false
	}
	return true
}

// CleanValue normalizes a raw property value for transmission. Empty
// strings and the literal "none"/"null" (any case) are reported absent.
func CleanValue(value string) (string, bool) {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "", "none", "null":
		return "", false
	}
	return trimmed, true
}

// FilterProperties returns the writable subset of raw with cleaned values.
// On update the dedup key is stripped so it is never overwritten after
// creation.
func (p Policy) FilterProperties(raw map[string]string, isUpdate bool) map[string]string {
	filtered := make(map[string]string)
	for name, value := range raw {
		if !p.IsWritableName(name) {
			continue
		}
		cleaned, ok := CleanValue(value)
		if !ok {
			continue
		}
		filtered[name] = cleaned
	}
	if isUpdate && p.dedupKey != "" {
		delete(filtered, p.dedupKey)
	}
	return filtered
}

// SafePropertyNames returns the names of all writable properties from the
// full definition list, always including the dedup key so records can be
// matched (it is stripped again on update).
func (p Policy) SafePropertyNames(defs []domain.Property) []string {
	names := make([]string, 0, len(defs))
	seen := make(set, len(defs))
	for _, def := range defs {
		if p.IsWritable(def) {
			names = append(names, def.Name)
			seen[strings.ToLower(def.Name)] = struct{}{}
		}
	}
	if p.dedupKey != "" && !seen.has(p.dedupKey) {
		names = append(names, p.dedupKey)
	}
	return names
}
