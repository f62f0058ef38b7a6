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

// keyCompanyProperties are verified after a company create, same as
// keyContactProperties for contacts.
var keyCompanyProperties = []string{
	"domain", "phone", "city", "state", "country", "industry", "website",
}

// CompanyMigrator copies companies from the source portal. Companies have
// no single unique key, so duplicate detection runs a chain of heuristics:
// normalized domain, exact name, normalized phone, then fuzzy name matching
// for names long enough to be distinctive.
type CompanyMigrator struct {
	base
	policy filter.Policy
}

// NewCompanyMigrator returns a company migrator over the two portals.
func NewCompanyMigrator(source, dest *hubspot.Client, opts Options) *CompanyMigrator {
	return &CompanyMigrator{base: newBase(source, dest, opts), policy: filter.CompanyPolicy()}
}

// SafeProperties returns the names of source company properties worth
// requesting.
func (m *CompanyMigrator) SafeProperties(ctx context.Context) ([]string, error) {
	defs, err := m.source.ListProperties(ctx, domain.TypeCompany)
	if err != nil {
		return nil, fmt.Errorf("fetch source company properties: %w", err)
	}
	return m.policy.SafePropertyNames(defs), nil
}

// Migrate copies up to opts.Limit companies, patching matched twins instead
// of duplicating them.
func (m *CompanyMigrator) Migrate(ctx context.Context) (*ObjectResult, error) {
	names, err := m.SafeProperties(ctx)
	if err != nil {
		return nil, err
	}
	records, err := m.listAll(ctx, m.source, domain.TypeCompany, domain.ListOpts{Properties: names}, m.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch source companies: %w", err)
	}
	return m.MigrateRecords(ctx, records), nil
}

// MigrateRecords migrates an already-fetched set of source companies.
func (m *CompanyMigrator) MigrateRecords(ctx context.Context, records []*domain.Object) *ObjectResult {
	slog.Info("migrating companies", "count", len(records))

	res := newObjectResult(domain.TypeCompany)
	for _, src := range records {
		props := m.policy.FilterProperties(src.Properties, false)
		if len(props) == 0 {
			res.Skipped++
			continue
		}

		existing := m.findExisting(ctx, src)
		written := m.upsert(ctx, domain.TypeCompany, m.policy, src, existing, props, companyLabel(src), res)
		if written != nil && existing == nil {
			m.verifyKeyProperties(ctx, domain.TypeCompany, written.ID, keyCompanyProperties, props)
		}
		m.pause()
	}

	slog.Info("company migration complete",
		"created", len(res.Created),
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"skipped", res.Skipped,
	)
	return res
}

// findExisting runs the duplicate detection chain against the destination.
// Each rung only fires when the source record carries the field it needs.
func (m *CompanyMigrator) findExisting(ctx context.Context, src *domain.Object) *domain.Object {
	if domainName := NormalizeDomain(src.Property("domain")); domainName != "" {
		if match := searchOne(ctx, m.dest, domain.TypeCompany, domain.EqFilter("domain", domainName, "domain", "name")); match != nil {
			return match
		}
		// Stored domains are not always normalized.
		if raw := strings.TrimSpace(src.Property("domain")); raw != "" && raw != domainName {
			if match := searchOne(ctx, m.dest, domain.TypeCompany, domain.EqFilter("domain", raw, "domain", "name")); match != nil {
				return match
			}
		}
	}

	name := strings.TrimSpace(src.Property("name"))
	if name != "" {
		if match := searchOne(ctx, m.dest, domain.TypeCompany, domain.EqFilter("name", name, "name")); match != nil {
			return match
		}
	}

	if phone := NormalizePhone(src.Property("phone")); phone != "" {
		candidates := searchMany(ctx, m.dest, domain.TypeCompany, domain.SearchRequest{
			FilterGroups: []domain.FilterGroup{{Filters: []domain.Filter{{
				PropertyName: "phone",
				Operator:     domain.OpContainsToken,
				Value:        src.Property("phone"),
			}}}},
			Properties: []string{"phone", "name"},
		}, 10)
		for _, candidate := range candidates {
			if NormalizePhone(candidate.Property("phone")) == phone {
				return candidate
			}
		}
	}

	// Fuzzy matching only for distinctive names; short names like "Acme"
	// collide too easily.
	if len(name) > m.opts.MinFuzzyNameLen {
		terms := KeyTerms(name)
		if len(terms) > 0 {
			candidates := searchMany(ctx, m.dest, domain.TypeCompany, domain.SearchRequest{
				FilterGroups: []domain.FilterGroup{{Filters: []domain.Filter{{
					PropertyName: "name",
					Operator:     domain.OpContainsToken,
					Value:        terms[0],
				}}}},
				Properties: []string{"name"},
			}, 10)
			if match := BestMatch(name, candidates, m.opts.SimilarityThreshold); match != nil {
				return match
			}
		}
	}

	return nil
}

func companyLabel(src *domain.Object) string {
	if name := strings.TrimSpace(src.Property("name")); name != "" {
		return name
	}
	if domainName := src.Property("domain"); domainName != "" {
		return domainName
	}
	return "company " + src.ID
}
