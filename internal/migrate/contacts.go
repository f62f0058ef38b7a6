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

// keyContactProperties are verified after a contact create. HubSpot
// occasionally drops properties submitted alongside a create when the
// portal is still provisioning them, so these get a follow-up patch when
// the created record comes back without them.
var keyContactProperties = []string{
	"phone", "mobilephone", "company", "jobtitle",
	"website", "city", "state", "country",
}

// ContactMigrator copies contacts from the source portal, deduplicating by
// email address.
type ContactMigrator struct {
	base
	policy filter.Policy
}

// NewContactMigrator returns a contact migrator over the two portals.
func NewContactMigrator(source, dest *hubspot.Client, opts Options) *ContactMigrator {
	return &ContactMigrator{base: newBase(source, dest, opts), policy: filter.ContactPolicy()}
}

// SafeProperties returns the names of source contact properties worth
// requesting: the writable set plus the dedup key.
func (m *ContactMigrator) SafeProperties(ctx context.Context) ([]string, error) {
	defs, err := m.source.ListProperties(ctx, domain.TypeContact)
	if err != nil {
		return nil, fmt.Errorf("fetch source contact properties: %w", err)
	}
	return m.policy.SafePropertyNames(defs), nil
}

// Migrate copies up to opts.Limit contacts. A contact whose email already
// exists at the destination is patched rather than duplicated; per-record
// failures are recorded and the batch continues.
func (m *ContactMigrator) Migrate(ctx context.Context) (*ObjectResult, error) {
	names, err := m.SafeProperties(ctx)
	if err != nil {
		return nil, err
	}
	records, err := m.listAll(ctx, m.source, domain.TypeContact, domain.ListOpts{Properties: names}, m.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch source contacts: %w", err)
	}
	return m.MigrateRecords(ctx, records), nil
}

// MigrateRecords migrates an already-fetched set of source contacts.
func (m *ContactMigrator) MigrateRecords(ctx context.Context, records []*domain.Object) *ObjectResult {
	slog.Info("migrating contacts", "count", len(records))

	res := newObjectResult(domain.TypeContact)
	for _, src := range records {
		email := strings.ToLower(strings.TrimSpace(src.Property("email")))
		if email == "" && m.opts.SkipContactsWithoutEmail {
			res.Skipped++
			continue
		}

		props := m.policy.FilterProperties(src.Properties, false)
		if len(props) == 0 {
			res.Skipped++
			continue
		}

		var existing *domain.Object
		if email != "" {
			existing = searchOne(ctx, m.dest, domain.TypeContact, domain.EqFilter("email", email, "email"))
		}

		written := m.upsert(ctx, domain.TypeContact, m.policy, src, existing, props, contactLabel(src, email), res)
		if written != nil && existing == nil {
			m.verifyKeyProperties(ctx, domain.TypeContact, written.ID, keyContactProperties, props)
		}
		m.pause()
	}

	slog.Info("contact migration complete",
		"created", len(res.Created),
		"updated", len(res.Updated),
		"failed", len(res.Failed),
		"skipped", res.Skipped,
	)
	return res
}

func contactLabel(src *domain.Object, email string) string {
	if email != "" {
		return email
	}
	name := strings.TrimSpace(src.Property("firstname") + " " + src.Property("lastname"))
	if name != "" {
		return name
	}
	return "contact " + src.ID
}
