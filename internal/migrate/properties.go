package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/johnwards/hubsync/internal/domain"
	"github.com/johnwards/hubsync/internal/hubspot"
	"github.com/johnwards/hubsync/internal/report"
)

// PropertySyncer ensures the destination portal has every custom property
// and property group the source portal has for one object type. Platform
// managed (hubspotDefined) and system-prefixed properties cannot be
// recreated and are skipped.
type PropertySyncer struct {
	base
	objectType domain.ObjectType
}

// NewPropertySyncer returns a syncer for the given object type.
func NewPropertySyncer(source, dest *hubspot.Client, t domain.ObjectType, opts Options) *PropertySyncer {
	return &PropertySyncer{base: newBase(source, dest, opts), objectType: t}
}

// PropertySyncResult summarizes one property sync pass.
type PropertySyncResult struct {
	Type          domain.ObjectType
	Created       int
	Skipped       int
	Failed        int
	Total         int
	CreatedNames  []string
	CreatedGroups []string
	Failures      []report.FailureEntry
}

// AddTo merges the result into a run report.
func (res *PropertySyncResult) AddTo(r *report.Report) {
	for _, name := range res.CreatedNames {
		r.AddCreatedProperty(res.Type, name)
	}
	r.Count(res.Type.String()+"_properties_created", res.Created)
	r.Count(res.Type.String()+"_properties_skipped", res.Skipped)
	r.Count(res.Type.String()+"_properties_failed", res.Failed)
	for _, f := range res.Failures {
		r.AddError(fmt.Sprintf("%s property %s: %s", res.Type, f.Label, f.Error))
	}
}

// Sync fetches both portals' property lists, creates what is missing at the
// destination, and reports counts. Re-running against an already synced
// destination creates nothing.
func (s *PropertySyncer) Sync(ctx context.Context) (*PropertySyncResult, error) {
	sourceProps, err := s.source.ListProperties(ctx, s.objectType)
	if err != nil {
		return nil, fmt.Errorf("fetch source %s properties: %w", s.objectType, err)
	}
	destProps, err := s.dest.ListProperties(ctx, s.objectType)
	if err != nil {
		return nil, fmt.Errorf("fetch destination %s properties: %w", s.objectType, err)
	}

	if err := s.syncGroups(ctx); err != nil {
		// Group creation failing is not fatal: properties fall back to
		// their default group.
		slog.Warn("property group sync failed", "type", s.objectType, "error", err)
	}

	destNames := make(map[string]struct{}, len(destProps))
	for _, p := range destProps {
		destNames[p.Name] = struct{}{}
	}

	res := &PropertySyncResult{Type: s.objectType, Total: len(sourceProps)}
	for _, prop := range sourceProps {
		if _, exists := destNames[prop.Name]; exists {
			res.Skipped++
			continue
		}
		if !transferable(prop) {
			res.Skipped++
			continue
		}

		if _, err := s.dest.CreateProperty(ctx, s.objectType, creationPayload(prop)); err != nil {
			res.Failed++
			res.Failures = append(res.Failures, report.FailureEntry{Label: prop.Name, Error: err.Error()})
			slog.Warn("property create failed", "type", s.objectType, "name", prop.Name, "error", err)
			continue
		}
		res.Created++
		res.CreatedNames = append(res.CreatedNames, prop.Name)
		fmt.Printf("  + property %s.%s\n", s.objectType, prop.Name)
		s.pause()
	}

	slog.Info("property sync complete",
		"type", s.objectType,
		"created", res.Created,
		"skipped", res.Skipped,
		"failed", res.Failed,
	)
	return res, nil
}

func (s *PropertySyncer) syncGroups(ctx context.Context) error {
	sourceGroups, err := s.source.ListPropertyGroups(ctx, s.objectType)
	if err != nil {
		return err
	}
	destGroups, err := s.dest.ListPropertyGroups(ctx, s.objectType)
	if err != nil {
		return err
	}
	destNames := make(map[string]struct{}, len(destGroups))
	for _, g := range destGroups {
		destNames[g.Name] = struct{}{}
	}
	for _, group := range sourceGroups {
		if _, exists := destNames[group.Name]; exists {
			continue
		}
		if strings.HasPrefix(group.Name, "hs_") || group.Name == "hubspotdefined_informations" {
			continue
		}
		if _, err := s.dest.CreatePropertyGroup(ctx, s.objectType, domain.PropertyGroup{
			Name:         group.Name,
			Label:        group.Label,
			DisplayOrder: group.DisplayOrder,
		}); err != nil {
			slog.Warn("property group create failed", "type", s.objectType, "name", group.Name, "error", err)
		}
	}
	return nil
}

// transferable reports whether a property definition can be recreated in
// another portal.
func transferable(p domain.Property) bool {
	if p.HubspotDefined || p.Calculated {
		return false
	}
	if strings.HasPrefix(p.Name, "hs_") || strings.HasPrefix(p.Name, "hubspot_") {
		return false
	}
	return true
}

// creationPayload keeps only the fields the properties API accepts on
// create.
func creationPayload(p domain.Property) domain.Property {
	return domain.Property{
		Name:                 p.Name,
		Label:                p.Label,
		Type:                 p.Type,
		FieldType:            p.FieldType,
		Description:          p.Description,
		GroupName:            p.GroupName,
		Options:              p.Options,
		DisplayOrder:         p.DisplayOrder,
		ReferencedObjectType: p.ReferencedObjectType,
		ExternalOptions:      p.ExternalOptions,
	}
}
