package filter

import (
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestContactPolicyReadOnlyNames(t *testing.T) {
	policy := ContactPolicy()

	blocked := []string{
		"createdate",
		"lastmodifieddate",
		"hs_object_id",
		"hubspot_owner_id",
		"hs_analytics_source",
		"hs_email_domain",
		"num_conversion_events",
		"recent_conversion_date",
		"some_custom_field_id",
	}
	for _, name := range blocked {
		if policy.IsWritableName(name) {
			t.Errorf("IsWritableName(%q) = true, want false", name)
		}
	}
}

func TestContactPolicyCoreFieldsAlwaysWritable(t *testing.T) {
	policy := ContactPolicy()

	core := []string{"email", "firstname", "lastname", "phone", "company", "jobtitle"}
	for _, name := range core {
		if !policy.IsWritableName(name) {
			t.Errorf("IsWritableName(%q) = false, want true", name)
		}
		// Core fields win even when the portal flags them hubspotDefined.
		def := domain.Property{Name: name, HubspotDefined: true}
		if !policy.IsWritable(def) {
			t.Errorf("IsWritable(%q with hubspotDefined) = false, want true", name)
		}
	}
}

func TestIsWritableRejectsFlaggedDefinitions(t *testing.T) {
	policy := ContactPolicy()

	tests := []struct {
		name string
		def  domain.Property
	}{
		{"hubspotDefined", domain.Property{Name: "custom_field", HubspotDefined: true}},
		{"readOnlyValue", domain.Property{Name: "custom_field", ReadOnlyValue: true}},
		{"calculated", domain.Property{Name: "custom_field", Calculated: true}},
		{"metadata readonly", domain.Property{
			Name:                 "custom_field",
			ModificationMetadata: &domain.ModificationMetadata{ReadOnlyValue: true},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if policy.IsWritable(tt.def) {
				t.Errorf("IsWritable(%+v) = true, want false", tt.def)
			}
		})
	}
}

func TestIDSuffixExceptions(t *testing.T) {
	policy := ContactPolicy()

	for _, name := range []string{"email", "phone", "mobile"} {
		if !policy.IsWritableName(name) {
			t.Errorf("IsWritableName(%q) = false, want true", name)
		}
	}
	if policy.IsWritableName("external_system_id") {
		t.Error("IsWritableName(external_system_id) = true, want false")
	}
}

func TestCleanValue(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"hello", "hello", true},
		{"  spaced  ", "spaced", true},
		{"", "", false},
		{"   ", "", false},
		{"none", "", false},
		{"None", "", false},
		{"NULL", "", false},
		{"null", "", false},
		{"0", "0", true},
	}
	for _, tt := range tests {
		got, ok := CleanValue(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("CleanValue(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCleanValueIdempotent(t *testing.T) {
	inputs := []string{"hello", "  spaced  ", "", "none", "NULL", "a b c"}
	for _, in := range inputs {
		once, ok1 := CleanValue(in)
		if !ok1 {
			continue
		}
		twice, ok2 := CleanValue(once)
		if !ok2 || twice != once {
			t.Errorf("CleanValue not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestFilterPropertiesStripsDedupKeyOnUpdate(t *testing.T) {
	policy := ContactPolicy()
	raw := map[string]string{
		"email":     "a@b.com",
		"firstname": "Ada",
		"phone":     "555-0100",
	}

	created := policy.FilterProperties(raw, false)
	if created["email"] != "a@b.com" {
		t.Errorf("create filter dropped email: %v", created)
	}

	updated := policy.FilterProperties(raw, true)
	if _, ok := updated["email"]; ok {
		t.Errorf("update filter kept dedup key email: %v", updated)
	}
	if updated["firstname"] != "Ada" {
		t.Errorf("update filter lost firstname: %v", updated)
	}
}

func TestFilterPropertiesDropsEmptyAndSystem(t *testing.T) {
	policy := ContactPolicy()
	raw := map[string]string{
		"firstname":        "Ada",
		"lastname":         "",
		"jobtitle":         "none",
		"hs_object_id":     "123",
		"hubspot_owner_id": "9",
	}

	got := policy.FilterProperties(raw, false)
	if len(got) != 1 || got["firstname"] != "Ada" {
		t.Errorf("FilterProperties = %v, want only firstname", got)
	}
}

func TestSafePropertyNamesIncludesDedupKey(t *testing.T) {
	policy := CompanyPolicy()
	defs := []domain.Property{
		{Name: "name"},
		{Name: "hs_analytics_source"},
		{Name: "city"},
	}

	names := policy.SafePropertyNames(defs)
	var hasDomain, hasAnalytics bool
	for _, n := range names {
		if n == "domain" {
			hasDomain = true
		}
		if n == "hs_analytics_source" {
			hasAnalytics = true
		}
	}
	if !hasDomain {
		t.Errorf("SafePropertyNames missing dedup key domain: %v", names)
	}
	if hasAnalytics {
		t.Errorf("SafePropertyNames kept analytics field: %v", names)
	}
}
