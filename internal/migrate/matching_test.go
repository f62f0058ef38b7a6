package migrate

import (
	"reflect"
	"testing"

	"github.com/johnwards/hubsync/internal/domain"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Example.com", "example.com"},
		{"https://www.example.com/about", "example.com"},
		{"http://example.com:8080", "example.com"},
		{"www.example.co.uk", "example.co.uk"},
		{"  example.com  ", "example.com"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(555) 010-0100", "5550100100"},
		{"+1 555 010 0100", "5550100100"},
		{"1-555-010-0100", "5550100100"},
		{"555.010.0100", "5550100100"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeyTerms(t *testing.T) {
	got := KeyTerms("The Acme Widget Company, Inc.")
	want := []string{"widget", "acme"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("KeyTerms = %v, want %v", got, want)
	}

	if terms := KeyTerms("Inc LLC Co"); len(terms) != 0 {
		t.Errorf("KeyTerms of all stop words = %v, want empty", terms)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		min  float64
		max  float64
	}{
		{"Acme Corp", "acme corp", 1, 1},
		{"Acme International Holdings", "Acme International Holdings LLC", 0.7, 0.95},
		{"Acme Widget Factory", "Acme Widget Works", 0.3, 0.6},
		{"Acme", "Globex", 0, 0},
		{"", "Acme", 0, 0},
	}
	for _, tt := range tests {
		got := Similarity(tt.a, tt.b)
		if got < tt.min || got > tt.max {
			t.Errorf("Similarity(%q, %q) = %v, want in [%v, %v]", tt.a, tt.b, got, tt.min, tt.max)
		}
	}
}

func TestBestMatch(t *testing.T) {
	candidates := []*domain.Object{
		{ID: "1", Properties: map[string]string{"name": "Globex Corporation"}},
		{ID: "2", Properties: map[string]string{"name": "Acme International Holdings"}},
		{ID: "3", Properties: map[string]string{}},
	}

	if got := BestMatch("Acme International Holdings LLC", candidates, 0.7); got == nil || got.ID != "2" {
		t.Errorf("BestMatch = %v, want candidate 2", got)
	}
	if got := BestMatch("Completely Different Name", candidates, 0.7); got != nil {
		t.Errorf("BestMatch below threshold = %v, want nil", got)
	}
}
