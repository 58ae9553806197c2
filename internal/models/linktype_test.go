package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// TestParseLinkFilter covers repeated and comma-separated values and the
// exclusive not-applicable filter.
func TestParseLinkFilter(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   LinkFilter
	}{
		{name: "none", values: nil, want: LinkFilter{}},
		{name: "single", values: []string{"direct"}, want: LinkFilter{Direct: true}},
		{name: "csv", values: []string{"direct,global"}, want: LinkFilter{Direct: true, Global: true}},
		{name: "repeated", values: []string{"inherited", "global"}, want: LinkFilter{Inherited: true, Global: true}},
		{name: "spaces and blanks", values: []string{" direct , ,inherited"}, want: LinkFilter{Direct: true, Inherited: true}},
		{name: "not-applicable wins", values: []string{"direct", "not-applicable"}, want: LinkFilter{NotApplicable: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLinkFilter(tt.values)
			if err != nil {
				t.Fatalf("ParseLinkFilter(%q) error: %v", tt.values, err)
			}
			if got != tt.want {
				t.Errorf("ParseLinkFilter(%q) = %+v, want %+v", tt.values, got, tt.want)
			}
		})
	}
}

// TestParseLinkFilterRejectsUnknown verifies that every unknown value is
// reported at once.
func TestParseLinkFilterRejectsUnknown(t *testing.T) {
	_, err := ParseLinkFilter([]string{"direct,foo", "bar"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.IDs) != 2 || ve.IDs[0] != "foo" || ve.IDs[1] != "bar" {
		t.Errorf("IDs = %q, want [foo bar]", ve.IDs)
	}
}

// TestApplicabilityDepth verifies that only direct and inherited carry a
// depth.
func TestApplicabilityDepth(t *testing.T) {
	tests := []struct {
		name       string
		a          Applicability
		kind       LinkKind
		depth      int
		hasDepth   bool
		applicable bool
	}{
		{name: "direct", a: Direct(), kind: LinkDirect, depth: 0, hasDepth: true, applicable: true},
		{name: "inherited", a: Inherited(2), kind: LinkInherited, depth: 2, hasDepth: true, applicable: true},
		{name: "global", a: Global(), kind: LinkGlobal, applicable: true},
		{name: "none", a: NotApplicable(), kind: LinkNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.a.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", tt.a.Kind(), tt.kind)
			}
			d, ok := tt.a.Depth()
			if ok != tt.hasDepth || d != tt.depth {
				t.Errorf("Depth() = %d, %v; want %d, %v", d, ok, tt.depth, tt.hasDepth)
			}
			if tt.a.Applicable() != tt.applicable {
				t.Errorf("Applicable() = %v, want %v", tt.a.Applicable(), tt.applicable)
			}
		})
	}
}

// TestCategoryApplicabilityJSON verifies the wire shape of one row.
func TestCategoryApplicabilityJSON(t *testing.T) {
	id := uuid.MustParse("5f0c6f5e-8b0a-4a37-9a51-3f1f3c1d2b01")

	tests := []struct {
		name string
		link Applicability
		want string
	}{
		{name: "inherited", link: Inherited(1), want: `{"categoryId":"` + id.String() + `","linkType":"inherited","depth":1}`},
		{name: "direct keeps zero depth", link: Direct(), want: `{"categoryId":"` + id.String() + `","linkType":"direct","depth":0}`},
		{name: "global omits depth", link: Global(), want: `{"categoryId":"` + id.String() + `","linkType":"global"}`},
		{name: "none", link: NotApplicable(), want: `{"categoryId":"` + id.String() + `","linkType":"none"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(CategoryApplicability{CategoryID: id, Link: tt.link})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("got %s, want %s", b, tt.want)
			}
		})
	}
}
