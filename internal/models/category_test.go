package models

import (
	"testing"

	"github.com/google/uuid"
)

// TestShiftPaths verifies that a child inherits every ancestor row of its
// parent one level deeper.
func TestShiftPaths(t *testing.T) {
	root, parent, child := uuid.New(), uuid.New(), uuid.New()
	parentPaths := []TreePath{
		SelfPath(parent),
		{AncestorID: root, DescendantID: parent, Depth: 1},
	}

	got := ShiftPaths(child, parentPaths)
	want := []TreePath{
		{AncestorID: parent, DescendantID: child, Depth: 1},
		{AncestorID: root, DescendantID: child, Depth: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

// TestAttributeQueryNormalize verifies defaults and that unknown sorts
// fall back to name.
func TestAttributeQueryNormalize(t *testing.T) {
	q := AttributeQuery{Page: -1, PageSize: 0, Sort: "bogus"}
	q.Normalize()
	if q.Page != 1 || q.PageSize != DefaultPageSize || q.Sort != SortByName {
		t.Errorf("got %+v", q)
	}
	q.Page = 3
	if q.Offset() != 2*DefaultPageSize {
		t.Errorf("Offset() = %d", q.Offset())
	}
}

// TestAttributeTypeValid covers the closed type set.
func TestAttributeTypeValid(t *testing.T) {
	for _, typ := range []AttributeType{AttributeTypeText, AttributeTypeNumber, AttributeTypeBoolean, AttributeTypeJSON} {
		if !typ.Valid() {
			t.Errorf("%q should be valid", typ)
		}
	}
	if AttributeType("TEXT").Valid() {
		t.Error("type names are case sensitive")
	}
}

// TestErrors checks the error helpers used by the HTTP layer.
func TestErrors(t *testing.T) {
	id := uuid.New()
	if err := error(NotFound("product", id)); err.Error() != "product "+id.String()+" not found" {
		t.Errorf("NotFound message = %q", err)
	}
	ve := InvalidIDs("unknown ids", []uuid.UUID{id})
	if ve.Error() != "unknown ids: "+id.String() {
		t.Errorf("ValidationError message = %q", ve.Error())
	}
	got := UniqueUUIDs([]uuid.UUID{id, id, uuid.Nil, id})
	if len(got) != 2 || got[0] != id || got[1] != uuid.Nil {
		t.Errorf("UniqueUUIDs = %v", got)
	}
}
