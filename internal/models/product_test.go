package models

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// TestCoerceValue checks the accepted JSON shapes for each attribute type.
func TestCoerceValue(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name    string
		typ     AttributeType
		raw     string
		wantRaw string
		wantErr bool
	}{
		{name: "text", typ: AttributeTypeText, raw: `"Arabica"`, wantRaw: `"Arabica"`},
		{name: "text rejects number", typ: AttributeTypeText, raw: `12`, wantErr: true},
		{name: "number", typ: AttributeTypeNumber, raw: `12.50`, wantRaw: `12.5`},
		{name: "number keeps precision", typ: AttributeTypeNumber, raw: `0.1000000000000000055511`, wantRaw: `0.1000000000000000055511`},
		{name: "number rejects string", typ: AttributeTypeNumber, raw: `"12"`, wantErr: true},
		{name: "boolean", typ: AttributeTypeBoolean, raw: `true`, wantRaw: `true`},
		{name: "boolean rejects string", typ: AttributeTypeBoolean, raw: `"yes"`, wantErr: true},
		{name: "json object", typ: AttributeTypeJSON, raw: `{"a":[1,2]}`, wantRaw: `{"a":[1,2]}`},
		{name: "json scalar", typ: AttributeTypeJSON, raw: `"x"`, wantRaw: `"x"`},
		{name: "null is empty", typ: AttributeTypeNumber, raw: `null`, wantRaw: `null`},
		{name: "missing is empty", typ: AttributeTypeText, raw: ``, wantRaw: `null`},
		{name: "unknown type", typ: AttributeType("enum"), raw: `"a"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := CoerceValue(id, tt.typ, json.RawMessage(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrValueType) {
					t.Fatalf("expected ErrValueType, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := string(v.Raw()); got != tt.wantRaw {
				t.Errorf("Raw() = %s, want %s", got, tt.wantRaw)
			}
		})
	}
}

// TestAttributeValueJSON verifies the rendered value object.
func TestAttributeValueJSON(t *testing.T) {
	id := uuid.MustParse("0d9c7a52-5b8e-4f0e-9d0a-1b2c3d4e5f60")
	v, err := CoerceValue(id, AttributeTypeBoolean, json.RawMessage(`false`))
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"attributeId":"` + id.String() + `","type":"boolean","value":false}`
	if string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}
}

// TestProductQueryNormalize verifies pagination defaults and clamping.
func TestProductQueryNormalize(t *testing.T) {
	q := ProductQuery{Page: 0, PageSize: MaxPageSize + 1}
	q.Normalize()
	if q.Page != 1 || q.PageSize != MaxPageSize {
		t.Errorf("got page=%d size=%d", q.Page, q.PageSize)
	}
}
