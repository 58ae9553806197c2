// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item attached to a leaf category.
type Product struct {
	ID         uuid.UUID        `json:"id"`
	Name       string           `json:"name"`
	CategoryID uuid.UUID        `json:"categoryId"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
	Values     []AttributeValue `json:"attributeValues,omitempty"`
}

// AttributeValueInput references an attribute by id or by slug. The id
// wins when both are given.
type AttributeValueInput struct {
	AttributeID   *uuid.UUID      `json:"attributeId,omitempty"`
	AttributeSlug string          `json:"attributeSlug,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name            string
	CategoryID      uuid.UUID
	AttributeValues []AttributeValueInput
}

// ProductUpdate is the payload for updating a product. A nil
// AttributeValues leaves the value set untouched; an empty non-nil slice
// clears it.
type ProductUpdate struct {
	Name            *string
	CategoryID      *uuid.UUID
	AttributeValues []AttributeValueInput
}

// AttributeValue is the value a product holds for one attribute. At most
// one of the typed columns is set, matching Type.
type AttributeValue struct {
	AttributeID uuid.UUID
	Type        AttributeType
	Text        *string
	Number      decimal.NullDecimal
	Boolean     *bool
	JSON        json.RawMessage
}

// ErrValueType is returned when a value does not match its attribute type.
var ErrValueType = errors.New("value does not match attribute type")

// CoerceValue converts a raw JSON value into the typed form for t. A
// missing or null value yields an empty AttributeValue.
func CoerceValue(attributeID uuid.UUID, t AttributeType, raw json.RawMessage) (AttributeValue, error) {
	v := AttributeValue{AttributeID: attributeID, Type: t}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return v, nil
	}

	switch t {
	case AttributeTypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return v, ErrValueType
		}
		v.Text = &s
	case AttributeTypeNumber:
		if raw[0] == '"' {
			return v, ErrValueType
		}
		d, err := decimal.NewFromString(string(raw))
		if err != nil {
			return v, ErrValueType
		}
		v.Number = decimal.NullDecimal{Decimal: d, Valid: true}
	case AttributeTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return v, ErrValueType
		}
		v.Boolean = &b
	case AttributeTypeJSON:
		if !json.Valid(raw) {
			return v, ErrValueType
		}
		v.JSON = append(json.RawMessage(nil), raw...)
	default:
		return v, ErrValueType
	}
	return v, nil
}

// Raw returns the value as JSON, or null when unset.
func (v AttributeValue) Raw() json.RawMessage {
	var (
		b   []byte
		err error
	)
	switch {
	case v.Text != nil:
		b, err = json.Marshal(*v.Text)
	case v.Number.Valid:
		b = []byte(v.Number.Decimal.String())
	case v.Boolean != nil:
		b, err = json.Marshal(*v.Boolean)
	case len(v.JSON) > 0:
		b = v.JSON
	}
	if err != nil || len(b) == 0 {
		return json.RawMessage("null")
	}
	return b
}

// MarshalJSON renders {attributeId, type, value}.
func (v AttributeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AttributeID uuid.UUID       `json:"attributeId"`
		Type        AttributeType   `json:"type"`
		Value       json.RawMessage `json:"value"`
	}{v.AttributeID, v.Type, v.Raw()})
}

// ProductQuery describes a product listing request.
type ProductQuery struct {
	Q          string
	CategoryID *uuid.UUID
	Page       int
	PageSize   int
}

// Normalize clamps pagination and fills defaults.
func (q *ProductQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 25
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
}

// ProductPage is a paginated product listing.
type ProductPage struct {
	Items    []Product `json:"items"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
