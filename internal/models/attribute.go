// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AttributeType is the closed set of value types an attribute may hold.
type AttributeType string

const (
	AttributeTypeText    AttributeType = "text"
	AttributeTypeNumber  AttributeType = "number"
	AttributeTypeBoolean AttributeType = "boolean"
	AttributeTypeJSON    AttributeType = "json"
)

// Valid reports whether t is one of the known attribute types.
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeTypeText, AttributeTypeNumber, AttributeTypeBoolean, AttributeTypeJSON:
		return true
	}
	return false
}

// Attribute is a typed property that can apply to categories. An attribute
// with no category links is global; that is derived, never stored.
type Attribute struct {
	ID        uuid.UUID     `json:"id"`
	Name      string        `json:"name"`
	Slug      string        `json:"slug"`
	Type      AttributeType `json:"type"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// AttributeUpdate carries the mutable fields of an attribute.
type AttributeUpdate struct {
	Name *string
	Slug *string
	Type *AttributeType
}

// CategoryRef is the compact category shape embedded in attribute listings.
type CategoryRef struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Slug string    `json:"slug"`
}

// AttributeSort is the ordering applied to attribute listings. Ordering is
// always ascending.
type AttributeSort string

const (
	SortByName      AttributeSort = "name"
	SortByCreatedAt AttributeSort = "createdAt"
	SortByUpdatedAt AttributeSort = "updatedAt"
)

// Listing page size bounds.
const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// AttributeQuery describes an attribute listing request.
type AttributeQuery struct {
	CategoryIDs []uuid.UUID
	LinkTypes   LinkFilter
	Q           string
	Page        int
	PageSize    int
	Sort        AttributeSort
}

// Normalize clamps pagination and fills defaults.
func (q *AttributeQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	switch q.Sort {
	case SortByName, SortByCreatedAt, SortByUpdatedAt:
	default:
		q.Sort = SortByName
	}
}

// Offset returns the row offset of the requested page.
func (q *AttributeQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// AttributeListItem is one row of an attribute listing.
type AttributeListItem struct {
	Attribute
	ProductsInUse int                     `json:"productsInUse"`
	Categories    []CategoryRef           `json:"categories"`
	Applicability []CategoryApplicability `json:"applicability,omitempty"`
}

// AttributeFilters lists the filter values the client can offer next.
type AttributeFilters struct {
	Categories     []CategoryRef `json:"categories"`
	AttributeTypes []string      `json:"attributeTypes"`
}

// AttributePage is a paginated attribute listing.
type AttributePage struct {
	Items    []AttributeListItem `json:"items"`
	Total    int                 `json:"total"`
	Page     int                 `json:"page"`
	PageSize int                 `json:"pageSize"`
	Filters  AttributeFilters    `json:"filters"`
}

// CategoryAttributeLink is one direct link between a category and an
// attribute.
type CategoryAttributeLink struct {
	CategoryID  uuid.UUID `json:"categoryId"`
	AttributeID uuid.UUID `json:"attributeId"`
}
