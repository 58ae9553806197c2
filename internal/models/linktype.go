// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// LinkKind classifies how an attribute relates to a category.
type LinkKind uint8

const (
	LinkNone LinkKind = iota
	LinkDirect
	LinkInherited
	LinkGlobal
)

// String returns the wire name of the kind.
func (k LinkKind) String() string {
	switch k {
	case LinkDirect:
		return "direct"
	case LinkInherited:
		return "inherited"
	case LinkGlobal:
		return "global"
	default:
		return "none"
	}
}

// Applicability is the classification of one attribute against one
// category. Only the direct and inherited variants carry a depth.
type Applicability struct {
	kind  LinkKind
	depth int
}

// Direct is the classification of an attribute linked to the category itself.
func Direct() Applicability { return Applicability{kind: LinkDirect} }

// Inherited is the classification of an attribute linked to an ancestor
// depth levels up. Depth must be positive.
func Inherited(depth int) Applicability {
	return Applicability{kind: LinkInherited, depth: depth}
}

// Global is the classification of an attribute with no links at all.
func Global() Applicability { return Applicability{kind: LinkGlobal} }

// NotApplicable is the classification of a linked attribute whose links
// miss the category and all of its ancestors.
func NotApplicable() Applicability { return Applicability{kind: LinkNone} }

// Kind returns the variant.
func (a Applicability) Kind() LinkKind { return a.kind }

// Depth returns the closest qualifying link depth. ok is false for the
// global and none variants.
func (a Applicability) Depth() (depth int, ok bool) {
	switch a.kind {
	case LinkDirect, LinkInherited:
		return a.depth, true
	}
	return 0, false
}

// Applicable reports whether the attribute may be used in the category.
func (a Applicability) Applicable() bool {
	return a.kind != LinkNone
}

// CategoryApplicability pairs a selected category with the classification
// of one attribute against it.
type CategoryApplicability struct {
	CategoryID uuid.UUID
	Link       Applicability
}

// MarshalJSON renders {categoryId, linkType, depth?}.
func (c CategoryApplicability) MarshalJSON() ([]byte, error) {
	out := struct {
		CategoryID uuid.UUID `json:"categoryId"`
		LinkType   string    `json:"linkType"`
		Depth      *int      `json:"depth,omitempty"`
	}{
		CategoryID: c.CategoryID,
		LinkType:   c.Link.Kind().String(),
	}
	if d, ok := c.Link.Depth(); ok {
		out.Depth = &d
	}
	return json.Marshal(out)
}

// Link-type filter values accepted by attribute listings.
const (
	FilterDirect        = "direct"
	FilterInherited     = "inherited"
	FilterGlobal        = "global"
	FilterNotApplicable = "not-applicable"
)

// LinkFilter is the set of link types requested by a listing. Values are
// OR'd together. NotApplicable is exclusive: when set, the others are off.
type LinkFilter struct {
	Direct        bool
	Inherited     bool
	Global        bool
	NotApplicable bool
}

// Empty reports whether no link type was requested.
func (f LinkFilter) Empty() bool {
	return !f.Direct && !f.Inherited && !f.Global && !f.NotApplicable
}

// ParseLinkFilter parses link-type values. Each value may itself be a
// comma-separated list. Unknown values are rejected together.
func ParseLinkFilter(values []string) (LinkFilter, error) {
	var f LinkFilter
	var invalid []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			switch part {
			case "":
			case FilterDirect:
				f.Direct = true
			case FilterInherited:
				f.Inherited = true
			case FilterGlobal:
				f.Global = true
			case FilterNotApplicable:
				f.NotApplicable = true
			default:
				invalid = append(invalid, part)
			}
		}
	}
	if len(invalid) > 0 {
		return LinkFilter{}, Invalid("unknown linkType values", invalid...)
	}
	if f.NotApplicable {
		return LinkFilter{NotApplicable: true}, nil
	}
	return f, nil
}
