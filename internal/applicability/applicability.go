// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package applicability classifies attributes against categories using the
// closure-table rows of the selected categories. It holds no I/O; stores
// load the rows and the attribute links and hand them over.
package applicability

import (
	"github.com/google/uuid"

	"attrcatalog/internal/models"
)

// DepthMatrix maps a category to each of its ancestors-or-self and the
// minimum depth at which that ancestor appears.
type DepthMatrix map[uuid.UUID]map[uuid.UUID]int

// NewDepthMatrix indexes closure rows by descendant. Duplicate rows for
// the same pair keep the smallest depth.
func NewDepthMatrix(paths []models.TreePath) DepthMatrix {
	m := make(DepthMatrix)
	for _, p := range paths {
		row, ok := m[p.DescendantID]
		if !ok {
			row = make(map[uuid.UUID]int)
			m[p.DescendantID] = row
		}
		if prev, seen := row[p.AncestorID]; !seen || p.Depth < prev {
			row[p.AncestorID] = p.Depth
		}
	}
	return m
}

// Classify returns how an attribute linked to linkedCategoryIDs relates to
// categoryID. No links means global. Otherwise the closest linked
// ancestor-or-self decides: depth 0 is direct, deeper is inherited.
func (m DepthMatrix) Classify(categoryID uuid.UUID, linkedCategoryIDs []uuid.UUID) models.Applicability {
	if len(linkedCategoryIDs) == 0 {
		return models.Global()
	}

	best := -1
	row := m[categoryID]
	for _, linked := range linkedCategoryIDs {
		d, ok := row[linked]
		if !ok {
			continue
		}
		if best < 0 || d < best {
			best = d
		}
	}

	switch {
	case best < 0:
		return models.NotApplicable()
	case best == 0:
		return models.Direct()
	default:
		return models.Inherited(best)
	}
}

// Rows classifies one attribute against every selected category, in the
// order the categories were selected.
func (m DepthMatrix) Rows(selected []uuid.UUID, linkedCategoryIDs []uuid.UUID) []models.CategoryApplicability {
	rows := make([]models.CategoryApplicability, 0, len(selected))
	for _, cid := range selected {
		rows = append(rows, models.CategoryApplicability{
			CategoryID: cid,
			Link:       m.Classify(cid, linkedCategoryIDs),
		})
	}
	return rows
}

// Inapplicable returns the attributes in attributeIDs that do not apply to
// categoryID. linksByAttribute holds the linked category ids of each
// attribute; a missing entry means the attribute is global.
func (m DepthMatrix) Inapplicable(categoryID uuid.UUID, attributeIDs []uuid.UUID, linksByAttribute map[uuid.UUID][]uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	for _, aid := range attributeIDs {
		if !m.Classify(categoryID, linksByAttribute[aid]).Applicable() {
			out = append(out, aid)
		}
	}
	return out
}

// AttributeTypes are the link types offered as listing filters.
var AttributeTypes = []string{
	models.FilterDirect,
	models.FilterInherited,
	models.FilterGlobal,
}
