// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"attrcatalog/internal/models"
)

// listValues collects a query parameter given repeated, comma-separated,
// or both. Empty items are dropped.
func listValues(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseUUIDs parses ids, rejecting every malformed one together.
func parseUUIDs(raw []string, field string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	var bad []string
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			bad = append(bad, s)
			continue
		}
		ids = append(ids, id)
	}
	if len(bad) > 0 {
		return nil, models.Invalid("invalid "+field, bad...)
	}
	return ids, nil
}

// intParam parses an optional integer parameter. Absent yields 0.
func intParam(q url.Values, key string) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.Invalid(key+" must be an integer", raw)
	}
	return n, nil
}

// parseAttributeQuery reads an attribute listing request. Pagination is
// clamped later by the store; malformed values are rejected here.
func parseAttributeQuery(q url.Values) (models.AttributeQuery, error) {
	var out models.AttributeQuery

	ids, err := parseUUIDs(listValues(q, "categoryIds"), "categoryIds")
	if err != nil {
		return out, err
	}
	out.CategoryIDs = models.UniqueUUIDs(ids)

	if out.LinkTypes, err = models.ParseLinkFilter(q["linkType"]); err != nil {
		return out, err
	}

	out.Q = strings.TrimSpace(q.Get("q"))
	if out.Page, err = intParam(q, "page"); err != nil {
		return out, err
	}
	if out.PageSize, err = intParam(q, "pageSize"); err != nil {
		return out, err
	}

	switch s := models.AttributeSort(q.Get("sort")); s {
	case "":
	case models.SortByName, models.SortByCreatedAt, models.SortByUpdatedAt:
		out.Sort = s
	default:
		return out, models.Invalid("sort must be one of name, createdAt, updatedAt", string(s))
	}

	out.Normalize()
	return out, nil
}

// parseProductQuery reads a product listing request.
func parseProductQuery(q url.Values) (models.ProductQuery, error) {
	var out models.ProductQuery
	var err error

	out.Q = strings.TrimSpace(q.Get("q"))
	if raw := strings.TrimSpace(q.Get("categoryId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return out, models.Invalid("invalid categoryId", raw)
		}
		out.CategoryID = &id
	}
	if out.Page, err = intParam(q, "page"); err != nil {
		return out, err
	}
	if out.PageSize, err = intParam(q, "pageSize"); err != nil {
		return out, err
	}
	out.Normalize()
	return out, nil
}
