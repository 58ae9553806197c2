// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"attrcatalog/internal/applicability"
	"attrcatalog/internal/models"
)

// sortColumns maps listing sorts to SQL expressions.
var sortColumns = map[models.AttributeSort]string{
	models.SortByName:      "LOWER(a.name)",
	models.SortByCreatedAt: "a.created_at",
	models.SortByUpdatedAt: "a.updated_at",
}

// Find lists attributes filtered by category applicability, link type and
// text search. With categories selected, each item carries its
// classification against every selected category and productsInUse counts
// only products inside the selected subtrees.
func (s *AttributeStore) Find(ctx context.Context, q models.AttributeQuery) (*models.AttributePage, error) {
	q.Normalize()
	q.CategoryIDs = models.UniqueUUIDs(q.CategoryIDs)
	s.warnUnknownCategories(ctx, q.CategoryIDs)

	where, args := buildAttributeFilter(q)

	var (
		total int
		items []models.AttributeListItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx,
			`SELECT COUNT(*) FROM attributes a WHERE `+where, args...,
		).Scan(&total); err != nil {
			return fmt.Errorf("count attributes: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pageArgs := append(append([]any(nil), args...), q.PageSize, q.Offset())
		rows, err := s.db.QueryContext(gctx, fmt.Sprintf(`
			SELECT a.id, a.name, a.slug, a.type, a.created_at, a.updated_at
			FROM attributes a
			WHERE %s
			ORDER BY %s, a.id
			LIMIT $%d OFFSET $%d`,
			where, sortColumns[q.Sort], len(args)+1, len(args)+2,
		), pageArgs...)
		if err != nil {
			return fmt.Errorf("list attributes: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := scanAttribute(rows)
			if err != nil {
				return fmt.Errorf("scan attribute: %w", err)
			}
			items = append(items, models.AttributeListItem{Attribute: *a, Categories: []models.CategoryRef{}})
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	page := &models.AttributePage{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Filters: models.AttributeFilters{
			Categories:     []models.CategoryRef{},
			AttributeTypes: applicability.AttributeTypes,
		},
	}
	if page.Items == nil {
		page.Items = []models.AttributeListItem{}
	}
	if len(items) == 0 {
		return page, nil
	}
	if err := s.enrich(ctx, q.CategoryIDs, page); err != nil {
		return nil, err
	}
	return page, nil
}

// enrich fills categories, usage counts and applicability of page items.
func (s *AttributeStore) enrich(ctx context.Context, selected []uuid.UUID, page *models.AttributePage) error {
	ids := make([]uuid.UUID, len(page.Items))
	for i, it := range page.Items {
		ids[i] = it.ID
	}

	var (
		refs   map[uuid.UUID][]models.CategoryRef
		counts map[uuid.UUID]int
		matrix applicability.DepthMatrix
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		refs, err = s.linkedCategoryRefs(gctx, ids)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.productsInUse(gctx, ids, selected)
		return err
	})
	if len(selected) > 0 {
		g.Go(func() error {
			paths, err := s.paths.PathsForDescendants(gctx, selected)
			if err != nil {
				return err
			}
			matrix = applicability.NewDepthMatrix(paths)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	seen := make(map[uuid.UUID]struct{})
	for i := range page.Items {
		it := &page.Items[i]
		if r, ok := refs[it.ID]; ok {
			it.Categories = r
		}
		it.ProductsInUse = counts[it.ID]
		if matrix != nil {
			linked := make([]uuid.UUID, len(it.Categories))
			for j, c := range it.Categories {
				linked[j] = c.ID
			}
			it.Applicability = matrix.Rows(selected, linked)
		}
		for _, c := range it.Categories {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			page.Filters.Categories = append(page.Filters.Categories, c)
		}
	}
	sort.SliceStable(page.Filters.Categories, func(i, j int) bool {
		a, b := page.Filters.Categories[i], page.Filters.Categories[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID.String() < b.ID.String()
	})
	return nil
}

func (s *AttributeStore) linkedCategoryRefs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.CategoryRef, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.attribute_id, c.id, c.name, c.slug
		FROM category_attribute_links l
		JOIN categories c ON c.id = l.category_id
		WHERE l.attribute_id = ANY($1::uuid[])
		ORDER BY c.name, c.id`, idArray(ids))
	if err != nil {
		return nil, fmt.Errorf("load linked categories: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.CategoryRef)
	for rows.Next() {
		var aid uuid.UUID
		var c models.CategoryRef
		if err := rows.Scan(&aid, &c.ID, &c.Name, &c.Slug); err != nil {
			return nil, fmt.Errorf("scan linked category: %w", err)
		}
		out[aid] = append(out[aid], c)
	}
	return out, rows.Err()
}

// productsInUse counts the products using each attribute. With selected
// categories only products whose category sits in one of their subtrees
// are counted.
func (s *AttributeStore) productsInUse(ctx context.Context, ids, selected []uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
		SELECT attribute_id, COUNT(*) FROM product_attribute_links
		WHERE attribute_id = ANY($1::uuid[])
		GROUP BY attribute_id`
	args := []any{idArray(ids)}
	if len(selected) > 0 {
		query = `
			SELECT pal.attribute_id, COUNT(DISTINCT pal.product_id)
			FROM product_attribute_links pal
			JOIN products pr ON pr.id = pal.product_id
			WHERE pal.attribute_id = ANY($1::uuid[])
			  AND pr.category_id IN (
				SELECT descendant_id FROM category_tree_paths
				WHERE ancestor_id = ANY($2::uuid[])
			  )
			GROUP BY pal.attribute_id`
		args = append(args, idArray(selected))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count products in use: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]int)
	for rows.Next() {
		var aid uuid.UUID
		var n int
		if err := rows.Scan(&aid, &n); err != nil {
			return nil, fmt.Errorf("scan usage count: %w", err)
		}
		out[aid] = n
	}
	return out, rows.Err()
}

// warnUnknownCategories logs selected category ids that do not exist.
// Unknown ids match nothing; the listing still answers.
func (s *AttributeStore) warnUnknownCategories(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	known, err := scanIDs(ctx, s.db, `SELECT id FROM categories WHERE id = ANY($1::uuid[])`, idArray(ids))
	if err != nil {
		slog.Warn("check attribute filter categories", "error", err)
		return
	}
	found := make(map[uuid.UUID]struct{}, len(known))
	for _, id := range known {
		found[id] = struct{}{}
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		slog.Warn("attribute filter references unknown categories", "category_ids", models.UUIDStrings(missing))
	}
}

// buildAttributeFilter renders the WHERE clause of an attribute listing
// over alias a, with its positional arguments. Link types only apply when
// categories are selected.
func buildAttributeFilter(q models.AttributeQuery) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Q != "" {
		p := arg("%" + escapeLike(q.Q) + "%")
		clauses = append(clauses, fmt.Sprintf("(a.name ILIKE %s OR a.slug ILIKE %s)", p, p))
	}

	if len(q.CategoryIDs) > 0 {
		cats := arg(idArray(q.CategoryIDs))
		global := `NOT EXISTS (SELECT 1 FROM category_attribute_links l WHERE l.attribute_id = a.id)`
		linked := fmt.Sprintf(`EXISTS (
			SELECT 1 FROM category_attribute_links l
			JOIN category_tree_paths p ON p.ancestor_id = l.category_id
			WHERE l.attribute_id = a.id AND p.descendant_id = ANY(%s::uuid[]))`, cats)
		closest := func(cond string) string {
			return fmt.Sprintf(`EXISTS (
			SELECT 1 FROM category_attribute_links l
			JOIN category_tree_paths p ON p.ancestor_id = l.category_id
			WHERE l.attribute_id = a.id AND p.descendant_id = ANY(%s::uuid[])
			GROUP BY p.descendant_id
			HAVING MIN(p.depth) %s)`, cats, cond)
		}
		applicable := "(" + global + " OR " + linked + ")"

		f := q.LinkTypes
		switch {
		case f.NotApplicable:
			clauses = append(clauses, "NOT "+applicable)
		case f.Empty():
			clauses = append(clauses, applicable)
		default:
			var ors []string
			if f.Direct {
				ors = append(ors, closest("= 0"))
			}
			if f.Inherited {
				ors = append(ors, closest("> 0"))
			}
			if f.Global {
				ors = append(ors, global)
			}
			clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
		}
	}

	if len(clauses) == 0 {
		return "TRUE", args
	}
	return strings.Join(clauses, " AND "), args
}
