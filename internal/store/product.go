// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"attrcatalog/internal/applicability"
	"attrcatalog/internal/database"
	"attrcatalog/internal/models"
)

// ProductStore manages products, their attribute values and the derived
// product-attribute links.
type ProductStore struct {
	db    *sql.DB
	paths *TreePathStore
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB, paths *TreePathStore) *ProductStore {
	return &ProductStore{db: db, paths: paths}
}

const productColumns = `id, name, category_id, created_at, updated_at`

// scanProduct scans a row into a Product struct.
func scanProduct(scanner interface{ Scan(...any) error }) (*models.Product, error) {
	var p models.Product
	if err := scanner.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindByID retrieves a product with its attribute values. Returns nil if
// not found.
func (s *ProductStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product by id: %w", err)
	}
	values, err := loadValues(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	p.Values = values
	return p, nil
}

// List returns a page of products, optionally restricted to the subtree of
// a category and to names matching q.
func (s *ProductStore) List(ctx context.Context, q models.ProductQuery) (*models.ProductPage, error) {
	q.Normalize()

	where := "TRUE"
	var args []any
	if q.Q != "" {
		args = append(args, "%"+escapeLike(q.Q)+"%")
		where += fmt.Sprintf(" AND p.name ILIKE $%d", len(args))
	}
	if q.CategoryID != nil {
		args = append(args, *q.CategoryID)
		where += fmt.Sprintf(` AND p.category_id IN (
			SELECT descendant_id FROM category_tree_paths WHERE ancestor_id = $%d)`, len(args))
	}

	page := &models.ProductPage{Items: []models.Product{}, Page: q.Page, PageSize: q.PageSize}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRowContext(gctx,
			`SELECT COUNT(*) FROM products p WHERE `+where, args...,
		).Scan(&page.Total); err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		pageArgs := append(append([]any(nil), args...), q.PageSize, (q.Page-1)*q.PageSize)
		rows, err := s.db.QueryContext(gctx, `
			SELECT p.id, p.name, p.category_id, p.created_at, p.updated_at
			FROM products p
			WHERE `+where+`
			ORDER BY LOWER(p.name), p.id
			LIMIT $`+strconv.Itoa(len(args)+1)+` OFFSET $`+strconv.Itoa(len(args)+2), pageArgs...)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return fmt.Errorf("scan product: %w", err)
			}
			page.Items = append(page.Items, *p)
		}
		return rows.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// Create inserts a product in a leaf category with its attribute values.
// Values are resolved, checked for applicability and coerced before any
// row is written.
func (s *ProductStore) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	var id uuid.UUID
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTreeShared(ctx, tx); err != nil {
			return err
		}
		if err := checkLeafCategory(ctx, tx, in.CategoryID); err != nil {
			return err
		}
		values, err := s.prepareValues(ctx, tx, in.CategoryID, in.AttributeValues)
		if err != nil {
			return err
		}

		if err := tx.QueryRowContext(ctx, `
			INSERT INTO products (name, category_id) VALUES ($1, $2)
			RETURNING id`, in.Name, in.CategoryID,
		).Scan(&id); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		return writeValues(ctx, tx, id, values)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Update modifies a product. A non-nil AttributeValues replaces the whole
// value set; a nil one leaves values untouched even when the category
// changes.
func (s *ProductStore) Update(ctx context.Context, id uuid.UUID, upd models.ProductUpdate) (*models.Product, error) {
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTreeShared(ctx, tx); err != nil {
			return err
		}
		cur, err := scanProduct(tx.QueryRowContext(ctx,
			`SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotFound("product", id)
		}
		if err != nil {
			return fmt.Errorf("find product by id: %w", err)
		}

		name, categoryID := cur.Name, cur.CategoryID
		if upd.Name != nil {
			name = *upd.Name
		}
		if upd.CategoryID != nil && *upd.CategoryID != cur.CategoryID {
			categoryID = *upd.CategoryID
			if err := checkLeafCategory(ctx, tx, categoryID); err != nil {
				return err
			}
		}

		var values []models.AttributeValue
		if upd.AttributeValues != nil {
			values, err = s.prepareValues(ctx, tx, categoryID, upd.AttributeValues)
			if err != nil {
				return err
			}
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE products SET name = $1, category_id = $2, updated_at = NOW()
			WHERE id = $3`, name, categoryID, id); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		if upd.AttributeValues == nil {
			return nil
		}
		return writeValues(ctx, tx, id, values)
	})
	if err != nil {
		return nil, err
	}
	return s.FindByID(ctx, id)
}

// Delete removes a product with its values and links.
func (s *ProductStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.NotFound("product", id)
	}
	return nil
}

// checkLeafCategory verifies that a product may be attached to id.
func checkLeafCategory(ctx context.Context, q database.Querier, id uuid.UUID) error {
	c, err := findCategory(ctx, q, id, false)
	if err != nil {
		return err
	}
	if c == nil {
		return models.Invalid("category does not exist", id.String())
	}
	if !c.IsLeaf {
		return models.Invalid("products can only be attached to leaf categories", id.String())
	}
	return nil
}

// prepareValues resolves attribute references, rejects attributes that do
// not apply to categoryID and coerces each value to its attribute type.
// Every offender of a failing step is reported together. A reference
// given twice keeps its last value.
func (s *ProductStore) prepareValues(ctx context.Context, q database.Querier, categoryID uuid.UUID, inputs []models.AttributeValueInput) ([]models.AttributeValue, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	refs, attrs, err := resolveAttributes(ctx, q, inputs)
	if err != nil {
		return nil, err
	}
	ids := models.UniqueUUIDs(refs)

	paths, err := s.paths.PathsTo(ctx, q, categoryID)
	if err != nil {
		return nil, err
	}
	links, err := linkedCategories(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	matrix := applicability.NewDepthMatrix(paths)
	if bad := matrix.Inapplicable(categoryID, ids, links); len(bad) > 0 {
		return nil, models.InvalidIDs(
			fmt.Sprintf("attributes are not applicable to category %s", categoryID), bad)
	}

	last := make(map[uuid.UUID]json.RawMessage, len(ids))
	for i, in := range inputs {
		last[refs[i]] = in.Value
	}
	values := make([]models.AttributeValue, 0, len(ids))
	var mistyped []uuid.UUID
	for _, aid := range ids {
		v, err := models.CoerceValue(aid, attrs[aid].Type, last[aid])
		if err != nil {
			mistyped = append(mistyped, aid)
			continue
		}
		values = append(values, v)
	}
	if len(mistyped) > 0 {
		return nil, models.InvalidIDs("attribute values do not match their type", mistyped)
	}
	return values, nil
}

// resolveAttributes maps each input to an attribute id, looking slugs up in
// one query, and loads the referenced attributes.
func resolveAttributes(ctx context.Context, q database.Querier, inputs []models.AttributeValueInput) ([]uuid.UUID, map[uuid.UUID]models.Attribute, error) {
	var (
		slugs   []string
		missing []string
	)
	for i, in := range inputs {
		switch {
		case in.AttributeID != nil:
		case in.AttributeSlug != "":
			slugs = append(slugs, in.AttributeSlug)
		default:
			missing = append(missing, strconv.Itoa(i))
		}
	}
	if len(missing) > 0 {
		return nil, nil, models.Invalid("attribute values need an attributeId or attributeSlug at positions", missing...)
	}

	bySlug := make(map[string]uuid.UUID, len(slugs))
	if len(slugs) > 0 {
		rows, err := q.QueryContext(ctx,
			`SELECT slug, id FROM attributes WHERE slug = ANY($1::text[])`, slugs)
		if err != nil {
			return nil, nil, fmt.Errorf("resolve attribute slugs: %w", err)
		}
		for rows.Next() {
			var sl string
			var id uuid.UUID
			if err := rows.Scan(&sl, &id); err != nil {
				rows.Close()
				return nil, nil, fmt.Errorf("scan attribute slug: %w", err)
			}
			bySlug[sl] = id
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, nil, err
		}
	}

	refs := make([]uuid.UUID, len(inputs))
	var unknownSlugs []string
	for i, in := range inputs {
		if in.AttributeID != nil {
			refs[i] = *in.AttributeID
			continue
		}
		id, ok := bySlug[in.AttributeSlug]
		if !ok {
			unknownSlugs = append(unknownSlugs, in.AttributeSlug)
			continue
		}
		refs[i] = id
	}
	if len(unknownSlugs) > 0 {
		return nil, nil, models.Invalid("unknown attribute slugs", unknownSlugs...)
	}

	ids := models.UniqueUUIDs(refs)
	rows, err := q.QueryContext(ctx,
		`SELECT `+attributeColumns+` FROM attributes WHERE id = ANY($1::uuid[])`, idArray(ids))
	if err != nil {
		return nil, nil, fmt.Errorf("load attributes: %w", err)
	}
	defer rows.Close()

	attrs := make(map[uuid.UUID]models.Attribute, len(ids))
	found := make(map[uuid.UUID]struct{}, len(ids))
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("scan attribute: %w", err)
		}
		attrs[a.ID] = *a
		found[a.ID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	if unknown := missingIDs(ids, found); len(unknown) > 0 {
		return nil, nil, models.InvalidIDs("unknown attributeIds", unknown)
	}
	return refs, attrs, nil
}

// writeValues makes the stored value set of a product equal to values and
// syncs its product-attribute links to the same attribute set.
func writeValues(ctx context.Context, q database.Querier, productID uuid.UUID, values []models.AttributeValue) error {
	next := make([]uuid.UUID, len(values))
	for i, v := range values {
		next[i] = v.AttributeID
		if _, err := q.ExecContext(ctx, `
			INSERT INTO product_attribute_values
				(product_id, attribute_id, text_value, number_value, boolean_value, json_value)
			VALUES ($1, $2, $3, $4, $5, $6::jsonb)
			ON CONFLICT (product_id, attribute_id) DO UPDATE SET
				text_value = EXCLUDED.text_value,
				number_value = EXCLUDED.number_value,
				boolean_value = EXCLUDED.boolean_value,
				json_value = EXCLUDED.json_value,
				updated_at = NOW()`,
			productID, v.AttributeID, v.Text, v.Number, v.Boolean, jsonParam(v.JSON),
		); err != nil {
			return fmt.Errorf("write attribute value %s: %w", v.AttributeID, err)
		}
	}

	if _, err := q.ExecContext(ctx, `
		DELETE FROM product_attribute_values
		WHERE product_id = $1 AND NOT (attribute_id = ANY($2::uuid[]))`,
		productID, idArray(next),
	); err != nil {
		return fmt.Errorf("prune attribute values: %w", err)
	}
	return syncProductLinks(ctx, q, productID, next)
}

// syncProductLinks writes the symmetric difference between the stored
// links of a product and attributeIDs.
func syncProductLinks(ctx context.Context, q database.Querier, productID uuid.UUID, attributeIDs []uuid.UUID) error {
	current, err := scanIDs(ctx, q,
		`SELECT attribute_id FROM product_attribute_links WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("load product links: %w", err)
	}
	added, removed := diffIDs(current, attributeIDs)

	if len(added) > 0 {
		if _, err := q.ExecContext(ctx, `
			INSERT INTO product_attribute_links (product_id, attribute_id)
			SELECT $1, a FROM unnest($2::uuid[]) AS a
			ON CONFLICT DO NOTHING`, productID, idArray(added)); err != nil {
			return fmt.Errorf("insert product links: %w", err)
		}
	}
	if len(removed) > 0 {
		if _, err := q.ExecContext(ctx, `
			DELETE FROM product_attribute_links
			WHERE product_id = $1 AND attribute_id = ANY($2::uuid[])`, productID, idArray(removed)); err != nil {
			return fmt.Errorf("remove product links: %w", err)
		}
	}
	return nil
}

func loadValues(ctx context.Context, q database.Querier, productID uuid.UUID) ([]models.AttributeValue, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT v.attribute_id, a.type, v.text_value, v.number_value, v.boolean_value, v.json_value
		FROM product_attribute_values v
		JOIN attributes a ON a.id = v.attribute_id
		WHERE v.product_id = $1
		ORDER BY a.name, a.id`, productID)
	if err != nil {
		return nil, fmt.Errorf("load attribute values: %w", err)
	}
	defer rows.Close()

	var values []models.AttributeValue
	for rows.Next() {
		var (
			v   models.AttributeValue
			raw []byte
		)
		if err := rows.Scan(&v.AttributeID, &v.Type, &v.Text, &v.Number, &v.Boolean, &raw); err != nil {
			return nil, fmt.Errorf("scan attribute value: %w", err)
		}
		if len(raw) > 0 {
			v.JSON = json.RawMessage(raw)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// jsonParam renders a JSONB parameter, NULL when unset.
func jsonParam(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
