// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"attrcatalog/internal/database"
	"attrcatalog/internal/models"
	"attrcatalog/internal/slug"
)

// AttributeStore manages attributes and their direct category links.
type AttributeStore struct {
	db    *sql.DB
	paths *TreePathStore
}

// NewAttributeStore returns a new AttributeStore.
func NewAttributeStore(db *sql.DB, paths *TreePathStore) *AttributeStore {
	return &AttributeStore{db: db, paths: paths}
}

const attributeColumns = `id, name, slug, type, created_at, updated_at`

// scanAttribute scans a row into an Attribute struct.
func scanAttribute(scanner interface{ Scan(...any) error }) (*models.Attribute, error) {
	var a models.Attribute
	if err := scanner.Scan(&a.ID, &a.Name, &a.Slug, &a.Type, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByID retrieves an attribute by ID. Returns nil if not found.
func (s *AttributeStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Attribute, error) {
	return findAttribute(ctx, s.db, id, false)
}

func findAttribute(ctx context.Context, q database.Querier, id uuid.UUID, forUpdate bool) (*models.Attribute, error) {
	query := `SELECT ` + attributeColumns + ` FROM attributes WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	a, err := scanAttribute(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attribute by id: %w", err)
	}
	return a, nil
}

// FindBySlug retrieves an attribute by slug. Returns nil if not found.
func (s *AttributeStore) FindBySlug(ctx context.Context, attributeSlug string) (*models.Attribute, error) {
	a, err := scanAttribute(s.db.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM attributes WHERE slug = $1`, attributeSlug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find attribute by slug: %w", err)
	}
	return a, nil
}

// Create inserts an attribute together with its direct links. The link
// targets are validated as a batch before anything is written. It returns
// the number of links created.
func (s *AttributeStore) Create(ctx context.Context, a *models.Attribute, categoryIDs []uuid.UUID) (*models.Attribute, int, error) {
	if a.Slug == "" {
		a.Slug = slug.Generate(a.Name)
	}
	if !slug.Valid(a.Slug) {
		return nil, 0, models.Invalid("invalid attribute slug", a.Slug)
	}
	if a.Type == "" {
		a.Type = models.AttributeTypeText
	}
	if !a.Type.Valid() {
		return nil, 0, models.Invalid("invalid attribute type", string(a.Type))
	}
	ids := models.UniqueUUIDs(categoryIDs)

	var (
		created *models.Attribute
		linked  int
	)
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if len(ids) > 0 {
			if err := lockTreeShared(ctx, tx); err != nil {
				return err
			}
			if err := validateLinkTargets(ctx, tx, ids); err != nil {
				return err
			}
		}

		var err error
		created, err = scanAttribute(tx.QueryRowContext(ctx, `
			INSERT INTO attributes (name, slug, type)
			VALUES ($1, $2, $3)
			RETURNING `+attributeColumns,
			a.Name, a.Slug, a.Type,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return models.Conflict("attribute slug %q already exists", a.Slug)
			}
			return fmt.Errorf("create attribute: %w", err)
		}

		linked, err = insertLinks(ctx, tx, created.ID, ids)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return created, linked, nil
}

// Update modifies the name, slug or type of an attribute. The type cannot
// change once products hold values for it.
func (s *AttributeStore) Update(ctx context.Context, id uuid.UUID, upd models.AttributeUpdate) (*models.Attribute, error) {
	if upd.Slug != nil && !slug.Valid(*upd.Slug) {
		return nil, models.Invalid("invalid attribute slug", *upd.Slug)
	}
	if upd.Type != nil && !upd.Type.Valid() {
		return nil, models.Invalid("invalid attribute type", string(*upd.Type))
	}

	var updated *models.Attribute
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cur, err := findAttribute(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("attribute", id)
		}

		next := *cur
		if upd.Name != nil {
			next.Name = *upd.Name
		}
		if upd.Slug != nil {
			next.Slug = *upd.Slug
		}
		if upd.Type != nil && *upd.Type != cur.Type {
			n, err := countValues(ctx, tx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return models.Conflict("attribute %s has values on %d products; its type cannot change", id, n)
			}
			next.Type = *upd.Type
		}

		updated, err = scanAttribute(tx.QueryRowContext(ctx, `
			UPDATE attributes SET name = $1, slug = $2, type = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+attributeColumns,
			next.Name, next.Slug, next.Type, id,
		))
		if err != nil {
			if isUniqueViolation(err) {
				return models.Conflict("attribute slug %q already exists", next.Slug)
			}
			return fmt.Errorf("update attribute: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an attribute and its links. Attributes that products hold
// values for are refused.
func (s *AttributeStore) Delete(ctx context.Context, id uuid.UUID) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		cur, err := findAttribute(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("attribute", id)
		}
		n, err := countValues(ctx, tx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return models.Conflict("attribute %s has values on %d products", id, n)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM attributes WHERE id = $1`, id); err != nil {
			if isForeignKeyViolation(err) {
				return models.Conflict("attribute %s is still referenced", id)
			}
			return fmt.Errorf("delete attribute: %w", err)
		}
		return nil
	})
}

// SetCategoryLinks replaces the direct links of an attribute with
// categoryIDs, writing only the difference. An empty set makes the
// attribute global.
func (s *AttributeStore) SetCategoryLinks(ctx context.Context, id uuid.UUID, categoryIDs []uuid.UUID) (added, removed int, err error) {
	ids := models.UniqueUUIDs(categoryIDs)

	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := lockTreeShared(ctx, tx); err != nil {
			return err
		}
		cur, err := findAttribute(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if cur == nil {
			return models.NotFound("attribute", id)
		}
		if len(ids) > 0 {
			if err := validateLinkTargets(ctx, tx, ids); err != nil {
				return err
			}
		}

		current, err := scanIDs(ctx, tx,
			`SELECT category_id FROM category_attribute_links WHERE attribute_id = $1`, id)
		if err != nil {
			return fmt.Errorf("load attribute links: %w", err)
		}
		toAdd, toRemove := diffIDs(current, ids)

		if added, err = insertLinks(ctx, tx, id, toAdd); err != nil {
			return err
		}
		if len(toRemove) > 0 {
			res, err := tx.ExecContext(ctx, `
				DELETE FROM category_attribute_links
				WHERE attribute_id = $1 AND category_id = ANY($2::uuid[])`, id, idArray(toRemove))
			if err != nil {
				return fmt.Errorf("remove attribute links: %w", err)
			}
			n, _ := res.RowsAffected()
			removed = int(n)
		}
		if len(toAdd) > 0 || len(toRemove) > 0 {
			if _, err := tx.ExecContext(ctx, `UPDATE attributes SET updated_at = NOW() WHERE id = $1`, id); err != nil {
				return fmt.Errorf("touch attribute: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return added, removed, nil
}

// ResetCategoryLinks deletes every link of attributeIDs and inserts links
// in one transaction. Targets are not leaf-checked; it serves bulk loads
// whose layout is trusted.
func (s *AttributeStore) ResetCategoryLinks(ctx context.Context, attributeIDs []uuid.UUID, links []models.CategoryAttributeLink) error {
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if len(attributeIDs) > 0 {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM category_attribute_links WHERE attribute_id = ANY($1::uuid[])`,
				idArray(attributeIDs),
			); err != nil {
				return fmt.Errorf("clear attribute links: %w", err)
			}
		}
		if len(links) == 0 {
			return nil
		}
		args := make([]any, 0, len(links)*2)
		for _, l := range links {
			args = append(args, l.CategoryID, l.AttributeID)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category_attribute_links (category_id, attribute_id)
			VALUES `+placeholders(len(links), 2)+`
			ON CONFLICT DO NOTHING`, args...); err != nil {
			return fmt.Errorf("insert attribute links: %w", err)
		}
		return nil
	})
}

// LinkedCategories returns the directly linked category ids of each
// attribute. Attributes without links are absent from the map.
func (s *AttributeStore) LinkedCategories(ctx context.Context, attributeIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	return linkedCategories(ctx, s.db, attributeIDs)
}

func linkedCategories(ctx context.Context, q database.Querier, attributeIDs []uuid.UUID) (map[uuid.UUID][]uuid.UUID, error) {
	out := make(map[uuid.UUID][]uuid.UUID)
	if len(attributeIDs) == 0 {
		return out, nil
	}
	rows, err := q.QueryContext(ctx, `
		SELECT attribute_id, category_id FROM category_attribute_links
		WHERE attribute_id = ANY($1::uuid[])`, idArray(attributeIDs))
	if err != nil {
		return nil, fmt.Errorf("load attribute links: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var aid, cid uuid.UUID
		if err := rows.Scan(&aid, &cid); err != nil {
			return nil, fmt.Errorf("scan attribute link: %w", err)
		}
		out[aid] = append(out[aid], cid)
	}
	return out, rows.Err()
}

// validateLinkTargets rejects unknown and non-leaf categories, listing
// every offender. Unknown ids are reported first.
func validateLinkTargets(ctx context.Context, q database.Querier, ids []uuid.UUID) error {
	rows, err := q.QueryContext(ctx, `
		SELECT id, is_leaf FROM categories
		WHERE id = ANY($1::uuid[])
		FOR SHARE`, idArray(ids))
	if err != nil {
		return fmt.Errorf("load link targets: %w", err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]struct{}, len(ids))
	leaf := make(map[uuid.UUID]bool, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var isLeaf bool
		if err := rows.Scan(&id, &isLeaf); err != nil {
			return fmt.Errorf("scan link target: %w", err)
		}
		found[id] = struct{}{}
		leaf[id] = isLeaf
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if missing := missingIDs(ids, found); len(missing) > 0 {
		return models.InvalidIDs("unknown categoryIds", missing)
	}
	var nonLeaf []uuid.UUID
	for _, id := range ids {
		if !leaf[id] {
			nonLeaf = append(nonLeaf, id)
		}
	}
	if len(nonLeaf) > 0 {
		return models.InvalidIDs("attributes can only be linked to leaf categories", nonLeaf)
	}
	return nil
}

// insertLinks links attributeID to every category in ids and returns the
// number of new rows.
func insertLinks(ctx context.Context, q database.Querier, attributeID uuid.UUID, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := q.ExecContext(ctx, `
		INSERT INTO category_attribute_links (category_id, attribute_id)
		SELECT c, $1 FROM unnest($2::uuid[]) AS c
		ON CONFLICT DO NOTHING`, attributeID, idArray(ids))
	if err != nil {
		return 0, fmt.Errorf("insert attribute links: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func countValues(ctx context.Context, q database.Querier, attributeID uuid.UUID) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM product_attribute_values WHERE attribute_id = $1`, attributeID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count attribute values: %w", err)
	}
	return n, nil
}
