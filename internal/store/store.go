// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store holds the PostgreSQL-backed stores of the catalog. Every
// multi-statement write runs in one transaction via database.WithTx.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"attrcatalog/internal/database"
	"attrcatalog/internal/models"
)

// PostgreSQL error codes translated into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// treeLockKey is the advisory lock that serialises category tree writes.
// Tree mutations hold it exclusively; link and product writes, which read
// leaf status and closure rows, hold it shared.
const treeLockKey int64 = 0x6361745f74726565

// lockTree takes the exclusive tree lock for the rest of the transaction.
func lockTree(ctx context.Context, q database.Querier) error {
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, treeLockKey); err != nil {
		return fmt.Errorf("lock category tree: %w", err)
	}
	return nil
}

// lockTreeShared takes the shared tree lock for the rest of the transaction.
func lockTreeShared(ctx context.Context, q database.Querier) error {
	if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock_shared($1)`, treeLockKey); err != nil {
		return fmt.Errorf("lock category tree: %w", err)
	}
	return nil
}

// pgError unwraps a PostgreSQL error, or returns nil.
func pgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

// isUniqueViolation reports whether err is a unique violation, optionally
// restricted to the named constraints.
func isUniqueViolation(err error, constraints ...string) bool {
	pgErr := pgError(err)
	if pgErr == nil || pgErr.Code != pgUniqueViolation {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}

// isForeignKeyViolation reports whether err is a foreign key violation.
func isForeignKeyViolation(err error) bool {
	pgErr := pgError(err)
	return pgErr != nil && pgErr.Code == pgForeignKeyViolation
}

// idArray renders ids for a `= ANY($n::uuid[])` parameter.
func idArray(ids []uuid.UUID) []string {
	return models.UUIDStrings(ids)
}

// placeholders returns "($1, $2), ($3, $4)" style VALUES groups for rows
// of cols parameters.
func placeholders(rows, cols int) string {
	var b strings.Builder
	n := 1
	for r := 0; r < rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for c := 0; c < cols; c++ {
			if c > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
		}
		b.WriteByte(')')
	}
	return b.String()
}

// diffIDs returns the ids of next missing from current, and the ids of
// current missing from next. Both keep input order.
func diffIDs(current, next []uuid.UUID) (added, removed []uuid.UUID) {
	cur := make(map[uuid.UUID]struct{}, len(current))
	for _, id := range current {
		cur[id] = struct{}{}
	}
	nxt := make(map[uuid.UUID]struct{}, len(next))
	for _, id := range next {
		nxt[id] = struct{}{}
		if _, ok := cur[id]; !ok {
			added = append(added, id)
		}
	}
	for _, id := range current {
		if _, ok := nxt[id]; !ok {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// missingIDs returns the ids of want that are not in found.
func missingIDs(want []uuid.UUID, found map[uuid.UUID]struct{}) []uuid.UUID {
	var out []uuid.UUID
	for _, id := range want {
		if _, ok := found[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// escapeLike escapes the LIKE metacharacters of s.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// scanIDs drains a single-column uuid result.
func scanIDs(ctx context.Context, q database.Querier, query string, args ...any) ([]uuid.UUID, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
