// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"attrcatalog/internal/database"
	"attrcatalog/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing.
// Uses environment variables with defaults matching the config package.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "attrcatalog")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "attrcatalog")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations.
// If the database is unavailable, the test is skipped. A cleanup
// function is registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	// Downgrade goose global state.
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// fixture wires the stores over the test database and removes every row
// it created when the test ends.
type fixture struct {
	t          *testing.T
	ctx        context.Context
	db         *sql.DB
	prefix     string
	paths      *TreePathStore
	categories *CategoryStore
	attributes *AttributeStore
	products   *ProductStore

	categoryIDs  []uuid.UUID
	attributeIDs []uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testDB(t)
	paths := NewTreePathStore(db, nil)
	f := &fixture{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		prefix:     fmt.Sprintf("t%d", time.Now().UnixNano()),
		paths:      paths,
		categories: NewCategoryStore(db, paths),
		attributes: NewAttributeStore(db, paths),
		products:   NewProductStore(db, paths),
	}
	t.Cleanup(f.clean)
	return f
}

// clean removes products, attributes and categories made by the fixture.
// Categories go deepest first so parent restrictions hold.
func (f *fixture) clean() {
	ctx := context.Background()
	cats := idArray(f.categoryIDs)
	f.db.ExecContext(ctx, `DELETE FROM products WHERE category_id = ANY($1::uuid[])`, cats)
	f.db.ExecContext(ctx, `DELETE FROM attributes WHERE id = ANY($1::uuid[])`, idArray(f.attributeIDs))
	f.db.ExecContext(ctx, `DELETE FROM category_attribute_links WHERE category_id = ANY($1::uuid[])`, cats)
	for len(f.categoryIDs) > 0 {
		res, err := f.db.ExecContext(ctx, `
			DELETE FROM categories c
			WHERE c.id = ANY($1::uuid[])
			  AND NOT EXISTS (SELECT 1 FROM categories ch WHERE ch.parent_id = c.id)`, idArray(f.categoryIDs))
		if err != nil {
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return
		}
		var left []uuid.UUID
		for _, id := range f.categoryIDs {
			var exists bool
			f.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, id).Scan(&exists)
			if exists {
				left = append(left, id)
			}
		}
		f.categoryIDs = left
	}
}

// category creates a category named name under parent.
func (f *fixture) category(name string, parent *models.Category) *models.Category {
	f.t.Helper()
	c := &models.Category{Name: name, Slug: f.prefix + "-" + name}
	if parent != nil {
		c.ParentID = &parent.ID
	}
	created, err := f.categories.Create(f.ctx, c)
	require.NoError(f.t, err)
	f.categoryIDs = append(f.categoryIDs, created.ID)
	return created
}

// attribute creates an attribute linked to the given categories.
func (f *fixture) attribute(name string, t models.AttributeType, linked ...*models.Category) *models.Attribute {
	f.t.Helper()
	ids := make([]uuid.UUID, len(linked))
	for i, c := range linked {
		ids[i] = c.ID
	}
	a, _, err := f.attributes.Create(f.ctx, &models.Attribute{
		Name: f.prefix + " " + name,
		Slug: f.prefix + "-" + name,
		Type: t,
	}, ids)
	require.NoError(f.t, err)
	f.attributeIDs = append(f.attributeIDs, a.ID)
	return a
}

// reload fetches a category again to observe its current leaf flag.
func (f *fixture) reload(c *models.Category) *models.Category {
	f.t.Helper()
	got, err := f.categories.FindByID(f.ctx, c.ID)
	require.NoError(f.t, err)
	require.NotNil(f.t, got)
	return got
}

// pathsOf returns ancestor -> depth for a category.
func (f *fixture) pathsOf(c *models.Category) map[uuid.UUID]int {
	f.t.Helper()
	paths, err := f.paths.PathsForDescendants(f.ctx, []uuid.UUID{c.ID})
	require.NoError(f.t, err)
	out := make(map[uuid.UUID]int, len(paths))
	for _, p := range paths {
		out[p.AncestorID] = p.Depth
	}
	return out
}
