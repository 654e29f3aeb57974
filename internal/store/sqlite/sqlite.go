// Package sqlite implements the catalog store on an embedded SQLite
// database using the pure-Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sqlite3 "modernc.org/sqlite"

	"catalog-matcher/internal/match/model"
	"catalog-matcher/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id             INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id        INTEGER NOT NULL,
	title          TEXT    NOT NULL,
	property       TEXT    NOT NULL DEFAULT '[]',
	specifications TEXT    NOT NULL DEFAULT '[]'
);
CREATE INDEX IF NOT EXISTS idx_products_user ON products(user_id);

CREATE TABLE IF NOT EXISTS categories (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT    NOT NULL,
	slug     TEXT    NOT NULL UNIQUE,
	name_seo TEXT    NOT NULL DEFAULT '',
	type     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS brands (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	name     TEXT    NOT NULL,
	slug     TEXT    NOT NULL UNIQUE,
	name_seo TEXT    NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS catables (
	category_id INTEGER NOT NULL REFERENCES categories(id),
	product_id  INTEGER NOT NULL REFERENCES products(id),
	PRIMARY KEY (category_id, product_id)
);

CREATE TABLE IF NOT EXISTS brandables (
	brand_id   INTEGER NOT NULL REFERENCES brands(id),
	product_id INTEGER NOT NULL REFERENCES products(id),
	PRIMARY KEY (brand_id, product_id)
);
`

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is a Catalog backed by a SQLite file.
type Store struct {
	db *sql.DB
	q  querier
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db, q: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// InsertProduct seeds a product row. Not part of the Catalog port: the
// matching core never creates products, but imports and tests do.
func (s *Store) InsertProduct(ctx context.Context, userID int64, title string) (int64, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO products (user_id, title) VALUES (?, ?)`, userID, title)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func entityTable(t store.EntityType) string {
	if t == store.EntityBrand {
		return "brands"
	}
	return "categories"
}

func isConflict(err error) bool {
	var se *sqlite3.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case 1555, 2067: // SQLITE_CONSTRAINT_PRIMARYKEY, SQLITE_CONSTRAINT_UNIQUE
			return true
		}
	}
	return false
}

func (s *Store) FindProductExact(ctx context.Context, userID int64, title string) (*store.Product, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, title, property, specifications
		 FROM products WHERE user_id = ? AND title = ? ORDER BY id LIMIT 1`,
		userID, title)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (s *Store) ListProducts(ctx context.Context, userID int64, excludeIDs []int64) ([]store.Product, error) {
	query := `SELECT id, user_id, title, property, specifications FROM products WHERE user_id = ?`
	args := []any{userID}
	if len(excludeIDs) > 0 {
		query += ` AND id NOT IN (?` + strings.Repeat(",?", len(excludeIDs)-1) + `)`
		for _, id := range excludeIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY id`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...any) error }

func scanProduct(r rowScanner) (*store.Product, error) {
	var p store.Product
	var property, specs string
	if err := r.Scan(&p.ID, &p.UserID, &p.Title, &property, &specs); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(property), &p.Property); err != nil {
		return nil, fmt.Errorf("decoding property: %w", err)
	}
	if err := json.Unmarshal([]byte(specs), &p.Specifications); err != nil {
		return nil, fmt.Errorf("decoding specifications: %w", err)
	}
	return &p, nil
}

func (s *Store) FindEntityExact(ctx context.Context, t store.EntityType, name string) (*store.Entity, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT id, name, slug, name_seo FROM `+entityTable(t)+` WHERE name = ? ORDER BY id LIMIT 1`, name)
	var e store.Entity
	if err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.NameSeo); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) ListEntities(ctx context.Context, t store.EntityType) ([]store.Entity, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT id, name, slug, name_seo FROM `+entityTable(t)+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Entity
	for rows.Next() {
		var e store.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.NameSeo); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CreateEntity(ctx context.Context, t store.EntityType, name, slug, nameSeo string) (*store.Entity, error) {
	res, err := s.q.ExecContext(ctx,
		`INSERT INTO `+entityTable(t)+` (name, slug, name_seo) VALUES (?, ?, ?)`,
		name, slug, nameSeo)
	if err != nil {
		if isConflict(err) {
			return nil, store.ErrConflict
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &store.Entity{ID: id, Name: name, Slug: slug, NameSeo: nameSeo}, nil
}

func (s *Store) SlugExists(ctx context.Context, t store.EntityType, slug string) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM `+entityTable(t)+` WHERE slug = ?`, slug).Scan(&n)
	return n > 0, err
}

func (s *Store) DetachCategories(ctx context.Context, productID int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM catables WHERE product_id = ?`, productID)
	return err
}

func (s *Store) AttachCategories(ctx context.Context, productID int64, categoryIDs []int64) error {
	for _, id := range categoryIDs {
		if _, err := s.q.ExecContext(ctx,
			`INSERT OR IGNORE INTO catables (category_id, product_id) VALUES (?, ?)`,
			id, productID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LinkBrand(ctx context.Context, productID, brandID int64) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT OR IGNORE INTO brandables (brand_id, product_id) VALUES (?, ?)`,
		brandID, productID)
	return err
}

func (s *Store) BrandLinkExists(ctx context.Context, productID, brandID int64) (bool, error) {
	var n int
	err := s.q.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM brandables WHERE brand_id = ? AND product_id = ?`,
		brandID, productID).Scan(&n)
	return n > 0, err
}

func (s *Store) UpdateProductSpecs(ctx context.Context, productID int64, property, specifications []model.SpecPair) error {
	if len(property) > 0 {
		b, err := json.Marshal(property)
		if err != nil {
			return err
		}
		if _, err := s.q.ExecContext(ctx,
			`UPDATE products SET property = ? WHERE id = ?`, string(b), productID); err != nil {
			return err
		}
	}
	if len(specifications) > 0 {
		b, err := json.Marshal(specifications)
		if err != nil {
			return err
		}
		if _, err := s.q.ExecContext(ctx,
			`UPDATE products SET specifications = ? WHERE id = ?`, string(b), productID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Tx(ctx context.Context, fn func(store.Catalog) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		// already inside a transaction scope
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
