package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
	saveTimeout  = 10 * time.Second
)

type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLSnapshotter stores the collection in a products table. Every save
// replaces the table contents inside one transaction; position keeps
// insertion order.
type SQLSnapshotter struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLSnapshotter(db *sql.DB, dialect Dialect) *SQLSnapshotter {
	return &SQLSnapshotter{db: db, dialect: dialect}
}

func (s *SQLSnapshotter) Migrate(ctx context.Context) error {
	tsType := "TIMESTAMPTZ"
	if s.dialect == DialectSQLite {
		tsType = "TIMESTAMP"
	}

	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS products (
				id             TEXT PRIMARY KEY,
				position       INTEGER NOT NULL,
				name           TEXT NOT NULL,
				description    TEXT NOT NULL,
				price          DOUBLE PRECISION NOT NULL,
				quantity       INTEGER NOT NULL,
				sold           INTEGER NOT NULL,
				pending_orders INTEGER NOT NULL,
				created_at     %[1]s NOT NULL,
				updated_at     %[1]s NOT NULL
			)
		`, tsType))
		return err
	})
}

func (s *SQLSnapshotter) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *SQLSnapshotter) Load(ctx context.Context) ([]Product, error) {
	var out []Product

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, name, description, price, quantity, sold, pending_orders, created_at, updated_at
			FROM products
			ORDER BY position ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Product, 0, 16)
		for rows.Next() {
			var p Product
			if err := rows.Scan(
				&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity,
				&p.Sold, &p.PendingOrders, &p.CreatedAt, &p.UpdatedAt,
			); err != nil {
				return err
			}
			p.CreatedAt = p.CreatedAt.UTC()
			p.UpdatedAt = p.UpdatedAt.UTC()
			out = append(out, p)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLSnapshotter) Save(ctx context.Context, products []Product) error {
	return withTimeout(ctx, saveTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, `DELETE FROM products`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, s.rebind(`
			INSERT INTO products (id, position, name, description, price, quantity, sold, pending_orders, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`))
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, p := range products {
			if _, err := stmt.ExecContext(ctx,
				p.ID, i, p.Name, p.Description, p.Price, p.Quantity,
				p.Sold, p.PendingOrders, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
			); err != nil {
				return fmt.Errorf("insert product %s: %w", p.ID, err)
			}
		}

		return tx.Commit()
	})
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLSnapshotter) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
