package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/store"

	_ "modernc.org/sqlite"
)

var (
	_ store.TransactionReader = (*Repository)(nil)
	_ store.CategoryReader    = (*Repository)(nil)
)

const isoDate = "2006-01-02"

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// InsertCategory upserts a category by ID.
func (r *Repository) InsertCategory(ctx context.Context, c core.Category) error {
	if strings.TrimSpace(c.ID) == "" {
		return core.ErrEmptyCategoryID
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, tags) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET user_id = excluded.user_id, name = excluded.name, tags = excluded.tags`,
		c.ID, c.UserID, c.Name, strings.Join(c.Tags, ","))
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// InsertTransaction stores t and returns its new ID.
func (r *Repository) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	var occurred any
	if t.HasDate() {
		occurred = t.Date.ISO()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (user_id, created_at, occurred_on, establishment, amount_cents, details, kind, category_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, created.UTC().Format(time.RFC3339), occurred, t.Establishment, t.Amount.Cents(), t.Details, string(t.Kind), t.CategoryID)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert transaction id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", id,
		"kind", t.Kind,
		"amount_cents", t.Amount.Cents())

	return id, nil
}

// ListTransactions implements store.TransactionReader. Category names are
// resolved with a join; missing categories come back with an empty name.
func (r *Repository) ListTransactions(ctx context.Context, userID string, q store.Query) ([]core.Transaction, error) {
	query, args := buildListQuery(userID, q)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t        core.Transaction
			created  string
			occurred sql.NullString
			cents    int64
			kind     string
			catName  sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.UserID, &created, &occurred, &t.Establishment, &cents, &t.Details, &kind, &t.CategoryID, &catName); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("transaction %d created_at: %w", t.ID, err)
		}
		if occurred.Valid {
			if t.Date, err = core.ParseOptionalDate(occurred.String); err != nil {
				return nil, fmt.Errorf("transaction %d date: %w", t.ID, err)
			}
		}
		t.Amount = core.MoneyFromCents(cents)
		t.Kind = core.Kind(kind)
		t.CategoryName = catName.String
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func buildListQuery(userID string, q store.Query) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT t.id, t.user_id, t.created_at, t.occurred_on, t.establishment, t.amount_cents, t.details, t.kind, t.category_id, c.name
		FROM transactions t
		LEFT JOIN categories c ON c.id = t.category_id
		WHERE t.user_id = ?`)
	args := []any{userID}

	if q.Start != nil {
		sb.WriteString(` AND t.occurred_on >= ?`)
		args = append(args, q.Start.Format(isoDate))
	}
	if q.End != nil {
		sb.WriteString(` AND t.occurred_on <= ?`)
		args = append(args, q.End.Format(isoDate))
	}
	if q.Kind != "" {
		sb.WriteString(` AND t.kind = ?`)
		args = append(args, string(q.Kind))
	}
	if q.CategoryID != "" {
		sb.WriteString(` AND t.category_id = ?`)
		args = append(args, q.CategoryID)
	}
	// undated rows sort last
	sb.WriteString(` ORDER BY t.occurred_on IS NULL, t.occurred_on DESC, t.id DESC`)
	return sb.String(), args
}

// ListCategories implements store.CategoryReader.
func (r *Repository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, tags FROM categories WHERE user_id = ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var (
			c    core.Category
			tags string
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &tags); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Tags = core.ParseTags(tags)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}
