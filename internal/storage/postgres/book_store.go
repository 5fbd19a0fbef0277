package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/JakeFAU/books-catalog-api/internal/catalog"
)

var bookColumns = []string{
	"id",
	"title",
	"price",
	"rating",
	"availability",
	"stock",
	"category",
	"image_url",
	"url",
	"scraped_at",
}

// BookStore is a Postgres-backed catalog.BookStore.
type BookStore struct {
	pool  Pool
	table string
}

// NewBookStore builds a BookStore on pool. An empty table defaults to "books".
func NewBookStore(pool Pool, table string) (*BookStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table, "books")
	if err != nil {
		return nil, err
	}
	return &BookStore{pool: pool, table: name}, nil
}

// EnsureSchema creates the books table and its category index.
func (s *BookStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	price        DOUBLE PRECISION NOT NULL,
	rating       INTEGER NOT NULL,
	availability TEXT NOT NULL,
	stock        INTEGER NOT NULL,
	category     TEXT NOT NULL,
	image_url    TEXT NOT NULL,
	url          TEXT NOT NULL,
	scraped_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS %[1]s_category_idx ON %[1]s (category)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create %s table: %w", s.table, err)
	}
	return nil
}

// ReplaceBooks deletes every row and copies books in, in one transaction.
func (s *BookStore) ReplaceBooks(ctx context.Context, books []catalog.Book) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	if err := s.replaceInTx(ctx, tx, books); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (s *BookStore) replaceInTx(ctx context.Context, tx pgx.Tx, books []catalog.Book) error {
	if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("clear books: %w", err)
	}
	rows := make([][]any, 0, len(books))
	for _, b := range books {
		rows = append(rows, []any{
			b.ID, b.Title, b.Price, b.Rating, b.Availability,
			b.Stock, b.Category, b.ImageURL, b.URL, b.ScrapedAt,
		})
	}
	copied, err := tx.CopyFrom(ctx, pgx.Identifier{s.table}, bookColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy books: %w", err)
	}
	if copied != int64(len(books)) {
		return fmt.Errorf("copy books: wrote %d of %d rows", copied, len(books))
	}
	return nil
}

// ListBooks returns books matching filter ordered by title.
func (s *BookStore) ListBooks(ctx context.Context, filter catalog.BookFilter) ([]catalog.Book, error) {
	var (
		conds []string
		args  []any
	)
	add := func(format string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(format, len(args)))
	}
	if filter.Title != "" {
		add("title ILIKE $%d", "%"+escapeLike(filter.Title)+"%")
	}
	if filter.Category != "" {
		add("category ILIKE $%d", "%"+escapeLike(filter.Category)+"%")
	}
	if filter.MinPrice != nil {
		add("price >= $%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		add("price <= $%d", *filter.MaxPrice)
	}
	if filter.InStockOnly {
		conds = append(conds, "stock > 0")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(bookColumns, ", "), s.table)
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY title, id")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	out := make([]catalog.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}
	return out, nil
}

// GetBook fetches a book by ID.
func (s *BookStore) GetBook(ctx context.Context, id string) (catalog.Book, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", strings.Join(bookColumns, ", "), s.table)
	b, err := scanBook(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Book{}, catalog.ErrBookNotFound
	}
	if err != nil {
		return catalog.Book{}, err
	}
	return b, nil
}

// ListCategories returns distinct non-empty categories.
func (s *BookStore) ListCategories(ctx context.Context, filter catalog.CategoryFilter) ([]string, error) {
	where := "category <> ''"
	if filter.InStockOnly {
		where += " AND stock > 0"
	}
	query := fmt.Sprintf("SELECT DISTINCT category FROM %s WHERE %s ORDER BY category", s.table, where)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

// CountBooks returns the number of stored rows.
func (s *BookStore) CountBooks(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", s.table)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Ping checks connectivity.
func (s *BookStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func scanBook(row pgx.Row) (catalog.Book, error) {
	var b catalog.Book
	err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Price,
		&b.Rating,
		&b.Availability,
		&b.Stock,
		&b.Category,
		&b.ImageURL,
		&b.URL,
		&b.ScrapedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Book{}, err
	}
	if err != nil {
		return catalog.Book{}, fmt.Errorf("scan book: %w", err)
	}
	return b, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
