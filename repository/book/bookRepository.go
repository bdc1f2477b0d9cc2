package bookrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/chandan0609/LMS-3/model"
)

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
		INSERT INTO books (title, author, isbn, status, category_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`
	if err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.ISBN, b.Status, b.CategoryID,
	).Scan(&b.ID, &b.CreatedAt); err != nil {
		return 0, err
	}
	return b.ID, nil
}

// List composes WHERE/ORDER BY from the filter. Search params are ILIKE
// substring matches, status/category are exact. Order columns are
// whitelisted; user input never reaches the SQL text.
func (r *repo) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	q := strings.Builder{}
	q.WriteString(`
		SELECT id, title, author, isbn, status, category_id, created_at
		FROM books`)

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Title != "" {
		where = append(where, "title ILIKE "+arg("%"+f.Title+"%"))
	}
	if f.Author != "" {
		where = append(where, "author ILIKE "+arg("%"+f.Author+"%"))
	}
	if f.ISBN != "" {
		where = append(where, "isbn ILIKE "+arg("%"+f.ISBN+"%"))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(f.Status))
	}
	if f.CategoryID > 0 {
		where = append(where, "category_id = "+arg(f.CategoryID))
	}
	if len(where) > 0 {
		q.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	switch f.OrderBy {
	case "title":
		q.WriteString(" ORDER BY title")
	case "author":
		q.WriteString(" ORDER BY author")
	default:
		q.WriteString(" ORDER BY id DESC")
	}

	rows, err := r.db.QueryContext(ctx, q.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Status, &b.CategoryID, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, isbn, status, category_id, created_at
		FROM books
		WHERE id = $1`
	var b model.Book
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Status, &b.CategoryID, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) error {
	const q = `
		UPDATE books
		SET title = $2,
			author = $3,
			isbn = $4,
			category_id = $5
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, b.ID, b.Title, b.Author, b.ISBN, b.CategoryID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `
		DELETE FROM books
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
