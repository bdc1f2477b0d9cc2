// repository/borrow/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/chandan0609/LMS-3/model"
)

// Row is a ledger entry joined with the book title for listings.
type Row struct {
	model.BorrowRecord
	BookTitle string `json:"book_title"`
}

// OverdueRow carries what the notification gateway needs per overdue record.
type OverdueRow struct {
	RecordID  int64
	Email     string
	BookTitle string
	DueDate   time.Time
}

type Repo interface {
	// InTx runs fn inside a transaction, rolling back on error.
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	// Tx-scoped: the FOR UPDATE locks serialize the check-then-act on a book.
	LockBookStatus(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error)
	SetBookStatus(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error
	InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	LockRecord(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error)
	MarkReturned(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error

	// Reads
	ByID(ctx context.Context, id int64) (*Row, error)
	ListAll(ctx context.Context) ([]Row, error)
	ListByUser(ctx context.Context, userID int64) ([]Row, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]OverdueRow, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) InTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) LockBookStatus(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error) {
	const q = `
		SELECT status
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var st model.BookStatus
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&st)
	return st, err
}

func (r *repo) SetBookStatus(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
	const q = `
		UPDATE books
		SET status = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, bookID, status)
	return err
}

func (r *repo) InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	const q = `
		INSERT INTO borrow_records (user_id, book_id, borrow_date, due_date)
		VALUES ($1,$2,$3,$4)
		RETURNING id`
	return tx.QueryRowContext(ctx, q,
		rec.UserID, rec.BookID, rec.BorrowDate, rec.DueDate,
	).Scan(&rec.ID)
}

func (r *repo) LockRecord(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
	const q = `
		SELECT id, user_id, book_id, borrow_date, due_date, return_date
		FROM borrow_records
		WHERE id = $1
		FOR UPDATE`
	rec := &model.BorrowRecord{}
	err := tx.QueryRowContext(ctx, q, recordID).Scan(
		&rec.ID, &rec.UserID, &rec.BookID, &rec.BorrowDate, &rec.DueDate, &rec.ReturnDate,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error {
	const q = `
		UPDATE borrow_records
		SET return_date = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, recordID, at)
	return err
}

const listQuery = `
	SELECT
		r.id          AS id,
		r.user_id     AS user_id,
		r.book_id     AS book_id,
		b.title       AS book_title,
		r.borrow_date AS borrow_date,
		r.due_date    AS due_date,
		r.return_date AS return_date
	FROM borrow_records r
	JOIN books b ON b.id = r.book_id`

func (r *repo) ByID(ctx context.Context, id int64) (*Row, error) {
	const q = listQuery + `
	WHERE r.id = $1`
	var row Row
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&row.ID, &row.UserID, &row.BookID, &row.BookTitle,
		&row.BorrowDate, &row.DueDate, &row.ReturnDate,
	)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) ListAll(ctx context.Context) ([]Row, error) {
	const q = listQuery + `
	ORDER BY r.borrow_date DESC, r.id DESC`
	return r.queryRows(ctx, q)
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]Row, error) {
	const q = listQuery + `
	WHERE r.user_id = $1
	ORDER BY r.borrow_date DESC, r.id DESC`
	return r.queryRows(ctx, q, userID)
}

func (r *repo) queryRows(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var row Row
		if err := rows.Scan(
			&row.ID, &row.UserID, &row.BookID, &row.BookTitle,
			&row.BorrowDate, &row.DueDate, &row.ReturnDate,
		); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *repo) ListOverdue(ctx context.Context, asOf time.Time) ([]OverdueRow, error) {
	const q = `
		SELECT r.id, u.email, b.title, r.due_date
		FROM borrow_records r
		JOIN users u ON u.id = r.user_id
		JOIN books b ON b.id = r.book_id
		WHERE r.return_date IS NULL
		AND r.due_date <= $1
		ORDER BY r.due_date`
	rows, err := r.db.QueryContext(ctx, q, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueRow
	for rows.Next() {
		var o OverdueRow
		if err := rows.Scan(&o.RecordID, &o.Email, &o.BookTitle, &o.DueDate); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
