package booksvc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chandan0609/LMS-3/model"
	bookrepo "github.com/chandan0609/LMS-3/repository/book"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "NOT_FOUND"
	ErrISBNTaken     ErrCode = "ISBN_TAKEN"
	ErrBadCategory   ErrCode = "BAD_CATEGORY"
	ErrBookBorrowed  ErrCode = "BOOK_BORROWED"
	ErrInvalidFilter ErrCode = "INVALID_FILTER"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Service interface {
	Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error)
	List(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, req model.UpdateBookReq) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
}

type service struct{ r bookrepo.Repo }

func New(r bookrepo.Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, req model.CreateBookReq) (*model.Book, error) {
	b := &model.Book{
		Title:      req.Title,
		Author:     req.Author,
		ISBN:       req.ISBN,
		Status:     model.BookAvailable,
		CategoryID: req.CategoryID,
	}
	if _, err := s.r.Create(ctx, b); err != nil {
		if derr := mapPgErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return b, nil
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return makeErr(ErrISBNTaken)
	case pgerrcode.ForeignKeyViolation:
		return makeErr(ErrBadCategory)
	}
	return nil
}

func (s *service) List(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	if f.Status != "" && f.Status != model.BookAvailable && f.Status != model.BookBorrowed {
		return nil, makeErr(ErrInvalidFilter)
	}
	if f.OrderBy != "" && f.OrderBy != "title" && f.OrderBy != "author" {
		return nil, makeErr(ErrInvalidFilter)
	}
	return s.r.List(ctx, f)
}

func (s *service) Get(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrNotFound)
	}
	return b, err
}

func (s *service) Update(ctx context.Context, id int64, req model.UpdateBookReq) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.ISBN != nil {
		b.ISBN = *req.ISBN
	}
	if req.CategoryID != nil {
		b.CategoryID = *req.CategoryID
	}

	if err := s.r.Update(ctx, b); err != nil {
		if derr := mapPgErr(err); derr != nil {
			return nil, derr
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

// Delete refuses to remove a borrowed book: the ledger keeps its records
// forever and an open record must always resolve to a book row.
func (s *service) Delete(ctx context.Context, id int64) error {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if b.Status == model.BookBorrowed {
		return makeErr(ErrBookBorrowed)
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}
