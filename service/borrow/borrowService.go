package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/chandan0609/LMS-3/model"
	"github.com/chandan0609/LMS-3/policy"
	borrowrepo "github.com/chandan0609/LMS-3/repository/borrow"
	"github.com/chandan0609/LMS-3/repository/notifier"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookUnavailable ErrCode = "BOOK_UNAVAILABLE"
	ErrAlreadyReturned ErrCode = "ALREADY_RETURNED"
	ErrBookNotFound    ErrCode = "BOOK_NOT_FOUND"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrForbidden       ErrCode = "FORBIDDEN"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Row = repository shape
type Row = borrowrepo.Row

type Service interface {
	// Borrow opens a ledger record for the acting user and flips the book
	// to borrowed, atomically.
	Borrow(ctx context.Context, userID, bookID int64) (*model.BorrowRecord, error)

	// Return closes an open record and frees the book. Repeat calls fail
	// with ErrAlreadyReturned and never mutate state.
	Return(ctx context.Context, actorID int64, actorRole model.Role, recordID int64) error

	// List is role-scoped: staff see all records, members their own.
	List(ctx context.Context, actorID int64, actorRole model.Role) ([]Row, error)

	Get(ctx context.Context, actorID int64, actorRole model.Role, recordID int64) (*Row, error)

	// CheckDueBooks notifies every overdue open record and returns how many
	// notifications went out. One failed send does not stop the scan.
	CheckDueBooks(ctx context.Context) (int, error)
}

type service struct {
	r          borrowrepo.Repo
	n          notifier.Repo
	loanPeriod time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func New(r borrowrepo.Repo, n notifier.Repo, loanPeriodDays int, log *slog.Logger) Service {
	return &service{
		r:          r,
		n:          n,
		loanPeriod: time.Duration(loanPeriodDays) * 24 * time.Hour,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Borrow locks the book row for the whole check-then-act: two concurrent
// borrows of one book serialize on the lock, so the loser sees status
// borrowed and fails without inserting anything.
func (s *service) Borrow(ctx context.Context, userID, bookID int64) (*model.BorrowRecord, error) {
	now := s.now()
	rec := &model.BorrowRecord{
		UserID:     userID,
		BookID:     bookID,
		BorrowDate: now,
		DueDate:    now.Add(s.loanPeriod),
	}

	err := s.r.InTx(ctx, func(tx *sql.Tx) error {
		status, err := s.r.LockBookStatus(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrBookNotFound)
			}
			return err
		}
		if status != model.BookAvailable {
			return makeErr(ErrBookUnavailable)
		}
		if err := s.r.InsertRecord(ctx, tx, rec); err != nil {
			return err
		}
		return s.r.SetBookStatus(ctx, tx, bookID, model.BookBorrowed)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Return(ctx context.Context, actorID int64, actorRole model.Role, recordID int64) error {
	return s.r.InTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.r.LockRecord(ctx, tx, recordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound)
			}
			return err
		}

		switch policy.Decide(actorRole, policy.BorrowReturn) {
		case policy.Allow:
		case policy.AllowOwn:
			if rec.UserID != actorID {
				return makeErr(ErrForbidden)
			}
		default:
			return makeErr(ErrForbidden)
		}

		if rec.ReturnDate != nil {
			return makeErr(ErrAlreadyReturned)
		}

		if err := s.r.MarkReturned(ctx, tx, recordID, s.now()); err != nil {
			return err
		}
		return s.r.SetBookStatus(ctx, tx, rec.BookID, model.BookAvailable)
	})
}

func (s *service) List(ctx context.Context, actorID int64, actorRole model.Role) ([]Row, error) {
	switch policy.Decide(actorRole, policy.BorrowList) {
	case policy.Allow:
		return s.r.ListAll(ctx)
	case policy.AllowOwn:
		return s.r.ListByUser(ctx, actorID)
	default:
		return nil, makeErr(ErrForbidden)
	}
}

func (s *service) Get(ctx context.Context, actorID int64, actorRole model.Role, recordID int64) (*Row, error) {
	dec := policy.Decide(actorRole, policy.BorrowList)
	if dec == policy.Deny {
		return nil, makeErr(ErrForbidden)
	}

	row, err := s.r.ByID(ctx, recordID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if dec == policy.AllowOwn && row.UserID != actorID {
		return nil, makeErr(ErrForbidden)
	}
	return row, nil
}

func (s *service) CheckDueBooks(ctx context.Context) (int, error) {
	overdue, err := s.r.ListOverdue(ctx, s.now())
	if err != nil {
		return 0, err
	}

	count := 0
	for _, o := range overdue {
		due := o.DueDate.Format("2006-01-02")
		if err := s.n.SendDueNotification(ctx, o.Email, o.BookTitle, due); err != nil {
			if s.log != nil {
				s.log.Error("due notification failed",
					"record_id", o.RecordID,
					"recipient", o.Email,
					"err", err,
				)
			}
			continue
		}
		count++
	}
	return count, nil
}
