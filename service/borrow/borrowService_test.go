// service/borrow/borrow_service_test.go
package borrowsvc

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chandan0609/LMS-3/model"
	borrowrepo "github.com/chandan0609/LMS-3/repository/borrow"
)

type mockRepo struct {
	lockBookFn     func(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error)
	setStatusFn    func(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error
	insertFn       func(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	lockRecordFn   func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error)
	markReturnedFn func(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error
	byIDFn         func(ctx context.Context, id int64) (*borrowrepo.Row, error)
	listAllFn      func(ctx context.Context) ([]borrowrepo.Row, error)
	listByUserFn   func(ctx context.Context, userID int64) ([]borrowrepo.Row, error)
	listOverdueFn  func(ctx context.Context, asOf time.Time) ([]borrowrepo.OverdueRow, error)
}

var _ borrowrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

func (m *mockRepo) LockBookStatus(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error) {
	return m.lockBookFn(ctx, tx, bookID)
}

func (m *mockRepo) SetBookStatus(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
	if m.setStatusFn == nil {
		return nil
	}
	return m.setStatusFn(ctx, tx, bookID, status)
}

func (m *mockRepo) InsertRecord(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	if m.insertFn == nil {
		return nil
	}
	return m.insertFn(ctx, tx, rec)
}

func (m *mockRepo) LockRecord(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
	return m.lockRecordFn(ctx, tx, recordID)
}

func (m *mockRepo) MarkReturned(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error {
	if m.markReturnedFn == nil {
		return nil
	}
	return m.markReturnedFn(ctx, tx, recordID, at)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*borrowrepo.Row, error) {
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) ListAll(ctx context.Context) ([]borrowrepo.Row, error) {
	return m.listAllFn(ctx)
}

func (m *mockRepo) ListByUser(ctx context.Context, userID int64) ([]borrowrepo.Row, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *mockRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]borrowrepo.OverdueRow, error) {
	return m.listOverdueFn(ctx, asOf)
}

type mockNotifier struct {
	sendFn func(ctx context.Context, recipient, bookTitle, dueDate string) error
	sent   []string
}

func (m *mockNotifier) SendDueNotification(ctx context.Context, recipient, bookTitle, dueDate string) error {
	if m.sendFn != nil {
		if err := m.sendFn(ctx, recipient, bookTitle, dueDate); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, recipient)
	return nil
}

func newTestService(r borrowrepo.Repo, n *mockNotifier, at time.Time) *service {
	return &service{
		r:          r,
		n:          n,
		loanPeriod: 14 * 24 * time.Hour,
		now:        func() time.Time { return at },
	}
}

// --- borrow ---

func TestBorrow_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var gotStatus model.BookStatus
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error) {
			require.Equal(t, int64(7), bookID)
			return model.BookAvailable, nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
			rec.ID = 99
			return nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
			gotStatus = status
			return nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, now)

	rec, err := svc.Borrow(ctx, 3, 7)
	require.NoError(t, err)
	require.Equal(t, int64(99), rec.ID)
	require.Equal(t, int64(3), rec.UserID)
	require.Equal(t, int64(7), rec.BookID)
	require.Equal(t, now, rec.BorrowDate)
	require.Equal(t, now.Add(14*24*time.Hour), rec.DueDate)
	require.Nil(t, rec.ReturnDate)
	require.Equal(t, model.BookBorrowed, gotStatus)
}

func TestBorrow_BookUnavailable(t *testing.T) {
	ctx := context.Background()
	inserted := false
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error) {
			return model.BookBorrowed, nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
			inserted = true
			return nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	_, err := svc.Borrow(ctx, 3, 7)
	require.Error(t, err)
	require.Equal(t, ErrBookUnavailable, Code(err))
	require.False(t, inserted, "unavailable book must not create a record")
}

func TestBorrow_BookNotFound(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		lockBookFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (model.BookStatus, error) {
			return "", sql.ErrNoRows
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	_, err := svc.Borrow(ctx, 3, 404)
	require.Error(t, err)
	require.Equal(t, ErrBookNotFound, Code(err))
}

// --- return ---

func TestReturn_Success_BookFreed(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)

	var returnedAt time.Time
	var freedBook int64
	var freedTo model.BookStatus
	m := &mockRepo{
		lockRecordFn: func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: recordID, UserID: 3, BookID: 7}, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error {
			returnedAt = at
			return nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
			freedBook, freedTo = bookID, status
			return nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, now)

	require.NoError(t, svc.Return(ctx, 3, model.RoleMember, 50))
	require.Equal(t, now, returnedAt)
	require.Equal(t, int64(7), freedBook)
	require.Equal(t, model.BookAvailable, freedTo)
}

func TestReturn_AlreadyReturned_NoMutation(t *testing.T) {
	ctx := context.Background()
	prior := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	mutated := false
	m := &mockRepo{
		lockRecordFn: func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: recordID, UserID: 3, BookID: 7, ReturnDate: &prior}, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sql.Tx, recordID int64, at time.Time) error {
			mutated = true
			return nil
		},
		setStatusFn: func(ctx context.Context, tx *sql.Tx, bookID int64, status model.BookStatus) error {
			mutated = true
			return nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	// repeat calls fail identically and never touch state
	for i := 0; i < 2; i++ {
		err := svc.Return(ctx, 3, model.RoleMember, 50)
		require.Error(t, err)
		require.Equal(t, ErrAlreadyReturned, Code(err))
	}
	require.False(t, mutated)
}

func TestReturn_NotOwnerForbidden(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		lockRecordFn: func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: recordID, UserID: 3, BookID: 7}, nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	err := svc.Return(ctx, 4, model.RoleMember, 50)
	require.Error(t, err)
	require.Equal(t, ErrForbidden, Code(err))
}

func TestReturn_StaffCanReturnForOthers(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		lockRecordFn: func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
			return &model.BorrowRecord{ID: recordID, UserID: 3, BookID: 7}, nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	require.NoError(t, svc.Return(ctx, 1, model.RoleLibrarian, 50))
	require.NoError(t, svc.Return(ctx, 2, model.RoleAdmin, 50))
}

func TestReturn_RecordNotFound(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		lockRecordFn: func(ctx context.Context, tx *sql.Tx, recordID int64) (*model.BorrowRecord, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	err := svc.Return(ctx, 3, model.RoleMember, 999)
	require.Error(t, err)
	require.Equal(t, ErrNotFound, Code(err))
}

// --- listing ---

func TestList_RoleScoping(t *testing.T) {
	ctx := context.Background()
	all := []borrowrepo.Row{
		{BorrowRecord: model.BorrowRecord{ID: 1, UserID: 3}},
		{BorrowRecord: model.BorrowRecord{ID: 2, UserID: 3}},
		{BorrowRecord: model.BorrowRecord{ID: 3, UserID: 4}},
	}
	m := &mockRepo{
		listAllFn: func(ctx context.Context) ([]borrowrepo.Row, error) { return all, nil },
		listByUserFn: func(ctx context.Context, userID int64) ([]borrowrepo.Row, error) {
			var out []borrowrepo.Row
			for _, r := range all {
				if r.UserID == userID {
					out = append(out, r)
				}
			}
			return out, nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	mine, err := svc.List(ctx, 3, model.RoleMember)
	require.NoError(t, err)
	require.Len(t, mine, 2)

	rows, err := svc.List(ctx, 1, model.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	rows, err = svc.List(ctx, 1, model.RoleLibrarian)
	require.NoError(t, err)
	require.Len(t, rows, 3)
}

func TestGet_MemberCannotSeeOthers(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		byIDFn: func(ctx context.Context, id int64) (*borrowrepo.Row, error) {
			return &borrowrepo.Row{BorrowRecord: model.BorrowRecord{ID: id, UserID: 4}}, nil
		},
	}
	svc := newTestService(m, &mockNotifier{}, time.Now())

	_, err := svc.Get(ctx, 3, model.RoleMember, 10)
	require.Error(t, err)
	require.Equal(t, ErrForbidden, Code(err))

	row, err := svc.Get(ctx, 1, model.RoleAdmin, 10)
	require.NoError(t, err)
	require.Equal(t, int64(4), row.UserID)
}

// --- overdue scan ---

func TestCheckDueBooks_CountsDispatched(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	m := &mockRepo{
		listOverdueFn: func(ctx context.Context, asOf time.Time) ([]borrowrepo.OverdueRow, error) {
			require.Equal(t, now, asOf)
			return []borrowrepo.OverdueRow{
				{RecordID: 1, Email: "a@x.com", BookTitle: "A", DueDate: now.AddDate(0, 0, -3)},
				{RecordID: 2, Email: "b@x.com", BookTitle: "B", DueDate: now.AddDate(0, 0, -2)},
				{RecordID: 3, Email: "c@x.com", BookTitle: "C", DueDate: now.AddDate(0, 0, -1)},
			}, nil
		},
	}
	n := &mockNotifier{
		sendFn: func(ctx context.Context, recipient, bookTitle, dueDate string) error {
			// due dates are formatted YYYY-MM-DD for the gateway
			_, err := time.Parse("2006-01-02", dueDate)
			require.NoError(t, err)
			return nil
		},
	}
	svc := newTestService(m, n, now)

	count, err := svc.CheckDueBooks(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.Equal(t, []string{"a@x.com", "b@x.com", "c@x.com"}, n.sent)
}

func TestCheckDueBooks_OneFailureDoesNotAbort(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	m := &mockRepo{
		listOverdueFn: func(ctx context.Context, asOf time.Time) ([]borrowrepo.OverdueRow, error) {
			return []borrowrepo.OverdueRow{
				{RecordID: 1, Email: "a@x.com", BookTitle: "A", DueDate: now},
				{RecordID: 2, Email: "bad@x.com", BookTitle: "B", DueDate: now},
				{RecordID: 3, Email: "c@x.com", BookTitle: "C", DueDate: now},
			}, nil
		},
	}
	n := &mockNotifier{
		sendFn: func(ctx context.Context, recipient, bookTitle, dueDate string) error {
			if recipient == "bad@x.com" {
				return errors.New("gateway down")
			}
			return nil
		},
	}
	svc := newTestService(m, n, now)

	count, err := svc.CheckDueBooks(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)
	require.Equal(t, []string{"a@x.com", "c@x.com"}, n.sent)
}
