// model/borrow.go
package model

import "time"

// BorrowRecord is one lending entry in the ledger. ReturnDate nil means the
// record is still open and the book is out.
type BorrowRecord struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	BookID     int64      `json:"book_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
}

type CreateBorrowReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}
