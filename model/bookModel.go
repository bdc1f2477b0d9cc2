// model/book.go
package model

import "time"

type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Book struct {
	ID         int64      `json:"id"`
	Title      string     `json:"title"`
	Author     string     `json:"author"`
	ISBN       string     `json:"isbn"`
	Status     BookStatus `json:"status"`
	CategoryID int64      `json:"category_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

type CreateBookReq struct {
	Title      string `json:"title" validate:"required"`
	Author     string `json:"author" validate:"required"`
	ISBN       string `json:"isbn" validate:"required"`
	CategoryID int64  `json:"category_id" validate:"required,gt=0"`
}

type UpdateBookReq struct {
	Title      *string `json:"title,omitempty"`
	Author     *string `json:"author,omitempty"`
	ISBN       *string `json:"isbn,omitempty"`
	CategoryID *int64  `json:"category_id,omitempty" validate:"omitempty,gt=0"`
}

type CategoryReq struct {
	Name string `json:"name" validate:"required"`
}

// BookFilter carries the /books query params: substring search on
// title/author/isbn, exact match on status/category, whitelisted ordering.
type BookFilter struct {
	Title      string
	Author     string
	ISBN       string
	Status     BookStatus
	CategoryID int64
	OrderBy    string // "title" or "author"
}
