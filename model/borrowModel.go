// model/borrow.go
package model

import "time"

type BorrowStatus string

const (
	BorrowPending  BorrowStatus = "PENDING"
	BorrowApproved BorrowStatus = "APPROVED"
	BorrowBorrowed BorrowStatus = "BORROWED"
	BorrowReturned BorrowStatus = "RETURNED"
	BorrowRejected BorrowStatus = "REJECTED"
)

// ActiveStatuses are the states that count toward the one-active-loan-per-
// (user, book) rule and toward a book's committed stock.
var ActiveStatuses = []BorrowStatus{BorrowPending, BorrowApproved, BorrowBorrowed}

func (s BorrowStatus) Terminal() bool {
	return s == BorrowReturned || s == BorrowRejected
}

func (s BorrowStatus) Valid() bool {
	switch s {
	case BorrowPending, BorrowApproved, BorrowBorrowed, BorrowReturned, BorrowRejected:
		return true
	}
	return false
}

type BorrowRecord struct {
	ID            int64  `json:"id"`
	CorrelationID string `json:"correlation_id"`
	UserID        int64  `json:"user_id"`
	BookID        int64  `json:"book_id"`

	// catalog snapshot taken at creation; later catalog edits do not
	// rewrite loan history
	Title    string `json:"title"`
	Author   string `json:"author"`
	Category string `json:"category"`

	BorrowDate time.Time    `json:"borrow_date"`
	DueDate    time.Time    `json:"due_date"`
	ReturnDate *time.Time   `json:"return_date,omitempty"`
	Status     BorrowStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
