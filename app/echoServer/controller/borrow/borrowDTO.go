package borrow

import "time"

type RequestLoanReq struct {
	BookID     int64     `json:"book_id" validate:"required,gt=0"`
	BorrowDate time.Time `json:"borrow_date" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
}

type DirectLoanReq struct {
	UserID     int64     `json:"user_id" validate:"required,gt=0"`
	BookID     int64     `json:"book_id" validate:"required,gt=0"`
	BorrowDate time.Time `json:"borrow_date" validate:"required"`
	DueDate    time.Time `json:"due_date" validate:"required"`
}

type BulkDeleteReq struct {
	RecordIDs []int64 `json:"record_ids" validate:"required,min=1,dive,gt=0"`
}
