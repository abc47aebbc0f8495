package borrow

import (
	"fmt"
	"time"
)

// Window is the requested borrow/due pair. Timestamps are treated as
// already-normalized instants: stored and compared as given, never
// decomposed into local date parts.
type Window struct {
	BorrowDate time.Time
	DueDate    time.Time
}

// Policy bounds the loan window before it reaches the lifecycle.
// Pure validation, no side effects.
type Policy struct {
	MaxLoanDays  int
	EnforceHours bool
	OpenHour     int // inclusive, 24h clock
	CloseHour    int // exclusive
}

func (p Policy) Validate(w Window) error {
	if !w.DueDate.After(w.BorrowDate) {
		return makeErr(ErrPolicy, "due date must be after borrow date")
	}
	if limit := time.Duration(p.MaxLoanDays) * 24 * time.Hour; w.DueDate.Sub(w.BorrowDate) > limit {
		return makeErr(ErrPolicy, fmt.Sprintf("loan window exceeds %d days", p.MaxLoanDays))
	}
	if p.EnforceHours {
		if !p.withinHours(w.BorrowDate) || !p.withinHours(w.DueDate) {
			return makeErr(ErrPolicy, fmt.Sprintf("timestamps must fall within library hours %02d:00-%02d:00", p.OpenHour, p.CloseHour))
		}
	}
	return nil
}

func (p Policy) withinHours(t time.Time) bool {
	h := t.Hour()
	return h >= p.OpenHour && h < p.CloseHour
}
