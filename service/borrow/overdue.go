package borrow

import (
	"time"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

// IsOverdue is derived state, recomputed on read and never persisted:
// only a physically outstanding copy can be overdue.
func IsOverdue(rec *model.BorrowRecord, now time.Time) bool {
	return rec.Status == model.BorrowBorrowed && now.After(rec.DueDate)
}
