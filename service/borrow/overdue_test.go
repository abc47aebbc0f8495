package borrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	rec := &model.BorrowRecord{Status: model.BorrowBorrowed, DueDate: past}
	assert.True(t, IsOverdue(rec, now))

	rec.DueDate = future
	assert.False(t, IsOverdue(rec, now))

	// once returned, a past due date no longer counts
	rec.DueDate = past
	rec.Status = model.BorrowReturned
	assert.False(t, IsOverdue(rec, now))

	// pending and approved copies are not physically out
	rec.Status = model.BorrowPending
	assert.False(t, IsOverdue(rec, now))
	rec.Status = model.BorrowApproved
	assert.False(t, IsOverdue(rec, now))
}
