package borrow

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

func TestReporter_Run(t *testing.T) {
	calls := 0
	rr := &recordRepoMock{
		listOverdueFn: func(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
			calls++
			return []model.BorrowRecord{{ID: 1}, {ID: 2}}, nil
		},
		markReturnedFn: func(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
			t.Fatal("the report must never write")
			return nil
		},
	}
	r := NewReporter(rr, slog.Default())
	r.Run(context.Background())
	assert.Equal(t, 1, calls)
}

func TestReporter_RunSurvivesQueryError(t *testing.T) {
	rr := &recordRepoMock{
		listOverdueFn: func(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
			return nil, errors.New("boom")
		},
	}
	r := NewReporter(rr, slog.Default())
	r.Run(context.Background()) // logs and returns
}
