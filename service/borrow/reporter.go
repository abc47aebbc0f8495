package borrow

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Reporter logs a periodic overdue summary. It only reads: overdue is
// derived from due_date at query time and is never written back as a status.
type Reporter struct {
	rr  RecordRepo
	log *slog.Logger
	now func() time.Time
}

func NewReporter(rr RecordRepo, log *slog.Logger) *Reporter {
	return &Reporter{rr: rr, log: log, now: time.Now}
}

func (r *Reporter) Run(ctx context.Context) {
	recs, err := r.rr.ListOverdue(ctx, r.now())
	if err != nil {
		r.log.Error("overdue report failed", "err", err)
		return
	}
	if len(recs) == 0 {
		r.log.Info("overdue report", "count", 0)
		return
	}
	ids := make([]int64, 0, len(recs))
	for i := range recs {
		ids = append(ids, recs[i].ID)
	}
	r.log.Warn("overdue report", "count", len(recs), "record_ids", ids)
}

// Schedule registers the report on c using a standard cron expression.
func (r *Reporter) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		r.Run(ctx)
	})
}
