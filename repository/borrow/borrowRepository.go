// repository/borrow/repo.go
package borrowrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

// Filter narrows the staff listing; zero values mean "any".
type Filter struct {
	UserID int64
	BookID int64
	Status model.BorrowStatus
}

type Repo interface {
	// In-tx operations used by the lifecycle.
	Insert(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error)
	GetByCorrelationForUpdate(ctx context.Context, tx *sql.Tx, correlationID string) (*model.BorrowRecord, error)
	HasActive(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	HasOverdue(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	DeleteTerminal(ctx context.Context, tx *sql.Tx, ids []int64, ownerID int64) (int64, error)

	// Read-only queries outside any lifecycle transaction.
	ListByUser(ctx context.Context, userID int64) ([]model.BorrowRecord, error)
	List(ctx context.Context, f Filter) ([]model.BorrowRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

var pg = goqu.Dialect("postgres")

const recordCols = `id, correlation_id, user_id, book_id, title, author, category,
	borrow_date, due_date, return_date, status, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	err := row.Scan(&rec.ID, &rec.CorrelationID, &rec.UserID, &rec.BookID,
		&rec.Title, &rec.Author, &rec.Category,
		&rec.BorrowDate, &rec.DueDate, &rec.ReturnDate, &rec.Status,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error {
	const q = `
		INSERT INTO borrow_records
			(correlation_id, user_id, book_id, title, author, category, borrow_date, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return tx.QueryRowContext(ctx, q,
		rec.CorrelationID, rec.UserID, rec.BookID,
		rec.Title, rec.Author, rec.Category,
		rec.BorrowDate, rec.DueDate, rec.Status,
	).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM borrow_records
		WHERE id = $1
		FOR UPDATE`
	return scanRecord(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) GetByCorrelationForUpdate(ctx context.Context, tx *sql.Tx, correlationID string) (*model.BorrowRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM borrow_records
		WHERE correlation_id = $1
		FOR UPDATE`
	return scanRecord(tx.QueryRowContext(ctx, q, correlationID))
}

// HasActive is the in-tx probe behind the one-active-loan rule. FOR UPDATE
// makes two concurrent requests for the same (user, book) serialize here
// instead of both passing the check before either commits.
func (r *repo) HasActive(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM borrow_records
			WHERE user_id = $1
			AND book_id = $2
			AND status IN ('PENDING', 'APPROVED', 'BORROWED')
			FOR UPDATE
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}

func (r *repo) HasOverdue(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1
			FROM borrow_records
			WHERE user_id = $1
			AND status = 'BORROWED'
			AND due_date < $2
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, userID, now).Scan(&exists)
	return exists, err
}

func (r *repo) UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error {
	const q = `
		UPDATE borrow_records
		SET status     = $2,
			updated_at = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, status)
	return err
}

func (r *repo) MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error {
	const q = `
		UPDATE borrow_records
		SET status      = 'RETURNED',
			return_date = $2,
			updated_at  = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, at)
	return err
}

func (r *repo) Delete(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `
		DELETE FROM borrow_records
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

// DeleteTerminal removes the matching subset of ids that is already in a
// terminal state; ownerID > 0 additionally restricts to that owner's rows.
func (r *repo) DeleteTerminal(ctx context.Context, tx *sql.Tx, ids []int64, ownerID int64) (int64, error) {
	ds := pg.Delete("borrow_records").Where(
		goqu.C("id").In(ids),
		goqu.C("status").In(string(model.BorrowReturned), string(model.BorrowRejected)),
	)
	if ownerID > 0 {
		ds = ds.Where(goqu.C("user_id").Eq(ownerID))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.BorrowRecord, error) {
	return r.List(ctx, Filter{UserID: userID})
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.BorrowRecord, error) {
	ds := pg.From("borrow_records").
		Select(goqu.L(recordCols)).
		Order(goqu.C("created_at").Desc(), goqu.C("id").Desc())
	if f.UserID > 0 {
		ds = ds.Where(goqu.C("user_id").Eq(f.UserID))
	}
	if f.BookID > 0 {
		ds = ds.Where(goqu.C("book_id").Eq(f.BookID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.C("status").Eq(string(f.Status)))
	}
	q, args, err := ds.Prepared(true).ToSQL()
	if err != nil {
		return nil, err
	}
	return r.queryRecords(ctx, q, args...)
}

func (r *repo) ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error) {
	const q = `
		SELECT ` + recordCols + `
		FROM borrow_records
		WHERE status = 'BORROWED'
		AND due_date < $1
		ORDER BY due_date ASC`
	return r.queryRecords(ctx, q, now)
}

func (r *repo) queryRecords(ctx context.Context, q string, args ...any) ([]model.BorrowRecord, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BorrowRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}
