package borrow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
	bookrepo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/book"
	borrowrepo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/borrow"
)

// Filter = repository shape
type Filter = borrowrepo.Filter

type BookRepo interface {
	Get(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	TryDecrement(ctx context.Context, tx *sql.Tx, bookID int64) error
	Increment(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type RecordRepo interface {
	Insert(ctx context.Context, tx *sql.Tx, rec *model.BorrowRecord) error
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.BorrowRecord, error)
	GetByCorrelationForUpdate(ctx context.Context, tx *sql.Tx, correlationID string) (*model.BorrowRecord, error)
	HasActive(ctx context.Context, tx *sql.Tx, userID, bookID int64) (bool, error)
	HasOverdue(ctx context.Context, tx *sql.Tx, userID int64, now time.Time) (bool, error)
	UpdateStatus(ctx context.Context, tx *sql.Tx, id int64, status model.BorrowStatus) error
	MarkReturned(ctx context.Context, tx *sql.Tx, id int64, at time.Time) error
	Delete(ctx context.Context, tx *sql.Tx, id int64) error
	DeleteTerminal(ctx context.Context, tx *sql.Tx, ids []int64, ownerID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64) ([]model.BorrowRecord, error)
	List(ctx context.Context, f Filter) ([]model.BorrowRecord, error)
	ListOverdue(ctx context.Context, now time.Time) ([]model.BorrowRecord, error)
}

type UserRepo interface {
	RoleOf(ctx context.Context, id int64) (model.Role, error)
}

type Service interface {
	// Request records intent only: no stock moves until a staff approval.
	Request(ctx context.Context, userID, bookID int64, w Window) (*model.BorrowRecord, error)

	// Approve commits one copy to a PENDING request.
	Approve(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// Reject closes a PENDING request without touching stock.
	Reject(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// ConfirmPickup marks the physical handover of an APPROVED loan.
	ConfirmPickup(ctx context.Context, recordID int64) (*model.BorrowRecord, error)

	// DirectLoan is the staff-mediated path: create and hand over in one step.
	DirectLoan(ctx context.Context, userID, bookID int64, w Window) (*model.BorrowRecord, error)

	// Return closes a BORROWED loan, looked up by its correlation id.
	Return(ctx context.Context, correlationID string, actorID int64, actorRole model.Role) (*model.BorrowRecord, error)

	// Delete removes a terminal record; owner or staff only.
	Delete(ctx context.Context, recordID, actorID int64, actorRole model.Role) error

	// BulkDelete removes the terminal subset of ids, reporting how many went.
	BulkDelete(ctx context.Context, recordIDs []int64, actorID int64, actorRole model.Role) (int64, error)

	MyLoans(ctx context.Context, userID int64) ([]model.BorrowRecord, error)
	List(ctx context.Context, f Filter) ([]model.BorrowRecord, error)
	Overdue(ctx context.Context) ([]model.BorrowRecord, error)
}

// ----- Service implementation -----

type service struct {
	db     *sql.DB
	br     BookRepo
	rr     RecordRepo
	ur     UserRepo
	policy Policy

	now   func() time.Time
	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func New(db *sql.DB, br BookRepo, rr RecordRepo, ur UserRepo, policy Policy) Service {
	s := &service{db: db, br: br, rr: rr, ur: ur, policy: policy, now: time.Now}
	s.runTx = s.sqlTx
	return s
}

func (s *service) sqlTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

const txAttempts = 3

// withTx runs fn in one transaction. A serialization failure or deadlock
// rolls everything back and the whole operation is retried: preconditions
// are re-checked on each attempt, so the retry is safe.
func (s *service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 1; attempt <= txAttempts; attempt++ {
		err = s.runTx(ctx, fn)
		if err == nil || !retryable(err) {
			return err
		}
	}
	return err
}

func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return makeErr(ErrConflict, "an active loan already exists for this user and book")
	}
	return err
}

// newCorrelationID builds the externally shared id: legible timestamp plus
// a random suffix so two requests in the same second stay distinct.
func newCorrelationID(now time.Time) string {
	return fmt.Sprintf("BRW-%s-%s", now.UTC().Format("20060102150405"), uuid.NewString()[:6])
}

func (s *service) Request(ctx context.Context, userID, bookID int64, w Window) (*model.BorrowRecord, error) {
	if err := s.policy.Validate(w); err != nil {
		return nil, err
	}

	var rec *model.BorrowRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.br.Get(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound, "book not found")
			}
			return err
		}
		if b.Stock <= 0 {
			return makeErr(ErrNoStock, "no copies available")
		}

		overdue, err := s.rr.HasOverdue(ctx, tx, userID, s.now())
		if err != nil {
			return err
		}
		if overdue {
			return makeErr(ErrConflict, "borrower has overdue loans")
		}

		active, err := s.rr.HasActive(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if active {
			return makeErr(ErrConflict, "an active loan already exists for this user and book")
		}

		rec = s.buildRecord(userID, b, w, model.BorrowPending)
		if err := s.rr.Insert(ctx, tx, rec); err != nil {
			return mapUniqueViolation(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Approve(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	return s.transition(ctx, recordID, model.BorrowPending, model.BorrowApproved, func(tx *sql.Tx, rec *model.BorrowRecord) error {
		// stock commits here, and only here, on the request path
		return s.decrement(ctx, tx, rec.BookID)
	})
}

func (s *service) Reject(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	return s.transition(ctx, recordID, model.BorrowPending, model.BorrowRejected, nil)
}

func (s *service) ConfirmPickup(ctx context.Context, recordID int64) (*model.BorrowRecord, error) {
	// no stock change: the copy was committed at approval
	return s.transition(ctx, recordID, model.BorrowApproved, model.BorrowBorrowed, nil)
}

// transition moves one record between states after re-checking the source
// state under lock. The extra step, when present, shares the transaction.
func (s *service) transition(ctx context.Context, recordID int64, from, to model.BorrowStatus,
	step func(tx *sql.Tx, rec *model.BorrowRecord) error) (*model.BorrowRecord, error) {

	var rec *model.BorrowRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = s.rr.GetForUpdate(ctx, tx, recordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound, "borrow record not found")
			}
			return err
		}
		if rec.Status != from {
			return makeErr(ErrConflict, fmt.Sprintf("record is %s, expected %s", rec.Status, from))
		}
		if step != nil {
			if err := step(tx, rec); err != nil {
				return err
			}
		}
		if err := s.rr.UpdateStatus(ctx, tx, rec.ID, to); err != nil {
			return err
		}
		rec.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) DirectLoan(ctx context.Context, userID, bookID int64, w Window) (*model.BorrowRecord, error) {
	if err := s.policy.Validate(w); err != nil {
		return nil, err
	}

	role, err := s.ur.RoleOf(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound, "target user not found")
		}
		return nil, err
	}
	if role != model.RoleStudent {
		return nil, makeErr(ErrInvalid, "direct loans can only be issued to students")
	}

	var rec *model.BorrowRecord
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		b, err := s.br.Get(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound, "book not found")
			}
			return err
		}

		active, err := s.rr.HasActive(ctx, tx, userID, bookID)
		if err != nil {
			return err
		}
		if active {
			return makeErr(ErrConflict, "an active loan already exists for this user and book")
		}

		if err := s.decrement(ctx, tx, bookID); err != nil {
			return err
		}

		rec = s.buildRecord(userID, b, w, model.BorrowBorrowed)
		if err := s.rr.Insert(ctx, tx, rec); err != nil {
			return mapUniqueViolation(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Return(ctx context.Context, correlationID string, actorID int64, actorRole model.Role) (*model.BorrowRecord, error) {
	var rec *model.BorrowRecord
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		rec, err = s.rr.GetByCorrelationForUpdate(ctx, tx, correlationID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound, "borrow record not found")
			}
			return err
		}
		if !actorRole.Staff() && rec.UserID != actorID {
			return makeErr(ErrForbidden, "not the owner of this loan")
		}
		if rec.Status != model.BorrowBorrowed {
			return makeErr(ErrConflict, fmt.Sprintf("record is %s, expected %s", rec.Status, model.BorrowBorrowed))
		}

		returnedAt := s.now()
		if err := s.rr.MarkReturned(ctx, tx, rec.ID, returnedAt); err != nil {
			return err
		}
		if err := s.br.Increment(ctx, tx, rec.BookID); err != nil {
			if errors.Is(err, bookrepo.ErrPoolOverflow) {
				return makeErr(ErrConflict, "return would exceed the book's copy pool")
			}
			return err
		}
		rec.Status = model.BorrowReturned
		rec.ReturnDate = &returnedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) Delete(ctx context.Context, recordID, actorID int64, actorRole model.Role) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		rec, err := s.rr.GetForUpdate(ctx, tx, recordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrNotFound, "borrow record not found")
			}
			return err
		}
		if !actorRole.Staff() && rec.UserID != actorID {
			return makeErr(ErrForbidden, "not the owner of this loan")
		}
		if !rec.Status.Terminal() {
			return makeErr(ErrConflict, "only returned or rejected records can be deleted")
		}
		return s.rr.Delete(ctx, tx, rec.ID)
	})
}

func (s *service) BulkDelete(ctx context.Context, recordIDs []int64, actorID int64, actorRole model.Role) (int64, error) {
	if len(recordIDs) == 0 {
		return 0, makeErr(ErrInvalid, "no record ids given")
	}
	ownerID := actorID
	if actorRole.Staff() {
		ownerID = 0 // staff may delete any terminal record
	}
	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		deleted, err = s.rr.DeleteTerminal(ctx, tx, recordIDs, ownerID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *service) MyLoans(ctx context.Context, userID int64) ([]model.BorrowRecord, error) {
	return s.rr.ListByUser(ctx, userID)
}

func (s *service) List(ctx context.Context, f Filter) ([]model.BorrowRecord, error) {
	return s.rr.List(ctx, f)
}

func (s *service) Overdue(ctx context.Context) ([]model.BorrowRecord, error) {
	return s.rr.ListOverdue(ctx, s.now())
}

func (s *service) decrement(ctx context.Context, tx *sql.Tx, bookID int64) error {
	if err := s.br.TryDecrement(ctx, tx, bookID); err != nil {
		if errors.Is(err, bookrepo.ErrInsufficientStock) {
			return makeErr(ErrNoStock, "no copies available")
		}
		return err
	}
	return nil
}

func (s *service) buildRecord(userID int64, b *model.Book, w Window, status model.BorrowStatus) *model.BorrowRecord {
	return &model.BorrowRecord{
		CorrelationID: newCorrelationID(s.now()),
		UserID:        userID,
		BookID:        b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Category:      b.Category,
		BorrowDate:    w.BorrowDate,
		DueDate:       w.DueDate,
		Status:        status,
	}
}
