package bookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
)

var (
	// ErrInsufficientStock: guarded decrement found no free copy.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrPoolOverflow: an increment would push stock past total_copies,
	// which only happens when a return is replayed for the same record.
	ErrPoolOverflow = errors.New("stock would exceed total copies")
)

type Availability struct {
	Stock     int64 `json:"stock"`
	Available bool  `json:"available"`
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	GetAvailability(ctx context.Context, id int64) (*Availability, error)

	// In-tx operations. The caller owns the transaction so the stock
	// mutation commits or rolls back together with the paired record write.
	Get(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error)
	TryDecrement(ctx context.Context, tx *sql.Tx, bookID int64) error
	Increment(ctx context.Context, tx *sql.Tx, bookID int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, author, category, total_copies, stock, available)
		VALUES ($1, $2, $3, $4, $4, $4 > 0)
		RETURNING id, created_at, updated_at`
	b.Stock = b.TotalCopies
	b.Available = b.TotalCopies > 0
	return r.db.QueryRowContext(ctx, q, b.Title, b.Author, b.Category, b.TotalCopies).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// AddCopies grows the physical pool: total_copies and free stock move
// together, so outstanding loans are unaffected.
func (r *repo) AddCopies(ctx context.Context, bookID int64, n int64) error {
	const q = `
		UPDATE books
		SET total_copies = total_copies + $2,
			stock        = stock + $2,
			available    = TRUE,
			updated_at   = NOW()
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, bookID, n)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT id, title, author, category, total_copies, stock, available, created_at, updated_at
		FROM books
		ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category,
			&b.TotalCopies, &b.Stock, &b.Available, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, category, total_copies, stock, available, created_at, updated_at
		FROM books
		WHERE id = $1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Category,
		&b.TotalCopies, &b.Stock, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) GetAvailability(ctx context.Context, id int64) (*Availability, error) {
	const q = `
		SELECT stock, available
		FROM books
		WHERE id = $1`
	var a Availability
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&a.Stock, &a.Available); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) Get(ctx context.Context, tx *sql.Tx, id int64) (*model.Book, error) {
	const q = `
		SELECT id, title, author, category, total_copies, stock, available, created_at, updated_at
		FROM books
		WHERE id = $1`
	var b model.Book
	err := tx.QueryRowContext(ctx, q, id).Scan(&b.ID, &b.Title, &b.Author, &b.Category,
		&b.TotalCopies, &b.Stock, &b.Available, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// TryDecrement commits one copy to a loan. The WHERE guard takes the row
// lock and serializes two approvals racing for the last copy: the loser
// matches no row and gets ErrInsufficientStock, stock never goes negative.
func (r *repo) TryDecrement(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		UPDATE books
		SET stock      = stock - 1,
			available  = (stock - 1) > 0,
			updated_at = NOW()
		WHERE id = $1
		AND stock > 0`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// Increment releases one copy back to the pool, capped at total_copies.
func (r *repo) Increment(ctx context.Context, tx *sql.Tx, bookID int64) error {
	const q = `
		UPDATE books
		SET stock      = stock + 1,
			available  = TRUE,
			updated_at = NOW()
		WHERE id = $1
		AND stock < total_copies`
	res, err := tx.ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrPoolOverflow
	}
	return nil
}
