package booksvc

import (
	"context"
	"errors"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
	repo "github.com/qihfathny29/perpustakaandigital40-sub000/repository/book"
)

type Availability = repo.Availability

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	GetAvailability(ctx context.Context, id int64) (*Availability, error)
}

type Service interface {
	Create(ctx context.Context, title, author, category string, copies int64) (*model.Book, error)
	AddCopies(ctx context.Context, bookID int64, n int64) error
	List(ctx context.Context) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Availability(ctx context.Context, id int64) (*Availability, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Create(ctx context.Context, title, author, category string, copies int64) (*model.Book, error) {
	if title == "" || author == "" || category == "" || copies < 0 {
		return nil, errors.New("invalid payload")
	}
	b := &model.Book{Title: title, Author: author, Category: category, TotalCopies: copies}
	if err := s.r.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) AddCopies(ctx context.Context, bookID int64, n int64) error {
	if n <= 0 {
		return errors.New("n must be > 0")
	}
	return s.r.AddCopies(ctx, bookID, n)
}

func (s *service) List(ctx context.Context) ([]model.Book, error) { return s.r.List(ctx) }

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return s.r.Detail(ctx, id)
}
func (s *service) Availability(ctx context.Context, id int64) (*Availability, error) {
	return s.r.GetAvailability(ctx, id)
}
