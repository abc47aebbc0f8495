// service/book/book_service_test.go
package booksvc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/qihfathny29/perpustakaandigital40-sub000/model"
	booksvc "github.com/qihfathny29/perpustakaandigital40-sub000/service/book"
)

type repoMock struct {
	createFn       func(ctx context.Context, b *model.Book) error
	addCopiesFn    func(ctx context.Context, bookID int64, n int64) error
	listFn         func(ctx context.Context) ([]model.Book, error)
	detailFn       func(ctx context.Context, id int64) (*model.Book, error)
	availabilityFn func(ctx context.Context, id int64) (*booksvc.Availability, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) AddCopies(ctx context.Context, bookID int64, n int64) error {
	return m.addCopiesFn(ctx, bookID, n)
}
func (m *repoMock) List(ctx context.Context) ([]model.Book, error) { return m.listFn(ctx) }
func (m *repoMock) Detail(ctx context.Context, id int64) (*model.Book, error) {
	return m.detailFn(ctx, id)
}
func (m *repoMock) GetAvailability(ctx context.Context, id int64) (*booksvc.Availability, error) {
	return m.availabilityFn(ctx, id)
}

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if _, err := s.Create(context.Background(), "", "Andrea Hirata", "Novel", 2); err == nil {
		t.Fatal("expected error for empty title")
	}
	if _, err := s.Create(context.Background(), "Laskar Pelangi", "", "Novel", 2); err == nil {
		t.Fatal("expected error for empty author")
	}
	if _, err := s.Create(context.Background(), "Laskar Pelangi", "Andrea Hirata", "", 2); err == nil {
		t.Fatal("expected error for empty category")
	}
	if _, err := s.Create(context.Background(), "Laskar Pelangi", "Andrea Hirata", "Novel", -1); err == nil {
		t.Fatal("expected error for negative copies")
	}
}

func TestCreate_Success(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			if b.Title != "Laskar Pelangi" || b.TotalCopies != 3 {
				return errors.New("bad args")
			}
			b.ID = 42
			return nil
		},
	}
	s := booksvc.New(m)
	b, err := s.Create(context.Background(), "Laskar Pelangi", "Andrea Hirata", "Novel", 3)
	if err != nil || b.ID != 42 {
		t.Fatalf("got id=%v err=%v; want 42 nil", b, err)
	}
}

func TestAddCopies_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{})
	if err := s.AddCopies(context.Background(), 7, 0); err == nil {
		t.Fatal("expected error for n == 0")
	}
}

func TestPassThroughs(t *testing.T) {
	m := &repoMock{
		addCopiesFn: func(ctx context.Context, bookID int64, n int64) error { return nil },
		listFn:      func(ctx context.Context) ([]model.Book, error) { return nil, nil },
		detailFn:    func(ctx context.Context, id int64) (*model.Book, error) { return &model.Book{}, nil },
		availabilityFn: func(ctx context.Context, id int64) (*booksvc.Availability, error) {
			return &booksvc.Availability{Stock: 1, Available: true}, nil
		},
	}
	s := booksvc.New(m)

	if err := s.AddCopies(context.Background(), 7, 3); err != nil {
		t.Fatalf("AddCopies error: %v", err)
	}
	if _, err := s.List(context.Background()); err != nil {
		t.Fatalf("List error: %v", err)
	}
	if _, err := s.Detail(context.Background(), 99); err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if a, err := s.Availability(context.Background(), 99); err != nil || !a.Available {
		t.Fatalf("Availability got %v %v", a, err)
	}
}
