package handler

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/library/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type LibraryService interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (int64, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int64) error

	ListMembers(ctx context.Context, query string) ([]model.Member, error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	CreateMember(ctx context.Context, req model.MemberRequest) (int64, error)
	DeleteMember(ctx context.Context, id int64) error

	BorrowBook(ctx context.Context, bookID, memberID int64) (model.Borrowing, error)
	ReturnBook(ctx context.Context, borrowingID int64) error
	ListBorrowings(ctx context.Context, status model.Status) ([]model.BorrowingRecord, error)

	GetStats(ctx context.Context) (model.Stats, error)
}

var _ LibraryService = (*service.Service)(nil)
