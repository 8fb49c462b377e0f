package service

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/events"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"go.uber.org/zap"
)

// BorrowBook lends one copy of the book to the member. The due date is the
// borrow calendar date plus the loan period. Whether the member exists or is
// active is not checked here.
func (s *Service) BorrowBook(ctx context.Context, bookID, memberID int64) (model.Borrowing, error) {
	if bookID <= 0 || memberID <= 0 {
		return model.Borrowing{}, errs.Invalid("book_id and member_id are required")
	}
	now := s.now().UTC()
	due := model.DateOf(now.AddDate(0, 0, s.loanDays))

	b, err := s.repo.BorrowBook(ctx, bookID, memberID, now, due)
	if err != nil {
		return model.Borrowing{}, err
	}
	s.publish(ctx, events.NewEvent(events.BookBorrowed, b, now))
	return b, nil
}

// ReturnBook closes an open borrowing. Unknown and already returned
// borrowings both yield errs.ErrNotFound.
func (s *Service) ReturnBook(ctx context.Context, borrowingID int64) error {
	now := s.now().UTC()
	b, err := s.repo.ReturnBook(ctx, borrowingID, now)
	if err != nil {
		return err
	}
	s.publish(ctx, events.NewEvent(events.BookReturned, b, now))
	return nil
}

func (s *Service) ListBorrowings(ctx context.Context, status model.Status) ([]model.BorrowingRecord, error) {
	switch status {
	case "", model.StatusBorrowed, model.StatusReturned:
	default:
		return nil, errs.Invalid("unknown status " + string(status))
	}
	items, err := s.repo.ListBorrowings(ctx, status)
	if err != nil {
		return nil, err
	}
	today := s.now().UTC()
	for i := range items {
		items[i].Overdue = items[i].IsOverdue(today)
	}
	return items, nil
}

// publish never fails the caller: the ledger change is already committed.
// The event outlives a client that hangs up after the commit.
func (s *Service) publish(ctx context.Context, e events.Event) {
	if err := s.publisher.Publish(context.WithoutCancel(ctx), e); err != nil {
		s.log.Warn("publish event",
			zap.String("type", string(e.Type)),
			zap.Int64("borrowing_id", e.BorrowingID),
			zap.Error(err))
	}
}
