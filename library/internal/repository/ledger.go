package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/store"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// BorrowBook takes one copy off the shelf and opens a borrowing for it in a
// single transaction. The decrement is conditional on a copy being left, so
// concurrent borrows of the last copy cannot both succeed.
func (r *repository) BorrowBook(ctx context.Context, bookID, memberID int64, borrowedAt time.Time, due model.Date) (model.Borrowing, error) {
	b := model.Borrowing{
		BookID:     &bookID,
		MemberID:   &memberID,
		BorrowDate: borrowedAt.UTC(),
		DueDate:    due,
		Status:     model.StatusBorrowed,
	}

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := takeCopy(r.qb, bookID).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrUnavailable
		}

		ins := r.qb.Insert(borrowingsTableName).
			Columns("book_id", "member_id", "borrow_date", "due_date", "status").
			Values(bookID, memberID, b.BorrowDate, due, model.StatusBorrowed)
		id, err := insertID(ctx, r.db, tx, ins)
		if err != nil {
			if store.IsForeignKeyViolation(err) {
				return errs.Invalid("unknown member")
			}
			return err
		}
		b.ID = id
		return nil
	})
	if err != nil {
		if !errors.Is(err, errs.ErrUnavailable) {
			r.log.Error("BorrowBook", zap.Int64("book_id", bookID), zap.Int64("member_id", memberID), zap.Error(err))
		}
		return model.Borrowing{}, err
	}
	return b, nil
}

// takeCopy decrements the shelf count only while a copy is left, so the
// affected-row count tells whether the borrow may proceed.
func takeCopy(qb sq.StatementBuilderType, bookID int64) sq.UpdateBuilder {
	return qb.Update(booksTableName).
		Set("available_copies", sq.Expr("available_copies - 1")).
		Where(sq.Eq{"id": bookID}).
		Where(sq.Gt{"available_copies": 0})
}

// ReturnBook closes an open borrowing and puts its copy back on the shelf.
func (r *repository) ReturnBook(ctx context.Context, borrowingID int64, returnedAt time.Time) (model.Borrowing, error) {
	returnedAt = returnedAt.UTC()
	var b model.Borrowing

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := r.qb.Select("id", "book_id", "member_id", "borrow_date", "due_date", "return_date", "status").
			From(borrowingsTableName).
			Where(sq.Eq{"id": borrowingID, "status": model.StatusBorrowed}).
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &b, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errs.ErrNotFound
			}
			return err
		}

		query, args, err = r.qb.Update(borrowingsTableName).
			Set("status", model.StatusReturned).
			Set("return_date", returnedAt).
			Where(sq.Eq{"id": borrowingID, "status": model.StatusBorrowed}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrNotFound
		}

		if b.BookID != nil {
			query, args, err = r.qb.Update(booksTableName).
				Set("available_copies", sq.Expr("available_copies + 1")).
				Where(sq.Eq{"id": *b.BookID}).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return model.Borrowing{}, err
	}

	b.Status = model.StatusReturned
	b.ReturnDate = &returnedAt
	return b, nil
}

func (r *repository) ListBorrowings(ctx context.Context, status model.Status) ([]model.BorrowingRecord, error) {
	q := r.qb.Select(
		"br.id", "br.book_id", "br.member_id", "br.borrow_date", "br.due_date", "br.return_date", "br.status",
		"COALESCE(b.title, '') AS book_title",
		"COALESCE(b.author, '') AS book_author",
		"COALESCE(m.name, '') AS member_name",
		"COALESCE(m.email, '') AS member_email",
	).
		From(borrowingsTableName + " br").
		LeftJoin(booksTableName + " b ON br.book_id = b.id").
		LeftJoin(membersTableName + " m ON br.member_id = m.id")
	if status != "" {
		q = q.Where(sq.Eq{"br.status": status})
	}
	query, args, err := q.OrderBy("br.borrow_date DESC", "br.id DESC").ToSql()
	if err != nil {
		return nil, err
	}

	items := make([]model.BorrowingRecord, 0)
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, err
	}
	return items, nil
}
