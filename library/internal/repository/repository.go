package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/store"
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Repository interface {
	ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error)
	GetBook(ctx context.Context, id int64) (model.Book, error)
	CreateBook(ctx context.Context, req model.BookRequest) (int64, error)
	UpdateBook(ctx context.Context, id int64, req model.BookRequest) error
	DeleteBook(ctx context.Context, id int64) error

	ListMembers(ctx context.Context, query string) ([]model.Member, error)
	GetMember(ctx context.Context, id int64) (model.Member, error)
	CreateMember(ctx context.Context, req model.MemberRequest, joinedAt time.Time) (int64, error)
	DeleteMember(ctx context.Context, id int64) error

	BorrowBook(ctx context.Context, bookID, memberID int64, borrowedAt time.Time, due model.Date) (model.Borrowing, error)
	ReturnBook(ctx context.Context, borrowingID int64, returnedAt time.Time) (model.Borrowing, error)
	ListBorrowings(ctx context.Context, status model.Status) ([]model.BorrowingRecord, error)

	GetStats(ctx context.Context, today model.Date) (model.Stats, error)
	Seed(ctx context.Context, now time.Time, loanDays int) (bool, error)
}

type repository struct {
	db  *store.DB
	qb  sq.StatementBuilderType
	log *zap.Logger
}

func NewRepository(db *store.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		qb:  db.Builder(),
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName      = `books`
	membersTableName    = `members`
	borrowingsTableName = `borrowings`
)

var (
	bookColumns = []string{
		"id", "title", "author", "isbn", "genre", "year",
		"total_copies", "available_copies", "description", "cover_url", "created_at",
	}
	memberColumns = []string{"id", "name", "email", "phone", "membership_type", "join_date", "active"}
)

func likePattern(q string) string {
	return "%" + strings.ToLower(q) + "%"
}

func nullableISBN(isbn string) *string {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" {
		return nil
	}
	return &isbn
}

func (r *repository) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	q := r.qb.Select(bookColumns...).From(booksTableName)
	if filter.Query != "" {
		p := likePattern(filter.Query)
		q = q.Where(sq.Or{
			sq.Like{"LOWER(title)": p},
			sq.Like{"LOWER(author)": p},
			sq.Like{"LOWER(isbn)": p},
		})
	}
	if filter.Genre != "" {
		q = q.Where(sq.Eq{"genre": filter.Genre})
	}
	query, args, err := q.OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}
	r.log.Debug("ListBooks", zap.String("query", query), zap.Any("args", args))

	books := make([]model.Book, 0)
	if err := r.db.SelectContext(ctx, &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}

func (r *repository) GetBook(ctx context.Context, id int64) (model.Book, error) {
	query, args, err := r.qb.Select(bookColumns...).
		From(booksTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := r.db.GetContext(ctx, &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) CreateBook(ctx context.Context, req model.BookRequest) (int64, error) {
	copies := req.Copies()
	q := r.qb.Insert(booksTableName).
		Columns("title", "author", "isbn", "genre", "year", "total_copies", "available_copies", "description", "cover_url").
		Values(req.Title, req.Author, nullableISBN(req.ISBN), req.Genre, req.Year, copies, copies, req.Description, req.CoverURL)

	id, err := insertID(ctx, r.db, r.db.DB, q)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return 0, errs.ErrDuplicateISBN
		}
		r.log.Error("CreateBook", zap.Error(err))
		return 0, err
	}
	return id, nil
}

// UpdateBook moves available_copies by the same delta as total_copies so the
// number of copies on loan is unchanged.
func (r *repository) UpdateBook(ctx context.Context, id int64, req model.BookRequest) error {
	copies := req.Copies()
	delta := sq.Expr("available_copies + (? - total_copies)", copies)
	// available_copies first: MySQL evaluates assignments left to right.
	query, args, err := r.qb.Update(booksTableName).
		Set("available_copies", delta).
		Set("total_copies", copies).
		Set("title", req.Title).
		Set("author", req.Author).
		Set("isbn", nullableISBN(req.ISBN)).
		Set("genre", req.Genre).
		Set("year", req.Year).
		Set("description", req.Description).
		Set("cover_url", req.CoverURL).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("available_copies + (? - total_copies) >= 0", copies)).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return errs.ErrDuplicateISBN
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	if _, err := r.GetBook(ctx, id); err != nil {
		return err
	}
	return errs.Invalid("total_copies is below the number of borrowed copies")
}

func (r *repository) DeleteBook(ctx context.Context, id int64) error {
	return r.deleteUnlessBorrowed(ctx, booksTableName, "book_id", id)
}

func (r *repository) ListMembers(ctx context.Context, query string) ([]model.Member, error) {
	q := r.qb.Select(memberColumns...).From(membersTableName)
	if query != "" {
		p := likePattern(query)
		q = q.Where(sq.Or{
			sq.Like{"LOWER(name)": p},
			sq.Like{"LOWER(email)": p},
		})
	}
	sqlQuery, args, err := q.OrderBy("id").ToSql()
	if err != nil {
		return nil, err
	}

	members := make([]model.Member, 0)
	if err := r.db.SelectContext(ctx, &members, sqlQuery, args...); err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) GetMember(ctx context.Context, id int64) (model.Member, error) {
	query, args, err := r.qb.Select(memberColumns...).
		From(membersTableName).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}

	var m model.Member
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, errs.ErrNotFound
		}
		return model.Member{}, err
	}
	return m, nil
}

func (r *repository) CreateMember(ctx context.Context, req model.MemberRequest, joinedAt time.Time) (int64, error) {
	memberType := req.MemberType
	if memberType == "" {
		memberType = model.MemberStandard
	}
	q := r.qb.Insert(membersTableName).
		Columns("name", "email", "phone", "membership_type", "join_date", "active").
		Values(req.Name, req.Email, req.Phone, memberType, joinedAt.UTC(), true)

	id, err := insertID(ctx, r.db, r.db.DB, q)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return 0, errs.ErrDuplicateEmail
		}
		r.log.Error("CreateMember", zap.Error(err))
		return 0, err
	}
	return id, nil
}

func (r *repository) DeleteMember(ctx context.Context, id int64) error {
	return r.deleteUnlessBorrowed(ctx, membersTableName, "member_id", id)
}

// deleteUnlessBorrowed removes the row unless an open borrowing references it.
// Deleting a missing row is not an error.
func (r *repository) deleteUnlessBorrowed(ctx context.Context, table, fk string, id int64) error {
	// Plain builder: the outer statement rewrites the placeholders.
	open := sq.Select("1").
		From(borrowingsTableName).
		Where(sq.Eq{fk: id, "status": model.StatusBorrowed})
	openSQL, openArgs, err := open.ToSql()
	if err != nil {
		return err
	}
	query, args, err := r.qb.Delete(table).
		Where(sq.Eq{"id": id}).
		Where("NOT EXISTS ("+openSQL+")", openArgs...).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	var exists int
	existsQuery, existsArgs, err := r.qb.Select("COUNT(*)").From(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	if err := r.db.GetContext(ctx, &exists, existsQuery, existsArgs...); err != nil {
		return err
	}
	if exists > 0 {
		return errs.ErrHasOpenBorrowings
	}
	return nil
}

// insertID runs an insert and returns the generated primary key.
func insertID(ctx context.Context, db *store.DB, ext sqlx.ExtContext, q sq.InsertBuilder) (int64, error) {
	if db.SupportsReturning() {
		query, args, err := q.Suffix("RETURNING id").ToSql()
		if err != nil {
			return 0, err
		}
		var id int64
		if err := sqlx.GetContext(ctx, ext, &id, query, args...); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}
