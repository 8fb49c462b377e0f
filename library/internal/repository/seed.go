package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type seedBook struct {
	title, author, isbn, genre string
	year, copies               int
	description                string
	borrowedBy                 int // index into seedMembers, -1 when on the shelf
}

var seedBooks = []seedBook{
	{"The Great Gatsby", "F. Scott Fitzgerald", "978-0-7432-7356-5", "Fiction", 1925, 3, "A story of the Jazz Age", -1},
	{"To Kill a Mockingbird", "Harper Lee", "978-0-06-112008-4", "Fiction", 1960, 2, "A tale of racial injustice", -1},
	{"1984", "George Orwell", "978-0-452-28423-4", "Dystopian", 1949, 4, "A dystopian novel", -1},
	{"Clean Code", "Robert C. Martin", "978-0-13-235088-4", "Technology", 2008, 2, "A handbook of agile software craftsmanship", -1},
	{"The Pragmatic Programmer", "Andrew Hunt", "978-0-13-595705-9", "Technology", 1999, 3, "Your journey to mastery", -1},
	{"Sapiens", "Yuval Noah Harari", "978-0-06-231609-7", "History", 2011, 2, "A Brief History of Humankind", -1},
	{"Dune", "Frank Herbert", "978-0-441-17271-9", "Sci-Fi", 1965, 1, "Epic science fiction saga", 0},
	{"Atomic Habits", "James Clear", "978-0-73-521129-2", "Self-Help", 2018, 5, "Tiny changes, remarkable results", -1},
}

var seedMembers = []model.MemberRequest{
	{Name: "Alice Johnson", Email: "alice@email.com", Phone: "555-0101", MemberType: model.MemberPremium},
	{Name: "Bob Smith", Email: "bob@email.com", Phone: "555-0102", MemberType: model.MemberStandard},
	{Name: "Carol White", Email: "carol@email.com", Phone: "555-0103", MemberType: model.MemberStandard},
	{Name: "David Brown", Email: "david@email.com", Phone: "555-0104", MemberType: model.MemberPremium},
}

// Seed fills an empty catalog with demonstration data in one transaction.
// Seeded borrowings take their copy off the shelf like any other borrow.
// It reports whether anything was inserted.
func (r *repository) Seed(ctx context.Context, now time.Time, loanDays int) (bool, error) {
	now = now.UTC()
	seeded := false
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		query, args, err := r.qb.Select("COUNT(*)").From(booksTableName).ToSql()
		if err != nil {
			return err
		}
		if err := tx.GetContext(ctx, &count, query, args...); err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		memberIDs := make([]int64, 0, len(seedMembers))
		for _, m := range seedMembers {
			q := r.qb.Insert(membersTableName).
				Columns("name", "email", "phone", "membership_type", "join_date", "active").
				Values(m.Name, m.Email, m.Phone, m.MemberType, now, true)
			id, err := insertID(ctx, r.db, tx, q)
			if err != nil {
				return err
			}
			memberIDs = append(memberIDs, id)
		}

		due := model.DateOf(now.AddDate(0, 0, loanDays))
		for _, b := range seedBooks {
			available := b.copies
			if b.borrowedBy >= 0 {
				available--
			}
			year := b.year
			isbn := b.isbn
			q := r.qb.Insert(booksTableName).
				Columns("title", "author", "isbn", "genre", "year", "total_copies", "available_copies", "description", "cover_url").
				Values(b.title, b.author, &isbn, b.genre, &year, b.copies, available, b.description, "")
			bookID, err := insertID(ctx, r.db, tx, q)
			if err != nil {
				return err
			}
			if b.borrowedBy < 0 {
				continue
			}
			q = r.qb.Insert(borrowingsTableName).
				Columns("book_id", "member_id", "borrow_date", "due_date", "status").
				Values(bookID, memberIDs[b.borrowedBy], now, due, model.StatusBorrowed)
			if _, err := insertID(ctx, r.db, tx, q); err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		r.log.Info("catalog seeded", zap.Int("books", len(seedBooks)), zap.Int("members", len(seedMembers)))
	}
	return seeded, nil
}
