package repository

import (
	"context"

	"github.com/Astemirdum/library-catalog/library/internal/model"
	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// GetStats collects the dashboard aggregates. The queries are independent
// and run concurrently on the pool.
func (r *repository) GetStats(ctx context.Context, today model.Date) (model.Stats, error) {
	var stats model.Stats

	scalars := []struct {
		name string
		q    sq.SelectBuilder
		dst  *int64
	}{
		{"total_books", r.qb.Select("COUNT(*)").From(booksTableName), &stats.TotalBooks},
		{"available_books", r.qb.Select("COALESCE(SUM(available_copies), 0)").From(booksTableName), &stats.AvailableBooks},
		{"total_members", r.qb.Select("COUNT(*)").From(membersTableName).Where(sq.Eq{"active": true}), &stats.TotalMembers},
		{"borrowed_books", r.qb.Select("COUNT(*)").From(borrowingsTableName).
			Where(sq.Eq{"status": model.StatusBorrowed}), &stats.BorrowedBooks},
		{"overdue_books", r.qb.Select("COUNT(*)").From(borrowingsTableName).
			Where(sq.Eq{"status": model.StatusBorrowed}).
			Where(sq.Lt{"due_date": today}), &stats.OverdueBooks},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range scalars {
		s := s
		g.Go(func() error {
			query, args, err := s.q.ToSql()
			if err != nil {
				return err
			}
			if err := r.db.GetContext(gctx, s.dst, query, args...); err != nil {
				return errors.Wrap(err, s.name)
			}
			return nil
		})
	}
	g.Go(func() error {
		query, args, err := r.qb.Select("COALESCE(genre, '') AS genre", "COUNT(*) AS cnt").
			From(booksTableName).
			GroupBy("COALESCE(genre, '')").
			OrderBy("cnt DESC", "genre").
			ToSql()
		if err != nil {
			return err
		}
		genres := make([]model.GenreCount, 0)
		if err := r.db.SelectContext(gctx, &genres, query, args...); err != nil {
			return errors.Wrap(err, "genre_distribution")
		}
		stats.GenreDistribution = genres
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Stats{}, err
	}
	return stats, nil
}
