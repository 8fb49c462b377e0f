package service

import (
	"context"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/events"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	libraryRepo "github.com/Astemirdum/library-catalog/library/internal/repository"
	"github.com/Astemirdum/library-catalog/pkg/validate"
	"go.uber.org/zap"
)

const defaultLoanDays = 14

type Service struct {
	log       *zap.Logger
	repo      libraryRepo.Repository
	publisher events.Publisher
	now       func() time.Time
	loanDays  int
}

type Option func(s *Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLoanDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.loanDays = days
		}
	}
}

func NewService(repo libraryRepo.Repository, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		log:       log.Named("service"),
		repo:      repo,
		publisher: events.Nop{},
		now:       time.Now,
		loanDays:  defaultLoanDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func validateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return errs.Invalid(err.Error())
	}
	return nil
}

func (s *Service) ListBooks(ctx context.Context, filter model.BookFilter) ([]model.Book, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.ListBooks(ctx, filter)
}

func (s *Service) GetBook(ctx context.Context, id int64) (model.Book, error) {
	return s.repo.GetBook(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, req model.BookRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	return s.repo.CreateBook(ctx, req)
}

func (s *Service) UpdateBook(ctx context.Context, id int64, req model.BookRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return s.repo.UpdateBook(ctx, id, req)
}

func (s *Service) DeleteBook(ctx context.Context, id int64) error {
	return s.repo.DeleteBook(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context, query string) ([]model.Member, error) {
	return s.repo.ListMembers(ctx, strings.TrimSpace(query))
}

func (s *Service) GetMember(ctx context.Context, id int64) (model.Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) CreateMember(ctx context.Context, req model.MemberRequest) (int64, error) {
	if err := validateRequest(req); err != nil {
		return 0, err
	}
	return s.repo.CreateMember(ctx, req, s.now())
}

func (s *Service) DeleteMember(ctx context.Context, id int64) error {
	return s.repo.DeleteMember(ctx, id)
}

// GetStats evaluates overdue borrowings against today's calendar date.
func (s *Service) GetStats(ctx context.Context) (model.Stats, error) {
	return s.repo.GetStats(ctx, model.DateOf(s.now().UTC()))
}

// Seed inserts the demonstration catalog if the store has no books yet.
func (s *Service) Seed(ctx context.Context) (bool, error) {
	return s.repo.Seed(ctx, s.now(), s.loanDays)
}
