package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Astemirdum/library-catalog/library/internal/errs"
	"github.com/Astemirdum/library-catalog/library/internal/handler"
	service_mocks "github.com/Astemirdum/library-catalog/library/internal/handler/mocks"
	"github.com/Astemirdum/library-catalog/library/internal/model"
	"github.com/Astemirdum/library-catalog/pkg/jsonx"
	"github.com/Astemirdum/library-catalog/pkg/validate"
	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type response struct {
	expectedCode int
	expectedBody string
}

type mockBehavior func(s *service_mocks.MockLibraryService)

type testCase struct {
	name         string
	target       string
	body         string
	mockBehavior mockBehavior
	response     response
}

func run(t *testing.T, method, route string, handle func(h *handler.Handler) echo.HandlerFunc, tests []testCase) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockLibraryService(c)
			log := zap.NewExample().Named("test")
			h := handler.New(svc, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.JSONSerializer = jsonx.Serializer{}
			e.Add(method, route, handle(h))

			var r *http.Request
			if tt.body != "" {
				r = httptest.NewRequest(method, tt.target, strings.NewReader(tt.body))
			} else {
				r = httptest.NewRequest(method, tt.target, http.NoBody)
			}
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(svc)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func noCall(*service_mocks.MockLibraryService) {}

func TestHandler_ListBooks(t *testing.T) {
	t.Parallel()
	isbn := "978-0-441-17271-9"
	year := 1965
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	run(t, http.MethodGet, "/api/books", func(h *handler.Handler) echo.HandlerFunc { return h.ListBooks }, []testCase{
		{
			name:   "ok",
			target: "/api/books?q=dune&genre=Sci-Fi",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().
					ListBooks(gomock.Any(), model.BookFilter{Query: "dune", Genre: "Sci-Fi"}).
					Return([]model.Book{{
						ID:              7,
						Title:           "Dune",
						Author:          "Frank Herbert",
						ISBN:            &isbn,
						Genre:           "Sci-Fi",
						Year:            &year,
						TotalCopies:     1,
						AvailableCopies: 0,
						Description:     "Epic science fiction saga",
						CreatedAt:       created,
					}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":7,"title":"Dune","author":"Frank Herbert","isbn":"978-0-441-17271-9","genre":"Sci-Fi","year":1965,"total_copies":1,"available_copies":0,"description":"Epic science fiction saga","cover_url":"","created_at":"2024-03-01T10:00:00Z"}]`,
			},
		},
		{
			name:   "empty",
			target: "/api/books",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().ListBooks(gomock.Any(), model.BookFilter{}).Return([]model.Book{}, nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `[]`},
		},
		{
			name:   "err. internal",
			target: "/api/books",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().ListBooks(gomock.Any(), model.BookFilter{}).Return(nil, errors.New("db internal"))
			},
			response: response{expectedCode: http.StatusInternalServerError, expectedBody: `{"message":"db internal"}`},
		},
	})
}

func TestHandler_GetBook(t *testing.T) {
	t.Parallel()
	run(t, http.MethodGet, "/api/books/:id", func(h *handler.Handler) echo.HandlerFunc { return h.GetBook }, []testCase{
		{
			name:   "err. not found",
			target: "/api/books/99",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().GetBook(gomock.Any(), int64(99)).Return(model.Book{}, errs.ErrNotFound)
			},
			response: response{expectedCode: http.StatusNotFound, expectedBody: `{"message":"not found"}`},
		},
		{
			name:         "err. invalid id",
			target:       "/api/books/abc",
			mockBehavior: noCall,
			response:     response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"id is invalid"}`},
		},
	})
}

func TestHandler_CreateBook(t *testing.T) {
	t.Parallel()
	copies := 2
	run(t, http.MethodPost, "/api/books", func(h *handler.Handler) echo.HandlerFunc { return h.CreateBook }, []testCase{
		{
			name:   "ok",
			target: "/api/books",
			body:   `{"title":"Clean Code","author":"Robert C. Martin","isbn":"978-0-13-235088-4","total_copies":2}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().
					CreateBook(gomock.Any(), model.BookRequest{
						Title:       "Clean Code",
						Author:      "Robert C. Martin",
						ISBN:        "978-0-13-235088-4",
						TotalCopies: &copies,
					}).
					Return(int64(9), nil)
			},
			response: response{expectedCode: http.StatusCreated, expectedBody: `{"id":9,"message":"Book added"}`},
		},
		{
			name:   "err. duplicate isbn",
			target: "/api/books",
			body:   `{"title":"Clean Code","author":"Robert C. Martin","isbn":"978-0-13-235088-4"}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().CreateBook(gomock.Any(), gomock.Any()).Return(int64(0), errs.ErrDuplicateISBN)
			},
			response: response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"ISBN already exists"}`},
		},
		{
			name:   "err. title required",
			target: "/api/books",
			body:   `{"author":"Anon"}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().CreateBook(gomock.Any(), model.BookRequest{Author: "Anon"}).Return(int64(0), errs.Invalid("title is required"))
			},
			response: response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"title is required"}`},
		},
	})
}

func TestHandler_DeleteBook(t *testing.T) {
	t.Parallel()
	run(t, http.MethodDelete, "/api/books/:id", func(h *handler.Handler) echo.HandlerFunc { return h.DeleteBook }, []testCase{
		{
			name:   "ok",
			target: "/api/books/3",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().DeleteBook(gomock.Any(), int64(3)).Return(nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"message":"Deleted"}`},
		},
		{
			name:   "err. open borrowings",
			target: "/api/books/7",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().DeleteBook(gomock.Any(), int64(7)).Return(errs.ErrHasOpenBorrowings)
			},
			response: response{expectedCode: http.StatusConflict, expectedBody: `{"message":"open borrowings reference this record"}`},
		},
	})
}

func TestHandler_ListMembers(t *testing.T) {
	t.Parallel()
	run(t, http.MethodGet, "/api/members", func(h *handler.Handler) echo.HandlerFunc { return h.ListMembers }, []testCase{
		{
			name:   "ok. tier exposed as member_type",
			target: "/api/members?q=alice",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().ListMembers(gomock.Any(), "alice").Return([]model.Member{{
					ID:             1,
					Name:           "Alice Johnson",
					Email:          "alice@email.com",
					Phone:          "555-0101",
					MembershipType: model.MemberPremium,
					JoinDate:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
					Active:         true,
				}}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `[{"id":1,"name":"Alice Johnson","email":"alice@email.com","phone":"555-0101","member_type":"premium","join_date":"2024-01-02T03:04:05Z","active":true}]`,
			},
		},
	})
}

func TestHandler_CreateMember(t *testing.T) {
	t.Parallel()
	run(t, http.MethodPost, "/api/members", func(h *handler.Handler) echo.HandlerFunc { return h.CreateMember }, []testCase{
		{
			name:   "ok",
			target: "/api/members",
			body:   `{"name":"Eve","email":"eve@email.com","member_type":"premium"}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().
					CreateMember(gomock.Any(), model.MemberRequest{Name: "Eve", Email: "eve@email.com", MemberType: model.MemberPremium}).
					Return(int64(5), nil)
			},
			response: response{expectedCode: http.StatusCreated, expectedBody: `{"id":5,"message":"Member added"}`},
		},
		{
			name:   "err. duplicate email",
			target: "/api/members",
			body:   `{"name":"Alice","email":"alice@email.com"}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().CreateMember(gomock.Any(), gomock.Any()).Return(int64(0), errs.ErrDuplicateEmail)
			},
			response: response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"email already registered"}`},
		},
	})
}

func TestHandler_BorrowBook(t *testing.T) {
	t.Parallel()
	bookID, memberID := int64(1), int64(2)
	run(t, http.MethodPost, "/api/borrowings", func(h *handler.Handler) echo.HandlerFunc { return h.BorrowBook }, []testCase{
		{
			name:   "ok",
			target: "/api/borrowings",
			body:   `{"book_id":1,"member_id":2}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().BorrowBook(gomock.Any(), bookID, memberID).Return(model.Borrowing{
					ID:       5,
					BookID:   &bookID,
					MemberID: &memberID,
					DueDate:  model.DateOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)),
					Status:   model.StatusBorrowed,
				}, nil)
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":5,"due_date":"2024-03-15","message":"Book borrowed"}`,
			},
		},
		{
			name:   "err. unavailable",
			target: "/api/borrowings",
			body:   `{"book_id":1,"member_id":2}`,
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().BorrowBook(gomock.Any(), bookID, memberID).Return(model.Borrowing{}, errs.ErrUnavailable)
			},
			response: response{expectedCode: http.StatusBadRequest, expectedBody: `{"message":"book not available"}`},
		},
		{
			name:         "err. member_id required",
			target:       "/api/borrowings",
			body:         `{"book_id":1}`,
			mockBehavior: noCall,
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"Key: 'BorrowRequest.MemberID' Error:Field validation for 'MemberID' failed on the 'required' tag"}`,
			},
		},
	})
}

func TestHandler_ReturnBook(t *testing.T) {
	t.Parallel()
	run(t, http.MethodPost, "/api/borrowings/:id/return", func(h *handler.Handler) echo.HandlerFunc { return h.ReturnBook }, []testCase{
		{
			name:   "ok",
			target: "/api/borrowings/5/return",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().ReturnBook(gomock.Any(), int64(5)).Return(nil)
			},
			response: response{expectedCode: http.StatusOK, expectedBody: `{"message":"Book returned"}`},
		},
		{
			name:   "err. already returned",
			target: "/api/borrowings/5/return",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().ReturnBook(gomock.Any(), int64(5)).Return(errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
				expectedBody: `{"message":"borrowing record not found or already returned"}`,
			},
		},
	})
}

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()
	run(t, http.MethodGet, "/api/stats", func(h *handler.Handler) echo.HandlerFunc { return h.GetStats }, []testCase{
		{
			name:   "ok. genres keep count order",
			target: "/api/stats",
			mockBehavior: func(s *service_mocks.MockLibraryService) {
				s.EXPECT().GetStats(gomock.Any()).Return(model.Stats{
					TotalBooks:     8,
					AvailableBooks: 21,
					BorrowedBooks:  1,
					TotalMembers:   4,
					GenreDistribution: model.GenreDistribution{
						{Genre: "Technology", Count: 2},
						{Genre: "Fiction", Count: 2},
						{Genre: "", Count: 1},
					},
				}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"total_books":8,"available_books":21,"borrowed_books":1,"overdue_books":0,"total_members":4,"genre_distribution":{"Technology":2,"Fiction":2,"":1}}`,
			},
		},
	})
}

func TestHandler_NewRouter(t *testing.T) {
	t.Parallel()
	c := gomock.NewController(t)
	defer c.Finish()
	svc := service_mocks.NewMockLibraryService(c)
	svc.EXPECT().GetStats(gomock.Any()).Return(model.Stats{}, nil)

	e := handler.New(svc, zap.NewNop()).NewRouter()

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/manage/health", http.NoBody))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "OK", w.Body.String())

	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/stats", http.NoBody).WithContext(context.Background())
	e.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(echo.HeaderXRequestID))
}
