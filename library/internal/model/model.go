package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Astemirdum/library-catalog/pkg/jsonx"
)

type Book struct {
	ID              int64     `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Author          string    `json:"author" db:"author"`
	ISBN            *string   `json:"isbn" db:"isbn"`
	Genre           string    `json:"genre" db:"genre"`
	Year            *int      `json:"year" db:"year"`
	TotalCopies     int       `json:"total_copies" db:"total_copies"`
	AvailableCopies int       `json:"available_copies" db:"available_copies"`
	Description     string    `json:"description" db:"description"`
	CoverURL        string    `json:"cover_url" db:"cover_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// BookRequest is the writable part of a Book. AvailableCopies is owned by the ledger.
type BookRequest struct {
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author" validate:"required"`
	ISBN        string `json:"isbn" validate:"max=32"`
	Genre       string `json:"genre"`
	Year        *int   `json:"year"`
	TotalCopies *int   `json:"total_copies" validate:"omitempty,min=0"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
}

func (r BookRequest) Copies() int {
	if r.TotalCopies == nil {
		return 1
	}
	return *r.TotalCopies
}

type BookFilter struct {
	Query string
	Genre string
}

type MemberType string

const (
	MemberStandard MemberType = "standard"
	MemberPremium  MemberType = "premium"
)

type Member struct {
	ID    int64  `json:"id" db:"id"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
	Phone string `json:"phone" db:"phone"`
	// Stored as membership_type, exposed as member_type.
	MembershipType MemberType `json:"member_type" db:"membership_type"`
	JoinDate       time.Time  `json:"join_date" db:"join_date"`
	Active         bool       `json:"active" db:"active"`
}

type MemberRequest struct {
	Name       string     `json:"name" validate:"required"`
	Email      string     `json:"email" validate:"required,email"`
	Phone      string     `json:"phone"`
	MemberType MemberType `json:"member_type" validate:"omitempty,oneof=standard premium"`
}

type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
)

type Borrowing struct {
	ID         int64      `json:"id" db:"id"`
	BookID     *int64     `json:"book_id" db:"book_id"`
	MemberID   *int64     `json:"member_id" db:"member_id"`
	BorrowDate time.Time  `json:"borrow_date" db:"borrow_date"`
	DueDate    Date       `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date" db:"return_date"`
	Status     Status     `json:"status" db:"status"`
}

// BorrowingRecord is a Borrowing joined with its book and member.
type BorrowingRecord struct {
	Borrowing   `json:",inline"`
	BookTitle   string `json:"book_title" db:"book_title"`
	BookAuthor  string `json:"book_author" db:"book_author"`
	MemberName  string `json:"member_name" db:"member_name"`
	MemberEmail string `json:"member_email" db:"member_email"`
	Overdue     bool   `json:"overdue" db:"-"`
}

// IsOverdue reports whether an open borrowing is past its due date on the
// calendar day of today.
func (b Borrowing) IsOverdue(today time.Time) bool {
	return b.Status == StatusBorrowed && b.DueDate.Before(DateOf(today).Time)
}

type BorrowRequest struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	MemberID int64 `json:"member_id" validate:"required,gt=0"`
}

type BorrowResponse struct {
	ID      int64  `json:"id"`
	DueDate Date   `json:"due_date"`
	Message string `json:"message"`
}

type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type GenreCount struct {
	Genre string `db:"genre"`
	Count int64  `db:"cnt"`
}

// GenreDistribution is ordered by count descending and serializes as a JSON
// object whose keys keep that order.
type GenreDistribution []GenreCount

func (g GenreDistribution) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, gc := range g {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, err := jsonx.Marshal(gc.Genre)
		if err != nil {
			return nil, err
		}
		sb.Write(key)
		sb.WriteByte(':')
		sb.WriteString(strconv.FormatInt(gc.Count, 10))
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

type Stats struct {
	TotalBooks        int64             `json:"total_books"`
	AvailableBooks    int64             `json:"available_books"`
	BorrowedBooks     int64             `json:"borrowed_books"`
	OverdueBooks      int64             `json:"overdue_books"`
	TotalMembers      int64             `json:"total_members"`
	GenreDistribution GenreDistribution `json:"genre_distribution"`
}

// Date is a calendar date, serialized as YYYY-MM-DD.
type Date struct {
	time.Time `json:",inline"`
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(time.DateOnly)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(time.DateOnly) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

var dateLayouts = []string{
	time.DateOnly,
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	time.DateTime,
}

func (d *Date) Scan(src interface{}) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	case nil:
		*d = Date{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}

func (d *Date) parse(s string) error {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*d = DateOf(t)
			return nil
		}
	}
	return fmt.Errorf("cannot parse %q as date", s)
}
