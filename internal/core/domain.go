package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"
)

// DefaultCategory is stored when the user leaves the category blank.
const DefaultCategory = "Uncategorized"

// DateLayout is the ISO-8601 calendar date format used for storage.
const DateLayout = "2006-01-02"

type (
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID       int64
		Kind     Kind
		Amount   decimal.Decimal
		Category string
		Date     Date
	}

	// TransactionUpdate carries the mutable fields of a transaction.
	// Nil fields are left untouched.
	TransactionUpdate struct {
		Amount   *decimal.Decimal
		Category *string
		Date     *Date
	}
)

var (
	ErrInvalidYear    = errors.New("invalid year")
	ErrInvalidMonth   = errors.New("invalid month")
	ErrInvalidDay     = errors.New("invalid day")
	ErrInvalidDate    = errors.New("date does not exist")
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount cannot be negative")
	ErrInvalidKind    = errors.New("invalid transaction type")
	ErrInvalidID      = errors.New("invalid transaction id")
	ErrNotFound       = errors.New("transaction not found")
)

// ParseKind accepts "expense" or "income" in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case Expense, Income:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidKind, string(k))
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	return string(k)
}

// Title returns the kind with an upper-case first letter for display.
func (k Kind) Title() string {
	if k == "" {
		return ""
	}
	return strings.ToUpper(string(k[:1])) + string(k[1:])
}

// ValidateMonth checks the 1..12 range on its own.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// ValidateDay checks the 1..31 range on its own, before the month is known.
func ValidateDay(day int) error {
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	return nil
}

// ValidateYear rejects years that do not fit the four digit storage format.
func ValidateYear(year int) error {
	if year < 1 || year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// NewDate builds a calendar date and rejects days that do not exist in the
// given month, such as February 30 or February 29 outside leap years.
func NewDate(year, month, day int) (Date, error) {
	if err := ValidateYear(year); err != nil {
		return Date{}, err
	}
	if err := ValidateMonth(month); err != nil {
		return Date{}, err
	}
	if err := ValidateDay(day); err != nil {
		return Date{}, err
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2), so a round trip detects it.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	return Date{Time: t}, nil
}

// MustDate is NewDate for literals known to be valid.
func MustDate(year, month, day int) Date {
	d, err := NewDate(year, month, day)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: zero date", ErrInvalidDate)
	}
	_, err := NewDate(d.Year(), d.Month(), d.Day())
	return err
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// String returns the ISO-8601 form used in storage and exports.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// Display returns the DD-MM-YYYY form shown when asking for confirmation.
func (d Date) Display() string {
	return d.Format("02-01-2006")
}

// NormalizeCategory trims the category and falls back to DefaultCategory.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCategory
	}
	return s
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := ValidateAmount(t.Amount); err != nil {
		return err
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

// Apply returns a copy of t with the non-nil fields of u applied.
// ID and Kind are never changed.
func (t Transaction) Apply(u TransactionUpdate) Transaction {
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.Category != nil {
		t.Category = NormalizeCategory(*u.Category)
	}
	if u.Date != nil {
		t.Date = *u.Date
	}
	return t
}

func (u TransactionUpdate) Validate() error {
	if u.Amount != nil {
		if err := ValidateAmount(*u.Amount); err != nil {
			return err
		}
	}
	if u.Date != nil {
		if err := u.Date.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsEmpty reports whether the update would change nothing.
func (u TransactionUpdate) IsEmpty() bool {
	return u.Amount == nil && u.Category == nil && u.Date == nil
}
