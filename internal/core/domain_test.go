package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestNewDate(t *testing.T) {
	cases := []struct {
		y, m, d int
		err     error
	}{
		{2025, 1, 1, nil},
		{2025, 12, 31, nil},
		{2024, 2, 29, nil}, // leap year
		{2000, 2, 29, nil}, // divisible by 400
		{2023, 2, 29, ErrInvalidDate},
		{2023, 2, 30, ErrInvalidDate},
		{1900, 2, 29, ErrInvalidDate}, // divisible by 100 only
		{2025, 4, 31, ErrInvalidDate},
		{2025, 0, 1, ErrInvalidMonth},
		{2025, 13, 1, ErrInvalidMonth},
		{2025, 1, 0, ErrInvalidDay},
		{2025, 1, 32, ErrInvalidDay},
		{0, 1, 1, ErrInvalidYear},
	}
	for _, tc := range cases {
		d, err := NewDate(tc.y, tc.m, tc.d)
		if tc.err == nil {
			if err != nil {
				t.Fatalf("%04d-%02d-%02d expected ok, got %v", tc.y, tc.m, tc.d, err)
			}
			if d.Year() != tc.y || d.Month() != tc.m || d.Day() != tc.d {
				t.Fatalf("unexpected date %v", d)
			}
			continue
		}
		if !errors.Is(err, tc.err) {
			t.Fatalf("%04d-%02d-%02d expected %v, got %v", tc.y, tc.m, tc.d, tc.err, err)
		}
		if !IsValidation(err) {
			t.Fatalf("%v should be a validation error", err)
		}
	}
}

func TestDateValidate(t *testing.T) {
	if err := MustDate(2024, 2, 29).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate for zero time, got %v", err)
	}
}

func TestParseDateAndFormat(t *testing.T) {
	d, err := ParseDate(" 2024-02-29 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("String() = %q", d.String())
	}
	if d.Display() != "29-02-2024" {
		t.Fatalf("Display() = %q", d.Display())
	}
	if _, err := ParseDate("2023-02-29"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	if _, err := ParseDate("29/02/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestParseKind(t *testing.T) {
	for _, in := range []string{"expense", " Income ", "EXPENSE"} {
		if _, err := ParseKind(in); err != nil {
			t.Fatalf("%q expected ok, got %v", in, err)
		}
	}
	if _, err := ParseKind("transfer"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if Income.Title() != "Income" {
		t.Fatalf("Title() = %q", Income.Title())
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Kind:     Expense,
		Amount:   decimal.RequireFromString("12.50"),
		Category: "Food",
		Date:     MustDate(2025, 1, 1),
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	zero := good
	zero.Amount = decimal.Zero
	if err := zero.Validate(); err != nil {
		t.Fatalf("zero amount should be allowed, got %v", err)
	}

	bads := []Transaction{
		{Kind: "gift", Amount: decimal.NewFromInt(1), Date: MustDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.NewFromInt(-1), Date: MustDate(2025, 1, 1)},
		{Kind: Income, Amount: decimal.NewFromInt(1)},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionApply(t *testing.T) {
	orig := Transaction{
		ID:       7,
		Kind:     Income,
		Amount:   decimal.NewFromInt(100),
		Category: "Salary",
		Date:     MustDate(2025, 3, 1),
	}

	amount := decimal.RequireFromString("150.25")
	got := orig.Apply(TransactionUpdate{Amount: &amount})
	if got.ID != 7 || got.Kind != Income {
		t.Fatalf("id/kind changed: %+v", got)
	}
	if !got.Amount.Equal(amount) || got.Category != "Salary" || !got.Date.Equal(orig.Date.Time) {
		t.Fatalf("unexpected apply result: %+v", got)
	}

	blank := "  "
	got = orig.Apply(TransactionUpdate{Category: &blank})
	if got.Category != DefaultCategory {
		t.Fatalf("blank category should become %q, got %q", DefaultCategory, got.Category)
	}

	if !(TransactionUpdate{}).IsEmpty() {
		t.Fatalf("zero update should be empty")
	}
}

func TestMonthlyTotals(t *testing.T) {
	var m MonthlyTotals
	if !m.IsEmpty() || !m.Balance().IsZero() {
		t.Fatalf("zero totals expected, got %+v", m)
	}
	m.Add(Transaction{Kind: Income, Amount: decimal.RequireFromString("0.1")})
	m.Add(Transaction{Kind: Income, Amount: decimal.RequireFromString("0.2")})
	m.Add(Transaction{Kind: Expense, Amount: decimal.RequireFromString("0.3")})
	if !m.Income.Equal(decimal.RequireFromString("0.3")) {
		t.Fatalf("income = %s", m.Income)
	}
	if !m.Balance().IsZero() {
		t.Fatalf("balance should be exactly zero, got %s", m.Balance())
	}
	if m.Count != 3 {
		t.Fatalf("count = %d", m.Count)
	}
}

func TestStorageError(t *testing.T) {
	base := errors.New("disk I/O error")
	err := NewStorageError("insert", base)
	if !IsStorageError(err) || !errors.Is(err, base) {
		t.Fatalf("expected wrapped storage error, got %v", err)
	}
	if NewStorageError("get", ErrNotFound) != ErrNotFound {
		t.Fatalf("not found should pass through unchanged")
	}
	if NewStorageError("noop", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
