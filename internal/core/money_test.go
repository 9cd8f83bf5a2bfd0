package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		err error
	}{
		{"1", "1", nil},
		{"1.0", "1", nil},
		{"1.23", "1.23", nil},
		{"1,23", "1.23", nil},
		{"0", "0", nil},
		{"0.01", "0.01", nil},
		{" 2.50 ", "2.5", nil},
		{"1234567.891", "1234567.891", nil},
		{"19.99", "19.99", nil},
		{"12345678901234567.89", "", ErrAmountPrecision},
		{"0.1234567890123456789", "", ErrInvalidAmount},
		{"-1", "", ErrNegativeAmount},
		{"abc", "", ErrInvalidAmount},
		{"1.2.3", "", ErrInvalidAmount},
		{"1e3", "", ErrInvalidAmount},
		{"", "", ErrInvalidAmount},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got.String() != tc.out {
			t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	d, _ := ParseAmount("12.5")
	if FormatAmount(d) != "12.50" {
		t.Fatalf("FormatAmount = %q", FormatAmount(d))
	}
}

func TestValidateAmount_Precision(t *testing.T) {
	ok := []string{"0", "0.1", "19.99", "1000000.01", "99999999999.99"}
	for _, in := range ok {
		if err := ValidateAmount(decimal.RequireFromString(in)); err != nil {
			t.Fatalf("%s: unexpected error %v", in, err)
		}
	}
	bad := []string{"12345678901234567.89", "0.1234567890123456789"}
	for _, in := range bad {
		err := ValidateAmount(decimal.RequireFromString(in))
		if !errors.Is(err, ErrAmountPrecision) || !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected ErrAmountPrecision, got %v", in, err)
		}
	}
}
