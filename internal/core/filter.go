package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Field identifies the transaction attribute a predicate tests.
type Field string

const (
	FieldKind     Field = "type"
	FieldCategory Field = "category"
	FieldDate     Field = "date"
	FieldAmount   Field = "amount"
	FieldID       Field = "id"
)

// Predicate is one condition of a Filter. Exactly one of the value fields
// is meaningful, selected by Field.
type Predicate struct {
	Field    Field
	Kind     Kind
	Category string
	Date     Date
	Amount   decimal.Decimal
	ID       int64
}

// Filter is a conjunction of predicates kept in insertion order.
// The zero value matches every transaction.
type Filter struct {
	preds []Predicate
}

// NewFilter returns an empty filter that matches everything.
func NewFilter() *Filter {
	return &Filter{}
}

// ByKind restricts to one transaction type.
func (f *Filter) ByKind(k Kind) *Filter {
	return f.set(Predicate{Field: FieldKind, Kind: k})
}

// ByCategory restricts to categories containing sub, ignoring case.
func (f *Filter) ByCategory(sub string) *Filter {
	return f.set(Predicate{Field: FieldCategory, Category: strings.TrimSpace(sub)})
}

// ByDate restricts to one calendar date.
func (f *Filter) ByDate(d Date) *Filter {
	return f.set(Predicate{Field: FieldDate, Date: d})
}

// ByAmount restricts to one exact amount.
func (f *Filter) ByAmount(a decimal.Decimal) *Filter {
	return f.set(Predicate{Field: FieldAmount, Amount: a})
}

// ByID restricts to one transaction id.
func (f *Filter) ByID(id int64) *Filter {
	return f.set(Predicate{Field: FieldID, ID: id})
}

// set replaces an existing predicate on the same field in place,
// otherwise appends.
func (f *Filter) set(p Predicate) *Filter {
	for i := range f.preds {
		if f.preds[i].Field == p.Field {
			f.preds[i] = p
			return f
		}
	}
	f.preds = append(f.preds, p)
	return f
}

// Clear resets the filter to match everything.
func (f *Filter) Clear() {
	f.preds = nil
}

// IsEmpty reports whether the filter matches everything.
func (f *Filter) IsEmpty() bool {
	return f == nil || len(f.preds) == 0
}

// Predicates returns a copy of the predicates in insertion order.
func (f *Filter) Predicates() []Predicate {
	if f == nil {
		return nil
	}
	return append([]Predicate(nil), f.preds...)
}

// Match evaluates the filter against t in memory.
func (f *Filter) Match(t Transaction) bool {
	if f == nil {
		return true
	}
	for _, p := range f.preds {
		if !p.Match(t) {
			return false
		}
	}
	return true
}

func (p Predicate) Match(t Transaction) bool {
	switch p.Field {
	case FieldKind:
		return t.Kind == p.Kind
	case FieldCategory:
		return strings.Contains(strings.ToLower(t.Category), strings.ToLower(p.Category))
	case FieldDate:
		return t.Date.Equal(p.Date.Time)
	case FieldAmount:
		return t.Amount.Equal(p.Amount)
	case FieldID:
		return t.ID == p.ID
	default:
		return false
	}
}

func (p Predicate) String() string {
	switch p.Field {
	case FieldKind:
		return fmt.Sprintf("type = %s", p.Kind)
	case FieldCategory:
		return fmt.Sprintf("category ~ %q", p.Category)
	case FieldDate:
		return fmt.Sprintf("date = %s", p.Date)
	case FieldAmount:
		return fmt.Sprintf("amount = %s", FormatAmount(p.Amount))
	case FieldID:
		return "id = " + strconv.FormatInt(p.ID, 10)
	default:
		return string(p.Field)
	}
}

// Describe renders the active predicates, or "none" for an empty filter.
func (f *Filter) Describe() string {
	if f.IsEmpty() {
		return "none"
	}
	parts := make([]string, len(f.preds))
	for i, p := range f.preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, " AND ")
}
