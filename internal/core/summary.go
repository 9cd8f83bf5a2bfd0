package core

import "github.com/shopspring/decimal"

// MonthlyTotals is the income/expense summary for a specific year+month.
type MonthlyTotals struct {
	Year    int
	Month   int // 1-12
	Income  decimal.Decimal
	Expense decimal.Decimal
	Count   int
}

// Balance is income minus expense.
func (m MonthlyTotals) Balance() decimal.Decimal {
	return m.Income.Sub(m.Expense)
}

// IsEmpty reports whether no transaction fell in the month.
func (m MonthlyTotals) IsEmpty() bool {
	return m.Count == 0
}

// Add folds one transaction into the totals.
func (m *MonthlyTotals) Add(t Transaction) {
	switch t.Kind {
	case Income:
		m.Income = m.Income.Add(t.Amount)
	case Expense:
		m.Expense = m.Expense.Add(t.Amount)
	}
	m.Count++
}

// InMonth reports whether the date falls in the given year and month.
func (d Date) InMonth(year, month int) bool {
	return d.Year() == year && d.Month() == month
}
