// Package shell implements the interactive menu-driven front end of the
// ledger. It reads line-oriented input and writes plain text output, so it
// runs the same against a terminal or a scripted reader.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// PageSize is the number of transactions shown per page.
const PageSize = 10

// Service is the ledger surface the shell drives.
type Service interface {
	Create(ctx context.Context, t core.Transaction) (core.Transaction, error)
	Get(ctx context.Context, id int64) (core.Transaction, error)
	Update(ctx context.Context, id int64, u core.TransactionUpdate) (core.Transaction, error)
	Delete(ctx context.Context, id int64) error
	ListPage(ctx context.Context, f *core.Filter, offset, size int) (services.Page, error)
	ListAll(ctx context.Context, f *core.Filter) ([]core.Transaction, error)
	MonthlyTotals(ctx context.Context, year, month int) (core.MonthlyTotals, error)
}

// Exporter writes a result set to a file.
type Exporter interface {
	Export(txs []core.Transaction) (export.Result, error)
}

// Shell holds the session state: the active filter and list offset.
type Shell struct {
	in       *bufio.Reader
	out      io.Writer
	svc      Service
	exporter Exporter
	logger   *log.Logger

	filter *core.Filter
	offset int
}

// New creates a shell reading from in and writing to out.
func New(in io.Reader, out io.Writer, svc Service, exporter Exporter, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.New(log.Config{Component: log.ComponentShell, Output: io.Discard})
	}
	return &Shell{
		in:       bufio.NewReader(in),
		out:      out,
		svc:      svc,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentShell),
		filter:   core.NewFilter(),
	}
}

// Run shows the main menu until the user exits or input ends. A non-nil
// error is fatal (storage failure or an unreadable input stream).
func (s *Shell) Run(ctx context.Context) error {
	for {
		s.printMainMenu()

		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return s.exit(err)
		}
		choice = strings.ToLower(choice)

		switch {
		case choice == "5" || choice == "exit" || choice == "quit":
			return s.exit(nil)
		case hasAnyPrefix(choice, "1", "exp"):
			err = s.addTransaction(ctx, core.Expense)
		case hasAnyPrefix(choice, "2", "inc"):
			err = s.addTransaction(ctx, core.Income)
		case hasAnyPrefix(choice, "3", "sum", "mon"):
			err = s.monthlySummary(ctx)
		case hasAnyPrefix(choice, "4", "tra", "his", "list"):
			err = s.transactions(ctx)
		default:
			s.printf("Choice %s does not exist. Please try again.\n", choice)
		}

		if err = s.report(err); err != nil {
			return s.exit(err)
		}
	}
}

func (s *Shell) printMainMenu() {
	s.printf("\n=== Personal Finance Tracker ===\n")
	s.printf("1. Add Expense\n")
	s.printf("2. Add Income\n")
	s.printf("3. Show Monthly Summary\n")
	s.printf("4. Show Transaction history\n")
	s.printf("5. Exit\n")
}

// exit ends the session. End of input counts as a normal exit.
func (s *Shell) exit(err error) error {
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	s.printf("\nExiting the program.\n")
	return nil
}

// report prints recoverable errors and returns the fatal ones.
func (s *Shell) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
		return err
	case core.IsStorageError(err):
		s.logger.Error("Storage failure", log.NewFields().WithError(err).ToSlice()...)
		s.printf("Storage error: %v\n", err)
		return err
	case core.IsNotFound(err):
		s.printf("Transaction not found.\n")
		return nil
	default:
		s.logger.Warn("Operation failed", log.NewFields().WithError(err).ToSlice()...)
		s.printf("Error: %v\n", err)
		return nil
	}
}

func (s *Shell) addTransaction(ctx context.Context, kind core.Kind) error {
	amount, err := s.promptAmount(fmt.Sprintf("Enter %s amount: ", kind))
	if err != nil {
		return err
	}
	category, err := s.prompt("Enter category (e.g., Food, Rent, Salary): ")
	if err != nil {
		return err
	}
	date, err := s.promptDate()
	if err != nil {
		return err
	}

	t, err := s.svc.Create(ctx, core.Transaction{
		Kind:     kind,
		Amount:   amount,
		Category: category,
		Date:     date,
	})
	if err != nil {
		return err
	}

	s.logger.Info("Transaction added", log.NewFields().WithOperation(log.OpCreate).WithTransaction(t).ToSlice()...)
	s.printf("%s added: %s | Category: %s | Date: %s | ID: %d\n",
		t.Kind.Title(), core.FormatAmount(t.Amount), t.Category, t.Date, t.ID)
	return nil
}

func (s *Shell) monthlySummary(ctx context.Context) error {
	year, err := s.promptYear()
	if err != nil {
		return err
	}
	month, err := s.promptMonth()
	if err != nil {
		return err
	}

	totals, err := s.svc.MonthlyTotals(ctx, year, month)
	if err != nil {
		return err
	}
	if totals.IsEmpty() {
		s.printf("No transactions found for %02d/%04d.\n", month, year)
		return nil
	}

	s.printf("\n=== Summary %02d/%04d ===\n", month, year)
	s.printf("Income: %s, Expense: %s, Balance: %s\n",
		core.FormatAmount(totals.Income),
		core.FormatAmount(totals.Expense),
		core.FormatAmount(totals.Balance()))
	return nil
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func formatRow(t core.Transaction) string {
	return fmt.Sprintf("ID: %d | %s: %s | Category: %s | Date: %s",
		t.ID, t.Kind.Title(), core.FormatAmount(t.Amount), t.Category, t.Date)
}
