package shell

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// readLine returns the next trimmed input line. io.EOF is only returned
// once the input is exhausted.
func (s *Shell) readLine() (string, error) {
	line, err := s.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) prompt(label string) (string, error) {
	s.printf("%s", label)
	return s.readLine()
}

// confirm treats any answer starting with y as yes.
func (s *Shell) confirm(label string) (bool, error) {
	answer, err := s.prompt(label)
	if err != nil {
		return false, err
	}
	return strings.HasPrefix(strings.ToLower(answer), "y"), nil
}

// promptInt re-prompts until the input is a whole number accepted by validate.
func (s *Shell) promptInt(label string, validate func(int) error, rangeMsg string) (int, error) {
	for {
		text, err := s.prompt(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			s.printf("Invalid input. Must be numbers only.\n\n")
			continue
		}
		if err := validate(n); err != nil {
			s.printf("%s\n\n", rangeMsg)
			continue
		}
		return n, nil
	}
}

func (s *Shell) promptYear() (int, error) {
	return s.promptInt("Enter year (YYYY): ", core.ValidateYear, "Invalid year. Must be between 0001 and 9999.")
}

func (s *Shell) promptMonth() (int, error) {
	return s.promptInt("Enter month (MM): ", core.ValidateMonth, "Invalid month. Must be between 01 and 12.")
}

func (s *Shell) promptDay() (int, error) {
	return s.promptInt("Enter day (DD): ", core.ValidateDay, "Invalid day. Must be between 01 and 31.")
}

// promptDate asks for year, month and day, checks the calendar date and
// asks for confirmation. Any failure after the parts are read restarts
// from the year.
func (s *Shell) promptDate() (core.Date, error) {
	for {
		year, err := s.promptYear()
		if err != nil {
			return core.Date{}, err
		}
		month, err := s.promptMonth()
		if err != nil {
			return core.Date{}, err
		}
		day, err := s.promptDay()
		if err != nil {
			return core.Date{}, err
		}

		date, err := core.NewDate(year, month, day)
		if err != nil {
			s.printf("That date doesn't exist. Try again.\n\n")
			continue
		}

		ok, err := s.confirm("Is this correct? " + date.Display() + " (y/n): ")
		if err != nil {
			return core.Date{}, err
		}
		if ok {
			return date, nil
		}
		s.printf("Let's try again.\n\n")
	}
}

// promptAmount re-prompts until a non-negative number is entered.
func (s *Shell) promptAmount(label string) (decimal.Decimal, error) {
	for {
		text, err := s.prompt(label)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseAmount(text)
		if err == nil {
			return amount, nil
		}
		switch {
		case errors.Is(err, core.ErrNegativeAmount):
			s.printf("Invalid amount. Must not be negative.\n")
		case errors.Is(err, core.ErrAmountPrecision):
			s.printf("Invalid amount. Too many digits to store exactly.\n")
		default:
			s.printf("Invalid input. Must be a number.\n")
		}
	}
}

func (s *Shell) promptID() (int64, error) {
	for {
		text, err := s.prompt("Enter transaction ID: ")
		if err != nil {
			return 0, err
		}
		id, err := strconv.ParseInt(text, 10, 64)
		if err != nil || id <= 0 {
			s.printf("Invalid ID. Must be a positive whole number.\n")
			continue
		}
		return id, nil
	}
}

func (s *Shell) promptKind() (core.Kind, error) {
	for {
		text, err := s.prompt("Enter type (expense/income): ")
		if err != nil {
			return "", err
		}
		kind, err := core.ParseKind(text)
		if err != nil {
			s.printf("Invalid type. Must be expense or income.\n")
			continue
		}
		return kind, nil
	}
}

// keepCurrent reports whether an amount edit answer means "leave unchanged".
// Category answers only keep the current value when blank.
func keepCurrent(answer string) bool {
	return answer == "" || strings.EqualFold(answer, "n")
}
