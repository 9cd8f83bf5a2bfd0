package shell

import (
	"context"
	"fmt"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// transactions runs the paginated listing screen until the user goes back.
// The filter survives between visits; the offset does not.
func (s *Shell) transactions(ctx context.Context) error {
	s.offset = 0
	for {
		page, err := s.svc.ListPage(ctx, s.filter, s.offset, PageSize)
		if err != nil {
			return err
		}
		// A delete can empty the last page.
		if len(page.Items) == 0 && s.offset > 0 {
			s.offset = max(0, s.offset-PageSize)
			continue
		}
		s.printPage(page)

		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "n", "next":
			if !page.HasNext() {
				s.printf("No next page.\n")
				break
			}
			s.offset += PageSize
		case "p", "prev", "previous":
			if !page.HasPrev(PageSize) {
				s.printf("No previous page.\n")
				break
			}
			s.offset -= PageSize
		case "f", "filter":
			err = s.filterMenu()
		case "e", "edit":
			err = s.editTransaction(ctx)
		case "d", "delete":
			err = s.deleteTransaction(ctx)
		case "x", "export":
			err = s.exportTransactions(ctx)
		case "b", "back":
			return nil
		default:
			s.printf("Choice %s does not exist. Please try again.\n", choice)
		}

		if err = s.report(err); err != nil {
			return err
		}
	}
}

func (s *Shell) printPage(page services.Page) {
	if page.Total == 0 {
		s.printf("\nNo transactions found\n")
	} else {
		pages := (page.Total + PageSize - 1) / PageSize
		s.printf("\n=== Transactions (page %d of %d, %d total) ===\n", page.Offset/PageSize+1, pages, page.Total)
		for _, t := range page.Items {
			s.printf("%s\n", formatRow(t))
		}
	}
	s.printf("Filter: %s\n", s.filter.Describe())
	s.printf("[n] Next  [p] Previous  [f] Filter  [e] Edit  [d] Delete  [x] Export  [b] Back\n")
}

// filterMenu edits the active filter. Any change restarts the listing at
// the first page.
func (s *Shell) filterMenu() error {
	for {
		s.printf("\n=== Filter ===\n")
		s.printf("Active: %s\n", s.filter.Describe())
		s.printf("1. By type\n")
		s.printf("2. By category\n")
		s.printf("3. By date\n")
		s.printf("4. By amount\n")
		s.printf("5. By ID\n")
		s.printf("6. Clear filter\n")
		s.printf("7. Back\n")

		choice, err := s.prompt("Choose an option: ")
		if err != nil {
			return err
		}

		switch strings.ToLower(choice) {
		case "1", "type":
			kind, err := s.promptKind()
			if err != nil {
				return err
			}
			s.filter.ByKind(kind)
		case "2", "category":
			text, err := s.prompt("Enter category text: ")
			if err != nil {
				return err
			}
			if text == "" {
				s.printf("Category text cannot be empty.\n")
				continue
			}
			s.filter.ByCategory(text)
		case "3", "date":
			date, err := s.promptDate()
			if err != nil {
				return err
			}
			s.filter.ByDate(date)
		case "4", "amount":
			amount, err := s.promptAmount("Enter amount: ")
			if err != nil {
				return err
			}
			s.filter.ByAmount(amount)
		case "5", "id":
			id, err := s.promptID()
			if err != nil {
				return err
			}
			s.filter.ByID(id)
		case "6", "clear":
			s.filter.Clear()
		case "7", "b", "back":
			return nil
		default:
			s.printf("Choice %s does not exist. Please try again.\n", choice)
			continue
		}

		s.offset = 0
		s.logger.Debug("Filter changed", log.NewFields().WithOperation(log.OpFilter).WithFilter(s.filter).ToSlice()...)
	}
}

func (s *Shell) editTransaction(ctx context.Context) error {
	id, err := s.promptID()
	if err != nil {
		return err
	}
	current, err := s.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	s.printf("%s\n", formatRow(current))

	var u core.TransactionUpdate
	for {
		text, err := s.prompt(fmt.Sprintf("New amount [%s] (blank to keep): ", core.FormatAmount(current.Amount)))
		if err != nil {
			return err
		}
		if keepCurrent(text) {
			break
		}
		amount, err := core.ParseAmount(text)
		if err != nil {
			s.printf("Invalid input. Must be a non-negative number.\n")
			continue
		}
		u.Amount = &amount
		break
	}

	text, err := s.prompt(fmt.Sprintf("New category [%s] (blank to keep): ", current.Category))
	if err != nil {
		return err
	}
	if text != "" {
		u.Category = &text
	}

	change, err := s.confirm(fmt.Sprintf("Change date %s? (y/n): ", current.Date.Display()))
	if err != nil {
		return err
	}
	if change {
		date, err := s.promptDate()
		if err != nil {
			return err
		}
		u.Date = &date
	}

	if u.IsEmpty() {
		s.printf("No changes made.\n")
		return nil
	}

	updated, err := s.svc.Update(ctx, id, u)
	if err != nil {
		return err
	}
	s.logger.Info("Transaction updated", log.NewFields().WithOperation(log.OpUpdate).WithTransaction(updated).ToSlice()...)
	s.printf("Updated: %s\n", formatRow(updated))
	return nil
}

func (s *Shell) deleteTransaction(ctx context.Context) error {
	id, err := s.promptID()
	if err != nil {
		return err
	}
	current, err := s.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	s.printf("%s\n", formatRow(current))

	ok, err := s.confirm("Delete this transaction? (y/n): ")
	if err != nil {
		return err
	}
	if !ok {
		s.printf("Deletion cancelled.\n")
		return nil
	}

	if err := s.svc.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Transaction deleted", log.NewFields().WithOperation(log.OpDelete).WithTransactionID(id).ToSlice()...)
	s.printf("Transaction %d deleted.\n", id)
	return nil
}

// exportTransactions writes the whole filtered set, not only the page shown.
func (s *Shell) exportTransactions(ctx context.Context) error {
	txs, err := s.svc.ListAll(ctx, s.filter)
	if err != nil {
		return err
	}

	res, err := s.exporter.Export(txs)
	if err != nil {
		return core.NewStorageError("export transactions", err)
	}

	s.logger.Info("Transactions exported", log.NewFields().WithOperation(log.OpExport).WithExport(res.Path, res.Rows).ToSlice()...)
	s.printf("Exported %d transactions to %s\n", res.Rows, res.Path)
	return nil
}
