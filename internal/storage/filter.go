package storage

import (
	"fmt"
	"strings"

	"fintrack/internal/core"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// buildWhere translates a filter into a WHERE clause with positional
// parameters, one per predicate, in the filter's order. User text only ever
// travels in args.
func buildWhere(f *core.Filter) (string, []any, error) {
	if f.IsEmpty() {
		return "", nil, nil
	}
	preds := f.Predicates()
	conds := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		switch p.Field {
		case core.FieldKind:
			conds = append(conds, "type = ?")
			args = append(args, string(p.Kind))
		case core.FieldCategory:
			conds = append(conds, `category LIKE ? ESCAPE '\'`)
			args = append(args, "%"+likeEscaper.Replace(p.Category)+"%")
		case core.FieldDate:
			// a range also matches legacy "YYYY-MM-DD hh:mm:ss" values
			conds = append(conds, "(date >= ? AND date < ?)")
			args = append(args, p.Date.String(), p.Date.AddDate(0, 0, 1).Format(core.DateLayout))
		case core.FieldAmount:
			conds = append(conds, "amount = ?")
			args = append(args, p.Amount.InexactFloat64())
		case core.FieldID:
			conds = append(conds, "id = ?")
			args = append(args, p.ID)
		default:
			return "", nil, fmt.Errorf("unsupported filter field %q", p.Field)
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}
