package bank

import (
	"fmt"
	"regexp"

	"github.com/example/statement-consolidator/internal/table"
)

var canaraDate = regexp.MustCompile(`\d{2}-\d{2}-\d{4}`)

// Canara reads Canara Bank ledger exports:
//
//	Txn Date, Value Date, Cheque No., Description, Branch Code, Debit, Credit, Balance, <blank>
//
// The transaction date cell may carry a time after the DD-MM-YYYY date.
// Lines without a date (page footers, notes) are skipped.
type Canara struct{}

// Enrich maps a Canara export to entries
func (Canara) Enrich(raw table.Raw) ([]Entry, error) {
	t, err := raw.First()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	col, err := t.Columns("Txn Date", "Description", "Debit", "Credit", "Balance")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	entries := make([]Entry, 0, t.Len())
	for i, row := range t.Rows {
		match := canaraDate.FindString(row[col["Txn Date"]])
		if match == "" {
			continue
		}
		date, err := parseDate("02-01-2006", match)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		debit, credit, balance, err := amounts(row[col["Debit"]], row[col["Credit"]], row[col["Balance"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		entries = append(entries, Entry{
			Date:        date,
			Description: row[col["Description"]],
			Debit:       debit,
			Credit:      credit,
			Balance:     balance,
		})
	}
	return entries, nil
}
