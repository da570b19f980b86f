package bank

import (
	"fmt"

	"github.com/example/statement-consolidator/internal/table"
)

// SBI reads State Bank of India exports:
//
//	Txn Date, Value Date, Description, Ref No./Cheque No., Debit, Credit, Balance, <blank>
//
// Header names may be padded with spaces. The last row is a summary line.
type SBI struct{}

// Enrich maps an SBI export to entries, dropping the summary row
func (SBI) Enrich(raw table.Raw) ([]Entry, error) {
	t, err := raw.First()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	col, err := t.Columns("Txn Date", "Description", "Debit", "Credit", "Balance")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if t.Len() == 0 {
		return nil, nil
	}

	rows := t.Rows[:t.Len()-1]
	entries := make([]Entry, 0, len(rows))
	for i, row := range rows {
		date, err := parseDate("02 Jan 2006", row[col["Txn Date"]])
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
