package bank

import (
	"fmt"
	"strings"

	"github.com/example/statement-consolidator/internal/table"
)

// ICICIHeaderOffset is the number of account-metadata rows above the transactions
const ICICIHeaderOffset = 12

// ICICI column positions; the export leaves its real header unnamed
const (
	iciciDate        = 2
	iciciDescription = 5
	iciciDebit       = 6
	iciciCredit      = 7
	iciciBalance     = 8
	iciciWidth       = 9
)

// ICICI reads ICICI Bank workbook exports. Only the first sheet is used, the
// first HeaderOffset rows are account metadata, and columns are identified by
// position. Rows whose date, description or amounts cannot be read are dropped.
type ICICI struct {
	HeaderOffset int
}

// Enrich maps an ICICI workbook to entries, skipping the metadata rows
func (e ICICI) Enrich(raw table.Raw) ([]Entry, error) {
	t, err := raw.First()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}
	if t.Width() < iciciWidth {
		return nil, fmt.Errorf("%w: want at least %d columns, have %d", ErrShapeMismatch, iciciWidth, t.Width())
	}
	if t.Len() <= e.HeaderOffset {
		return nil, nil
	}

	rows := t.Rows[e.HeaderOffset:]
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		description := strings.TrimSpace(row[iciciDescription])
		if description == "" {
			continue
		}
		date, err := parseDate("02/01/2006", row[iciciDate])
		if err != nil {
			continue
		}
		debit, credit, balance, err := amounts(row[iciciDebit], row[iciciCredit], row[iciciBalance])
		if err != nil {
			continue
		}

		entries = append(entries, Entry{
			Date:        date,
			Description: row[iciciDescription],
			Debit:       debit,
			Credit:      credit,
			Balance:     balance,
		})
	}
	return entries, nil
}
