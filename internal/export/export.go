// Package export writes a consolidated ledger as CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/example/statement-consolidator/pkg/transaction"
	"github.com/xuri/excelize/v2"
)

// Format is an output file format
type Format string

const (
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// SheetName is the worksheet that holds the ledger in XLSX output
const SheetName = "Ledger"

const dateLayout = "2006-01-02"

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case CSV, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want csv or xlsx)", s)
	}
}

// Write serializes the ledger in the given format
func Write(w io.Writer, ledger *transaction.Ledger, format Format) error {
	switch format {
	case CSV:
		return WriteCSV(w, ledger)
	case XLSX:
		return WriteXLSX(w, ledger)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// record renders one transaction in canonical column order
func record(t transaction.Transaction) []string {
	return []string{
		t.Date.Format(dateLayout),
		t.Description,
		t.Credit.StringFixed(2),
		t.Debit.StringFixed(2),
		t.Balance.StringFixed(2),
		t.Bank,
		transaction.HolderName(t.AccountHolder),
	}
}

// WriteCSV writes a header row followed by one row per transaction
func WriteCSV(w io.Writer, ledger *transaction.Ledger) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transaction.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, t := range ledger.Transactions {
		if err := cw.Write(record(t)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the ledger to a single-sheet workbook with a bold header.
// Amounts are stored as numbers and dates as date cells.
func WriteXLSX(w io.Writer, ledger *transaction.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(transaction.Columns))
	for i, c := range transaction.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(transaction.Columns))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	for i, t := range ledger.Transactions {
		row := []interface{}{
			t.Date,
			t.Description,
			t.Credit.InexactFloat64(),
			t.Debit.InexactFloat64(),
			t.Balance.InexactFloat64(),
			t.Bank,
			transaction.HolderName(t.AccountHolder),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, dateStyle); err != nil {
			return fmt.Errorf("failed to style row %d: %w", i+1, err)
		}
	}

	for i := range transaction.Columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, 15); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
