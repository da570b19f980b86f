package loader

import (
	"bytes"
	"fmt"

	"github.com/example/statement-consolidator/internal/table"
	"github.com/extrame/xls"
	xlsreader "github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Strategy decodes the bytes of one file into a raw table
type Strategy interface {
	Name() string
	Load(data []byte) (table.Raw, error)
}

// sheetEngine adapts a workbook decoder to a Strategy
type sheetEngine struct {
	name   string
	decode func(data []byte) ([]table.Sheet, error)
}

func (e sheetEngine) Name() string {
	return e.name
}

func (e sheetEngine) Load(data []byte) (raw table.Raw, err error) {
	// The BIFF readers panic on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decoder panic: %v", r)
		}
	}()

	sheets, err := e.decode(data)
	if err != nil {
		return table.Raw{}, err
	}
	if len(sheets) == 0 {
		return table.Raw{}, fmt.Errorf("workbook has no sheets")
	}
	return table.Named(sheets), nil
}

// SpreadsheetEngines returns the workbook decoders in the order they are tried
func SpreadsheetEngines() []Strategy {
	return []Strategy{
		sheetEngine{name: "excelize", decode: decodeExcelize},
		sheetEngine{name: "xls", decode: decodeXLS},
		sheetEngine{name: "xlsreader", decode: decodeXLSReader},
	}
}

// decodeExcelize reads OOXML workbooks (.xlsx, .xlsm)
func decodeExcelize(data []byte) ([]table.Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sheets []table.Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		sheets = append(sheets, table.Sheet{Name: name, Table: sheetTable(rows)})
	}
	return sheets, nil
}

// maxXLSColumns is the BIFF8 column limit
const maxXLSColumns = 256

// decodeXLS reads BIFF workbooks (.xls)
func decodeXLS(data []byte) ([]table.Sheet, error) {
	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb == nil {
		return nil, fmt.Errorf("failed to open workbook: no Workbook stream")
	}

	var sheets []table.Sheet
	for i := 0; i < wb.NumSheets(); i++ {
		sheet := wb.GetSheet(i)
		if sheet == nil {
			continue
		}

		var rows [][]string
		for r := 0; r <= int(sheet.MaxRow); r++ {
			row := xlsRow(sheet, r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			// Rows without a ROW record report no last column.
			last := row.LastCol()
			if last == 0 {
				last = maxXLSColumns
			}
			cells := make([]string, last)
			for c := 0; c < last; c++ {
				cells[c] = row.Col(c)
			}
			rows = append(rows, trimTrailingEmpty(cells))
		}
		sheets = append(sheets, table.Sheet{Name: sheet.Name, Table: sheetTable(rows)})
	}
	return sheets, nil
}

// xlsRow returns row r of sheet, or nil when the sheet has no such row.
// WorkSheet.Row dereferences missing rows.
func xlsRow(sheet *xls.WorkSheet, r int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(r)
}

func trimTrailingEmpty(cells []string) []string {
	n := len(cells)
	for n > 0 && cells[n-1] == "" {
		n--
	}
	return cells[:n]
}

// decodeXLSReader reads BIFF8 workbooks (.xls) with a second, independent parser
func decodeXLSReader(data []byte) ([]table.Sheet, error) {
	wb, err := xlsreader.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}

	var sheets []table.Sheet
	for i := 0; i < len(wb.GetSheets()); i++ {
		sheet, err := wb.GetSheet(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %d: %w", i, err)
		}

		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}
		sheets = append(sheets, table.Sheet{Name: sheet.GetName(), Table: sheetTable(rows)})
	}
	return sheets, nil
}

// sheetTable turns sheet rows into a table whose header is the first row.
// The width is that of the widest row; readers drop trailing empty cells.
func sheetTable(rows [][]string) *table.Table {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if len(rows) == 0 {
		return table.New(nil, nil)
	}

	header := make([]string, width)
	copy(header, rows[0])
	return table.New(header, rows[1:])
}
