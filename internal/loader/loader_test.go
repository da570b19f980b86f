package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/statement-consolidator/internal/naming"
	"github.com/example/statement-consolidator/internal/table"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const canaraCSV = `Account Name,MR A B
Account Number,1234
Txn Date,Value Date,Cheque No.,Description,Branch Code,Debit,Credit,Balance,
01-04-2023 10:00:00,01-04-2023,,NEFT SALARY,101,,"1,000.00","5,000.00",
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeWorkbook(t *testing.T, dir, name string, sheets map[string][][]interface{}, order []string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &row))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// binaryArchive returns a zip holding seeded random bytes, the shape of an
// .xlsb that none of the engines can decode.
func binaryArchive(t *testing.T) []byte {
	t.Helper()
	payload := make([]byte, 64<<10)
	rand.New(rand.NewSource(42)).Read(payload)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.CreateHeader(&zip.FileHeader{Name: "payload.bin", Method: zip.Store})
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func assertLegacyTable(t *testing.T, raw table.Raw) {
	t.Helper()
	require.Equal(t, table.NamedTableSet, raw.Kind)
	require.Len(t, raw.Sheets, 1)
	assert.Equal(t, "Table", raw.Sheets[0].Name)

	tbl := raw.Sheets[0].Table
	assert.Equal(t, []string{"Code", "Name", "Description"}, tbl.Header)
	require.Equal(t, 11, tbl.Len())
	assert.Equal(t, []string{"code1", "name1", "description1"}, tbl.Rows[0])
	assert.Equal(t, []string{"code11", "name11", "description11"}, tbl.Rows[10])
}

func newTestLoader(workers int) *Loader {
	return New(Options{MinColumns: DefaultMinColumns, Workers: workers}, zerolog.Nop())
}

func TestFindDataStart(t *testing.T) {
	lines := []string{
		"Statement for account 1234",
		"a,b",
		"a,b,c,d,e",
		"1,2,3,4,5",
	}

	start, err := FindDataStart(lines, ",", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, start)

	_, err = FindDataStart(lines, "\t", 5)
	assert.ErrorIs(t, err, ErrNoTabularDataFound)

	start, err = FindDataStart(lines, ",", 2)
	require.NoError(t, err)
	assert.Equal(t, 1, start)
}

func TestDelimitedText_DiscardsPreamble(t *testing.T) {
	raw, err := delimitedText{name: "csv", delimiter: ',', minColumns: 5}.Load([]byte(canaraCSV))
	require.NoError(t, err)
	require.Equal(t, table.SingleTable, raw.Kind)

	tbl := raw.Table
	assert.Equal(t, []string{"Txn Date", "Value Date", "Cheque No.", "Description", "Branch Code", "Debit", "Credit", "Balance", ""}, tbl.Header)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "1,000.00", tbl.Rows[0][6])
	assert.Equal(t, "NEFT SALARY", tbl.Rows[0][3])
}

func TestDelimitedText_Tab(t *testing.T) {
	data := "header line\r\nTxn Date\tValue Date\tDescription\tRef No./Cheque No.\tDebit\tCredit\tBalance\r\n05 Apr 2024\t05 Apr 2024\tATM\t\t500.00\t\t1,500.00\r\n"

	raw, err := delimitedText{name: "tsv", delimiter: '\t', minColumns: 5}.Load([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 7, raw.Table.Width())
	require.Equal(t, 1, raw.Table.Len())
	assert.Equal(t, "1,500.00", raw.Table.Rows[0][6])
}

func TestDelimitedText_BOMAndWindows1252(t *testing.T) {
	utf8Data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a,b,c,d,e\n1,2,3,4,5\n")...)
	raw, err := delimitedText{name: "csv", delimiter: ',', minColumns: 5}.Load(utf8Data)
	require.NoError(t, err)
	assert.Equal(t, "a", raw.Table.Header[0])

	// 0xE9 is "é" in Windows-1252 and invalid on its own in UTF-8.
	latin := []byte("a,b,c,d,e\n1,caf\xe9,3,4,5\n")
	raw, err = delimitedText{name: "csv", delimiter: ',', minColumns: 5}.Load(latin)
	require.NoError(t, err)
	assert.Equal(t, "café", raw.Table.Rows[0][1])
}

func TestDelimitedText_NoTabularData(t *testing.T) {
	_, err := delimitedText{name: "csv", delimiter: ',', minColumns: 5}.Load([]byte("just,some\nnotes\n"))
	assert.ErrorIs(t, err, ErrNoTabularDataFound)
}

func TestLoadFile_Workbook(t *testing.T) {
	dir := t.TempDir()
	path := writeWorkbook(t, dir, "AB_ICICI_2023.xlsx", map[string][][]interface{}{
		"Statement": {{"", "Account"}, {"", "", "01/04/2023", "", "", "UPI", "", "100.00", "900.00"}},
		"Legend":    {{"notes"}},
	}, []string{"Statement", "Legend"})

	raw, strategy, err := newTestLoader(1).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "excelize", strategy)
	require.Equal(t, table.NamedTableSet, raw.Kind)
	require.Len(t, raw.Sheets, 2)
	assert.Equal(t, "Statement", raw.Sheets[0].Name)
	assert.Equal(t, "Legend", raw.Sheets[1].Name)

	first, err := raw.First()
	require.NoError(t, err)
	assert.Equal(t, 9, first.Width())
	require.Equal(t, 1, first.Len())
	assert.Equal(t, "01/04/2023", first.Rows[0][2])
}

func TestLoadFile_LegacyWorkbook(t *testing.T) {
	raw, strategy, err := newTestLoader(1).LoadFile(filepath.Join("testdata", "table.xls"))
	require.NoError(t, err)
	assert.Equal(t, "xls", strategy)
	assertLegacyTable(t, raw)
}

func TestLoadFile_LegacyWorkbookSecondEngine(t *testing.T) {
	engines := SpreadsheetEngines()
	require.Equal(t, "xlsreader", engines[2].Name())

	l := NewWithStrategies([]Strategy{engines[2]}, 1, zerolog.Nop())
	raw, strategy, err := l.LoadFile(filepath.Join("testdata", "table.xls"))
	require.NoError(t, err)
	assert.Equal(t, "xlsreader", strategy)
	assertLegacyTable(t, raw)
}

func TestLoadFile_BinaryIsUnreadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "AB_CB_2024.xlsb")
	require.NoError(t, os.WriteFile(path, binaryArchive(t), 0644))

	_, _, err := newTestLoader(1).LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.ErrorIs(t, err, ErrBinaryContent)

	var unreadable *UnreadableFileError
	require.True(t, errors.As(err, &unreadable))
	require.Len(t, unreadable.Failures, 5)
	assert.ErrorIs(t, unreadable.Failures[3], ErrBinaryContent)
	assert.ErrorIs(t, unreadable.Failures[4], ErrBinaryContent)
}

func TestLooksBinary(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"csv", []byte("a,b,c\r\n1,2,3\r\n"), false},
		{"tabs and form feed", []byte("a\tb\fc\n"), false},
		{"windows-1252", []byte("caf\xe9,1,2\n"), false},
		{"nul byte", []byte("a,b\x00c\n"), true},
		{"control heavy", []byte("\x01\x02\x03abc"), true},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, looksBinary(tt.data))
		})
	}
}

func TestLoadFile_FallsBackToText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "AB_CB_2023.csv", canaraCSV)

	raw, strategy, err := newTestLoader(1).LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", strategy)
	assert.Equal(t, table.SingleTable, raw.Kind)
}

func TestLoadFile_Unreadable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "AB_CB_2023.csv", "nothing tabular here\n")

	_, _, err := newTestLoader(1).LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.ErrorIs(t, err, ErrNoTabularDataFound)

	var unreadable *UnreadableFileError
	require.True(t, errors.As(err, &unreadable))
	assert.Equal(t, "AB_CB_2023.csv", unreadable.File)

	var names []string
	for _, f := range unreadable.Failures {
		names = append(names, f.Strategy)
	}
	assert.Equal(t, []string{"excelize", "xls", "xlsreader", "tsv", "csv"}, names)
	assert.Contains(t, err.Error(), "AB_CB_2023.csv")
}

func TestLoadFile_Missing(t *testing.T) {
	_, _, err := newTestLoader(1).LoadFile(filepath.Join(t.TempDir(), "AB_CB_2023.csv"))
	assert.ErrorIs(t, err, ErrUnreadableFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AB_CB_2024.csv", canaraCSV)
	writeFile(t, dir, "AB_CB_2023.csv", canaraCSV)
	writeFile(t, dir, "notes.txt", "x")
	writeFile(t, dir, "ab_CB_2023.csv", canaraCSV)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "XY_CB_2020.csv"), 0755))

	files, err := newTestLoader(1).Discover(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "AB_CB_2023.csv", files[0].Name)
	assert.Equal(t, "AB_CB_2024.csv", files[1].Name)
	assert.Equal(t, 2023, files[0].FinancialYear)
}

func TestDiscover_MissingDirectory(t *testing.T) {
	_, err := newTestLoader(1).Discover(filepath.Join(t.TempDir(), "absent"))
	assert.ErrorContains(t, err, "failed to read directory")
}

func TestLoadAll_SkipsUnreadable(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AB_CB_2023.csv", canaraCSV)
	writeFile(t, dir, "AB_CB_2024.csv", "garbage\n")
	writeFile(t, dir, "AB_CB_2025.csv", canaraCSV)

	l := newTestLoader(3)
	files, err := l.Discover(dir)
	require.NoError(t, err)

	result, err := l.LoadAll(context.Background(), dir, files)
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, "AB_CB_2023.csv", result.Files[0].Info.Name)
	assert.Equal(t, "AB_CB_2025.csv", result.Files[1].Info.Name)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "AB_CB_2024.csv", result.Skipped[0].File)
}

func TestLoadAll_Cancelled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "AB_CB_2023.csv", canaraCSV)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLoader(1).LoadAll(ctx, dir, []naming.Info{{Name: "AB_CB_2023.csv"}})
	assert.ErrorIs(t, err, context.Canceled)
}
