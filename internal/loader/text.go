package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/example/statement-consolidator/internal/table"
	"golang.org/x/text/encoding/charmap"
)

// DefaultMinColumns is the header-detection threshold for delimited text
const DefaultMinColumns = 5

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// binarySample is how many leading bytes are scanned for control characters
const binarySample = 8 << 10

// delimitedText decodes tab- or comma-separated exports that may carry
// free-text preamble lines above the real header.
type delimitedText struct {
	name       string
	delimiter  rune
	minColumns int
}

// TextStrategies returns the delimited-text decoders in the order they are tried
func TextStrategies(minColumns int) []Strategy {
	return []Strategy{
		delimitedText{name: "tsv", delimiter: '\t', minColumns: minColumns},
		delimitedText{name: "csv", delimiter: ',', minColumns: minColumns},
	}
}

func (d delimitedText) Name() string {
	return d.name
}

func (d delimitedText) Load(data []byte) (table.Raw, error) {
	text, err := decodeText(data)
	if err != nil {
		return table.Raw{}, err
	}

	lines := splitLines(text)
	start, err := FindDataStart(lines, string(d.delimiter), d.minColumns)
	if err != nil {
		return table.Raw{}, err
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines[start:], "\n")))
	reader.Comma = d.delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return table.Raw{}, fmt.Errorf("failed to read header: %w", err)
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table.Raw{}, fmt.Errorf("failed to read row: %w", err)
		}
		rows = append(rows, row)
	}

	return table.Single(table.New(header, rows)), nil
}

// FindDataStart returns the index of the first line that splits into at least
// minColumns fields on delimiter.
func FindDataStart(lines []string, delimiter string, minColumns int) (int, error) {
	for i, line := range lines {
		if len(strings.Split(strings.TrimSpace(line), delimiter)) >= minColumns {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: no line has %d %q-separated columns", ErrNoTabularDataFound, minColumns, delimiter)
}

// decodeText returns the file contents as UTF-8. Bytes that are not valid
// UTF-8 are read as Windows-1252, the usual encoding of legacy bank exports.
// Content that looks binary is rejected.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if looksBinary(data) {
		return "", ErrBinaryContent
	}
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode text: %w", err)
	}
	return string(decoded), nil
}

// looksBinary reports whether data holds a NUL byte, or whether more than
// one in a hundred of its leading bytes are control characters.
func looksBinary(data []byte) bool {
	if bytes.IndexByte(data, 0) >= 0 {
		return true
	}

	sample := data[:min(len(data), binarySample)]
	controls := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			controls++
		}
	}
	return controls > 0 && controls*100 > len(sample)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
