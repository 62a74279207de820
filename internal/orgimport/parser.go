package orgimport

// parser.go turns raw tabular input into RawRows, doing syntactic validation
// only: UTF-8 sanitation, header discovery, column-count checks, and cell
// cleaning. Field contents are interpreted later by the relationship
// validator.

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxInputSize is the maximum accepted input size (25MB). Larger files are a
// structural error; chunked import is out of scope.
var MaxInputSize int64 = 25 * 1024 * 1024

// MaxHeaderSearchRows is how many leading rows are scanned for the header.
// Exports sometimes prepend title or date rows above the real header.
var MaxHeaderSearchRows = 20

// ParseError is a structural input problem (unreadable stream, missing or
// malformed header). It aborts the whole call before any row is processed.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "parse: " + e.Reason }

// ParsedInput is the parser output: the resolved header and all data rows in
// file order, including unparsable ones.
type ParsedInput struct {
	Header HeaderIndex
	Rows   []RawRow
}

// ParseCSV reads the entire stream and splits it into RawRows.
// Returns *ParseError for structural problems; malformed individual rows are
// flagged, not fatal.
func ParseCSV(r io.Reader) (*ParsedInput, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxInputSize+1))
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > MaxInputSize {
		return nil, &ParseError{Reason: fmt.Sprintf("input exceeds %dMB limit", MaxInputSize/(1024*1024))}
	}

	data = sanitizeUTF8(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid csv: %v", err)}
	}

	return splitRecords(records)
}

// splitRecords locates the header, validates the required columns, and maps
// every following record into a RawRow. Shared by the CSV and XLSX parsers.
func splitRecords(records [][]string) (*ParsedInput, error) {
	if len(records) == 0 {
		return nil, &ParseError{Reason: "empty file"}
	}

	headerPos := findHeaderRow(records)
	if headerPos < 0 {
		return nil, &ParseError{
			Reason: fmt.Sprintf("header not found; required columns: %s", strings.Join(RequiredColumns, ", ")),
		}
	}

	headerRow := records[headerPos]
	header := makeHeaderIndex(headerRow)
	if missing := missingColumns(header); len(missing) > 0 {
		return nil, &ParseError{Reason: "missing required columns: " + strings.Join(missing, ", ")}
	}

	parsed := &ParsedInput{Header: header}
	index := 0
	for _, record := range records[headerPos+1:] {
		if isEmptyRow(record) {
			continue
		}
		index++

		row := RawRow{Index: index, Cells: make(map[string]string, len(header))}
		if len(record) != len(headerRow) {
			row.Unparsable = true
			row.Reason = fmt.Sprintf("expected %d columns, got %d", len(headerRow), len(record))
			parsed.Rows = append(parsed.Rows, row)
			continue
		}

		for col, pos := range header {
			row.Cells[col] = CleanCell(record[pos])
		}
		parsed.Rows = append(parsed.Rows, row)
	}

	return parsed, nil
}

// findHeaderRow scans the first MaxHeaderSearchRows records for one that
// contains every required column.
func findHeaderRow(records [][]string) int {
	limit := MaxHeaderSearchRows
	if len(records) < limit {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		if len(missingColumns(makeHeaderIndex(records[i]))) == 0 {
			return i
		}
	}
	return -1
}

func missingColumns(header HeaderIndex) []string {
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := header[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// makeHeaderIndex maps cleaned lowercase column names to positions.
func makeHeaderIndex(headerRow []string) HeaderIndex {
	idx := make(HeaderIndex, len(headerRow))
	for i, h := range headerRow {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if _, exists := idx[key]; !exists {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common export artifacts from a cell value: surrounding
// whitespace, Excel formula prefixes (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with the Unicode replacement
// character so the csv reader never chokes on mixed encodings.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
