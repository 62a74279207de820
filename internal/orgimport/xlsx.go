package orgimport

// xlsx.go accepts spreadsheet input alongside CSV. HR systems commonly hand
// out org structures as .xlsx exports; the first sheet is read and fed
// through the same header discovery and row splitting as CSV input.

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ParseXLSX reads the active sheet of an Excel workbook into RawRows.
// Structural problems (unreadable workbook, no sheets, missing header)
// surface as *ParseError, matching ParseCSV.
func ParseXLSX(r io.Reader) (*ParsedInput, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("invalid xlsx: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Reason: "workbook has no sheets"}
	}

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if sheet == "" {
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Reason: fmt.Sprintf("read sheet %q: %v", sheet, err)}
	}

	// excelize trims trailing empty cells per row; pad to the widest row so
	// column-count checks compare against the real header width.
	width := 0
	for _, rec := range records {
		if len(rec) > width {
			width = len(rec)
		}
	}
	for i, rec := range records {
		for len(rec) < width {
			rec = append(rec, "")
		}
		records[i] = rec
	}

	return splitRecords(records)
}
