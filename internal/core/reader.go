package core

// reader.go turns an uploaded file into a SourceTable.
//
// CSV is split on newlines and commas only; quoted fields are not
// recognised, so a value containing a comma shifts the remaining columns.
// Workbooks are read from their first sheet. The header row is the first
// row holding a non-blank cell. After it, only empty lines and spreadsheet
// rows whose cells are all blank are dropped; a delimiter-only CSV line
// such as ",," is a data row of empty values.

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectFormat picks the format from the file extension (case-insensitive).
func DetectFormat(fileName string) (Format, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".xls":
		return FormatXLS, nil
	default:
		return 0, &ParseError{FileName: fileName, Reason: "unsupported file format"}
	}
}

// ReadTable decodes data in the declared format.
// On failure it returns a *ParseError and no table.
func ReadTable(fileName string, format Format, data []byte) (*SourceTable, error) {
	var (
		grid [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		grid = splitCSV(data)
	case FormatXLSX:
		grid, err = readXLSX(data)
	case FormatXLS:
		grid, err = readXLS(data)
	default:
		return nil, &ParseError{FileName: fileName, Reason: "unsupported file format"}
	}
	if err != nil {
		return nil, &ParseError{FileName: fileName, Reason: "cannot decode " + format.String(), Err: err}
	}

	table, reason := buildTable(grid)
	if reason != "" {
		return nil, &ParseError{FileName: fileName, Reason: reason}
	}
	table.FileName = fileName
	table.Format = format

	return table, nil
}

// splitCSV returns one grid row per physical line; the slice index + 1 is
// the line number. Blank lines stay in the grid as empty rows.
func splitCSV(data []byte) [][]string {
	data = sanitizeUTF8(bytes.TrimPrefix(data, utf8BOM))

	lines := strings.Split(string(data), "\n")
	grid := make([][]string, len(lines))
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		grid[i] = strings.Split(line, ",")
	}
	return grid
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return dropBlankRows(grid), nil
}

func readXLS(data []byte) (grid [][]string, err error) {
	// extrame/xls panics on some truncated workbooks.
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("malformed workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, err
	}
	if wb.NumSheets() == 0 {
		return nil, fmt.Errorf("no worksheet found")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("no worksheet found")
	}

	grid = make([][]string, int(sheet.MaxRow)+1)
	widest := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			continue
		}
		// Rows without a ROW record report LastCol 0.
		width := max(row.LastCol(), widest)
		widest = width
		cells := make([]string, width)
		for c := range cells {
			cells[c] = row.Col(c)
		}
		grid[i] = cells
	}
	return dropBlankRows(grid), nil
}

// xlsRow returns nil for a row the sheet never stored; WorkSheet.Row
// dereferences a nil entry in that case.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// dropBlankRows nils spreadsheet rows whose cells are all blank so they
// read like empty CSV lines.
func dropBlankRows(grid [][]string) [][]string {
	for i, row := range grid {
		if isBlankRow(row) {
			grid[i] = nil
		}
	}
	return grid
}

// buildTable zips grid rows against the first row with a non-blank cell.
// Later rows are dropped only when empty; a row of blank cells is kept.
// It returns a failure reason instead of an error so ReadTable can attach
// the file name.
func buildTable(grid [][]string) (*SourceTable, string) {
	headerAt := -1
	for i, row := range grid {
		if !isBlankRow(row) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, "empty file"
	}

	raw := grid[headerAt]
	headers := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column %d", i+1)
		}
		if seen[h] {
			return nil, fmt.Sprintf("duplicate header %q", h)
		}
		seen[h] = true
		headers[i] = h
	}

	table := &SourceTable{Headers: headers}
	for i := headerAt + 1; i < len(grid); i++ {
		if len(grid[i]) == 0 {
			continue
		}
		values := make(SourceRecord, len(headers))
		for c, h := range headers {
			if c < len(grid[i]) {
				values[h] = strings.TrimSpace(grid[i][c])
			} else {
				values[h] = ""
			}
		}
		table.Rows = append(table.Rows, SourceRow{Line: i + 1, Values: values})
	}

	return table, ""
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
