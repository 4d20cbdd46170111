package core

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"customers.csv", FormatCSV, false},
		{"RUNS.CSV", FormatCSV, false},
		{"book.xlsx", FormatXLSX, false},
		{"legacy.XLS", FormatXLS, false},
		{"notes.txt", 0, true},
		{"noextension", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.name)
			if tt.wantErr {
				var pe *ParseError
				if !errors.As(err, &pe) {
					t.Fatalf("DetectFormat(%q) error = %v, want *ParseError", tt.name, err)
				}
				if pe.FileName != tt.name {
					t.Errorf("ParseError.FileName = %q, want %q", pe.FileName, tt.name)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestReadTable_CSV(t *testing.T) {
	data := []byte("ServiceID, Site Name ,Suburb\r\n1001,Acme Co, Northgate\r\n1002,Beta Pty\r\n\r\n1003,Gamma,Kedron,extra\r\n")

	table, err := ReadTable("c.csv", FormatCSV, data)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	wantHeaders := []string{"ServiceID", "Site Name", "Suburb"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("Headers = %q, want %q", table.Headers, wantHeaders)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(table.Rows))
	}

	first := table.Rows[0]
	if first.Line != 2 {
		t.Errorf("Rows[0].Line = %d, want 2", first.Line)
	}
	if first.Values["Suburb"] != "Northgate" || first.Values["Site Name"] != "Acme Co" {
		t.Errorf("Rows[0].Values = %v", first.Values)
	}

	second := table.Rows[1]
	if got, ok := second.Values["Suburb"]; !ok || got != "" {
		t.Errorf("missing trailing value = %q (present %v), want empty string", got, ok)
	}

	third := table.Rows[2]
	if third.Line != 5 {
		t.Errorf("Rows[2].Line = %d, want 5 (blank line 4 dropped)", third.Line)
	}
	if len(third.Values) != 3 {
		t.Errorf("extra values should be ignored, got %v", third.Values)
	}

	if table.FileName != "c.csv" || table.Format != FormatCSV {
		t.Errorf("table metadata = %q/%v", table.FileName, table.Format)
	}
}

func TestReadTable_CSVRowCountProperty(t *testing.T) {
	for n := 0; n <= 25; n += 5 {
		var b strings.Builder
		b.WriteString("a,b,c\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%d,x%d,y%d\n", i, i, i)
		}

		table, err := ReadTable("p.csv", FormatCSV, []byte(b.String()))
		if err != nil {
			t.Fatalf("n=%d: ReadTable() error = %v", n, err)
		}
		if len(table.Rows) != n {
			t.Fatalf("n=%d: len(Rows) = %d", n, len(table.Rows))
		}
		for i, row := range table.Rows {
			if len(row.Values) != len(table.Headers) {
				t.Errorf("n=%d row %d has %d keys, want %d", n, i, len(row.Values), len(table.Headers))
			}
			if row.Values["a"] != fmt.Sprint(i) {
				t.Errorf("n=%d row %d out of order: a=%q", n, i, row.Values["a"])
			}
		}
	}

	// Lines holding only delimiters are rows of empty values; only lines
	// that are empty after trimming are dropped.
	for n := 0; n <= 25; n += 5 {
		var b strings.Builder
		b.WriteString("a,b,c\n")
		want := 0
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%d,x%d,y%d\n", i, i, i)
			want++
			switch i % 3 {
			case 0:
				b.WriteString(",\n")
				want++
			case 1:
				b.WriteString(" ,,, \r\n")
				want++
			case 2:
				b.WriteString("  \r\n\n")
			}
		}

		table, err := ReadTable("d.csv", FormatCSV, []byte(b.String()))
		if err != nil {
			t.Fatalf("n=%d: ReadTable() error = %v", n, err)
		}
		if len(table.Rows) != want {
			t.Fatalf("n=%d: len(Rows) = %d, want %d", n, len(table.Rows), want)
		}
		for i, row := range table.Rows {
			if len(row.Values) != len(table.Headers) {
				t.Errorf("n=%d row %d has %d keys, want %d", n, i, len(row.Values), len(table.Headers))
			}
		}
	}
}

func TestReadTable_DelimiterOnlyLine(t *testing.T) {
	table, err := ReadTable("runs.csv", FormatCSV, []byte("Service ID,Clients\n1001,Acme\n,\n"))
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	last := table.Rows[1]
	if last.Line != 3 {
		t.Errorf("Line = %d, want 3", last.Line)
	}
	want := SourceRecord{"Service ID": "", "Clients": ""}
	if !reflect.DeepEqual(last.Values, want) {
		t.Errorf("Values = %v, want %v", last.Values, want)
	}
}

func TestReadTable_CSVQuirks(t *testing.T) {
	t.Run("bom stripped", func(t *testing.T) {
		data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("service_id\n1\n")...)
		table, err := ReadTable("b.csv", FormatCSV, data)
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if table.Headers[0] != "service_id" {
			t.Errorf("Headers[0] = %q, want service_id", table.Headers[0])
		}
	})

	t.Run("quoted comma is not special", func(t *testing.T) {
		table, err := ReadTable("q.csv", FormatCSV, []byte("a,b\n\"x,y\",z\n"))
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if got := table.Rows[0].Values["a"]; got != `"x` {
			t.Errorf("a = %q, want %q", got, `"x`)
		}
	})

	t.Run("invalid utf8 replaced", func(t *testing.T) {
		table, err := ReadTable("u.csv", FormatCSV, []byte("name\nab\xffc\n"))
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if got := table.Rows[0].Values["name"]; got != "ab�c" {
			t.Errorf("name = %q, want replacement rune", got)
		}
	})

	t.Run("blank header named by position", func(t *testing.T) {
		table, err := ReadTable("h.csv", FormatCSV, []byte("a,,c\n1,2,3\n"))
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if table.Headers[1] != "Column 2" {
			t.Errorf("Headers[1] = %q, want Column 2", table.Headers[1])
		}
		if table.Rows[0].Values["Column 2"] != "2" {
			t.Errorf("Column 2 value = %q", table.Rows[0].Values["Column 2"])
		}
	})

	t.Run("header only", func(t *testing.T) {
		table, err := ReadTable("h.csv", FormatCSV, []byte("a,b\n"))
		if err != nil {
			t.Fatalf("ReadTable() error = %v", err)
		}
		if len(table.Rows) != 0 {
			t.Errorf("len(Rows) = %d, want 0", len(table.Rows))
		}
	})
}

func TestReadTable_ParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		format     Format
		data       []byte
		wantReason string
	}{
		{"empty csv", "e.csv", FormatCSV, []byte(""), "empty file"},
		{"whitespace csv", "w.csv", FormatCSV, []byte("\n \r\n,,\n"), "empty file"},
		{"duplicate header", "d.csv", FormatCSV, []byte("a,b,a\n1,2,3\n"), `duplicate header "a"`},
		{"garbage xlsx", "g.xlsx", FormatXLSX, []byte("not a zip"), "cannot decode xlsx"},
		{"garbage xls", "g.xls", FormatXLS, []byte("not a workbook"), "cannot decode xls"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable(tt.file, tt.format, tt.data)
			if table != nil {
				t.Errorf("ReadTable() returned a table alongside an error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ReadTable() error = %v, want *ParseError", err)
			}
			if pe.FileName != tt.file {
				t.Errorf("FileName = %q, want %q", pe.FileName, tt.file)
			}
			if pe.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", pe.Reason, tt.wantReason)
			}
		})
	}
}

func TestReadTable_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"ServiceID", "Site Name", "Suburb"},
		{1001, "Acme Co", "Northgate"},
		{nil, nil, nil},
		{"1002", "Beta Pty"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}

	table, err := ReadTable("w.xlsx", FormatXLSX, buf.Bytes())
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	if !reflect.DeepEqual(table.Headers, []string{"ServiceID", "Site Name", "Suburb"}) {
		t.Errorf("Headers = %q", table.Headers)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(table.Rows))
	}
	if table.Rows[0].Values["ServiceID"] != "1001" {
		t.Errorf("numeric cell = %q, want 1001", table.Rows[0].Values["ServiceID"])
	}
	if table.Rows[1].Line != 4 {
		t.Errorf("Rows[1].Line = %d, want 4", table.Rows[1].Line)
	}
	if table.Rows[1].Values["Suburb"] != "" {
		t.Errorf("empty cell = %q, want empty string", table.Rows[1].Values["Suburb"])
	}
}

// testdata/runs.xls is a BIFF8 workbook with sheet "Runs":
//
//	row 1: Service ID | Clients  | Suburb
//	row 2: 1001       | Acme Co  | Northgate
//	row 3: (no record)
//	row 4: 1002       | Beta Pty
//	row 5: blank cells only
//	row 6: 1003.5     | =Gamma   | blank
func TestReadTable_XLS(t *testing.T) {
	data, err := os.ReadFile("testdata/runs.xls")
	if err != nil {
		t.Fatal(err)
	}

	table, err := ReadTable("runs.xls", FormatXLS, data)
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}

	wantHeaders := []string{"Service ID", "Clients", "Suburb"}
	if !reflect.DeepEqual(table.Headers, wantHeaders) {
		t.Errorf("Headers = %q, want %q", table.Headers, wantHeaders)
	}

	want := []SourceRow{
		{Line: 2, Values: SourceRecord{"Service ID": "1001", "Clients": "Acme Co", "Suburb": "Northgate"}},
		{Line: 4, Values: SourceRecord{"Service ID": "1002", "Clients": "Beta Pty", "Suburb": ""}},
		{Line: 6, Values: SourceRecord{"Service ID": "1003.5", "Clients": "=Gamma", "Suburb": ""}},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Errorf("Rows = %+v\nwant %+v", table.Rows, want)
	}
	if table.Format != FormatXLS {
		t.Errorf("Format = %v, want xls", table.Format)
	}
}
