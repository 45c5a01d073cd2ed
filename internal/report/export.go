package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat accepts csv, xlsx and excel (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("invalid format %q (use csv or xlsx)", s)
	}
}

// WriteCSV writes t as comma separated UTF-8 text.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(t.Records()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func CSV(t Table) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// XLSX renders t on a single sheet with a bold header. Cells that parse as
// numbers are stored as numbers.
func XLSX(t Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(t.Name)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	if sheet != "Sheet1" {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, err
		}
		if index, err = f.GetSheetIndex(sheet); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(index)

	for r, rec := range t.Records() {
		for c, v := range rec {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(r, v)); err != nil {
				return nil, err
			}
		}
	}

	if n := len(t.Header); n > 0 {
		if err := styleTable(f, sheet, n, t); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// styleTable widens the columns and puts the header and totals rows in bold.
func styleTable(f *excelize.File, sheet string, cols int, t Table) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 16); err != nil {
		return err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := boldRow(f, sheet, 1, cols, style); err != nil {
		return err
	}
	if len(t.Footer) > 0 {
		return boldRow(f, sheet, len(t.Rows)+2, len(t.Footer), style)
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, cols, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(cols, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func cellValue(row int, v string) any {
	if row == 0 || v == "" {
		return v
	}
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n
	}
	return v
}

// sheetName trims to the 31 characters a sheet name may hold.
func sheetName(name string) string {
	if name == "" {
		return "Sheet1"
	}
	if len(name) > 31 {
		return name[:31]
	}
	return name
}

// Render serializes t in the given format.
func Render(t Table, format Format) ([]byte, string, error) {
	switch format {
	case FormatXLSX:
		data, err := XLSX(t)
		return data, ContentTypeXLSX, err
	case FormatCSV:
		data, err := CSV(t)
		return data, ContentTypeCSV, err
	default:
		return nil, "", fmt.Errorf("unsupported format %q", format)
	}
}

// Export renders t and stores it in sink under name. It returns where the
// file ended up.
func Export(ctx context.Context, sink Sink, t Table, format Format, name string) (string, error) {
	data, contentType, err := Render(t, format)
	if err != nil {
		return "", err
	}
	return sink.Put(ctx, name, data, contentType)
}
