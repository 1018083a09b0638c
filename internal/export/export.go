// Package export persists extracted budget tables as CSV and XLSX.
package export

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/thuytrinht4/ds-ocr-parsePDF/internal/table"
)

// Record is one cell of a table in long format: one line per
// (row, value column) pair, so tables of different widths share a file.
type Record struct {
	Document string  `csv:"document"`
	Table    string  `csv:"table"`
	Row      int     `csv:"row"`
	Label    string  `csv:"label"`
	Column   string  `csv:"column"`
	Value    float64 `csv:"value"`
}

// Records flattens tables into long-format records in table, row, column order.
func Records(document string, tables ...*table.Table) []*Record {
	var out []*Record
	for _, t := range tables {
		for i, r := range t.Rows {
			for j, v := range r.Values {
				col := fmt.Sprintf("value_%d", j+1)
				if j+1 < len(t.Columns) {
					col = t.Columns[j+1]
				}
				out = append(out, &Record{
					Document: document,
					Table:    t.Name,
					Row:      i,
					Label:    r.Label,
					Column:   col,
					Value:    v,
				})
			}
		}
	}
	return out
}

// WriteCSV writes the tables as long-format CSV.
func WriteCSV(w io.Writer, document string, tables ...*table.Table) error {
	records := Records(document, tables...)
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("marshal csv: %w", err)
	}
	return nil
}

// WriteXLSX writes one worksheet per table, header row first.
func WriteXLSX(w io.Writer, tables ...*table.Table) error {
	f, err := workbook(tables...)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// SaveCSV writes the CSV export to path.
func SaveCSV(path, document string, tables ...*table.Table) error {
	return saveFile(path, func(w io.Writer) error {
		return WriteCSV(w, document, tables...)
	})
}

// SaveXLSX writes the workbook export to path.
func SaveXLSX(path string, tables ...*table.Table) error {
	return saveFile(path, func(w io.Writer) error {
		return WriteXLSX(w, tables...)
	})
}

func workbook(tables ...*table.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, t := range tables {
		sheet := sheetName(t.Name, i)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("add sheet %s: %w", sheet, err)
		}

		header := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			header[j] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header %s: %w", sheet, err)
		}

		for r, row := range t.Rows {
			cells := make([]any, 0, len(row.Values)+1)
			cells = append(cells, row.Label)
			for _, v := range row.Values {
				cells = append(cells, v)
			}
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
				f.Close()
				return nil, fmt.Errorf("write row %d of %s: %w", r, sheet, err)
			}
		}
	}
	return f, nil
}

// sheetName keeps within Excel's 31 character limit.
func sheetName(name string, i int) string {
	if name == "" {
		name = fmt.Sprintf("Table%d", i+1)
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}

func saveFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
