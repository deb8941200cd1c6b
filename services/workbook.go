package services

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"vendorportal/catalog"
)

// PreviewLimit is the number of records returned by a log preview.
const PreviewLimit = 20

// BatchFileName names a generated single product workbook.
func BatchFileName(now time.Time) string {
	return fmt.Sprintf("single_products_batch_%s.xlsx", Timestamp(now))
}

// WriteWorkbook renders book as a workbook with one sheet per catalog sheet,
// in tab order, each starting with a styled header row.
func WriteWorkbook(w io.Writer, book catalog.Book) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Family: "Arial",
			Color:  "#FFFFFF",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for _, sheet := range catalog.SheetNames() {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("create sheet %s: %w", sheet, err)
		}
		header := catalog.Header(sheet)
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write %s header: %w", sheet, err)
		}
		lastCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", lastCell, headerStyle); err != nil {
			return fmt.Errorf("style %s header: %w", sheet, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(header))
		if err := f.SetColWidth(sheet, "A", lastCol, 20); err != nil {
			return err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return err
		}

		for i, row := range book[sheet] {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
			}
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	if idx, err := f.GetSheetIndex(catalog.SheetItemMaster); err == nil {
		f.SetActiveSheet(idx)
	}
	return f.Write(w)
}

// SaveWorkbook writes book under dir as a batch file and returns its path.
func SaveWorkbook(dir string, book catalog.Book, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, book); err != nil {
		return "", err
	}
	path := filepath.Join(dir, BatchFileName(now))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// PreviewRows reads the first sheet of an xlsx file and returns up to limit
// data rows keyed by the header row. Missing trailing cells read as "".
func PreviewRows(data []byte, limit int) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return []map[string]string{}, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", sheets[0], err)
	}
	records := []map[string]string{}
	if len(rows) == 0 {
		return records, nil
	}

	header := rows[0]
	for i, name := range header {
		if name == "" {
			header[i] = fmt.Sprintf("Unnamed: %d", i)
		}
	}
	for _, row := range rows[1:] {
		if len(records) == limit {
			break
		}
		rec := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = row[i]
			} else {
				rec[name] = ""
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
