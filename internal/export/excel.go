package export

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	tocSheetName = "Sheet Descriptions"
	maxColWidth  = 50
	minColWidth  = 10
)

// WriteWorkbook writes every table as a sheet of a single Excel workbook,
// with a table-of-contents sheet first, bold frozen headers and content-sized
// columns.
func WriteWorkbook(path, season string, tables []Table) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := writeTOC(f, season, tables, headerStyle); err != nil {
		return err
	}

	for _, t := range tables {
		if err := writeSheet(f, t, headerStyle); err != nil {
			return err
		}
	}
	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(tocSheetName); err == nil {
		f.SetActiveSheet(idx)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Info().Str("season", season).Str("path", path).Int("sheets", len(tables)).Msg("wrote excel workbook")
	return nil
}

func writeTOC(f *excelize.File, season string, tables []Table, headerStyle int) error {
	if _, err := f.NewSheet(tocSheetName); err != nil {
		return fmt.Errorf("create TOC sheet: %w", err)
	}
	f.SetCellValue(tocSheetName, "A1", "Season")
	f.SetCellValue(tocSheetName, "B1", season)
	f.SetCellValue(tocSheetName, "A2", "Sheet")
	f.SetCellValue(tocSheetName, "B2", "Description")
	f.SetCellStyle(tocSheetName, "A2", "B2", headerStyle)
	for i, t := range tables {
		row := i + 3
		f.SetCellValue(tocSheetName, fmt.Sprintf("A%d", row), sheetName(t))
		f.SetCellValue(tocSheetName, fmt.Sprintf("B%d", row), t.Description)
	}
	f.SetColWidth(tocSheetName, "A", "A", 32)
	f.SetColWidth(tocSheetName, "B", "B", 90)
	return nil
}

// sheetName truncates to Excel's 31-character sheet name limit.
func sheetName(t Table) string {
	if len(t.Name) <= 31 {
		return t.Name
	}
	return t.Name[:31]
}

func writeSheet(f *excelize.File, t Table, headerStyle int) error {
	sheet := sheetName(t)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	widths := make([]int, len(t.Columns))
	for i, col := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, col)
		widths[i] = len(col)
	}

	for r, row := range t.Rows {
		for c := range t.Columns {
			if c >= len(row) || row[c] == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			v := row[c]
			if d, ok := v.(time.Time); ok {
				v = d.Format("2006-01-02")
			}
			f.SetCellValue(sheet, cell, v)
			if w := len(cellString(row[c])); w > widths[c] {
				widths[c] = w
			}
		}
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
	if err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", lastHeader, headerStyle)

	for i := range t.Columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		w := widths[i] + 2
		if w > maxColWidth {
			w = maxColWidth
		}
		if w < minColWidth {
			w = minColWidth
		}
		f.SetColWidth(sheet, name, name, float64(w))
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
