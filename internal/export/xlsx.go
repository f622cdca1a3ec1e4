package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/hanadict/internal/dictionary"
)

// DefaultSheetName names the single worksheet of XLSX output.
const DefaultSheetName = "Data Dictionary"

// excelize starts every workbook with this sheet
const initialSheet = "Sheet1"

// WriteXLSX writes a workbook with one sheet: a bold, frozen, filterable
// header row and one spreadsheet row per dictionary row.
func WriteXLSX(w io.Writer, rows []dictionary.Row, opts Options) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(opts.SheetName)
	if err := f.SetSheetName(initialSheet, sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := dictionary.Header()
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, sheet, i+2, r.Record()); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 22); err != nil {
		return fmt.Errorf("column width: %w", err)
	}
	ref := fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1)
	if err := f.AutoFilter(sheet, ref, nil); err != nil {
		return fmt.Errorf("autofilter: %w", err)
	}
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	return f.Write(w)
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	vals := make([]interface{}, len(values))
	for i, v := range values {
		vals[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &vals); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", row, err)
	}
	return nil
}

// sheetName applies Excel's naming rules: at most 31 characters and none of : \ / ? * [ ].
func sheetName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultSheetName
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, name)
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
