package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// WriteReportXLSX renders report rows as an XLSX workbook at path, mirroring
// the CSV column layout.
func WriteReportXLSX(path string, rows []ReportRow) error {
	f := excelize.NewFile()
	const sheet = "Expenses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for r, row := range rows {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, r+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, row.Category)
		write(2, row.Description)
		write(3, row.Vendor)
		write(4, row.Documentation)
		write(5, row.Date)
		write(6, row.Amount)
		write(7, row.SourceFile)
	}

	_ = f.SetColWidth(sheet, "A", "A", 22) // category
	_ = f.SetColWidth(sheet, "B", "B", 40) // description
	_ = f.SetColWidth(sheet, "C", "C", 28) // vendor
	_ = f.SetColWidth(sheet, "D", "D", 18) // documentation
	_ = f.SetColWidth(sheet, "E", "E", 14) // date
	_ = f.SetColWidth(sheet, "F", "F", 16) // amount
	_ = f.SetColWidth(sheet, "G", "G", 48) // source file

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}
