package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportFinancialReportXLSX builds a spreadsheet version of the financial
// report: one row per line item plus a summary block.
func ExportFinancialReportXLSX(groups []ClientGroup, totals Totals) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Financial Report"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Client", "Item", "Value", "Date", "Status"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	for _, group := range groups {
		for _, line := range group.Lines {
			date := ""
			if line.Date != nil {
				date = line.Date.Format("2006-01-02")
			}
			values := []interface{}{group.ClientName, line.Label, line.Value, date, line.Status}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, value)
			}
			row++
		}
	}

	// Summary block below the listing
	row++
	summary := [][]interface{}{
		{"Received", totals.Received},
		{"Receivable", totals.Receivable},
		{"Pending by institution", totals.PendingByInstitution},
	}
	for _, pair := range summary {
		labelCell, _ := excelize.CoordinatesToCellName(1, row)
		valueCell, _ := excelize.CoordinatesToCellName(2, row)
		f.SetCellValue(sheet, labelCell, pair[0])
		f.SetCellValue(sheet, valueCell, pair[1])
		row++
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
