package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"bentapos/backend/internal/domain"
)

// ExportExcel writes the aggregate as an .xlsx workbook at destPath, one row
// per order with its product names and quantities folded into single cells.
func ExportExcel(agg domain.SalesAggregate, destPath string) error {
	return writeAtomically(destPath, func(tmpPath string) error {
		f := excelize.NewFile()
		defer func() { _ = f.Close() }()

		const sheet = "Sheet1"
		for col, header := range tableHeaders {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return err
			}
		}

		for i, order := range agg.Orders {
			row := i + 2
			values := []any{
				order.OrderID,
				wrap(joinNames(order.Products), productNameWrapWidth),
				joinQuantities(order.Products),
				order.TotalSales.StringFixed(2),
				order.SalesDate,
			}
			for col, value := range values {
				cell, err := excelize.CoordinatesToCellName(col+1, row)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, value); err != nil {
					return err
				}
			}
		}

		// Long product lists wrap inside the cell instead of widening the
		// column.
		style, err := f.NewStyle(&excelize.Style{
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		})
		if err != nil {
			return err
		}
		lastCell, err := excelize.CoordinatesToCellName(len(tableHeaders), len(agg.Orders)+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, "A1", lastCell, style); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "B", "B", 36); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "D", "E", 20); err != nil {
			return err
		}

		summaryRow := len(agg.Orders) + 3
		for i, entry := range []struct {
			label string
			value string
		}{
			{"Total Purchase", agg.TotalPurchase.StringFixed(2)},
			{"Total Sales", agg.TotalSales.StringFixed(2)},
			{"Total Income", agg.TotalIncome.StringFixed(2)},
		} {
			labelCell := fmt.Sprintf("A%d", summaryRow+i)
			valueCell := fmt.Sprintf("B%d", summaryRow+i)
			if err := f.SetCellValue(sheet, labelCell, entry.label); err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, valueCell, entry.value); err != nil {
				return err
			}
		}

		return f.SaveAs(tmpPath)
	})
}
