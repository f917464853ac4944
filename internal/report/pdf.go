package report

import (
	"github.com/go-pdf/fpdf"

	"bentapos/backend/internal/domain"
)

var pdfColWidths = []float64{25, 60, 30, 40, 35}

const pdfLineHeight = 6.0

// ExportPDF writes the aggregate as a paginated PDF table at destPath. Each
// product line gets its own row; the order id, order total, and date appear
// only on the first row of each order. Page breaks fall between rows, never
// through one.
func ExportPDF(agg domain.SalesAggregate, destPath string) error {
	return writeAtomically(destPath, func(tmpPath string) error {
		pdf := fpdf.New("P", "mm", "A4", "")
		pdf.SetAutoPageBreak(true, 15)
		pdf.AddPage()

		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 10, "Sales History "+agg.Date, "", 1, "C", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 10)
		for i, header := range tableHeaders {
			pdf.CellFormat(pdfColWidths[i], pdfLineHeight+1, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 10)
		for _, order := range agg.Orders {
			for i, product := range order.Products {
				orderID, total, date := "", "", ""
				if i == 0 {
					orderID = intString(order.OrderID)
					total = order.TotalSales.StringFixed(2)
					date = order.SalesDate
				}
				pdf.CellFormat(pdfColWidths[0], pdfLineHeight, orderID, "1", 0, "", false, 0, "")
				pdf.CellFormat(pdfColWidths[1], pdfLineHeight, product.Name, "1", 0, "", false, 0, "")
				pdf.CellFormat(pdfColWidths[2], pdfLineHeight, intString(int64(product.Qty)), "1", 0, "R", false, 0, "")
				pdf.CellFormat(pdfColWidths[3], pdfLineHeight, total, "1", 0, "R", false, 0, "")
				pdf.CellFormat(pdfColWidths[4], pdfLineHeight, date, "1", 0, "", false, 0, "")
				pdf.Ln(-1)
			}
		}

		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 10)
		for _, entry := range []struct {
			label string
			value string
		}{
			{"Total Purchase", agg.TotalPurchase.StringFixed(2)},
			{"Total Sales", agg.TotalSales.StringFixed(2)},
			{"Total Income", agg.TotalIncome.StringFixed(2)},
		} {
			pdf.CellFormat(50, pdfLineHeight, entry.label, "", 0, "", false, 0, "")
			pdf.CellFormat(40, pdfLineHeight, entry.value, "", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}

		return pdf.OutputFileAndClose(tmpPath)
	})
}
