package services

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"vendorportal/storage"
)

// WriteReceipt renders a PDF listing the products currently in a batch.
func WriteReceipt(w io.Writer, vendor string, entries []storage.BatchEntry, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Single Product Batch", false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(190, 10, "Single Product Batch")
	pdf.Ln(16)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 7, "Vendor:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 7, vendor)
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 7, "Generated on:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 7, now.Format("2006-01-02 15:04:05"))
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 7, "Products:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(150, 7, fmt.Sprintf("%d", len(entries)))
	pdf.Ln(12)

	pdf.SetFillColor(230, 230, 230)
	pdf.SetFont("Arial", "B", 10)
	pdf.Rect(10, pdf.GetY(), 190, 8, "F")
	pdf.SetXY(10, pdf.GetY())
	pdf.Cell(10, 8, "#")
	pdf.Cell(45, 8, "Part Number")
	pdf.Cell(40, 8, "Vendor")
	pdf.Cell(60, 8, "Pricing")
	pdf.Cell(35, 8, "Added")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	for i, e := range entries {
		pdf.Cell(10, 6, fmt.Sprintf("%d", i+1))
		pdf.Cell(45, 6, e.SKU)
		pdf.Cell(40, 6, e.Vendor)
		pdf.Cell(60, 6, e.MethodSummary)
		pdf.Cell(35, 6, e.AddedAt.Format("2006-01-02 15:04"))
		pdf.Ln(6)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}
	return nil
}
