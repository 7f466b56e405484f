// Package export writes quotes, spool labels and print history to file
// formats handed to customers and the workshop.
package export

import (
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// Page layout constants (A4 portrait in mm).
const (
	pageWidth   = 210.0
	marginLeft  = 20.0
	marginRight = 20.0
	marginTop   = 20.0
	rowHeight   = 7.0
)

// QuoteInfo collects the job parameters shown alongside the price
// breakdown on a quote document.
type QuoteInfo struct {
	JobName        string
	FilamentLabel  string
	WeightG        float64
	PrintTimeHours float64
	Copies         int
}

// ExportQuotePDF writes an itemized quote document for one priced job.
// Amounts are rendered through the display context so the PDF matches the
// currency the customer was quoted in.
func ExportQuotePDF(path string, info QuoteInfo, breakdown model.PriceBreakdown, disp model.DisplayContext) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "3D Print Quote", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	// Job parameters
	pdf.SetFont("Helvetica", "", 10)
	jobItems := []struct {
		label string
		value string
	}{
		{"Job", info.JobName},
		{"Filament", info.FilamentLabel},
		{"Weight", fmt.Sprintf("%.1f g", info.WeightG)},
		{"Print time", fmt.Sprintf("%.2f h", info.PrintTimeHours)},
		{"Copies", fmt.Sprintf("%d", info.Copies)},
		{"Date", time.Now().Format("2006-01-02")},
	}
	for _, item := range jobItems {
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(45, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(100, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 6

	// Breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Price Breakdown", "", 0, "L", false, 0, "")
	y += 10

	rows := []struct {
		label  string
		amount float64
	}{
		{"Material", breakdown.MaterialCost},
		{"Printer time", breakdown.TimeCost},
		{"Energy", breakdown.EnergyCost},
		{"Post-processing", breakdown.PostprocessCost},
		{"Setup fee", breakdown.SetupFee},
		{"Risk", breakdown.RiskAmount},
		{"Margin", breakdown.MarginAmount},
		{"Packaging", breakdown.PackagingCost},
		{"Shipping", breakdown.ShippingCost},
		{"Net price", breakdown.PriceBeforeVAT},
		{"VAT", breakdown.VATAmount},
	}

	labelW := 110.0
	amountW := pageWidth - marginLeft - marginRight - labelW

	pdf.SetFont("Helvetica", "", 10)
	for i, row := range rows {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(labelW, rowHeight, row.label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(amountW, rowHeight, disp.Format(row.amount), "1", 0, "R", true, 0, "")
		y += rowHeight
	}

	// Final price row
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(labelW, rowHeight+1, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountW, rowHeight+1, disp.Format(breakdown.FinalPrice), "1", 0, "R", true, 0, "")

	return pdf.OutputFileAndClose(path)
}
