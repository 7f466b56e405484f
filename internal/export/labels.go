package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/Knopersikcuo/printmanager/internal/model"
)

// SpoolLabel holds the data encoded into each spool label's QR code.
type SpoolLabel struct {
	ID            string `json:"id"`
	Brand         string `json:"brand"`
	Type          string `json:"type"`
	Color         string `json:"color"`
	CurrentWeight int    `json:"current_weight_g"`
	InitialWeight int    `json:"initial_weight_g"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10
// rows per page). Each label cell is approximately 66.7mm x 25.4mm on US
// Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportSpoolLabels generates a PDF of QR-coded labels for the given
// spools. Each label shows the brand, material and remaining weight, plus a
// QR code encoding the spool metadata as JSON so a scan identifies the
// exact inventory record.
func ExportSpoolLabels(path string, filaments []model.Filament) error {
	if len(filaments) == 0 {
		return fmt.Errorf("no filaments to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, f := range filaments {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderSpoolLabel(pdf, x, y, f); err != nil {
			return fmt.Errorf("failed to render label for %s %s: %w", f.Brand, f.Type, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderSpoolLabel draws a single label at the given position.
func renderSpoolLabel(pdf *fpdf.Fpdf, x, y float64, f model.Filament) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	label := SpoolLabel{
		ID:            f.ID,
		Brand:         f.Brand,
		Type:          f.Type,
		Color:         f.Color,
		CurrentWeight: f.CurrentWeight,
		InitialWeight: f.InitialWeight,
	}
	qrData, err := json.Marshal(label)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%s", f.ID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Brand and material (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	title := fmt.Sprintf("%s %s", f.Brand, f.Type)
	if pdf.GetStringWidth(title) > textW {
		for len(title) > 0 && pdf.GetStringWidth(title+"...") > textW {
			title = title[:len(title)-1]
		}
		title += "..."
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	// Weights
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	weights := fmt.Sprintf("%d / %d g", f.CurrentWeight, f.InitialWeight)
	pdf.CellFormat(textW, 3.5, weights, "", 1, "L", false, 0, "")

	// Color code
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, f.Color, "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
