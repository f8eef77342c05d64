package printer

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Label is one device sticker
type Label struct {
	IMEI     string `json:"imei"`
	Title    string `json:"title"`    // brand and model
	Subtitle string `json:"subtitle"` // colour, storage or PO number
}

// SheetConfig holds the A4 sheet layout
type SheetConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
	Border     bool    `json:"border"`
}

// WithDefaults fills a 3×7 sheet with 10mm margins.
func (c SheetConfig) WithDefaults() SheetConfig {
	if c.Cols <= 0 {
		c.Cols = 3
	}
	if c.Rows <= 0 {
		c.Rows = 7
	}
	if c.MarginTop == 0 {
		c.MarginTop = 10
	}
	if c.MarginLeft == 0 {
		c.MarginLeft = 10
	}
	return c
}

// GenerateLabelsPDF lays out one QR label per device; the QR encodes the IMEI
func GenerateLabelsPDF(cfg SheetConfig, labels []Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to print")
	}
	cfg = cfg.WithDefaults()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)

	// A4 dimensions
	pageWidth, pageHeight := 210.0, 297.0

	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY

	// Symmetric margins
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)

	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)
	labelsPerPage := cfg.Cols * cfg.Rows

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	for i, l := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		indexOnPage := i % labelsPerPage
		col := indexOnPage % cfg.Cols
		row := indexOnPage / cfg.Cols

		// Top-left of label
		x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
		y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

		qrPng, err := qrcode.Encode(l.IMEI, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("qr for %s: %w", l.IMEI, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		// QR on the left half, text on the right
		qrSize := labelH * 0.8
		if qrSize > labelW/2 {
			qrSize = labelW / 2
		}
		qrY := y + (labelH-qrSize)/2
		pdf.ImageOptions(imgName, x+1, qrY, qrSize, qrSize, false, imgOptions, 0, "")

		textX := x + qrSize + 2
		textW := labelW - qrSize - 3

		pdf.SetXY(textX, y+labelH*0.2)
		pdf.SetFontSize(8)
		pdf.CellFormat(textW, 4, l.Title, "", 2, "L", false, 0, "")

		pdf.SetX(textX)
		pdf.SetFontSize(6)
		pdf.CellFormat(textW, 3, l.Subtitle, "", 2, "L", false, 0, "")

		pdf.SetX(textX)
		pdf.SetFontSize(7)
		pdf.CellFormat(textW, 4, l.IMEI, "", 0, "L", false, 0, "")

		if cfg.Border {
			pdf.Rect(x, y, labelW, labelH, "D")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
