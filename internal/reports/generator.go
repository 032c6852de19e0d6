package reports

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// ErrNotConfigured is returned by the Null generator
var ErrNotConfigured = errors.New("report generation is not configured")

// Descriptor points the caller at a generated report file
type Descriptor struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	ProductCount int    `json:"productCount"`
}

// Generator produces expiration report files. Two variants exist: the real
// file generator and NullGenerator, selected at startup by configuration.
type Generator interface {
	ExpirationPDF(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error)
	ExpirationHTML(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error)
}

// NullGenerator reports the capability as unavailable
type NullGenerator struct{}

// ExpirationPDF always fails with ErrNotConfigured
func (NullGenerator) ExpirationPDF(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error) {
	return nil, ErrNotConfigured
}

// ExpirationHTML always fails with ErrNotConfigured
func (NullGenerator) ExpirationHTML(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error) {
	return nil, ErrNotConfigured
}

// FileGenerator writes reports under the configured output directory
type FileGenerator struct {
	cfg config.ReportsConfig
}

// NewFileGenerator creates a FileGenerator, ensuring the output dir exists
func NewFileGenerator(cfg config.ReportsConfig) (*FileGenerator, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reports dir: %w", err)
	}
	return &FileGenerator{cfg: cfg}, nil
}

func (g *FileGenerator) descriptor(filename string, count int) *Descriptor {
	return &Descriptor{
		URL:          g.cfg.BaseURL + "/" + filename,
		Filename:     filename,
		ProductCount: count,
	}
}

// ExpirationPDF renders the expiration report as an A4 PDF. Each product row
// carries a QR code of its barcode for scanning on the shop floor.
func (g *FileGenerator) ExpirationPDF(items []inventory.ItemView, generatedAt time.Time) (*Descriptor, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, "Beach Market - Expiration Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s - %d products", generatedAt.Format("2006-01-02 15:04"), len(items)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Table header
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(16, 7, "QR", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "Barcode", "1", 0, "L", true, 0, "")
	pdf.CellFormat(78, 7, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(26, 7, "Expires", "1", 0, "C", true, 0, "")
	pdf.CellFormat(14, 7, "Days", "1", 0, "C", true, 0, "")
	pdf.CellFormat(22, 7, "Urgency", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	for i, item := range items {
		qrPng, err := qrcode.Encode(item.Barcode, qrcode.Low, 128)
		if err != nil {
			return nil, fmt.Errorf("failed to encode QR for %s: %w", item.Barcode, err)
		}
		imgName := fmt.Sprintf("qr_%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPng))

		x, y := pdf.GetXY()
		rowH := 12.0

		pdf.ImageOptions(imgName, x+2, y+1, rowH-2, rowH-2, false, opts, 0, "")
		pdf.CellFormat(16, rowH, "", "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, rowH, item.Barcode, "1", 0, "L", false, 0, "")
		pdf.CellFormat(78, rowH, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(26, rowH, item.ExpirationDate.Format("2006-01-02"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(14, rowH, fmt.Sprintf("%d", item.DaysRemaining), "1", 0, "C", false, 0, "")
		pdf.CellFormat(22, rowH, string(item.Urgency), "1", 1, "C", false, 0, "")
	}

	if len(items) == 0 {
		pdf.CellFormat(0, 10, "No products close to expiration.", "", 1, "L", false, 0, "")
	}

	filename := fmt.Sprintf("expiration-%s-%s.pdf", generatedAt.Format("20060102"), uuid.NewString()[:8])
	path := filepath.Join(g.cfg.OutputDir, filename)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	return g.descriptor(filename, len(items)), nil
}
