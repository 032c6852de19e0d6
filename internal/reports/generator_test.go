package reports

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/beachmarket/beachmarketgo/internal/config"
	"github.com/beachmarket/beachmarketgo/internal/inventory"
	"github.com/beachmarket/beachmarketgo/internal/models"
)

func sampleItems() []inventory.ItemView {
	item := func(barcode, desc string, days int) inventory.ItemView {
		return inventory.ItemView{
			ExtendedInventoryItem: models.ExtendedInventoryItem{
				Barcode:        barcode,
				Description:    desc,
				ExpirationDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, days),
			},
			DaysRemaining: days,
			Urgency:       inventory.Classify(days),
		}
	}
	return []inventory.ItemView{
		item("7501000111", "Yogurt Natural 1L", 2),
		item("7501000222", "Queso Fresco 400g", 6),
	}
}

func newTestGenerator(t *testing.T) *FileGenerator {
	t.Helper()
	gen, err := NewFileGenerator(config.ReportsConfig{
		Enabled:   true,
		OutputDir: t.TempDir(),
		BaseURL:   "/reports",
	})
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}
	return gen
}

func TestExpirationPDF(t *testing.T) {
	gen := newTestGenerator(t)
	generatedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	desc, err := gen.ExpirationPDF(sampleItems(), generatedAt)
	if err != nil {
		t.Fatalf("ExpirationPDF failed: %v", err)
	}
	if desc.ProductCount != 2 {
		t.Errorf("ProductCount = %d, want 2", desc.ProductCount)
	}
	if !strings.HasPrefix(desc.URL, "/reports/") {
		t.Errorf("URL should be under the base URL, got %s", desc.URL)
	}
	if !strings.HasSuffix(desc.Filename, ".pdf") {
		t.Errorf("Filename should end in .pdf, got %s", desc.Filename)
	}

	data, err := os.ReadFile(filepath.Join(gen.cfg.OutputDir, desc.Filename))
	if err != nil {
		t.Fatalf("Report file missing: %v", err)
	}
	if len(data) == 0 || !strings.HasPrefix(string(data[:5]), "%PDF-") {
		t.Error("Report file is not a PDF")
	}
}

func TestExpirationHTML(t *testing.T) {
	gen := newTestGenerator(t)
	generatedAt := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	desc, err := gen.ExpirationHTML(sampleItems(), generatedAt)
	if err != nil {
		t.Fatalf("ExpirationHTML failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(gen.cfg.OutputDir, desc.Filename))
	if err != nil {
		t.Fatalf("Report file missing: %v", err)
	}
	body := string(data)
	for _, want := range []string{"Yogurt Natural 1L", "7501000222", "critical", "warning"} {
		if !strings.Contains(body, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestExpirationPDF_Empty(t *testing.T) {
	gen := newTestGenerator(t)
	desc, err := gen.ExpirationPDF(nil, time.Now())
	if err != nil {
		t.Fatalf("Empty report must still generate: %v", err)
	}
	if desc.ProductCount != 0 {
		t.Errorf("ProductCount = %d, want 0", desc.ProductCount)
	}
}

func TestNullGenerator(t *testing.T) {
	var gen Generator = NullGenerator{}
	if _, err := gen.ExpirationPDF(sampleItems(), time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if _, err := gen.ExpirationHTML(nil, time.Now()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
