package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Generator renders order receipts. Receipts only show the immutable part of
// an order, so a rendered file can be reused.
type Generator interface {
	Receipt(data ReceiptData) ([]byte, error)
}

type ReceiptLine struct {
	Name     string
	Quantity int
	Price    float64
}

type ReceiptData struct {
	OrderNumber     string
	RestaurantName  string
	CustomerName    string
	CustomerPhone   string
	DeliveryAddress string
	Lines           []ReceiptLine
	Total           float64
	CreatedAt       time.Time
}

type ReceiptGenerator struct {
	RootDir  string // receipts are cached under RootDir/receipts; empty disables the cache
	FontPath string // TTF with the glyphs we need; empty falls back to Helvetica
	fontName string
}

func NewReceiptGenerator(rootDir, fontPath string) *ReceiptGenerator {
	g := &ReceiptGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if rootDir != "" {
		g.RootDir = filepath.Clean(rootDir)
	}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReceiptGenerator) Receipt(data ReceiptData) ([]byte, error) {
	if data.OrderNumber == "" {
		return nil, errors.New("receipt: order number is required")
	}

	path := g.cachePath(data.OrderNumber)
	if path != "" {
		if b, err := os.ReadFile(path); err == nil {
			return b, nil
		}
	}

	b, err := g.render(data)
	if err != nil {
		return nil, err
	}

	if path != "" {
		if err := g.store(path, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (g *ReceiptGenerator) render(data ReceiptData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Receipt "+data.OrderNumber, true)
	pdf.SetAuthor(data.RestaurantName, true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	tr := func(s string) string { return s }
	if g.FontPath != "" {
		pdf.AddUTF8Font(g.fontName, "", g.FontPath)
		pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	} else {
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr(data.RestaurantName), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 12)
	pdf.CellFormat(0, 7, tr(fmt.Sprintf("Order %s  |  %s", data.OrderNumber, data.CreatedAt.Format("02.01.2006 15:04"))), "", 1, "C", false, 0, "")
	g.hr(pdf)

	g.kvLine(pdf, tr, "Customer", data.CustomerName)
	g.kvLine(pdf, tr, "Phone", data.CustomerPhone)
	if data.DeliveryAddress != "" {
		g.kvLine(pdf, tr, "Address", data.DeliveryAddress)
	}
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(100, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 7, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 7, "Sum", "B", 1, "R", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	for _, l := range data.Lines {
		pdf.CellFormat(100, 7, tr(l.Name), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", l.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, money(l.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, money(l.Price*float64(l.Quantity)), "", 1, "R", false, 0, "")
	}
	g.hr(pdf)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(145, 8, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, money(data.Total), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render receipt %s: %w", data.OrderNumber, err)
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func (g *ReceiptGenerator) kvLine(pdf *gofpdf.Fpdf, tr func(string) string, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(val), "", 1, "L", false, 0, "")
}

func (g *ReceiptGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func (g *ReceiptGenerator) cachePath(orderNumber string) string {
	if g.RootDir == "" {
		return ""
	}
	return filepath.Join(g.RootDir, "receipts", filepath.Base(orderNumber)+".pdf")
}

func (g *ReceiptGenerator) store(path string, b []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create receipts dir: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write receipt: %w", err)
	}
	return nil
}
