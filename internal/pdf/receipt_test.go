package pdf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() ReceiptData {
	return ReceiptData{
		OrderNumber:    "ORD000042",
		RestaurantName: "Tasty Bites Restaurant",
		CustomerName:   "Ada Lovelace",
		CustomerPhone:  "+91 9876543210",
		Lines: []ReceiptLine{
			{Name: "Paneer Tikka", Quantity: 2, Price: 180},
			{Name: "Café Latte", Quantity: 1, Price: 90.5},
		},
		Total:     450.5,
		CreatedAt: time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestReceiptRendersPDF(t *testing.T) {
	g := NewReceiptGenerator("", "")

	b, err := g.Receipt(sampleReceipt())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF")))
}

func TestReceiptIsCachedOnDisk(t *testing.T) {
	dir := t.TempDir()
	g := NewReceiptGenerator(dir, "")

	first, err := g.Receipt(sampleReceipt())
	require.NoError(t, err)

	path := filepath.Join(dir, "receipts", "ORD000042.pdf")
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, first, onDisk)

	require.NoError(t, os.WriteFile(path, []byte("%PDF-cached"), 0o644))
	second, err := g.Receipt(sampleReceipt())
	require.NoError(t, err)
	assert.Equal(t, "%PDF-cached", string(second))
}

func TestReceiptRequiresOrderNumber(t *testing.T) {
	_, err := NewReceiptGenerator("", "").Receipt(ReceiptData{})
	assert.Error(t, err)
}
