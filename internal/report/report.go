// Package report renders a day's sales aggregate to spreadsheet and PDF
// files for sharing outside the system.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"bentapos/backend/internal/domain"
)

// ErrExport marks a failure to render or write a report file. The data
// itself is fine; only the export failed.
var ErrExport = errors.New("report: export failed")

var tableHeaders = []string{"Order ID", "Product Name", "Quantity", "Total Retail Sales", "Sales Date"}

// productNameWrapWidth is where long product-name lists get a forced line
// break so spreadsheet cells stay readable.
const productNameWrapWidth = 30

// FileName returns the canonical report file name for a day, e.g.
// sales_history_2026-08-29.xlsx.
func FileName(day time.Time, ext string) string {
	return fmt.Sprintf("sales_history_%s.%s", day.UTC().Format("2006-01-02"), strings.TrimPrefix(ext, "."))
}

func joinNames(products []domain.ProductQty) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

func intString(v int64) string {
	return strconv.FormatInt(v, 10)
}

func joinQuantities(products []domain.ProductQty) string {
	quantities := make([]string, 0, len(products))
	for _, p := range products {
		quantities = append(quantities, fmt.Sprintf("%d", p.Qty))
	}
	return strings.Join(quantities, ", ")
}

// wrap inserts a line break every width characters. Width counts runes,
// not bytes, so multi-byte product names never break mid-character.
func wrap(s string, width int) string {
	if width < 1 || utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	for len(runes) > width {
		b.WriteString(string(runes[:width]))
		b.WriteByte('\n')
		runes = runes[width:]
	}
	b.WriteString(string(runes))
	return b.String()
}

// writeAtomically renders into a temp file in the destination directory and
// renames it into place, so a failed export never leaves a truncated file.
func writeAtomically(destPath string, render func(tmpPath string) error) error {
	dir := filepath.Dir(destPath)
	tmp, err := os.CreateTemp(dir, ".export-*"+filepath.Ext(destPath))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := render(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %v", ErrExport, err)
	}
	return nil
}
