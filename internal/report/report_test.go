package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bentapos/backend/internal/domain"
)

func testAggregate() domain.SalesAggregate {
	return domain.SalesAggregate{
		Date: "2026-08-20",
		Orders: []domain.OrderSales{
			{
				OrderID: 7,
				Products: []domain.ProductQty{
					{Name: "Rice 5kg", Qty: 2},
					{Name: "Eggs Dozen", Qty: 1},
				},
				TotalSales: decimal.RequireFromString("25.50"),
				SalesDate:  "2026-08-20",
			},
			{
				OrderID: 8,
				Products: []domain.ProductQty{
					{Name: "Cooking Oil 1L", Qty: 1},
				},
				TotalSales: decimal.RequireFromString("145.00"),
				SalesDate:  "2026-08-20",
			},
		},
		TotalPurchase: decimal.RequireFromString("138.00"),
		TotalSales:    decimal.RequireFromString("170.50"),
		TotalIncome:   decimal.RequireFromString("32.50"),
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2026, 8, 20, 15, 4, 5, 0, time.UTC)

	if got := FileName(day, "xlsx"); got != "sales_history_2026-08-20.xlsx" {
		t.Fatalf("unexpected file name %q", got)
	}
	if got := FileName(day, ".pdf"); got != "sales_history_2026-08-20.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestWrap(t *testing.T) {
	if got := wrap("short", 30); got != "short" {
		t.Fatalf("short strings must pass through, got %q", got)
	}

	long := strings.Repeat("a", 70)
	got := wrap(long, 30)
	parts := strings.Split(got, "\n")
	if len(parts) != 3 {
		t.Fatalf("expected 3 segments, got %d (%q)", len(parts), got)
	}
	if len(parts[0]) != 30 || len(parts[1]) != 30 || len(parts[2]) != 10 {
		t.Fatalf("unexpected segment lengths %d/%d/%d", len(parts[0]), len(parts[1]), len(parts[2]))
	}
	if strings.ReplaceAll(got, "\n", "") != long {
		t.Fatalf("wrap must not drop characters")
	}
}

func TestWrap_MultiByteNames(t *testing.T) {
	// 35 three-byte runes: a byte-indexed wrap would break inside a rune.
	long := strings.Repeat("茶", 35)

	got := wrap(long, 30)
	if !utf8.ValidString(got) {
		t.Fatalf("wrap produced invalid UTF-8: %q", got)
	}

	parts := strings.Split(got, "\n")
	if len(parts) != 2 {
		t.Fatalf("expected 2 segments, got %d (%q)", len(parts), got)
	}
	if utf8.RuneCountInString(parts[0]) != 30 || utf8.RuneCountInString(parts[1]) != 5 {
		t.Fatalf("unexpected segment rune counts %d/%d",
			utf8.RuneCountInString(parts[0]), utf8.RuneCountInString(parts[1]))
	}
	if strings.ReplaceAll(got, "\n", "") != long {
		t.Fatalf("wrap must not drop characters")
	}

	// Under the limit in runes even though over it in bytes.
	short := strings.Repeat("茶", 20)
	if wrap(short, 30) != short {
		t.Fatalf("strings within the rune limit must pass through")
	}
}

func TestExportExcel(t *testing.T) {
	dest := filepath.Join(t.TempDir(), FileName(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), "xlsx"))

	if err := ExportExcel(testAggregate(), dest); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	cell := func(ref string) string {
		t.Helper()
		value, err := f.GetCellValue("Sheet1", ref)
		if err != nil {
			t.Fatalf("read %s: %v", ref, err)
		}
		return value
	}

	if cell("A1") != "Order ID" || cell("E1") != "Sales Date" {
		t.Fatalf("unexpected header row: %q / %q", cell("A1"), cell("E1"))
	}
	if cell("A2") != "7" {
		t.Fatalf("expected order id 7 in A2, got %q", cell("A2"))
	}
	if got := cell("B2"); !strings.Contains(got, "Rice 5kg") || !strings.Contains(got, "Eggs Dozen") {
		t.Fatalf("expected joined product names in B2, got %q", got)
	}
	if cell("C2") != "2, 1" {
		t.Fatalf("expected joined quantities in C2, got %q", cell("C2"))
	}
	if cell("D2") != "25.50" {
		t.Fatalf("expected order total in D2, got %q", cell("D2"))
	}
	if cell("A3") != "8" {
		t.Fatalf("expected order id 8 in A3, got %q", cell("A3"))
	}

	// Summary block sits two rows below the table.
	if cell("A5") != "Total Purchase" || cell("B5") != "138.00" {
		t.Fatalf("unexpected summary row: %q / %q", cell("A5"), cell("B5"))
	}
	if cell("A7") != "Total Income" || cell("B7") != "32.50" {
		t.Fatalf("unexpected income row: %q / %q", cell("A7"), cell("B7"))
	}
}

func TestExportExcel_WrapsLongProductLists(t *testing.T) {
	agg := domain.SalesAggregate{
		Date: "2026-08-20",
		Orders: []domain.OrderSales{
			{
				OrderID: 9,
				Products: []domain.ProductQty{
					{Name: "Extraordinarily Long Product Name One", Qty: 1},
					{Name: "Extraordinarily Long Product Name Two", Qty: 2},
				},
				TotalSales: decimal.RequireFromString("10.00"),
				SalesDate:  "2026-08-20",
			},
		},
		TotalPurchase: decimal.Zero,
		TotalSales:    decimal.RequireFromString("10.00"),
		TotalIncome:   decimal.RequireFromString("10.00"),
	}
	dest := filepath.Join(t.TempDir(), "wrap.xlsx")

	if err := ExportExcel(agg, dest); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(dest)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	value, err := f.GetCellValue("Sheet1", "B2")
	if err != nil {
		t.Fatalf("read B2: %v", err)
	}
	if !strings.Contains(value, "\n") {
		t.Fatalf("expected wrapped product names, got %q", value)
	}
}

func TestExportPDF(t *testing.T) {
	dest := filepath.Join(t.TempDir(), FileName(time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), "pdf"))

	if err := ExportPDF(testAggregate(), dest); err != nil {
		t.Fatalf("export: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read exported pdf: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("exported pdf is empty")
	}
	if !strings.HasPrefix(string(data[:4]), "%PDF") {
		t.Fatalf("missing PDF magic, got %q", data[:4])
	}
}

func TestExport_BadDestinationWrapsErrExport(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing-subdir", "out.xlsx")

	err := ExportExcel(testAggregate(), dest)
	if !errors.Is(err, ErrExport) {
		t.Fatalf("expected ErrExport, got %v", err)
	}

	if err := ExportPDF(testAggregate(), dest); !errors.Is(err, ErrExport) {
		t.Fatalf("expected ErrExport, got %v", err)
	}
}

func TestExport_FailureLeavesNoPartialFile(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "missing-subdir", "out.pdf")

	_ = ExportPDF(testAggregate(), dest)

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".export-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}
