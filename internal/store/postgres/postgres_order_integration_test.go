package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"bentapos/backend/internal/domain"
	"bentapos/backend/internal/store"
)

func TestCreateOrderCommitsLinesAndStock(t *testing.T) {
	databaseURL := os.Getenv("BENTAPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set BENTAPOS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	username := fmt.Sprintf("it-user-%d", stamp)

	var userID int64
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password, active, created_at)
		VALUES ($1, 'x', true, now())
		RETURNING user_id
	`, username).Scan(&userID); err != nil {
		t.Fatalf("insert user: %v", err)
	}

	var productID int64
	if err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (user_id, name, price, purchase_cost, stock)
		VALUES ($1, $2, 10.00, 8.00, 5)
		RETURNING product_id
	`, userID, fmt.Sprintf("IT Product %d", stamp)).Scan(&productID); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM order_details WHERE order_id IN (SELECT order_id FROM orders WHERE user_id = $1)`, userID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM orders WHERE user_id = $1`, userID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM products WHERE user_id = $1`, userID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	})

	at := time.Now().UTC()
	created, err := s.CreateOrder(ctx, domain.Order{
		UserID:        userID,
		TotalPrice:    decimal.RequireFromString("20.00"),
		TotalMoney:    decimal.RequireFromString("25.00"),
		ChangeAmount:  decimal.RequireFromString("5.00"),
		OrderDateTime: at,
		Lines: []domain.OrderLine{
			{ProductID: productID, Quantity: 2, LineTotal: decimal.RequireFromString("20.00")},
		},
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if created.ID == 0 {
		t.Fatalf("expected assigned order id")
	}

	products, err := s.GetProductsByIDs(ctx, userID, []int64{productID})
	if err != nil {
		t.Fatalf("fetch product: %v", err)
	}
	if products[productID].Stock != 3 {
		t.Fatalf("expected stock 3 after commit, got %d", products[productID].Stock)
	}

	lines, err := s.ListSalesLines(ctx, userID, at)
	if err != nil {
		t.Fatalf("list sales lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 sales line, got %d", len(lines))
	}
	if lines[0].OrderID != created.ID {
		t.Fatalf("expected line joined to order %d, got %d", created.ID, lines[0].OrderID)
	}

	// Over-ordering is rejected and rolls back without touching anything.
	_, err = s.CreateOrder(ctx, domain.Order{
		UserID:        userID,
		TotalPrice:    decimal.RequireFromString("100.00"),
		TotalMoney:    decimal.RequireFromString("100.00"),
		ChangeAmount:  decimal.Zero,
		OrderDateTime: at,
		Lines: []domain.OrderLine{
			{ProductID: productID, Quantity: 99, LineTotal: decimal.RequireFromString("990.00")},
		},
	})
	if !errors.Is(err, store.ErrStockExceeded) {
		t.Fatalf("expected ErrStockExceeded, got %v", err)
	}

	products, _ = s.GetProductsByIDs(ctx, userID, []int64{productID})
	if products[productID].Stock != 3 {
		t.Fatalf("rejected order must not change stock, got %d", products[productID].Stock)
	}
}
