package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is one sellable catalog entry owned by a user account.
// Price and PurchaseCost are exact decimals; all money in this system is.
type Product struct {
	ID           int64           `json:"product_id"`
	UserID       int64           `json:"user_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
	Stock        int             `json:"stock"`
}

// OrderItem is a user-chosen product/quantity pairing before checkout.
type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// OrderLine is one priced line of a committed or previewed order.
type OrderLine struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Order is one checkout transaction. Immutable after commit.
type Order struct {
	ID            int64           `json:"order_id"`
	UserID        int64           `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	TotalMoney    decimal.Decimal `json:"total_money"`
	ChangeAmount  decimal.Decimal `json:"change_amount"`
	OrderDateTime time.Time       `json:"order_date_time"`
	Lines         []OrderLine     `json:"lines"`
}

// OrderPreview carries computed totals for a cart before the user confirms.
type OrderPreview struct {
	Lines  []OrderLine     `json:"lines"`
	Total  decimal.Decimal `json:"total"`
	Change decimal.Decimal `json:"change"`
}

type OrderRequest struct {
	Items   []OrderItem `json:"items"`
	Payment string      `json:"payment"`
}

// SalesLine is one row of the per-date line-item query: an order detail
// joined with its order timestamp and product name/cost.
type SalesLine struct {
	OrderID      int64           `json:"order_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	OrderedAt    time.Time       `json:"ordered_at"`
	PurchaseCost decimal.Decimal `json:"purchase_cost"`
}

type ProductQty struct {
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// OrderSales is the grouped view of one order within a daily aggregate.
type OrderSales struct {
	OrderID    int64           `json:"order_id"`
	Products   []ProductQty    `json:"products"`
	TotalSales decimal.Decimal `json:"total_sales"`
	SalesDate  string          `json:"sales_date"`
}

// SalesAggregate is the derived per-date view of all order line items.
// Orders keeps first-seen order, matching the scan order of the query.
type SalesAggregate struct {
	Date          string          `json:"date"`
	Orders        []OrderSales    `json:"orders"`
	TotalPurchase decimal.Decimal `json:"total_purchase"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalIncome   decimal.Decimal `json:"total_income"`
}

// Empty reports whether the aggregate holds no orders. An empty aggregate
// is a valid result, not an error.
func (a SalesAggregate) Empty() bool {
	return len(a.Orders) == 0
}

// Session is the explicit identity object carried on the request context.
// It replaces any notion of a global "logged in" flag.
type Session struct {
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	UserID      int64  `json:"user_id"`
	ExpiresAt   string `json:"expires_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	ID        int64
	Username  string
	Password  string
	Active    bool
	CreatedAt time.Time
}

// MonthlyOrderCounts holds one year of per-month order counts, zero-filled.
type MonthlyOrderCounts struct {
	Year   int     `json:"year"`
	Counts []int64 `json:"counts"`
}

// DailyOrderCounts holds one calendar month of per-day order counts,
// zero-filled to the month's length.
type DailyOrderCounts struct {
	Year   int     `json:"year"`
	Month  int     `json:"month"`
	Counts []int64 `json:"counts"`
}
