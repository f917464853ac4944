package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bentapos/backend/internal/domain"
)

func salesCacheKey(userID int64, day time.Time) string {
	return fmt.Sprintf("sales:%d:%s", userID, day.UTC().Format("2006-01-02"))
}

// LoadSalesForDate fetches all order line items for the user on the given
// calendar day and folds them into a per-order aggregate. An empty day is a
// valid, empty aggregate. Recently loaded days are served from the cache.
func (s *Service) LoadSalesForDate(ctx context.Context, userID int64, day time.Time) (domain.SalesAggregate, error) {
	key := salesCacheKey(userID, day)
	cached, ok, err := s.salesCache.Get(ctx, key)
	if err != nil {
		log.Printf("[service] WARN: sales cache get %s: %v", key, err)
	} else if ok {
		return *cached, nil
	}

	lines, err := s.repo.ListSalesLines(ctx, userID, day)
	if err != nil {
		return domain.SalesAggregate{}, err
	}

	agg := AggregateSalesLines(day, lines)
	if err := s.salesCache.Set(ctx, key, &agg, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: sales cache set %s: %v", key, err)
	}
	return agg, nil
}

// AggregateSalesLines groups raw line rows by order id, preserving the order
// in which each order id is first seen and the line order within an order.
// Day totals: purchase = sum(qty x purchase cost), sales = sum(line totals),
// income = sales - purchase.
func AggregateSalesLines(day time.Time, lines []domain.SalesLine) domain.SalesAggregate {
	agg := domain.SalesAggregate{
		Date:          day.UTC().Format("2006-01-02"),
		TotalPurchase: decimal.Zero,
		TotalSales:    decimal.Zero,
		TotalIncome:   decimal.Zero,
	}

	index := make(map[int64]int, 16)
	for _, line := range lines {
		agg.TotalSales = agg.TotalSales.Add(line.LineTotal)
		agg.TotalPurchase = agg.TotalPurchase.Add(line.PurchaseCost.Mul(decimal.NewFromInt(int64(line.Quantity))))

		i, seen := index[line.OrderID]
		if !seen {
			agg.Orders = append(agg.Orders, domain.OrderSales{
				OrderID:    line.OrderID,
				TotalSales: decimal.Zero,
				SalesDate:  line.OrderedAt.UTC().Format("2006-01-02"),
			})
			i = len(agg.Orders) - 1
			index[line.OrderID] = i
		}
		agg.Orders[i].Products = append(agg.Orders[i].Products, domain.ProductQty{
			Name: line.ProductName,
			Qty:  line.Quantity,
		})
		agg.Orders[i].TotalSales = agg.Orders[i].TotalSales.Add(line.LineTotal)
	}

	agg.TotalIncome = agg.TotalSales.Sub(agg.TotalPurchase)
	return agg
}

// FilterByProductName keeps the orders whose product names contain the
// substring, case-insensitively, in their original relative order. It works
// on the already-loaded aggregate and never re-queries storage. Day totals
// stay as loaded; the filter narrows the table, not the day.
func FilterByProductName(agg domain.SalesAggregate, substring string) domain.SalesAggregate {
	needle := strings.ToLower(strings.TrimSpace(substring))
	if needle == "" {
		return agg
	}

	filtered := agg
	filtered.Orders = make([]domain.OrderSales, 0, len(agg.Orders))
	for _, order := range agg.Orders {
		for _, product := range order.Products {
			if strings.Contains(strings.ToLower(product.Name), needle) {
				filtered.Orders = append(filtered.Orders, order)
				break
			}
		}
	}
	return filtered
}

// MonthlyOrderCounts returns a zero-filled 12-slot count of the user's
// orders per month of the given year.
func (s *Service) MonthlyOrderCounts(ctx context.Context, userID int64, year int) (domain.MonthlyOrderCounts, error) {
	byMonth, err := s.repo.CountOrdersByMonth(ctx, userID, year)
	if err != nil {
		return domain.MonthlyOrderCounts{}, err
	}

	counts := make([]int64, 12)
	for month, total := range byMonth {
		if month >= 1 && month <= 12 {
			counts[month-1] = total
		}
	}
	return domain.MonthlyOrderCounts{Year: year, Counts: counts}, nil
}

// DailyOrderCounts returns a zero-filled per-day count of the user's orders
// for the given calendar month.
func (s *Service) DailyOrderCounts(ctx context.Context, userID int64, year int, month time.Month) (domain.DailyOrderCounts, error) {
	byDay, err := s.repo.CountOrdersByDay(ctx, userID, year, month)
	if err != nil {
		return domain.DailyOrderCounts{}, err
	}

	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	counts := make([]int64, daysInMonth)
	for dayOfMonth, total := range byDay {
		if dayOfMonth >= 1 && dayOfMonth <= daysInMonth {
			counts[dayOfMonth-1] = total
		}
	}
	return domain.DailyOrderCounts{Year: year, Month: int(month), Counts: counts}, nil
}
