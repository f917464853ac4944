package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bentapos/backend/internal/cache"
	"bentapos/backend/internal/domain"
	"bentapos/backend/internal/store"
)

type sessionContextKey struct{}

// WithSession attaches an explicit session to the context. Identity travels
// with the request instead of living on any global state.
func WithSession(ctx context.Context, session domain.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, session)
}

func SessionFromContext(ctx context.Context) (domain.Session, bool) {
	session, ok := ctx.Value(sessionContextKey{}).(domain.Session)
	return session, ok
}

type Service struct {
	repo       store.Repository
	salesCache cache.SalesCache
	cacheTTL   time.Duration
}

func New(repo store.Repository, salesCache cache.SalesCache, cacheTTL time.Duration) *Service {
	if salesCache == nil {
		salesCache = cache.NoopSalesCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Service{
		repo:       repo,
		salesCache: salesCache,
		cacheTTL:   cacheTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx, userID)
}

// ComputeLineTotal returns price x quantity as an exact decimal.
func ComputeLineTotal(price decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if quantity < 0 || price.IsNegative() {
		return decimal.Zero, store.ErrInvalidInput
	}
	return price.Mul(decimal.NewFromInt(int64(quantity))), nil
}

func ComputeOrderTotal(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.LineTotal)
	}
	return total
}

// ParsePayment parses the raw payment entry. Anything that is not a
// non-negative decimal is ErrInvalidPayment.
func ParsePayment(raw string) (decimal.Decimal, error) {
	payment, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, store.ErrInvalidPayment
	}
	if payment.IsNegative() {
		return decimal.Zero, store.ErrInvalidPayment
	}
	return payment, nil
}

// ComputeChange returns payment minus total. A payment below the total is
// ErrInsufficientPayment; the caller must block checkout on it.
func ComputeChange(total decimal.Decimal, payment decimal.Decimal) (decimal.Decimal, error) {
	if payment.LessThan(total) {
		return decimal.Zero, store.ErrInsufficientPayment
	}
	return payment.Sub(total), nil
}

// priceItems drops zero-quantity items, merges duplicate product lines,
// validates the rest against the live catalog, and prices each remaining
// line. Merging first means the stock check sees the cart's total demand
// per product, not each line in isolation.
func (s *Service) priceItems(ctx context.Context, userID int64, items []domain.OrderItem, checkStock bool) ([]domain.OrderLine, error) {
	chosen := make([]domain.OrderItem, 0, len(items))
	seen := make(map[int64]int, len(items))
	for _, item := range items {
		if item.Quantity < 0 {
			return nil, store.ErrInvalidInput
		}
		if item.Quantity == 0 {
			continue
		}
		if i, ok := seen[item.ProductID]; ok {
			chosen[i].Quantity += item.Quantity
			continue
		}
		seen[item.ProductID] = len(chosen)
		chosen = append(chosen, item)
	}
	if len(chosen) == 0 {
		return nil, store.ErrEmptyOrder
	}

	ids := make([]int64, 0, len(chosen))
	for _, item := range chosen {
		ids = append(ids, item.ProductID)
	}
	products, err := s.repo.GetProductsByIDs(ctx, userID, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.OrderLine, 0, len(chosen))
	for _, item := range chosen {
		product, exists := products[item.ProductID]
		if !exists {
			return nil, fmt.Errorf("product %d: %w", item.ProductID, store.ErrNotFound)
		}
		if checkStock && item.Quantity > product.Stock {
			return nil, fmt.Errorf("product %q: %w", product.Name, store.ErrStockExceeded)
		}
		lineTotal, err := ComputeLineTotal(product.Price, item.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, domain.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})
	}
	return lines, nil
}

// PreviewOrder computes line totals, the order total, and change due without
// writing anything. It backs the interactive order screen.
func (s *Service) PreviewOrder(ctx context.Context, userID int64, items []domain.OrderItem, payment string) (domain.OrderPreview, error) {
	lines, err := s.priceItems(ctx, userID, items, false)
	if err != nil {
		return domain.OrderPreview{}, err
	}

	total := ComputeOrderTotal(lines)

	change := decimal.Zero
	if strings.TrimSpace(payment) != "" {
		paid, err := ParsePayment(payment)
		if err != nil {
			return domain.OrderPreview{}, err
		}
		change, err = ComputeChange(total, paid)
		if err != nil {
			return domain.OrderPreview{}, err
		}
	}

	return domain.OrderPreview{Lines: lines, Total: total, Change: change}, nil
}

// CommitOrder validates the cart and payment, then persists the order header,
// its lines, and the stock decrements in one storage transaction.
func (s *Service) CommitOrder(ctx context.Context, userID int64, items []domain.OrderItem, payment string) (*domain.Order, error) {
	lines, err := s.priceItems(ctx, userID, items, true)
	if err != nil {
		return nil, err
	}

	total := ComputeOrderTotal(lines)
	paid, err := ParsePayment(payment)
	if err != nil {
		return nil, err
	}
	change, err := ComputeChange(total, paid)
	if err != nil {
		return nil, err
	}

	order := domain.Order{
		UserID:        userID,
		TotalPrice:    total,
		TotalMoney:    paid,
		ChangeAmount:  change,
		OrderDateTime: time.Now().UTC(),
		Lines:         lines,
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	// The aggregate for today is stale now; drop it so the next load
	// sees this order.
	key := salesCacheKey(userID, created.OrderDateTime)
	if err := s.salesCache.Delete(ctx, key); err != nil {
		log.Printf("[service] WARN: failed to invalidate sales cache %s: %v", key, err)
	}

	log.Printf("[service] order %d committed: user=%d lines=%d total=%s change=%s",
		created.ID, userID, len(created.Lines), created.TotalPrice.StringFixed(2), created.ChangeAmount.StringFixed(2))

	return created, nil
}
