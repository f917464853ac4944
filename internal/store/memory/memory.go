package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bentapos/backend/internal/domain"
	"bentapos/backend/internal/store"
)

// Store is an in-memory Repository used by tests and by the server when no
// DATABASE_URL is configured.
type Store struct {
	mu            sync.RWMutex
	products      map[int64]domain.Product
	orders        []*domain.Order
	users         map[string]domain.UserAccount
	nextProductID int64
	nextOrderID   int64
}

func New() *Store {
	return &Store{
		products:      make(map[int64]domain.Product),
		users:         make(map[string]domain.UserAccount),
		nextProductID: 1,
		nextOrderID:   1,
	}
}

// seedUser builds the initial demo account. The password comes from
// SEED_USER_PASSWORD; a hardcoded dev default is used otherwise, with a
// warning. Postgres deployments never touch this path.
func seedUser() domain.UserAccount {
	password := os.Getenv("SEED_USER_PASSWORD")
	if password == "" {
		password = "owner123"
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_USER_PASSWORD to override.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] failed to hash seed password: %v", err)
	}

	return domain.UserAccount{
		ID:        1,
		Username:  "owner",
		Password:  string(hash),
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
}

func NewSeeded() *Store {
	s := New()

	user := seedUser()
	s.users[user.Username] = user

	for _, p := range []domain.Product{
		{UserID: user.ID, Name: "Canned Sardines", Price: dec("28.50"), PurchaseCost: dec("21.00"), Stock: 120},
		{UserID: user.ID, Name: "Instant Noodles", Price: dec("14.75"), PurchaseCost: dec("10.25"), Stock: 200},
		{UserID: user.ID, Name: "Brown Sugar 1kg", Price: dec("62.00"), PurchaseCost: dec("48.00"), Stock: 45},
		{UserID: user.ID, Name: "Cooking Oil 1L", Price: dec("145.00"), PurchaseCost: dec("118.00"), Stock: 30},
		{UserID: user.ID, Name: "Powdered Milk", Price: dec("89.25"), PurchaseCost: dec("70.00"), Stock: 60},
		{UserID: user.ID, Name: "Laundry Soap Bar", Price: dec("19.00"), PurchaseCost: dec("13.50"), Stock: 150},
	} {
		s.AddProduct(p)
	}

	return s
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// AddProduct assigns an id and stores the product. Test helper; product
// management itself lives outside this system.
func (s *Store) AddProduct(p domain.Product) domain.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.nextProductID
	s.nextProductID++
	s.products[p.ID] = p
	return p
}

// PutUser stores or replaces a user account. Test helper.
func (s *Store) PutUser(user domain.UserAccount) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.Username] = user
}

func (s *Store) ListProducts(_ context.Context, userID int64) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if p.UserID == userID {
			products = append(products, p)
		}
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Name != products[j].Name {
			return products[i].Name < products[j].Name
		}
		return products[i].ID < products[j].ID
	})
	return products, nil
}

func (s *Store) GetProductsByIDs(_ context.Context, userID int64, ids []int64) (map[int64]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[int64]domain.Product, len(ids))
	for _, id := range ids {
		p, ok := s.products[id]
		if !ok || p.UserID != userID {
			continue
		}
		result[id] = p
	}
	return result, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	if len(order.Lines) == 0 {
		return nil, store.ErrEmptyOrder
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate everything before touching stock so a failure leaves the
	// store untouched, matching the transactional postgres behavior.
	// Remaining stock is tracked per product so repeated product ids are
	// checked against their combined demand.
	remaining := make(map[int64]int, len(order.Lines))
	for _, line := range order.Lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
		p, ok := s.products[line.ProductID]
		if !ok || p.UserID != order.UserID {
			return nil, store.ErrNotFound
		}
		left, tracked := remaining[line.ProductID]
		if !tracked {
			left = p.Stock
		}
		if left < line.Quantity {
			return nil, store.ErrStockExceeded
		}
		remaining[line.ProductID] = left - line.Quantity
	}

	for _, line := range order.Lines {
		p := s.products[line.ProductID]
		p.Stock -= line.Quantity
		s.products[line.ProductID] = p
	}

	order.ID = s.nextOrderID
	s.nextOrderID++
	if order.OrderDateTime.IsZero() {
		order.OrderDateTime = time.Now().UTC()
	}

	stored := order
	stored.Lines = append([]domain.OrderLine(nil), order.Lines...)
	s.orders = append(s.orders, &stored)

	result := stored
	result.Lines = append([]domain.OrderLine(nil), stored.Lines...)
	return &result, nil
}

func (s *Store) ListSalesLines(_ context.Context, userID int64, day time.Time) ([]domain.SalesLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	y, m, d := day.UTC().Date()
	lines := make([]domain.SalesLine, 0, 32)
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		oy, om, od := order.OrderDateTime.UTC().Date()
		if oy != y || om != m || od != d {
			continue
		}
		for _, line := range order.Lines {
			p := s.products[line.ProductID]
			lines = append(lines, domain.SalesLine{
				OrderID:      order.ID,
				ProductName:  p.Name,
				Quantity:     line.Quantity,
				LineTotal:    line.LineTotal,
				OrderedAt:    order.OrderDateTime,
				PurchaseCost: p.PurchaseCost,
			})
		}
	}
	return lines, nil
}

func (s *Store) CountOrdersByMonth(_ context.Context, userID int64, year int) (map[int]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int64, 12)
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		at := order.OrderDateTime.UTC()
		if at.Year() != year {
			continue
		}
		counts[int(at.Month())]++
	}
	return counts, nil
}

func (s *Store) CountOrdersByDay(_ context.Context, userID int64, year int, month time.Month) (map[int]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[int]int64, 31)
	for _, order := range s.orders {
		if order.UserID != userID {
			continue
		}
		at := order.OrderDateTime.UTC()
		if at.Year() != year || at.Month() != month {
			continue
		}
		counts[at.Day()]++
	}
	return counts, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	result := user
	return &result, nil
}
