package store

import (
	"context"
	"errors"
	"time"

	"bentapos/backend/internal/domain"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmptyOrder          = errors.New("empty order")
	ErrInvalidPayment      = errors.New("invalid payment")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrStockExceeded       = errors.New("stock exceeded")
)

type Repository interface {
	ListProducts(ctx context.Context, userID int64) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, userID int64, ids []int64) (map[int64]domain.Product, error)
	CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error)
	ListSalesLines(ctx context.Context, userID int64, day time.Time) ([]domain.SalesLine, error)
	CountOrdersByMonth(ctx context.Context, userID int64, year int) (map[int]int64, error)
	CountOrdersByDay(ctx context.Context, userID int64, year int, month time.Month) (map[int]int64, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error)
}
