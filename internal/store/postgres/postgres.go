package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"bentapos/backend/internal/domain"
	"bentapos/backend/internal/store"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context, userID int64) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, user_id, name, price, purchase_cost, stock
		FROM products
		WHERE user_id = $1
		ORDER BY name, product_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 64)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Price, &p.PurchaseCost, &p.Stock); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, userID int64, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, user_id, name, price, purchase_cost, stock
		FROM products
		WHERE user_id = $1 AND product_id = ANY($2)
	`, userID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.UserID, &p.Name, &p.Price, &p.PurchaseCost, &p.Stock); err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateOrder persists the order header, its lines, and the matching stock
// decrements inside one serializable transaction. Any failure rolls back the
// whole write; stock is never decremented without a persisted order.
func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if len(order.Lines) == 0 {
		return nil, store.ErrEmptyOrder
	}
	if order.OrderDateTime.IsZero() {
		order.OrderDateTime = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(order.Lines))
	for _, line := range order.Lines {
		if line.Quantity < 1 {
			return nil, store.ErrInvalidInput
		}
		ids = append(ids, line.ProductID)
	}

	stockRows, err := tx.QueryContext(ctx, `
		SELECT product_id, stock
		FROM products
		WHERE user_id = $1 AND product_id = ANY($2)
		FOR UPDATE
	`, order.UserID, ids)
	if err != nil {
		return nil, err
	}
	stockMap := make(map[int64]int, len(ids))
	for stockRows.Next() {
		var id int64
		var stock int
		if err := stockRows.Scan(&id, &stock); err != nil {
			_ = stockRows.Close()
			return nil, err
		}
		stockMap[id] = stock
	}
	if err := stockRows.Err(); err != nil {
		_ = stockRows.Close()
		return nil, err
	}
	_ = stockRows.Close()

	// Consume from the snapshot as lines are checked so repeated product
	// ids cannot each pass against the same starting stock.
	for _, line := range order.Lines {
		stock, exists := stockMap[line.ProductID]
		if !exists {
			return nil, store.ErrNotFound
		}
		if stock < line.Quantity {
			return nil, store.ErrStockExceeded
		}
		stockMap[line.ProductID] = stock - line.Quantity
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (user_id, total_price, total_money, change_amount, order_date_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING order_id
	`, order.UserID, order.TotalPrice, order.TotalMoney, order.ChangeAmount, order.OrderDateTime).Scan(&order.ID)
	if err != nil {
		return nil, err
	}

	for _, line := range order.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_details (order_id, product_id, quantity, total_price)
			VALUES ($1, $2, $3, $4)
		`, order.ID, line.ProductID, line.Quantity, line.LineTotal)
		if err != nil {
			return nil, err
		}

		// stock >= $1 keeps the non-negative invariant even if a line
		// slipped past the snapshot check; zero rows means oversell.
		res, err := tx.ExecContext(ctx, `
			UPDATE products
			SET stock = stock - $1
			WHERE product_id = $2 AND user_id = $3 AND stock >= $1
		`, line.Quantity, line.ProductID, order.UserID)
		if err != nil {
			return nil, err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, store.ErrStockExceeded
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &order, nil
}

// ListSalesLines returns every order line for the user on the given calendar
// day, joined with its order timestamp and product name/cost. Rows come back
// in order creation order so grouping by first-seen order id is stable.
func (s *Store) ListSalesLines(ctx context.Context, userID int64, day time.Time) ([]domain.SalesLine, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	rows, err := s.db.QueryContext(ctx, `
		SELECT o.order_id, p.name, od.quantity, od.total_price, o.order_date_time, p.purchase_cost
		FROM order_details od
		JOIN orders o ON od.order_id = o.order_id
		JOIN products p ON od.product_id = p.product_id
		WHERE o.user_id = $1 AND o.order_date_time >= $2 AND o.order_date_time < $3
		ORDER BY o.order_date_time, o.order_id, od.order_detail_id
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]domain.SalesLine, 0, 64)
	for rows.Next() {
		var line domain.SalesLine
		if err := rows.Scan(&line.OrderID, &line.ProductName, &line.Quantity, &line.LineTotal, &line.OrderedAt, &line.PurchaseCost); err != nil {
			return nil, err
		}
		line.OrderedAt = line.OrderedAt.UTC()
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

func (s *Store) CountOrdersByMonth(ctx context.Context, userID int64, year int) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(MONTH FROM order_date_time)::int, COUNT(order_id)
		FROM orders
		WHERE user_id = $1 AND EXTRACT(YEAR FROM order_date_time) = $2
		GROUP BY 1
		ORDER BY 1
	`, userID, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64, 12)
	for rows.Next() {
		var month int
		var total int64
		if err := rows.Scan(&month, &total); err != nil {
			return nil, err
		}
		counts[month] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (s *Store) CountOrdersByDay(ctx context.Context, userID int64, year int, month time.Month) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT EXTRACT(DAY FROM order_date_time)::int, COUNT(order_id)
		FROM orders
		WHERE user_id = $1
		  AND EXTRACT(YEAR FROM order_date_time) = $2
		  AND EXTRACT(MONTH FROM order_date_time) = $3
		GROUP BY 1
		ORDER BY 1
	`, userID, year, int(month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int]int64, 31)
	for rows.Next() {
		var dayOfMonth int
		var total int64
		if err := rows.Scan(&dayOfMonth, &total); err != nil {
			return nil, err
		}
		counts[dayOfMonth] = total
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.UserAccount, error) {
	var user domain.UserAccount
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, password, active, created_at
		FROM users
		WHERE username = $1
	`, username).Scan(&user.ID, &user.Username, &user.Password, &user.Active, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return &user, nil
}
