package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

const (
	opTimeout = 5 * time.Second

	selectOrderColumns = `SELECT id, base, size, milk, sugar, iced, price_minor, created_at FROM coffee_orders`
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

// Create сохраняет заказ и его сиропы в одной транзакции; позиция сиропа хранит порядок добавления.
func (r *orderRepository) Create(ctx context.Context, order domain.Order) (err error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rec := order.Snapshot()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO coffee_orders (id, base, size, milk, sugar, iced, price_minor, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, rec.Base, rec.Size, rec.Milk, rec.Sugar, rec.Iced, rec.PriceMinor, rec.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for pos, syrup := range rec.Syrups {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO coffee_order_syrups (order_id, position, name) VALUES ($1,$2,$3)
		`, rec.ID, pos, syrup); err != nil {
			return fmt.Errorf("insert order syrup: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rec, err := scanOrder(r.db.QueryRowContext(ctx, selectOrderColumns+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if rec.Syrups, err = r.loadSyrups(ctx, rec.ID); err != nil {
		return domain.Order{}, err
	}
	return domain.RestoreOrder(rec), nil
}

func (r *orderRepository) List(ctx context.Context, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	query := selectOrderColumns + ` ORDER BY created_at DESC, id DESC`
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	records := make([]domain.OrderRecord, 0)
	for rows.Next() {
		rec, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	orders := make([]domain.Order, 0, len(records))
	for _, rec := range records {
		if rec.Syrups, err = r.loadSyrups(ctx, rec.ID); err != nil {
			return nil, err
		}
		orders = append(orders, domain.RestoreOrder(rec))
	}
	return orders, nil
}

func (r *orderRepository) loadSyrups(ctx context.Context, orderID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT name FROM coffee_order_syrups WHERE order_id = $1 ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order syrups: %w", err)
	}
	defer rows.Close()

	syrups := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan order syrup: %w", err)
		}
		syrups = append(syrups, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order syrups: %w", err)
	}
	return syrups, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.OrderRecord, error) {
	var rec domain.OrderRecord
	err := row.Scan(&rec.ID, &rec.Base, &rec.Size, &rec.Milk, &rec.Sugar, &rec.Iced, &rec.PriceMinor, &rec.CreatedAt)
	return rec, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
