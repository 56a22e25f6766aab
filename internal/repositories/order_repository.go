package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ecanteen/internal/models"
)

type OrderRepository interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, f models.OrderFilter) ([]*models.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	MarkNotified(ctx context.Context, id int64) error
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `
	id, order_number, user_id, items, total, status,
	customer_name, customer_phone, delivery_address, special_instructions, notified,
	payment_intent_id, payment_status, payment_amount, payment_method,
	created_at, updated_at`

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		o             models.Order
		items         []byte
		status        string
		paymentStatus string
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.UserID, &items, &o.Total, &status,
		&o.CustomerName, &o.CustomerPhone, &o.DeliveryAddress, &o.SpecialInstructions, &o.Notified,
		&o.Payment.IntentID, &paymentStatus, &o.Payment.Amount, &o.Payment.Method,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	o.Status = models.OrderStatus(status)
	o.Payment.Status = models.PaymentStatus(paymentStatus)
	return &o, nil
}

func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&n); err != nil {
		return 0, fmt.Errorf("order count: %w", err)
	}
	return n, nil
}

func (r *orderRepository) Create(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode order items: %w", err)
	}
	const q = `
		INSERT INTO orders (
			order_number, user_id, items, total, status,
			customer_name, customer_phone, delivery_address, special_instructions,
			payment_status, payment_amount
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at, updated_at
	`
	err = r.DB.QueryRowContext(ctx, q,
		o.OrderNumber,
		o.UserID,
		items,
		o.Total,
		string(o.Status),
		o.CustomerName,
		o.CustomerPhone,
		o.DeliveryAddress,
		o.SpecialInstructions,
		string(o.Payment.Status),
		o.Payment.Amount,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("order create: %w", uniqueViolation(err))
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	o, err := scanOrder(r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("order by id: %w", err)
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, f models.OrderFilter) ([]*models.Order, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	cond := ""
	if len(where) > 0 {
		cond = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("order list count: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, f.Offset)
	q := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, cond, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("order list: %w", err)
	}
	defer rows.Close()

	var res []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("order list scan: %w", err)
		}
		res = append(res, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("order list rows: %w", err)
	}
	return res, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	q := `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING ` + orderColumns
	o, err := scanOrder(r.DB.QueryRowContext(ctx, q, string(status), id))
	if err != nil {
		return nil, fmt.Errorf("order update status: %w", err)
	}
	return o, nil
}

func (r *orderRepository) MarkNotified(ctx context.Context, id int64) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE orders SET notified = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("order mark notified: %w", err)
	}
	return nil
}
