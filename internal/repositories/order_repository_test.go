package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"ecanteen/internal/models"
)

var orderCols = []string{
	"id", "order_number", "user_id", "items", "total", "status",
	"customer_name", "customer_phone", "delivery_address", "special_instructions", "notified",
	"payment_intent_id", "payment_status", "payment_amount", "payment_method",
	"created_at", "updated_at",
}

func TestOrderCount(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(41), n)
}

func TestOrderCreateEncodesItems(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	now := time.Now()
	o := &models.Order{
		OrderNumber:  "ORD000042",
		UserID:       5,
		Items:        []models.OrderItem{{FoodItemID: 1, Name: "Dosa", Price: 80, Quantity: 2}},
		Total:        160,
		Status:       models.OrderPending,
		CustomerName: "Ann",
		Payment:      models.Payment{Status: models.PaymentPending, Amount: 160},
	}

	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs("ORD000042", int64(5), []byte(`[{"foodItem":1,"name":"Dosa","price":80,"quantity":2}]`),
			160.0, "pending", "Ann", "", "", "", "pending", 160.0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(9, now, now))

	require.NoError(t, repo.Create(context.Background(), o))
	require.Equal(t, int64(9), o.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderListFiltersByUserAndStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	uid := int64(5)
	st := models.OrderReady
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM orders WHERE user_id = \$1 AND status = \$2`).
		WithArgs(uid, "ready").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`FROM orders WHERE user_id = \$1 AND status = \$2 ORDER BY created_at DESC LIMIT \$3 OFFSET \$4`).
		WithArgs(uid, "ready", 10, 20).
		WillReturnRows(sqlmock.NewRows(orderCols).AddRow(
			2, "ORD000002", 5, []byte(`[]`), 0.0, "ready",
			"Ann", "", "", "", true,
			"", "completed", 0.0, "",
			now, now,
		))

	orders, total, err := repo.List(context.Background(), models.OrderFilter{UserID: &uid, Status: &st, Limit: 10, Offset: 20})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	require.Equal(t, models.OrderReady, orders[0].Status)
	require.Equal(t, models.PaymentCompleted, orders[0].Payment.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs(int64(77)).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 77)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOrderCreateMapsDuplicateNumber(t *testing.T) {
	db, mock := newMock(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(`INSERT INTO orders`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "orders_order_number_key"})

	err := repo.Create(context.Background(), &models.Order{OrderNumber: "ORD000001"})
	require.ErrorIs(t, err, ErrDuplicate)
}
