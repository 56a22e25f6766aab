package models

import "time"

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderAccepted, OrderPreparing, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// OrderItem is a snapshot of a catalog entry taken when the order is placed.
type OrderItem struct {
	FoodItemID int64   `json:"foodItem"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Quantity   int     `json:"quantity"`
}

type Payment struct {
	IntentID string        `json:"stripe_payment_intent_id,omitempty"`
	Status   PaymentStatus `json:"status"`
	Amount   float64       `json:"amount"`
	Method   string        `json:"payment_method,omitempty"`
}

type Order struct {
	ID                  int64       `json:"id"`
	OrderNumber         string      `json:"orderNumber"`
	UserID              int64       `json:"user"`
	Items               []OrderItem `json:"items"`
	Total               float64     `json:"total"`
	Status              OrderStatus `json:"status"`
	CustomerName        string      `json:"customerName"`
	CustomerPhone       string      `json:"customerPhone"`
	DeliveryAddress     string      `json:"deliveryAddress"`
	SpecialInstructions string      `json:"specialInstructions"`
	Notified            bool        `json:"notified"`
	Payment             Payment     `json:"payment"`
	CreatedAt           time.Time   `json:"createdAt"`
	UpdatedAt           time.Time   `json:"updatedAt"`
}

type OrderFilter struct {
	UserID *int64
	Status *OrderStatus
	Limit  int
	Offset int
}
