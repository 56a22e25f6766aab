package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"ecanteen/internal/authz"
	"ecanteen/internal/logger"
	"ecanteen/internal/metrics"
	"ecanteen/internal/models"
	"ecanteen/internal/pdf"
	"ecanteen/internal/repositories"
)

const (
	defaultOrderPageSize = 50
	maxOrderPageSize     = 200
)

// Viewer is the authenticated caller an order query runs for.
type Viewer struct {
	UserID int64
	Role   string
}

type OrderLineInput struct {
	FoodItemID int64 `json:"foodItem"`
	Quantity   int   `json:"quantity"`
}

type CreateOrderInput struct {
	Items               []OrderLineInput `json:"items"`
	CustomerName        string           `json:"customerName"`
	CustomerPhone       string           `json:"customerPhone"`
	DeliveryAddress     string           `json:"deliveryAddress"`
	SpecialInstructions string           `json:"specialInstructions"`
}

type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

type OrderPage struct {
	Orders     []*models.Order `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

type OrderService interface {
	Create(ctx context.Context, userID int64, in CreateOrderInput) (*models.Order, error)
	List(ctx context.Context, v Viewer, status string, page, limit int) (*OrderPage, error)
	Get(ctx context.Context, v Viewer, id int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error)
	Receipt(ctx context.Context, v Viewer, id int64) (*models.Order, []byte, error)
}

type orderService struct {
	orders     repositories.OrderRepository
	items      repositories.FoodItemRepository
	users      repositories.UserRepository
	restaurant RestaurantService
	numbers    *OrderNumberAllocator
	notifier   OrderNotifier
	receipts   pdf.Generator
	events     OrderPublisher
	log        *zap.Logger
}

// OrderPublisher receives order.created and order.status events for live screens.
type OrderPublisher interface {
	Publish(ctx context.Context, kind string, o *models.Order)
}

const (
	OrderEventCreated = "order.created"
	OrderEventStatus  = "order.status"
)

type OrderOption func(*orderService)

func WithOrderEvents(p OrderPublisher) OrderOption {
	return func(s *orderService) { s.events = p }
}

func NewOrderService(
	orders repositories.OrderRepository,
	items repositories.FoodItemRepository,
	users repositories.UserRepository,
	restaurant RestaurantService,
	notifier OrderNotifier,
	receipts pdf.Generator,
	opts ...OrderOption,
) OrderService {
	s := &orderService{
		orders:     orders,
		items:      items,
		users:      users,
		restaurant: restaurant,
		numbers:    NewOrderNumberAllocator(orders),
		notifier:   notifier,
		receipts:   receipts,
		log:        logger.WithModule("orders"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *orderService) publish(ctx context.Context, kind string, o *models.Order) {
	if s.events != nil {
		s.events.Publish(ctx, kind, o)
	}
}

func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// snapshot resolves each line against the catalog and copies name and price.
func (s *orderService) snapshot(ctx context.Context, lines []OrderLineInput) ([]models.OrderItem, float64, error) {
	if len(lines) == 0 {
		return nil, 0, invalid("items", "order must contain at least one item")
	}
	out := make([]models.OrderItem, 0, len(lines))
	var total float64
	for i, l := range lines {
		qty := l.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 1 {
			return nil, 0, invalid(fmt.Sprintf("items[%d].quantity", i), "quantity must be at least 1")
		}
		it, err := s.items.GetByID(ctx, l.FoodItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, 0, invalid(fmt.Sprintf("items[%d].foodItem", i), fmt.Sprintf("food item %d not found", l.FoodItemID))
			}
			return nil, 0, persistence(err)
		}
		if !it.IsAvailable {
			return nil, 0, invalid(fmt.Sprintf("items[%d].foodItem", i), fmt.Sprintf("food item %s is not available", it.Name))
		}
		out = append(out, models.OrderItem{FoodItemID: it.ID, Name: it.Name, Price: it.Price, Quantity: qty})
		total += it.Price * float64(qty)
	}
	return out, roundMoney(total), nil
}

func (s *orderService) Create(ctx context.Context, userID int64, in CreateOrderInput) (*models.Order, error) {
	items, total, err := s.snapshot(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrIdentityNotFound
		}
		return nil, persistence(err)
	}

	o := &models.Order{
		UserID:              userID,
		Items:               items,
		Total:               total,
		Status:              models.OrderPending,
		CustomerName:        firstNonEmpty(in.CustomerName, user.Fullname),
		CustomerPhone:       firstNonEmpty(in.CustomerPhone, user.Phone),
		DeliveryAddress:     firstNonEmpty(in.DeliveryAddress, user.Address),
		SpecialInstructions: strings.TrimSpace(in.SpecialInstructions),
		Payment:             models.Payment{Status: models.PaymentPending, Amount: total},
	}
	if o.CustomerName == "" {
		return nil, invalid("customerName", "customer name is required")
	}

	_, err = s.numbers.Allocate(ctx, func(number string) error {
		o.OrderNumber = number
		return s.orders.Create(ctx, o)
	})
	if err != nil {
		s.log.Error("create order failed",
			zap.Int64("user_id", userID), zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, persistence(err)
	}
	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		zap.Int64("order_id", o.ID), zap.String("order_number", o.OrderNumber),
		zap.Int64("user_id", userID), zap.Float64("total", o.Total))

	s.notify(ctx, o)
	s.publish(ctx, OrderEventCreated, o)
	return o, nil
}

// notify is best effort; the order stands either way.
func (s *orderService) notify(ctx context.Context, o *models.Order) {
	if _, off := s.notifier.(noopNotifier); off || s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewOrder(ctx, o); err != nil {
		s.log.Warn("kitchen notification failed", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return
	}
	if err := s.orders.MarkNotified(ctx, o.ID); err != nil {
		s.log.Warn("mark notified failed", zap.Int64("order_id", o.ID), zap.Error(err))
		return
	}
	o.Notified = true
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *orderService) List(ctx context.Context, v Viewer, status string, page, limit int) (*OrderPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}

	f := models.OrderFilter{Limit: limit, Offset: (page - 1) * limit}
	if !authz.IsStaff(v.Role) {
		uid := v.UserID
		f.UserID = &uid
	}
	if status != "" && status != "all" {
		st := models.OrderStatus(status)
		if !st.Valid() {
			return nil, invalid("status", "invalid status")
		}
		f.Status = &st
	}

	orders, total, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, persistence(err)
	}
	if orders == nil {
		orders = []*models.Order{}
	}
	return &OrderPage{
		Orders: orders,
		Pagination: Pagination{
			Current: page,
			Pages:   int((total + int64(limit) - 1) / int64(limit)),
			Total:   total,
		},
	}, nil
}

func (s *orderService) Get(ctx context.Context, v Viewer, id int64) (*models.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, persistence(err)
	}
	// other users' orders look missing rather than forbidden
	if !authz.IsStaff(v.Role) && o.UserID != v.UserID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	if status == "" {
		return nil, invalid("status", "status is required")
	}
	if !status.Valid() {
		return nil, invalid("status", "invalid status")
	}
	o, err := s.orders.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, persistence(err)
	}
	s.log.Info("order status changed", zap.Int64("order_id", id), zap.String("status", string(status)))
	s.publish(ctx, OrderEventStatus, o)
	return o, nil
}

func (s *orderService) Receipt(ctx context.Context, v Viewer, id int64) (*models.Order, []byte, error) {
	o, err := s.Get(ctx, v, id)
	if err != nil {
		return nil, nil, err
	}
	restaurantName := models.DefaultRestaurant().Name
	if r, err := s.restaurant.Get(ctx); err == nil {
		restaurantName = r.Name
	}

	data := pdf.ReceiptData{
		OrderNumber:     o.OrderNumber,
		RestaurantName:  restaurantName,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		DeliveryAddress: o.DeliveryAddress,
		Total:           o.Total,
		CreatedAt:       o.CreatedAt,
	}
	for _, it := range o.Items {
		data.Lines = append(data.Lines, pdf.ReceiptLine{Name: it.Name, Quantity: it.Quantity, Price: it.Price})
	}
	b, err := s.receipts.Receipt(data)
	if err != nil {
		s.log.Error("render receipt failed", zap.String("order_number", o.OrderNumber), zap.Error(err))
		return nil, nil, err
	}
	return o, b, nil
}
