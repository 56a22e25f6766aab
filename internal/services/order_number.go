package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ecanteen/internal/logger"
	"ecanteen/internal/metrics"
	"ecanteen/internal/repositories"
)

const allocateAttempts = 3

type orderCounter interface {
	Count(ctx context.Context) (int64, error)
}

// OrderNumberAllocator hands out ORD000001-style order numbers. Count and
// insert run under one lock per process; the unique index on
// orders.order_number rejects collisions between processes.
type OrderNumberAllocator struct {
	mu      sync.Mutex
	counter orderCounter
	now     func() time.Time
	log     *zap.Logger
}

func NewOrderNumberAllocator(counter orderCounter) *OrderNumberAllocator {
	return &OrderNumberAllocator{
		counter: counter,
		now:     time.Now,
		log:     logger.WithModule("orders"),
	}
}

func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD%06d", seq)
}

// Allocate picks the next number and passes it to insert while holding the
// lock. A failed count falls back to ORD plus the epoch milliseconds. When
// insert reports the number as taken by another process the count is redone;
// if it has not moved past the taken number the clock is used instead.
func (a *OrderNumberAllocator) Allocate(ctx context.Context, insert func(number string) error) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var taken string
	for attempt := 1; ; attempt++ {
		number := a.next(ctx)
		if number == taken {
			number = a.fallback(errors.New("order count did not advance past a taken number"))
		}
		err := insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) || attempt == allocateAttempts {
			return "", err
		}
		a.log.Warn("order number taken, retrying",
			zap.String("order_number", number), zap.Int("attempt", attempt))
		taken = number
	}
}

func (a *OrderNumberAllocator) next(ctx context.Context) string {
	n, err := a.counter.Count(ctx)
	if err != nil {
		return a.fallback(err)
	}
	return FormatOrderNumber(n + 1)
}

func (a *OrderNumberAllocator) fallback(cause error) string {
	number := fmt.Sprintf("ORD%d", a.now().UnixMilli())
	a.log.Warn("using timestamp order number",
		zap.String("order_number", number), zap.Error(cause))
	metrics.OrderNumberFallbacks.Inc()
	return number
}
