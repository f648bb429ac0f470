// Package services wires the domain model to storage and messaging.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"mataam/internal/core"
)

// OrderStore is the storage surface the order flow needs.
type OrderStore interface {
	CreateOrder(ctx context.Context, o core.Order) (core.Order, error)
	ListOrders(ctx context.Context, from, to time.Time, limit int) ([]core.Order, error)
	GetOrder(ctx context.Context, id string) (core.Order, error)
}

// OrderPublisher announces new orders on the message queue.
type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, id, orderNumber string) error
}

type OrderService struct {
	store     OrderStore
	publisher OrderPublisher
	prefix    string
}

// NewOrderService builds the order flow. The publisher may be nil when
// the queue is not configured; orders then rely on the worker's
// database sweep for export.
func NewOrderService(store OrderStore, publisher OrderPublisher, numberPrefix string) *OrderService {
	if numberPrefix == "" {
		numberPrefix = "ORD"
	}
	return &OrderService{store: store, publisher: publisher, prefix: numberPrefix}
}

// GenerateOrderNumber builds an order number from the last eight digits
// of the millisecond clock plus three random digits. Collisions within
// the same millisecond are caught by the unique constraint on insert.
func (s *OrderService) GenerateOrderNumber() string {
	ms := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(ms) > 8 {
		ms = ms[len(ms)-8:]
	}
	return fmt.Sprintf("%s-%s%03d", s.prefix, ms, rand.Intn(1000))
}

// PlaceOrder validates and persists a checkout order, then announces it
// on the queue. A publish failure is logged but never fails the order:
// the customer already committed, and the export sweep picks it up.
func (s *OrderService) PlaceOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}

	if o.OrderNumber == "" {
		o.OrderNumber = s.GenerateOrderNumber()
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	if o.Status == "" {
		o.Status = core.OrderPending
	}
	if o.Source == "" {
		o.Source = core.SourceWhatsApp
	}

	created, err := s.store.CreateOrder(ctx, o)
	if err != nil {
		return core.Order{}, fmt.Errorf("place order: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishOrderCreated(ctx, created.ID, created.OrderNumber); err != nil {
			slog.ErrorContext(ctx, "Failed to publish order created event",
				"error", err,
				"id", created.ID,
				"order_number", created.OrderNumber)
		}
	}

	return created, nil
}

// ListOrders returns orders in the window, newest first.
func (s *OrderService) ListOrders(ctx context.Context, from, to time.Time, limit int) ([]core.Order, error) {
	return s.store.ListOrders(ctx, from, to, limit)
}
