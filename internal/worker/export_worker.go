// Package worker drains new orders into the external ledger.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mataam/internal/amqp"
	"mataam/internal/core"
	"mataam/internal/sheets"
	"mataam/internal/storage"
)

// ExportStore is the storage surface the export flow needs.
type ExportStore interface {
	GetOrder(ctx context.Context, id string) (core.Order, error)
	ListUnexportedOrders(ctx context.Context, limit int) ([]core.Order, error)
	MarkOrderExported(ctx context.Context, id string) error
}

// ExportWorker writes orders to the ledger, driven by queue messages
// with a periodic database sweep as the safety net for lost messages.
type ExportWorker struct {
	store     ExportStore
	ledger    sheets.OrderLedger
	batchSize int
}

func NewExportWorker(store ExportStore, ledger sheets.OrderLedger, batchSize int) *ExportWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ExportWorker{store: store, ledger: ledger, batchSize: batchSize}
}

// HandleOrderCreated exports the order named by a queue message. An
// order that vanished from the database is treated as handled so the
// message is not requeued forever.
func (w *ExportWorker) HandleOrderCreated(ctx context.Context, msg *amqp.OrderCreatedMessage) error {
	slog.InfoContext(ctx, "Processing order export message",
		"id", msg.ID,
		"order_number", msg.OrderNumber)

	order, err := w.store.GetOrder(ctx, msg.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Order from queue no longer exists, dropping message",
				"id", msg.ID)
			return nil
		}
		return fmt.Errorf("get order from storage: %w", err)
	}

	return w.exportOrder(ctx, order)
}

// ProcessPendingOrders exports any orders the queue missed. Failures
// are logged per order; the next sweep retries them.
func (w *ExportWorker) ProcessPendingOrders(ctx context.Context) error {
	pending, err := w.store.ListUnexportedOrders(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported orders: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unexported orders", "count", len(pending))

	for _, order := range pending {
		if err := w.exportOrder(ctx, order); err != nil {
			slog.ErrorContext(ctx, "Failed to export order",
				"id", order.ID,
				"order_number", order.OrderNumber,
				"error", err)
		}
	}
	return nil
}

// StartupCheck drains the backlog accumulated while the worker was
// down. It uses a larger batch than the regular sweep.
func (w *ExportWorker) StartupCheck(ctx context.Context) error {
	pending, err := w.store.ListUnexportedOrders(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported orders for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No unexported orders found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found unexported orders on startup, processing...",
		"count", len(pending))

	exported, failed := 0, 0
	for _, order := range pending {
		if err := w.exportOrder(ctx, order); err != nil {
			slog.ErrorContext(ctx, "Failed to export order during startup",
				"id", order.ID, "error", err)
			failed++
			continue
		}
		exported++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", exported,
		"errors", failed)
	return nil
}

// RunSweep runs the pending-order sweep on a fixed interval until the
// context is cancelled.
func (w *ExportWorker) RunSweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.ProcessPendingOrders(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending order sweep failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) exportOrder(ctx context.Context, order core.Order) error {
	ref, err := w.ledger.AppendOrder(ctx, order)
	if err != nil {
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkOrderExported(ctx, order.ID); err != nil {
		// The row landed; failing here would duplicate it on retry.
		slog.ErrorContext(ctx, "Failed to mark order exported",
			"id", order.ID, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Order exported to ledger",
		"id", order.ID,
		"order_number", order.OrderNumber,
		"ledger_ref", ref)
	return nil
}
