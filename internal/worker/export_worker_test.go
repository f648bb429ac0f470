package worker

import (
	"context"
	"errors"
	"testing"

	"mataam/internal/amqp"
	"mataam/internal/core"
	"mataam/internal/storage"
)

type fakeExportStore struct {
	orders   map[string]core.Order
	exported []string
}

func newFakeExportStore(orders ...core.Order) *fakeExportStore {
	m := make(map[string]core.Order)
	for _, o := range orders {
		m[o.ID] = o
	}
	return &fakeExportStore{orders: m}
}

func (f *fakeExportStore) GetOrder(ctx context.Context, id string) (core.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return core.Order{}, storage.ErrNotFound
	}
	return o, nil
}

func (f *fakeExportStore) ListUnexportedOrders(ctx context.Context, limit int) ([]core.Order, error) {
	var out []core.Order
	for _, o := range f.orders {
		done := false
		for _, id := range f.exported {
			if id == o.ID {
				done = true
			}
		}
		if !done {
			out = append(out, o)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeExportStore) MarkOrderExported(ctx context.Context, id string) error {
	f.exported = append(f.exported, id)
	return nil
}

type fakeLedger struct {
	appended []string
	failure  error
}

func (f *fakeLedger) AppendOrder(ctx context.Context, o core.Order) (string, error) {
	if f.failure != nil {
		return "", f.failure
	}
	f.appended = append(f.appended, o.OrderNumber)
	return "Orders!A2:K2", nil
}

func sampleOrder(id, number string) core.Order {
	return core.Order{
		ID:          id,
		OrderNumber: number,
		TotalAmount: core.MoneyFromSAR(30),
		Lines: []core.OrderLine{{
			MenuItemID: "m1", MenuItemName: "كباب", Quantity: 1,
			UnitPrice: core.MoneyFromSAR(30),
		}},
	}
}

func TestHandleOrderCreated(t *testing.T) {
	store := newFakeExportStore(sampleOrder("o1", "ORD-1"))
	ledger := &fakeLedger{}
	w := NewExportWorker(store, ledger, 10)

	msg := &amqp.OrderCreatedMessage{ID: "o1", OrderNumber: "ORD-1"}
	if err := w.HandleOrderCreated(context.Background(), msg); err != nil {
		t.Fatalf("HandleOrderCreated: %v", err)
	}

	if len(ledger.appended) != 1 || ledger.appended[0] != "ORD-1" {
		t.Fatalf("ledger = %v", ledger.appended)
	}
	if len(store.exported) != 1 || store.exported[0] != "o1" {
		t.Fatalf("exported = %v", store.exported)
	}
}

func TestHandleOrderCreatedMissingOrder(t *testing.T) {
	w := NewExportWorker(newFakeExportStore(), &fakeLedger{}, 10)

	msg := &amqp.OrderCreatedMessage{ID: "gone", OrderNumber: "ORD-X"}
	if err := w.HandleOrderCreated(context.Background(), msg); err != nil {
		t.Fatalf("missing order should be dropped, not requeued: %v", err)
	}
}

func TestHandleOrderCreatedLedgerFailure(t *testing.T) {
	store := newFakeExportStore(sampleOrder("o1", "ORD-1"))
	ledger := &fakeLedger{failure: errors.New("quota exceeded")}
	w := NewExportWorker(store, ledger, 10)

	msg := &amqp.OrderCreatedMessage{ID: "o1", OrderNumber: "ORD-1"}
	if err := w.HandleOrderCreated(context.Background(), msg); err == nil {
		t.Fatal("ledger failure should propagate so the message requeues")
	}
	if len(store.exported) != 0 {
		t.Fatal("order must not be marked exported after a failed append")
	}
}

func TestProcessPendingOrders(t *testing.T) {
	store := newFakeExportStore(
		sampleOrder("o1", "ORD-1"),
		sampleOrder("o2", "ORD-2"),
	)
	ledger := &fakeLedger{}
	w := NewExportWorker(store, ledger, 10)

	if err := w.ProcessPendingOrders(context.Background()); err != nil {
		t.Fatalf("ProcessPendingOrders: %v", err)
	}
	if len(ledger.appended) != 2 || len(store.exported) != 2 {
		t.Fatalf("appended=%v exported=%v", ledger.appended, store.exported)
	}

	// Second sweep finds nothing left.
	ledger.appended = nil
	if err := w.ProcessPendingOrders(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(ledger.appended) != 0 {
		t.Fatalf("already exported orders re-sent: %v", ledger.appended)
	}
}

func TestStartupCheck(t *testing.T) {
	store := newFakeExportStore(sampleOrder("o1", "ORD-1"))
	ledger := &fakeLedger{}
	w := NewExportWorker(store, ledger, 10)

	if err := w.StartupCheck(context.Background()); err != nil {
		t.Fatalf("StartupCheck: %v", err)
	}
	if len(store.exported) != 1 {
		t.Fatalf("exported = %v", store.exported)
	}
}
