package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"mataam/internal/core"
)

type fakeStore struct {
	created []core.Order
	failure error
}

func (f *fakeStore) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if f.failure != nil {
		return core.Order{}, f.failure
	}
	o.ID = "generated-id"
	f.created = append(f.created, o)
	return o, nil
}

func (f *fakeStore) ListOrders(ctx context.Context, from, to time.Time, limit int) ([]core.Order, error) {
	return f.created, nil
}

func (f *fakeStore) GetOrder(ctx context.Context, id string) (core.Order, error) {
	for _, o := range f.created {
		if o.ID == id {
			return o, nil
		}
	}
	return core.Order{}, errors.New("not found")
}

type fakePublisher struct {
	published []string
	failure   error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, id, orderNumber string) error {
	if f.failure != nil {
		return f.failure
	}
	f.published = append(f.published, orderNumber)
	return nil
}

func validOrder() core.Order {
	return core.Order{
		TotalAmount: core.MoneyFromSAR(40),
		Lines: []core.OrderLine{{
			MenuItemID:   "m1",
			MenuItemName: "كباب",
			Quantity:     2,
			UnitPrice:    core.MoneyFromSAR(20),
		}},
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	svc := NewOrderService(&fakeStore{}, nil, "ORD")

	pattern := regexp.MustCompile(`^ORD-\d{11}$`)
	for i := 0; i < 10; i++ {
		n := svc.GenerateOrderNumber()
		if !pattern.MatchString(n) {
			t.Fatalf("order number %q does not match ORD-<8 digits><3 digits>", n)
		}
	}
}

func TestPlaceOrder(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	svc := NewOrderService(store, pub, "ORD")

	created, err := svc.PlaceOrder(context.Background(), validOrder())
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}

	if created.ID == "" || created.OrderNumber == "" {
		t.Fatalf("identifiers not assigned: %+v", created)
	}
	if created.Status != core.OrderPending || created.Source != core.SourceWhatsApp {
		t.Fatalf("defaults not applied: status=%q source=%q", created.Status, created.Source)
	}
	if created.OrderDate.IsZero() {
		t.Fatal("order date not stamped")
	}
	if len(pub.published) != 1 || pub.published[0] != created.OrderNumber {
		t.Fatalf("publish = %v", pub.published)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := NewOrderService(&fakeStore{}, nil, "ORD")

	_, err := svc.PlaceOrder(context.Background(), core.Order{TotalAmount: core.MoneyFromSAR(10)})
	if !errors.Is(err, core.ErrNoLines) {
		t.Fatalf("want ErrNoLines, got %v", err)
	}

	o := validOrder()
	o.TotalAmount = core.Money{}
	if _, err := svc.PlaceOrder(context.Background(), o); !errors.Is(err, core.ErrInvalidTotal) {
		t.Fatalf("want ErrInvalidTotal, got %v", err)
	}
}

func TestPlaceOrderPublishFailureIsNotFatal(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{failure: errors.New("broker down")}
	svc := NewOrderService(store, pub, "ORD")

	created, err := svc.PlaceOrder(context.Background(), validOrder())
	if err != nil {
		t.Fatalf("publish failure should not fail the order: %v", err)
	}
	if len(store.created) != 1 || created.ID == "" {
		t.Fatal("order was not persisted")
	}
}

func TestPlaceOrderWithoutPublisher(t *testing.T) {
	svc := NewOrderService(&fakeStore{}, nil, "")

	created, err := svc.PlaceOrder(context.Background(), validOrder())
	if err != nil {
		t.Fatalf("PlaceOrder without publisher: %v", err)
	}
	if created.OrderNumber[:4] != "ORD-" {
		t.Fatalf("default prefix not applied: %q", created.OrderNumber)
	}
}
