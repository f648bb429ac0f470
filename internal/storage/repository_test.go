package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"mataam/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCategoryCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "المشويات", NameEn: "Grills"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if cat.ID == "" || cat.Status != core.StatusActive {
		t.Fatalf("unexpected created category: %+v", cat)
	}

	got, err := repo.GetCategory(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCategory: %v", err)
	}
	if got.Name != "المشويات" || got.NameEn != "Grills" {
		t.Fatalf("got %+v", got)
	}

	got.Status = core.StatusInactive
	if _, err := repo.UpdateCategory(ctx, got); err != nil {
		t.Fatalf("UpdateCategory: %v", err)
	}

	active, err := repo.ListCategories(ctx, true)
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("inactive category leaked into active list: %+v", active)
	}

	all, err := repo.ListCategories(ctx, false)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListCategories(all) = %v, %v", all, err)
	}

	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetCategory(ctx, cat.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDeleteCategoryWithItems(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Drinks"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CreateItem(ctx, core.MenuItem{
		Name: "شاي", CategoryID: cat.ID, Price: core.MoneyFromSAR(5),
	}); err != nil {
		t.Fatal(err)
	}

	if err := repo.DeleteCategory(ctx, cat.ID); err == nil {
		t.Fatal("expected delete of non-empty category to fail")
	}
}

func TestItemCRUDAndListing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Grills"})
	if err != nil {
		t.Fatal(err)
	}

	item, err := repo.CreateItem(ctx, core.MenuItem{
		Name:       "كباب",
		CategoryID: cat.ID,
		Price:      core.MoneyFromSAR(35),
		Cost:       core.MoneyFromSAR(14),
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	hidden, err := repo.CreateItem(ctx, core.MenuItem{
		Name:       "ريش",
		CategoryID: cat.ID,
		Price:      core.MoneyFromSAR(55),
		Status:     core.StatusOutOfStock,
	})
	if err != nil {
		t.Fatal(err)
	}

	public, err := repo.ListItems(ctx, cat.ID, true)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(public) != 1 || public[0].ID != item.ID {
		t.Fatalf("public listing = %+v", public)
	}

	all, err := repo.ListItems(ctx, "", false)
	if err != nil || len(all) != 2 {
		t.Fatalf("full listing = %+v, %v", all, err)
	}

	item.Price = core.MoneyFromSAR(38)
	if _, err := repo.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	got, err := repo.GetItem(ctx, item.ID)
	if err != nil || got.Price.Halalas != 3800 {
		t.Fatalf("GetItem after update = %+v, %v", got, err)
	}

	if err := repo.DeleteItem(ctx, hidden.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := repo.GetItem(ctx, hidden.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateAndListOrders(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := repo.CreateOrder(ctx, core.Order{
			OrderNumber: "ORD-" + string(rune('A'+i)),
			TotalAmount: core.MoneyFromSAR(float64(10 * (i + 1))),
			OrderDate:   base.Add(time.Duration(i) * time.Hour),
			CustomerInfo: core.CustomerInfo{
				Name:  "أحمد",
				Phone: "0551234567",
			},
			Lines: []core.OrderLine{{
				MenuItemID:   "m1",
				MenuItemName: "كباب",
				Quantity:     int64(i + 1),
				UnitPrice:    core.MoneyFromSAR(10),
			}},
		})
		if err != nil {
			t.Fatalf("CreateOrder %d: %v", i, err)
		}
	}

	orders, err := repo.ListOrders(ctx, time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].OrderDate.After(orders[i-1].OrderDate) {
			t.Fatalf("orders not newest-first: %v then %v",
				orders[i-1].OrderDate, orders[i].OrderDate)
		}
	}
	if len(orders[0].Lines) != 1 || orders[0].Lines[0].MenuItemName != "كباب" {
		t.Fatalf("lines not attached: %+v", orders[0].Lines)
	}
	// Line totals are derived on insert when absent.
	if orders[0].Lines[0].TotalPrice.Halalas != orders[0].Lines[0].Quantity*1000 {
		t.Fatalf("line total = %d", orders[0].Lines[0].TotalPrice.Halalas)
	}

	windowed, err := repo.ListOrders(ctx, base.Add(30*time.Minute), base.Add(90*time.Minute), 0)
	if err != nil {
		t.Fatalf("ListOrders window: %v", err)
	}
	if len(windowed) != 1 {
		t.Fatalf("windowed = %d orders, want 1", len(windowed))
	}

	limited, err := repo.ListOrders(ctx, time.Time{}, time.Time{}, 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limited = %d orders, %v", len(limited), err)
	}
}

func TestAnalyticsIndexes(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "مشويات"})
	if err != nil {
		t.Fatal(err)
	}
	item, err := repo.CreateItem(ctx, core.MenuItem{
		Name:       "كباب",
		CategoryID: cat.ID,
		Price:      core.MoneyFromSAR(35),
		Cost:       core.MoneyFromSAR(14),
	})
	if err != nil {
		t.Fatal(err)
	}

	items, err := repo.ItemIndex(ctx)
	if err != nil {
		t.Fatalf("ItemIndex: %v", err)
	}
	info, ok := items[item.ID]
	if !ok || info.CategoryID != cat.ID || info.Cost.Halalas != 1400 {
		t.Fatalf("item index entry = %+v (ok=%v)", info, ok)
	}

	cats, err := repo.CategoryIndex(ctx)
	if err != nil {
		t.Fatalf("CategoryIndex: %v", err)
	}
	if cats[cat.ID].Name != "مشويات" {
		t.Fatalf("category index = %+v", cats)
	}
}

func TestExportQueue(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	o, err := repo.CreateOrder(ctx, core.Order{
		OrderNumber: "ORD-1",
		TotalAmount: core.MoneyFromSAR(20),
		Lines: []core.OrderLine{{
			MenuItemID: "m1", MenuItemName: "شاي", Quantity: 1,
			UnitPrice: core.MoneyFromSAR(20),
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	pending, err := repo.ListUnexportedOrders(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnexportedOrders: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != o.ID {
		t.Fatalf("pending = %+v", pending)
	}

	if err := repo.MarkOrderExported(ctx, o.ID); err != nil {
		t.Fatalf("MarkOrderExported: %v", err)
	}

	pending, err = repo.ListUnexportedOrders(ctx, 10)
	if err != nil || len(pending) != 0 {
		t.Fatalf("after export pending = %+v, %v", pending, err)
	}

	n, err := repo.CountUnexportedOrders(ctx)
	if err != nil || n != 0 {
		t.Fatalf("CountUnexportedOrders = %d, %v", n, err)
	}

	if err := repo.MarkOrderExported(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeed(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	cats, err := repo.ListCategories(ctx, true)
	if err != nil || len(cats) == 0 {
		t.Fatalf("no seeded categories: %v", err)
	}
	items, err := repo.ListItems(ctx, "", true)
	if err != nil || len(items) == 0 {
		t.Fatalf("no seeded items: %v", err)
	}

	if err := repo.Seed(ctx); err == nil {
		t.Fatal("second seed should be refused")
	}
}
