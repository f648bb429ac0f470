package core

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

func at(hour int) time.Time {
	return time.Date(2025, 6, 15, hour, 30, 0, 0, time.Local)
}

func line(id, name string, qty int64, unitSAR float64) OrderLine {
	return OrderLine{
		MenuItemID:   id,
		MenuItemName: name,
		Quantity:     qty,
		UnitPrice:    MoneyFromSAR(unitSAR),
		TotalPrice:   Money{Halalas: qty * MoneyFromSAR(unitSAR).Halalas},
	}
}

func order(totalSAR float64, lines ...OrderLine) Order {
	return Order{
		TotalAmount: MoneyFromSAR(totalSAR),
		OrderDate:   at(12),
		Lines:       lines,
	}
}

func TestComputeStatistics_Empty(t *testing.T) {
	stats := ComputeStatistics(nil, nil, nil)

	if stats.TotalOrders != 0 || stats.TotalRevenue.Halalas != 0 || stats.TotalTips.Halalas != 0 {
		t.Fatalf("expected zero totals, got %+v", stats)
	}
	if stats.AverageOrderValue != 0 || stats.AverageSpendPerCustomer != 0 {
		t.Fatalf("expected zero averages, got aov=%v aspc=%v", stats.AverageOrderValue, stats.AverageSpendPerCustomer)
	}
	for name, v := range map[string]StatView{
		"top":      stats.TopItems,
		"bottom":   stats.BottomItems,
		"self":     stats.SelfSelling,
		"category": stats.RevenueByCategory,
		"profit":   stats.ProfitableItems,
		"pairings": stats.CommonPairings,
	} {
		if len(v.Entries) != 0 || v.Max != 0 {
			t.Fatalf("%s: expected empty view with max 0, got %+v", name, v)
		}
	}
	if len(stats.OrdersByHour.Entries) != 24 || stats.OrdersByHour.Max != 0 {
		t.Fatalf("expected 24 empty hour buckets, got %+v", stats.OrdersByHour)
	}
}

func TestComputeStatistics_Totals(t *testing.T) {
	o := order(100, line("x", "Pizza", 2, 50))
	o.DiscountAmount = MoneyFromSAR(10)
	o.Tips = MoneyFromSAR(5)

	stats := ComputeStatistics([]Order{o}, nil, nil)

	if stats.TotalOrders != 1 {
		t.Fatalf("totalOrders = %d, want 1", stats.TotalOrders)
	}
	if got := stats.TotalRevenue.Halalas; got != 9500 {
		t.Fatalf("totalRevenue = %d halalas, want 9500", got)
	}
	if stats.AverageOrderValue != 95 {
		t.Fatalf("averageOrderValue = %v, want 95", stats.AverageOrderValue)
	}
	if stats.TotalTips.Halalas != 500 {
		t.Fatalf("totalTips = %d halalas, want 500", stats.TotalTips.Halalas)
	}
	want := []StatEntry{{Label: "Pizza", Value: 2}}
	if !reflect.DeepEqual(stats.TopItems.Entries, want) || stats.TopItems.Max != 2 {
		t.Fatalf("topItems = %+v, want %v with max 2", stats.TopItems, want)
	}
}

func TestComputeStatistics_OrderTypeSplit(t *testing.T) {
	orders := []Order{
		{TotalAmount: MoneyFromSAR(10), OrderDate: at(9), Notes: "تيك أواي - بدون بصل"},
		{TotalAmount: MoneyFromSAR(20), OrderDate: at(10)},
		{TotalAmount: MoneyFromSAR(30), OrderDate: at(11), Notes: "طاولة 4"},
	}
	stats := ComputeStatistics(orders, nil, nil)

	if stats.TakeawayOrders != 1 || stats.DineInOrders != 2 {
		t.Fatalf("split = %d/%d, want 1/2", stats.TakeawayOrders, stats.DineInOrders)
	}
	if stats.TakeawayOrders+stats.DineInOrders != stats.TotalOrders {
		t.Fatalf("takeaway+dineIn != totalOrders")
	}
}

func TestComputeStatistics_TopBottomOrdering(t *testing.T) {
	var orders []Order
	// Seven items with quantities 1..7 so top and bottom overlap.
	for i := 1; i <= 7; i++ {
		id := fmt.Sprintf("i%d", i)
		orders = append(orders, order(10, line(id, "Item "+id, int64(i), 1)))
	}
	stats := ComputeStatistics(orders, nil, nil)

	top := stats.TopItems.Entries
	if len(top) != 5 {
		t.Fatalf("top length = %d, want 5", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i].Value > top[i-1].Value {
			t.Fatalf("top not non-increasing at %d: %+v", i, top)
		}
	}
	if stats.TopItems.Max != top[0].Value {
		t.Fatalf("top max = %v, want %v", stats.TopItems.Max, top[0].Value)
	}

	bottom := stats.BottomItems.Entries
	if len(bottom) != 5 {
		t.Fatalf("bottom length = %d, want 5", len(bottom))
	}
	for i := 1; i < len(bottom); i++ {
		if bottom[i].Value < bottom[i-1].Value {
			t.Fatalf("bottom not non-decreasing at %d: %+v", i, bottom)
		}
	}
	if bottom[0].Value != 1 {
		t.Fatalf("least-sold should lead bottom view, got %+v", bottom[0])
	}
	if stats.BottomItems.Max != bottom[0].Value {
		t.Fatalf("bottom max = %v, want its own first entry %v", stats.BottomItems.Max, bottom[0].Value)
	}
}

func TestComputeStatistics_TieBreakDeterministic(t *testing.T) {
	orders := []Order{
		order(10, line("b", "Burger", 3, 1)),
		order(10, line("a", "Arayes", 3, 1)),
		order(10, line("c", "Chai", 3, 1)),
	}
	stats := ComputeStatistics(orders, nil, nil)

	want := []string{"Arayes", "Burger", "Chai"}
	for i, e := range stats.TopItems.Entries {
		if e.Label != want[i] {
			t.Fatalf("tie-break order = %+v, want labels %v", stats.TopItems.Entries, want)
		}
	}
}

func TestComputeStatistics_SelfSelling(t *testing.T) {
	orders := []Order{
		order(5, line("soda", "Soda", 1, 5)),
		order(5, line("soda", "Soda", 1, 5)),
		// Two lines, one distinct item: still self-selling.
		order(10, line("soda", "Soda", 1, 5), line("soda", "Soda", 1, 5)),
		// Mixed order: never self-selling.
		order(15, line("soda", "Soda", 1, 5), line("x", "Pizza", 1, 10)),
		// Zero-quantity noise is discarded before the distinct check.
		order(5, line("chai", "Chai", 1, 5), line("x", "Pizza", 0, 10)),
	}
	stats := ComputeStatistics(orders, nil, nil)

	want := []StatEntry{{Label: "Soda", Value: 4}, {Label: "Chai", Value: 1}}
	if !reflect.DeepEqual(stats.SelfSelling.Entries, want) {
		t.Fatalf("selfSelling = %+v, want %v", stats.SelfSelling.Entries, want)
	}
	if stats.SelfSelling.Max != 4 {
		t.Fatalf("selfSelling max = %v, want 4", stats.SelfSelling.Max)
	}
}

func TestComputeStatistics_RevenueByCategory(t *testing.T) {
	items := map[string]ItemInfo{
		"x": {CategoryID: "cat1"},
		// "y" is deliberately missing from the index.
	}
	categories := map[string]CategoryInfo{
		"cat1": {Name: "مشويات"},
	}
	orders := []Order{
		order(30, line("x", "Kebab", 2, 10), line("y", "Mystery", 1, 10)),
	}
	stats := ComputeStatistics(orders, items, categories)

	want := []StatEntry{
		{Label: "مشويات", Value: 20},
		{Label: UnknownCategoryLabel, Value: 10},
	}
	if !reflect.DeepEqual(stats.RevenueByCategory.Entries, want) {
		t.Fatalf("revenueByCategory = %+v, want %v", stats.RevenueByCategory.Entries, want)
	}
	if stats.RevenueByCategory.Max != 20 {
		t.Fatalf("max = %v, want 20", stats.RevenueByCategory.Max)
	}
}

func TestComputeStatistics_OrdersByHour(t *testing.T) {
	orders := []Order{
		{TotalAmount: MoneyFromSAR(10), OrderDate: at(13)},
		{TotalAmount: MoneyFromSAR(10), OrderDate: at(13)},
		{TotalAmount: MoneyFromSAR(10), OrderDate: at(20)},
	}
	stats := ComputeStatistics(orders, nil, nil)

	hours := stats.OrdersByHour.Entries
	if len(hours) != 24 {
		t.Fatalf("hour buckets = %d, want 24", len(hours))
	}
	var sum float64
	for h, e := range hours {
		if e.Label != fmt.Sprintf("%d:00", h) {
			t.Fatalf("bucket %d labelled %q", h, e.Label)
		}
		sum += e.Value
	}
	if sum != float64(stats.TotalOrders) {
		t.Fatalf("hour sum = %v, want %d", sum, stats.TotalOrders)
	}
	if hours[13].Value != 2 || hours[20].Value != 1 {
		t.Fatalf("unexpected buckets: 13=%v 20=%v", hours[13].Value, hours[20].Value)
	}
	if stats.OrdersByHour.Max != 2 {
		t.Fatalf("hour max = %v, want 2", stats.OrdersByHour.Max)
	}
}

func TestComputeStatistics_Customers(t *testing.T) {
	orders := []Order{
		{TotalAmount: MoneyFromSAR(40), OrderDate: at(12), CustomerInfo: CustomerInfo{Phone: "0551234567"}},
		{TotalAmount: MoneyFromSAR(60), OrderDate: at(13), CustomerInfo: CustomerInfo{Phone: "0551234567"}},
		{TotalAmount: MoneyFromSAR(100), OrderDate: at(14), CustomerInfo: CustomerInfo{Phone: "0507654321"}},
		{TotalAmount: MoneyFromSAR(10), OrderDate: at(15)}, // no phone
	}
	stats := ComputeStatistics(orders, nil, nil)

	if stats.NumCustomers != 2 {
		t.Fatalf("numCustomers = %d, want 2", stats.NumCustomers)
	}
	if stats.AverageSpendPerCustomer != 105 {
		t.Fatalf("averageSpendPerCustomer = %v, want 105", stats.AverageSpendPerCustomer)
	}
}

func TestComputeStatistics_Profitability(t *testing.T) {
	items := map[string]ItemInfo{
		"x": {Cost: MoneyFromSAR(3)},
		// "y" has no cost on file: profit defaults to full revenue.
	}
	orders := []Order{
		order(35, line("x", "Kebab", 2, 10), line("y", "Chai", 3, 5)),
	}
	stats := ComputeStatistics(orders, items, nil)

	want := []StatEntry{
		{Label: "Chai", Value: 15},
		{Label: "Kebab", Value: 14}, // 20 revenue - 2*3 cost
	}
	if !reflect.DeepEqual(stats.ProfitableItems.Entries, want) {
		t.Fatalf("profitableItems = %+v, want %v", stats.ProfitableItems.Entries, want)
	}
}

func TestComputeStatistics_NegativeProfit(t *testing.T) {
	items := map[string]ItemInfo{"x": {Cost: MoneyFromSAR(20)}}
	orders := []Order{order(10, line("x", "Loss Leader", 1, 10))}

	stats := ComputeStatistics(orders, items, nil)
	if got := stats.ProfitableItems.Entries[0].Value; got != -10 {
		t.Fatalf("profit = %v, want -10", got)
	}
}

func TestComputeStatistics_PairingsDeduplicate(t *testing.T) {
	// A appears twice; the distinct-name set is {A, B} so the pair
	// counts once for this order.
	orders := []Order{
		order(25, line("a", "A", 1, 5), line("a", "A", 1, 5), line("b", "B", 1, 15)),
	}
	stats := ComputeStatistics(orders, nil, nil)

	want := []StatEntry{{Label: "A + B", Value: 1}}
	if !reflect.DeepEqual(stats.CommonPairings.Entries, want) {
		t.Fatalf("commonPairings = %+v, want %v", stats.CommonPairings.Entries, want)
	}
}

func TestComputeStatistics_PairingsRanked(t *testing.T) {
	pair := func(n int, a, b OrderLine) []Order {
		var out []Order
		for i := 0; i < n; i++ {
			out = append(out, order(20, a, b))
		}
		return out
	}
	orders := append(
		pair(3, line("k", "Kebab", 1, 10), line("s", "Soda", 1, 5)),
		pair(1, line("k", "Kebab", 1, 10), line("c", "Chai", 1, 5))...,
	)
	stats := ComputeStatistics(orders, nil, nil)

	if len(stats.CommonPairings.Entries) != 2 {
		t.Fatalf("pairings = %+v, want 2 entries", stats.CommonPairings.Entries)
	}
	first := stats.CommonPairings.Entries[0]
	if first.Label != "Kebab + Soda" || first.Value != 3 || stats.CommonPairings.Max != 3 {
		t.Fatalf("leading pairing = %+v (max %v), want Kebab + Soda / 3", first, stats.CommonPairings.Max)
	}
}

func TestComputeStatistics_Idempotent(t *testing.T) {
	items := map[string]ItemInfo{"x": {CategoryID: "c", Cost: MoneyFromSAR(2)}}
	categories := map[string]CategoryInfo{"c": {Name: "Grill"}}
	orders := []Order{
		order(30, line("x", "Kebab", 2, 10), line("y", "Chai", 1, 10)),
		{TotalAmount: MoneyFromSAR(12), OrderDate: at(18), Notes: "تيك أواي", CustomerInfo: CustomerInfo{Phone: "05"}},
	}

	a := ComputeStatistics(orders, items, categories)
	b := ComputeStatistics(orders, items, categories)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("engine is not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestComputeStatistics_LineRevenueFallback(t *testing.T) {
	// No stored line total: revenue falls back to quantity*unitPrice.
	l := OrderLine{MenuItemID: "x", MenuItemName: "Pizza", Quantity: 3, UnitPrice: MoneyFromSAR(10)}
	orders := []Order{order(30, l)}

	stats := ComputeStatistics(orders, nil, nil)
	if got := stats.RevenueByCategory.Entries[0].Value; got != 30 {
		t.Fatalf("fallback revenue = %v, want 30", got)
	}
}
