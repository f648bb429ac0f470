package core

import (
	"fmt"
	"sort"
	"strings"
)

// TakeawayMarker is the literal substring the cashier writes into order
// notes for takeaway orders. The dine-in/takeaway split is a heuristic
// over free text, not a structured field.
const TakeawayMarker = "تيك أواي"

// UnknownCategoryID is the bucket for order lines whose menu item cannot
// be resolved to a category anymore (item deleted, imported data, ...).
const UnknownCategoryID = "unknown"

// UnknownCategoryLabel is the display label for that bucket.
const UnknownCategoryLabel = "غير معروف"

type (
	// ItemInfo is the side-loaded lookup entry for a menu item id.
	ItemInfo struct {
		CategoryID string
		Cost       Money
	}

	// CategoryInfo is the side-loaded lookup entry for a category id.
	CategoryInfo struct {
		Name string
	}

	// StatEntry is one bar of a ranked view. Money-valued views carry
	// riyals; count-valued views carry whole numbers.
	StatEntry struct {
		Label string  `json:"label"`
		Value float64 `json:"value"`
	}

	// StatView is a ranked sequence plus the reference value callers use
	// for relative bar widths. For ranked views Max is the first entry's
	// value; for the hour histogram it is the largest bucket.
	StatView struct {
		Entries []StatEntry `json:"entries"`
		Max     float64     `json:"max"`
	}

	// Statistics is the full analytics bundle. It has no identity beyond
	// the inputs that produced it and is recomputed, never updated.
	Statistics struct {
		TotalOrders             int64    `json:"totalOrders"`
		TotalRevenue            Money    `json:"totalRevenue"`
		TotalTips               Money    `json:"totalTips"`
		AverageOrderValue       float64  `json:"averageOrderValue"`
		TakeawayOrders          int64    `json:"takeawayOrders"`
		DineInOrders            int64    `json:"dineInOrders"`
		NumCustomers            int64    `json:"numCustomers"`
		AverageSpendPerCustomer float64  `json:"averageSpendPerCustomer"`
		TopItems                StatView `json:"topItems"`
		BottomItems             StatView `json:"bottomItems"`
		SelfSelling             StatView `json:"selfSelling"`
		RevenueByCategory       StatView `json:"revenueByCategory"`
		OrdersByHour            StatView `json:"ordersByHour"`
		ProfitableItems         StatView `json:"profitableItems"`
		CommonPairings          StatView `json:"commonPairings"`
	}
)

// ComputeStatistics derives every analytics view from an order list and
// the two lookup indexes. It is a pure function: same inputs, same
// output, no I/O, no errors. Missing lookup entries and absent optional
// fields degrade to zero values or the "unknown" bucket.
func ComputeStatistics(orders []Order, items map[string]ItemInfo, categories map[string]CategoryInfo) Statistics {
	stats := Statistics{TotalOrders: int64(len(orders))}

	var revenue, tips int64
	for _, o := range orders {
		revenue += o.NetRevenue().Halalas
		tips += o.Tips.Halalas
		if strings.Contains(o.Notes, TakeawayMarker) {
			stats.TakeawayOrders++
		}
	}
	stats.TotalRevenue = Money{Halalas: revenue}
	stats.TotalTips = Money{Halalas: tips}
	stats.DineInOrders = stats.TotalOrders - stats.TakeawayOrders
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = float64(revenue) / 100.0 / float64(stats.TotalOrders)
	}

	stats.TopItems, stats.BottomItems = sellerViews(orders)
	stats.SelfSelling = selfSellingView(orders)
	stats.RevenueByCategory = categoryRevenueView(orders, items, categories)
	stats.OrdersByHour = hourView(orders)
	stats.ProfitableItems = profitView(orders, items)
	stats.CommonPairings = pairingView(orders)

	phones := make(map[string]struct{})
	for _, o := range orders {
		if p := o.CustomerInfo.Phone; p != "" {
			phones[p] = struct{}{}
		}
	}
	stats.NumCustomers = int64(len(phones))
	if stats.NumCustomers > 0 {
		stats.AverageSpendPerCustomer = float64(revenue) / 100.0 / float64(stats.NumCustomers)
	}

	return stats
}

// counted accumulates a value under an id while remembering the
// first-seen display label for that id.
type counted struct {
	label string
	value int64
}

// rankDesc turns an accumulation map into entries sorted by value
// descending. Ties break on label ascending so output is reproducible
// regardless of map iteration order.
func rankDesc(m map[string]*counted, toValue func(int64) float64) []StatEntry {
	entries := make([]StatEntry, 0, len(m))
	for _, c := range m {
		entries = append(entries, StatEntry{Label: c.label, Value: toValue(c.value)})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}

func asCount(v int64) float64 { return float64(v) }
func asSAR(v int64) float64   { return float64(v) / 100.0 }

// newView wraps ranked entries; Max is the first entry's own value, so
// the bottom-sellers view scales against its least-sold item just like
// every other view scales against its head.
func newView(entries []StatEntry) StatView {
	v := StatView{Entries: entries}
	if len(entries) > 0 {
		v.Max = entries[0].Value
	}
	return v
}

// sellerViews builds top and bottom sellers from one quantity ranking.
// Bottom is the tail of the descending ranking reversed, so the
// least-sold item comes first.
func sellerViews(orders []Order) (top, bottom StatView) {
	acc := make(map[string]*counted)
	for _, o := range orders {
		for _, l := range o.Lines {
			c, ok := acc[l.MenuItemID]
			if !ok {
				c = &counted{label: l.MenuItemName}
				acc[l.MenuItemID] = c
			}
			c.value += l.Quantity
		}
	}
	ranked := rankDesc(acc, asCount)

	topN := ranked
	if len(topN) > 5 {
		topN = topN[:5]
	}

	tail := ranked
	if len(tail) > 5 {
		tail = tail[len(tail)-5:]
	}
	bottomN := make([]StatEntry, len(tail))
	for i, e := range tail {
		bottomN[len(tail)-1-i] = e
	}

	return newView(topN), newView(bottomN)
}

// selfSellingView counts quantities of items that were ordered alone:
// orders whose quantity>0 lines reference exactly one distinct item.
func selfSellingView(orders []Order) StatView {
	acc := make(map[string]*counted)
	for _, o := range orders {
		ids := make(map[string]struct{}, 1)
		var id, name string
		var qty int64
		for _, l := range o.Lines {
			if l.Quantity <= 0 {
				continue
			}
			ids[l.MenuItemID] = struct{}{}
			id, name = l.MenuItemID, l.MenuItemName
			qty += l.Quantity
		}
		if len(ids) != 1 {
			continue
		}
		c, ok := acc[id]
		if !ok {
			c = &counted{label: name}
			acc[id] = c
		}
		c.value += qty
	}
	ranked := rankDesc(acc, asCount)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	return newView(ranked)
}

func categoryRevenueView(orders []Order, items map[string]ItemInfo, categories map[string]CategoryInfo) StatView {
	acc := make(map[string]*counted)
	for _, o := range orders {
		for _, l := range o.Lines {
			catID := UnknownCategoryID
			if info, ok := items[l.MenuItemID]; ok && info.CategoryID != "" {
				catID = info.CategoryID
			}
			c, ok := acc[catID]
			if !ok {
				c = &counted{label: categoryLabel(catID, categories)}
				acc[catID] = c
			}
			c.value += l.Revenue().Halalas
		}
	}
	return newView(rankDesc(acc, asSAR))
}

func categoryLabel(catID string, categories map[string]CategoryInfo) string {
	if info, ok := categories[catID]; ok && info.Name != "" {
		return info.Name
	}
	if catID == UnknownCategoryID {
		return UnknownCategoryLabel
	}
	return catID
}

// hourView buckets orders into 24 fixed local wall-clock hours. The
// result always has 24 entries, populated or not.
func hourView(orders []Order) StatView {
	var buckets [24]int64
	for _, o := range orders {
		buckets[o.OrderDate.Hour()]++
	}
	v := StatView{Entries: make([]StatEntry, 24)}
	for h, n := range buckets {
		v.Entries[h] = StatEntry{Label: fmt.Sprintf("%d:00", h), Value: float64(n)}
		if float64(n) > v.Max {
			v.Max = float64(n)
		}
	}
	return v
}

// profitView accumulates per-item profit: line revenue minus
// cost*quantity, cost zero when the item lookup misses. Values can go
// negative; rounding happens at presentation, not here.
func profitView(orders []Order, items map[string]ItemInfo) StatView {
	acc := make(map[string]*counted)
	for _, o := range orders {
		for _, l := range o.Lines {
			var cost int64
			if info, ok := items[l.MenuItemID]; ok {
				cost = info.Cost.Halalas
			}
			c, ok := acc[l.MenuItemID]
			if !ok {
				c = &counted{label: l.MenuItemName}
				acc[l.MenuItemID] = c
			}
			c.value += l.Revenue().Halalas - cost*l.Quantity
		}
	}
	ranked := rankDesc(acc, asSAR)
	if len(ranked) > 5 {
		ranked = ranked[:5]
	}
	return newView(ranked)
}

// pairingView counts unordered pairs of distinct item names co-occurring
// in one order, once per order regardless of quantities. Quadratic in
// the distinct items of a single order, which is bounded by menu size.
func pairingView(orders []Order) StatView {
	acc := make(map[string]*counted)
	for _, o := range orders {
		seen := make(map[string]struct{}, len(o.Lines))
		names := make([]string, 0, len(o.Lines))
		for _, l := range o.Lines {
			if l.MenuItemName == "" {
				continue
			}
			if _, ok := seen[l.MenuItemName]; ok {
				continue
			}
			seen[l.MenuItemName] = struct{}{}
			names = append(names, l.MenuItemName)
		}
		sort.Strings(names)
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				key := names[i] + "||" + names[j]
				c, ok := acc[key]
				if !ok {
					c = &counted{label: names[i] + " + " + names[j]}
					acc[key] = c
				}
				c.value++
			}
		}
	}
	ranked := rankDesc(acc, asCount)
	if len(ranked) > 10 {
		ranked = ranked[:10]
	}
	return newView(ranked)
}
