package core

import (
	"errors"
	"strings"
	"time"
)

const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusOutOfStock = "out_of_stock"

	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderPreparing = "preparing"
	OrderReady     = "ready"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"

	SourceWhatsApp = "website_whatsapp"
	SourceManual   = "manual"
)

type (
	// Category is a menu section (appetizers, grills, drinks, ...).
	Category struct {
		ID            string
		Name          string
		NameEn        string
		Description   string
		Image         string
		Color         string
		Icon          string
		SortOrder     int64
		Featured      bool
		FeaturedOrder int64
		Status        string
	}

	// MenuItem is a sellable dish or drink inside a category.
	MenuItem struct {
		ID              string
		Name            string
		NameEn          string
		Description     string
		CategoryID      string
		Price           Money
		DiscountPrice   Money
		Cost            Money // ingredient cost, used for profitability
		Image           string
		Calories        int64
		PreparationTime int64 // minutes
		Status          string
		Featured        bool
		SortOrder       int64
	}

	CustomerInfo struct {
		Name        string
		Phone       string
		Address     string
		TableNumber string
	}

	// OrderLine is a snapshot of a menu item at ordering time. Name and
	// prices are copied so later menu edits do not rewrite history.
	OrderLine struct {
		MenuItemID     string
		MenuItemName   string
		MenuItemNameEn string
		Quantity       int64
		UnitPrice      Money
		TotalPrice     Money
	}

	Order struct {
		ID             string
		OrderNumber    string
		Lines          []OrderLine
		TotalAmount    Money
		DiscountAmount Money
		Tips           Money
		CustomerInfo   CustomerInfo
		Status         string
		OrderDate      time.Time
		Source         string
		Notes          string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyName       = errors.New("empty name")
	ErrEmptyCategory   = errors.New("empty category")
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrNoLines         = errors.New("order has no items")
	ErrInvalidTotal    = errors.New("invalid total amount")
)

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	switch c.Status {
	case "", StatusActive, StatusInactive:
	default:
		return errors.New("invalid category status")
	}
	return nil
}

func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(m.CategoryID) == "" {
		return ErrEmptyCategory
	}
	if m.Price.Halalas < 0 {
		return ErrInvalidAmount
	}
	if m.DiscountPrice.Halalas < 0 || m.Cost.Halalas < 0 {
		return ErrInvalidAmount
	}
	switch m.Status {
	case "", StatusActive, StatusInactive, StatusOutOfStock:
	default:
		return errors.New("invalid item status")
	}
	return nil
}

func (l OrderLine) Validate() error {
	if strings.TrimSpace(l.MenuItemID) == "" || strings.TrimSpace(l.MenuItemName) == "" {
		return ErrEmptyName
	}
	if l.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if l.UnitPrice.Halalas < 0 || l.TotalPrice.Halalas < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Revenue is the line's contribution to order revenue: the stored total
// price, falling back to quantity*unitPrice when the total is absent.
func (l OrderLine) Revenue() Money {
	if l.TotalPrice.Halalas != 0 {
		return l.TotalPrice
	}
	return Money{Halalas: l.Quantity * l.UnitPrice.Halalas}
}

func (o Order) Validate() error {
	if len(o.Lines) == 0 {
		return ErrNoLines
	}
	for _, l := range o.Lines {
		if err := l.Validate(); err != nil {
			return err
		}
	}
	if o.TotalAmount.Halalas <= 0 {
		return ErrInvalidTotal
	}
	if o.DiscountAmount.Halalas < 0 || o.Tips.Halalas < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// NetRevenue is what the order actually brought in:
// totalAmount - discount + tips.
func (o Order) NetRevenue() Money {
	return Money{Halalas: o.TotalAmount.Halalas - o.DiscountAmount.Halalas + o.Tips.Halalas}
}
