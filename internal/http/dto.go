package http

import (
	"time"

	"mataam/internal/core"
)

// Wire shapes for the JSON API. Domain types stay tag-free; conversion
// happens here at the boundary.

type categoryJSON struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	NameEn        string `json:"nameEn,omitempty"`
	Description   string `json:"description,omitempty"`
	Image         string `json:"image,omitempty"`
	Color         string `json:"color,omitempty"`
	Icon          string `json:"icon,omitempty"`
	SortOrder     int64  `json:"sortOrder"`
	Featured      bool   `json:"featured"`
	FeaturedOrder int64  `json:"featuredOrder,omitempty"`
	Status        string `json:"status"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{
		ID:            c.ID,
		Name:          c.Name,
		NameEn:        c.NameEn,
		Description:   c.Description,
		Image:         c.Image,
		Color:         c.Color,
		Icon:          c.Icon,
		SortOrder:     c.SortOrder,
		Featured:      c.Featured,
		FeaturedOrder: c.FeaturedOrder,
		Status:        c.Status,
	}
}

func (c categoryJSON) toCore() core.Category {
	return core.Category{
		ID:            c.ID,
		Name:          c.Name,
		NameEn:        c.NameEn,
		Description:   c.Description,
		Image:         c.Image,
		Color:         c.Color,
		Icon:          c.Icon,
		SortOrder:     c.SortOrder,
		Featured:      c.Featured,
		FeaturedOrder: c.FeaturedOrder,
		Status:        c.Status,
	}
}

type itemJSON struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	NameEn          string     `json:"nameEn,omitempty"`
	Description     string     `json:"description,omitempty"`
	CategoryID      string     `json:"categoryId"`
	Price           core.Money `json:"price"`
	DiscountPrice   core.Money `json:"discountPrice"`
	Cost            core.Money `json:"cost"`
	Image           string     `json:"image,omitempty"`
	Calories        int64      `json:"calories,omitempty"`
	PreparationTime int64      `json:"preparationTime,omitempty"`
	Status          string     `json:"status"`
	Featured        bool       `json:"featured"`
	SortOrder       int64      `json:"sortOrder"`
}

func toItemJSON(m core.MenuItem) itemJSON {
	return itemJSON{
		ID:              m.ID,
		Name:            m.Name,
		NameEn:          m.NameEn,
		Description:     m.Description,
		CategoryID:      m.CategoryID,
		Price:           m.Price,
		DiscountPrice:   m.DiscountPrice,
		Cost:            m.Cost,
		Image:           m.Image,
		Calories:        m.Calories,
		PreparationTime: m.PreparationTime,
		Status:          m.Status,
		Featured:        m.Featured,
		SortOrder:       m.SortOrder,
	}
}

func (m itemJSON) toCore() core.MenuItem {
	return core.MenuItem{
		ID:              m.ID,
		Name:            m.Name,
		NameEn:          m.NameEn,
		Description:     m.Description,
		CategoryID:      m.CategoryID,
		Price:           m.Price,
		DiscountPrice:   m.DiscountPrice,
		Cost:            m.Cost,
		Image:           m.Image,
		Calories:        m.Calories,
		PreparationTime: m.PreparationTime,
		Status:          m.Status,
		Featured:        m.Featured,
		SortOrder:       m.SortOrder,
	}
}

type customerJSON struct {
	Name        string `json:"name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	TableNumber string `json:"tableNumber,omitempty"`
}

type orderLineJSON struct {
	MenuItemID     string     `json:"menuItemId"`
	MenuItemName   string     `json:"menuItemName"`
	MenuItemNameEn string     `json:"menuItemNameEn,omitempty"`
	Quantity       int64      `json:"quantity"`
	UnitPrice      core.Money `json:"unitPrice"`
	TotalPrice     core.Money `json:"totalPrice"`
}

type orderJSON struct {
	ID             string          `json:"id"`
	OrderNumber    string          `json:"orderNumber"`
	Items          []orderLineJSON `json:"items"`
	TotalAmount    core.Money      `json:"totalAmount"`
	DiscountAmount core.Money      `json:"discountAmount"`
	Tips           core.Money      `json:"tips"`
	CustomerInfo   customerJSON    `json:"customerInfo"`
	Status         string          `json:"status"`
	OrderDate      time.Time       `json:"orderDate"`
	Source         string          `json:"source"`
	Notes          string          `json:"notes,omitempty"`
}

func toOrderJSON(o core.Order) orderJSON {
	lines := make([]orderLineJSON, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = orderLineJSON{
			MenuItemID:     l.MenuItemID,
			MenuItemName:   l.MenuItemName,
			MenuItemNameEn: l.MenuItemNameEn,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TotalPrice:     l.Revenue(),
		}
	}
	return orderJSON{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Items:          lines,
		TotalAmount:    o.TotalAmount,
		DiscountAmount: o.DiscountAmount,
		Tips:           o.Tips,
		CustomerInfo: customerJSON{
			Name:        o.CustomerInfo.Name,
			Phone:       o.CustomerInfo.Phone,
			Address:     o.CustomerInfo.Address,
			TableNumber: o.CustomerInfo.TableNumber,
		},
		Status:    o.Status,
		OrderDate: o.OrderDate,
		Source:    o.Source,
		Notes:     o.Notes,
	}
}

type createOrderRequest struct {
	Items          []orderLineJSON `json:"items"`
	TotalAmount    core.Money      `json:"totalAmount"`
	DiscountAmount core.Money      `json:"discountAmount"`
	Tips           core.Money      `json:"tips"`
	CustomerInfo   customerJSON    `json:"customerInfo"`
	Notes          string          `json:"notes"`
}

func (r createOrderRequest) toCore() core.Order {
	lines := make([]core.OrderLine, len(r.Items))
	for i, l := range r.Items {
		lines[i] = core.OrderLine{
			MenuItemID:     l.MenuItemID,
			MenuItemName:   l.MenuItemName,
			MenuItemNameEn: l.MenuItemNameEn,
			Quantity:       l.Quantity,
			UnitPrice:      l.UnitPrice,
			TotalPrice:     l.TotalPrice,
		}
	}
	return core.Order{
		Lines:          lines,
		TotalAmount:    r.TotalAmount,
		DiscountAmount: r.DiscountAmount,
		Tips:           r.Tips,
		CustomerInfo: core.CustomerInfo{
			Name:        r.CustomerInfo.Name,
			Phone:       r.CustomerInfo.Phone,
			Address:     r.CustomerInfo.Address,
			TableNumber: r.CustomerInfo.TableNumber,
		},
		Notes: r.Notes,
	}
}

type orderCreatedResponse struct {
	Order           orderJSON `json:"order"`
	WhatsAppMessage string    `json:"whatsappMessage"`
	WhatsAppURL     string    `json:"whatsappUrl"`
}
