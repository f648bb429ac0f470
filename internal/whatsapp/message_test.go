package whatsapp

import (
	"strings"
	"testing"
	"time"

	"mataam/internal/core"
)

func testOrder() core.Order {
	return core.Order{
		OrderNumber: "ORD-17500000123",
		TotalAmount: core.MoneyFromSAR(75),
		CustomerInfo: core.CustomerInfo{
			Name:  "أحمد",
			Phone: "0551234567",
		},
		Lines: []core.OrderLine{
			{
				MenuItemName:   "كباب لحم",
				MenuItemNameEn: "Meat Kebab",
				Quantity:       2,
				UnitPrice:      core.MoneyFromSAR(35),
				TotalPrice:     core.MoneyFromSAR(70),
			},
			{
				MenuItemName: "شاي كرك",
				Quantity:     1,
				UnitPrice:    core.MoneyFromSAR(5),
			},
		},
	}
}

func TestOrderMessage(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 5, 0, 0, time.Local)
	msg := OrderMessage(testOrder(), "تاستيا", now)

	for _, want := range []string{
		"🍽️ طلب جديد من موقع تاستيا",
		"رقم الطلب: ORD-17500000123",
		"التاريخ: 2025-06-15 14:05",
		"• كباب لحم (Meat Kebab) × 2 = 70.00 ر.س",
		"• شاي كرك × 1 = 5.00 ر.س",
		"المجموع: 75.00 ر.س",
		"المجموع النهائي: 75.00 ر.س",
		"الاسم: أحمد",
		"الهاتف: 0551234567",
		"شكراً لاختيارك مطعم تاستيا! 🎉",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}

	// Optional sections stay out when their fields are empty.
	for _, absent := range []string{"الخصم", "البقشيش", "ملاحظات", "رقم الطاولة", "العنوان"} {
		if strings.Contains(msg, absent) {
			t.Errorf("message should not contain %q", absent)
		}
	}
}

func TestOrderMessageOptionalSections(t *testing.T) {
	o := testOrder()
	o.DiscountAmount = core.MoneyFromSAR(10)
	o.Tips = core.MoneyFromSAR(5)
	o.Notes = "بدون بصل"
	o.CustomerInfo.TableNumber = "7"

	msg := OrderMessage(o, "تاستيا", time.Now())

	for _, want := range []string{
		"الخصم: -10.00 ر.س",
		"البقشيش: 5.00 ر.س",
		"ملاحظات: بدون بصل",
		"رقم الطاولة: 7",
		// 75 - 10 + 5
		"المجموع النهائي: 70.00 ر.س",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		name    string
		phone   string
		message string
		want    string
	}{
		{
			name:    "local number gets country code",
			phone:   "0551234567",
			message: "hi",
			want:    "https://wa.me/9660551234567?text=hi",
		},
		{
			name:    "international number kept",
			phone:   "+966 55 123 4567",
			message: "hi",
			want:    "https://wa.me/966551234567?text=hi",
		},
		{
			name:    "message is escaped",
			phone:   "966551234567",
			message: "طلب جديد",
			want:    "https://wa.me/966551234567?text=%D8%B7%D9%84%D8%A8+%D8%AC%D8%AF%D9%8A%D8%AF",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URL(tt.phone, tt.message); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}
