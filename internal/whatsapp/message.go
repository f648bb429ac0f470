// Package whatsapp renders checkout orders as Arabic WhatsApp messages
// and builds click-to-chat links for the restaurant's number.
package whatsapp

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"mataam/internal/core"
)

// OrderMessage renders the full Arabic order summary the customer sends
// to the restaurant. The layout is fixed; every optional field collapses
// to nothing when absent.
func OrderMessage(o core.Order, restaurantName string, now time.Time) string {
	var items strings.Builder
	for i, l := range o.Lines {
		if i > 0 {
			items.WriteString("\n")
		}
		items.WriteString("• " + l.MenuItemName)
		if l.MenuItemNameEn != "" {
			items.WriteString(" (" + l.MenuItemNameEn + ")")
		}
		fmt.Fprintf(&items, " × %d = %s", l.Quantity, l.Revenue().Format())
	}

	var customer []string
	if o.CustomerInfo.Name != "" {
		customer = append(customer, "الاسم: "+o.CustomerInfo.Name)
	}
	if o.CustomerInfo.Phone != "" {
		customer = append(customer, "الهاتف: "+o.CustomerInfo.Phone)
	}
	if o.CustomerInfo.TableNumber != "" {
		customer = append(customer, "رقم الطاولة: "+o.CustomerInfo.TableNumber)
	}
	if o.CustomerInfo.Address != "" {
		customer = append(customer, "العنوان: "+o.CustomerInfo.Address)
	}

	var notes string
	if o.Notes != "" {
		notes = "\nملاحظات: " + o.Notes
	}
	var discount string
	if o.DiscountAmount.Halalas > 0 {
		discount = "\nالخصم: -" + o.DiscountAmount.Format()
	}
	var tips string
	if o.Tips.Halalas > 0 {
		tips = "\nالبقشيش: " + o.Tips.Format()
	}

	return fmt.Sprintf(`🍽️ طلب جديد من موقع %[1]s

رقم الطلب: %[2]s
التاريخ: %[3]s

الطلبات:
%[4]s

المجموع: %[5]s%[6]s%[7]s
المجموع النهائي: %[8]s

تفاصيل العميل:
%[9]s%[10]s

---
تم إنشاء هذا الطلب من موقع %[1]s
شكراً لاختيارك مطعم %[1]s! 🎉`,
		restaurantName,
		o.OrderNumber,
		now.Format("2006-01-02 15:04"),
		items.String(),
		o.TotalAmount.Format(),
		discount,
		tips,
		o.NetRevenue().Format(),
		strings.Join(customer, "\n"),
		notes,
	)
}

// URL builds a wa.me click-to-chat link. Non-digits are stripped from
// the phone number and the Saudi country code is prepended when missing.
func URL(phoneNumber, message string) string {
	var digits strings.Builder
	for _, r := range phoneNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()
	if !strings.HasPrefix(phone, "966") {
		phone = "966" + phone
	}
	return "https://wa.me/" + phone + "?text=" + url.QueryEscape(message)
}
