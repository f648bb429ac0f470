// Package core holds the restaurant domain model and the order
// analytics engine. Everything in this package is pure: no I/O, no
// ambient state, plain values in and out.
package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Money is an amount in halalas (1/100 SAR). Calculations always run on
// halalas; riyal floats exist only at the JSON and display boundaries.
type Money struct {
	Halalas int64
}

// MoneyFromSAR converts a riyal amount to Money with half-up rounding.
func MoneyFromSAR(v float64) Money {
	if v < 0 {
		return Money{Halalas: -int64(-v*100 + 0.5)}
	}
	return Money{Halalas: int64(v*100 + 0.5)}
}

// SAR returns the riyal value as a float64 for display purposes.
func (m Money) SAR() float64 {
	return float64(m.Halalas) / 100.0
}

// Format renders the amount as a Saudi Riyal string, e.g. "12.50 ر.س".
func (m Money) Format() string {
	return fmt.Sprintf("%.2f ر.س", m.SAR())
}

// MarshalJSON encodes Money as a riyal number, matching the wire shape
// the menu and order endpoints expose.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.SAR(), 'f', 2, 64)), nil
}

// UnmarshalJSON decodes a riyal number into halalas.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		m.Halalas = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	*m = MoneyFromSAR(v)
	return nil
}

// ParseDecimalToHalalas converts a decimal string to halalas with proper
// rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// performs half-up rounding on the third decimal place. Negative values
// are rejected; zero is allowed (tips and discounts default to zero).
func ParseDecimalToHalalas(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	// Take first two fractional digits; then half-up rounding on the third.
	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			frac += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				frac++
			}
		}
	}
	return iv*100 + frac, nil
}
