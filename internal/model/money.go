package model

import (
	"database/sql/driver"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Money is an amount in minor units (hundredths).  It maps to a
// DECIMAL(10,2) column and is rendered with exactly two decimals.
type Money int64

// MoneyFromFloat rounds f to two decimals, halves away from zero.
func MoneyFromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

// Float returns the amount as a float64 in major units.
func (m Money) Float() float64 { return float64(m) / 100 }

// String formats the amount as "1234.50".
func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON encodes the amount as a decimal string so clients never see
// binary floating point artefacts.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) { return m.String(), nil }

// Scan implements sql.Scanner for DECIMAL columns, which the MySQL driver
// returns as []byte.
func (m *Money) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case nil:
		*m = 0
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	case float64:
		*m = MoneyFromFloat(v)
		return nil
	case int64:
		*m = Money(v * 100)
		return nil
	default:
		return fmt.Errorf("money: unsupported scan type %T", src)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("money: parse %q: %w", s, err)
	}
	*m = MoneyFromFloat(f)
	return nil
}
