/*
Package generic provides the domain-agnostic building blocks of the leave
composer.

PURPOSE:
  Leave is counted in days with half-day precision. Everything in here is
  independent of leave categories, carts or calendars: dates, quantities,
  greedy capacity distribution and the error vocabulary.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A quantity of days (e.g., 4.5 days)
  - HalfDay / half-day units: the smallest bookable quantity

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 0.5 + 0.5 is exactly 1
  2. Purity: Nothing here performs I/O or keeps hidden state

USAGE:
  amount := generic.Days(4.5)
  amount.HalfDayUnits() // 9

SEE ALSO:
  - time.go: Calendar dates and workday counting
  - distributor.go: Greedy allocation across capacity buckets
  - errors.go: Sentinel and structured errors
*/
package generic

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity of days
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays Unit = "days"
)

var half = decimal.NewFromFloat(0.5)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromInt(value int, unit Unit) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value)), Unit: unit}
}

// Days is shorthand for NewAmount(value, UnitDays).
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// HalfDays builds an amount from a count of half days.
func HalfDays(n int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(n)).Mul(half), Unit: UnitDays}
}

// ZeroDays is the empty quantity.
func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}
func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// NonNegative clamps negative amounts to zero.
func (a Amount) NonNegative() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// HalfDayUnits converts the amount to whole half days, rounding to nearest.
func (a Amount) HalfDayUnits() int {
	return int(a.Value.Mul(decimal.NewFromInt(2)).Round(0).IntPart())
}

// FloorHalfDays rounds down to a whole number of half days, so 2.08 becomes 2
// and 2.75 becomes 2.5.
func (a Amount) FloorHalfDays() Amount {
	two := decimal.NewFromInt(2)
	return Amount{Value: a.Value.Mul(two).Floor().Div(two), Unit: a.Unit}
}

// Float64 is for display only.
func (a Amount) Float64() float64 {
	f, _ := a.Value.Float64()
	return f
}

func (a Amount) String() string { return a.Value.String() }

// MarshalJSON renders amounts as plain JSON numbers of days.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Value.String()), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*a = Amount{Value: d, Unit: UnitDays}
	return nil
}

// Sum adds up amounts, starting from zero days.
func Sum(amounts ...Amount) Amount {
	total := ZeroDays()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
