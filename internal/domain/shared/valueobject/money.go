package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents an amount of money in the smallest currency unit of a
// building (integer minor units). Fractional amounts never exist at rest;
// decimal arithmetic is used only transiently for weighted splits.
type Money struct {
	amount int64
}

// Zero is the zero money value
var Zero = Money{}

// NewMoney creates a Money from an amount in minor units
func NewMoney(minorUnits int64) Money {
	return Money{amount: minorUnits}
}

// NewMoneyFromDecimal creates a Money from a decimal amount of minor units.
// The decimal must be integral.
func NewMoneyFromDecimal(d decimal.Decimal) (Money, error) {
	if !d.IsInteger() {
		return Zero, fmt.Errorf("money amount must be integral minor units, got %s", d.String())
	}
	return Money{amount: d.IntPart()}, nil
}

// Amount returns the amount in minor units
func (m Money) Amount() int64 {
	return m.amount
}

// Decimal returns the amount as a decimal of minor units
func (m Money) Decimal() decimal.Decimal {
	return decimal.NewFromInt(m.amount)
}

// Add returns the sum of two amounts
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount + other.amount}
}

// Sub returns the difference of two amounts
func (m Money) Sub(other Money) Money {
	return Money{amount: m.amount - other.amount}
}

// Neg returns the negated amount
func (m Money) Neg() Money {
	return Money{amount: -m.amount}
}

// Abs returns the absolute amount
func (m Money) Abs() Money {
	if m.amount < 0 {
		return Money{amount: -m.amount}
	}
	return m
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount == 0
}

// IsPositive returns true if the amount is greater than zero
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative returns true if the amount is less than zero
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// GreaterThan returns true if m > other
func (m Money) GreaterThan(other Money) bool {
	return m.amount > other.amount
}

// GreaterThanOrEqual returns true if m >= other
func (m Money) GreaterThanOrEqual(other Money) bool {
	return m.amount >= other.amount
}

// LessThan returns true if m < other
func (m Money) LessThan(other Money) bool {
	return m.amount < other.amount
}

// Equal returns true if both amounts are equal
func (m Money) Equal(other Money) bool {
	return m.amount == other.amount
}

// DivFloor returns the amount divided by n, rounded toward zero,
// n must be positive.
func (m Money) DivFloor(n int64) Money {
	return Money{amount: m.amount / n}
}

// MulInt returns the amount multiplied by n
func (m Money) MulInt(n int64) Money {
	return Money{amount: m.amount * n}
}

// WeightedShare returns round(weight/totalWeight * amount) as a Money.
// totalWeight must be non-zero; the caller is responsible for validating
// weight sums before splitting.
func (m Money) WeightedShare(weight, totalWeight decimal.Decimal) Money {
	share := decimal.NewFromInt(m.amount).Mul(weight).Div(totalWeight).Round(0)
	return Money{amount: share.IntPart()}
}

// String returns the amount formatted as minor units
func (m Money) String() string {
	return fmt.Sprintf("%d", m.amount)
}
