package yearend

import "github.com/shopspring/decimal"

// Remaining is total minus used, floored at zero.
func Remaining(total, used decimal.Decimal) decimal.Decimal {
	return decimal.Max(total.Sub(used), decimal.Zero)
}

// CarryOver caps the non-negative leftover of the closing year at maxCarry.
// A negative cap is treated as zero so nothing is ever carried below zero.
func CarryOver(prevRemaining, maxCarry decimal.Decimal) decimal.Decimal {
	leftover := decimal.Max(prevRemaining, decimal.Zero)
	limit := decimal.Max(maxCarry, decimal.Zero)
	return decimal.Min(leftover, limit)
}

func NewTotal(base, carried decimal.Decimal) decimal.Decimal {
	return base.Add(carried)
}
