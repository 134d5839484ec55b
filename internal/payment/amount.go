package payment

import "github.com/shopspring/decimal"

// The gateway wants amounts in its configured minor unit; the ledger always
// stores the human-facing major unit. The two conversions must invert each
// other exactly or the displayed amount drifts from what was charged.

// ToMinorUnits converts a major-unit amount to the gateway's integer
// representation. unit is a positive multiplier from configuration
// (1 = amounts are already minor units, 100 = lari to tetri).
func ToMinorUnits(amount decimal.Decimal, unit int64) int64 {
	return amount.Mul(decimal.NewFromInt(unit)).IntPart()
}

// ToMajorUnits is the exact inverse of ToMinorUnits.
func ToMajorUnits(minor int64, unit int64) decimal.Decimal {
	return decimal.NewFromInt(minor).Div(decimal.NewFromInt(unit))
}
