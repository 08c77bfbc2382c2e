package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// ChangePercentage combines a current/previous pair into a one-decimal
// percentage change. Both zero yields 0; growth from zero has no defined
// percentage and yields nil, which renders as "new" rather than a number.
func ChangePercentage(current, previous decimal.Decimal) *float64 {
	if previous.IsZero() {
		if current.IsZero() {
			zero := 0.0
			return &zero
		}
		return nil
	}
	pct := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Round(1)
	f, _ := pct.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
