package revenue

import "github.com/shopspring/decimal"

// NetNewValue returns the incremental TCV of current relative to the term it
// replaces, for renewal/upgrade/downgrade workflows. A nil original means the
// entire contract value is net new. Negative results represent downgrades and
// are expected output, not an error. Invalid terms contribute zero on either
// side of the subtraction.
func NetNewValue(current, original *ServiceTerm) decimal.Decimal {
	currentTCV := NewCalculator(current).TCV()
	if original == nil {
		return currentTCV
	}
	return currentTCV.Sub(NewCalculator(original).TCV())
}
