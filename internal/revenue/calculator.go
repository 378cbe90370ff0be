package revenue

import "github.com/shopspring/decimal"

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// Calculator computes revenue figures for one service term. Construction
// validates the term exactly once; every method on an invalid calculator
// degrades to zero (or an empty slice) instead of raising, so callers may
// invoke any method without guarding it and inspect Errors for diagnostics.
//
// The engine places no upper bound on TermMonths. Callers feeding untrusted
// input are responsible for clamping pathological term lengths before
// constructing a Calculator.
type Calculator struct {
	term *ServiceTerm
	errs []ValidationError
}

// NewCalculator validates term and returns a calculator over it. The term is
// treated as immutable for the calculator's lifetime.
func NewCalculator(term *ServiceTerm) *Calculator {
	return &Calculator{term: term, errs: Validate(term)}
}

// Valid reports whether the term passed input validation.
func (c *Calculator) Valid() bool { return len(c.errs) == 0 }

// Errors returns the validation failures found at construction, empty when
// the term is valid.
func (c *Calculator) Errors() []ValidationError { return c.errs }

// escalationFactor returns the yearly multiplier, 1 + escalator/100.
func escalationFactor(escalator decimal.Decimal) decimal.Decimal {
	return one.Add(escalator.Div(oneHundred))
}

// TCV returns the total contract value: every month's recurring charge with
// annual stepped escalation, plus non-recurring charges.
//
// Escalation is annual and stepped, never compounded monthly: the rate is
// constant through months 1-12, multiplied once entering month 13, again
// entering month 25, and so on. The multiplication happens before that
// month's revenue is accumulated.
func (c *Calculator) TCV() decimal.Decimal {
	if !c.Valid() {
		return decimal.Zero
	}
	r := c.term.resolve()
	factor := escalationFactor(r.escalator)
	current := r.mrr
	total := decimal.Zero
	for month := 1; month <= c.term.TermMonths; month++ {
		if month > 1 && (month-1)%12 == 0 {
			current = current.Mul(factor)
		}
		total = total.Add(current)
	}
	return total.Add(r.nrcs)
}

// MRR returns the base monthly recurring revenue, unescalated.
func (c *Calculator) MRR() decimal.Decimal {
	if !c.Valid() {
		return decimal.Zero
	}
	return derefDecimal(c.term.MRR)
}

// ARR returns annual recurring revenue, MRR * 12. Escalation never affects it.
func (c *Calculator) ARR() decimal.Decimal {
	return c.MRR().Mul(twelve)
}

// GAAPMRR returns (TCV - NRCs) / TermMonths: the flat accounting-period
// average that smooths escalation over the whole term. It is a distinct
// metric from MRR, which stays at its unescalated base value.
func (c *Calculator) GAAPMRR() decimal.Decimal {
	if !c.Valid() || c.term.TermMonths == 0 {
		return decimal.Zero
	}
	r := c.term.resolve()
	months := decimal.NewFromInt(int64(c.term.TermMonths))
	return c.TCV().Sub(r.nrcs).Div(months)
}

// CalculationResult bundles the contract-level figures plus the month-by-month
// breakdown for one term. Results are computed fresh per call and are not
// persisted by the engine.
type CalculationResult struct {
	TCV           decimal.Decimal `json:"tcv"`
	MRR           decimal.Decimal `json:"mrr"`
	ARR           decimal.Decimal `json:"arr"`
	GAAPMRR       decimal.Decimal `json:"gaap_mrr"`
	MonthlyValues []MonthlyValue  `json:"monthly_values"`
}

// Result computes the full calculation result for the term.
func (c *Calculator) Result() *CalculationResult {
	return &CalculationResult{
		TCV:           c.TCV(),
		MRR:           c.MRR(),
		ARR:           c.ARR(),
		GAAPMRR:       c.GAAPMRR(),
		MonthlyValues: c.MonthlyBreakdown(),
	}
}
