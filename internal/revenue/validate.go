package revenue

import "github.com/shopspring/decimal"

// ValidationError is a single human-readable input failure. Field names the
// offending input in its wire form so callers can surface form-level errors.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string { return e.Message }

// Messages flattens a validation result into its message strings.
func Messages(errs []ValidationError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

var oneHundred = decimal.NewFromInt(100)

// Validate checks that a term carries the minimum fields needed for
// calculation. It has no side effects and never panics; an empty result means
// the term is safe to calculate on. Downstream calculators treat a non-empty
// result as "return zero/empty, do not raise".
func Validate(term *ServiceTerm) []ValidationError {
	if term == nil {
		return []ValidationError{{Field: "service", Message: "Service is required"}}
	}

	var errs []ValidationError
	if term.MRR == nil || term.MRR.IsNegative() {
		errs = append(errs, ValidationError{Field: "mrr", Message: "MRR is required"})
	}
	if term.TermMonths <= 0 {
		errs = append(errs, ValidationError{Field: "term_months", Message: "Term months is required"})
	}
	if term.BillingStart != nil && term.BillingEnd != nil {
		// Compare calendar dates, not instants: callers may pass dates
		// carrying a time-of-day.
		start, end := normalizeDate(term.BillingStart), normalizeDate(term.BillingEnd)
		if end.Before(*start) {
			errs = append(errs, ValidationError{Field: "billing_end_date", Message: "End date must be after or equal to start date"})
		}
	}
	if esc := term.AnnualEscalatorPercent; esc != nil {
		if esc.IsNegative() || esc.GreaterThan(oneHundred) {
			errs = append(errs, ValidationError{Field: "annual_escalator_percent", Message: "Annual escalator must be between 0 and 100"})
		}
	}
	return errs
}
