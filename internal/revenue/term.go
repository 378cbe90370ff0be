// Package revenue computes contract-level revenue figures for sold services:
// Total Contract Value, MRR/ARR, GAAP-normalized MRR, month-by-month revenue
// and invoice schedules with day-level proration, and net-new comparisons
// between a service and the one it replaces.
//
// The package is pure: no I/O, no shared state, safe for concurrent use.
// Persistence of terms and of computed figures belongs to internal/core.
package revenue

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceTerm is the commercial-terms view of a service that the engine
// calculates from. It is an input record, not owned or mutated by the engine.
//
// Pointer fields distinguish "absent" from "zero": MRR must be present for a
// term to validate, while NRCs and AnnualEscalatorPercent default to zero and
// end dates default to start + TermMonths months - 1 day.
type ServiceTerm struct {
	MRR                    *decimal.Decimal
	TermMonths             int
	NRCs                   *decimal.Decimal
	AnnualEscalatorPercent *decimal.Decimal
	BillingStart           *time.Time
	BillingEnd             *time.Time
	RevRecStart            *time.Time
	RevRecEnd              *time.Time
}

// resolvedTerm is a ServiceTerm with all defaulting applied. Resolution
// happens exactly once at the start of a calculation rather than inline in
// the arithmetic.
type resolvedTerm struct {
	mrr       decimal.Decimal
	nrcs      decimal.Decimal
	escalator decimal.Decimal

	billingStart *time.Time
	billingEnd   *time.Time
	revRecStart  *time.Time
	revRecEnd    *time.Time
}

func (t *ServiceTerm) resolve() resolvedTerm {
	r := resolvedTerm{
		mrr:          derefDecimal(t.MRR),
		nrcs:         derefDecimal(t.NRCs),
		escalator:    derefDecimal(t.AnnualEscalatorPercent),
		billingStart: normalizeDate(t.BillingStart),
		billingEnd:   normalizeDate(t.BillingEnd),
		revRecStart:  normalizeDate(t.RevRecStart),
		revRecEnd:    normalizeDate(t.RevRecEnd),
	}
	if r.billingEnd == nil && r.billingStart != nil && t.TermMonths > 0 {
		end := defaultEndDate(*r.billingStart, t.TermMonths)
		r.billingEnd = &end
	}
	if r.revRecEnd == nil && r.revRecStart != nil && t.TermMonths > 0 {
		end := defaultEndDate(*r.revRecStart, t.TermMonths)
		r.revRecEnd = &end
	}
	return r
}

// scheduleStart returns the start of the revenue-recognition walk, preferring
// rev-rec dates and falling back to billing dates field by field.
func (r resolvedTerm) scheduleStart() *time.Time {
	if r.revRecStart != nil {
		return r.revRecStart
	}
	return r.billingStart
}

func (r resolvedTerm) scheduleEnd() *time.Time {
	if r.revRecEnd != nil {
		return r.revRecEnd
	}
	return r.billingEnd
}

// TermMatchesBillingDates reports whether the billing period spans exactly
// TermMonths calendar months (end = start + TermMonths months - 1 day), with
// a ±1 day tolerance to absorb month-end rounding. Terms with no explicit
// billing end date match trivially since the end is derived from the term.
func (t *ServiceTerm) TermMatchesBillingDates() bool {
	if t == nil || t.BillingStart == nil || t.BillingEnd == nil || t.TermMonths <= 0 {
		return true
	}
	expected := defaultEndDate(*normalizeDate(t.BillingStart), t.TermMonths)
	actual := *normalizeDate(t.BillingEnd)
	diff := actual.Sub(expected)
	if diff < 0 {
		diff = -diff
	}
	return diff <= 24*time.Hour
}

// defaultEndDate returns start + termMonths calendar months - 1 day.
func defaultEndDate(start time.Time, termMonths int) time.Time {
	return start.AddDate(0, termMonths, -1)
}

// normalizeDate strips the time-of-day and location, leaving a UTC-midnight
// calendar date so day arithmetic is exact.
func normalizeDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func endOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), daysInMonth(t.Year(), t.Month()), 0, 0, 0, 0, time.UTC)
}

func maxDate(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minDate(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

// daysBetweenInclusive counts calendar days from a through b, both included.
// Inputs must be UTC-midnight dates.
func daysBetweenInclusive(a, b time.Time) int {
	return int(b.Sub(a).Hours()/24) + 1
}
