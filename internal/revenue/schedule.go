package revenue

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyValue is one calendar month of the revenue-recognition breakdown.
// GAAPMRR is the contract-level average from Calculator.GAAPMRR, repeated
// uniformly; only MRR and ARR vary with escalation.
type MonthlyValue struct {
	Month   string          `json:"month"` // YYYY-MM
	MRR     decimal.Decimal `json:"mrr"`
	ARR     decimal.Decimal `json:"arr"`
	GAAPMRR decimal.Decimal `json:"gaap_mrr"`
}

// MonthlyInvoice is one calendar month of the billing schedule, with the
// service period clipped to that month and the amount prorated by days.
type MonthlyInvoice struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	MonthName     string          `json:"month_name"`
	BillingStart  time.Time       `json:"billing_start"`
	BillingEnd    time.Time       `json:"billing_end"`
	DaysInMonth   int             `json:"days_in_month"`
	DaysBilled    int             `json:"days_billed"`
	MRRRate       decimal.Decimal `json:"mrr_rate"`
	InvoiceAmount decimal.Decimal `json:"invoice_amount"`
}

// BillingPeriod is a MonthlyInvoice without dollar amounts, used for
// proration auditing. ProrationFactor is days_billed / days_in_month rounded
// to six decimal places.
type BillingPeriod struct {
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	MonthName       string          `json:"month_name"`
	BillingStart    time.Time       `json:"billing_start"`
	BillingEnd      time.Time       `json:"billing_end"`
	DaysInMonth     int             `json:"days_in_month"`
	DaysBilled      int             `json:"days_billed"`
	ProrationFactor decimal.Decimal `json:"proration_factor"`
}

// MonthlyBreakdown walks calendar months from the rev-rec start to the
// rev-rec end inclusive (falling back to billing dates field by field) and
// returns one entry per month touched, applying the same
// escalate-at-year-boundary rule as TCV. Empty when the term is invalid or
// no start/end can be resolved.
func (c *Calculator) MonthlyBreakdown() []MonthlyValue {
	if !c.Valid() {
		return nil
	}
	r := c.term.resolve()
	start, end := r.scheduleStart(), r.scheduleEnd()
	if start == nil || end == nil || end.Before(*start) {
		return nil
	}

	factor := escalationFactor(r.escalator)
	gaap := c.GAAPMRR()
	current := r.mrr

	var out []MonthlyValue
	last := startOfMonth(*end)
	month := 1
	for cursor := startOfMonth(*start); !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		if month > 1 && (month-1)%12 == 0 {
			current = current.Mul(factor)
		}
		out = append(out, MonthlyValue{
			Month:   cursor.Format("2006-01"),
			MRR:     current,
			ARR:     current.Mul(twelve),
			GAAPMRR: gaap,
		})
		month++
	}
	return out
}

// MonthlyInvoices walks calendar months from the billing start through the
// month containing the billing end, clipping each month to the intersection
// of the service period and the calendar month. Amounts are prorated by
// days billed over actual days in the month (leap years included) and
// rounded to two decimal places.
//
// Escalation here is keyed to elapsed calendar months since the billing
// start month (rate steps at the start of calendar months 13, 25, ...),
// independent of where within a month billing starts. For mid-month starts
// this can disagree with the term-position walk used by TCV and
// MonthlyBreakdown; the two rules are kept distinct deliberately.
func (c *Calculator) MonthlyInvoices() []MonthlyInvoice {
	if !c.Valid() {
		return nil
	}
	r := c.term.resolve()
	if r.billingStart == nil || r.billingEnd == nil || r.billingEnd.Before(*r.billingStart) {
		return nil
	}

	factor := escalationFactor(r.escalator)
	rate := r.mrr

	var out []MonthlyInvoice
	monthsElapsed := 0
	last := startOfMonth(*r.billingEnd)
	for cursor := startOfMonth(*r.billingStart); !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		if monthsElapsed > 0 && monthsElapsed%12 == 0 {
			rate = rate.Mul(factor)
		}

		dim := daysInMonth(cursor.Year(), cursor.Month())
		clipStart := maxDate(*r.billingStart, cursor)
		clipEnd := minDate(*r.billingEnd, endOfMonth(cursor))
		daysBilled := daysBetweenInclusive(clipStart, clipEnd)

		amount := rate.
			Mul(decimal.NewFromInt(int64(daysBilled))).
			Div(decimal.NewFromInt(int64(dim))).
			Round(2)

		out = append(out, MonthlyInvoice{
			Year:          cursor.Year(),
			Month:         int(cursor.Month()),
			MonthName:     cursor.Month().String(),
			BillingStart:  clipStart,
			BillingEnd:    clipEnd,
			DaysInMonth:   dim,
			DaysBilled:    daysBilled,
			MRRRate:       rate,
			InvoiceAmount: amount,
		})
		monthsElapsed++
	}
	return out
}

// BillingPeriods is the month walk of MonthlyInvoices without escalation or
// dollar amounts, reporting only proration factors.
func (c *Calculator) BillingPeriods() []BillingPeriod {
	if !c.Valid() {
		return nil
	}
	r := c.term.resolve()
	if r.billingStart == nil || r.billingEnd == nil || r.billingEnd.Before(*r.billingStart) {
		return nil
	}

	var out []BillingPeriod
	last := startOfMonth(*r.billingEnd)
	for cursor := startOfMonth(*r.billingStart); !cursor.After(last); cursor = cursor.AddDate(0, 1, 0) {
		dim := daysInMonth(cursor.Year(), cursor.Month())
		clipStart := maxDate(*r.billingStart, cursor)
		clipEnd := minDate(*r.billingEnd, endOfMonth(cursor))
		daysBilled := daysBetweenInclusive(clipStart, clipEnd)

		out = append(out, BillingPeriod{
			Year:         cursor.Year(),
			Month:        int(cursor.Month()),
			MonthName:    cursor.Month().String(),
			BillingStart: clipStart,
			BillingEnd:   clipEnd,
			DaysInMonth:  dim,
			DaysBilled:   daysBilled,
			ProrationFactor: decimal.NewFromInt(int64(daysBilled)).
				Div(decimal.NewFromInt(int64(dim))).
				Round(6),
		})
	}
	return out
}

// TotalInvoiced sums the invoice amounts across MonthlyInvoices.
func (c *Calculator) TotalInvoiced() decimal.Decimal {
	total := decimal.Zero
	for _, inv := range c.MonthlyInvoices() {
		total = total.Add(inv.InvoiceAmount)
	}
	return total
}

// ProratePartialMonth returns the charge for the partial month a service
// starts in: MRR * days remaining in the starting month / days in that month.
// A term with no billing start date returns the full base MRR, since there is
// nothing to prorate against.
func (c *Calculator) ProratePartialMonth() decimal.Decimal {
	if !c.Valid() {
		return decimal.Zero
	}
	r := c.term.resolve()
	if r.billingStart == nil {
		return r.mrr
	}
	start := *r.billingStart
	dim := daysInMonth(start.Year(), start.Month())
	remaining := dim - start.Day() + 1
	return r.mrr.
		Mul(decimal.NewFromInt(int64(remaining))).
		Div(decimal.NewFromInt(int64(dim)))
}
