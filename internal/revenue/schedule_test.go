package revenue_test

import (
	"testing"
	"time"

	"revenue-tracker/internal/revenue"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthlyInvoices_PartialMonthProration(t *testing.T) {
	// Service runs 2025-01-14 through 2025-04-13 at 1000/month, no escalation.
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   3,
		BillingStart: datep(2025, time.January, 14),
		BillingEnd:   datep(2025, time.April, 13),
	})
	invoices := c.MonthlyInvoices()
	require.Len(t, invoices, 4)

	wantDays := []int{18, 28, 31, 13}
	for i, inv := range invoices {
		assert.Equal(t, wantDays[i], inv.DaysBilled, "month %d", i+1)
	}

	// January: 1000 * 18/31 = 580.6451... rounded to 580.65.
	assertDecimal(t, "580.65", invoices[0].InvoiceAmount)
	assert.Equal(t, 2025, invoices[0].Year)
	assert.Equal(t, 1, invoices[0].Month)
	assert.Equal(t, "January", invoices[0].MonthName)
	assert.Equal(t, 31, invoices[0].DaysInMonth)

	// Clipping: February is fully inside the service period.
	feb := invoices[1]
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC), feb.BillingStart)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC), feb.BillingEnd)
	assertDecimal(t, "1000.00", feb.InvoiceAmount)

	// April is clipped at the service end.
	apr := invoices[3]
	assert.Equal(t, time.Date(2025, time.April, 13, 0, 0, 0, 0, time.UTC), apr.BillingEnd)
	assertDecimal(t, "433.33", apr.InvoiceAmount) // 1000 * 13/30
}

func TestMonthlyInvoices_EscalatesAtCalendarMonth13(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:                    decp("1000"),
		TermMonths:             24,
		AnnualEscalatorPercent: decp("3"),
		BillingStart:           datep(2025, time.January, 1),
	})
	invoices := c.MonthlyInvoices()
	require.Len(t, invoices, 24)

	assertDecimal(t, "1000", invoices[11].MRRRate) // Dec 2025
	assertDecimal(t, "1030", invoices[12].MRRRate) // Jan 2026
	assertDecimal(t, "1030", invoices[23].MRRRate) // Dec 2026
}

// A mid-month start exposes the documented divergence between the two
// escalation rules: invoices step the rate at the start of the 13th calendar
// month even though the service's own 12th term month still spans into it.
func TestMonthlyInvoices_EscalationKeyedToCalendarNotTermPosition(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:                    decp("1000"),
		TermMonths:             13,
		AnnualEscalatorPercent: decp("3"),
		BillingStart:           datep(2025, time.January, 14),
	})
	invoices := c.MonthlyInvoices()
	require.Len(t, invoices, 14) // Jan 2025 .. Feb 2026

	// Jan 2026 bills at the escalated rate from day one, including the
	// Jan 1-13 span that the term-position walk would still price at base.
	assertDecimal(t, "1030", invoices[12].MRRRate)
	assert.False(t, c.TotalInvoiced().Equal(c.TCV().Round(2)))
}

func TestBillingPeriods_LeapYearFebruary(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   1,
		BillingStart: datep(2024, time.February, 1),
		BillingEnd:   datep(2024, time.February, 29),
	})
	periods := c.BillingPeriods()
	require.Len(t, periods, 1)

	assert.Equal(t, 29, periods[0].DaysInMonth)
	assert.Equal(t, 29, periods[0].DaysBilled)
	assertDecimal(t, "1", periods[0].ProrationFactor)
}

func TestBillingPeriods_ProrationFactorRounding(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   1,
		BillingStart: datep(2025, time.March, 15),
		BillingEnd:   datep(2025, time.March, 31),
	})
	periods := c.BillingPeriods()
	require.Len(t, periods, 1)

	// 17/31 = 0.548387096... rounded to six places.
	assert.Equal(t, 17, periods[0].DaysBilled)
	assertDecimal(t, "0.548387", periods[0].ProrationFactor)
}

func TestTotalInvoiced_SumsInvoiceAmounts(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   3,
		BillingStart: datep(2025, time.February, 1),
		BillingEnd:   datep(2025, time.April, 30),
	})
	invoices := c.MonthlyInvoices()
	require.Len(t, invoices, 3)

	want := decimal.Zero
	for _, inv := range invoices {
		want = want.Add(inv.InvoiceAmount)
	}
	assert.True(t, want.Equal(c.TotalInvoiced()))
	assertDecimal(t, "3000.00", c.TotalInvoiced())
}

func TestProratePartialMonth(t *testing.T) {
	// Start day 15 of a 30-day month: 3000 * 16/30 = 1600.
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("3000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.April, 15),
	})
	assertDecimal(t, "1600", c.ProratePartialMonth())

	// First-of-month start is a full month.
	c = revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("3000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.April, 1),
	})
	assertDecimal(t, "3000", c.ProratePartialMonth())

	// No billing start: nothing to prorate against.
	c = revenue.NewCalculator(term("3000", 12, "0", "0"))
	assertDecimal(t, "3000", c.ProratePartialMonth())
}

func TestMonthlyBreakdown_PrefersRevRecDates(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   6,
		BillingStart: datep(2025, time.January, 1),
		BillingEnd:   datep(2025, time.June, 30),
		RevRecStart:  datep(2025, time.March, 1),
		RevRecEnd:    datep(2025, time.August, 31),
	})
	breakdown := c.MonthlyBreakdown()
	require.Len(t, breakdown, 6)
	assert.Equal(t, "2025-03", breakdown[0].Month)
	assert.Equal(t, "2025-08", breakdown[5].Month)
}

func TestMonthlyBreakdown_GAAPMRRIsConstantAcrossMonths(t *testing.T) {
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:                    decp("1000"),
		TermMonths:             24,
		AnnualEscalatorPercent: decp("4"),
		RevRecStart:            datep(2025, time.January, 1),
	})
	breakdown := c.MonthlyBreakdown()
	require.Len(t, breakdown, 24)

	gaap := c.GAAPMRR()
	for _, mv := range breakdown {
		assert.True(t, gaap.Equal(mv.GAAPMRR))
		assert.True(t, mv.ARR.Equal(mv.MRR.Mul(decimal.NewFromInt(12))))
	}
	// Escalation shows up in the per-month MRR, not in the GAAP average.
	assert.True(t, breakdown[23].MRR.GreaterThan(breakdown[0].MRR))
}

func TestMonthlyBreakdown_MissingDatesReturnsEmpty(t *testing.T) {
	c := revenue.NewCalculator(term("1000", 12, "0", "0"))
	assert.Empty(t, c.MonthlyBreakdown())
	assert.Empty(t, c.MonthlyInvoices())
	assert.Empty(t, c.BillingPeriods())
}

func TestDefaultEndDates(t *testing.T) {
	// End dates default to start + term months - 1 day.
	c := revenue.NewCalculator(&revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.January, 1),
	})
	invoices := c.MonthlyInvoices()
	require.Len(t, invoices, 12)
	last := invoices[11]
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), last.BillingEnd)
}

func TestTermMatchesBillingDates(t *testing.T) {
	exact := &revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.January, 1),
		BillingEnd:   datep(2025, time.December, 31),
	}
	assert.True(t, exact.TermMatchesBillingDates())

	// One day of slack either way is tolerated for month-end rounding.
	slack := &revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.January, 1),
		BillingEnd:   datep(2026, time.January, 1),
	}
	assert.True(t, slack.TermMatchesBillingDates())

	off := &revenue.ServiceTerm{
		MRR:          decp("1000"),
		TermMonths:   12,
		BillingStart: datep(2025, time.January, 1),
		BillingEnd:   datep(2026, time.March, 31),
	}
	assert.False(t, off.TermMatchesBillingDates())
}
