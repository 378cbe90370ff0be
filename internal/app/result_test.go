package app

import (
	"testing"
	"time"

	"revenue-tracker/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testService(termMonths int, billingStart, billingEnd time.Time) *core.Service {
	mrr := decimal.NewFromInt(1000)
	return &core.Service{
		ID:           1,
		Name:         "Dedicated Internet 1G",
		MRR:          &mrr,
		TermMonths:   termMonths,
		BillingStart: &billingStart,
		BillingEnd:   &billingEnd,
		Status:       core.ServiceStatusActive,
	}
}

func TestServiceResult_WarnsOnTermBillingMismatch(t *testing.T) {
	// 12-month term but billing dates spanning only six months.
	svc := testService(12,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	)

	res := serviceResult(svc)
	require.Empty(t, res.Errors)
	assert.Equal(t, []string{"Billing dates do not span the stated term length"}, res.Warnings)
}

func TestServiceResult_NoWarningWhenDatesSpanTerm(t *testing.T) {
	svc := testService(12,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC),
	)

	res := serviceResult(svc)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestServiceResult_MonthEndSlackDoesNotWarn(t *testing.T) {
	// End one day off the derived date stays within the predicate's slack.
	svc := testService(12,
		time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	)

	res := serviceResult(svc)
	assert.Empty(t, res.Warnings)
}
