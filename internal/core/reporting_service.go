package core

import (
	"context"
	"fmt"
	"sort"

	"revenue-tracker/internal/revenue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// RevenueSummary aggregates engine figures over a company's ACTIVE services.
// NetNewTotal additionally includes RENEWED and DEBOOKED rows, so it nets out
// the whole renewal/de-book chain.
type RevenueSummary struct {
	CompanyCode    string          `json:"company_code"`
	Currency       string          `json:"currency"`
	ActiveServices int             `json:"active_services"`
	TotalTCV       decimal.Decimal `json:"total_tcv"`
	TotalMRR       decimal.Decimal `json:"total_mrr"`
	TotalARR       decimal.Decimal `json:"total_arr"`
	NetNewTotal    decimal.Decimal `json:"net_new_total"`
}

// MonthlyRevenueLine is one calendar month of recognized revenue across all
// active services, summed from each service's monthly breakdown.
type MonthlyRevenueLine struct {
	Month      string          `json:"month"` // YYYY-MM
	Recognized decimal.Decimal `json:"recognized"`
	GAAP       decimal.Decimal `json:"gaap"`
	Services   int             `json:"services"`
}

// RevenueReport is the company-wide revenue view.
type RevenueReport struct {
	Summary RevenueSummary       `json:"summary"`
	Months  []MonthlyRevenueLine `json:"months"`
}

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService provides read-only revenue reporting. Figures are computed
// from the stored terms on every call rather than read from the persisted
// scalar columns, so reports stay correct even before a recalculation pass.
type ReportingService interface {
	GetRevenueReport(ctx context.Context, companyCode string) (*RevenueReport, error)
}

type reportingService struct {
	pool *pgxpool.Pool
}

func NewReportingService(pool *pgxpool.Pool) ReportingService {
	return &reportingService{pool: pool}
}

func (s *reportingService) GetRevenueReport(ctx context.Context, companyCode string) (*RevenueReport, error) {
	var companyID int
	var currency string
	err := s.pool.QueryRow(ctx,
		"SELECT id, base_currency FROM companies WHERE company_code = $1", companyCode,
	).Scan(&companyID, &currency)
	if err != nil {
		return nil, fmt.Errorf("company %s not found: %w", companyCode, err)
	}

	rows, err := s.pool.Query(ctx,
		"SELECT"+serviceColumns+" FROM services WHERE company_id = $1 ORDER BY id", companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query services for report: %w", err)
	}
	services, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Service, error) {
		var svc Service
		err := scanService(row, &svc)
		return svc, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan services for report: %w", err)
	}

	summary := RevenueSummary{
		CompanyCode: companyCode,
		Currency:    currency,
		TotalTCV:    decimal.Zero,
		TotalMRR:    decimal.Zero,
		TotalARR:    decimal.Zero,
		NetNewTotal: decimal.Zero,
	}
	type monthAgg struct {
		recognized decimal.Decimal
		gaap       decimal.Decimal
		services   int
	}
	months := make(map[string]*monthAgg)

	for i := range services {
		svc := &services[i]
		summary.NetNewTotal = summary.NetNewTotal.Add(svc.NetNewValue)
		if svc.Status != ServiceStatusActive {
			continue
		}

		calc := revenue.NewCalculator(svc.Term())
		summary.ActiveServices++
		summary.TotalTCV = summary.TotalTCV.Add(calc.TCV())
		summary.TotalMRR = summary.TotalMRR.Add(calc.MRR())
		summary.TotalARR = summary.TotalARR.Add(calc.ARR())

		for _, mv := range calc.MonthlyBreakdown() {
			agg, ok := months[mv.Month]
			if !ok {
				agg = &monthAgg{recognized: decimal.Zero, gaap: decimal.Zero}
				months[mv.Month] = agg
			}
			agg.recognized = agg.recognized.Add(mv.MRR)
			agg.gaap = agg.gaap.Add(mv.GAAPMRR)
			agg.services++
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	report := &RevenueReport{Summary: summary}
	for _, k := range keys {
		agg := months[k]
		report.Months = append(report.Months, MonthlyRevenueLine{
			Month:      k,
			Recognized: agg.recognized,
			GAAP:       agg.gaap,
			Services:   agg.services,
		})
	}
	return report, nil
}
