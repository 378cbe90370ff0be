package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"revenue-tracker/internal/cache"
	"revenue-tracker/internal/core"
	"revenue-tracker/internal/revenue"
)

// revenueCacheTTL bounds staleness for cached revenue payloads; the cache key
// already includes the row's updated_at, so the TTL only limits growth.
const revenueCacheTTL = 24 * time.Hour

type appService struct {
	customers core.CustomerService
	orders    core.OrderService
	services  core.ServiceService
	reporting core.ReportingService
	cache     cache.Cache // nil disables caching
}

// NewAppService constructs an appService that satisfies ApplicationService.
// resultCache may be nil to disable revenue-payload caching.
func NewAppService(
	customers core.CustomerService,
	orders core.OrderService,
	services core.ServiceService,
	reporting core.ReportingService,
	resultCache cache.Cache,
) ApplicationService {
	return &appService{
		customers: customers,
		orders:    orders,
		services:  services,
		reporting: reporting,
		cache:     resultCache,
	}
}

// ── Companies & customers ────────────────────────────────────────────────────

func (s *appService) ListCompanies(ctx context.Context) (*CompanyListResult, error) {
	companies, err := s.customers.GetCompanies(ctx)
	if err != nil {
		return nil, err
	}
	return &CompanyListResult{Companies: companies}, nil
}

func (s *appService) ListCustomers(ctx context.Context, companyCode string) (*CustomerListResult, error) {
	customers, err := s.customers.GetCustomers(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return &CustomerListResult{Customers: customers}, nil
}

func (s *appService) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error) {
	customer, err := s.customers.CreateCustomer(ctx, req.CompanyCode, req.Code, req.Name,
		req.Email, req.Phone, req.Address, req.PaymentTermsDays)
	if err != nil {
		return nil, err
	}
	return &CustomerResult{Customer: customer}, nil
}

// ── Orders ───────────────────────────────────────────────────────────────────

func (s *appService) ListOrders(ctx context.Context, companyCode string, status *string) (*OrderListResult, error) {
	orders, err := s.orders.GetOrders(ctx, companyCode, status)
	if err != nil {
		return nil, err
	}
	return &OrderListResult{Orders: orders, CompanyCode: companyCode}, nil
}

func (s *appService) GetOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref, companyCode)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *appService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	inputs := make([]core.ServiceInput, len(req.Services))
	for i, line := range req.Services {
		input, err := serviceInput(line)
		if err != nil {
			return nil, fmt.Errorf("service %d: %w", i+1, err)
		}
		inputs[i] = input
	}

	orderDate := req.OrderDate
	if orderDate == "" {
		orderDate = time.Now().Format("2006-01-02")
	}

	order, err := s.orders.CreateOrder(ctx, req.CompanyCode, req.CustomerCode, req.Currency,
		orderDate, inputs, req.Notes)
	if err != nil {
		return nil, err
	}
	return orderResult(order), nil
}

func (s *appService) BookOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref, companyCode)
	if err != nil {
		return nil, err
	}
	booked, err := s.orders.BookOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return orderResult(booked), nil
}

func (s *appService) CancelOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error) {
	order, err := s.resolveOrder(ctx, ref, companyCode)
	if err != nil {
		return nil, err
	}
	cancelled, err := s.orders.CancelOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return orderResult(cancelled), nil
}

// resolveOrder accepts either a numeric order ID or an order number string.
func (s *appService) resolveOrder(ctx context.Context, ref, companyCode string) (*core.SalesOrder, error) {
	if id, err := strconv.Atoi(ref); err == nil {
		return s.orders.GetOrder(ctx, id)
	}
	return s.orders.GetOrderByNumber(ctx, companyCode, ref)
}

// ── Services ─────────────────────────────────────────────────────────────────

func (s *appService) GetService(ctx context.Context, serviceID int) (*ServiceResult, error) {
	svc, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return serviceResult(svc), nil
}

func (s *appService) UpdateService(ctx context.Context, serviceID int, req ServiceRequest) (*ServiceResult, error) {
	input, err := serviceInput(req)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.UpdateService(ctx, serviceID, input)
	if err != nil {
		return nil, err
	}
	return serviceResult(svc), nil
}

func (s *appService) RenewService(ctx context.Context, serviceID int, req ServiceRequest) (*ServiceResult, error) {
	input, err := serviceInput(req)
	if err != nil {
		return nil, err
	}
	svc, err := s.services.RenewService(ctx, serviceID, input)
	if err != nil {
		return nil, err
	}
	return serviceResult(svc), nil
}

func (s *appService) DebookService(ctx context.Context, serviceID int) (*ServiceResult, error) {
	svc, err := s.services.DebookService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return serviceResult(svc), nil
}

func (s *appService) GetServiceRevenue(ctx context.Context, serviceID int) (*ServiceRevenueResult, error) {
	svc, err := s.services.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	// Key on updated_at so stale entries die with the row version.
	key := fmt.Sprintf("svc-revenue:%d:%d", svc.ID, svc.UpdatedAt.UnixNano())
	if s.cache != nil {
		if payload, ok := s.cache.Get(ctx, key); ok {
			var cached ServiceRevenueResult
			if err := json.Unmarshal([]byte(payload), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	calc := revenue.NewCalculator(svc.Term())
	result := &ServiceRevenueResult{
		ServiceID:      svc.ID,
		Result:         calc.Result(),
		Invoices:       calc.MonthlyInvoices(),
		BillingPeriods: calc.BillingPeriods(),
		TotalInvoiced:  calc.TotalInvoiced(),
		Errors:         revenue.Messages(calc.Errors()),
		Warnings:       termWarnings(svc.Term()),
	}

	if s.cache != nil {
		if payload, err := json.Marshal(result); err == nil {
			_ = s.cache.Set(ctx, key, string(payload), revenueCacheTTL)
		}
	}
	return result, nil
}

// ── Reports & maintenance ────────────────────────────────────────────────────

func (s *appService) GetRevenueReport(ctx context.Context, companyCode string) (*RevenueReportResult, error) {
	report, err := s.reporting.GetRevenueReport(ctx, companyCode)
	if err != nil {
		return nil, err
	}
	return &RevenueReportResult{Report: report}, nil
}

func (s *appService) RecalculateCompany(ctx context.Context, companyCode string) (int, error) {
	return s.services.RecalculateAll(ctx, companyCode)
}

// ── Conversions ──────────────────────────────────────────────────────────────

func serviceInput(req ServiceRequest) (core.ServiceInput, error) {
	input := core.ServiceInput{
		Name:                   req.Name,
		Units:                  req.Units,
		UnitPrice:              req.UnitPrice,
		MRR:                    req.MRR,
		TermMonths:             req.TermMonths,
		NRCs:                   req.NRCs,
		AnnualEscalatorPercent: req.AnnualEscalatorPercent,
	}
	for _, d := range []struct {
		raw  string
		dest **time.Time
		name string
	}{
		{req.BillingStartDate, &input.BillingStart, "billing_start_date"},
		{req.BillingEndDate, &input.BillingEnd, "billing_end_date"},
		{req.RevRecStartDate, &input.RevRecStart, "rev_rec_start_date"},
		{req.RevRecEndDate, &input.RevRecEnd, "rev_rec_end_date"},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.Parse("2006-01-02", d.raw)
		if err != nil {
			return core.ServiceInput{}, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD", d.name, d.raw)
		}
		*d.dest = &parsed
	}
	return input, nil
}

func orderResult(order *core.SalesOrder) *OrderResult {
	res := &OrderResult{Order: order}
	for i := range order.Services {
		svc := &order.Services[i]
		if msgs := revenue.Messages(revenue.Validate(svc.Term())); len(msgs) > 0 {
			if res.ServiceErrors == nil {
				res.ServiceErrors = make(map[int][]string)
			}
			res.ServiceErrors[svc.ID] = msgs
		}
	}
	return res
}

func serviceResult(svc *core.Service) *ServiceResult {
	term := svc.Term()
	return &ServiceResult{
		Service:  svc,
		Errors:   revenue.Messages(revenue.Validate(term)),
		Warnings: termWarnings(term),
	}
}

// termWarnings flags terms that calculate but look inconsistent.
func termWarnings(term *revenue.ServiceTerm) []string {
	if !term.TermMatchesBillingDates() {
		return []string{"Billing dates do not span the stated term length"}
	}
	return nil
}
