package app

import (
	"revenue-tracker/internal/core"
	"revenue-tracker/internal/revenue"

	"github.com/shopspring/decimal"
)

// CompanyListResult is returned by ListCompanies.
type CompanyListResult struct {
	Companies []core.Company `json:"companies"`
}

// CustomerResult is returned by CreateCustomer.
type CustomerResult struct {
	Customer *core.Customer `json:"customer"`
}

// CustomerListResult is returned by ListCustomers.
type CustomerListResult struct {
	Customers []core.Customer `json:"customers"`
}

// OrderResult is returned by order lifecycle operations. ServiceErrors maps
// service IDs to the validation messages of lines whose terms do not
// calculate; empty when every line is valid.
type OrderResult struct {
	Order         *core.SalesOrder `json:"order"`
	ServiceErrors map[int][]string `json:"service_errors,omitempty"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders      []core.SalesOrder `json:"orders"`
	CompanyCode string            `json:"company_code"`
}

// ServiceResult is returned by service operations.
type ServiceResult struct {
	Service *core.Service `json:"service"`
	// Errors holds the engine's validation messages for the stored terms,
	// empty when the service calculates cleanly.
	Errors []string `json:"errors,omitempty"`
	// Warnings are advisory: the terms calculate, but something about them
	// looks off, such as billing dates that do not span the stated term.
	Warnings []string `json:"warnings,omitempty"`
}

// ServiceRevenueResult is the full revenue calculation for one service.
type ServiceRevenueResult struct {
	ServiceID      int                        `json:"service_id"`
	Result         *revenue.CalculationResult `json:"result"`
	Invoices       []revenue.MonthlyInvoice   `json:"invoices"`
	BillingPeriods []revenue.BillingPeriod    `json:"billing_periods"`
	TotalInvoiced  decimal.Decimal            `json:"total_invoiced"`
	Errors         []string                   `json:"errors,omitempty"`
	Warnings       []string                   `json:"warnings,omitempty"`
}

// RevenueReportResult is returned by GetRevenueReport.
type RevenueReportResult struct {
	Report *core.RevenueReport `json:"report"`
}
