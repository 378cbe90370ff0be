package app

import "context"

// ApplicationService is the single interface all adapters (HTTP, CLI, jobs)
// call. It decouples presentation from business logic; implementations
// contain no display logic of any kind.
type ApplicationService interface {
	// ListCompanies returns all companies.
	ListCompanies(ctx context.Context) (*CompanyListResult, error)

	// ListCustomers returns all customers for a company.
	ListCustomers(ctx context.Context, companyCode string) (*CustomerListResult, error)

	// CreateCustomer creates a new customer master record.
	CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*CustomerResult, error)

	// ListOrders returns sales orders for a company, optionally filtered by status.
	ListOrders(ctx context.Context, companyCode string, status *string) (*OrderListResult, error)

	// GetOrder returns a single sales order by numeric ID or order number string.
	GetOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error)

	// CreateOrder creates a new DRAFT sales order with its service lines.
	// Service lines with invalid terms are stored with zeroed revenue figures;
	// their validation messages are reported alongside the order.
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error)

	// BookOrder transitions a DRAFT order to BOOKED, assigning an order number.
	BookOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error)

	// CancelOrder transitions a DRAFT order to CANCELLED.
	CancelOrder(ctx context.Context, ref, companyCode string) (*OrderResult, error)

	// GetService returns one service line with its term validation state.
	GetService(ctx context.Context, serviceID int) (*ServiceResult, error)

	// UpdateService replaces a service's commercial terms and recomputes its figures.
	UpdateService(ctx context.Context, serviceID int, req ServiceRequest) (*ServiceResult, error)

	// RenewService replaces a service with a new one linked through the
	// renewal chain, recording the net-new value against the original.
	RenewService(ctx context.Context, serviceID int, req ServiceRequest) (*ServiceResult, error)

	// DebookService takes a service off the books, recording its negative net-new value.
	DebookService(ctx context.Context, serviceID int) (*ServiceResult, error)

	// GetServiceRevenue returns the full revenue calculation for one service:
	// contract figures, monthly breakdown, invoice schedule and billing
	// periods. Responses are cached until the service row next changes.
	GetServiceRevenue(ctx context.Context, serviceID int) (*ServiceRevenueResult, error)

	// GetRevenueReport returns the company-wide revenue summary and the
	// month-by-month recognized revenue across active services.
	GetRevenueReport(ctx context.Context, companyCode string) (*RevenueReportResult, error)

	// RecalculateCompany refreshes the persisted revenue figures of every
	// service in a company, returning how many rows changed.
	RecalculateCompany(ctx context.Context, companyCode string) (int, error)
}
