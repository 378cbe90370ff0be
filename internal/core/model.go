package core

import (
	"time"

	"revenue-tracker/internal/revenue"

	"github.com/shopspring/decimal"
)

// Company scopes all records; every query resolves a company code first.
type Company struct {
	ID           int    `json:"id"`
	CompanyCode  string `json:"company_code"`
	Name         string `json:"name"`
	BaseCurrency string `json:"base_currency"`
}

// Customer is a sales customer master record, scoped to a company.
type Customer struct {
	ID               int       `json:"id"`
	CompanyID        int       `json:"company_id"`
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	PaymentTermsDays int       `json:"payment_terms_days"`
	CreatedAt        time.Time `json:"created_at"`
}

// SalesOrder is an order header grouping the services sold to one customer.
// Status progresses DRAFT → BOOKED; DRAFT orders may be CANCELLED.
type SalesOrder struct {
	ID           int             `json:"id"`
	CompanyID    int             `json:"company_id"`
	OrderNumber  string          `json:"order_number"` // assigned at BOOKED
	CustomerID   int             `json:"customer_id"`
	CustomerCode string          `json:"customer_code"` // joined from customers
	CustomerName string          `json:"customer_name"` // joined from customers
	Status       string          `json:"status"`
	OrderDate    string          `json:"order_date"` // YYYY-MM-DD
	Currency     string          `json:"currency"`
	TotalTCV     decimal.Decimal `json:"total_tcv"`
	TotalMRR     decimal.Decimal `json:"total_mrr"`
	Notes        string          `json:"notes"`
	Services     []Service       `json:"services"`
	CreatedAt    time.Time       `json:"created_at"`
	BookedAt     *time.Time      `json:"booked_at,omitempty"`
}

const (
	OrderStatusDraft     = "DRAFT"
	OrderStatusBooked    = "BOOKED"
	OrderStatusCancelled = "CANCELLED"
)

// Service status values. A renewed service stays in the chain via the new
// service's RenewedFromID; a de-booked service records its negative net-new.
const (
	ServiceStatusActive   = "ACTIVE"
	ServiceStatusRenewed  = "RENEWED"
	ServiceStatusDebooked = "DEBOOKED"
)

// Service is one sold service line with its commercial terms and the scalar
// figures last computed from them. TCV, ARR and NetNewValue are derived:
// the revenue engine is the source of truth and they are refreshed on every
// write (and nightly by the recalculation job).
type Service struct {
	ID                     int              `json:"id"`
	OrderID                int              `json:"order_id"`
	CompanyID              int              `json:"company_id"`
	Name                   string           `json:"name"`
	Units                  int              `json:"units"`
	UnitPrice              decimal.Decimal  `json:"unit_price"`
	MRR                    *decimal.Decimal `json:"mrr"`
	TermMonths             int              `json:"term_months"`
	NRCs                   *decimal.Decimal `json:"nrcs"`
	AnnualEscalatorPercent *decimal.Decimal `json:"annual_escalator_percent"`
	BillingStart           *time.Time       `json:"billing_start_date"`
	BillingEnd             *time.Time       `json:"billing_end_date"`
	RevRecStart            *time.Time       `json:"rev_rec_start_date"`
	RevRecEnd              *time.Time       `json:"rev_rec_end_date"`
	Status                 string           `json:"status"`
	RenewedFromID          *int             `json:"renewed_from_id,omitempty"`
	TCV                    decimal.Decimal  `json:"tcv"`
	ARR                    decimal.Decimal  `json:"arr"`
	NetNewValue            decimal.Decimal  `json:"net_new_value"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// Term returns the engine's view of this service's commercial terms.
func (s *Service) Term() *revenue.ServiceTerm {
	if s == nil {
		return nil
	}
	return &revenue.ServiceTerm{
		MRR:                    s.MRR,
		TermMonths:             s.TermMonths,
		NRCs:                   s.NRCs,
		AnnualEscalatorPercent: s.AnnualEscalatorPercent,
		BillingStart:           s.BillingStart,
		BillingEnd:             s.BillingEnd,
		RevRecStart:            s.RevRecStart,
		RevRecEnd:              s.RevRecEnd,
	}
}

// ServiceInput carries the term fields for creating or updating a service.
type ServiceInput struct {
	Name                   string
	Units                  int
	UnitPrice              decimal.Decimal
	MRR                    *decimal.Decimal
	TermMonths             int
	NRCs                   *decimal.Decimal
	AnnualEscalatorPercent *decimal.Decimal
	BillingStart           *time.Time
	BillingEnd             *time.Time
	RevRecStart            *time.Time
	RevRecEnd              *time.Time
}

// Term returns the engine's view of the input's commercial terms.
func (in *ServiceInput) Term() *revenue.ServiceTerm {
	if in == nil {
		return nil
	}
	return &revenue.ServiceTerm{
		MRR:                    in.MRR,
		TermMonths:             in.TermMonths,
		NRCs:                   in.NRCs,
		AnnualEscalatorPercent: in.AnnualEscalatorPercent,
		BillingStart:           in.BillingStart,
		BillingEnd:             in.BillingEnd,
		RevRecStart:            in.RevRecStart,
		RevRecEnd:              in.RevRecEnd,
	}
}
