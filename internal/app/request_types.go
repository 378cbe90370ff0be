package app

import "github.com/shopspring/decimal"

// CreateCustomerRequest is the input for creating a customer.
type CreateCustomerRequest struct {
	CompanyCode      string `json:"company_code"`
	Code             string `json:"code"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PaymentTermsDays int    `json:"payment_terms_days"`
}

// CreateOrderRequest is the input for creating a new sales order.
type CreateOrderRequest struct {
	CompanyCode  string           `json:"company_code"`
	CustomerCode string           `json:"customer_code"`
	Currency     string           `json:"currency"`
	OrderDate    string           `json:"order_date"` // YYYY-MM-DD, defaults to today
	Notes        string           `json:"notes"`
	Services     []ServiceRequest `json:"services"`
}

// ServiceRequest carries the commercial terms of one service line. Dates are
// YYYY-MM-DD strings; empty means absent. Nullable decimals distinguish
// absent from zero the same way the revenue engine does.
type ServiceRequest struct {
	Name                   string           `json:"name"`
	Units                  int              `json:"units"`
	UnitPrice              decimal.Decimal  `json:"unit_price"`
	MRR                    *decimal.Decimal `json:"mrr"`
	TermMonths             int              `json:"term_months"`
	NRCs                   *decimal.Decimal `json:"nrcs"`
	AnnualEscalatorPercent *decimal.Decimal `json:"annual_escalator_percent"`
	BillingStartDate       string           `json:"billing_start_date"`
	BillingEndDate         string           `json:"billing_end_date"`
	RevRecStartDate        string           `json:"rev_rec_start_date"`
	RevRecEndDate          string           `json:"rev_rec_end_date"`
}
