package core

import (
	"context"
	"errors"
	"fmt"

	"revenue-tracker/internal/revenue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// OrderService manages the sales order lifecycle. Revenue figures on each
// service line are computed by the revenue engine at write time; a line whose
// terms fail validation is stored with zeroed figures rather than rejected,
// so draft orders can be captured incrementally and fixed up later.
type OrderService interface {
	CreateOrder(ctx context.Context, companyCode, customerCode, currency, orderDate string, services []ServiceInput, notes string) (*SalesOrder, error)
	// BookOrder transitions DRAFT → BOOKED and assigns the order number.
	BookOrder(ctx context.Context, orderID int) (*SalesOrder, error)
	// CancelOrder transitions DRAFT → CANCELLED.
	CancelOrder(ctx context.Context, orderID int) (*SalesOrder, error)

	GetOrder(ctx context.Context, orderID int) (*SalesOrder, error)
	GetOrders(ctx context.Context, companyCode string, status *string) ([]SalesOrder, error)
	GetOrderByNumber(ctx context.Context, companyCode, orderNumber string) (*SalesOrder, error)
}

type orderService struct {
	pool *pgxpool.Pool
}

func NewOrderService(pool *pgxpool.Pool) OrderService {
	return &orderService{pool: pool}
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *orderService) CreateOrder(ctx context.Context, companyCode, customerCode, currency, orderDate string, services []ServiceInput, notes string) (*SalesOrder, error) {
	if len(services) == 0 {
		return nil, fmt.Errorf("order must have at least one service")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	companyID, err := resolveCompanyID(ctx, tx, companyCode)
	if err != nil {
		return nil, err
	}

	var customerID int
	err = tx.QueryRow(ctx, "SELECT id FROM customers WHERE company_id = $1 AND code = $2", companyID, customerCode).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer code %s not found for company %s", customerCode, companyCode)
		}
		return nil, fmt.Errorf("failed to resolve customer: %w", err)
	}

	// Order totals come from the engine, not from the raw inputs.
	totalTCV := decimal.Zero
	totalMRR := decimal.Zero
	calcs := make([]*revenue.Calculator, len(services))
	for i := range services {
		calcs[i] = revenue.NewCalculator(services[i].Term())
		totalTCV = totalTCV.Add(calcs[i].TCV())
		totalMRR = totalMRR.Add(calcs[i].MRR())
	}

	var orderID int
	err = tx.QueryRow(ctx, `
		INSERT INTO sales_orders (company_id, customer_id, status, order_date, currency, total_tcv, total_mrr, notes)
		VALUES ($1, $2, 'DRAFT', $3, $4, $5, $6, $7)
		RETURNING id
	`, companyID, customerID, orderDate, currency, totalTCV, totalMRR, notes).Scan(&orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sales order: %w", err)
	}

	for i, input := range services {
		calc := calcs[i]
		// A brand-new service replaces nothing: its whole TCV is net new.
		_, err = tx.Exec(ctx, `
			INSERT INTO services (order_id, company_id, name, units, unit_price, mrr, term_months, nrcs,
			                      annual_escalator_percent, billing_start_date, billing_end_date,
			                      rev_rec_start_date, rev_rec_end_date, status, tcv, arr, net_new_value)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'ACTIVE', $14, $15, $16)
		`, orderID, companyID, input.Name, input.Units, input.UnitPrice, input.MRR, input.TermMonths,
			input.NRCs, input.AnnualEscalatorPercent, input.BillingStart, input.BillingEnd,
			input.RevRecStart, input.RevRecEnd, calc.TCV(), calc.ARR(), calc.TCV())
		if err != nil {
			return nil, fmt.Errorf("failed to insert service %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order creation: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) BookOrder(ctx context.Context, orderID int) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if status != OrderStatusDraft {
		return nil, fmt.Errorf("order %d cannot be booked: status is %s (must be DRAFT)", orderID, status)
	}

	orderNumber := fmt.Sprintf("SO-%06d", orderID)
	_, err = tx.Exec(ctx, `
		UPDATE sales_orders
		SET status = 'BOOKED', order_number = $1, booked_at = NOW()
		WHERE id = $2
	`, orderNumber, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to book order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order booking: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) CancelOrder(ctx context.Context, orderID int) (*SalesOrder, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		"SELECT status FROM sales_orders WHERE id = $1 FOR UPDATE",
		orderID,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}
	if status != OrderStatusDraft {
		return nil, fmt.Errorf("order %d cannot be cancelled: status is %s (only DRAFT orders can be cancelled)", orderID, status)
	}

	_, err = tx.Exec(ctx,
		"UPDATE sales_orders SET status = 'CANCELLED' WHERE id = $1",
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel order %d: %w", orderID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit cancel order: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

// ── Queries ──────────────────────────────────────────────────────────────────

const orderSelect = `
	SELECT so.id, so.company_id, COALESCE(so.order_number, ''), so.customer_id, c.code, c.name,
	       so.status, so.order_date::text, so.currency, so.total_tcv, so.total_mrr, so.notes,
	       so.created_at, so.booked_at
	FROM sales_orders so
	JOIN customers c ON c.id = so.customer_id
`

func scanOrder(row pgx.Row, o *SalesOrder) error {
	return row.Scan(
		&o.ID, &o.CompanyID, &o.OrderNumber, &o.CustomerID, &o.CustomerCode, &o.CustomerName,
		&o.Status, &o.OrderDate, &o.Currency, &o.TotalTCV, &o.TotalMRR, &o.Notes,
		&o.CreatedAt, &o.BookedAt,
	)
}

func (s *orderService) GetOrder(ctx context.Context, orderID int) (*SalesOrder, error) {
	var o SalesOrder
	err := scanOrder(s.pool.QueryRow(ctx, orderSelect+"WHERE so.id = $1", orderID), &o)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d not found", orderID)
		}
		return nil, fmt.Errorf("failed to fetch order %d: %w", orderID, err)
	}

	services, err := fetchOrderServices(ctx, s.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Services = services
	return &o, nil
}

func (s *orderService) GetOrderByNumber(ctx context.Context, companyCode, orderNumber string) (*SalesOrder, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	var orderID int
	err = s.pool.QueryRow(ctx,
		"SELECT id FROM sales_orders WHERE company_id = $1 AND order_number = $2",
		companyID, orderNumber,
	).Scan(&orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found for company %s", orderNumber, companyCode)
		}
		return nil, fmt.Errorf("failed to lookup order by number: %w", err)
	}

	return s.GetOrder(ctx, orderID)
}

func (s *orderService) GetOrders(ctx context.Context, companyCode string, status *string) ([]SalesOrder, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	query := orderSelect + "WHERE so.company_id = $1"
	args := []any{companyID}
	if status != nil {
		query += " AND so.status = $2"
		args = append(args, *status)
	}
	query += " ORDER BY so.id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []SalesOrder
	for rows.Next() {
		var o SalesOrder
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

const serviceColumns = `
	id, order_id, company_id, name, units, unit_price, mrr, term_months, nrcs,
	annual_escalator_percent, billing_start_date, billing_end_date,
	rev_rec_start_date, rev_rec_end_date, status, renewed_from_id,
	tcv, arr, net_new_value, created_at, updated_at`

func scanService(row pgx.Row, svc *Service) error {
	return row.Scan(
		&svc.ID, &svc.OrderID, &svc.CompanyID, &svc.Name, &svc.Units, &svc.UnitPrice,
		&svc.MRR, &svc.TermMonths, &svc.NRCs, &svc.AnnualEscalatorPercent,
		&svc.BillingStart, &svc.BillingEnd, &svc.RevRecStart, &svc.RevRecEnd,
		&svc.Status, &svc.RenewedFromID, &svc.TCV, &svc.ARR, &svc.NetNewValue,
		&svc.CreatedAt, &svc.UpdatedAt,
	)
}

func fetchOrderServices(ctx context.Context, q pgxRowQuerier, orderID int) ([]Service, error) {
	rows, err := q.Query(ctx,
		"SELECT"+serviceColumns+" FROM services WHERE order_id = $1 ORDER BY id", orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order services: %w", err)
	}
	defer rows.Close()

	var services []Service
	for rows.Next() {
		var svc Service
		if err := scanService(rows, &svc); err != nil {
			return nil, fmt.Errorf("failed to scan service: %w", err)
		}
		services = append(services, svc)
	}
	return services, nil
}
