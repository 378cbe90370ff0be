package core

import (
	"context"
	"errors"
	"fmt"

	"revenue-tracker/internal/revenue"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ServiceService manages individual service lines: term edits, the
// renewal/de-book chain, and refresh of engine-derived figures. The engine's
// fail-safe contract carries through: a service whose terms do not validate
// is persisted with zeroed figures, and callers read the validation messages
// from the engine when they need diagnostics.
type ServiceService interface {
	GetService(ctx context.Context, serviceID int) (*Service, error)
	// UpdateService replaces the service's commercial terms and recomputes
	// its figures. Only ACTIVE services can be edited.
	UpdateService(ctx context.Context, serviceID int, input ServiceInput) (*Service, error)
	// RenewService creates a replacement service on the same order, linked
	// via RenewedFromID. The original is marked RENEWED and the new line's
	// net-new value is the TCV delta against it (negative for downgrades).
	RenewService(ctx context.Context, serviceID int, input ServiceInput) (*Service, error)
	// DebookService marks an ACTIVE service DEBOOKED and records the full
	// negative TCV as its net-new value.
	DebookService(ctx context.Context, serviceID int) (*Service, error)

	// RecalculateAll recomputes persisted TCV/ARR for every service of a
	// company and returns how many rows changed. Rows are independent, so
	// failures are reported per batch, not per row.
	RecalculateAll(ctx context.Context, companyCode string) (int, error)
}

type serviceService struct {
	pool *pgxpool.Pool
}

func NewServiceService(pool *pgxpool.Pool) ServiceService {
	return &serviceService{pool: pool}
}

func (s *serviceService) GetService(ctx context.Context, serviceID int) (*Service, error) {
	return fetchService(ctx, s.pool, serviceID)
}

func fetchService(ctx context.Context, q pgxQuerier, serviceID int) (*Service, error) {
	var svc Service
	err := scanService(q.QueryRow(ctx,
		"SELECT"+serviceColumns+" FROM services WHERE id = $1", serviceID), &svc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service %d not found", serviceID)
		}
		return nil, fmt.Errorf("failed to fetch service %d: %w", serviceID, err)
	}
	return &svc, nil
}

func (s *serviceService) UpdateService(ctx context.Context, serviceID int, input ServiceInput) (*Service, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	svc, err := lockService(ctx, tx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.Status != ServiceStatusActive {
		return nil, fmt.Errorf("service %d cannot be edited: status is %s (must be ACTIVE)", serviceID, svc.Status)
	}

	// Net-new tracks the edited terms: the TCV delta against the renewal
	// predecessor when one exists, otherwise the full new TCV.
	calc := revenue.NewCalculator(input.Term())
	netNew := calc.TCV()
	if svc.RenewedFromID != nil {
		predecessor, err := fetchService(ctx, tx, *svc.RenewedFromID)
		if err != nil {
			return nil, err
		}
		netNew = revenue.NetNewValue(input.Term(), predecessor.Term())
	}

	_, err = tx.Exec(ctx, `
		UPDATE services
		SET name = $1, units = $2, unit_price = $3, mrr = $4, term_months = $5, nrcs = $6,
		    annual_escalator_percent = $7, billing_start_date = $8, billing_end_date = $9,
		    rev_rec_start_date = $10, rev_rec_end_date = $11,
		    tcv = $12, arr = $13, net_new_value = $14, updated_at = NOW()
		WHERE id = $15
	`, input.Name, input.Units, input.UnitPrice, input.MRR, input.TermMonths, input.NRCs,
		input.AnnualEscalatorPercent, input.BillingStart, input.BillingEnd,
		input.RevRecStart, input.RevRecEnd, calc.TCV(), calc.ARR(), netNew, serviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to update service %d: %w", serviceID, err)
	}

	if err := refreshOrderTotals(ctx, tx, svc.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit service update: %w", err)
	}

	return s.GetService(ctx, serviceID)
}

func (s *serviceService) RenewService(ctx context.Context, serviceID int, input ServiceInput) (*Service, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	original, err := lockService(ctx, tx, serviceID)
	if err != nil {
		return nil, err
	}
	if original.Status != ServiceStatusActive {
		return nil, fmt.Errorf("service %d cannot be renewed: status is %s (must be ACTIVE)", serviceID, original.Status)
	}

	calc := revenue.NewCalculator(input.Term())
	netNew := revenue.NetNewValue(input.Term(), original.Term())

	var newID int
	err = tx.QueryRow(ctx, `
		INSERT INTO services (order_id, company_id, name, units, unit_price, mrr, term_months, nrcs,
		                      annual_escalator_percent, billing_start_date, billing_end_date,
		                      rev_rec_start_date, rev_rec_end_date, status, renewed_from_id,
		                      tcv, arr, net_new_value)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 'ACTIVE', $14, $15, $16, $17)
		RETURNING id
	`, original.OrderID, original.CompanyID, input.Name, input.Units, input.UnitPrice, input.MRR,
		input.TermMonths, input.NRCs, input.AnnualEscalatorPercent, input.BillingStart,
		input.BillingEnd, input.RevRecStart, input.RevRecEnd, serviceID,
		calc.TCV(), calc.ARR(), netNew).Scan(&newID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert renewal of service %d: %w", serviceID, err)
	}

	_, err = tx.Exec(ctx,
		"UPDATE services SET status = 'RENEWED', updated_at = NOW() WHERE id = $1",
		serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark service %d as RENEWED: %w", serviceID, err)
	}

	if err := refreshOrderTotals(ctx, tx, original.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit renewal: %w", err)
	}

	return s.GetService(ctx, newID)
}

func (s *serviceService) DebookService(ctx context.Context, serviceID int) (*Service, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	svc, err := lockService(ctx, tx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.Status != ServiceStatusActive {
		return nil, fmt.Errorf("service %d cannot be de-booked: status is %s (must be ACTIVE)", serviceID, svc.Status)
	}

	// The whole remaining contract value comes off the books.
	netNew := revenue.NewCalculator(svc.Term()).TCV().Neg()
	_, err = tx.Exec(ctx,
		"UPDATE services SET status = 'DEBOOKED', net_new_value = $1, updated_at = NOW() WHERE id = $2",
		netNew, serviceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to de-book service %d: %w", serviceID, err)
	}

	if err := refreshOrderTotals(ctx, tx, svc.OrderID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit de-book: %w", err)
	}

	return s.GetService(ctx, serviceID)
}

func (s *serviceService) RecalculateAll(ctx context.Context, companyCode string) (int, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return 0, err
	}

	rows, err := s.pool.Query(ctx,
		"SELECT"+serviceColumns+" FROM services WHERE company_id = $1 ORDER BY id", companyID)
	if err != nil {
		return 0, fmt.Errorf("failed to query services for recalculation: %w", err)
	}
	services, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Service, error) {
		var svc Service
		err := scanService(row, &svc)
		return svc, err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan services for recalculation: %w", err)
	}

	changed := 0
	orderIDs := make(map[int]bool)
	for i := range services {
		svc := &services[i]
		calc := revenue.NewCalculator(svc.Term())
		tcv, arr := calc.TCV(), calc.ARR()
		if tcv.Equal(svc.TCV) && arr.Equal(svc.ARR) {
			continue
		}
		_, err := s.pool.Exec(ctx,
			"UPDATE services SET tcv = $1, arr = $2, updated_at = NOW() WHERE id = $3",
			tcv, arr, svc.ID,
		)
		if err != nil {
			return changed, fmt.Errorf("failed to recalculate service %d: %w", svc.ID, err)
		}
		changed++
		orderIDs[svc.OrderID] = true
	}

	for orderID := range orderIDs {
		if err := refreshOrderTotals(ctx, s.pool, orderID); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

// lockService fetches a service row FOR UPDATE inside tx.
func lockService(ctx context.Context, tx pgx.Tx, serviceID int) (*Service, error) {
	var svc Service
	err := scanService(tx.QueryRow(ctx,
		"SELECT"+serviceColumns+" FROM services WHERE id = $1 FOR UPDATE", serviceID), &svc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("service %d not found", serviceID)
		}
		return nil, fmt.Errorf("failed to lock service %d: %w", serviceID, err)
	}
	return &svc, nil
}

// pgxExecer is satisfied by *pgxpool.Pool and pgx.Tx.
type pgxExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// refreshOrderTotals re-derives the order header totals from its non-debooked
// services.
func refreshOrderTotals(ctx context.Context, q pgxExecer, orderID int) error {
	_, err := q.Exec(ctx, `
		UPDATE sales_orders so
		SET total_tcv = agg.tcv, total_mrr = agg.mrr
		FROM (
			SELECT COALESCE(SUM(tcv), 0) AS tcv, COALESCE(SUM(mrr), 0) AS mrr
			FROM services
			WHERE order_id = $1 AND status <> 'DEBOOKED'
		) agg
		WHERE so.id = $1
	`, orderID)
	if err != nil {
		return fmt.Errorf("failed to refresh totals for order %d: %w", orderID, err)
	}
	return nil
}
