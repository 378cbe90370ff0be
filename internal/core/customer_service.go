package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CustomerService manages customer master data.
type CustomerService interface {
	CreateCustomer(ctx context.Context, companyCode, code, name, email, phone, address string, paymentTermsDays int) (*Customer, error)
	GetCustomers(ctx context.Context, companyCode string) ([]Customer, error)
	GetCustomer(ctx context.Context, companyCode, code string) (*Customer, error)
	GetCompanies(ctx context.Context) ([]Company, error)
}

type customerService struct {
	pool *pgxpool.Pool
}

func NewCustomerService(pool *pgxpool.Pool) CustomerService {
	return &customerService{pool: pool}
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx (for Query).
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// resolveCompanyID looks up the internal company ID from a company code.
func resolveCompanyID(ctx context.Context, q pgxQuerier, companyCode string) (int, error) {
	var id int
	err := q.QueryRow(ctx, "SELECT id FROM companies WHERE company_code = $1", companyCode).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("company code %s not found", companyCode)
		}
		return 0, fmt.Errorf("failed to resolve company %s: %w", companyCode, err)
	}
	return id, nil
}

func (s *customerService) CreateCustomer(ctx context.Context, companyCode, code, name, email, phone, address string, paymentTermsDays int) (*Customer, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	var c Customer
	err = s.pool.QueryRow(ctx, `
		INSERT INTO customers (company_id, code, name, email, phone, address, payment_terms_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, company_id, code, name, email, phone, address, payment_terms_days, created_at
	`, companyID, code, name, email, phone, address, paymentTermsDays).Scan(
		&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.PaymentTermsDays, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &c, nil
}

func (s *customerService) GetCustomers(ctx context.Context, companyCode string) ([]Customer, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, code, name, email, phone, address, payment_terms_days, created_at
		FROM customers
		WHERE company_id = $1
		ORDER BY code
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.PaymentTermsDays, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, nil
}

func (s *customerService) GetCustomer(ctx context.Context, companyCode, code string) (*Customer, error) {
	companyID, err := resolveCompanyID(ctx, s.pool, companyCode)
	if err != nil {
		return nil, err
	}

	var c Customer
	err = s.pool.QueryRow(ctx, `
		SELECT id, company_id, code, name, email, phone, address, payment_terms_days, created_at
		FROM customers
		WHERE company_id = $1 AND code = $2
	`, companyID, code).Scan(
		&c.ID, &c.CompanyID, &c.Code, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.PaymentTermsDays, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("customer code %s not found for company %s", code, companyCode)
		}
		return nil, fmt.Errorf("failed to fetch customer %s: %w", code, err)
	}
	return &c, nil
}

// GetCompanies lists all companies. Used by the recalculation job to walk
// every tenant.
func (s *customerService) GetCompanies(ctx context.Context) ([]Company, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, company_code, name, base_currency FROM companies ORDER BY company_code")
	if err != nil {
		return nil, fmt.Errorf("failed to query companies: %w", err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.CompanyCode, &c.Name, &c.BaseCurrency); err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, c)
	}
	return companies, nil
}
