package core_test

import (
	"context"
	"os"
	"testing"
	"time"

	"revenue-tracker/internal/core"
	"revenue-tracker/internal/revenue"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE services, sales_orders, customers, companies RESTART IDENTITY CASCADE;

		INSERT INTO companies (id, company_code, name, base_currency) VALUES (1, '1000', 'Test Company', 'USD');
		SELECT setval('companies_id_seq', 1);

		INSERT INTO customers (company_id, code, name, email, phone, address, payment_terms_days)
		VALUES (1, 'CUST1', 'Acme Networks', 'billing@acme.test', '', '', 30);
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func decPtr(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func testServiceInput(mrr string, months int) core.ServiceInput {
	return core.ServiceInput{
		Name:         "Dedicated Internet 1G",
		Units:        1,
		UnitPrice:    decimal.RequireFromString(mrr),
		MRR:          decPtr(mrr),
		TermMonths:   months,
		BillingStart: datePtr(2025, time.January, 1),
	}
}

func TestOrderLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{testServiceInput("1000", 12)}, "initial order")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if order.Status != core.OrderStatusDraft {
		t.Errorf("expected DRAFT, got %s", order.Status)
	}
	if len(order.Services) != 1 {
		t.Fatalf("expected 1 service, got %d", len(order.Services))
	}
	// 12 x 1000, no NRCs, no escalation.
	if !order.Services[0].TCV.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected service TCV 12000, got %s", order.Services[0].TCV)
	}
	if !order.TotalTCV.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected order TCV 12000, got %s", order.TotalTCV)
	}

	booked, err := orders.BookOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("BookOrder failed: %v", err)
	}
	if booked.Status != core.OrderStatusBooked || booked.OrderNumber == "" {
		t.Errorf("expected BOOKED with order number, got %s %q", booked.Status, booked.OrderNumber)
	}

	// Booking twice must fail the status guard.
	if _, err := orders.BookOrder(ctx, order.ID); err == nil {
		t.Error("expected error booking a BOOKED order")
	}
	// Booked orders cannot be cancelled.
	if _, err := orders.CancelOrder(ctx, order.ID); err == nil {
		t.Error("expected error cancelling a BOOKED order")
	}
}

func TestCreateOrder_InvalidTermsStoredWithZeroFigures(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)

	input := testServiceInput("1000", 12)
	input.MRR = nil // fails validation: "MRR is required"

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{input}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	svc := order.Services[0]
	if !svc.TCV.IsZero() || !svc.ARR.IsZero() {
		t.Errorf("expected zeroed figures for invalid terms, got tcv=%s arr=%s", svc.TCV, svc.ARR)
	}
	if errs := revenue.Validate(svc.Term()); len(errs) == 0 {
		t.Error("expected stored term to still fail validation")
	}
}

func TestRenewalChain(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)
	services := core.NewServiceService(pool)

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{testServiceInput("1000", 12)}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	originalID := order.Services[0].ID

	// Upgrade: 1500/month for 12 months replaces 1000/month for 12 months.
	upgrade := testServiceInput("1500", 12)
	upgrade.BillingStart = datePtr(2026, time.January, 1)
	renewed, err := services.RenewService(ctx, originalID, upgrade)
	if err != nil {
		t.Fatalf("RenewService failed: %v", err)
	}

	if renewed.RenewedFromID == nil || *renewed.RenewedFromID != originalID {
		t.Errorf("expected renewal to link to %d, got %v", originalID, renewed.RenewedFromID)
	}
	if !renewed.NetNewValue.Equal(decimal.NewFromInt(6000)) {
		t.Errorf("expected net-new 6000, got %s", renewed.NetNewValue)
	}

	original, err := services.GetService(ctx, originalID)
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if original.Status != core.ServiceStatusRenewed {
		t.Errorf("expected original RENEWED, got %s", original.Status)
	}

	// A renewed service cannot be renewed again.
	if _, err := services.RenewService(ctx, originalID, upgrade); err == nil {
		t.Error("expected error renewing a RENEWED service")
	}
}

func TestUpdateService_RefreshesNetNew(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)
	services := core.NewServiceService(pool)

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{testServiceInput("1000", 12)}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	originalID := order.Services[0].ID

	// Editing an unchained service: net-new follows the new TCV.
	updated, err := services.UpdateService(ctx, originalID, testServiceInput("2000", 12))
	if err != nil {
		t.Fatalf("UpdateService failed: %v", err)
	}
	if !updated.TCV.Equal(decimal.NewFromInt(24000)) {
		t.Errorf("expected TCV 24000, got %s", updated.TCV)
	}
	if !updated.NetNewValue.Equal(decimal.NewFromInt(24000)) {
		t.Errorf("expected net-new 24000 after edit, got %s", updated.NetNewValue)
	}

	// Editing a renewal: net-new stays the TCV delta against the predecessor.
	renewal := testServiceInput("2500", 12)
	renewal.BillingStart = datePtr(2026, time.January, 1)
	renewed, err := services.RenewService(ctx, originalID, renewal)
	if err != nil {
		t.Fatalf("RenewService failed: %v", err)
	}

	edited, err := services.UpdateService(ctx, renewed.ID, testServiceInput("3000", 12))
	if err != nil {
		t.Fatalf("UpdateService (renewal) failed: %v", err)
	}
	// 3000*12 - 2000*12 against the edited predecessor.
	if !edited.NetNewValue.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected net-new 12000 after renewal edit, got %s", edited.NetNewValue)
	}
}

func TestDebookService(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)
	services := core.NewServiceService(pool)

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{testServiceInput("1000", 12)}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	debooked, err := services.DebookService(ctx, order.Services[0].ID)
	if err != nil {
		t.Fatalf("DebookService failed: %v", err)
	}
	if debooked.Status != core.ServiceStatusDebooked {
		t.Errorf("expected DEBOOKED, got %s", debooked.Status)
	}
	if !debooked.NetNewValue.Equal(decimal.NewFromInt(-12000)) {
		t.Errorf("expected net-new -12000, got %s", debooked.NetNewValue)
	}

	// De-booked services no longer count toward order totals.
	refreshed, err := orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if !refreshed.TotalTCV.IsZero() {
		t.Errorf("expected order TCV 0 after de-book, got %s", refreshed.TotalTCV)
	}
}

func TestRecalculateAll(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)
	services := core.NewServiceService(pool)

	order, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{testServiceInput("1000", 12)}, "")
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// Drift the persisted figure behind the engine's back.
	if _, err := pool.Exec(ctx, "UPDATE services SET tcv = 0 WHERE id = $1", order.Services[0].ID); err != nil {
		t.Fatalf("failed to drift tcv: %v", err)
	}

	changed, err := services.RecalculateAll(ctx, "1000")
	if err != nil {
		t.Fatalf("RecalculateAll failed: %v", err)
	}
	if changed != 1 {
		t.Errorf("expected 1 changed row, got %d", changed)
	}

	svc, err := services.GetService(ctx, order.Services[0].ID)
	if err != nil {
		t.Fatalf("GetService failed: %v", err)
	}
	if !svc.TCV.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected recalculated TCV 12000, got %s", svc.TCV)
	}

	// Second pass is a no-op.
	changed, err = services.RecalculateAll(ctx, "1000")
	if err != nil {
		t.Fatalf("RecalculateAll (second pass) failed: %v", err)
	}
	if changed != 0 {
		t.Errorf("expected 0 changed rows on second pass, got %d", changed)
	}
}

func TestRevenueReport(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()

	ctx := context.Background()
	orders := core.NewOrderService(pool)
	reporting := core.NewReportingService(pool)

	input := testServiceInput("1000", 12)
	if _, err := orders.CreateOrder(ctx, "1000", "CUST1", "USD", "2025-01-01",
		[]core.ServiceInput{input}, ""); err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	report, err := reporting.GetRevenueReport(ctx, "1000")
	if err != nil {
		t.Fatalf("GetRevenueReport failed: %v", err)
	}
	if report.Summary.ActiveServices != 1 {
		t.Errorf("expected 1 active service, got %d", report.Summary.ActiveServices)
	}
	if !report.Summary.TotalARR.Equal(decimal.NewFromInt(12000)) {
		t.Errorf("expected ARR 12000, got %s", report.Summary.TotalARR)
	}
	if len(report.Months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(report.Months))
	}
	if report.Months[0].Month != "2025-01" || report.Months[11].Month != "2025-12" {
		t.Errorf("unexpected month range: %s .. %s", report.Months[0].Month, report.Months[11].Month)
	}
	if !report.Months[0].Recognized.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected 1000 recognized in first month, got %s", report.Months[0].Recognized)
	}
}
