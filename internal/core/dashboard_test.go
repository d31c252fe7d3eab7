package core

import (
	"context"
	"fmt"
	"testing"

	"rentledger/pkg/domain"
)

func TestComputeDashboardOccupancyAndTenants(t *testing.T) {
	snap := Snapshot{
		Properties: []Property{
			{Status: domain.PropertyOccupied},
			{Status: domain.PropertyOccupied},
			{Status: domain.PropertyVacant},
			{Status: domain.PropertyVacant},
		},
		Tenants: []Tenant{{Name: "a"}, {Name: "b"}, {Name: "c"}},
	}
	stats := ComputeDashboard(snap, "2024-03")

	if stats.TotalProperties != 4 || stats.OccupiedProperties != 2 || stats.VacantProperties != 2 {
		t.Fatalf("property counts = %d/%d/%d", stats.TotalProperties, stats.OccupiedProperties, stats.VacantProperties)
	}
	if stats.OccupancyRate != 50 {
		t.Fatalf("occupancy rate = %v, want 50", stats.OccupancyRate)
	}
	if stats.TotalTenants != 3 {
		t.Fatalf("tenants = %d, want 3", stats.TotalTenants)
	}
}

func TestComputeDashboardEmptySnapshotHasZeroRates(t *testing.T) {
	stats := ComputeDashboard(Snapshot{}, "2024-03")
	if stats.OccupancyRate != 0 || stats.CollectionRate != 0 {
		t.Fatalf("rates = %v/%v, want 0/0", stats.OccupancyRate, stats.CollectionRate)
	}
	if stats.NetCashFlow != 0 {
		t.Fatalf("net cash flow = %v, want 0", stats.NetCashFlow)
	}
}

func TestComputeDashboardMonthlyFigures(t *testing.T) {
	invoice := invoiceForStatus("inv-1", 500000, "2024-03-05")
	invoice.Status = domain.InvoicePaid
	snap := Snapshot{
		Invoices: []RentInvoice{invoice},
		Payments: []Payment{
			paymentFor("inv-1", 500000, "2024-03-10"),
			paymentFor("inv-0", 999999, "2024-02-10"), // prior month, ignored
		},
		Expenses: []Expense{
			{Date: "2024-03-12", Amount: 120000, Category: domain.ExpenseRepairs},
			{Date: "2024-02-12", Amount: 999999, Category: domain.ExpenseRepairs},
		},
	}
	stats := ComputeDashboard(snap, "2024-03")

	if stats.MonthlyRentDue != 500000 {
		t.Fatalf("rent due = %v, want 500000", stats.MonthlyRentDue)
	}
	if stats.MonthlyCollected != 500000 {
		t.Fatalf("collected = %v, want 500000", stats.MonthlyCollected)
	}
	if stats.CollectionRate != 100 {
		t.Fatalf("collection rate = %v, want 100", stats.CollectionRate)
	}
	if stats.MonthlyExpenses != 120000 {
		t.Fatalf("expenses = %v, want 120000", stats.MonthlyExpenses)
	}
	if stats.NetCashFlow != 380000 {
		t.Fatalf("net cash flow = %v, want 380000", stats.NetCashFlow)
	}
}

func TestComputeDashboardArrears(t *testing.T) {
	overdue := invoiceForStatus("inv-1", 100000, "2024-01-31")
	overdue.Status = domain.InvoiceOverdue
	partial := invoiceForStatus("inv-2", 200000, "2024-02-28")
	partial.Status = domain.InvoicePartial
	pending := invoiceForStatus("inv-3", 300000, "2024-04-30")
	pending.Status = domain.InvoicePending

	snap := Snapshot{
		Invoices: []RentInvoice{overdue, partial, pending},
		Payments: []Payment{paymentFor("inv-2", 50000, "2024-03-01")},
	}
	stats := ComputeDashboard(snap, "2024-03")

	// 100000 overdue plus 150000 partial remainder; the future pending
	// invoice carries no arrears.
	if stats.TotalArrears != 250000 {
		t.Fatalf("arrears = %v, want 250000", stats.TotalArrears)
	}
}

func TestDashboardMatchesTenantArrears(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	property, _ := svc.AddProperty(ctx, Property{HouseNumber: "A001", Location: "Kampala"})
	tenantA, _ := svc.AddTenant(ctx, Tenant{Name: "Grace Auma"})
	tenantB, _ := svc.AddTenant(ctx, Tenant{Name: "John Okello"})

	invA, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID: tenantA.ID, PropertyID: property.ID,
		DueDate: "2024-02-28", RentAmount: 100000, Month: "2024-02",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if _, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID: tenantB.ID, PropertyID: property.ID,
		DueDate: "2024-02-28", RentAmount: 250000, Month: "2024-02",
	}); err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if _, err := svc.AddPayment(ctx, Payment{InvoiceID: invA.ID, Amount: 30000, PaymentDate: "2024-03-01", PaymentMode: domain.PaymentCash}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	var perTenant float64
	for _, entry := range GenerateTenantArrears(snap) {
		perTenant += entry.Amount
	}
	if stats.TotalArrears != perTenant {
		t.Fatalf("dashboard arrears %v != tenant report sum %v", stats.TotalArrears, perTenant)
	}
	if stats.TotalArrears != 320000 {
		t.Fatalf("arrears = %v, want 320000", stats.TotalArrears)
	}
}

func TestRecentActivitiesMergeAndOrder(t *testing.T) {
	var payments []Payment
	for i := 1; i <= 7; i++ {
		p := paymentFor("inv-1", float64(i*1000), fmt.Sprintf("2024-03-%02d", i))
		p.ID = fmt.Sprintf("pay-%d", i)
		p.ReceiptNumber = fmt.Sprintf("RCT-%03d", i)
		payments = append(payments, p)
	}
	expenses := []Expense{
		{Base: domain.Base{ID: "exp-1"}, Date: "2024-03-06", Amount: 500, Description: "Compound cleaning"},
		{Base: domain.Base{ID: "exp-2"}, Date: "2024-03-08", Amount: 700, Description: "Security lights"},
	}

	activities := RecentActivities(payments, expenses)
	if len(activities) != 5 {
		t.Fatalf("len = %d, want 5", len(activities))
	}
	// Only the last five payments are eligible, so pay-1 and pay-2 never
	// appear. Dates sort descending with payments winning ties.
	wantIDs := []string{"exp-2", "pay-7", "pay-6", "exp-1", "pay-5"}
	for i, want := range wantIDs {
		if activities[i].ReferenceID != want {
			t.Fatalf("activities[%d] = %s, want %s (all: %+v)", i, activities[i].ReferenceID, want, activities)
		}
	}
	if activities[1].Description != "Payment RCT-007" {
		t.Fatalf("payment description = %q", activities[1].Description)
	}
	if activities[0].Kind != ActivityExpense || activities[1].Kind != ActivityPayment {
		t.Fatalf("kinds = %s/%s", activities[0].Kind, activities[1].Kind)
	}
}

func TestRecentActivitiesTieKeepsPaymentFirst(t *testing.T) {
	payment := paymentFor("inv-1", 1000, "2024-03-10")
	payment.ID = "pay-1"
	payment.ReceiptNumber = "RCT-001"
	expense := Expense{Base: domain.Base{ID: "exp-1"}, Date: "2024-03-10", Amount: 500, Description: "Garbage collection"}

	activities := RecentActivities([]Payment{payment}, []Expense{expense})
	if len(activities) != 2 {
		t.Fatalf("len = %d, want 2", len(activities))
	}
	if activities[0].Kind != ActivityPayment {
		t.Fatalf("first = %s, want payment on date tie", activities[0].Kind)
	}
}

func TestServiceDashboardUsesClockMonth(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.Month != "2024-03" {
		t.Fatalf("month = %q, want 2024-03", stats.Month)
	}
}
