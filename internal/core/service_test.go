package core

import (
	"context"
	"testing"

	"rentledger/pkg/domain"
)

func TestAddAndGetProperty(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	created, err := svc.AddProperty(ctx, Property{
		HouseNumber: "A001",
		Location:    "Kampala Central",
		Type:        "Apartment",
		Size:        2,
		RentRate:    800000,
		Status:      domain.PropertyVacant,
	})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("expected matching stamps, got created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}

	fetched, ok := svc.GetProperty(ctx, created.ID)
	if !ok {
		t.Fatal("expected property to be found")
	}
	if fetched.DisplayName() != "A001 - Kampala Central" {
		t.Fatalf("display name = %q", fetched.DisplayName())
	}
	if _, ok := svc.GetProperty(ctx, "missing"); ok {
		t.Fatal("expected lookup miss for unknown id")
	}
}

func TestUpdatePropertyPatchesOnlySetFields(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	created, err := svc.AddProperty(ctx, Property{
		HouseNumber: "A001",
		Location:    "Kampala Central",
		RentRate:    800000,
		Status:      domain.PropertyVacant,
	})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}

	rate := 900000.0
	updated, err := svc.UpdateProperty(ctx, created.ID, PropertyUpdate{RentRate: &rate})
	if err != nil {
		t.Fatalf("update property: %v", err)
	}
	if updated.RentRate != 900000 {
		t.Fatalf("rent rate = %v, want 900000", updated.RentRate)
	}
	if updated.HouseNumber != "A001" || updated.Location != "Kampala Central" {
		t.Fatalf("unset fields changed: %+v", updated)
	}
	if updated.Status != domain.PropertyVacant {
		t.Fatalf("status changed to %s", updated.Status)
	}

	if _, err := svc.UpdateProperty(ctx, "missing", PropertyUpdate{RentRate: &rate}); err == nil {
		t.Fatal("expected error for missing property")
	}
	if len(svc.ListProperties(ctx)) != 1 {
		t.Fatal("failed update must not change the collection")
	}
}

func TestDeleteProperty(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	created, err := svc.AddProperty(ctx, Property{HouseNumber: "A001", Location: "Kampala"})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}

	deleted, err := svc.DeleteProperty(ctx, created.ID)
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v), want (true, nil)", deleted, err)
	}
	if len(svc.ListProperties(ctx)) != 0 {
		t.Fatal("expected empty collection after delete")
	}

	deleted, err = svc.DeleteProperty(ctx, created.ID)
	if err != nil || deleted {
		t.Fatalf("repeat delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestTenantLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	created, err := svc.AddTenant(ctx, Tenant{
		Name:             "Grace Auma",
		IDPassport:       "CM1234",
		Phone:            "0700000001",
		NextOfKin:        domain.NextOfKin{Name: "Peter Auma", Phone: "0700000002", Relationship: "brother"},
		EmergencyContact: domain.EmergencyContact{Name: "Jane Auma", Phone: "0700000003"},
	})
	if err != nil {
		t.Fatalf("add tenant: %v", err)
	}

	updated, err := svc.UpdateTenant(ctx, created.ID, TenantUpdate{
		Phone: strPtr("0711111111"),
		Email: strPtr("grace@example.com"),
	})
	if err != nil {
		t.Fatalf("update tenant: %v", err)
	}
	if updated.Phone != "0711111111" {
		t.Fatalf("phone = %q", updated.Phone)
	}
	if updated.Email == nil || *updated.Email != "grace@example.com" {
		t.Fatalf("email = %v", updated.Email)
	}
	if updated.Name != "Grace Auma" {
		t.Fatalf("name changed to %q", updated.Name)
	}

	deleted, err := svc.DeleteTenant(ctx, created.ID)
	if err != nil || !deleted {
		t.Fatalf("delete = (%v, %v), want (true, nil)", deleted, err)
	}
	deleted, err = svc.DeleteTenant(ctx, "missing")
	if err != nil || deleted {
		t.Fatalf("missing delete = (%v, %v), want (false, nil)", deleted, err)
	}
}

func TestAddAgreementMarksPropertyOccupied(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	property, err := svc.AddProperty(ctx, Property{HouseNumber: "A001", Location: "Kampala", Status: domain.PropertyVacant})
	if err != nil {
		t.Fatalf("add property: %v", err)
	}
	tenant, err := svc.AddTenant(ctx, Tenant{Name: "Grace Auma"})
	if err != nil {
		t.Fatalf("add tenant: %v", err)
	}

	agreement, err := svc.AddAgreement(ctx, TenancyAgreement{
		TenantID:   tenant.ID,
		PropertyID: property.ID,
		StartDate:  "2024-03-01",
		EndDate:    "2025-02-28",
		RentAmount: 800000,
		RentTerms:  domain.RentMonthly,
	})
	if err != nil {
		t.Fatalf("add agreement: %v", err)
	}
	if agreement.Status != domain.AgreementActive {
		t.Fatalf("status = %s, want active default", agreement.Status)
	}

	refreshed, ok := svc.GetProperty(ctx, property.ID)
	if !ok {
		t.Fatal("property vanished")
	}
	if refreshed.Status != domain.PropertyOccupied {
		t.Fatalf("property status = %s, want occupied", refreshed.Status)
	}
}

func TestAddAgreementToleratesDanglingProperty(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	agreement, err := svc.AddAgreement(ctx, TenancyAgreement{
		TenantID:   "tenant-x",
		PropertyID: "no-such-property",
		StartDate:  "2024-03-01",
	})
	if err != nil {
		t.Fatalf("add agreement: %v", err)
	}
	if agreement.ID == "" {
		t.Fatal("expected generated id")
	}
	if len(svc.ListAgreements(ctx)) != 1 {
		t.Fatal("agreement should be stored despite dangling reference")
	}
}

func TestAddInvoiceLinksAgreementAndFixesTotal(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	property, _ := svc.AddProperty(ctx, Property{HouseNumber: "A001", Location: "Kampala"})
	tenant, _ := svc.AddTenant(ctx, Tenant{Name: "Grace Auma"})
	agreement, err := svc.AddAgreement(ctx, TenancyAgreement{TenantID: tenant.ID, PropertyID: property.ID})
	if err != nil {
		t.Fatalf("add agreement: %v", err)
	}

	invoice, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:        tenant.ID,
		PropertyID:      property.ID,
		DueDate:         "2024-03-31",
		RentAmount:      800000,
		UtilitiesAmount: floatPtr(50000),
		Month:           "2024-03",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if invoice.AgreementID != agreement.ID {
		t.Fatalf("agreement id = %q, want %q", invoice.AgreementID, agreement.ID)
	}
	if invoice.TotalAmount != 850000 {
		t.Fatalf("total = %v, want 850000", invoice.TotalAmount)
	}
	if invoice.Status != domain.InvoicePending {
		t.Fatalf("status = %s, want pending", invoice.Status)
	}

	// No matching agreement leaves the reference empty.
	orphan, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:   "other-tenant",
		PropertyID: property.ID,
		DueDate:    "2024-03-31",
		RentAmount: 500000,
		Month:      "2024-03",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if orphan.AgreementID != "" {
		t.Fatalf("agreement id = %q, want empty", orphan.AgreementID)
	}
}

func TestAddInvoiceKeepsExplicitAgreement(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	invoice, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:    "tenant-1",
		PropertyID:  "property-1",
		AgreementID: "agreement-keep",
		DueDate:     "2024-03-31",
		RentAmount:  800000,
		Month:       "2024-03",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if invoice.AgreementID != "agreement-keep" {
		t.Fatalf("agreement id = %q", invoice.AgreementID)
	}
}

func TestAddPaymentDenormalizesAndRecomputesStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	invoice, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:   "tenant-1",
		PropertyID: "property-1",
		DueDate:    "2024-03-31",
		RentAmount: 100000,
		Month:      "2024-03",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	partial, err := svc.AddPayment(ctx, Payment{
		InvoiceID:     invoice.ID,
		Amount:        40000,
		PaymentDate:   "2024-03-10",
		PaymentMode:   domain.PaymentMobileMoney,
		ReceiptNumber: "RCT-001",
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if partial.TenantID != "tenant-1" || partial.PropertyID != "property-1" {
		t.Fatalf("payment references = %q/%q, want denormalized from invoice", partial.TenantID, partial.PropertyID)
	}
	stored, _ := svc.GetInvoice(ctx, invoice.ID)
	if stored.Status != domain.InvoicePartial {
		t.Fatalf("cached status = %s, want partial", stored.Status)
	}

	if _, err := svc.AddPayment(ctx, Payment{
		InvoiceID:     invoice.ID,
		Amount:        60000,
		PaymentDate:   "2024-03-12",
		PaymentMode:   domain.PaymentBank,
		ReceiptNumber: "RCT-002",
	}); err != nil {
		t.Fatalf("add payment: %v", err)
	}
	stored, _ = svc.GetInvoice(ctx, invoice.ID)
	if stored.Status != domain.InvoicePaid {
		t.Fatalf("cached status = %s, want paid", stored.Status)
	}
}

func TestAddPaymentToleratesDanglingInvoice(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	payment, err := svc.AddPayment(ctx, Payment{
		InvoiceID:     "no-such-invoice",
		TenantID:      "given-tenant",
		Amount:        5000,
		PaymentDate:   "2024-03-10",
		PaymentMode:   domain.PaymentCash,
		ReceiptNumber: "RCT-009",
	})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if payment.TenantID != "given-tenant" {
		t.Fatalf("tenant id = %q, want caller value kept", payment.TenantID)
	}
	if len(svc.ListPayments(ctx)) != 1 {
		t.Fatal("payment should be stored despite dangling invoice")
	}
}

func TestListInvoicesResolvesEffectiveStatus(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	pastDue, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:   "tenant-1",
		PropertyID: "property-1",
		DueDate:    "2024-02-28",
		RentAmount: 100000,
		Month:      "2024-02",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if _, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:   "tenant-1",
		PropertyID: "property-1",
		DueDate:    "2024-03-31",
		RentAmount: 100000,
		Month:      "2024-03",
	}); err != nil {
		t.Fatalf("add invoice: %v", err)
	}

	// The stored cache still says pending; reads must not trust it.
	stored, _ := svc.GetInvoice(ctx, pastDue.ID)
	if stored.Status != domain.InvoicePending {
		t.Fatalf("cache = %s, want pending", stored.Status)
	}

	invoices, err := svc.ListInvoices(ctx)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("len = %d, want 2", len(invoices))
	}
	if invoices[0].Status != domain.InvoiceOverdue {
		t.Fatalf("past due status = %s, want overdue", invoices[0].Status)
	}
	if invoices[1].Status != domain.InvoicePending {
		t.Fatalf("future status = %s, want pending", invoices[1].Status)
	}
}

func TestAddMaintenanceRecordDerivesExpense(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	property, _ := svc.AddProperty(ctx, Property{HouseNumber: "A001", Location: "Kampala"})

	record, err := svc.AddMaintenanceRecord(ctx, MaintenanceRecord{
		PropertyID:      property.ID,
		Date:            "2024-03-10",
		Description:     "Fix kitchen sink",
		Cost:            75000,
		Type:            domain.MaintenanceRepairs,
		ServiceProvider: strPtr("Quick Plumbers"),
		Status:          domain.MaintenanceCompleted,
	})
	if err != nil {
		t.Fatalf("add maintenance: %v", err)
	}

	expenses := svc.ListExpenses(ctx)
	if len(expenses) != 1 {
		t.Fatalf("expenses = %d, want 1", len(expenses))
	}
	derived := expenses[0]
	if derived.Description != "Maintenance: Fix kitchen sink" {
		t.Fatalf("description = %q", derived.Description)
	}
	if derived.Category != domain.ExpenseMaintenance {
		t.Fatalf("category = %s", derived.Category)
	}
	if derived.PropertyID == nil || *derived.PropertyID != record.PropertyID {
		t.Fatalf("property id = %v", derived.PropertyID)
	}
	if derived.Amount != 75000 {
		t.Fatalf("amount = %v", derived.Amount)
	}
	if derived.ServiceProvider == nil || *derived.ServiceProvider != "Quick Plumbers" {
		t.Fatalf("service provider = %v", derived.ServiceProvider)
	}

	// A second completed record derives a second expense: one per record.
	if _, err := svc.AddMaintenanceRecord(ctx, MaintenanceRecord{
		PropertyID:  property.ID,
		Date:        "2024-03-11",
		Description: "Repaint hallway",
		Cost:        120000,
		Type:        domain.MaintenancePainting,
		Status:      domain.MaintenanceCompleted,
	}); err != nil {
		t.Fatalf("add maintenance: %v", err)
	}
	if got := len(svc.ListExpenses(ctx)); got != 2 {
		t.Fatalf("expenses = %d, want 2", got)
	}
}

func TestAddMaintenanceRecordSkipsExpenseWhenNotBillable(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	cases := []MaintenanceRecord{
		{PropertyID: "p1", Date: "2024-03-10", Description: "Scheduled check", Cost: 50000, Type: domain.MaintenanceInspection, Status: domain.MaintenancePending},
		{PropertyID: "p1", Date: "2024-03-10", Description: "Free inspection", Cost: 0, Type: domain.MaintenanceInspection, Status: domain.MaintenanceCompleted},
		{PropertyID: "p1", Date: "2024-03-10", Description: "Cancelled work", Cost: 30000, Type: domain.MaintenanceRepairs, Status: domain.MaintenanceCancelled},
	}
	for _, record := range cases {
		if _, err := svc.AddMaintenanceRecord(ctx, record); err != nil {
			t.Fatalf("add maintenance: %v", err)
		}
	}
	if got := len(svc.ListExpenses(ctx)); got != 0 {
		t.Fatalf("expenses = %d, want 0", got)
	}
	if got := len(svc.ListMaintenanceRecords(ctx)); got != 3 {
		t.Fatalf("records = %d, want 3", got)
	}
}

func TestInitializeSampleDataIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService()

	if err := svc.InitializeSampleData(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	properties := svc.ListProperties(ctx)
	if len(properties) != 2 {
		t.Fatalf("properties = %d, want 2", len(properties))
	}
	if properties[0].HouseNumber != "A001" || properties[1].HouseNumber != "B002" {
		t.Fatalf("unexpected seed order: %q, %q", properties[0].HouseNumber, properties[1].HouseNumber)
	}

	if err := svc.InitializeSampleData(ctx); err != nil {
		t.Fatalf("reseed: %v", err)
	}
	if got := len(svc.ListProperties(ctx)); got != 2 {
		t.Fatalf("properties after reseed = %d, want 2", got)
	}
}

func TestSnapshotResolvesInvoiceStatuses(t *testing.T) {
	ctx := context.Background()
	svc := NewInMemoryService(frozenClock(testNow))

	invoice, err := svc.AddInvoice(ctx, RentInvoice{
		TenantID:   "tenant-1",
		PropertyID: "property-1",
		DueDate:    "2024-02-28",
		RentAmount: 100000,
		Month:      "2024-02",
	})
	if err != nil {
		t.Fatalf("add invoice: %v", err)
	}
	if _, err := svc.AddPayment(ctx, Payment{InvoiceID: invoice.ID, Amount: 30000, PaymentDate: "2024-03-01", PaymentMode: domain.PaymentCash}); err != nil {
		t.Fatalf("add payment: %v", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snap.Invoices) != 1 || len(snap.Payments) != 1 {
		t.Fatalf("snapshot sizes: invoices=%d payments=%d", len(snap.Invoices), len(snap.Payments))
	}
	if snap.Invoices[0].Status != domain.InvoicePartial {
		t.Fatalf("status = %s, want partial", snap.Invoices[0].Status)
	}
}
