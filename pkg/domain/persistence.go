package domain

import "context"

// Transaction exposes the ledger mutations that a persistence implementation
// must support within an atomic scope. Create operations stamp identity and
// timestamps; collections keep records in insertion order.
type Transaction interface {
	Snapshot() TransactionView
	CreateProperty(Property) (Property, error)
	UpdateProperty(id string, mutator func(*Property) error) (Property, error)
	DeleteProperty(id string) error
	CreateTenant(Tenant) (Tenant, error)
	UpdateTenant(id string, mutator func(*Tenant) error) (Tenant, error)
	DeleteTenant(id string) error
	CreateAgreement(TenancyAgreement) (TenancyAgreement, error)
	CreateInvoice(RentInvoice) (RentInvoice, error)
	UpdateInvoiceStatus(id string, status InvoiceStatus) (RentInvoice, error)
	CreatePayment(Payment) (Payment, error)
	CreateExpense(Expense) (Expense, error)
	CreateMaintenanceRecord(MaintenanceRecord) (MaintenanceRecord, error)
	FindProperty(id string) (Property, bool)
	FindInvoice(id string) (RentInvoice, bool)
	ListPaymentsByInvoice(invoiceID string) []Payment
}

// TransactionView provides read-only access to a consistent snapshot of all
// ledger collections for aggregation.
type TransactionView interface {
	ListProperties() []Property
	ListTenants() []Tenant
	ListAgreements() []TenancyAgreement
	ListInvoices() []RentInvoice
	ListPayments() []Payment
	ListExpenses() []Expense
	ListMaintenanceRecords() []MaintenanceRecord
	FindProperty(id string) (Property, bool)
	FindTenant(id string) (Tenant, bool)
	FindInvoice(id string) (RentInvoice, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetProperty(id string) (Property, bool)
	GetTenant(id string) (Tenant, bool)
	GetInvoice(id string) (RentInvoice, bool)
	ListProperties() []Property
	ListTenants() []Tenant
	ListAgreements() []TenancyAgreement
	ListInvoices() []RentInvoice
	ListPayments() []Payment
	ListExpenses() []Expense
	ListMaintenanceRecords() []MaintenanceRecord
}
