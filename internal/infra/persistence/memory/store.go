// Package memory provides the in-memory implementation of the ledger
// persistence contract. Durable backends embed it and snapshot its state.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"rentledger/pkg/domain"
)

// Compile-time contract assertion ensuring memory.Store adheres to the domain persistence interface.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Property aliases domain.Property for in-memory persistence operations.
	Property = domain.Property
	// Tenant aliases domain.Tenant.
	Tenant = domain.Tenant
	// TenancyAgreement aliases domain.TenancyAgreement.
	TenancyAgreement = domain.TenancyAgreement
	// RentInvoice aliases domain.RentInvoice.
	RentInvoice = domain.RentInvoice
	// Payment aliases domain.Payment.
	Payment = domain.Payment
	// Expense aliases domain.Expense.
	Expense = domain.Expense
	// MaintenanceRecord aliases domain.MaintenanceRecord.
	MaintenanceRecord = domain.MaintenanceRecord
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
)

// ledgerState holds every collection in insertion order. Order is part of the
// persistence contract: getAll returns records as they were appended.
type ledgerState struct {
	properties  []Property
	tenants     []Tenant
	agreements  []TenancyAgreement
	invoices    []RentInvoice
	payments    []Payment
	expenses    []Expense
	maintenance []MaintenanceRecord
}

func (s ledgerState) clone() ledgerState {
	cloned := ledgerState{
		properties:  make([]Property, len(s.properties)),
		tenants:     make([]Tenant, len(s.tenants)),
		agreements:  append([]TenancyAgreement(nil), s.agreements...),
		invoices:    append([]RentInvoice(nil), s.invoices...),
		payments:    make([]Payment, len(s.payments)),
		expenses:    make([]Expense, len(s.expenses)),
		maintenance: make([]MaintenanceRecord, len(s.maintenance)),
	}
	for i, p := range s.properties {
		cloned.properties[i] = cloneProperty(p)
	}
	for i, t := range s.tenants {
		cloned.tenants[i] = cloneTenant(t)
	}
	for i, p := range s.payments {
		cloned.payments[i] = clonePayment(p)
	}
	for i, e := range s.expenses {
		cloned.expenses[i] = cloneExpense(e)
	}
	for i, m := range s.maintenance {
		cloned.maintenance[i] = cloneMaintenance(m)
	}
	return cloned
}

func cloneProperty(p Property) Property {
	cp := p
	if p.Utilities != nil {
		u := *p.Utilities
		cp.Utilities = &u
	}
	return cp
}

func cloneTenant(t Tenant) Tenant {
	cp := t
	cp.Email = cloneStr(t.Email)
	return cp
}

func cloneAgreement(a TenancyAgreement) TenancyAgreement {
	cp := a
	cp.MoveInDate = cloneStr(a.MoveInDate)
	cp.MoveOutDate = cloneStr(a.MoveOutDate)
	return cp
}

func cloneInvoice(inv RentInvoice) RentInvoice {
	cp := inv
	if inv.UtilitiesAmount != nil {
		v := *inv.UtilitiesAmount
		cp.UtilitiesAmount = &v
	}
	return cp
}

func clonePayment(p Payment) Payment {
	cp := p
	cp.Notes = cloneStr(p.Notes)
	return cp
}

func cloneExpense(e Expense) Expense {
	cp := e
	cp.PropertyID = cloneStr(e.PropertyID)
	cp.ServiceProvider = cloneStr(e.ServiceProvider)
	cp.ReceiptNumber = cloneStr(e.ReceiptNumber)
	cp.Notes = cloneStr(e.Notes)
	return cp
}

func cloneMaintenance(m MaintenanceRecord) MaintenanceRecord {
	cp := m
	cp.ServiceProvider = cloneStr(m.ServiceProvider)
	return cp
}

func cloneStr(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

// Store provides an in-memory transactional store for the ledger collections.
type Store struct {
	mu    sync.RWMutex
	state ledgerState
	nowFn func() time.Time
	idFn  func() string
}

// NewStore constructs an empty in-memory store.
func NewStore() *Store {
	return &Store{
		nowFn: func() time.Time { return time.Now().UTC() },
		idFn:  uuid.NewString,
	}
}

// SetClock overrides the timestamp source. Intended for tests.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now != nil {
		s.nowFn = now
	}
}

// storeTx implements domain.Transaction against a cloned state.
type storeTx struct {
	store   *Store
	state   ledgerState
	changes []Change
	now     time.Time
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The mutated state replaces the committed state only when fn returns
// nil; the recorded changes are returned for audit consumers.
func (s *Store) RunInTransaction(ctx context.Context, fn func(Transaction) error) ([]Change, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &storeTx{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}
	if err := fn(tx); err != nil {
		return nil, err
	}
	s.state = tx.state
	return tx.changes, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(&stateView{state: &snapshot})
}

func (tx *storeTx) record(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot exposes the transactional state read-only.
func (tx *storeTx) Snapshot() TransactionView {
	return &stateView{state: &tx.state}
}

// CreateProperty appends a new property, stamping identity and timestamps.
func (tx *storeTx) CreateProperty(p Property) (Property, error) {
	if p.ID == "" {
		p.ID = tx.store.idFn()
	}
	if _, ok := findProperty(tx.state.properties, p.ID); ok {
		return Property{}, fmt.Errorf("property %q already exists", p.ID)
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.properties = append(tx.state.properties, cloneProperty(p))
	tx.record(Change{Entity: domain.EntityProperty, Action: domain.ActionCreate, After: cloneProperty(p)})
	return cloneProperty(p), nil
}

// UpdateProperty mutates a property in place and advances its update stamp.
func (tx *storeTx) UpdateProperty(id string, mutator func(*Property) error) (Property, error) {
	idx, ok := propertyIndex(tx.state.properties, id)
	if !ok {
		return Property{}, domain.ErrNotFound{Entity: domain.EntityProperty, ID: id}
	}
	current := cloneProperty(tx.state.properties[idx])
	before := cloneProperty(current)
	if err := mutator(&current); err != nil {
		return Property{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.properties[idx] = cloneProperty(current)
	tx.record(Change{Entity: domain.EntityProperty, Action: domain.ActionUpdate, Before: before, After: cloneProperty(current)})
	return current, nil
}

// DeleteProperty removes a property from the collection.
func (tx *storeTx) DeleteProperty(id string) error {
	idx, ok := propertyIndex(tx.state.properties, id)
	if !ok {
		return domain.ErrNotFound{Entity: domain.EntityProperty, ID: id}
	}
	before := cloneProperty(tx.state.properties[idx])
	tx.state.properties = append(tx.state.properties[:idx], tx.state.properties[idx+1:]...)
	tx.record(Change{Entity: domain.EntityProperty, Action: domain.ActionDelete, Before: before})
	return nil
}

// CreateTenant appends a new tenant record.
func (tx *storeTx) CreateTenant(t Tenant) (Tenant, error) {
	if t.ID == "" {
		t.ID = tx.store.idFn()
	}
	for _, existing := range tx.state.tenants {
		if existing.ID == t.ID {
			return Tenant{}, fmt.Errorf("tenant %q already exists", t.ID)
		}
	}
	t.CreatedAt = tx.now
	t.UpdatedAt = tx.now
	tx.state.tenants = append(tx.state.tenants, cloneTenant(t))
	tx.record(Change{Entity: domain.EntityTenant, Action: domain.ActionCreate, After: cloneTenant(t)})
	return cloneTenant(t), nil
}

// UpdateTenant mutates a tenant in place and advances its update stamp.
func (tx *storeTx) UpdateTenant(id string, mutator func(*Tenant) error) (Tenant, error) {
	idx := -1
	for i, t := range tx.state.tenants {
		if t.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Tenant{}, domain.ErrNotFound{Entity: domain.EntityTenant, ID: id}
	}
	current := cloneTenant(tx.state.tenants[idx])
	before := cloneTenant(current)
	if err := mutator(&current); err != nil {
		return Tenant{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.tenants[idx] = cloneTenant(current)
	tx.record(Change{Entity: domain.EntityTenant, Action: domain.ActionUpdate, Before: before, After: cloneTenant(current)})
	return current, nil
}

// DeleteTenant removes a tenant from the collection.
func (tx *storeTx) DeleteTenant(id string) error {
	for i, t := range tx.state.tenants {
		if t.ID == id {
			before := cloneTenant(t)
			tx.state.tenants = append(tx.state.tenants[:i], tx.state.tenants[i+1:]...)
			tx.record(Change{Entity: domain.EntityTenant, Action: domain.ActionDelete, Before: before})
			return nil
		}
	}
	return domain.ErrNotFound{Entity: domain.EntityTenant, ID: id}
}

// CreateAgreement appends a tenancy agreement. Agreements are append-only.
func (tx *storeTx) CreateAgreement(a TenancyAgreement) (TenancyAgreement, error) {
	if a.ID == "" {
		a.ID = tx.store.idFn()
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.agreements = append(tx.state.agreements, cloneAgreement(a))
	tx.record(Change{Entity: domain.EntityAgreement, Action: domain.ActionCreate, After: cloneAgreement(a)})
	return cloneAgreement(a), nil
}

// CreateInvoice appends a rent invoice. Invoices are append-only; only the
// derived status field may change afterwards.
func (tx *storeTx) CreateInvoice(inv RentInvoice) (RentInvoice, error) {
	if inv.ID == "" {
		inv.ID = tx.store.idFn()
	}
	inv.CreatedAt = tx.now
	tx.state.invoices = append(tx.state.invoices, cloneInvoice(inv))
	tx.record(Change{Entity: domain.EntityInvoice, Action: domain.ActionCreate, After: cloneInvoice(inv)})
	return cloneInvoice(inv), nil
}

// UpdateInvoiceStatus rewrites the cached status of an invoice.
func (tx *storeTx) UpdateInvoiceStatus(id string, status domain.InvoiceStatus) (RentInvoice, error) {
	for i, inv := range tx.state.invoices {
		if inv.ID == id {
			before := cloneInvoice(inv)
			inv.Status = status
			tx.state.invoices[i] = inv
			tx.record(Change{Entity: domain.EntityInvoice, Action: domain.ActionUpdate, Before: before, After: cloneInvoice(inv)})
			return cloneInvoice(inv), nil
		}
	}
	return RentInvoice{}, domain.ErrNotFound{Entity: domain.EntityInvoice, ID: id}
}

// CreatePayment appends a payment. Payments are append-only.
func (tx *storeTx) CreatePayment(p Payment) (Payment, error) {
	if p.ID == "" {
		p.ID = tx.store.idFn()
	}
	p.CreatedAt = tx.now
	tx.state.payments = append(tx.state.payments, clonePayment(p))
	tx.record(Change{Entity: domain.EntityPayment, Action: domain.ActionCreate, After: clonePayment(p)})
	return clonePayment(p), nil
}

// CreateExpense appends an expense. Expenses are append-only.
func (tx *storeTx) CreateExpense(e Expense) (Expense, error) {
	if e.ID == "" {
		e.ID = tx.store.idFn()
	}
	e.CreatedAt = tx.now
	tx.state.expenses = append(tx.state.expenses, cloneExpense(e))
	tx.record(Change{Entity: domain.EntityExpense, Action: domain.ActionCreate, After: cloneExpense(e)})
	return cloneExpense(e), nil
}

// CreateMaintenanceRecord appends a maintenance record. Append-only.
func (tx *storeTx) CreateMaintenanceRecord(m MaintenanceRecord) (MaintenanceRecord, error) {
	if m.ID == "" {
		m.ID = tx.store.idFn()
	}
	m.CreatedAt = tx.now
	tx.state.maintenance = append(tx.state.maintenance, cloneMaintenance(m))
	tx.record(Change{Entity: domain.EntityMaintenance, Action: domain.ActionCreate, After: cloneMaintenance(m)})
	return cloneMaintenance(m), nil
}

// FindProperty retrieves a property by ID from the transactional state.
func (tx *storeTx) FindProperty(id string) (Property, bool) {
	return findProperty(tx.state.properties, id)
}

// FindInvoice retrieves an invoice by ID from the transactional state.
func (tx *storeTx) FindInvoice(id string) (RentInvoice, bool) {
	for _, inv := range tx.state.invoices {
		if inv.ID == id {
			return cloneInvoice(inv), true
		}
	}
	return RentInvoice{}, false
}

// ListPaymentsByInvoice returns all payments recorded against an invoice.
func (tx *storeTx) ListPaymentsByInvoice(invoiceID string) []Payment {
	var out []Payment
	for _, p := range tx.state.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, clonePayment(p))
		}
	}
	return out
}

func findProperty(properties []Property, id string) (Property, bool) {
	if idx, ok := propertyIndex(properties, id); ok {
		return cloneProperty(properties[idx]), true
	}
	return Property{}, false
}

func propertyIndex(properties []Property, id string) (int, bool) {
	for i, p := range properties {
		if p.ID == id {
			return i, true
		}
	}
	return -1, false
}

// stateView adapts ledgerState to the read-only TransactionView contract.
type stateView struct {
	state *ledgerState
}

func (v *stateView) ListProperties() []Property {
	out := make([]Property, 0, len(v.state.properties))
	for _, p := range v.state.properties {
		out = append(out, cloneProperty(p))
	}
	return out
}

func (v *stateView) ListTenants() []Tenant {
	out := make([]Tenant, 0, len(v.state.tenants))
	for _, t := range v.state.tenants {
		out = append(out, cloneTenant(t))
	}
	return out
}

func (v *stateView) ListAgreements() []TenancyAgreement {
	out := make([]TenancyAgreement, 0, len(v.state.agreements))
	for _, a := range v.state.agreements {
		out = append(out, cloneAgreement(a))
	}
	return out
}

func (v *stateView) ListInvoices() []RentInvoice {
	out := make([]RentInvoice, 0, len(v.state.invoices))
	for _, inv := range v.state.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out
}

func (v *stateView) ListPayments() []Payment {
	out := make([]Payment, 0, len(v.state.payments))
	for _, p := range v.state.payments {
		out = append(out, clonePayment(p))
	}
	return out
}

func (v *stateView) ListExpenses() []Expense {
	out := make([]Expense, 0, len(v.state.expenses))
	for _, e := range v.state.expenses {
		out = append(out, cloneExpense(e))
	}
	return out
}

func (v *stateView) ListMaintenanceRecords() []MaintenanceRecord {
	out := make([]MaintenanceRecord, 0, len(v.state.maintenance))
	for _, m := range v.state.maintenance {
		out = append(out, cloneMaintenance(m))
	}
	return out
}

func (v *stateView) FindProperty(id string) (Property, bool) {
	return findProperty(v.state.properties, id)
}

func (v *stateView) FindTenant(id string) (Tenant, bool) {
	for _, t := range v.state.tenants {
		if t.ID == id {
			return cloneTenant(t), true
		}
	}
	return Tenant{}, false
}

func (v *stateView) FindInvoice(id string) (RentInvoice, bool) {
	for _, inv := range v.state.invoices {
		if inv.ID == id {
			return cloneInvoice(inv), true
		}
	}
	return RentInvoice{}, false
}

// Read helpers ---------------------------------------------------------------

// GetProperty retrieves a property by ID from committed state.
func (s *Store) GetProperty(id string) (Property, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findProperty(s.state.properties, id)
}

// GetTenant retrieves a tenant by ID from committed state.
func (s *Store) GetTenant(id string) (Tenant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.state.tenants {
		if t.ID == id {
			return cloneTenant(t), true
		}
	}
	return Tenant{}, false
}

// GetInvoice retrieves an invoice by ID from committed state.
func (s *Store) GetInvoice(id string) (RentInvoice, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.state.invoices {
		if inv.ID == id {
			return cloneInvoice(inv), true
		}
	}
	return RentInvoice{}, false
}

// ListProperties returns all properties in insertion order.
func (s *Store) ListProperties() []Property {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Property, 0, len(s.state.properties))
	for _, p := range s.state.properties {
		out = append(out, cloneProperty(p))
	}
	return out
}

// ListTenants returns all tenants in insertion order.
func (s *Store) ListTenants() []Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tenant, 0, len(s.state.tenants))
	for _, t := range s.state.tenants {
		out = append(out, cloneTenant(t))
	}
	return out
}

// ListAgreements returns all tenancy agreements in insertion order.
func (s *Store) ListAgreements() []TenancyAgreement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TenancyAgreement, 0, len(s.state.agreements))
	for _, a := range s.state.agreements {
		out = append(out, cloneAgreement(a))
	}
	return out
}

// ListInvoices returns all invoices in insertion order.
func (s *Store) ListInvoices() []RentInvoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RentInvoice, 0, len(s.state.invoices))
	for _, inv := range s.state.invoices {
		out = append(out, cloneInvoice(inv))
	}
	return out
}

// ListPayments returns all payments in insertion order.
func (s *Store) ListPayments() []Payment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Payment, 0, len(s.state.payments))
	for _, p := range s.state.payments {
		out = append(out, clonePayment(p))
	}
	return out
}

// ListExpenses returns all expenses in insertion order.
func (s *Store) ListExpenses() []Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Expense, 0, len(s.state.expenses))
	for _, e := range s.state.expenses {
		out = append(out, cloneExpense(e))
	}
	return out
}

// ListMaintenanceRecords returns all maintenance records in insertion order.
func (s *Store) ListMaintenanceRecords() []MaintenanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]MaintenanceRecord, 0, len(s.state.maintenance))
	for _, m := range s.state.maintenance {
		out = append(out, cloneMaintenance(m))
	}
	return out
}
