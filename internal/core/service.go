package core

import (
	"context"
	"errors"
	"time"

	"rentledger/pkg/domain"
)

// Service coordinates every ledger operation on top of a persistent store.
// All writes run inside a single store transaction so derived records such as
// invoice status caches and maintenance expenses stay consistent with their
// source records.
type Service struct {
	store PersistentStore
	opts  serviceOptions
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...ServiceOption) *Service {
	options := defaultServiceOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{store: store, opts: options}
}

// NewInMemoryService creates a service backed by a fresh in-memory store.
func NewInMemoryService(opts ...ServiceOption) *Service {
	return NewService(NewMemoryStore(), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore {
	return s.store
}

func (s *Service) now() time.Time {
	return s.opts.clock.Now()
}

// Now exposes the service clock for callers that derive periods from it.
func (s *Service) Now() time.Time { return s.now() }

// run executes a write operation inside a transaction and reports its outcome
// to the configured observability sinks.
func (s *Service) run(ctx context.Context, operation string, entity EntityType, fn func(tx Transaction) error) error {
	var span TraceSpan
	if s.opts.tracer != nil {
		ctx, span = s.opts.tracer.Start(ctx, operation)
	}
	start := time.Now()
	changes, err := s.store.RunInTransaction(ctx, fn)
	duration := time.Since(start)

	if s.opts.metrics != nil {
		s.opts.metrics.Observe(ctx, operation, err == nil, duration)
	}
	if span != nil {
		span.End(err)
	}
	if s.opts.audit != nil {
		entry := AuditEntry{
			Operation:  operation,
			Entity:     entity,
			Status:     AuditStatusSuccess,
			Changes:    changes,
			EntityID:   changeEntityID(entity, changes),
			OccurredAt: s.now(),
		}
		if err != nil {
			entry.Status = AuditStatusError
			entry.Error = err.Error()
			entry.Changes = nil
			entry.EntityID = ""
		}
		s.opts.audit.Record(ctx, entry)
	}
	if err != nil {
		s.opts.logger.Error("ledger operation failed", "operation", operation, "error", err)
		return err
	}
	s.opts.logger.Debug("ledger operation", "operation", operation, "changes", len(changes))
	return nil
}

// changeEntityID extracts the identifier of the first change matching the
// operation's primary entity.
func changeEntityID(entity EntityType, changes []Change) string {
	for _, change := range changes {
		if change.Entity != entity {
			continue
		}
		rec := change.After
		if rec == nil {
			rec = change.Before
		}
		switch v := rec.(type) {
		case domain.Property:
			return v.ID
		case domain.Tenant:
			return v.ID
		case domain.TenancyAgreement:
			return v.ID
		case domain.RentInvoice:
			return v.ID
		case domain.Payment:
			return v.ID
		case domain.Expense:
			return v.ID
		case domain.MaintenanceRecord:
			return v.ID
		}
	}
	return ""
}

// PropertyUpdate is a partial patch for a property. Nil fields are left
// untouched; Utilities replaces the whole utilities block when set.
type PropertyUpdate struct {
	HouseNumber *string
	Location    *string
	Type        *string
	Size        *int
	RentRate    *float64
	Status      *domain.PropertyStatus
	Utilities   *domain.Utilities
}

func (u PropertyUpdate) apply(p *Property) {
	if u.HouseNumber != nil {
		p.HouseNumber = *u.HouseNumber
	}
	if u.Location != nil {
		p.Location = *u.Location
	}
	if u.Type != nil {
		p.Type = *u.Type
	}
	if u.Size != nil {
		p.Size = *u.Size
	}
	if u.RentRate != nil {
		p.RentRate = *u.RentRate
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.Utilities != nil {
		utilities := *u.Utilities
		p.Utilities = &utilities
	}
}

// TenantUpdate is a partial patch for a tenant. Nil fields are left untouched.
type TenantUpdate struct {
	Name             *string
	IDPassport       *string
	Phone            *string
	Email            *string
	NextOfKin        *domain.NextOfKin
	EmergencyContact *domain.EmergencyContact
}

func (u TenantUpdate) apply(t *Tenant) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.IDPassport != nil {
		t.IDPassport = *u.IDPassport
	}
	if u.Phone != nil {
		t.Phone = *u.Phone
	}
	if u.Email != nil {
		email := *u.Email
		t.Email = &email
	}
	if u.NextOfKin != nil {
		t.NextOfKin = *u.NextOfKin
	}
	if u.EmergencyContact != nil {
		t.EmergencyContact = *u.EmergencyContact
	}
}

// AddProperty persists a new property.
func (s *Service) AddProperty(ctx context.Context, property Property) (Property, error) {
	var created Property
	err := s.run(ctx, "create_property", EntityProperty, func(tx Transaction) error {
		var err error
		created, err = tx.CreateProperty(property)
		return err
	})
	return created, err
}

// UpdateProperty applies a partial patch to an existing property. A missing
// id yields domain.ErrNotFound.
func (s *Service) UpdateProperty(ctx context.Context, id string, update PropertyUpdate) (Property, error) {
	var updated Property
	err := s.run(ctx, "update_property", EntityProperty, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateProperty(id, func(p *Property) error {
			update.apply(p)
			return nil
		})
		return err
	})
	return updated, err
}

// DeleteProperty removes a property. It reports whether a record was removed;
// a missing id is not an error.
func (s *Service) DeleteProperty(ctx context.Context, id string) (bool, error) {
	err := s.run(ctx, "delete_property", EntityProperty, func(tx Transaction) error {
		return tx.DeleteProperty(id)
	})
	if err != nil {
		var notFound ErrNotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetProperty fetches a property by id.
func (s *Service) GetProperty(_ context.Context, id string) (Property, bool) {
	return s.store.GetProperty(id)
}

// ListProperties returns all properties in insertion order.
func (s *Service) ListProperties(_ context.Context) []Property {
	return s.store.ListProperties()
}

// AddTenant persists a new tenant.
func (s *Service) AddTenant(ctx context.Context, tenant Tenant) (Tenant, error) {
	var created Tenant
	err := s.run(ctx, "create_tenant", EntityTenant, func(tx Transaction) error {
		var err error
		created, err = tx.CreateTenant(tenant)
		return err
	})
	return created, err
}

// UpdateTenant applies a partial patch to an existing tenant. A missing id
// yields domain.ErrNotFound.
func (s *Service) UpdateTenant(ctx context.Context, id string, update TenantUpdate) (Tenant, error) {
	var updated Tenant
	err := s.run(ctx, "update_tenant", EntityTenant, func(tx Transaction) error {
		var err error
		updated, err = tx.UpdateTenant(id, func(t *Tenant) error {
			update.apply(t)
			return nil
		})
		return err
	})
	return updated, err
}

// DeleteTenant removes a tenant. It reports whether a record was removed; a
// missing id is not an error.
func (s *Service) DeleteTenant(ctx context.Context, id string) (bool, error) {
	err := s.run(ctx, "delete_tenant", EntityTenant, func(tx Transaction) error {
		return tx.DeleteTenant(id)
	})
	if err != nil {
		var notFound ErrNotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetTenant fetches a tenant by id.
func (s *Service) GetTenant(_ context.Context, id string) (Tenant, bool) {
	return s.store.GetTenant(id)
}

// ListTenants returns all tenants in insertion order.
func (s *Service) ListTenants(_ context.Context) []Tenant {
	return s.store.ListTenants()
}

// AddAgreement persists a tenancy agreement and marks the referenced property
// occupied in the same transaction. Status defaults to active when unset; a
// dangling property reference is tolerated.
func (s *Service) AddAgreement(ctx context.Context, agreement TenancyAgreement) (TenancyAgreement, error) {
	if agreement.Status == "" {
		agreement.Status = domain.AgreementActive
	}
	var created TenancyAgreement
	err := s.run(ctx, "create_agreement", EntityAgreement, func(tx Transaction) error {
		var err error
		created, err = tx.CreateAgreement(agreement)
		if err != nil {
			return err
		}
		if _, ok := tx.FindProperty(created.PropertyID); ok {
			_, err = tx.UpdateProperty(created.PropertyID, func(p *Property) error {
				p.Status = domain.PropertyOccupied
				return nil
			})
		}
		return err
	})
	return created, err
}

// ListAgreements returns all tenancy agreements in insertion order.
func (s *Service) ListAgreements(_ context.Context) []TenancyAgreement {
	return s.store.ListAgreements()
}

// AddInvoice persists a rent invoice. When no agreement reference is supplied
// the first agreement matching the tenant and property is linked, regardless
// of its status; no match leaves the reference empty. The invoice total is
// fixed as rent plus utilities and the status cache starts at pending.
func (s *Service) AddInvoice(ctx context.Context, invoice RentInvoice) (RentInvoice, error) {
	var created RentInvoice
	err := s.run(ctx, "create_invoice", EntityInvoice, func(tx Transaction) error {
		if invoice.AgreementID == "" {
			for _, agreement := range tx.Snapshot().ListAgreements() {
				if agreement.TenantID == invoice.TenantID && agreement.PropertyID == invoice.PropertyID {
					invoice.AgreementID = agreement.ID
					break
				}
			}
		}
		invoice.TotalAmount = invoice.RentAmount
		if invoice.UtilitiesAmount != nil {
			invoice.TotalAmount += *invoice.UtilitiesAmount
		}
		invoice.Status = domain.InvoicePending
		var err error
		created, err = tx.CreateInvoice(invoice)
		return err
	})
	return created, err
}

// GetInvoice fetches an invoice by id with its stored status cache.
func (s *Service) GetInvoice(_ context.Context, id string) (RentInvoice, bool) {
	return s.store.GetInvoice(id)
}

// ListInvoices returns all invoices in insertion order with their status
// recomputed from recorded payments at the configured clock. The stored
// status field is only a cache; reads never trust it.
func (s *Service) ListInvoices(ctx context.Context) ([]RentInvoice, error) {
	now := s.now()
	var invoices []RentInvoice
	err := s.store.View(ctx, func(view TransactionView) error {
		payments := view.ListPayments()
		invoices = view.ListInvoices()
		for i := range invoices {
			invoices[i].Status = ResolveInvoiceStatus(invoices[i], payments, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// AddPayment records a payment. Tenant and property references are
// denormalized from the referenced invoice, and the invoice status cache is
// recomputed in the same transaction. A dangling invoice reference is
// tolerated; the payment is stored as given.
func (s *Service) AddPayment(ctx context.Context, payment Payment) (Payment, error) {
	now := s.now()
	var created Payment
	err := s.run(ctx, "create_payment", EntityPayment, func(tx Transaction) error {
		invoice, ok := tx.FindInvoice(payment.InvoiceID)
		if ok {
			payment.TenantID = invoice.TenantID
			payment.PropertyID = invoice.PropertyID
		}
		var err error
		created, err = tx.CreatePayment(payment)
		if err != nil || !ok {
			return err
		}
		status := ResolveInvoiceStatus(invoice, tx.ListPaymentsByInvoice(invoice.ID), now)
		if status != invoice.Status {
			_, err = tx.UpdateInvoiceStatus(invoice.ID, status)
		}
		return err
	})
	return created, err
}

// ListPayments returns all payments in insertion order.
func (s *Service) ListPayments(_ context.Context) []Payment {
	return s.store.ListPayments()
}

// AddExpense persists an expense.
func (s *Service) AddExpense(ctx context.Context, expense Expense) (Expense, error) {
	var created Expense
	err := s.run(ctx, "create_expense", EntityExpense, func(tx Transaction) error {
		var err error
		created, err = tx.CreateExpense(expense)
		return err
	})
	return created, err
}

// ListExpenses returns all expenses in insertion order.
func (s *Service) ListExpenses(_ context.Context) []Expense {
	return s.store.ListExpenses()
}

// AddMaintenanceRecord persists a maintenance record. A record arriving as
// completed with a positive cost derives a maintenance expense against the
// same property in the same transaction. The derivation happens once, at
// creation; records created pending never produce an expense later.
func (s *Service) AddMaintenanceRecord(ctx context.Context, record MaintenanceRecord) (MaintenanceRecord, error) {
	var created MaintenanceRecord
	err := s.run(ctx, "create_maintenance_record", EntityMaintenance, func(tx Transaction) error {
		var err error
		created, err = tx.CreateMaintenanceRecord(record)
		if err != nil {
			return err
		}
		if created.Status != domain.MaintenanceCompleted || created.Cost <= 0 {
			return nil
		}
		propertyID := created.PropertyID
		expense := Expense{
			PropertyID:      &propertyID,
			Date:            created.Date,
			Description:     "Maintenance: " + created.Description,
			Amount:          created.Cost,
			Category:        domain.ExpenseMaintenance,
			ServiceProvider: created.ServiceProvider,
		}
		_, err = tx.CreateExpense(expense)
		return err
	})
	return created, err
}

// ListMaintenanceRecords returns all maintenance records in insertion order.
func (s *Service) ListMaintenanceRecords(_ context.Context) []MaintenanceRecord {
	return s.store.ListMaintenanceRecords()
}

// Snapshot returns a consistent copy of every collection. Invoice statuses
// are resolved against recorded payments before the snapshot is handed to
// aggregators, so downstream sums never see a stale cache.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	now := s.now()
	var snap Snapshot
	err := s.store.View(ctx, func(view TransactionView) error {
		snap = Snapshot{
			Properties:  view.ListProperties(),
			Tenants:     view.ListTenants(),
			Agreements:  view.ListAgreements(),
			Invoices:    view.ListInvoices(),
			Payments:    view.ListPayments(),
			Expenses:    view.ListExpenses(),
			Maintenance: view.ListMaintenanceRecords(),
		}
		for i := range snap.Invoices {
			snap.Invoices[i].Status = ResolveInvoiceStatus(snap.Invoices[i], snap.Payments, now)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
