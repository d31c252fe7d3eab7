package memory

// Snapshot captures a point-in-time clone of every ledger collection in
// insertion order. Durable backends marshal it bucket by bucket.
type Snapshot struct {
	Properties  []Property          `json:"properties"`
	Tenants     []Tenant            `json:"tenants"`
	Agreements  []TenancyAgreement  `json:"agreements"`
	Invoices    []RentInvoice       `json:"invoices"`
	Payments    []Payment           `json:"payments"`
	Expenses    []Expense           `json:"expenses"`
	Maintenance []MaintenanceRecord `json:"maintenance"`
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cloned := s.state.clone()
	return Snapshot{
		Properties:  cloned.properties,
		Tenants:     cloned.tenants,
		Agreements:  cloned.agreements,
		Invoices:    cloned.invoices,
		Payments:    cloned.payments,
		Expenses:    cloned.expenses,
		Maintenance: cloned.maintenance,
	}
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ledgerState{
		properties:  snapshot.Properties,
		tenants:     snapshot.Tenants,
		agreements:  snapshot.Agreements,
		invoices:    snapshot.Invoices,
		payments:    snapshot.Payments,
		expenses:    snapshot.Expenses,
		maintenance: snapshot.Maintenance,
	}
	s.state = next.clone()
}
