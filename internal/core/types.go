package core

import "rentledger/pkg/domain"

type (
	EntityType        = domain.EntityType
	Property          = domain.Property
	Tenant            = domain.Tenant
	TenancyAgreement  = domain.TenancyAgreement
	RentInvoice       = domain.RentInvoice
	Payment           = domain.Payment
	Expense           = domain.Expense
	MaintenanceRecord = domain.MaintenanceRecord
	Change            = domain.Change
	ErrNotFound       = domain.ErrNotFound
	PersistentStore   = domain.PersistentStore
	Transaction       = domain.Transaction
	TransactionView   = domain.TransactionView
)

const (
	EntityProperty    = domain.EntityProperty
	EntityTenant      = domain.EntityTenant
	EntityAgreement   = domain.EntityAgreement
	EntityInvoice     = domain.EntityInvoice
	EntityPayment     = domain.EntityPayment
	EntityExpense     = domain.EntityExpense
	EntityMaintenance = domain.EntityMaintenance
)
