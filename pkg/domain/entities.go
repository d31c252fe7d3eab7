// Package domain defines the persistent rental bookkeeping entities, value
// types, and persistence contracts used by rentledger.
package domain

import "time"

// EntityType identifies the type of record stored in the ledger.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityProperty identifies a rental property record.
	EntityProperty EntityType = "property"
	// EntityTenant identifies a tenant record.
	EntityTenant EntityType = "tenant"
	// EntityAgreement identifies a tenancy agreement record.
	EntityAgreement EntityType = "agreement"
	// EntityInvoice identifies a rent invoice record.
	EntityInvoice EntityType = "invoice"
	// EntityPayment identifies a payment record.
	EntityPayment EntityType = "payment"
	// EntityExpense identifies an expense record.
	EntityExpense EntityType = "expense"
	// EntityMaintenance identifies a maintenance record.
	EntityMaintenance EntityType = "maintenance"
)

// PropertyStatus is the sole occupancy signal for a property.
type PropertyStatus string

// Canonical property occupancy states.
const (
	PropertyOccupied PropertyStatus = "occupied"
	PropertyVacant   PropertyStatus = "vacant"
)

// BillingType distinguishes how utility accounts are billed.
type BillingType string

// Canonical utility billing types.
const (
	BillingPrepaid  BillingType = "prepaid"
	BillingPostpaid BillingType = "postpaid"
)

// RentTerms enumerates agreement billing cadences.
type RentTerms string

// Canonical rent payment cadences.
const (
	RentMonthly   RentTerms = "monthly"
	RentQuarterly RentTerms = "quarterly"
	RentYearly    RentTerms = "yearly"
)

// AgreementStatus enumerates tenancy agreement lifecycle states.
type AgreementStatus string

// Canonical agreement statuses. Expiry is never reconciled automatically;
// callers transition agreements explicitly.
const (
	AgreementActive     AgreementStatus = "active"
	AgreementExpired    AgreementStatus = "expired"
	AgreementTerminated AgreementStatus = "terminated"
)

// InvoiceStatus enumerates derived invoice payment states. The field is a
// cache recomputed from payments; it is never set directly by callers.
type InvoiceStatus string

// Canonical invoice statuses.
const (
	InvoicePending InvoiceStatus = "pending"
	InvoicePaid    InvoiceStatus = "paid"
	InvoicePartial InvoiceStatus = "partial"
	InvoiceOverdue InvoiceStatus = "overdue"
)

// PaymentMode enumerates accepted payment channels.
type PaymentMode string

// Canonical payment modes.
const (
	PaymentCash        PaymentMode = "cash"
	PaymentBank        PaymentMode = "bank"
	PaymentMobileMoney PaymentMode = "mobile_money"
	PaymentCheque      PaymentMode = "cheque"
)

// ExpenseCategory enumerates the fixed expense categories used by reports.
type ExpenseCategory string

// Canonical expense categories. Reports iterate these in declaration order.
const (
	ExpenseRepairs     ExpenseCategory = "repairs"
	ExpenseCleaning    ExpenseCategory = "cleaning"
	ExpenseUtilities   ExpenseCategory = "utilities"
	ExpenseAdmin       ExpenseCategory = "admin"
	ExpenseMaintenance ExpenseCategory = "maintenance"
	ExpenseOther       ExpenseCategory = "other"
)

// ExpenseCategories lists all categories in report order.
var ExpenseCategories = []ExpenseCategory{
	ExpenseRepairs,
	ExpenseCleaning,
	ExpenseUtilities,
	ExpenseAdmin,
	ExpenseMaintenance,
	ExpenseOther,
}

// MaintenanceType enumerates maintenance work categories.
type MaintenanceType string

// Canonical maintenance types.
const (
	MaintenanceRepairs    MaintenanceType = "repairs"
	MaintenancePainting   MaintenanceType = "painting"
	MaintenanceCleaning   MaintenanceType = "cleaning"
	MaintenanceInspection MaintenanceType = "inspection"
	MaintenanceOtherWork  MaintenanceType = "other"
)

// MaintenanceStatus enumerates maintenance record workflow states.
type MaintenanceStatus string

// Canonical maintenance statuses. Completing a record with a positive cost
// derives a maintenance expense at creation time.
const (
	MaintenancePending   MaintenanceStatus = "pending"
	MaintenanceCompleted MaintenanceStatus = "completed"
	MaintenanceCancelled MaintenanceStatus = "cancelled"
)

// Base contains identity and the creation stamp shared by all records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// Tracked extends Base with an update stamp for records that support update.
type Tracked struct {
	Base
	UpdatedAt time.Time `json:"updated_at"`
}

// Utilities captures the optional utility accounts attached to a property.
type Utilities struct {
	ElectricityMeter string      `json:"electricity_meter"`
	WaterAccount     string      `json:"water_account"`
	BillingType      BillingType `json:"billing_type"`
}

// Property represents a rental unit in the landlord's portfolio.
type Property struct {
	Tracked
	HouseNumber string         `json:"house_number"`
	Location    string         `json:"location"`
	Type        string         `json:"type"`
	Size        int            `json:"size"`
	RentRate    float64        `json:"rent_rate"`
	Status      PropertyStatus `json:"status"`
	Utilities   *Utilities     `json:"utilities,omitempty"`
}

// DisplayName renders the property identification used across reports.
func (p Property) DisplayName() string {
	return p.HouseNumber + " - " + p.Location
}

// NextOfKin holds the required next-of-kin contact for a tenant.
type NextOfKin struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// EmergencyContact holds the required emergency contact for a tenant.
type EmergencyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Tenant represents a person renting one or more properties.
type Tenant struct {
	Tracked
	Name             string           `json:"name"`
	IDPassport       string           `json:"id_passport"`
	Phone            string           `json:"phone"`
	Email            *string          `json:"email,omitempty"`
	NextOfKin        NextOfKin        `json:"next_of_kin"`
	EmergencyContact EmergencyContact `json:"emergency_contact"`
}

// TenancyAgreement links a tenant to a property for a rental period.
// Multiple agreements per tenant/property pair may coexist.
type TenancyAgreement struct {
	Tracked
	TenantID        string          `json:"tenant_id"`
	PropertyID      string          `json:"property_id"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	SecurityDeposit float64         `json:"security_deposit"`
	RentAmount      float64         `json:"rent_amount"`
	RentTerms       RentTerms       `json:"rent_terms"`
	Status          AgreementStatus `json:"status"`
	MoveInDate      *string         `json:"move_in_date,omitempty"`
	MoveOutDate     *string         `json:"move_out_date,omitempty"`
}

// RentInvoice bills a tenant for a month of rent plus optional utilities.
// TotalAmount is fixed at creation and never recomputed afterwards.
type RentInvoice struct {
	Base
	TenantID        string        `json:"tenant_id"`
	PropertyID      string        `json:"property_id"`
	AgreementID     string        `json:"agreement_id"`
	DueDate         string        `json:"due_date"`
	RentAmount      float64       `json:"rent_amount"`
	UtilitiesAmount *float64      `json:"utilities_amount,omitempty"`
	TotalAmount     float64       `json:"total_amount"`
	Status          InvoiceStatus `json:"status"`
	Month           string        `json:"month"` // YYYY-MM
}

// Payment records money received against an invoice. Append-only.
// Tenant and property references are denormalized from the invoice.
type Payment struct {
	Base
	InvoiceID     string      `json:"invoice_id"`
	TenantID      string      `json:"tenant_id"`
	PropertyID    string      `json:"property_id"`
	Amount        float64     `json:"amount"`
	PaymentDate   string      `json:"payment_date"`
	PaymentMode   PaymentMode `json:"payment_mode"`
	ReceiptNumber string      `json:"receipt_number"`
	Notes         *string     `json:"notes,omitempty"`
}

// Expense records an outgoing cost, optionally tied to a property.
// A nil PropertyID marks a general (non-property) expense. Append-only.
type Expense struct {
	Base
	PropertyID      *string         `json:"property_id,omitempty"`
	Date            string          `json:"date"`
	Description     string          `json:"description"`
	Amount          float64         `json:"amount"`
	Category        ExpenseCategory `json:"category"`
	ServiceProvider *string         `json:"service_provider,omitempty"`
	ReceiptNumber   *string         `json:"receipt_number,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// MaintenanceRecord captures work performed on a property. Append-only.
type MaintenanceRecord struct {
	Base
	PropertyID      string            `json:"property_id"`
	Date            string            `json:"date"`
	Description     string            `json:"description"`
	Cost            float64           `json:"cost"`
	Type            MaintenanceType   `json:"type"`
	ServiceProvider *string           `json:"service_provider,omitempty"`
	Status          MaintenanceStatus `json:"status"`
}
