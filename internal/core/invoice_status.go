package core

import (
	"time"

	"rentledger/pkg/domain"
)

// Date layouts used across invoices, reports and exports. Dates are kept as
// strings so period filters reduce to prefix comparisons.
const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DateString renders t as a calendar date.
func DateString(t time.Time) string { return t.Format(DateLayout) }

// MonthString renders t as a billing month.
func MonthString(t time.Time) string { return t.Format(MonthLayout) }

// ResolveInvoiceStatus derives the effective status of an invoice from the
// payments recorded against it. Payments not referencing the invoice are
// ignored, so callers may pass the full payment collection.
//
// A fully covered invoice is paid, a partially covered one is partial, an
// uncovered invoice past its due date is overdue, anything else is pending.
// Note that covering compares against TotalAmount, so a zero-amount invoice
// resolves to paid immediately.
func ResolveInvoiceStatus(invoice RentInvoice, payments []Payment, now time.Time) domain.InvoiceStatus {
	var paid float64
	for _, p := range payments {
		if p.InvoiceID == invoice.ID {
			paid += p.Amount
		}
	}
	switch {
	case paid >= invoice.TotalAmount:
		return domain.InvoicePaid
	case paid > 0:
		return domain.InvoicePartial
	case DateString(now) > invoice.DueDate:
		return domain.InvoiceOverdue
	default:
		return domain.InvoicePending
	}
}

// PaidAmount sums the payments recorded against the given invoice.
func PaidAmount(invoiceID string, payments []Payment) float64 {
	var paid float64
	for _, p := range payments {
		if p.InvoiceID == invoiceID {
			paid += p.Amount
		}
	}
	return paid
}

// OutstandingAmount is the unpaid remainder of an invoice. It can be negative
// when an invoice was overpaid; aggregators clamp where the original ledgers
// did.
func OutstandingAmount(invoice RentInvoice, payments []Payment) float64 {
	return invoice.TotalAmount - PaidAmount(invoice.ID, payments)
}
