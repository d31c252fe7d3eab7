package core

import (
	"testing"
	"time"

	"rentledger/pkg/domain"
)

func invoiceForStatus(id string, total float64, dueDate string) RentInvoice {
	inv := RentInvoice{
		TenantID:    "tenant-1",
		PropertyID:  "property-1",
		DueDate:     dueDate,
		RentAmount:  total,
		TotalAmount: total,
		Month:       dueDate[:7],
	}
	inv.ID = id
	return inv
}

func paymentFor(invoiceID string, amount float64, date string) Payment {
	return Payment{
		InvoiceID:   invoiceID,
		Amount:      amount,
		PaymentDate: date,
		PaymentMode: domain.PaymentCash,
	}
}

func TestResolveInvoiceStatus(t *testing.T) {
	now := time.Date(2024, time.March, 15, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		name     string
		invoice  RentInvoice
		payments []Payment
		want     domain.InvoiceStatus
	}{
		{
			name:     "full payment resolves paid",
			invoice:  invoiceForStatus("inv-1", 100000, "2024-03-31"),
			payments: []Payment{paymentFor("inv-1", 100000, "2024-03-10")},
			want:     domain.InvoicePaid,
		},
		{
			name:     "partial payment resolves partial",
			invoice:  invoiceForStatus("inv-1", 100000, "2024-03-31"),
			payments: []Payment{paymentFor("inv-1", 40000, "2024-03-10")},
			want:     domain.InvoicePartial,
		},
		{
			name:    "payments across invoices accumulate per invoice",
			invoice: invoiceForStatus("inv-1", 100000, "2024-03-31"),
			payments: []Payment{
				paymentFor("inv-1", 60000, "2024-03-05"),
				paymentFor("inv-other", 100000, "2024-03-06"),
				paymentFor("inv-1", 40000, "2024-03-10"),
			},
			want: domain.InvoicePaid,
		},
		{
			name:    "unpaid past due resolves overdue",
			invoice: invoiceForStatus("inv-1", 100000, "2024-03-10"),
			want:    domain.InvoiceOverdue,
		},
		{
			name:    "unpaid before due resolves pending",
			invoice: invoiceForStatus("inv-1", 100000, "2024-03-31"),
			want:    domain.InvoicePending,
		},
		{
			name:    "unpaid on due date resolves pending",
			invoice: invoiceForStatus("inv-1", 100000, "2024-03-15"),
			want:    domain.InvoicePending,
		},
		{
			name:    "zero amount invoice resolves paid with no payments",
			invoice: invoiceForStatus("inv-1", 0, "2024-03-01"),
			want:    domain.InvoicePaid,
		},
		{
			name:     "overpayment still resolves paid",
			invoice:  invoiceForStatus("inv-1", 100000, "2024-03-31"),
			payments: []Payment{paymentFor("inv-1", 150000, "2024-03-10")},
			want:     domain.InvoicePaid,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveInvoiceStatus(tc.invoice, tc.payments, now)
			if got != tc.want {
				t.Fatalf("status = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestPaidAndOutstandingAmounts(t *testing.T) {
	invoice := invoiceForStatus("inv-1", 100000, "2024-03-31")
	payments := []Payment{
		paymentFor("inv-1", 30000, "2024-03-05"),
		paymentFor("inv-2", 99999, "2024-03-06"),
		paymentFor("inv-1", 20000, "2024-03-07"),
	}
	if paid := PaidAmount("inv-1", payments); paid != 50000 {
		t.Fatalf("paid = %v, want 50000", paid)
	}
	if out := OutstandingAmount(invoice, payments); out != 50000 {
		t.Fatalf("outstanding = %v, want 50000", out)
	}
	over := []Payment{paymentFor("inv-1", 120000, "2024-03-05")}
	if out := OutstandingAmount(invoice, over); out != -20000 {
		t.Fatalf("overpaid outstanding = %v, want -20000", out)
	}
}

func TestDateAndMonthStrings(t *testing.T) {
	at := time.Date(2024, time.January, 5, 23, 59, 0, 0, time.UTC)
	if got := DateString(at); got != "2024-01-05" {
		t.Fatalf("DateString = %q", got)
	}
	if got := MonthString(at); got != "2024-01" {
		t.Fatalf("MonthString = %q", got)
	}
}
