package core

import (
	"context"
	"sort"

	"rentledger/pkg/domain"
)

// Snapshot is a consistent copy of every ledger collection, taken under one
// read transaction. Aggregators operate on snapshots only.
type Snapshot struct {
	Properties  []Property          `json:"properties"`
	Tenants     []Tenant            `json:"tenants"`
	Agreements  []TenancyAgreement  `json:"agreements"`
	Invoices    []RentInvoice       `json:"invoices"`
	Payments    []Payment           `json:"payments"`
	Expenses    []Expense           `json:"expenses"`
	Maintenance []MaintenanceRecord `json:"maintenance_records"`
}

// DashboardStats is the point-in-time KPI set for the landlord dashboard.
// Monetary figures are scoped to the given month except TotalArrears, which
// spans the full ledger.
type DashboardStats struct {
	Month              string  `json:"month"`
	TotalProperties    int     `json:"total_properties"`
	OccupiedProperties int     `json:"occupied_properties"`
	VacantProperties   int     `json:"vacant_properties"`
	OccupancyRate      float64 `json:"occupancy_rate"`
	TotalTenants       int     `json:"total_tenants"`
	MonthlyRentDue     float64 `json:"monthly_rent_due"`
	MonthlyCollected   float64 `json:"monthly_rent_collected"`
	CollectionRate     float64 `json:"collection_rate"`
	TotalArrears       float64 `json:"total_arrears"`
	MonthlyExpenses    float64 `json:"monthly_expenses"`
	NetCashFlow        float64 `json:"net_cash_flow"`
}

// ComputeDashboard derives dashboard KPIs from a snapshot for the given
// billing month (YYYY-MM). Date scoping is a string-prefix match, so records
// carrying malformed dates simply fall outside every month.
//
// Arrears sum outstanding amounts over invoices whose status is overdue or
// partial. A pending invoice with a future due date carries no arrears even
// though nothing has been paid.
func ComputeDashboard(snap Snapshot, currentMonth string) DashboardStats {
	stats := DashboardStats{
		Month:           currentMonth,
		TotalProperties: len(snap.Properties),
		TotalTenants:    len(snap.Tenants),
	}
	for _, p := range snap.Properties {
		if p.Status == domain.PropertyOccupied {
			stats.OccupiedProperties++
		} else {
			stats.VacantProperties++
		}
	}
	if stats.TotalProperties > 0 {
		stats.OccupancyRate = float64(stats.OccupiedProperties) / float64(stats.TotalProperties) * 100
	}

	for _, inv := range snap.Invoices {
		if inv.Month == currentMonth {
			stats.MonthlyRentDue += inv.TotalAmount
		}
		if inv.Status == domain.InvoiceOverdue || inv.Status == domain.InvoicePartial {
			stats.TotalArrears += OutstandingAmount(inv, snap.Payments)
		}
	}
	for _, p := range snap.Payments {
		if inMonth(p.PaymentDate, currentMonth) {
			stats.MonthlyCollected += p.Amount
		}
	}
	if stats.MonthlyRentDue > 0 {
		stats.CollectionRate = stats.MonthlyCollected / stats.MonthlyRentDue * 100
	}
	for _, e := range snap.Expenses {
		if inMonth(e.Date, currentMonth) {
			stats.MonthlyExpenses += e.Amount
		}
	}
	stats.NetCashFlow = stats.MonthlyCollected - stats.MonthlyExpenses
	return stats
}

// inMonth reports whether a YYYY-MM-DD date falls inside a YYYY-MM month.
func inMonth(date, month string) bool {
	return len(date) >= len(month) && date[:len(month)] == month
}

// ActivityKind distinguishes the two record types shown in the feed.
type ActivityKind string

const (
	ActivityPayment ActivityKind = "payment"
	ActivityExpense ActivityKind = "expense"
)

// Activity is one entry of the recent activity feed.
type Activity struct {
	Kind        ActivityKind `json:"kind"`
	ReferenceID string       `json:"reference_id"`
	Date        string       `json:"date"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
}

// RecentActivities merges the last five payments and last five expenses by
// insertion order, then returns the top five by date descending. Ties keep
// payments ahead of expenses, matching the merge order.
func RecentActivities(payments []Payment, expenses []Expense) []Activity {
	activities := make([]Activity, 0, 10)
	for _, p := range tailPayments(payments, 5) {
		activities = append(activities, Activity{
			Kind:        ActivityPayment,
			ReferenceID: p.ID,
			Date:        p.PaymentDate,
			Amount:      p.Amount,
			Description: "Payment " + p.ReceiptNumber,
		})
	}
	for _, e := range tailExpenses(expenses, 5) {
		activities = append(activities, Activity{
			Kind:        ActivityExpense,
			ReferenceID: e.ID,
			Date:        e.Date,
			Amount:      e.Amount,
			Description: e.Description,
		})
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date > activities[j].Date
	})
	if len(activities) > 5 {
		activities = activities[:5]
	}
	return activities
}

func tailPayments(payments []Payment, n int) []Payment {
	if len(payments) > n {
		return payments[len(payments)-n:]
	}
	return payments
}

func tailExpenses(expenses []Expense, n int) []Expense {
	if len(expenses) > n {
		return expenses[len(expenses)-n:]
	}
	return expenses
}

// Dashboard computes the KPI set for the month of the service clock.
func (s *Service) Dashboard(ctx context.Context) (DashboardStats, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return DashboardStats{}, err
	}
	return ComputeDashboard(snap, MonthString(s.now())), nil
}

// RecentActivity returns the merged payment and expense feed.
func (s *Service) RecentActivity(ctx context.Context) ([]Activity, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return RecentActivities(snap.Payments, snap.Expenses), nil
}
