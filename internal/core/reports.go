package core

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"rentledger/pkg/domain"
)

// Sentinels used when a referenced record is missing. Reports degrade to
// these rather than failing.
const (
	UnknownProperty = "Unknown Property"
	UnknownTenant   = "Unknown Tenant"
)

// ReportPeriod is one bucket of the financial series. Profit is always
// revenue minus expenses for the same bucket.
type ReportPeriod struct {
	Label    string  `json:"label"`
	Revenue  float64 `json:"revenue"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// FinancialReport carries the three parallel revenue/expense series for a
// calendar year.
type FinancialReport struct {
	Year      string         `json:"year"`
	Monthly   []ReportPeriod `json:"monthly"`
	Quarterly []ReportPeriod `json:"quarterly"`
	Yearly    ReportPeriod   `json:"yearly"`
}

// CategoryTotal is a yearly expense sum for one category.
type CategoryTotal struct {
	Category domain.ExpenseCategory `json:"category"`
	Total    float64                `json:"total"`
}

// TenantArrears is the outstanding balance owed by one tenant. PropertyName
// names the property of the last invoice found with a positive outstanding
// amount, not an aggregate across properties.
type TenantArrears struct {
	TenantID     string  `json:"tenant_id"`
	TenantName   string  `json:"tenant_name"`
	PropertyName string  `json:"property_name"`
	Amount       float64 `json:"amount"`
}

// PropertyArrears is the outstanding balance grouped by property display name.
type PropertyArrears struct {
	PropertyName string  `json:"property_name"`
	Amount       float64 `json:"amount"`
}

// OccupancyUnit is the per-property line of the occupancy report.
type OccupancyUnit struct {
	PropertyID   string                `json:"property_id"`
	PropertyName string                `json:"property_name"`
	Status       domain.PropertyStatus `json:"status"`
	TenantName   string                `json:"tenant_name,omitempty"`
}

// OccupancyPoint is one month of the occupancy trend.
type OccupancyPoint struct {
	Label string  `json:"label"`
	Rate  float64 `json:"rate"`
}

// OccupancyReport summarizes portfolio occupancy. The trend repeats the
// current rate across the trailing twelve months; no historical occupancy is
// tracked, so the series is flat by construction.
type OccupancyReport struct {
	Rate  float64          `json:"rate"`
	Units []OccupancyUnit  `json:"units"`
	Trend []OccupancyPoint `json:"trend"`
}

// AnnualReport bundles every generated report for one year.
type AnnualReport struct {
	Financial          FinancialReport   `json:"financial"`
	ExpensesByCategory []CategoryTotal   `json:"expenses_by_category"`
	ArrearsByTenant    []TenantArrears   `json:"arrears_by_tenant"`
	ArrearsByProperty  []PropertyArrears `json:"arrears_by_property"`
	Occupancy          OccupancyReport   `json:"occupancy"`
}

// dateMonth extracts the month number of a YYYY-MM-DD date, or 0 when the
// date is too short or malformed.
func dateMonth(date string) int {
	if len(date) < 7 {
		return 0
	}
	m, err := strconv.Atoi(date[5:7])
	if err != nil {
		return 0
	}
	return m
}

func inYear(date, year string) bool {
	return strings.HasPrefix(date, year+"-")
}

// GenerateFinancialReport computes monthly, quarterly and yearly revenue and
// expense series for the given year (YYYY). Revenue buckets payments by
// payment date, expenses bucket by expense date; both use string matching so
// malformed dates fall outside every bucket.
func GenerateFinancialReport(snap Snapshot, year string) FinancialReport {
	report := FinancialReport{
		Year:    year,
		Monthly: make([]ReportPeriod, 12),
	}
	yearNum, _ := strconv.Atoi(year)
	for m := 1; m <= 12; m++ {
		prefix := fmt.Sprintf("%s-%02d", year, m)
		period := ReportPeriod{
			Label: time.Date(yearNum, time.Month(m), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006"),
		}
		for _, p := range snap.Payments {
			if inMonth(p.PaymentDate, prefix) {
				period.Revenue += p.Amount
			}
		}
		for _, e := range snap.Expenses {
			if inMonth(e.Date, prefix) {
				period.Expenses += e.Amount
			}
		}
		period.Profit = period.Revenue - period.Expenses
		report.Monthly[m-1] = period
	}

	for q := 0; q < 4; q++ {
		first, last := q*3+1, q*3+3
		period := ReportPeriod{Label: fmt.Sprintf("Q%d %s", q+1, year)}
		for _, p := range snap.Payments {
			if m := dateMonth(p.PaymentDate); inYear(p.PaymentDate, year) && m >= first && m <= last {
				period.Revenue += p.Amount
			}
		}
		for _, e := range snap.Expenses {
			if m := dateMonth(e.Date); inYear(e.Date, year) && m >= first && m <= last {
				period.Expenses += e.Amount
			}
		}
		period.Profit = period.Revenue - period.Expenses
		report.Quarterly = append(report.Quarterly, period)
	}

	yearly := ReportPeriod{Label: year}
	for _, p := range snap.Payments {
		if inYear(p.PaymentDate, year) {
			yearly.Revenue += p.Amount
		}
	}
	for _, e := range snap.Expenses {
		if inYear(e.Date, year) {
			yearly.Expenses += e.Amount
		}
	}
	yearly.Profit = yearly.Revenue - yearly.Expenses
	report.Yearly = yearly
	return report
}

// GenerateExpenseBreakdown sums the year's expenses per category in the
// canonical category order. Categories with a zero total are omitted.
func GenerateExpenseBreakdown(snap Snapshot, year string) []CategoryTotal {
	var breakdown []CategoryTotal
	for _, category := range domain.ExpenseCategories {
		var total float64
		for _, e := range snap.Expenses {
			if e.Category == category && inYear(e.Date, year) {
				total += e.Amount
			}
		}
		if total > 0 {
			breakdown = append(breakdown, CategoryTotal{Category: category, Total: total})
		}
	}
	return breakdown
}

// propertyName resolves a property's display name, degrading to the unknown
// sentinel for dangling references.
func propertyName(snap Snapshot, id string) string {
	for _, p := range snap.Properties {
		if p.ID == id {
			return p.DisplayName()
		}
	}
	return UnknownProperty
}

// GenerateTenantArrears sums outstanding invoice amounts per tenant, in
// tenant insertion order, omitting tenants with nothing outstanding. Each
// entry names the property of the last invoice seen with a positive
// outstanding amount; a tenant owing on several properties is still reported
// under a single property name.
func GenerateTenantArrears(snap Snapshot) []TenantArrears {
	var arrears []TenantArrears
	for _, tenant := range snap.Tenants {
		entry := TenantArrears{TenantID: tenant.ID, TenantName: tenant.Name}
		for _, inv := range snap.Invoices {
			if inv.TenantID != tenant.ID {
				continue
			}
			outstanding := OutstandingAmount(inv, snap.Payments)
			if outstanding <= 0 {
				continue
			}
			entry.Amount += outstanding
			entry.PropertyName = propertyName(snap, inv.PropertyID)
		}
		if entry.Amount > 0 {
			arrears = append(arrears, entry)
		}
	}
	return arrears
}

// GeneratePropertyArrears groups outstanding invoice amounts by property
// display name, in first-seen invoice order.
func GeneratePropertyArrears(snap Snapshot) []PropertyArrears {
	var arrears []PropertyArrears
	index := make(map[string]int)
	for _, inv := range snap.Invoices {
		outstanding := OutstandingAmount(inv, snap.Payments)
		if outstanding <= 0 {
			continue
		}
		name := propertyName(snap, inv.PropertyID)
		if i, ok := index[name]; ok {
			arrears[i].Amount += outstanding
			continue
		}
		index[name] = len(arrears)
		arrears = append(arrears, PropertyArrears{PropertyName: name, Amount: outstanding})
	}
	return arrears
}

// GenerateOccupancyReport reports the current occupancy rate, the
// per-property tenant assignment, and the trailing twelve month trend ending
// at now's month.
func GenerateOccupancyReport(snap Snapshot, now time.Time) OccupancyReport {
	report := OccupancyReport{}
	occupied := 0
	for _, property := range snap.Properties {
		unit := OccupancyUnit{
			PropertyID:   property.ID,
			PropertyName: property.DisplayName(),
			Status:       property.Status,
		}
		if property.Status == domain.PropertyOccupied {
			occupied++
		}
		for _, agreement := range snap.Agreements {
			if agreement.PropertyID != property.ID || agreement.Status != domain.AgreementActive {
				continue
			}
			unit.TenantName = UnknownTenant
			for _, tenant := range snap.Tenants {
				if tenant.ID == agreement.TenantID {
					unit.TenantName = tenant.Name
					break
				}
			}
			break
		}
		report.Units = append(report.Units, unit)
	}
	if len(snap.Properties) > 0 {
		report.Rate = float64(occupied) / float64(len(snap.Properties)) * 100
	}
	for i := 11; i >= 0; i-- {
		label := time.Date(now.Year(), now.Month()-time.Month(i), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
		report.Trend = append(report.Trend, OccupancyPoint{Label: label, Rate: report.Rate})
	}
	return report
}

// GenerateAnnualReport bundles all reports for one year against a snapshot.
func GenerateAnnualReport(snap Snapshot, year string, now time.Time) AnnualReport {
	return AnnualReport{
		Financial:          GenerateFinancialReport(snap, year),
		ExpensesByCategory: GenerateExpenseBreakdown(snap, year),
		ArrearsByTenant:    GenerateTenantArrears(snap),
		ArrearsByProperty:  GeneratePropertyArrears(snap),
		Occupancy:          GenerateOccupancyReport(snap, now),
	}
}

// AnnualReport generates the full report bundle for a year using the service
// clock for the occupancy trend.
func (s *Service) AnnualReport(ctx context.Context, year string) (AnnualReport, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return AnnualReport{}, err
	}
	return GenerateAnnualReport(snap, year, s.now()), nil
}
