// Package exports renders ledger report tables to downloadable artifacts and
// executes export jobs asynchronously.
package exports

import (
	"context"
	"fmt"
	"strconv"

	"rentledger/internal/core"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// Formats lists every supported encoding.
var Formats = []Format{FormatCSV, FormatJSON, FormatXLSX}

// Table is a flat, ordered rendering of one report. Column order defines the
// artifact column order; rows index values by column name.
type Table struct {
	Slug    string           `json:"slug"`
	Title   string           `json:"title"`
	Columns []string         `json:"columns"`
	Rows    []map[string]any `json:"rows"`
}

// Catalog resolves a table slug to its current contents.
type Catalog interface {
	ResolveTable(ctx context.Context, slug string, params map[string]string) (Table, bool, error)
}

// Report table slugs exposed by the service catalog.
const (
	TableRevenueMonthly     = "revenue_monthly"
	TableRevenueQuarterly   = "revenue_quarterly"
	TableExpensesByCategory = "expenses_by_category"
	TableArrearsByTenant    = "arrears_by_tenant"
	TableArrearsByProperty  = "arrears_by_property"
	TableOccupancy          = "occupancy"
	TablePayments           = "payments"
	TableExpenses           = "expenses"
)

// ServiceCatalog renders export tables from the live ledger service. The
// "year" parameter scopes financial tables; it defaults to the year of the
// service clock.
type ServiceCatalog struct {
	service *core.Service
}

// NewServiceCatalog constructs a catalog over the given service.
func NewServiceCatalog(service *core.Service) *ServiceCatalog {
	return &ServiceCatalog{service: service}
}

// ResolveTable implements Catalog.
func (c *ServiceCatalog) ResolveTable(ctx context.Context, slug string, params map[string]string) (Table, bool, error) {
	snap, err := c.service.Snapshot(ctx)
	if err != nil {
		return Table{}, false, err
	}
	year := params["year"]
	if year == "" {
		year = strconv.Itoa(c.service.Now().Year())
	}
	switch slug {
	case TableRevenueMonthly:
		report := core.GenerateFinancialReport(snap, year)
		return periodTable(slug, "Monthly Revenue "+year, report.Monthly), true, nil
	case TableRevenueQuarterly:
		report := core.GenerateFinancialReport(snap, year)
		return periodTable(slug, "Quarterly Revenue "+year, report.Quarterly), true, nil
	case TableExpensesByCategory:
		table := Table{Slug: slug, Title: "Expenses by Category " + year, Columns: []string{"category", "total"}}
		for _, entry := range core.GenerateExpenseBreakdown(snap, year) {
			table.Rows = append(table.Rows, map[string]any{"category": string(entry.Category), "total": entry.Total})
		}
		return table, true, nil
	case TableArrearsByTenant:
		table := Table{Slug: slug, Title: "Arrears by Tenant", Columns: []string{"tenant", "property", "amount"}}
		for _, entry := range core.GenerateTenantArrears(snap) {
			table.Rows = append(table.Rows, map[string]any{"tenant": entry.TenantName, "property": entry.PropertyName, "amount": entry.Amount})
		}
		return table, true, nil
	case TableArrearsByProperty:
		table := Table{Slug: slug, Title: "Arrears by Property", Columns: []string{"property", "amount"}}
		for _, entry := range core.GeneratePropertyArrears(snap) {
			table.Rows = append(table.Rows, map[string]any{"property": entry.PropertyName, "amount": entry.Amount})
		}
		return table, true, nil
	case TableOccupancy:
		report := core.GenerateOccupancyReport(snap, c.service.Now())
		table := Table{Slug: slug, Title: "Occupancy", Columns: []string{"property", "status", "tenant"}}
		for _, unit := range report.Units {
			table.Rows = append(table.Rows, map[string]any{"property": unit.PropertyName, "status": string(unit.Status), "tenant": unit.TenantName})
		}
		return table, true, nil
	case TablePayments:
		table := Table{Slug: slug, Title: "Payments", Columns: []string{"receipt_number", "payment_date", "amount", "payment_mode", "invoice_id"}}
		for _, p := range snap.Payments {
			table.Rows = append(table.Rows, map[string]any{
				"receipt_number": p.ReceiptNumber,
				"payment_date":   p.PaymentDate,
				"amount":         p.Amount,
				"payment_mode":   string(p.PaymentMode),
				"invoice_id":     p.InvoiceID,
			})
		}
		return table, true, nil
	case TableExpenses:
		table := Table{Slug: slug, Title: "Expenses", Columns: []string{"date", "description", "category", "amount"}}
		for _, e := range snap.Expenses {
			table.Rows = append(table.Rows, map[string]any{
				"date":        e.Date,
				"description": e.Description,
				"category":    string(e.Category),
				"amount":      e.Amount,
			})
		}
		return table, true, nil
	default:
		return Table{}, false, nil
	}
}

func periodTable(slug, title string, periods []core.ReportPeriod) Table {
	table := Table{Slug: slug, Title: title, Columns: []string{"period", "revenue", "expenses", "profit"}}
	for _, p := range periods {
		table.Rows = append(table.Rows, map[string]any{
			"period":   p.Label,
			"revenue":  p.Revenue,
			"expenses": p.Expenses,
			"profit":   p.Profit,
		})
	}
	return table
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case float32:
		return fmt.Sprintf("%g", v)
	case float64:
		return fmt.Sprintf("%g", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprint(v)
	}
}
