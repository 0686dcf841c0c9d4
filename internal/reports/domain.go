// Package reports aggregates completed and active orders into the
// sales, profit and loss, revenue and team performance reports. Heavy
// aggregations run in postgres and results are cached in redis for a
// short window.
package reports

import "time"

// ProductSalesRow is one (bucket, product) aggregate from storage.
type ProductSalesRow struct {
	Bucket        time.Time
	ProductID     int64
	ProductName   string
	QuantitySold  int64
	TotalRevenue  float64
	TotalDiscount float64
	TotalTax      float64
	OrderCount    int64
}

// PLRow is one bucket of the profit and loss aggregation. Cost values a
// line at the product's floor price (list price minus the maximum
// discount); SellingPrice values it at what the customer actually paid.
type PLRow struct {
	Bucket       time.Time
	TotalRevenue float64
	TotalCost    float64
	SellingPrice float64
	TotalTax     float64
}

// PLTotals is the same aggregation collapsed to a single row.
type PLTotals struct {
	TotalRevenue float64
	TotalCost    float64
	SellingPrice float64
	TotalTax     float64
}

// RevenueRow is one (bucket, organization) aggregate.
type RevenueRow struct {
	Bucket        time.Time
	OrgAdminID    int64
	OrgAdminEmail string
	TotalRevenue  float64
	TotalTax      float64
	TotalOrders   int64
}

// RevenueTotals summarises the whole window across organizations.
type RevenueTotals struct {
	TotalRevenue       float64
	TotalOrders        int64
	TotalTax           float64
	TotalOrganizations int64
}

// TeamRow is one (bucket, person) aggregate, where the person is a
// manager or an employee depending on the query.
type TeamRow struct {
	Bucket        time.Time
	PersonID      int64
	PersonName    string
	TotalRevenue  float64
	TotalOrders   int64
	TotalDiscount float64
	TotalTax      float64
}

// SalesSummary heads the per-product sales report.
type SalesSummary struct {
	TotalProductsSold int     `json:"totalProductsSold"`
	TotalOrders       int64   `json:"totalOrders"`
	TotalRevenue      float64 `json:"totalRevenue"`
}

// ProductSalesEntry is one row of the sales report payload.
type ProductSalesEntry struct {
	Key           BucketKey `json:"_id"`
	ProductID     int64     `json:"productId"`
	ProductName   string    `json:"productName"`
	QuantitySold  int64     `json:"totalQuantitySold"`
	TotalRevenue  float64   `json:"totalRevenue"`
	TotalDiscount float64   `json:"totalDiscount"`
	TotalTax      float64   `json:"totalTax"`
	OrderCount    int64     `json:"orderCount"`
}

// SalesReport is the org-admin per-product report. Report payloads are
// sent as the whole response body, so they carry the status marker
// themselves.
type SalesReport struct {
	Status      string              `json:"status"`
	FilterRange Window              `json:"filterRange"`
	GroupType   Granularity         `json:"groupType"`
	Summary     SalesSummary        `json:"summary"`
	Data        []ProductSalesEntry `json:"data"`
}

// PLFigures carries one set of profit and loss numbers; it serves both
// the per-bucket rows and the window/today summaries.
type PLFigures struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalCost     float64 `json:"totalCost"`
	Profit        float64 `json:"profit"`
	Loss          float64 `json:"loss"`
	TotalGST      float64 `json:"totalGST"`
	NonGSTRevenue float64 `json:"nonGSTRevenue"`
}

// PLEntry is one labelled bucket of the profit and loss report.
type PLEntry struct {
	Label string    `json:"label"`
	Key   BucketKey `json:"_id"`
	PLFigures
}

// ProfitLossReport is the org-admin P&L payload including a summary of
// the whole window and a separate one for today.
type ProfitLossReport struct {
	Status      string      `json:"status"`
	FilterRange Window      `json:"filterRange"`
	GroupType   Granularity `json:"groupType"`
	Summary     PLFigures   `json:"summary"`
	Today       PLFigures   `json:"today"`
	Data        []PLEntry   `json:"data"`
}

// RevenueEntry is one (bucket, organization) row of the system revenue
// report.
type RevenueEntry struct {
	Key               BucketKey `json:"_id"`
	OrganizationAdmin string    `json:"organizationAdmin"`
	TotalRevenue      float64   `json:"totalRevenue"`
	TotalTax          float64   `json:"totalTax"`
	TotalOrders       int64     `json:"totalOrders"`
}

// RevenueSummary totals the revenue report across all organizations.
type RevenueSummary struct {
	TotalRevenue       float64 `json:"totalRevenue"`
	TotalOrders        int64   `json:"totalOrders"`
	TotalTax           float64 `json:"totalTax"`
	TotalOrganizations int64   `json:"totalOrganizations"`
}

// RevenueReport is the host-admin system-wide revenue payload.
type RevenueReport struct {
	Status      string         `json:"status"`
	FilterRange Window         `json:"filterRange"`
	GroupType   Granularity    `json:"groupType"`
	Summary     RevenueSummary `json:"summary"`
	Data        []RevenueEntry `json:"data"`
}

// TeamSummary totals a team performance report.
type TeamSummary struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalOrders   int64   `json:"totalOrders"`
	TotalDiscount float64 `json:"totalDiscount"`
	TotalTax      float64 `json:"totalTax"`
}

// TeamEntry is one (bucket, person) row of a team performance report.
type TeamEntry struct {
	Key           BucketKey `json:"_id"`
	Name          string    `json:"name"`
	TotalRevenue  float64   `json:"totalRevenue"`
	TotalOrders   int64     `json:"totalOrders"`
	TotalDiscount float64   `json:"totalDiscount"`
	TotalTax      float64   `json:"totalTax"`
}

// TeamReport is the per-manager or per-employee performance payload.
type TeamReport struct {
	Status      string      `json:"status"`
	FilterRange *Window     `json:"filterRange,omitempty"`
	GroupType   Granularity `json:"groupType,omitempty"`
	Summary     TeamSummary `json:"summary"`
	Data        []TeamEntry `json:"data"`
	Message     string      `json:"message,omitempty"`
}
