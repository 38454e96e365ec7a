package reports

import "time"

// DashboardSummary is the headline block of the admin landing page.
type DashboardSummary struct {
	TotalCustomers          int64   `json:"total_customers"`
	TotalVendors            int64   `json:"total_vendors"`
	TotalProducts           int64   `json:"total_products"`
	PendingInvoices         int64   `json:"pending_invoices"`
	PendingBills            int64   `json:"pending_bills"`
	TotalSalesThisMonth     float64 `json:"total_sales_this_month"`
	TotalPurchasesThisMonth float64 `json:"total_purchases_this_month"`
	TotalReceivable         float64 `json:"total_receivable"`
	TotalPayable            float64 `json:"total_payable"`
	BudgetsOnTrack          int64   `json:"budgets_on_track"`
	BudgetsOver             int64   `json:"budgets_over"`
	NetPosition             float64 `json:"net_position"`
}

// AgingBuckets groups outstanding amounts by days overdue.
type AgingBuckets struct {
	Current    float64 `json:"current"`
	Days30     float64 `json:"days_1_30"`
	Days60     float64 `json:"days_31_60"`
	Days90     float64 `json:"days_61_90"`
	Days90Plus float64 `json:"days_over_90"`
	Total      float64 `json:"total"`
}

// AgingRow is one contact's outstanding position.
type AgingRow struct {
	ContactID   int64  `json:"contact_id"`
	ContactName string `json:"contact_name"`
	AgingBuckets
}

// AgingReport pairs the overall buckets with the per-contact breakdown.
type AgingReport struct {
	AsOf    time.Time    `json:"as_of"`
	Buckets AgingBuckets `json:"buckets"`
	Rows    []AgingRow   `json:"rows"`
}

// OutstandingDocument is the slice of a posted unpaid document aging needs.
type OutstandingDocument struct {
	ID           int64
	ContactID    int64
	ContactName  string
	DocumentDate time.Time
	DueDate      *time.Time
	AmountDue    float64
}

// MonthlyTrendPoint conveys sales and purchase movements for one month.
type MonthlyTrendPoint struct {
	Period    string  `json:"period"`
	Sales     float64 `json:"sales"`
	Purchases float64 `json:"purchases"`
	Net       float64 `json:"net"`
}

// TradeSummary aggregates posted documents of one direction over a range.
type TradeSummary struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	DocumentCount int64     `json:"document_count"`
	Subtotal      float64   `json:"subtotal"`
	TaxTotal      float64   `json:"tax_total"`
	Total         float64   `json:"total"`
	AmountPaid    float64   `json:"amount_paid"`
	AmountDue     float64   `json:"amount_due"`
}

// AnalyticalSummaryRow is one cost center's income and spend over a range.
type AnalyticalSummaryRow struct {
	AccountID   int64   `json:"account_id"`
	AccountCode string  `json:"account_code"`
	AccountName string  `json:"account_name"`
	Income      float64 `json:"income"`
	Expense     float64 `json:"expense"`
	Net         float64 `json:"net"`
}
