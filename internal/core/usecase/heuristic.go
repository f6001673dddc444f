package usecase

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

// QueryCategory is the heuristic classification of a free-text query.
type QueryCategory string

const (
	CategoryRevenue   QueryCategory = "revenue"
	CategoryCustomers QueryCategory = "customers"
	CategoryStatus    QueryCategory = "status"
	CategoryCount     QueryCategory = "count"
	CategoryOverview  QueryCategory = "overview"
)

const topCustomerLimit = 5

// categoryKeywords is tested in fixed priority order; the first category with
// any keyword present wins, independent of match position.
var categoryKeywords = []struct {
	category QueryCategory
	keywords []string
}{
	{CategoryRevenue, []string{"total", "revenue", "amount", "sum"}},
	{CategoryCustomers, []string{"customer", "client", "who"}},
	{CategoryStatus, []string{"status", "paid", "payment"}},
	{CategoryCount, []string{"count", "how many", "number"}},
}

// ClassifyQuery maps a query to a summary category by case-insensitive
// substring matching, falling back to the general overview.
func ClassifyQuery(query string) QueryCategory {
	lower := strings.ToLower(query)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}
	return CategoryOverview
}

// HeuristicAnalyzer produces deterministic textual summaries from a record
// set, no external calls involved.
type HeuristicAnalyzer struct{}

func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze classifies the query and renders the matching summary. A record set
// with no rows reports a dataset-not-found condition so no aggregate division
// ever sees a zero denominator.
func (a *HeuristicAnalyzer) Analyze(query string, set domain.RecordSet) (string, QueryCategory, error) {
	agg := set.Aggregates()
	if agg.Total == 0 {
		return "", "", domain.WrapError(domain.ErrDatasetNotFound, "heuristic analyze", errors.New("no records to analyze"))
	}

	category := ClassifyQuery(query)
	switch category {
	case CategoryRevenue:
		return revenueSummary(agg), category, nil
	case CategoryCustomers:
		return customerSummary(agg, set.TopCustomers(topCustomerLimit)), category, nil
	case CategoryStatus:
		return statusSummary(agg), category, nil
	case CategoryCount:
		return countSummary(agg), category, nil
	default:
		return overviewSummary(agg), category, nil
	}
}

func revenueSummary(agg domain.Aggregates) string {
	return fmt.Sprintf(
		"Total Revenue Analysis:\n- Total invoices: %d\n- Total amount: $%s\n- Paid invoices: %d\n- Partially paid: %d\n- Average per invoice: $%s",
		agg.Total,
		formatCurrency(agg.SumAmount),
		agg.PaidCount,
		agg.PartialCount,
		formatCurrency(agg.SumAmount/float64(agg.Total)),
	)
}

func customerSummary(agg domain.Aggregates, ranking []domain.CustomerTotal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Customer Analysis:\n- Total customers: %d\n- Top customers by revenue:\n", len(agg.UniqueCustomers))
	for _, row := range ranking {
		fmt.Fprintf(&b, "  • %s: $%s\n", row.Customer, formatCurrency(row.Amount))
	}
	return b.String()
}

func statusSummary(agg domain.Aggregates) string {
	rate := float64(agg.PaidCount+agg.PartialCount) / float64(agg.Total) * 100
	return fmt.Sprintf(
		"Payment Status Analysis:\n- Fully paid: %d invoices\n- Partially paid: %d invoices\n- Payment rate: %.1f%%\n- Total collected: $%s",
		agg.PaidCount,
		agg.PartialCount,
		rate,
		formatCurrency(agg.SumAmount),
	)
}

func countSummary(agg domain.Aggregates) string {
	perCustomer := 0.0
	if len(agg.UniqueCustomers) > 0 {
		perCustomer = float64(agg.Total) / float64(len(agg.UniqueCustomers))
	}
	return fmt.Sprintf(
		"Invoice Count Analysis:\n- Total invoices: %d\n- Unique customers: %d\n- Fully paid: %d\n- Partially paid: %d\n- Average per customer: %.1f invoices",
		agg.Total,
		len(agg.UniqueCustomers),
		agg.PaidCount,
		agg.PartialCount,
		perCustomer,
	)
}

func overviewSummary(agg domain.Aggregates) string {
	return fmt.Sprintf(
		"Invoice Overview:\n- Total invoices: %d\n- Total revenue: $%s\n- Customers: %d\n- Paid: %d, Partial: %d\n- Average invoice: $%s",
		agg.Total,
		formatCurrency(agg.SumAmount),
		len(agg.UniqueCustomers),
		agg.PaidCount,
		agg.PartialCount,
		formatCurrency(agg.SumAmount/float64(agg.Total)),
	)
}

// formatCurrency renders a fixed-point amount with thousands separators,
// e.g. 1234567.5 -> "1,234,567.50".
func formatCurrency(value float64) string {
	fixed := strconv.FormatFloat(value, 'f', 2, 64)

	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	b.WriteByte('.')
	b.WriteString(fracPart)
	return b.String()
}
