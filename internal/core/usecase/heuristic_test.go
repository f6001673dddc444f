package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

func TestClassifyQuery(t *testing.T) {
	cases := []struct {
		query string
		want  QueryCategory
	}{
		{"What is the total revenue?", CategoryRevenue},
		{"Who are my customers?", CategoryCustomers},
		{"Show payment status", CategoryStatus},
		{"How many invoices do we have?", CategoryCount},
		{"hello", CategoryOverview},
		{"STATUS report", CategoryStatus},
		// "total" outranks "customer" in the priority order.
		{"total owed per customer", CategoryRevenue},
	}

	for _, tc := range cases {
		if got := ClassifyQuery(tc.query); got != tc.want {
			t.Fatalf("ClassifyQuery(%q): expected %s, got %s", tc.query, tc.want, got)
		}
	}
}

func sampleSet() domain.RecordSet {
	return domain.NewRecordSet([]domain.InvoiceRecord{
		{InvoiceID: "INV-001", Customer: "Acme Corp", Amount: "100.00", PaidAt: "2026-01-15", Status: "paid"},
		{InvoiceID: "INV-002", Customer: "Globex", Amount: "50.00", PaidAt: "2026-01-20", Status: "Partially Paid"},
	})
}

func TestAnalyzeRevenueSummary(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	text, category, err := analyzer.Analyze("What is the total revenue?", sampleSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != CategoryRevenue {
		t.Fatalf("expected revenue category, got %s", category)
	}
	if !strings.Contains(text, "Total amount: $150.00") {
		t.Fatalf("expected total amount line, got:\n%s", text)
	}
	if !strings.Contains(text, "Average per invoice: $75.00") {
		t.Fatalf("expected average line, got:\n%s", text)
	}
}

func TestAnalyzeCustomerSummaryRanksByRevenue(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	text, _, err := analyzer.Analyze("who owes the most", sampleSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Total customers: 2") {
		t.Fatalf("expected customer count, got:\n%s", text)
	}
	acme := strings.Index(text, "Acme Corp: $100.00")
	globex := strings.Index(text, "Globex: $50.00")
	if acme == -1 || globex == -1 || acme > globex {
		t.Fatalf("expected descending revenue ranking, got:\n%s", text)
	}
}

func TestAnalyzeStatusSummary(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	text, _, err := analyzer.Analyze("Show payment status", sampleSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Fully paid: 1 invoices") {
		t.Fatalf("expected paid line, got:\n%s", text)
	}
	if !strings.Contains(text, "Payment rate: 100.0%") {
		t.Fatalf("expected payment rate, got:\n%s", text)
	}
}

func TestAnalyzeCountSummary(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	text, _, err := analyzer.Analyze("how many invoices", sampleSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Average per customer: 1.0 invoices") {
		t.Fatalf("expected per-customer average, got:\n%s", text)
	}
}

func TestAnalyzeOverviewFallback(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	text, category, err := analyzer.Analyze("hello", sampleSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != CategoryOverview {
		t.Fatalf("expected overview fallback, got %s", category)
	}
	if !strings.Contains(text, "Invoice Overview:") {
		t.Fatalf("expected overview header, got:\n%s", text)
	}
}

func TestAnalyzeEmptySetReportsNotFound(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	_, _, err := analyzer.Analyze("total", domain.NewRecordSet(nil))
	if !domain.IsKind(err, domain.ErrDatasetNotFound) {
		t.Fatalf("expected dataset-not-found kind, got %v", err)
	}
}

func TestFormatCurrency(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{0, "0.00"},
		{75, "75.00"},
		{1234.5, "1,234.50"},
		{1234567.891, "1,234,567.89"},
	}
	for _, tc := range cases {
		if got := formatCurrency(tc.value); got != tc.want {
			t.Fatalf("formatCurrency(%v): expected %s, got %s", tc.value, tc.want, got)
		}
	}
}
