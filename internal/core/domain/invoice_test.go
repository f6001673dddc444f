package domain

import "testing"

func TestParseAmount(t *testing.T) {
	cases := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{"100", 100, true},
		{"75.50", 75.5, true},
		{"0.99", 0.99, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-5", 0, false},
		{"1.2.3", 0, false},
		{"1e3", 0, false},
		{"1,000", 0, false},
		{".", 0, false},
	}

	for _, tc := range cases {
		got, ok := ParseAmount(tc.raw)
		if ok != tc.valid {
			t.Fatalf("ParseAmount(%q): expected valid=%v, got %v", tc.raw, tc.valid, ok)
		}
		if ok && got != tc.want {
			t.Fatalf("ParseAmount(%q): expected %v, got %v", tc.raw, tc.want, got)
		}
	}
}

func TestAggregatesSkipMalformedAmounts(t *testing.T) {
	set := NewRecordSet([]InvoiceRecord{
		{InvoiceID: "INV-1", Customer: "Acme", Amount: "100.00", Status: "paid"},
		{InvoiceID: "INV-2", Customer: "Acme", Amount: "abc", Status: "Partially Paid"},
		{InvoiceID: "INV-3", Customer: "Globex", Amount: "50.00", Status: "unpaid"},
	})

	agg := set.Aggregates()
	if agg.Total != 3 {
		t.Fatalf("expected 3 records, got %d", agg.Total)
	}
	if agg.SumAmount != 150.0 {
		t.Fatalf("expected sum 150, got %v", agg.SumAmount)
	}
	if agg.PaidCount != 1 || agg.PartialCount != 1 {
		t.Fatalf("expected 1 paid and 1 partial, got %d and %d", agg.PaidCount, agg.PartialCount)
	}
	if len(agg.UniqueCustomers) != 2 {
		t.Fatalf("expected 2 unique customers, got %d", len(agg.UniqueCustomers))
	}
	if agg.UniqueCustomers[0] != "Acme" || agg.UniqueCustomers[1] != "Globex" {
		t.Fatalf("expected first-occurrence customer order, got %v", agg.UniqueCustomers)
	}
}

func TestTopCustomersRanksDescendingWithStableTies(t *testing.T) {
	set := NewRecordSet([]InvoiceRecord{
		{Customer: "Beta", Amount: "100"},
		{Customer: "Alpha", Amount: "60"},
		{Customer: "Gamma", Amount: "100"},
		{Customer: "Alpha", Amount: "30"},
	})

	ranking := set.TopCustomers(5)
	if len(ranking) != 3 {
		t.Fatalf("expected 3 customers, got %d", len(ranking))
	}
	// Beta and Gamma tie at 100; Beta appeared first.
	if ranking[0].Customer != "Beta" || ranking[1].Customer != "Gamma" {
		t.Fatalf("expected tie order Beta, Gamma; got %s, %s", ranking[0].Customer, ranking[1].Customer)
	}
	if ranking[2].Customer != "Alpha" || ranking[2].Amount != 90 {
		t.Fatalf("expected Alpha total 90, got %s %v", ranking[2].Customer, ranking[2].Amount)
	}
}

func TestTopCustomersHonorsLimit(t *testing.T) {
	set := NewRecordSet([]InvoiceRecord{
		{Customer: "A", Amount: "3"},
		{Customer: "B", Amount: "2"},
		{Customer: "C", Amount: "1"},
	})

	ranking := set.TopCustomers(2)
	if len(ranking) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(ranking))
	}
	if ranking[0].Customer != "A" || ranking[1].Customer != "B" {
		t.Fatalf("unexpected ranking: %v", ranking)
	}
}
