package domain

import (
	"sort"
	"strconv"
	"strings"
)

// InvoiceRecord is one parsed invoice row. Amount stays a string because
// upstream exports routinely contain malformed values; parsing happens at
// aggregation time and malformed amounts contribute zero.
type InvoiceRecord struct {
	InvoiceID string `json:"invoice_id"`
	Customer  string `json:"customer"`
	Amount    string `json:"amount"`
	PaidAt    string `json:"paid_at"`
	Status    string `json:"status"`
}

// RecordSet is an insertion-ordered view over parsed invoice rows, immutable
// after construction. Insertion order drives tie-breaking in rankings.
type RecordSet struct {
	records []InvoiceRecord
}

func NewRecordSet(records []InvoiceRecord) RecordSet {
	return RecordSet{records: records}
}

func (s RecordSet) Len() int {
	return len(s.records)
}

func (s RecordSet) Records() []InvoiceRecord {
	return s.records
}

// Aggregates holds the derived figures every summary is built from.
type Aggregates struct {
	Total           int
	SumAmount       float64
	PaidCount       int
	PartialCount    int
	UniqueCustomers []string
}

// CustomerTotal is one row of the revenue-per-customer ranking.
type CustomerTotal struct {
	Customer string
	Amount   float64
}

func (s RecordSet) Aggregates() Aggregates {
	agg := Aggregates{Total: len(s.records)}
	seen := make(map[string]struct{}, len(s.records))

	for _, rec := range s.records {
		if amount, ok := ParseAmount(rec.Amount); ok {
			agg.SumAmount += amount
		}
		switch strings.ToLower(rec.Status) {
		case "paid":
			agg.PaidCount++
		case "partially paid":
			agg.PartialCount++
		}
		if _, dup := seen[rec.Customer]; !dup {
			seen[rec.Customer] = struct{}{}
			agg.UniqueCustomers = append(agg.UniqueCustomers, rec.Customer)
		}
	}
	return agg
}

// TopCustomers ranks customers by summed amount, descending. Ties keep
// first-occurrence order from the record set (stable sort), at most limit rows.
func (s RecordSet) TopCustomers(limit int) []CustomerTotal {
	totals := make(map[string]float64)
	var order []string
	for _, rec := range s.records {
		if _, seen := totals[rec.Customer]; !seen {
			totals[rec.Customer] = 0
			order = append(order, rec.Customer)
		}
		if amount, ok := ParseAmount(rec.Amount); ok {
			totals[rec.Customer] += amount
		}
	}

	ranking := make([]CustomerTotal, 0, len(order))
	for _, customer := range order {
		ranking = append(ranking, CustomerTotal{Customer: customer, Amount: totals[customer]})
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Amount > ranking[j].Amount
	})

	if limit > 0 && len(ranking) > limit {
		ranking = ranking[:limit]
	}
	return ranking
}

// ParseAmount accepts well-formed non-negative numerals only: digits and at
// most one decimal point. Anything else (signs, exponents, free text) is
// malformed and reports false.
func ParseAmount(raw string) (float64, bool) {
	if raw == "" {
		return 0, false
	}
	digits := 0
	dots := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
		default:
			return 0, false
		}
	}
	if digits == 0 || dots > 1 {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
