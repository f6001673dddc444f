package dataset

import (
	"testing"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

func TestParseValidDataset(t *testing.T) {
	raw := "invoice_id,customer,amount,paid_at,status\n" +
		"INV-001, Acme Corp ,100.00,2026-01-15,paid\n" +
		"\n" +
		"INV-002,Globex,50.00,2026-01-20,Partially Paid\n"

	records, err := NewCodec().Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Customer != "Acme Corp" {
		t.Fatalf("expected trimmed customer, got %q", records[0].Customer)
	}
	if records[1].Status != "Partially Paid" {
		t.Fatalf("expected status preserved, got %q", records[1].Status)
	}
}

func TestParseAcceptsWindowsLineEndings(t *testing.T) {
	raw := "invoice_id,customer,amount,paid_at,status\r\nINV-001,Acme,10,2026-01-01,paid\r\n"
	records, err := NewCodec().Parse(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestParseCaseInsensitiveHeader(t *testing.T) {
	raw := "Invoice_ID,Customer,Amount,Paid_At,Status\nINV-001,Acme,10,2026-01-01,paid"
	if _, err := NewCodec().Parse(raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseRejectsHeaderOnly(t *testing.T) {
	_, err := NewCodec().Parse("invoice_id,customer,amount,paid_at,status")
	if !domain.IsKind(err, domain.ErrInvalidDataset) {
		t.Fatalf("expected invalid-dataset kind, got %v", err)
	}
}

func TestParseRejectsUnknownHeader(t *testing.T) {
	_, err := NewCodec().Parse("id,name,total\n1,Acme,10")
	if !domain.IsKind(err, domain.ErrInvalidDataset) {
		t.Fatalf("expected invalid-dataset kind, got %v", err)
	}
}

func TestParseRejectsWrongFieldCount(t *testing.T) {
	raw := "invoice_id,customer,amount,paid_at,status\nINV-001,Acme,10,2026-01-01"
	_, err := NewCodec().Parse(raw)
	if !domain.IsKind(err, domain.ErrInvalidDataset) {
		t.Fatalf("expected invalid-dataset kind, got %v", err)
	}
}

func TestParseEmptyInput(t *testing.T) {
	_, err := NewCodec().Parse("")
	if !domain.IsKind(err, domain.ErrInvalidDataset) {
		t.Fatalf("expected invalid-dataset kind, got %v", err)
	}
}
