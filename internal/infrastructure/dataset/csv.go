package dataset

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

// Codec parses invoice CSV text. Splitting is literal: no quoting, no
// embedded commas. The upstream export never produces either.
type Codec struct{}

func NewCodec() *Codec {
	return &Codec{}
}

// Parse reads the header line plus one row per record. Fewer than a header
// and one data row is an invalid dataset; so is a row with the wrong field
// count. Blank lines are skipped.
func (c *Codec) Parse(raw string) ([]domain.InvoiceRecord, error) {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(raw, "\r\n", "\n")), "\n")
	if len(lines) < 2 {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "parse csv", errors.New("expected a header line and at least one row"))
	}

	header := strings.TrimSpace(lines[0])
	if !strings.EqualFold(header, domain.DatasetHeader) {
		return nil, domain.WrapError(domain.ErrInvalidDataset, "parse csv",
			fmt.Errorf("unexpected header %q, want %q", header, domain.DatasetHeader))
	}

	var records []domain.InvoiceRecord
	for i, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 5 {
			return nil, domain.WrapError(domain.ErrInvalidDataset, "parse csv",
				fmt.Errorf("row %d has %d fields, want 5", i+2, len(fields)))
		}
		records = append(records, domain.InvoiceRecord{
			InvoiceID: strings.TrimSpace(fields[0]),
			Customer:  strings.TrimSpace(fields[1]),
			Amount:    strings.TrimSpace(fields[2]),
			PaidAt:    strings.TrimSpace(fields[3]),
			Status:    strings.TrimSpace(fields[4]),
		})
	}
	return records, nil
}
