package httpadapter

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

const exportSheet = "Invoices"

var exportHeader = []string{"Invoice ID", "Customer", "Amount", "Paid At", "Status"}

func (rt *Router) exportRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	dataset, err := rt.datasets.GetLatest(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	workbook, err := buildWorkbook(dataset.Records)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="invoices.xlsx"`)
	if err := workbook.Write(w); err != nil {
		slog.Error("export_write_failed", "request_id", requestIDFromContext(r.Context()), "error", err)
	}
}

func buildWorkbook(records []domain.InvoiceRecord) (*excelize.File, error) {
	workbook := excelize.NewFile()

	index, err := workbook.NewSheet(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	workbook.SetActiveSheet(index)
	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := workbook.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, record := range records {
		values := []any{record.InvoiceID, record.Customer, record.Amount, record.PaidAt, record.Status}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("row cell: %w", err)
			}
			if err := workbook.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	return workbook, nil
}
