package ports

import (
	"context"
	"io"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

// InvoiceAnalyzer is the inbound contract for the two analysis operations.
// Both take the raw dataset text alongside the parsed records because the
// literal text, not its interpretation, is the cache identity.
type InvoiceAnalyzer interface {
	AnalyzeWithProvider(ctx context.Context, query, datasetText string, records []domain.InvoiceRecord) (*domain.AnalysisResult, error)
	AnalyzeLocal(ctx context.Context, query, datasetText string, records []domain.InvoiceRecord) (*domain.AnalysisResult, error)
}

// DatasetIngestor accepts a raw dataset upload and hands it to the import
// pipeline.
type DatasetIngestor interface {
	Upload(ctx context.Context, body io.Reader) (string, error)
}

// DatasetImporter is the worker-side contract for parsing and persisting an
// uploaded dataset.
type DatasetImporter interface {
	ImportByKey(ctx context.Context, storageKey string) error
}

// DatasetReader serves the current persisted dataset to read endpoints.
type DatasetReader interface {
	GetLatest(ctx context.Context) (*domain.Dataset, error)
}
