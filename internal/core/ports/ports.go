package ports

import (
	"context"
	"io"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

// AnalysisCache stores completed analysis results under their request
// fingerprint. Implementations must be safe for concurrent use; last put for
// a key wins.
type AnalysisCache interface {
	Get(fingerprint string) (domain.AnalysisResult, bool)
	Put(fingerprint string, result domain.AnalysisResult)
	Size() int
}

// DatasetRepository persists invoice datasets and serves the most recent one.
type DatasetRepository interface {
	Create(ctx context.Context, dataset *domain.Dataset) error
	GetLatest(ctx context.Context) (*domain.Dataset, error)
}

// ObjectStorage holds raw dataset files between upload and import.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue decouples dataset upload from parsing and persistence.
type MessageQueue interface {
	PublishDatasetReceived(ctx context.Context, storageKey string) error
	SubscribeDatasetReceived(ctx context.Context, handler func(context.Context, string) error) error
}

// AnalysisDispatcher sends a prepared prompt to an external text-generation
// provider, falling back across the configured provider order.
type AnalysisDispatcher interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// DatasetCodec parses raw dataset text into invoice records.
type DatasetCodec interface {
	Parse(raw string) ([]domain.InvoiceRecord, error)
}
