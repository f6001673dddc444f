package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/kirillkom/invoice-analyzer/internal/core/ports"
)

// IngestDatasetUseCase accepts a raw dataset upload: the file lands in object
// storage untouched and an import event hands it to the worker. Parsing and
// validation happen on the worker side.
type IngestDatasetUseCase struct {
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewIngestDatasetUseCase(storage ports.ObjectStorage, queue ports.MessageQueue) *IngestDatasetUseCase {
	return &IngestDatasetUseCase{
		storage: storage,
		queue:   queue,
	}
}

// Upload stores the dataset body and publishes the import event. It returns
// the storage key the worker will import from.
func (uc *IngestDatasetUseCase) Upload(ctx context.Context, body io.Reader) (string, error) {
	storageKey := fmt.Sprintf("%s_invoices.csv", uuid.NewString())

	if err := uc.storage.Save(ctx, storageKey, body); err != nil {
		return "", fmt.Errorf("save dataset to object storage: %w", err)
	}

	if err := uc.queue.PublishDatasetReceived(ctx, storageKey); err != nil {
		return "", fmt.Errorf("publish dataset import event: %w", err)
	}

	return storageKey, nil
}
