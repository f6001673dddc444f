package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/core/ports"
)

// ImportDatasetUseCase is the worker side of dataset ingestion: read the raw
// file from object storage, parse it, persist rows plus the literal text.
type ImportDatasetUseCase struct {
	storage ports.ObjectStorage
	codec   ports.DatasetCodec
	repo    ports.DatasetRepository
}

func NewImportDatasetUseCase(
	storage ports.ObjectStorage,
	codec ports.DatasetCodec,
	repo ports.DatasetRepository,
) *ImportDatasetUseCase {
	return &ImportDatasetUseCase{
		storage: storage,
		codec:   codec,
		repo:    repo,
	}
}

func (uc *ImportDatasetUseCase) ImportByKey(ctx context.Context, storageKey string) error {
	reader, err := uc.storage.Open(ctx, storageKey)
	if err != nil {
		return fmt.Errorf("open dataset %s: %w", storageKey, err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("read dataset %s: %w", storageKey, err)
	}

	records, err := uc.codec.Parse(string(raw))
	if err != nil {
		return fmt.Errorf("parse dataset %s: %w", storageKey, err)
	}

	dataset := &domain.Dataset{
		ID:        uuid.NewString(),
		RawText:   string(raw),
		Records:   records,
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, dataset); err != nil {
		return fmt.Errorf("persist dataset %s: %w", storageKey, err)
	}
	return nil
}
