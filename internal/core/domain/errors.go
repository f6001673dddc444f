package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDataset      = errors.New("invalid dataset")
	ErrDatasetNotFound     = errors.New("dataset not found")
	ErrProviderUnavailable = errors.New("no analysis provider configured")
	ErrProviderExhausted   = errors.New("analysis provider exhausted")
	ErrAnalyzerUnavailable = errors.New("local analyzer unavailable")
	ErrTemporary           = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
