package httpadapter

import (
	"net/http"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidDataset):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrDatasetNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorCategory(err error) string {
	switch {
	case domain.IsKind(err, domain.ErrInvalidDataset):
		return "validation"
	case domain.IsKind(err, domain.ErrDatasetNotFound):
		return "not_found"
	case domain.IsKind(err, domain.ErrProviderUnavailable):
		return "provider_configuration"
	case domain.IsKind(err, domain.ErrProviderExhausted):
		return "provider_call"
	case domain.IsKind(err, domain.ErrAnalyzerUnavailable):
		return "analyzer_unavailable"
	case domain.IsKind(err, domain.ErrTemporary):
		return "temporary"
	default:
		return "internal"
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{
		"error":    err.Error(),
		"category": errorCategory(err),
	})
}
