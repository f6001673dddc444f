package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/core/ports"
)

// promptRecordLimit bounds how many records appear verbatim in a provider
// prompt; the remainder is summarized as a count.
const promptRecordLimit = 10

// AnalysisObserver receives analysis-path observations for metrics. All
// methods must be cheap and non-blocking.
type AnalysisObserver interface {
	RecordCacheLookup(endpoint string, hit bool)
	RecordQueryCategory(category string)
}

// AnalyzeUseCase coordinates one analysis request: fingerprint, cache lookup,
// dispatch to either the heuristic analyzer or the external provider chain,
// and storing the result. Concurrent requests with the same fingerprint share
// a single in-flight computation.
type AnalyzeUseCase struct {
	cache    ports.AnalysisCache
	dispatch ports.AnalysisDispatcher
	local    *HeuristicAnalyzer
	observer AnalysisObserver

	flight singleflight.Group
}

func NewAnalyzeUseCase(
	cache ports.AnalysisCache,
	dispatch ports.AnalysisDispatcher,
	local *HeuristicAnalyzer,
	observer AnalysisObserver,
) *AnalyzeUseCase {
	return &AnalyzeUseCase{
		cache:    cache,
		dispatch: dispatch,
		local:    local,
		observer: observer,
	}
}

func (uc *AnalyzeUseCase) AnalyzeWithProvider(
	ctx context.Context,
	query, datasetText string,
	records []domain.InvoiceRecord,
) (*domain.AnalysisResult, error) {
	if err := validateRecords(datasetText, records); err != nil {
		return nil, err
	}

	key := domain.Fingerprint(query, datasetText)
	return uc.analyze(ctx, "provider", key, len(records), func(ctx context.Context) (string, error) {
		return uc.dispatch.Generate(ctx, buildAnalysisPrompt(query, records))
	})
}

func (uc *AnalyzeUseCase) AnalyzeLocal(
	ctx context.Context,
	query, datasetText string,
	records []domain.InvoiceRecord,
) (*domain.AnalysisResult, error) {
	if uc.local == nil {
		return nil, domain.WrapError(domain.ErrAnalyzerUnavailable, "analyze local", errors.New("heuristic analyzer is not wired"))
	}
	if err := validateRecords(datasetText, records); err != nil {
		return nil, err
	}

	key := domain.LocalFingerprintPrefix + domain.Fingerprint(query, datasetText)
	return uc.analyze(ctx, "local", key, len(records), func(context.Context) (string, error) {
		text, category, err := uc.local.Analyze(query, domain.NewRecordSet(records))
		if err != nil {
			return "", err
		}
		if uc.observer != nil {
			uc.observer.RecordQueryCategory(string(category))
		}
		return text, nil
	})
}

func (uc *AnalyzeUseCase) analyze(
	ctx context.Context,
	endpoint, key string,
	recordCount int,
	compute func(context.Context) (string, error),
) (*domain.AnalysisResult, error) {
	value, err, _ := uc.flight.Do(key, func() (any, error) {
		if cached, ok := uc.cache.Get(key); ok {
			uc.observeCacheLookup(endpoint, true)
			return cached, nil
		}
		uc.observeCacheLookup(endpoint, false)

		text, err := compute(ctx)
		if err != nil {
			return nil, err
		}

		result := domain.AnalysisResult{
			Analysis:          text,
			RecordsAnalyzed:   recordCount,
			FingerprintPrefix: domain.ShortFingerprint(key),
		}
		uc.cache.Put(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result := value.(domain.AnalysisResult)
	return &result, nil
}

func (uc *AnalyzeUseCase) observeCacheLookup(endpoint string, hit bool) {
	if uc.observer != nil {
		uc.observer.RecordCacheLookup(endpoint, hit)
	}
}

func validateRecords(datasetText string, records []domain.InvoiceRecord) error {
	if len(records) > 0 {
		return nil
	}
	if strings.TrimSpace(datasetText) == "" {
		return domain.WrapError(domain.ErrDatasetNotFound, "analyze", errors.New("no dataset has been imported"))
	}
	return domain.WrapError(domain.ErrDatasetNotFound, "analyze", errors.New("supplied dataset contains no records"))
}

// buildAnalysisPrompt renders the bounded prompt sent to external providers:
// at most promptRecordLimit records verbatim plus a count of the remainder.
func buildAnalysisPrompt(query string, records []domain.InvoiceRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoice Data Summary:\nTotal Invoices: %d\n\n", len(records))

	shown := records
	if len(shown) > promptRecordLimit {
		shown = shown[:promptRecordLimit]
	}
	for i, rec := range shown {
		fmt.Fprintf(&b, "%d. Invoice %s: %s, $%s, %s, Paid: %s\n",
			i+1, rec.InvoiceID, rec.Customer, rec.Amount, rec.Status, rec.PaidAt)
	}
	if len(records) > promptRecordLimit {
		fmt.Fprintf(&b, "... and %d more invoices\n", len(records)-promptRecordLimit)
	}

	fmt.Fprintf(&b, "\nUser Query: %s\n\n", query)
	b.WriteString("Please analyze the invoice data and provide a concise response to the user's query.\n")
	b.WriteString("Focus on key insights, patterns, and specific numbers where relevant.")
	return b.String()
}
