package httpadapter

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/invoice-analyzer/internal/config"
	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/core/ports"
	"github.com/kirillkom/invoice-analyzer/internal/observability/metrics"
)

type Router struct {
	cfg      config.Config
	service  string
	analyzer ports.InvoiceAnalyzer
	ingestor ports.DatasetIngestor
	datasets ports.DatasetReader
	codec    ports.DatasetCodec
	cache    ports.AnalysisCache
	metrics  *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	service string,
	analyzer ports.InvoiceAnalyzer,
	ingestor ports.DatasetIngestor,
	datasets ports.DatasetReader,
	codec ports.DatasetCodec,
	cache ports.AnalysisCache,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		cfg:      cfg,
		service:  service,
		analyzer: analyzer,
		ingestor: ingestor,
		datasets: datasets,
		codec:    codec,
		cache:    cache,
		metrics:  httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/analyze", rt.analyzeWithProvider)
	mux.HandleFunc("/v1/analyze/local", rt.analyzeLocal)
	mux.HandleFunc("/v1/records", rt.listRecords)
	mux.HandleFunc("/v1/records/export", rt.exportRecords)
	mux.HandleFunc("/v1/datasets", rt.uploadDataset)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	if rt.cfg.APIMaxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.APIMaxConcurrent, 100*time.Millisecond)
	}
	if rt.cfg.APIRateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	}
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.service, handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	size := 0
	if rt.cache != nil {
		size = rt.cache.Size()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "healthy",
		"cache_size": size,
	})
}

type analyzeRequest struct {
	Query   string `json:"query"`
	CSVData string `json:"csv_data"`
}

func (rt *Router) analyzeWithProvider(w http.ResponseWriter, r *http.Request) {
	rt.analyze(w, r, "provider", rt.analyzer.AnalyzeWithProvider)
}

func (rt *Router) analyzeLocal(w http.ResponseWriter, r *http.Request) {
	rt.analyze(w, r, "local", rt.analyzer.AnalyzeLocal)
}

func (rt *Router) analyze(
	w http.ResponseWriter,
	r *http.Request,
	endpoint string,
	run func(ctx context.Context, query, datasetText string, records []domain.InvoiceRecord) (*domain.AnalysisResult, error),
) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	datasetText, records, err := rt.resolveDataset(r, req.CSVData)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	start := time.Now()
	result, err := run(r.Context(), req.Query, datasetText, records)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnalysisDuration(rt.service, endpoint, time.Since(start))
	}

	writeJSON(w, http.StatusOK, result)
}

// resolveDataset prefers an inline CSV body; otherwise the latest persisted
// dataset is served. The returned text is the literal bytes that feed the
// request fingerprint.
func (rt *Router) resolveDataset(r *http.Request, inline string) (string, []domain.InvoiceRecord, error) {
	if strings.TrimSpace(inline) != "" {
		records, err := rt.codec.Parse(inline)
		if err != nil {
			return "", nil, err
		}
		return inline, records, nil
	}

	dataset, err := rt.datasets.GetLatest(r.Context())
	if err != nil {
		return "", nil, err
	}
	return dataset.RawText, dataset.Records, nil
}

func (rt *Router) listRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	dataset, err := rt.datasets.GetLatest(r.Context())
	if err != nil {
		if domain.IsKind(err, domain.ErrDatasetNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"records": []domain.InvoiceRecord{}, "count": 0})
			return
		}
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"records": dataset.Records,
		"count":   len(dataset.Records),
	})
}

func (rt *Router) uploadDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	storageKey, err := rt.ingestor.Upload(r.Context(), r.Body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"storage_key": storageKey})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
