package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/invoice-analyzer/internal/config"
	"github.com/kirillkom/invoice-analyzer/internal/core/ports"
	"github.com/kirillkom/invoice-analyzer/internal/core/usecase"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/cache"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/dataset"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm/anthropic"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm/dispatch"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/invoice-analyzer/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Repo     ports.DatasetRepository
	Codec    ports.DatasetCodec
	Cache    ports.AnalysisCache
	Analyzer ports.InvoiceAnalyzer
	Ingestor ports.DatasetIngestor
	Importer ports.DatasetImporter

	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn func()
}

func New(ctx context.Context, service string, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDatasetRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	resCfg := resilience.DefaultConfig()
	resCfg.RetryMaxAttempts = cfg.RetryMaxAttempts
	resCfg.RetryInitialBackoff = time.Duration(cfg.RetryInitialBackoff) * time.Millisecond
	resCfg.RetryMaxBackoff = time.Duration(cfg.RetryMaxBackoff) * time.Millisecond
	executor := resilience.NewExecutor(resCfg)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	analysisCache := cache.NewMemory(cfg.CacheCapacity)
	httpMetrics := metrics.NewHTTPServerMetrics(service, analysisCache.Size)

	providers, err := buildProviders(cfg)
	if err != nil {
		queue.Close()
		closeQuietly(db)
		return nil, err
	}
	dispatcher := dispatch.New(executor, boundMetrics{service: service, http: httpMetrics}, providers...)

	heuristic := usecase.NewHeuristicAnalyzer()
	analyzer := usecase.NewAnalyzeUseCase(analysisCache, dispatcher, heuristic,
		boundMetrics{service: service, http: httpMetrics})

	codec := dataset.NewCodec()
	ingestor := usecase.NewIngestDatasetUseCase(storage, queue)
	importer := usecase.NewImportDatasetUseCase(storage, codec, repo)

	return &App{
		Config: cfg,

		Queue:    queue,
		Repo:     repo,
		Codec:    codec,
		Cache:    analysisCache,
		Analyzer: analyzer,
		Ingestor: ingestor,
		Importer: importer,

		HTTPMetrics: httpMetrics,

		closeFn: func() {
			queue.Close()
			closeQuietly(db)
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func buildProviders(cfg config.Config) ([]llm.Provider, error) {
	names := strings.Split(cfg.ProviderOrder, ",")
	providers := make([]llm.Provider, 0, len(names))
	for _, name := range names {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "":
			continue
		case "anthropic":
			providers = append(providers, anthropic.New(cfg.AnthropicModel, int64(cfg.ProviderMaxTokens)))
		case "openai":
			providers = append(providers, openai.New(cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.ProviderMaxTokens))
		default:
			return nil, fmt.Errorf("unknown provider %q in provider order", name)
		}
	}
	return providers, nil
}

// boundMetrics binds the service label so core packages stay free of
// observability plumbing.
type boundMetrics struct {
	service string
	http    *metrics.HTTPServerMetrics
}

func (m boundMetrics) RecordProviderAttempt(provider, outcome string) {
	m.http.RecordProviderAttempt(m.service, provider, outcome)
}

func (m boundMetrics) RecordCacheLookup(endpoint string, hit bool) {
	m.http.RecordCacheLookup(m.service, endpoint, hit)
}

func (m boundMetrics) RecordQueryCategory(category string) {
	m.http.RecordQueryCategory(m.service, category)
}

func closeQuietly(db *sql.DB) {
	_ = db.Close()
}
