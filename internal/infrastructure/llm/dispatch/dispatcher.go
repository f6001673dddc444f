package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/llm"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
)

// Metrics receives one observation per individual provider attempt.
type Metrics interface {
	RecordProviderAttempt(provider, outcome string)
}

// Dispatcher sends a prompt through a statically ordered provider chain.
// Each configured provider gets bounded retries with backoff; on exhaustion
// the chain moves to the next configured provider, and only the final
// provider's failure reaches the caller.
type Dispatcher struct {
	providers []llm.Provider
	executor  *resilience.Executor
	metrics   Metrics
}

func New(executor *resilience.Executor, metrics Metrics, providers ...llm.Provider) *Dispatcher {
	return &Dispatcher{
		providers: providers,
		executor:  executor,
		metrics:   metrics,
	}
}

func (d *Dispatcher) Generate(ctx context.Context, prompt string) (string, error) {
	configured := make([]llm.Provider, 0, len(d.providers))
	for _, provider := range d.providers {
		if provider.Configured() {
			configured = append(configured, provider)
		}
	}
	if len(configured) == 0 {
		return "", domain.WrapError(domain.ErrProviderUnavailable, "dispatch",
			fmt.Errorf("no provider credentials present; configure: %s", strings.Join(d.enableHints(), ", ")))
	}

	var trace []domain.ProviderAttempt
	var lastErr error
	for i, provider := range configured {
		var text string
		err := d.executor.Execute(ctx, "llm."+provider.Name(), func(ctx context.Context) error {
			out, genErr := provider.Generate(ctx, prompt)
			if genErr != nil {
				return genErr
			}
			text = out
			return nil
		}, provider.ClassifyError, d.recordAttempt(provider.Name(), &trace))
		if err == nil {
			return text, nil
		}

		lastErr = err
		remaining := len(configured) - i - 1
		if !fallBack(trace, remaining) {
			break
		}
		slog.Warn("provider_fallback",
			"provider", provider.Name(),
			"attempts", len(trace),
			"remaining_providers", remaining,
			"error", err,
		)
	}

	return "", domain.WrapError(domain.ErrProviderExhausted, "dispatch", lastErr)
}

func (d *Dispatcher) recordAttempt(name string, trace *[]domain.ProviderAttempt) resilience.AttemptObserver {
	return func(_ string, attempt int, err error, class resilience.ErrorClassification) {
		outcome := outcomeOf(err, class)
		*trace = append(*trace, domain.ProviderAttempt{
			Provider: name,
			Attempt:  attempt,
			Outcome:  outcome,
			Err:      err,
		})
		if d.metrics != nil {
			d.metrics.RecordProviderAttempt(name, string(outcome))
		}
	}
}

// enableHints names every registered provider and the credential that would
// enable it, for the no-provider configuration error.
func (d *Dispatcher) enableHints() []string {
	hints := make([]string, 0, len(d.providers))
	for _, provider := range d.providers {
		hints = append(hints, fmt.Sprintf("%s (set %s)", provider.Name(), provider.CredentialEnv()))
	}
	return hints
}
