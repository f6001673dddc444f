package dispatch

import (
	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
)

func outcomeOf(err error, class resilience.ErrorClassification) domain.AttemptOutcome {
	switch {
	case err == nil:
		return domain.AttemptSuccess
	case class.Retryable:
		return domain.AttemptTransientFailure
	default:
		return domain.AttemptTerminalFailure
	}
}

// fallBack decides whether the chain moves to the next provider after the
// current one exhausted its attempts. It reads only the attempt trace and the
// number of configured providers left, so failure suppression is visibly
// scoped to intermediate providers.
func fallBack(trace []domain.ProviderAttempt, remaining int) bool {
	if remaining <= 0 {
		return false
	}
	if len(trace) == 0 {
		// Circuit open: the provider was not even attempted this request.
		return true
	}
	return trace[len(trace)-1].Outcome != domain.AttemptSuccess
}
