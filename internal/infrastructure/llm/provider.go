package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
)

// SystemPrompt frames every provider call; both providers share it so the
// answer style does not depend on which one served the request.
const SystemPrompt = "You are a financial analyst assistant. Analyze invoice data and provide concise, actionable insights."

// Provider is one external text-generation backend. Configured is evaluated
// per call because credentials are read from the environment at call time.
type Provider interface {
	Name() string
	CredentialEnv() string
	Configured() bool
	Generate(ctx context.Context, prompt string) (string, error)
	ClassifyError(err error) resilience.ErrorClassification
}

// HTTPStatusError is a non-success response from a provider's HTTP API.
type HTTPStatusError struct {
	Provider   string
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "provider status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("%s %s status: %s", e.Provider, e.Operation, e.Status)
	}
	return fmt.Sprintf("%s %s status: %s: %s", e.Provider, e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// ClassifyStatusCode marks throttling and server-side failures as transient.
func ClassifyStatusCode(statusCode int) resilience.ErrorClassification {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
}

// ClassifyTransportError handles the provider-independent cases: cancelled
// contexts never retry, network errors and open circuits do.
func ClassifyTransportError(err error) (resilience.ErrorClassification, bool) {
	if err == nil {
		return resilience.ErrorClassification{}, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}, true
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}, true
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return ClassifyStatusCode(statusErr.StatusCode), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}, true
	}

	return resilience.ErrorClassification{}, false
}
