package dispatch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/invoice-analyzer/internal/core/domain"
	"github.com/kirillkom/invoice-analyzer/internal/infrastructure/resilience"
)

type fakeProvider struct {
	name       string
	env        string
	configured bool
	response   string
	err        error
	retryable  bool

	mu    sync.Mutex
	calls int
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) CredentialEnv() string { return p.env }
func (p *fakeProvider) Configured() bool { return p.configured }

func (p *fakeProvider) Generate(context.Context, string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.response, nil
}

func (p *fakeProvider) ClassifyError(error) resilience.ErrorClassification {
	return resilience.ErrorClassification{Retryable: p.retryable, RecordFailure: true}
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func fastExecutor(maxAttempts int) *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    maxAttempts,
		RetryInitialBackoff: time.Nanosecond,
		RetryMaxBackoff:     time.Nanosecond,
		RetryMultiplier:     1.0,
		BreakerEnabled:      false,
	})
}

type attemptRecorder struct {
	mu       sync.Mutex
	attempts []string
}

func (r *attemptRecorder) RecordProviderAttempt(provider, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, provider+":"+outcome)
}

func TestGenerateUsesPrimaryProvider(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY", configured: true, response: "primary answer"}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY", configured: true, response: "secondary answer"}
	d := New(fastExecutor(3), nil, primary, secondary)

	got, err := d.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "primary answer" {
		t.Fatalf("expected primary answer, got %q", got)
	}
	if secondary.callCount() != 0 {
		t.Fatalf("expected secondary untouched, got %d calls", secondary.callCount())
	}
}

func TestGenerateFallsBackAfterRetriesExhausted(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY", configured: true,
		err: errors.New("overloaded"), retryable: true}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY", configured: true, response: "fallback answer"}
	recorder := &attemptRecorder{}
	d := New(fastExecutor(3), recorder, primary, secondary)

	got, err := d.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback answer" {
		t.Fatalf("expected fallback answer, got %q", got)
	}
	if primary.callCount() != 3 {
		t.Fatalf("expected 3 primary attempts before fallback, got %d", primary.callCount())
	}
	if secondary.callCount() != 1 {
		t.Fatalf("expected 1 secondary attempt, got %d", secondary.callCount())
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	want := []string{
		"anthropic:transient_failure",
		"anthropic:transient_failure",
		"anthropic:transient_failure",
		"openai:success",
	}
	if len(recorder.attempts) != len(want) {
		t.Fatalf("expected %d attempt records, got %v", len(want), recorder.attempts)
	}
	for i, attempt := range want {
		if recorder.attempts[i] != attempt {
			t.Fatalf("attempt %d: expected %s, got %s", i, attempt, recorder.attempts[i])
		}
	}
}

func TestGenerateTerminalFailureSkipsRetries(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY", configured: true,
		err: errors.New("bad request"), retryable: false}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY", configured: true, response: "fallback answer"}
	d := New(fastExecutor(3), nil, primary, secondary)

	got, err := d.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "fallback answer" {
		t.Fatalf("expected fallback answer, got %q", got)
	}
	if primary.callCount() != 1 {
		t.Fatalf("expected single primary attempt for terminal failure, got %d", primary.callCount())
	}
}

func TestGenerateSkipsUnconfiguredProviders(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY", configured: false}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY", configured: true, response: "only option"}
	d := New(fastExecutor(3), nil, primary, secondary)

	got, err := d.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "only option" {
		t.Fatalf("expected secondary answer, got %q", got)
	}
	if primary.callCount() != 0 {
		t.Fatalf("expected unconfigured provider skipped, got %d calls", primary.callCount())
	}
}

func TestGenerateNoConfiguredProviders(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY"}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY"}
	d := New(fastExecutor(3), nil, primary, secondary)

	_, err := d.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected provider-unavailable kind, got %v", err)
	}
	for _, env := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY"} {
		if !strings.Contains(err.Error(), env) {
			t.Fatalf("expected enable hint for %s in %q", env, err.Error())
		}
	}
}

func TestGenerateAllProvidersFail(t *testing.T) {
	primary := &fakeProvider{name: "anthropic", env: "ANTHROPIC_API_KEY", configured: true,
		err: errors.New("down"), retryable: true}
	secondary := &fakeProvider{name: "openai", env: "OPENAI_API_KEY", configured: true,
		err: errors.New("also down"), retryable: true}
	d := New(fastExecutor(2), nil, primary, secondary)

	_, err := d.Generate(context.Background(), "prompt")
	if !domain.IsKind(err, domain.ErrProviderExhausted) {
		t.Fatalf("expected provider-exhausted kind, got %v", err)
	}
	if primary.callCount() != 2 || secondary.callCount() != 2 {
		t.Fatalf("expected both providers to exhaust retries, got %d and %d",
			primary.callCount(), secondary.callCount())
	}
}

func TestFallBack(t *testing.T) {
	failed := []domain.ProviderAttempt{{Provider: "anthropic", Outcome: domain.AttemptTransientFailure}}
	succeeded := []domain.ProviderAttempt{{Provider: "anthropic", Outcome: domain.AttemptSuccess}}

	if fallBack(failed, 0) {
		t.Fatal("expected no fallback with no providers remaining")
	}
	if !fallBack(failed, 1) {
		t.Fatal("expected fallback after failure with a provider remaining")
	}
	if !fallBack(nil, 1) {
		t.Fatal("expected fallback when the provider was short-circuited")
	}
	if fallBack(succeeded, 1) {
		t.Fatal("expected no fallback after success")
	}
}
