package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// LocalFingerprintPrefix namespaces heuristic-path cache keys so the provider
// and heuristic operations never collide on identical inputs.
const LocalFingerprintPrefix = "local:"

// FingerprintPrefixLen is the number of hex characters surfaced to callers as
// a short reference to the full digest.
const FingerprintPrefixLen = 8

// Fingerprint identifies a request by the literal bytes of its query and
// dataset text. Two byte-identical (query, dataset) pairs always map to the
// same digest; any single-character difference changes it.
func Fingerprint(query, datasetText string) string {
	sum := sha256.Sum256([]byte(query + ":" + datasetText))
	return hex.EncodeToString(sum[:])
}

// ShortFingerprint returns the caller-facing prefix of a fingerprint,
// skipping over the local-path namespace when present.
func ShortFingerprint(fingerprint string) string {
	fingerprint = strings.TrimPrefix(fingerprint, LocalFingerprintPrefix)
	if len(fingerprint) <= FingerprintPrefixLen {
		return fingerprint
	}
	return fingerprint[:FingerprintPrefixLen]
}

// AnalysisResult is the complete response for one analysis request. Immutable
// once stored in the cache.
type AnalysisResult struct {
	Analysis          string `json:"analysis"`
	RecordsAnalyzed   int    `json:"records_analyzed"`
	FingerprintPrefix string `json:"fingerprint_prefix"`
}

type AttemptOutcome string

const (
	AttemptSuccess          AttemptOutcome = "success"
	AttemptTransientFailure AttemptOutcome = "transient_failure"
	AttemptTerminalFailure  AttemptOutcome = "terminal_failure"
)

// ProviderAttempt records one call against one provider. The dispatcher
// accumulates these within a single request to drive retry and fallback; they
// are never persisted.
type ProviderAttempt struct {
	Provider string
	Attempt  int
	Outcome  AttemptOutcome
	Err      error
}
