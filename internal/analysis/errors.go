// Package analysis orchestrates remote candidate analysis: the quota-aware
// provider client, response normalization, and concurrency-bounded batch
// dispatch with heuristic fallback.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// QuotaError indicates the provider rejected the call for rate or quota
// reasons. Recoverable via delayed retry.
type QuotaError struct {
	// RetryAfter is the provider-suggested delay, zero when the provider
	// gave none.
	RetryAfter time.Duration
	Err        error
}

func (e *QuotaError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("provider quota exceeded (retry after %s): %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("provider quota exceeded: %v", e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// ProviderError indicates a transport-level failure: network error, timeout,
// or a 5xx from the provider. Recoverable via retry with fixed backoff.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string { return fmt.Sprintf("provider unavailable: %v", e.Err) }

func (e *ProviderError) Unwrap() error { return e.Err }

// MalformedResponseError indicates a response was received but could not be
// parsed into the expected schema even after best-effort cleanup. Not
// retried: retrying will not fix a parsing failure.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed provider response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// classifyProviderError maps a raw provider error onto the engine's error
// taxonomy. Quota errors are recognized distinctly from generic transport
// failures because only they carry a provider-suggested retry delay.
func classifyProviderError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests {
			return &QuotaError{RetryAfter: retryAfterFromError(apiErr), Err: err}
		}
		if apiErr.Code >= 500 {
			return &ProviderError{Err: err}
		}
	}
	// Timeouts and cancellations at the call boundary count as transport
	// failures; the caller decides whether its own context is done.
	return &ProviderError{Err: err}
}

// retryInfoBody mirrors the slice of the provider error body we care about:
// error.details entries of type google.rpc.RetryInfo carry a retryDelay
// like "27s".
type retryInfoBody struct {
	Error struct {
		Details []map[string]any `json:"details"`
	} `json:"error"`
}

// retryAfterFromError extracts the provider-suggested retry delay from the
// structured error payload, returning zero when none is present. This
// deliberately reads the structured details rather than scraping prose.
func retryAfterFromError(apiErr *googleapi.Error) time.Duration {
	if d := retryDelayFromDetails(apiErr.Details); d > 0 {
		return d
	}

	if apiErr.Body == "" {
		return 0
	}
	var body retryInfoBody
	if err := json.Unmarshal([]byte(apiErr.Body), &body); err != nil {
		return 0
	}
	return retryDelayFromDetailMaps(body.Error.Details)
}

func retryDelayFromDetails(details []interface{}) time.Duration {
	for _, detail := range details {
		if m, ok := detail.(map[string]any); ok {
			if d := retryDelayFromDetailMaps([]map[string]any{m}); d > 0 {
				return d
			}
		}
	}
	return 0
}

func retryDelayFromDetailMaps(details []map[string]any) time.Duration {
	for _, detail := range details {
		raw, ok := detail["retryDelay"].(string)
		if !ok {
			continue
		}
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// sleepCtx sleeps for d or until the context is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
