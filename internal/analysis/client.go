package analysis

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/talent-ranker/internal/llm"
	"github.com/jonathan/talent-ranker/internal/types"
)

// Client defaults.
const (
	DefaultRequestsPerMinute = 30
	DefaultBurst             = 5
	DefaultMaxRetries        = 3
	DefaultRequestTimeout    = 8 * time.Second
	DefaultQuotaRetryDelay   = 30 * time.Second
	DefaultRetryBackoff      = 2 * time.Second
)

// ClientConfig holds the knobs for the quota-aware client. Zero values fall
// back to the defaults above.
type ClientConfig struct {
	RequestsPerMinute int
	Burst             int
	MaxRetries        int
	RequestTimeout    time.Duration
	// QuotaRetryDelay is used when the provider reports a quota error
	// without suggesting its own delay.
	QuotaRetryDelay time.Duration
	// RetryBackoff is the fixed delay between retries of transient
	// transport failures.
	RetryBackoff time.Duration
	Tier         llm.ModelTier
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.RequestsPerMinute <= 0 {
		c.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if c.Burst <= 0 {
		c.Burst = DefaultBurst
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.QuotaRetryDelay <= 0 {
		c.QuotaRetryDelay = DefaultQuotaRetryDelay
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.Tier == "" {
		c.Tier = llm.TierLite
	}
	return c
}

// QuotaAwareClient wraps an LLM client with the request pacing and retry
// policy the provider's quota model requires: a requests-per-minute
// ceiling, per-call timeouts, and bounded retries that honor the
// provider-suggested delay on quota errors. It never substitutes heuristic
// results itself; exhausted retries propagate to the orchestrator.
type QuotaAwareClient struct {
	llm     llm.Client
	limiter *rate.Limiter
	cfg     ClientConfig
	logger  *zap.Logger
}

// NewQuotaAwareClient builds a client around the given LLM transport.
func NewQuotaAwareClient(llmClient llm.Client, cfg ClientConfig, logger *zap.Logger) *QuotaAwareClient {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuotaAwareClient{
		llm:     llmClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.Burst),
		cfg:     cfg,
		logger:  logger,
	}
}

// Analyze runs one remote analysis for a candidate against the criteria.
// Fails with *QuotaError, *ProviderError, or *MalformedResponseError once
// the retry budget is spent.
func (c *QuotaAwareClient) Analyze(ctx context.Context, candidate *types.Candidate, criteria *types.SearchCriteria) (*types.AnalysisResult, error) {
	prompt := buildAnalysisPrompt(candidate, criteria)

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ProviderError{Err: err}
		}

		raw, err := c.generate(ctx, prompt)
		if err == nil {
			result, perr := ParseResult(raw, candidate.ID, time.Now())
			if perr != nil {
				// A parse failure is deterministic; retrying burns quota
				// for the same broken payload.
				return nil, perr
			}
			return result, nil
		}

		lastErr = classifyProviderError(err)
		delay, retryable := c.retryDelay(lastErr)
		if !retryable || attempt == c.cfg.MaxRetries {
			break
		}

		c.logger.Warn("provider call failed, retrying",
			zap.String("candidate_id", candidate.ID),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(lastErr))

		if err := sleepCtx(ctx, delay); err != nil {
			break
		}
	}

	return nil, lastErr
}

func (c *QuotaAwareClient) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()
	return c.llm.GenerateJSON(callCtx, prompt, c.cfg.Tier)
}

// retryDelay returns how long to wait before retrying the classified error
// and whether a retry is worthwhile at all.
func (c *QuotaAwareClient) retryDelay(err error) (time.Duration, bool) {
	var quotaErr *QuotaError
	if errors.As(err, &quotaErr) {
		if quotaErr.RetryAfter > 0 {
			return quotaErr.RetryAfter, true
		}
		return c.cfg.QuotaRetryDelay, true
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return c.cfg.RetryBackoff, true
	}

	return 0, false
}
