package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ghostwriter/logging"
	"ghostwriter/metrics"
)

// Tier names a backend class. Fast and final are paid per call in production.
type Tier string

const (
	TierFast  Tier = "fast"
	TierLocal Tier = "local"
	TierFinal Tier = "final"
)

var AllTiers = []Tier{TierFast, TierLocal, TierFinal}

// Invoker is the calling convention stages use to reach a model.
type Invoker interface {
	Invoke(ctx context.Context, tier Tier, prompt Prompt) (string, error)
}

// TierClient binds a backend to a tier. Timeout, when set, bounds each call.
type TierClient struct {
	Client  LLMClient
	Model   string
	Timeout time.Duration
}

// Tiers routes invocations to the client registered for each tier, counts
// prompt tokens and treats blank output as a failure.
type Tiers struct {
	clients map[Tier]TierClient
	tokens  *TokenCounter
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewTiers(clients map[Tier]TierClient, m *metrics.Metrics) (*Tiers, error) {
	for _, tier := range AllTiers {
		if c, ok := clients[tier]; !ok || c.Client == nil {
			return nil, fmt.Errorf("%s tier: llm client is required", tier)
		}
	}
	return &Tiers{
		clients: clients,
		tokens:  NewTokenCounter(),
		metrics: m,
		logger:  logging.New("llm"),
	}, nil
}

func (t *Tiers) Invoke(ctx context.Context, tier Tier, prompt Prompt) (string, error) {
	tc, ok := t.clients[tier]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	if tc.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, tc.Timeout)
		defer cancel()
	}

	tokens := t.tokens.Count(tc.Model, prompt.System+"\n"+prompt.User)
	t.metrics.AddPromptTokens(string(tier), tokens)

	start := time.Now()
	out, err := tc.Client.Complete(ctx, prompt)
	elapsed := time.Since(start)
	if err != nil {
		t.metrics.ObserveInvocation(string(tier), metrics.OutcomeError)
		t.logger.Warn("model call failed", "tier", tier, "model", tc.Model, "elapsed", elapsed, "error", err)
		return "", err
	}
	if strings.TrimSpace(out) == "" {
		t.metrics.ObserveInvocation(string(tier), metrics.OutcomeEmpty)
		t.logger.Warn("model returned nothing", "tier", tier, "model", tc.Model, "elapsed", elapsed)
		return "", ErrEmptyResponse
	}
	t.metrics.ObserveInvocation(string(tier), metrics.OutcomeOK)
	t.logger.Info("model call", "tier", tier, "model", tc.Model, "prompt_tokens", tokens, "elapsed", elapsed)
	return out, nil
}

// invokeFirst tries tiers in order and returns the first success. Each
// attempt gets the identical prompt; only the last failure is returned.
func invokeFirst(ctx context.Context, llm Invoker, tiers []Tier, prompt Prompt, logger *slog.Logger) (string, Tier, error) {
	var lastErr error
	for i, tier := range tiers {
		out, err := llm.Invoke(ctx, tier, prompt)
		if err == nil {
			return out, tier, nil
		}
		lastErr = fmt.Errorf("%s tier: %w", tier, err)
		if i+1 < len(tiers) {
			logger.Warn("falling back to next tier", "failed", tier, "next", tiers[i+1], "error", err)
		}
	}
	return "", "", lastErr
}
