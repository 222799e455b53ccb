package providers

import (
	"context"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"
)

// RetryConfig controls the backoff loop around a chat call.
type RetryConfig struct {
	Attempts uint          // total attempts, including the first
	MinDelay time.Duration // initial delay, doubled per attempt
	MaxDelay time.Duration // delay cap
}

// DefaultRetryConfig mirrors the generation backend contract: up to 5
// attempts, exponential backoff starting at 4s, capped at 10s.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts: 5,
		MinDelay: 4 * time.Second,
		MaxDelay: 10 * time.Second,
	}
}

// ChatWithRetry wraps a chat call with exponential backoff. Any error from
// the underlying call triggers a retry; exhausting the attempt budget
// surfaces the final error to the caller.
func ChatWithRetry(ctx context.Context, client LLMClient, req *ChatRequest, cfg RetryConfig, logger *slog.Logger) (*ChatResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Attempts == 0 {
		cfg = DefaultRetryConfig()
	}

	var result *ChatResult
	attempts := 0
	err := retry.Do(
		func() error {
			attempts++
			res, err := client.Chat(ctx, req)
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(cfg.Attempts),
		retry.Delay(cfg.MinDelay),
		retry.MaxDelay(cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("LLM call failed, retrying", "provider", client.Name(), "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	result.Attempts = attempts
	return result, nil
}
