package utils

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gofiber/fiber/v3/log"

	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
)

// RetryPolicy параметры повторов для операций чтения
type RetryPolicy struct {
	MaxRetries   uint
	InitialDelay time.Duration
	Multiplier   float64
}

// RetryPolicyFromConfig строит политику из конфигурации
func RetryPolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.InitialDelay,
		Multiplier:   cfg.Multiplier,
	}
}

// WithRetry выполняет op и до MaxRetries повторов с экспоненциальной задержкой.
// storage.ErrNotFound не повторяется
func WithRetry[T any](ctx context.Context, policy RetryPolicy, name string, op func() (T, error)) (T, error) {
	b := backoff.NewExponentialBackOff()
	if policy.InitialDelay > 0 {
		b.InitialInterval = policy.InitialDelay
	}
	if policy.Multiplier >= 1 {
		b.Multiplier = policy.Multiplier
	}
	b.RandomizationFactor = 0

	// Первая попытка плюс MaxRetries повторов
	tries := policy.MaxRetries + 1

	attempt := 0
	return backoff.Retry(ctx, func() (T, error) {
		attempt++
		result, err := op()
		if err == nil {
			return result, nil
		}
		if errors.Is(err, storage.ErrNotFound) || ctx.Err() != nil {
			return result, backoff.Permanent(err)
		}
		log.Warnf("Попытка %d/%d %s не удалась: %v", attempt, tries, name, err)
		return result, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
}
