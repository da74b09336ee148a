package retry

import (
	"context"
	"errors"
	"net"
	"time"

	"go.uber.org/zap"

	ai "github.com/spetersoncode/citydesk"
)

// Do calls fn until it succeeds, fails with a non-transient error, or the
// attempts run out. Backoff waits stop early when ctx is done.
func Do[T any](ctx context.Context, cfg Config, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	attempts := max(cfg.MaxAttempts, 1)
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Delay(attempt)):
		}
	}
	return zero, lastErr
}

// IsTransient reports whether err is worth retrying: a categorized transient
// error or a network timeout. Context cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if ai.CategoryOf(err) != "" {
		return ai.IsTransient(err)
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// Provider wraps a ChatProvider so every Chat call is retried under cfg.
type Provider struct {
	next   ai.ChatProvider
	cfg    Config
	logger *zap.Logger
}

// Wrap returns p with retries. A nil logger disables retry logging.
func Wrap(p ai.ChatProvider, cfg Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{next: p, cfg: cfg, logger: logger}
}

// Chat implements ai.ChatProvider.
func (p *Provider) Chat(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.Response, error) {
	attempt := 0
	return Do(ctx, p.cfg, func() (*ai.Response, error) {
		attempt++
		resp, err := p.next.Chat(ctx, messages, opts...)
		if err != nil && IsTransient(err) {
			p.logger.Warn("transient chat failure", zap.Int("attempt", attempt), zap.Error(err))
		}
		return resp, err
	})
}
