package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ai "github.com/spetersoncode/citydesk"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, Multiplier: 2}
}

func TestDo(t *testing.T) {
	t.Run("returns first success", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), fastConfig(3), func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries transient errors", func(t *testing.T) {
		calls := 0
		got, err := Do(context.Background(), fastConfig(3), func() (int, error) {
			calls++
			if calls < 3 {
				return 0, ai.NewTransientError("overloaded", 529, nil)
			}
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent errors", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(5), func() (int, error) {
			calls++
			return 0, ai.NewPermanentError("bad key", 401, nil)
		})
		assert.True(t, ai.IsPermanent(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error when exhausted", func(t *testing.T) {
		calls := 0
		_, err := Do(context.Background(), fastConfig(2), func() (int, error) {
			calls++
			return 0, timeoutErr{}
		})
		assert.ErrorIs(t, err, timeoutErr{})
		assert.Equal(t, 2, calls)
	})

	t.Run("honors cancellation during backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cfg := Config{MaxAttempts: 3, InitialDelay: time.Hour, MaxDelay: time.Hour, Multiplier: 1}
		_, err := Do(ctx, cfg, func() (int, error) {
			cancel()
			return 0, timeoutErr{}
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero attempts still calls once", func(t *testing.T) {
		calls := 0
		_, _ = Do(context.Background(), Config{}, func() (int, error) {
			calls++
			return 0, nil
		})
		assert.Equal(t, 1, calls)
	})
}

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.False(t, IsTransient(errors.New("plain")))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(fmt.Errorf("wrap: %w", context.DeadlineExceeded)))
	assert.True(t, IsTransient(timeoutErr{}))
	assert.True(t, IsTransient(fmt.Errorf("wrap: %w", ai.NewTransientError("x", 503, nil))))
	assert.False(t, IsTransient(ai.NewUserInputError("x", 400, timeoutErr{})), "explicit category wins")
}

func TestDelay(t *testing.T) {
	cfg := Config{InitialDelay: time.Second, MaxDelay: 5 * time.Second, Multiplier: 2}
	assert.Equal(t, time.Second, cfg.Delay(-1))
	assert.Equal(t, 2*time.Second, cfg.Delay(1))
	assert.Equal(t, 5*time.Second, cfg.Delay(10))

	cfg.Jitter = 0.5
	for i := 0; i < 20; i++ {
		d := cfg.Delay(0)
		assert.GreaterOrEqual(t, d, 500*time.Millisecond)
		assert.LessOrEqual(t, d, 1500*time.Millisecond)
	}
}

func TestProvider(t *testing.T) {
	calls := 0
	inner := ai.ChatFunc(func(ctx context.Context, msgs []ai.Message, opts ...ai.Option) (*ai.Response, error) {
		calls++
		if calls == 1 {
			return nil, ai.NewTransientError("rate limited", 429, nil)
		}
		return &ai.Response{Content: "done"}, nil
	})

	resp, err := Wrap(inner, fastConfig(3), nil).Chat(context.Background(), []ai.Message{ai.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 2, calls)
}
