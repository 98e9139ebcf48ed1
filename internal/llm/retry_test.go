package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func ok() MockResponse {
	return MockResponse{Content: json.RawMessage(`{"ok":true}`)}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{ok()}, false, 1},
		{"transient then success", []MockResponse{unavailable(), ok()}, false, 2},
		{"all attempts fail", []MockResponse{unavailable(), unavailable(), unavailable(), ok()}, true, 3},
		{"rate limit", []MockResponse{{Err: &ErrRateLimit{RetryAfter: time.Millisecond}}, ok()}, false, 2},
		{"max tokens not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, ok()}, true, 1},
		{"invalid retried once", []MockResponse{
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			{Err: &ErrInvalidResponse{Err: errors.New("bad")}},
			ok(),
		}, true, 2},
		{"canceled not retried", []MockResponse{{Err: context.Canceled}, ok()}, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig())

			resp, err := p.Generate(context.Background(), Request{})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
			}
			assert.Equal(t, tt.wantCalls, mock.CallCount())
		})
	}
}

func TestRetry_ContextCanceledDuringBackoff(t *testing.T) {
	mock := NewMockProvider(unavailable(), ok())
	p := WithRetry(mock, RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, mock.CallCount())
}

func TestBackoff_Bounds(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     time.Second,
		Multiplier:  2,
	}}
	for attempt := range 6 {
		wait := r.backoff(attempt, errors.New("x"))
		assert.LessOrEqual(t, wait, 1200*time.Millisecond, "attempt %d", attempt)
		assert.GreaterOrEqual(t, wait, 80*time.Millisecond, "attempt %d", attempt)
	}

	rl := &ErrRateLimit{RetryAfter: 3 * time.Second}
	assert.Equal(t, 3*time.Second, r.backoff(0, rl))
}

func TestWithTimeout(t *testing.T) {
	slow := &blockingProvider{}
	p := WithTimeout(slow, 10*time.Millisecond)

	_, err := p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Same(t, Provider(slow), WithTimeout(slow, 0))
}

type blockingProvider struct{}

func (blockingProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (blockingProvider) Name() string    { return "blocking" }
func (blockingProvider) ModelID() string { return "blocking" }
