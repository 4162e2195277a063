package throttle

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilLimiter(t *testing.T) {
	var l *Limiter

	assert.NoError(t, l.Wait(context.Background()))
	l.Backoff(time.Second)
	assert.True(t, l.RetryAt().IsZero())
}

func TestNew_Unlimited(t *testing.T) {
	l := New(0, 0)

	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(context.Background()))
	}
}

func TestNew_RateLimited(t *testing.T) {
	l := New(1, 1)

	require.NoError(t, l.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, l.Wait(ctx))
}

func TestLimiter_Backoff(t *testing.T) {
	l := New(0, 1)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Backoff(10 * time.Second)
	assert.Equal(t, now.Add(10*time.Second), l.RetryAt())

	// Shorter windows never shrink an open one.
	l.Backoff(time.Second)
	assert.Equal(t, now.Add(10*time.Second), l.RetryAt())

	l.Backoff(0)
	assert.Equal(t, now.Add(DefaultBackoff), l.RetryAt())

	now = now.Add(time.Hour)
	assert.NoError(t, l.Wait(context.Background()))
}

func TestLimiter_Wait_CancelledDuringBackoff(t *testing.T) {
	l := New(0, 1)
	l.Backoff(time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, l.Wait(ctx), context.DeadlineExceeded)
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"absent", "", 0},
		{"seconds", "120", 2 * time.Minute},
		{"http date", now.Add(5 * time.Second).Format(http.TimeFormat), 5 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, RetryAfter(h, now))
		})
	}
}
