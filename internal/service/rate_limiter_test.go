package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_PerKeyBurst(t *testing.T) {
	l := NewRateLimiter(&RateLimitConfig{Rate: 0.001, Burst: 2}, NewNopLogger())
	defer l.Stop()

	assert.True(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("1.1.1.1"))
	assert.False(t, l.Allow("1.1.1.1"))
	assert.True(t, l.Allow("2.2.2.2"), "keys have separate buckets")

	stats := l.Stats()
	assert.Equal(t, int64(3), stats.AllowedRequests)
	assert.Equal(t, int64(1), stats.RejectedRequests)

	l.Stop()
}
