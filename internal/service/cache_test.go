package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache_GetSet(t *testing.T) {
	c := NewCache(&CacheConfig{MaxItems: 2})

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Set("a", 1, 0)
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("a")
	_, ok = c.Get("a")
	assert.False(t, ok)

	assert.Equal(t, CacheStats{Hits: 1, Misses: 2}, c.Stats())
}

func TestCache_EvictsOldest(t *testing.T) {
	c := NewCache(&CacheConfig{MaxItems: 2})
	c.Set("a", 1, 0)
	c.Set("b", 2, 0)
	c.Set("a", 10, 0)
	c.Set("c", 3, 0)

	_, ok := c.Get("a")
	assert.False(t, ok, "a was written first")
	v, _ := c.Get("b")
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, c.Stats().Items)

	c.Clear()
	assert.Zero(t, c.Stats().Items)
}

func TestCache_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache(&CacheConfig{DefaultTTL: time.Minute})
	c.now = func() time.Time { return now }

	c.Set("short", "x", time.Second)
	c.Set("default", "y", 0)

	now = now.Add(2 * time.Second)
	_, ok := c.Get("short")
	assert.False(t, ok)
	_, ok = c.Get("default")
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = c.Get("default")
	assert.False(t, ok)
	assert.Zero(t, c.Stats().Items)
}
