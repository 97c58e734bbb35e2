package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Rate            float64       // 速率（每秒）
	Burst           int           // 突发容量
	CleanupInterval time.Duration // 清理间隔
	IdleTimeout     time.Duration // 空闲多久后移除
}

// RateLimitStats 限流统计
type RateLimitStats struct {
	AllowedRequests  int64 // 允许的请求数
	RejectedRequests int64 // 拒绝的请求数
}

type keyedLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter 按键（通常是客户端 IP）的令牌桶限流器
type RateLimiter struct {
	config   *RateLimitConfig
	logger   *Logger
	limiters map[string]*keyedLimiter
	stats    RateLimitStats
	mu       sync.Mutex
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter 创建限流器实例
func NewRateLimiter(config *RateLimitConfig, logger *Logger) *RateLimiter {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Minute
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 10 * time.Minute
	}
	limiter := &RateLimiter{
		config:   config,
		logger:   logger,
		limiters: make(map[string]*keyedLimiter),
		stopCh:   make(chan struct{}),
	}

	go limiter.cleanup()

	return limiter
}

// Allow 检查是否允许请求
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedLimiter{limiter: rate.NewLimiter(rate.Limit(l.config.Rate), l.config.Burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = time.Now()

	if entry.limiter.Allow() {
		l.stats.AllowedRequests++
		return true
	}
	l.stats.RejectedRequests++
	l.logger.Debug("Rate limit exceeded for %s", key)
	return false
}

// Stats 获取统计信息
func (l *RateLimiter) Stats() RateLimitStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// Stop 停止清理协程
func (l *RateLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopCh) })
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, entry := range l.limiters {
				if now.Sub(entry.lastSeen) > l.config.IdleTimeout {
					delete(l.limiters, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
