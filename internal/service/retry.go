package service

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	MaxAttempts     int           // 最大尝试次数（含第一次）
	InitialInterval time.Duration // 初始间隔
	MaxInterval     time.Duration // 最大间隔
	Multiplier      float64       // 指数退避乘数
	EnableJitter    bool          // 启用抖动
}

// DefaultRetryConfig 默认重试配置
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     2 * time.Second,
		Multiplier:      2,
		EnableJitter:    true,
	}
}

// RetryStats 重试统计
type RetryStats struct {
	Attempts    int       // 尝试次数
	LastError   error     // 最后错误
	LastAttempt time.Time // 最后尝试时间
	Success     bool      // 是否成功
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent 标记不应重试的错误
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Retry 指数退避重试器，只用于幂等操作
type Retry struct {
	config *RetryConfig
	logger *Logger
	stats  map[string]*RetryStats
	mu     sync.Mutex
}

// NewRetry 创建重试器实例
func NewRetry(config *RetryConfig, logger *Logger) *Retry {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}
	if config.Multiplier < 1 {
		config.Multiplier = 1
	}
	return &Retry{
		config: config,
		logger: logger,
		stats:  make(map[string]*RetryStats),
	}
}

// Do 执行 fn，失败后按退避间隔重试；Permanent 错误立即返回（已解包）
func (r *Retry) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	stats := &RetryStats{}
	defer func() {
		r.mu.Lock()
		r.stats[key] = stats
		r.mu.Unlock()
	}()

	for {
		err := fn(ctx)
		stats.Attempts++
		stats.LastAttempt = time.Now()
		stats.LastError = err
		if err == nil {
			stats.Success = true
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			stats.LastError = perm.err
			return perm.err
		}
		if stats.Attempts >= r.config.MaxAttempts {
			r.logger.Warn("All %d attempts failed for %s: %v", stats.Attempts, key, err)
			return err
		}

		interval := r.interval(stats.Attempts)
		r.logger.Debug("Retry attempt %d for %s after %v: %v", stats.Attempts, key, interval, err)
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// interval 第 attempt 次失败后的等待时间
func (r *Retry) interval(attempt int) time.Duration {
	d := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if r.config.MaxInterval > 0 {
		d = math.Min(d, float64(r.config.MaxInterval))
	}
	if r.config.EnableJitter {
		d *= 0.5 + rand.Float64()/2
	}
	return time.Duration(d)
}

// Stats 获取最近一次执行的统计信息
func (r *Retry) Stats(key string) (RetryStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[key]
	if !ok {
		return RetryStats{}, false
	}
	return *s, true
}
