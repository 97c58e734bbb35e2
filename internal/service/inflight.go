package service

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// 外部调用动作
const (
	ActionBio     = "bio"
	ActionIngest  = "ingest"
	ActionPublish = "publish"
)

// Inflight 每个动作同一时间只允许一个请求
type Inflight struct {
	guards  map[string]*semaphore.Weighted
	metrics *Metrics
}

// NewInflight 创建请求守卫
func NewInflight(metrics *Metrics, actions ...string) *Inflight {
	g := &Inflight{guards: make(map[string]*semaphore.Weighted, len(actions)), metrics: metrics}
	for _, a := range actions {
		g.guards[a] = semaphore.NewWeighted(1)
	}
	return g
}

// Do 执行外部调用；同一动作已有请求在进行时立即返回 ErrBusy
func (g *Inflight) Do(ctx context.Context, action string, fn func(ctx context.Context) error) error {
	sem, ok := g.guards[action]
	if !ok {
		return NewError(ErrInternal, "unknown action "+action, nil)
	}
	if !sem.TryAcquire(1) {
		return NewError(ErrBusy, action+" is already in progress", nil)
	}
	defer sem.Release(1)

	err := fn(ctx)
	g.metrics.ObserveExternal(action, err)
	return err
}
