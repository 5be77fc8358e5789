// Package limiter 提供搜索调用的全局并发上限和固定间隔节流。
package limiter

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// DefaultLimit 搜索提供方的默认并发上限
const DefaultLimit = 5

// Limiter 限制同时执行的任务数，超出的任务按 FIFO 顺序排队
type Limiter struct {
	sem *semaphore.Weighted
	n   int64
}

// New 创建并发上限为 n 的限流器，n <= 0 时使用 DefaultLimit
func New(n int) *Limiter {
	if n <= 0 {
		n = DefaultLimit
	}
	return &Limiter{sem: semaphore.NewWeighted(int64(n)), n: int64(n)}
}

// Cap 返回并发上限
func (l *Limiter) Cap() int { return int(l.n) }

// Schedule 在拿到名额后执行 task 并返回其结果。
// 排队不设超时，也不响应 ctx 取消；名额在 task 返回（包括 panic）后释放。
func Schedule[T any](ctx context.Context, l *Limiter, task func(context.Context) (T, error)) (T, error) {
	// semaphore.Weighted 按调用顺序放行等待者
	_ = l.sem.Acquire(context.WithoutCancel(ctx), 1)
	defer l.sem.Release(1)
	return task(ctx)
}

// Pacer 保证相邻两次调用之间至少间隔 interval，用于遵守外部固定的速率上限
type Pacer struct {
	lim *rate.Limiter
}

// NewPacer 创建固定间隔节流器，第一次调用立即放行
func NewPacer(interval time.Duration) *Pacer {
	return &Pacer{lim: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait 阻塞到下一个可用时间点
func (p *Pacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}
