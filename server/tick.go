package server

import (
	"context"
	"time"
)

// Clock 房间读取当前时间的来源，测试中可替换为可推进的假时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Scheduler 延迟执行回调。回调必须回到房间循环中执行。
type Scheduler interface {
	After(d time.Duration, fn func())
}

// loopScheduler 用 time.AfterFunc 计时，到点后把回调投递回房间循环
type loopScheduler struct {
	r *Room
}

func (s loopScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, func() {
		select {
		case s.r.timers <- fn:
		case <-s.r.done:
		}
	})
}

// Run 启动房间循环（单线程推进世界）：入站事件、定时回调、结算检查
// 互不重叠，每个都执行完毕后才处理下一个。ctx 取消时返回。
func (r *Room) Run(ctx context.Context) error {
	defer close(r.done)
	ticker := time.NewTicker(r.opts.ResolveTick)
	defer ticker.Stop()
	Log.Infof("room loop started: resolveTick=%s spinInterval=%s", r.opts.ResolveTick, r.opts.SpinInterval)
	for {
		select {
		case <-ctx.Done():
			Log.Info("room loop stopped")
			return nil
		case ev := <-r.events:
			start := time.Now()
			r.handle(ev)
			r.metrics.AddHandled(time.Since(start).Nanoseconds())
		case fn := <-r.timers:
			fn()
		case <-ticker.C:
			r.Tick(r.clock.Now())
		}
	}
}
