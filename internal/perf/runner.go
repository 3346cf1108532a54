package perf

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Scenario 单个虚拟用户的一轮操作
type Scenario func(ctx context.Context, user int) []Result

// Runner 按批次并发执行场景，直到持续时间用完
// 每批启动 Users 个协程，全部完成后暂停 Pause 再开始下一批
type Runner struct {
	Users    int
	Duration time.Duration
	Pause    time.Duration
}

// Run 执行压测并返回全部结果
func (r Runner) Run(ctx context.Context, sc Scenario) []Result {
	users := r.Users
	if users < 1 {
		users = 1
	}
	deadline := time.Now().Add(r.Duration)

	var (
		mu  sync.Mutex
		all []Result
	)
	collect := func(rs ...Result) {
		mu.Lock()
		all = append(all, rs...)
		mu.Unlock()
	}

	for batch := 0; time.Now().Before(deadline); batch++ {
		var wg sync.WaitGroup
		for i := 0; i < users; i++ {
			wg.Add(1)
			go func(user int) {
				defer wg.Done()
				defer func() {
					if p := recover(); p != nil {
						collect(Result{
							Operation: "batch_error",
							Error:     fmt.Sprint(p),
							Timestamp: time.Now(),
						})
					}
				}()
				collect(sc(ctx, user)...)
			}(batch*users + i)
		}
		wg.Wait()

		if r.Pause <= 0 {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		select {
		case <-ctx.Done():
			return all
		case <-time.After(r.Pause):
		}
	}
	return all
}
