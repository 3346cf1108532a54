package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paperly/internal/perf"
)

// 退出码：0 通过，1 失败，2 警告
func main() {
	var (
		component  = flag.String("component", perf.ComponentAuth, "压测组件: auth | search")
		users      = flag.Int("users", 0, "并发用户数（默认 auth 300, search 200）")
		duration   = flag.Duration("duration", 30*time.Second, "持续时间，例如 30s、2m")
		maxLatency = flag.Float64("max-latency", 0, "允许的最大延迟(ms)（默认 auth 200, search 300）")
		scenario   = flag.String("scenario", "good", "场景名称，决定报告目录")
		baseURL    = flag.String("base-url", "http://localhost:8000", "服务地址")
		reportsDir = flag.String("reports", "reports", "报告根目录")
		adminUser  = flag.String("admin-user", "admin", "auth 场景使用的已有账号")
		adminPass  = flag.String("admin-password", "admin123", "已有账号密码")
		external   = flag.Float64("external-chance", 0.3, "search 场景追加外部搜索的概率")
	)
	flag.Parse()

	var (
		sc     perf.Scenario
		pause  time.Duration
		client = perf.NewClient(*baseURL, 15*time.Second)
	)
	switch *component {
	case perf.ComponentAuth:
		sc, pause = perf.AuthScenario(client, *adminUser, *adminPass), 100*time.Millisecond
		setDefault(users, 300)
		setDefaultFloat(maxLatency, 200)
	case perf.ComponentSearch:
		sc, pause = perf.SearchScenario(client, *external), 200*time.Millisecond
		setDefault(users, 200)
		setDefaultFloat(maxLatency, 300)
	default:
		fmt.Fprintf(os.Stderr, "未知组件: %s\n", *component)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("=== Paperly 压测 ===")
	fmt.Printf("开始时间: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Printf("目标: %s 组件: %s 场景: %s 并发: %d 持续: %v 最大延迟: %gms\n",
		*baseURL, *component, *scenario, *users, *duration, *maxLatency)

	probe(ctx, client)

	start := time.Now()
	results := perf.Runner{Users: *users, Duration: *duration, Pause: pause}.Run(ctx, sc)
	took := time.Since(start)

	analysis := perf.Analyze(results, *maxLatency, *scenario, perf.PolicyFor(*component), time.Now())
	path, err := perf.SaveReport(*reportsDir, *component, perf.Report{Analysis: analysis, RawResults: results})
	if err != nil {
		fmt.Fprintln(os.Stderr, "保存报告失败:", err)
		os.Exit(1)
	}

	fmt.Println("\n=== 压测结果 ===")
	fmt.Printf("耗时: %v\n", took)
	fmt.Printf("总操作: %d 成功: %d 失败: %d\n", analysis.TotalOperations, analysis.SuccessfulOperations, analysis.FailedOperations)
	fmt.Printf("成功率: %.2f%%\n", analysis.SuccessRate)
	fmt.Printf("延迟 平均: %.1fms 中位: %.1fms P95: %.1fms P99: %.1fms 最小: %.1fms 最大: %.1fms\n",
		analysis.AvgLatencyMS, analysis.MedianLatencyMS, analysis.P95LatencyMS, analysis.P99LatencyMS,
		analysis.MinLatencyMS, analysis.MaxLatencyMS)
	if took > 0 {
		fmt.Printf("QPS: %.2f\n", float64(analysis.SuccessfulOperations)/took.Seconds())
	}
	for op, s := range analysis.OperationsBreakdown {
		fmt.Printf("  %-16s 次数: %d 平均: %.1fms P95: %.1fms 最大: %.1fms\n", op, s.Count, s.AvgLatencyMS, s.P95LatencyMS, s.MaxLatencyMS)
	}
	fmt.Printf("状态: %s (%s)\n", analysis.Status, analysis.Reason)
	fmt.Println("报告已保存:", path)

	switch analysis.Status {
	case perf.StatusFail:
		os.Exit(1)
	case perf.StatusWarning:
		os.Exit(2)
	}
}

// probe 压测前检查服务可用性，只打印结果
func probe(ctx context.Context, c *perf.Client) {
	r := c.Do(ctx, "health", http.MethodGet, "/health", nil, nil, http.StatusOK)
	if r.Success {
		fmt.Printf("健康检查: %d (%.1fms)\n", r.StatusCode, r.LatencyMS)
		return
	}
	fmt.Printf("健康检查失败: status=%d err=%s\n", r.StatusCode, r.Error)
}

func setDefault(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setDefaultFloat(v *float64, def float64) {
	if *v <= 0 {
		*v = def
	}
}
