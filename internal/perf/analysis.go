package perf

import (
	"fmt"
	"sort"
	"time"
)

// 评估状态
const (
	StatusPass    = "PASS"
	StatusWarning = "WARNING"
	StatusFail    = "FAIL"
)

// 组件名，同时决定报告目录与文件名前缀
const (
	ComponentAuth   = "auth"
	ComponentSearch = "search"
)

// Result 单次操作的压测结果
type Result struct {
	Operation  string    `json:"operation"`
	Query      string    `json:"query,omitempty"`
	StatusCode int       `json:"status_code"`
	LatencyMS  float64   `json:"latency_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// OperationStats 按操作类型的统计
type OperationStats struct {
	Count        int     `json:"count"`
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	P95LatencyMS float64 `json:"p95_latency_ms"`
	MaxLatencyMS float64 `json:"max_latency_ms"`
}

// Analysis 一次压测的汇总分析
type Analysis struct {
	Status               string                    `json:"status"`
	Reason               string                    `json:"reason"`
	TotalOperations      int                       `json:"total_operations"`
	SuccessfulOperations int                       `json:"successful_operations"`
	FailedOperations     int                       `json:"failed_operations"`
	SuccessRate          float64                   `json:"success_rate"`
	MinLatencyMS         float64                   `json:"min_latency_ms"`
	MaxLatencyMS         float64                   `json:"max_latency_ms"`
	AvgLatencyMS         float64                   `json:"avg_latency_ms"`
	MedianLatencyMS      float64                   `json:"median_latency_ms"`
	P95LatencyMS         float64                   `json:"p95_latency_ms"`
	P99LatencyMS         float64                   `json:"p99_latency_ms"`
	MaxAllowedLatencyMS  float64                   `json:"max_allowed_latency_ms"`
	Scenario             string                    `json:"scenario"`
	OperationsBreakdown  map[string]OperationStats `json:"operations_breakdown,omitempty"`
	Timestamp            time.Time                 `json:"timestamp"`
}

// Policy 压测自身的判定规则
// P95Factor 为 P95 相对 maxLatency 的容忍倍数
type Policy struct {
	MinSuccessRate float64
	P95Factor      float64
	Breakdown      bool
}

var (
	AuthPolicy   = Policy{MinSuccessRate: 95, P95Factor: 1}
	SearchPolicy = Policy{MinSuccessRate: 90, P95Factor: 1.5, Breakdown: true}
)

// PolicyFor 按组件选择判定规则，未知组件按 auth 处理
func PolicyFor(component string) Policy {
	if component == ComponentSearch {
		return SearchPolicy
	}
	return AuthPolicy
}

// Analyze 统计结果并给出 PASS/WARNING/FAIL
// 延迟只统计成功的操作
func Analyze(results []Result, maxLatencyMS float64, scenario string, policy Policy, now time.Time) Analysis {
	a := Analysis{
		TotalOperations:     len(results),
		MaxAllowedLatencyMS: maxLatencyMS,
		Scenario:            scenario,
		Timestamp:           now,
	}
	if len(results) == 0 {
		a.Status, a.Reason = StatusFail, "No results to analyze"
		return a
	}

	var latencies []float64
	byOp := map[string][]float64{}
	for _, r := range results {
		if !r.Success {
			continue
		}
		latencies = append(latencies, r.LatencyMS)
		byOp[r.Operation] = append(byOp[r.Operation], r.LatencyMS)
	}
	a.SuccessfulOperations = len(latencies)
	a.FailedOperations = len(results) - len(latencies)
	if len(latencies) == 0 {
		a.Status, a.Reason = StatusFail, "No successful operations"
		return a
	}

	sort.Float64s(latencies)
	a.SuccessRate = float64(len(latencies)) / float64(len(results)) * 100
	a.MinLatencyMS = latencies[0]
	a.MaxLatencyMS = latencies[len(latencies)-1]
	a.AvgLatencyMS = mean(latencies)
	a.MedianLatencyMS = median(latencies)
	a.P95LatencyMS = percentile(latencies, 0.95)
	a.P99LatencyMS = percentile(latencies, 0.99)

	if policy.Breakdown {
		a.OperationsBreakdown = make(map[string]OperationStats, len(byOp))
		for op, ls := range byOp {
			sort.Float64s(ls)
			a.OperationsBreakdown[op] = OperationStats{
				Count:        len(ls),
				AvgLatencyMS: mean(ls),
				P95LatencyMS: percentile(ls, 0.95),
				MaxLatencyMS: ls[len(ls)-1],
			}
		}
	}

	p95Limit := maxLatencyMS * policy.P95Factor
	switch {
	case a.SuccessRate < policy.MinSuccessRate:
		a.Status = StatusFail
		a.Reason = fmt.Sprintf("Success rate too low: %.1f%%", a.SuccessRate)
	case a.P95LatencyMS > p95Limit:
		a.Status = StatusFail
		a.Reason = fmt.Sprintf("P95 latency too high: %.1fms > %gms", a.P95LatencyMS, p95Limit)
	case a.AvgLatencyMS > maxLatencyMS && scenario == "good":
		a.Status = StatusFail
		a.Reason = fmt.Sprintf("Average latency too high: %.1fms > %gms", a.AvgLatencyMS, maxLatencyMS)
	case a.AvgLatencyMS > maxLatencyMS:
		a.Status = StatusWarning
		a.Reason = fmt.Sprintf("Average latency acceptable for '%s' scenario", scenario)
	default:
		a.Status = StatusPass
		a.Reason = "All metrics within acceptable limits"
	}
	return a
}

func mean(sorted []float64) float64 {
	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// percentile 取排序后下标 int(n*p) 处的值
func percentile(sorted []float64, p float64) float64 {
	i := int(float64(len(sorted)) * p)
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}
