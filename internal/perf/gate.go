package perf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Threshold 质量门禁阈值
type Threshold struct {
	MaxAvgLatencyMS float64 `json:"max_avg_latency_ms"`
	MinSuccessRate  float64 `json:"min_success_rate"`
	MaxP95LatencyMS float64 `json:"max_p95_latency_ms"`
}

// Thresholds 组件 -> 场景 -> 阈值
type Thresholds map[string]map[string]Threshold

// DefaultThresholds 默认门禁阈值
func DefaultThresholds() Thresholds {
	return Thresholds{
		ComponentAuth: {
			"good": {MaxAvgLatencyMS: 200, MinSuccessRate: 95, MaxP95LatencyMS: 300},
			"ok":   {MaxAvgLatencyMS: 400, MinSuccessRate: 90, MaxP95LatencyMS: 600},
		},
		ComponentSearch: {
			"good": {MaxAvgLatencyMS: 300, MinSuccessRate: 90, MaxP95LatencyMS: 500},
			"ok":   {MaxAvgLatencyMS: 500, MinSuccessRate: 85, MaxP95LatencyMS: 800},
		},
	}
}

// hardFailSuccessRate 低于该成功率时任何场景都判定失败
const hardFailSuccessRate = 85

// GateMetrics 参与门禁判定的指标
type GateMetrics struct {
	AvgLatencyMS float64 `json:"avg_latency_ms"`
	SuccessRate  float64 `json:"success_rate"`
	P95LatencyMS float64 `json:"p95_latency_ms"`
}

// Evaluation 单份报告的门禁评估
type Evaluation struct {
	Component  string      `json:"component"`
	Scenario   string      `json:"scenario"`
	Status     string      `json:"status"`
	Issues     []string    `json:"issues"`
	Metrics    GateMetrics `json:"metrics"`
	Thresholds Threshold   `json:"thresholds"`
}

// GateSummary 计数汇总
type GateSummary struct {
	TotalTests int `json:"total_tests"`
	Passed     int `json:"passed"`
	Warnings   int `json:"warnings"`
	Failed     int `json:"failed"`
}

// GateResult 门禁总体结果
type GateResult struct {
	OverallStatus string       `json:"overall_status"`
	Reason        string       `json:"reason"`
	Evaluations   []Evaluation `json:"evaluations"`
	Summary       GateSummary  `json:"summary"`
}

// Evaluate 按组件与场景阈值评估一份分析；未知场景使用 ok 阈值
func (t Thresholds) Evaluate(component string, a Analysis) Evaluation {
	scenario := a.Scenario
	if scenario == "" {
		scenario = "unknown"
	}
	th, ok := t[component][scenario]
	if !ok {
		th = t[component]["ok"]
	}

	e := Evaluation{
		Component: component,
		Scenario:  scenario,
		Status:    StatusPass,
		Issues:    []string{},
		Metrics: GateMetrics{
			AvgLatencyMS: a.AvgLatencyMS,
			SuccessRate:  a.SuccessRate,
			P95LatencyMS: a.P95LatencyMS,
		},
		Thresholds: th,
	}
	if e.Metrics.AvgLatencyMS > th.MaxAvgLatencyMS {
		e.Issues = append(e.Issues, fmt.Sprintf("Average latency too high: %.1fms > %gms", e.Metrics.AvgLatencyMS, th.MaxAvgLatencyMS))
	}
	if e.Metrics.SuccessRate < th.MinSuccessRate {
		e.Issues = append(e.Issues, fmt.Sprintf("Success rate too low: %.1f%% < %g%%", e.Metrics.SuccessRate, th.MinSuccessRate))
	}
	if e.Metrics.P95LatencyMS > th.MaxP95LatencyMS {
		e.Issues = append(e.Issues, fmt.Sprintf("P95 latency too high: %.1fms > %gms", e.Metrics.P95LatencyMS, th.MaxP95LatencyMS))
	}

	if len(e.Issues) > 0 {
		if scenario == "good" || e.Metrics.SuccessRate < hardFailSuccessRate {
			e.Status = StatusFail
		} else {
			e.Status = StatusWarning
		}
	}
	return e
}

// Run 评估所有组件的报告并给出总体结论，没有任何报告时判定失败
func (t Thresholds) Run(analyses map[string][]Analysis) GateResult {
	res := GateResult{Evaluations: []Evaluation{}}
	for _, component := range []string{ComponentAuth, ComponentSearch} {
		for _, a := range analyses[component] {
			e := t.Evaluate(component, a)
			res.Evaluations = append(res.Evaluations, e)
			switch e.Status {
			case StatusPass:
				res.Summary.Passed++
			case StatusWarning:
				res.Summary.Warnings++
			default:
				res.Summary.Failed++
			}
		}
	}
	res.Summary.TotalTests = len(res.Evaluations)

	switch {
	case res.Summary.TotalTests == 0:
		res.OverallStatus, res.Reason = StatusFail, "No test results found"
	case res.Summary.Failed > 0:
		res.OverallStatus = StatusFail
		res.Reason = fmt.Sprintf("%d test(s) failed quality gate", res.Summary.Failed)
	case res.Summary.Warnings > 0:
		res.OverallStatus = StatusWarning
		res.Reason = fmt.Sprintf("%d test(s) have warnings", res.Summary.Warnings)
	default:
		res.OverallStatus, res.Reason = StatusPass, "All tests passed quality gate"
	}
	return res
}

// FormatGate 生成文本报告
func FormatGate(res GateResult) string {
	var b strings.Builder
	b.WriteString("QUALITY GATE REPORT\n")
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "Overall Status: %s\n", res.OverallStatus)
	fmt.Fprintf(&b, "Reason: %s\n\n", res.Reason)
	b.WriteString("Summary:\n")
	fmt.Fprintf(&b, "  Total Tests: %d\n", res.Summary.TotalTests)
	fmt.Fprintf(&b, "  Passed: %d\n", res.Summary.Passed)
	fmt.Fprintf(&b, "  Warnings: %d\n", res.Summary.Warnings)
	fmt.Fprintf(&b, "  Failed: %d\n", res.Summary.Failed)

	if len(res.Evaluations) > 0 {
		b.WriteString("\nDetailed Results:\n")
		b.WriteString(strings.Repeat("-", 30) + "\n")
		for _, e := range res.Evaluations {
			fmt.Fprintf(&b, "[%s] %s - %s\n", e.Status, strings.ToUpper(e.Component), strings.ToUpper(e.Scenario))
			fmt.Fprintf(&b, "  Avg Latency: %.1fms (max: %gms)\n", e.Metrics.AvgLatencyMS, e.Thresholds.MaxAvgLatencyMS)
			fmt.Fprintf(&b, "  Success Rate: %.1f%% (min: %g%%)\n", e.Metrics.SuccessRate, e.Thresholds.MinSuccessRate)
			fmt.Fprintf(&b, "  P95 Latency: %.1fms (max: %gms)\n", e.Metrics.P95LatencyMS, e.Thresholds.MaxP95LatencyMS)
			if len(e.Issues) > 0 {
				b.WriteString("  Issues:\n")
				for _, issue := range e.Issues {
					fmt.Fprintf(&b, "    - %s\n", issue)
				}
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

// WriteGate 写入 <dir>/quality_gate_result.json 与 quality_gate_report.txt，
// 失败时额外写 quality_gate_failed 供 CI 检测
func WriteGate(dir string, res GateResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("encode gate result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quality_gate_result.json"), data, 0o644); err != nil {
		return fmt.Errorf("write gate result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quality_gate_report.txt"), []byte(FormatGate(res)), 0o644); err != nil {
		return fmt.Errorf("write gate report: %w", err)
	}

	failedPath := filepath.Join(dir, "quality_gate_failed")
	if res.OverallStatus != StatusFail {
		_ = os.Remove(failedPath)
		return nil
	}
	return WriteFailure(dir, res)
}

// WriteFailure 写 quality_gate_failed 标记文件
func WriteFailure(dir string, res GateResult) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Quality Gate Failed: %s\n", res.Reason)
	fmt.Fprintf(&b, "Failed tests: %d\n", res.Summary.Failed)
	for _, e := range res.Evaluations {
		if e.Status != StatusFail {
			continue
		}
		fmt.Fprintf(&b, "\n%s - %s:\n", strings.ToUpper(e.Component), strings.ToUpper(e.Scenario))
		for _, issue := range e.Issues {
			fmt.Fprintf(&b, "  - %s\n", issue)
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "quality_gate_failed"), []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write gate failure: %w", err)
	}
	return nil
}
