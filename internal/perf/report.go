package perf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"paperly/pkg/logger"

	"go.uber.org/zap"
)

// Report 压测报告文件内容
type Report struct {
	Analysis   Analysis `json:"analysis"`
	RawResults []Result `json:"raw_results"`
}

// ReportDir 报告目录：<root>/<component>-performance-<scenario>
func ReportDir(root, component, scenario string) string {
	return filepath.Join(root, fmt.Sprintf("%s-performance-%s", component, scenario))
}

// SaveReport 写入 <component>_performance_<scenario>_<时间戳>.json，返回文件路径
func SaveReport(root, component string, r Report) (string, error) {
	dir := ReportDir(root, component, r.Analysis.Scenario)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	ts := r.Analysis.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	name := fmt.Sprintf("%s_performance_%s_%s.json", component, r.Analysis.Scenario, ts.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// LoadAnalyses 读取 root 下某组件的全部报告分析
// 无法解析的文件记录告警后跳过
func LoadAnalyses(root, component string) []Analysis {
	pattern := filepath.Join(root, component+"-performance-*", component+"_performance_*.json")
	files, _ := filepath.Glob(pattern)
	sort.Strings(files)

	var out []Analysis
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			logger.Warn("读取压测报告失败", zap.String("file", f), zap.Error(err))
			continue
		}
		var r Report
		if err := json.Unmarshal(data, &r); err != nil {
			logger.Warn("解析压测报告失败", zap.String("file", f), zap.Error(err))
			continue
		}
		out = append(out, r.Analysis)
	}
	return out
}
