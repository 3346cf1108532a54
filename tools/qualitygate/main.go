package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"paperly/config"
	"paperly/internal/perf"
	"paperly/pkg/logger"
)

func main() {
	reportsDir := flag.String("reports", "reports", "报告根目录")
	flag.Parse()

	if _, err := logger.InitLogger(config.LogConfig{Level: "warn", Console: true}); err == nil {
		defer logger.Sync()
	}

	summaryDir := filepath.Join(*reportsDir, "summary")
	fmt.Println("Running quality gate evaluation...")

	th := perf.DefaultThresholds()
	res := th.Run(map[string][]perf.Analysis{
		perf.ComponentAuth:   perf.LoadAnalyses(*reportsDir, perf.ComponentAuth),
		perf.ComponentSearch: perf.LoadAnalyses(*reportsDir, perf.ComponentSearch),
	})
	if err := perf.WriteGate(summaryDir, res); err != nil {
		fmt.Fprintln(os.Stderr, "quality gate evaluation failed:", err)
		res.OverallStatus, res.Reason = perf.StatusFail, err.Error()
		_ = perf.WriteFailure(summaryDir, res)
		os.Exit(1)
	}

	line := strings.Repeat("=", 50)
	fmt.Println(line)
	fmt.Print(perf.FormatGate(res))
	fmt.Println(line)
	fmt.Println("Quality gate report saved to", summaryDir)

	switch res.OverallStatus {
	case perf.StatusFail:
		fmt.Println("Quality gate FAILED")
		os.Exit(1)
	case perf.StatusWarning:
		fmt.Println("Quality gate passed with WARNINGS")
	default:
		fmt.Println("Quality gate PASSED")
	}
}
