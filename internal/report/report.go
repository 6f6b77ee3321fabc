package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"

	"valkey-bench/internal/bench"
	"valkey-bench/internal/logger"
)

// WriteCharts は結果をops/sec系とMB/sec系に分けて棒グラフPNGを書き出す
// 空の系列はスキップされる
func WriteCharts(rs *bench.ResultSet, dir, timestamp string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	ops, mb := rs.Split()

	if ops.Len() > 0 {
		path := filepath.Join(dir, fmt.Sprintf("valkey_benchmark_ops_%s.png", timestamp))
		if err := writeBarChart(ops, "Operation Performance (ops/sec)", "Operations per second", path); err != nil {
			return err
		}
	}

	if mb.Len() > 0 {
		path := filepath.Join(dir, fmt.Sprintf("valkey_benchmark_mb_%s.png", timestamp))
		if err := writeBarChart(mb, "Large Object Performance (MB/sec)", "MB per second", path); err != nil {
			return err
		}
	}

	return nil
}

// writeBarChart は1枚の棒グラフをPNGとして書き出す
func writeBarChart(rs *bench.ResultSet, title, yLabel, path string) error {
	bars := make([]chart.Value, 0, rs.Len())
	for _, e := range rs.Entries() {
		bars = append(bars, chart.Value{Label: e.Label, Value: e.Value})
	}

	graph := chart.BarChart{
		Title:      "Valkey Cluster Benchmark: " + title,
		Width:      1024,
		Height:     640,
		BarWidth:   80,
		Background: chart.Style{Padding: chart.Box{Top: 48}},
		YAxis:      chart.YAxis{Name: yLabel},
		Bars:       bars,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	if err := graph.Render(chart.PNG, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close chart file: %w", err)
	}

	logger.Info("report", "Benchmark results chart saved to %s", path)
	return nil
}

// WriteJSON は結果を小数点以下2桁に丸めたJSONとして書き出す
// エントリは実行順のまま出力される
func WriteJSON(rs *bench.ResultSet, dir, timestamp string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("valkey_benchmark_results_%s.json", timestamp))

	// encoding/jsonのマップ出力はキー順がソートされるため、
	// 実行順を保ったまま手で組み立てる
	var buf bytes.Buffer
	buf.WriteString("{\n")
	entries := rs.Entries()
	for i, e := range entries {
		label, err := json.Marshal(e.Label)
		if err != nil {
			return "", fmt.Errorf("marshal label: %w", err)
		}
		fmt.Fprintf(&buf, "  %s: %.2f", label, e.Value)
		if i < len(entries)-1 {
			buf.WriteString(",")
		}
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write results file: %w", err)
	}
	return path, nil
}

// LogSummary は収集できた結果を単位付きでログ出力する
func LogSummary(rs *bench.ResultSet) {
	logger.Info("", "Benchmark complete!")
	for _, e := range rs.Entries() {
		if e.IsMB() {
			logger.Info("", "  - %s: %.2f MB/sec", e.Label, e.Value)
		} else {
			logger.Info("", "  - %s: %.2f ops/sec", e.Label, e.Value)
		}
	}
}
