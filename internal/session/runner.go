package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"valkey-bench/internal/bench"
	"valkey-bench/internal/config"
	"valkey-bench/internal/logger"
	"valkey-bench/internal/report"
)

// Result は1回のベンチマーク実行の結果
type Result struct {
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	Results      *bench.ResultSet // 成功したフェーズの結果（実行順）
	FailedPhases []string         // 失敗したフェーズのラベル
	DeletedKeys  int              // クリーンアップで削除したキー数
}

// Runner はベンチマークセッションのライフサイクルを統括する
// 接続確立 → フェーズ実行 → レポート生成 → クリーンアップ（必ず実行）→ 解放
type Runner struct {
	cfg  config.Config
	dial DialFunc
}

// NewRunner は新しいRunnerを作成する
func NewRunner(cfg config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// SetDialFunc は接続関数を差し替える（テスト用）
func (r *Runner) SetDialFunc(dial DialFunc) {
	r.dial = dial
}

// Run はベンチマークセッションを実行する
//
// エラーを返すのは接続確立がリトライ期限を使い切った場合のみ。
// フェーズの失敗は記録して続行し、クリーンアップと接続解放は
// 成功・失敗どちらの経路でも必ず実行される
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	sess, err := Establish(ctx, r.cfg, r.dial)
	if err != nil {
		return nil, err
	}

	result := &Result{
		StartTime: time.Now(),
		Results:   bench.NewResultSet(),
	}

	defer func() {
		// 実行コンテキストが取り消されていてもクリーンアップは走らせる
		cleanupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		result.DeletedKeys = Cleanup(cleanupCtx, sess.Store(), r.cfg.KeyPrefix)
		sess.Close()
		logger.Info("session", "Connection closed and resources cleaned up")
	}()

	r.runPhases(ctx, sess, result)
	r.writeArtifacts(result.Results, result.StartTime.Format("20060102_150405"))
	report.LogSummary(result.Results)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	return result, nil
}

// runPhases は固定順でベンチマークフェーズを実行する
// 各フェーズの失敗はフェーズ境界で捕捉され、後続フェーズは続行する
func (r *Runner) runPhases(ctx context.Context, sess *Session, result *Result) {
	runner := bench.NewRunner(sess.Store(), bench.Options{
		Prefix:       r.cfg.KeyPrefix,
		TTL:          r.cfg.KeyTTL,
		ShowProgress: r.cfg.ShowProgress,
	})

	phases := []struct {
		label string
		run   func() (float64, error)
	}{
		{bench.LabelSingleWrites, func() (float64, error) { return runner.SingleWrites(ctx, r.cfg.SmallOps) }},
		{bench.LabelPipelineWrites, func() (float64, error) { return runner.PipelineWrites(ctx, r.cfg.MediumOps, r.cfg.BatchSize) }},
		{bench.LabelSingleReads, func() (float64, error) { return runner.SingleReads(ctx, r.cfg.SmallOps) }},
		{bench.LabelPipelineReads, func() (float64, error) { return runner.PipelineReads(ctx, r.cfg.MediumOps, r.cfg.BatchSize) }},
	}

	for _, p := range phases {
		value, err := p.run()
		if err != nil {
			logger.Error("bench", "%s benchmark failed: %v", p.label, err)
			logger.Info("bench", "Continuing with other benchmarks...")
			result.FailedPhases = append(result.FailedPhases, p.label)
			continue
		}
		result.Results.Add(p.label, value)
	}

	writeSpeed, readSpeed, err := runner.LargeObject(ctx, r.cfg.PayloadMB, r.cfg.Chunks)
	if err != nil {
		logger.Error("bench", "Large object benchmark failed: %v", err)
		logger.Info("bench", "Continuing with other benchmarks...")
		result.FailedPhases = append(result.FailedPhases, "Large Object")
		return
	}
	result.Results.Add(bench.LabelLargeWrite, writeSpeed)
	result.Results.Add(bench.LabelLargeRead, readSpeed)
}

// writeArtifacts はチャートとJSONスナップショットを書き出す
// 出力の失敗はログに記録するだけで実行は継続する
func (r *Runner) writeArtifacts(results *bench.ResultSet, timestamp string) {
	if results.Len() == 0 {
		logger.Warn("report", "No benchmark results to report")
		return
	}

	if err := report.WriteCharts(results, r.cfg.OutputDir, timestamp); err != nil {
		logger.Error("report", "Failed to generate chart: %v", err)
	}

	path, err := report.WriteJSON(results, r.cfg.OutputDir, timestamp)
	if err != nil {
		logger.Error("report", "Failed to save results JSON: %v", err)
		return
	}
	logger.Info("report", "Benchmark results saved to %s", path)
}

// Report は実行結果の要約を整形して返す
func (r *Result) Report() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("================================================================\n")
	b.WriteString("                     VALKEY BENCHMARK REPORT\n")
	b.WriteString("================================================================\n\n")

	fmt.Fprintf(&b, "  Start Time:   %s\n", r.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  End Time:     %s\n", r.EndTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "  Duration:     %v\n\n", r.Duration.Round(time.Millisecond))

	b.WriteString("RESULTS\n-------\n")
	for _, e := range r.Results.Entries() {
		unit := "ops/sec"
		if e.IsMB() {
			unit = "MB/sec"
		}
		fmt.Fprintf(&b, "  %-22s %10.2f %s\n", e.Label+":", e.Value, unit)
	}

	if len(r.FailedPhases) > 0 {
		b.WriteString("\nFAILED PHASES\n-------------\n")
		for _, label := range r.FailedPhases {
			fmt.Fprintf(&b, "  %s\n", label)
		}
	}

	fmt.Fprintf(&b, "\nCLEANUP\n-------\n  Deleted Keys: %d\n", r.DeletedKeys)
	b.WriteString("\n================================================================")

	return b.String()
}
