package bench

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"valkey-bench/internal/logger"
	"valkey-bench/internal/metrics"
	"valkey-bench/internal/store"
)

// 結果ラベル
const (
	LabelSingleWrites   = "SET (single)"
	LabelPipelineWrites = "SET (pipeline)"
	LabelSingleReads    = "GET (single)"
	LabelPipelineReads  = "GET (pipeline)"
	LabelLargeWrite     = "Large Write (MB/s)"
	LabelLargeRead      = "Large Read (MB/s)"
)

// Options はワークロードの設定
type Options struct {
	Prefix       string        // テストキーの予約プレフィックス
	TTL          time.Duration // 書き込むキーのTTL
	ShowProgress bool          // プログレスバー表示
}

// Runner は固定ワークロードのベンチマークを実行する
type Runner struct {
	store store.Store
	opts  Options
}

// NewRunner は新しいRunnerを作成する
func NewRunner(st store.Store, opts Options) *Runner {
	return &Runner{store: st, opts: opts}
}

// newBar はプログレスバーを作成する（無効時はnil）
func (r *Runner) newBar(n int, desc string) *progressbar.ProgressBar {
	if !r.opts.ShowProgress {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetDescription(desc),
		progressbar.OptionClearOnFinish(),
	)
}

func advance(bar *progressbar.ProgressBar, n int) {
	if bar != nil {
		_ = bar.Add(n)
	}
}

// SingleWrites は単発SETをn回実行してops/secを返す
func (r *Runner) SingleWrites(ctx context.Context, n int) (float64, error) {
	logger.Info("bench", "Benchmarking %d individual SET operations...", n)

	bar := r.newBar(n, LabelSingleWrites)
	rec := metrics.NewRecorder()

	start := time.Now()
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%ssingle:%d", r.opts.Prefix, i)
		value := fmt.Sprintf("test-value-%d-%d", i, 1000+rand.Intn(9000))

		opStart := time.Now()
		if err := r.store.Set(ctx, key, value, r.opts.TTL); err != nil {
			return 0, fmt.Errorf("single write %d: %w", i, err)
		}
		rec.Record(time.Since(opStart))
		advance(bar, 1)
	}

	elapsed := time.Since(start).Seconds()
	opsPerSec := float64(n) / elapsed

	logger.Info("bench", "Single writes: %.2f ops/sec (%.2fs for %d operations, avg=%v p99=%v)",
		opsPerSec, elapsed, n, rec.Avg(), rec.P99())
	return opsPerSec, nil
}

// PipelineWrites はバッチサイズ単位のパイプラインSETをn回分実行してops/secを返す
func (r *Runner) PipelineWrites(ctx context.Context, n, batchSize int) (float64, error) {
	logger.Info("bench", "Benchmarking %d pipelined SET operations (batch size: %d)...", n, batchSize)

	bar := r.newBar(n, LabelPipelineWrites)
	rec := metrics.NewRecorder()

	start := time.Now()
	for batchStart := 0; batchStart < n; batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, n)
		pipe := r.store.Pipeline()

		for i := batchStart; i < batchEnd; i++ {
			key := fmt.Sprintf("%sbatch:%d", r.opts.Prefix, i)
			value := fmt.Sprintf("test-batch-value-%d-%d", i, 1000+rand.Intn(9000))
			pipe.Set(key, value, r.opts.TTL)
		}

		batchClock := time.Now()
		if _, err := pipe.Exec(ctx); err != nil {
			return 0, fmt.Errorf("pipeline write batch at %d: %w", batchStart, err)
		}
		rec.Record(time.Since(batchClock))
		advance(bar, batchEnd-batchStart)
	}

	elapsed := time.Since(start).Seconds()
	opsPerSec := float64(n) / elapsed

	logger.Info("bench", "Pipelined writes: %.2f ops/sec (%.2fs for %d operations, batch avg=%v p99=%v)",
		opsPerSec, elapsed, n, rec.Avg(), rec.P99())
	return opsPerSec, nil
}

// SingleReads はキーを事前投入した上で単発GETをn回実行してops/secを返す
func (r *Runner) SingleReads(ctx context.Context, n int) (float64, error) {
	logger.Info("bench", "Benchmarking %d individual GET operations...", n)

	// 読み出し対象を先に書き込む
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%sread:%d", r.opts.Prefix, i)
		if err := r.store.Set(ctx, key, fmt.Sprintf("read-value-%d", i), r.opts.TTL); err != nil {
			return 0, fmt.Errorf("populate read key %d: %w", i, err)
		}
	}

	bar := r.newBar(n, LabelSingleReads)
	rec := metrics.NewRecorder()

	start := time.Now()
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%sread:%d", r.opts.Prefix, i)

		opStart := time.Now()
		_, found, err := r.store.Get(ctx, key)
		if err != nil {
			return 0, fmt.Errorf("single read %d: %w", i, err)
		}
		rec.Record(time.Since(opStart))
		if !found {
			// 書いた直後のキーが読めないのは整合性かTTLの異常。中断はしない
			logger.Warn("bench", "Failed to read key %s", key)
		}
		advance(bar, 1)
	}

	elapsed := time.Since(start).Seconds()
	opsPerSec := float64(n) / elapsed

	logger.Info("bench", "Single reads: %.2f ops/sec (%.2fs for %d operations, avg=%v p99=%v)",
		opsPerSec, elapsed, n, rec.Avg(), rec.P99())
	return opsPerSec, nil
}

// PipelineReads はキーを事前投入した上でパイプラインGETをn回分実行してops/secを返す
func (r *Runner) PipelineReads(ctx context.Context, n, batchSize int) (float64, error) {
	logger.Info("bench", "Benchmarking %d pipelined GET operations (batch size: %d)...", n, batchSize)

	// 読み出し対象を1往復で書き込む
	populate := r.store.Pipeline()
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("%sbatch-read:%d", r.opts.Prefix, i)
		populate.Set(key, fmt.Sprintf("batch-read-value-%d", i), r.opts.TTL)
	}
	if _, err := populate.Exec(ctx); err != nil {
		return 0, fmt.Errorf("populate pipeline read keys: %w", err)
	}

	bar := r.newBar(n, LabelPipelineReads)
	rec := metrics.NewRecorder()

	start := time.Now()
	for batchStart := 0; batchStart < n; batchStart += batchSize {
		batchEnd := min(batchStart+batchSize, n)
		pipe := r.store.Pipeline()

		for i := batchStart; i < batchEnd; i++ {
			pipe.Get(fmt.Sprintf("%sbatch-read:%d", r.opts.Prefix, i))
		}

		batchClock := time.Now()
		replies, err := pipe.Exec(ctx)
		if err != nil {
			return 0, fmt.Errorf("pipeline read batch at %d: %w", batchStart, err)
		}
		rec.Record(time.Since(batchClock))

		for i, reply := range replies {
			if reply.Missing {
				logger.Warn("bench", "Failed to read key %sbatch-read:%d", r.opts.Prefix, batchStart+i)
			}
		}
		advance(bar, batchEnd-batchStart)
	}

	elapsed := time.Since(start).Seconds()
	opsPerSec := float64(n) / elapsed

	logger.Info("bench", "Pipelined reads: %.2f ops/sec (%.2fs for %d operations, batch avg=%v p99=%v)",
		opsPerSec, elapsed, n, rec.Avg(), rec.P99())
	return opsPerSec, nil
}

// LargeObject はラージオブジェクトの書き込み/読み出し速度（MB/sec）を測定する
// 単一キーとチャンク分割の両戦略を試し、それぞれ速い方を返す
func (r *Runner) LargeObject(ctx context.Context, sizeMB, chunks int) (writeSpeed, readSpeed float64, err error) {
	logger.Info("bench", "Starting large object benchmark (%dMB)...", sizeMB)

	payload := GeneratePayload(sizeMB)
	totalSize := len(payload)

	// 戦略1: 単一キーに書き込む
	keySingle := r.opts.Prefix + "large_object:single"
	start := time.Now()
	if err := r.store.Set(ctx, keySingle, payload, r.opts.TTL); err != nil {
		return 0, 0, fmt.Errorf("large object single write: %w", err)
	}
	singleWriteTime := time.Since(start).Seconds()
	singleWriteSpeed := float64(sizeMB) / singleWriteTime
	logger.Info("bench", "Large object single write: %.2f MB/sec (%.2fs for %dMB)",
		singleWriteSpeed, singleWriteTime, sizeMB)

	// 戦略2: チャンクに分割して1往復で書き込む
	chunkSize := totalSize / chunks
	start = time.Now()
	pipe := r.store.Pipeline()
	for i := 0; i < chunks; i++ {
		startIdx := i * chunkSize
		endIdx := startIdx + chunkSize
		if i == chunks-1 {
			endIdx = totalSize
		}
		pipe.Set(fmt.Sprintf("%slarge_object:chunk:%d", r.opts.Prefix, i), payload[startIdx:endIdx], r.opts.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("large object chunked write: %w", err)
	}
	chunkedWriteTime := time.Since(start).Seconds()
	chunkedWriteSpeed := float64(sizeMB) / chunkedWriteTime
	logger.Info("bench", "Large object chunked write (%d chunks): %.2f MB/sec (%.2fs)",
		chunks, chunkedWriteSpeed, chunkedWriteTime)

	// 単一キーを読み戻す
	start = time.Now()
	retrieved, found, err := r.store.Get(ctx, keySingle)
	if err != nil {
		return 0, 0, fmt.Errorf("large object single read: %w", err)
	}
	singleReadTime := time.Since(start).Seconds()
	singleReadSpeed := float64(sizeMB) / singleReadTime
	logger.Info("bench", "Large object single read: %.2f MB/sec (%.2fs)", singleReadSpeed, singleReadTime)

	// サイズ検証。相違は報告のみで続行する
	if !found {
		logger.Error("bench", "Large object key %s missing on read-back", keySingle)
	} else if len(retrieved) != totalSize {
		logger.Error("bench", "Data size mismatch on single read: expected %d, got %d", totalSize, len(retrieved))
	}

	// チャンクを1往復で読み戻す
	start = time.Now()
	pipe = r.store.Pipeline()
	for i := 0; i < chunks; i++ {
		pipe.Get(fmt.Sprintf("%slarge_object:chunk:%d", r.opts.Prefix, i))
	}
	replies, err := pipe.Exec(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("large object chunked read: %w", err)
	}
	chunkedReadTime := time.Since(start).Seconds()
	chunkedReadSpeed := float64(sizeMB) / chunkedReadTime
	logger.Info("bench", "Large object chunked read (%d chunks): %.2f MB/sec (%.2fs)",
		chunks, chunkedReadSpeed, chunkedReadTime)

	// チャンクを再結合して検証
	var reconstructed strings.Builder
	reconstructed.Grow(totalSize)
	for i, reply := range replies {
		if reply.Missing {
			logger.Error("bench", "Large object chunk %d missing on read-back", i)
			continue
		}
		reconstructed.WriteString(reply.Value)
	}
	if reconstructed.Len() != totalSize {
		logger.Error("bench", "Data size mismatch on chunked read: expected %d, got %d",
			totalSize, reconstructed.Len())
	}

	// それぞれ速い方の戦略を採用する
	writeSpeed = max(singleWriteSpeed, chunkedWriteSpeed)
	readSpeed = max(singleReadSpeed, chunkedReadSpeed)
	return writeSpeed, readSpeed, nil
}
