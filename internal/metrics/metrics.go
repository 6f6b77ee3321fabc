package metrics

import (
	"sort"
	"time"
)

// Recorder は1フェーズ分のレイテンシを記録する
// ベンチマークフェーズは逐次実行のため同期は不要
type Recorder struct {
	count      uint64
	totalNs    uint64
	samples    []time.Duration
	maxSamples int
}

// NewRecorder は新しいRecorderを作成する
func NewRecorder() *Recorder {
	return &Recorder{
		samples:    make([]time.Duration, 0, 1000),
		maxSamples: 1000,
	}
}

// Record はひとつの操作のレイテンシを記録する
func (r *Recorder) Record(latency time.Duration) {
	r.count++
	r.totalNs += uint64(latency.Nanoseconds())
	if len(r.samples) < r.maxSamples {
		r.samples = append(r.samples, latency)
	}
}

// Count は記録された操作数を返す
func (r *Recorder) Count() uint64 {
	return r.count
}

// Avg は平均レイテンシを返す
func (r *Recorder) Avg() time.Duration {
	if r.count == 0 {
		return 0
	}
	return time.Duration(r.totalNs / r.count)
}

// P99 はP99レイテンシを返す（サンプルベース）
func (r *Recorder) P99() time.Duration {
	if len(r.samples) == 0 {
		return 0
	}

	// コピーしてソート
	sorted := make([]time.Duration, len(r.samples))
	copy(sorted, r.samples)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	idx := int(float64(len(sorted)) * 0.99)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Reset は記録をリセットする
func (r *Recorder) Reset() {
	r.count = 0
	r.totalNs = 0
	r.samples = r.samples[:0]
}
