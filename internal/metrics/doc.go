// Package metrics はベンチマークフェーズのレイテンシ記録を提供する。
//
// Recorderは操作ごとのレイテンシを記録し、平均とP99を算出する。
// フェーズは逐次実行されるため、Recorderは同期を行わない。
//
// # 使用例
//
//	rec := metrics.NewRecorder()
//	for i := 0; i < n; i++ {
//		start := time.Now()
//		doOperation()
//		rec.Record(time.Since(start))
//	}
//	logger.Info("bench", "avg=%v p99=%v", rec.Avg(), rec.P99())
package metrics
