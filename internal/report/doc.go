// Package report はベンチマーク結果の出力を担当する。
//
// 結果はops/sec系とMB/sec系に分割され、それぞれ棒グラフPNGとして
// 描画される。併せて2桁丸めのJSONスナップショットを書き出す。
// ファイル名にはタイムスタンプが含まれる:
//
//	valkey_benchmark_ops_<timestamp>.png
//	valkey_benchmark_mb_<timestamp>.png
//	valkey_benchmark_results_<timestamp>.json
package report
