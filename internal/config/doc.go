// Package config はベンチマークの設定を管理する。
//
// 設定はコンパイル時のデフォルト値（DefaultConfig）を基本とし、
// 作業ディレクトリに valkey-bench.yaml が存在する場合のみ上書きされる。
// CLIフラグは提供しない。
//
// # 設定ファイル例
//
//	cluster:
//	  seed_addrs:
//	    - "127.0.0.1:6000"
//	  pool_size: 100
//	  socket_timeout: 5s
//	retry:
//	  initial_backoff: 1s
//	  max_backoff: 10s
//	  deadline: 30s
//	benchmark:
//	  small_ops: 1000
//	  medium_ops: 5000
//	  payload_mb: 50
//	output:
//	  dir: benchmarks
package config
