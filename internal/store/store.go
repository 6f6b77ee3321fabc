package store

import (
	"context"
	"time"
)

// FullSlotCount はクラスタの全ハッシュスロット数
const FullSlotCount = 16384

// HealthyState は健全なクラスタ状態を表す値
const HealthyState = "ok"

// ClusterHealth はクラスタのヘルススナップショット
type ClusterHealth struct {
	State         string // cluster_state の値
	SlotsAssigned int    // 割り当て済みスロット数
}

// Usable はベンチマークに使用可能な状態かどうかを返す
// 個々のノードに到達できてもスロットが揃うまでは使用不可
func (h ClusterHealth) Usable() bool {
	return h.State == HealthyState && h.SlotsAssigned == FullSlotCount
}

// Reply はパイプライン内の1操作の結果
type Reply struct {
	Value   string // GETの結果値
	Missing bool   // GETでキーが存在しなかった
	Err     error  // 操作単位のエラー
}

// Pipeline は1往復にまとめる操作のバッチ
// キューイングした順にExecの結果が並ぶ
type Pipeline interface {
	Set(key, value string, ttl time.Duration)
	Get(key string)
	Del(key string)
	Exec(ctx context.Context) ([]Reply, error)
}

// Store はクラスタクライアントが提供する操作面
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Scan(ctx context.Context, cursor uint64, match string, count int64) ([]string, uint64, error)
	Del(ctx context.Context, key string) error
	Pipeline() Pipeline
	ClusterInfo(ctx context.Context) (ClusterHealth, error)
	Close() error
}
