package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fake はテスト用のインメモリStore実装
// 障害注入フックで失敗系のパスを再現できる
type Fake struct {
	mu           sync.Mutex
	data         map[string]string
	scanSnapshot []string

	// 障害注入フック
	ScanErr       error // 全Scanを失敗させる
	ScanErrAt     int   // N回目のScan呼び出しで一度だけ失敗させる（0で無効）
	PipelineErrAt int   // N回目のPipeline Execで一度だけ失敗させる（0で無効）
	SetErr        error // 全Setを失敗させる
	TruncateAt    int   // Getの結果をこの長さに切り詰める（0で無効）

	// ヘルスチェック応答
	Health      ClusterHealth   // HealthQueueが空のときの応答
	HealthQueue []ClusterHealth // 呼び出しごとに先頭から消費される応答列

	// 呼び出し記録
	ScanCalls   int
	ExecCalls   int
	DeletedKeys []string
	CloseCount  int
}

// NewFake は空のFakeを作成する
func NewFake() *Fake {
	return &Fake{
		data:   make(map[string]string),
		Health: ClusterHealth{State: HealthyState, SlotsAssigned: FullSlotCount},
	}
}

// Len は現在のキー数を返す
func (f *Fake) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

// Keys はソート済みの全キーを返す
func (f *Fake) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sortedKeysLocked("")
}

func (f *Fake) sortedKeysLocked(match string) []string {
	prefix := strings.TrimSuffix(match, "*")
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		if match == "" || strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Set はキーを書き込む
func (f *Fake) Set(_ context.Context, key, value string, _ time.Duration) error {
	if f.SetErr != nil {
		return f.SetErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

// Get はキーの値を読み出す
func (f *Fake) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	if !ok {
		return "", false, nil
	}
	if f.TruncateAt > 0 && len(value) > f.TruncateAt {
		value = value[:f.TruncateAt]
	}
	return value, true, nil
}

// Scan はカーソルベースでキーを列挙する
// 本物のSCANの準スナップショット保証に合わせて、カーソル0の時点の
// キー集合をスナップショットし、その中をページングする
func (f *Fake) Scan(_ context.Context, cursor uint64, match string, count int64) ([]string, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ScanCalls++
	if f.ScanErr != nil {
		return nil, 0, f.ScanErr
	}
	if f.ScanErrAt > 0 && f.ScanCalls == f.ScanErrAt {
		return nil, 0, fmt.Errorf("injected scan failure at call %d", f.ScanCalls)
	}

	if cursor == 0 {
		f.scanSnapshot = f.sortedKeysLocked(match)
	}

	keys := f.scanSnapshot
	start := int(cursor)
	if start >= len(keys) {
		return nil, 0, nil
	}

	end := start + int(count)
	if end >= len(keys) {
		return keys[start:], 0, nil
	}
	return keys[start:end], uint64(end), nil
}

// Del はキーを削除する
func (f *Fake) Del(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteLocked(key)
	return nil
}

func (f *Fake) deleteLocked(key string) {
	f.DeletedKeys = append(f.DeletedKeys, key)
	delete(f.data, key)
}

// Pipeline は新しいパイプラインを返す
func (f *Fake) Pipeline() Pipeline {
	return &fakePipeline{store: f}
}

// ClusterInfo はヘルススナップショットを返す
// HealthQueueがあれば先頭から消費する
func (f *Fake) ClusterInfo(_ context.Context) (ClusterHealth, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.HealthQueue) > 0 {
		h := f.HealthQueue[0]
		f.HealthQueue = f.HealthQueue[1:]
		return h, nil
	}
	return f.Health, nil
}

// Close は接続を閉じたことを記録する
func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CloseCount++
	return nil
}

type fakeOp struct {
	kind  string // "set" | "get" | "del"
	key   string
	value string
}

type fakePipeline struct {
	store *Fake
	ops   []fakeOp
}

func (p *fakePipeline) Set(key, value string, _ time.Duration) {
	p.ops = append(p.ops, fakeOp{kind: "set", key: key, value: value})
}

func (p *fakePipeline) Get(key string) {
	p.ops = append(p.ops, fakeOp{kind: "get", key: key})
}

func (p *fakePipeline) Del(key string) {
	p.ops = append(p.ops, fakeOp{kind: "del", key: key})
}

func (p *fakePipeline) Exec(_ context.Context) ([]Reply, error) {
	f := p.store
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ExecCalls++
	if f.PipelineErrAt > 0 && f.ExecCalls == f.PipelineErrAt {
		return nil, fmt.Errorf("injected pipeline failure at exec %d", f.ExecCalls)
	}

	replies := make([]Reply, 0, len(p.ops))
	for _, op := range p.ops {
		switch op.kind {
		case "set":
			f.data[op.key] = op.value
			replies = append(replies, Reply{})
		case "get":
			value, ok := f.data[op.key]
			if !ok {
				replies = append(replies, Reply{Missing: true})
				continue
			}
			if f.TruncateAt > 0 && len(value) > f.TruncateAt {
				value = value[:f.TruncateAt]
			}
			replies = append(replies, Reply{Value: value})
		case "del":
			f.deleteLocked(op.key)
			replies = append(replies, Reply{})
		}
	}
	p.ops = nil
	return replies, nil
}
