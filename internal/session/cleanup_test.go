package session

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"valkey-bench/internal/store"
)

const testPrefix = "benchmark:test:"

func populate(t *testing.T, f *store.Fake, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		if err := f.Set(ctx, fmt.Sprintf("%skey:%04d", testPrefix, i), "v", 0); err != nil {
			t.Fatalf("failed to populate: %v", err)
		}
	}
}

func TestCleanupPipelined(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 2500) // 1000件ページで3ページ分
	_ = f.Set(context.Background(), "unrelated:key", "v", 0)

	deleted := Cleanup(context.Background(), f, testPrefix)

	if deleted != 2500 {
		t.Errorf("expected 2500 deleted, got %d", deleted)
	}
	if f.Len() != 1 {
		t.Errorf("expected only the unrelated key to remain, got %d keys", f.Len())
	}
	if _, found, _ := f.Get(context.Background(), "unrelated:key"); !found {
		t.Error("expected unrelated key to survive cleanup")
	}
}

func TestCleanupIdempotent(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 100)

	first := Cleanup(context.Background(), f, testPrefix)
	second := Cleanup(context.Background(), f, testPrefix)

	if first != 100 {
		t.Errorf("expected first cleanup to delete 100, got %d", first)
	}
	if second != 0 {
		t.Errorf("expected second cleanup to delete 0, got %d", second)
	}
}

func TestCleanupFallbackOnScanFailure(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 2500)
	// 主戦略の2ページ目のSCANで失敗させる
	f.ScanErrAt = 2

	deleted := Cleanup(context.Background(), f, testPrefix)

	// 主戦略が1ページ分削除し、代替戦略が残りを削除する
	if deleted != 2500 {
		t.Errorf("expected all 2500 keys deleted across strategies, got %d", deleted)
	}
	if f.Len() != 0 {
		t.Errorf("expected namespace fully drained, got %d keys", f.Len())
	}
}

func TestCleanupFallbackOnPipelineFailure(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 500)
	f.PipelineErrAt = 1

	deleted := Cleanup(context.Background(), f, testPrefix)

	if deleted != 500 {
		t.Errorf("expected fallback to delete all 500 keys, got %d", deleted)
	}
	if f.Len() != 0 {
		t.Errorf("expected namespace fully drained, got %d keys", f.Len())
	}
}

func TestCleanupBothStrategiesFail(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 100)
	// 主戦略と代替戦略の両方のSCANを失敗させる
	f.ScanErr = fmt.Errorf("scan unavailable")
	deleted := Cleanup(context.Background(), f, testPrefix)
	if deleted != 0 {
		t.Errorf("expected 0 deleted when both strategies fail, got %d", deleted)
	}

	// 両戦略失敗でもエラーは外に漏れず、キーは残る（TTLが最後の防衛線）
	f.ScanErr = nil
	remaining := Cleanup(context.Background(), f, testPrefix)
	if remaining != 100 {
		t.Errorf("expected a later run to drain the namespace, got %d", remaining)
	}
}

func TestCleanupNamespaceIsolation(t *testing.T) {
	f := store.NewFake()
	populate(t, f, 200)
	ctx := context.Background()
	_ = f.Set(ctx, "app:data:1", "v", 0)
	_ = f.Set(ctx, "app:data:2", "v", 0)

	Cleanup(ctx, f, testPrefix)

	// プレフィックス外のキーには削除が一切発行されていない
	for _, key := range f.DeletedKeys {
		if !strings.HasPrefix(key, testPrefix) {
			t.Errorf("cleanup deleted key %q outside the reserved namespace", key)
		}
	}
	if f.Len() != 2 {
		t.Errorf("expected 2 foreign keys to remain, got %d", f.Len())
	}
}
