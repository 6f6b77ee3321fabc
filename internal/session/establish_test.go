package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"valkey-bench/internal/config"
	"valkey-bench/internal/store"
)

// testConfig は短いバックオフでテスト全体を高速に保つ
func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.RetryInitialBackoff = 5 * time.Millisecond
	cfg.RetryMaxBackoff = 20 * time.Millisecond
	cfg.RetryDeadline = 200 * time.Millisecond
	return cfg
}

func TestEstablishFirstAttempt(t *testing.T) {
	f := store.NewFake()
	attempts := 0

	sess, err := Establish(context.Background(), testConfig(), func(config.Config) (store.Store, error) {
		attempts++
		return f, nil
	})
	if err != nil {
		t.Fatalf("expected establish to succeed: %v", err)
	}
	defer sess.Close()

	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
	if sess.Store() != f {
		t.Error("expected session to wrap the dialed store")
	}
}

func TestEstablishRetriesUntilHealthy(t *testing.T) {
	// state=OTHERが3回、その後に健全なスナップショット → 4回目で成功
	f := store.NewFake()
	f.HealthQueue = []store.ClusterHealth{
		{State: "fail", SlotsAssigned: 0},
		{State: "fail", SlotsAssigned: 5000},
		{State: "fail", SlotsAssigned: 16000},
	}

	attempts := 0
	start := time.Now()

	sess, err := Establish(context.Background(), testConfig(), func(config.Config) (store.Store, error) {
		attempts++
		return f, nil
	})
	if err != nil {
		t.Fatalf("expected establish to succeed after retries: %v", err)
	}
	defer sess.Close()

	if attempts != 4 {
		t.Errorf("expected 4 attempts, got %d", attempts)
	}

	// 3回の失敗の間に 5ms + 10ms + 20ms のバックオフを挟む
	if elapsed := time.Since(start); elapsed < 35*time.Millisecond {
		t.Errorf("expected elapsed >= backoff sum, got %v", elapsed)
	}

	// 失敗した試行ごとに部分的なハンドルが閉じられている
	if f.CloseCount != 3 {
		t.Errorf("expected 3 partial closes, got %d", f.CloseCount)
	}
}

func TestEstablishPartialSlotCoverage(t *testing.T) {
	// 到達可能でもスロットが揃うまでは成功しない
	f := store.NewFake()
	f.Health = store.ClusterHealth{State: "ok", SlotsAssigned: 16000}

	cfg := testConfig()
	cfg.RetryDeadline = 40 * time.Millisecond

	_, err := Establish(context.Background(), cfg, func(config.Config) (store.Store, error) {
		return f, nil
	})
	if err == nil {
		t.Fatal("expected establish to fail with partial slot coverage")
	}
	if !errors.Is(err, ErrClusterUnavailable) {
		t.Errorf("expected ErrClusterUnavailable, got %v", err)
	}
}

func TestEstablishDeadlineSurfacesLastFailure(t *testing.T) {
	dialErr := &store.Failure{Kind: store.KindTransport, Err: errors.New("dial tcp: connection refused")}

	cfg := testConfig()
	cfg.RetryDeadline = 30 * time.Millisecond

	_, err := Establish(context.Background(), cfg, func(config.Config) (store.Store, error) {
		return nil, dialErr
	})
	if err == nil {
		t.Fatal("expected establish to fail after deadline")
	}

	// 汎用エラーではなく最後に観測した失敗がラップされている
	if !errors.Is(err, ErrClusterUnavailable) {
		t.Errorf("expected ErrClusterUnavailable, got %v", err)
	}
	if !errors.Is(err, dialErr) {
		t.Errorf("expected last failure to be wrapped, got %v", err)
	}

	f, ok := store.Classify(err)
	if !ok {
		t.Fatal("expected wrapped failure to classify")
	}
	if f.Kind != store.KindTransport {
		t.Errorf("expected transport kind, got %v", f.Kind)
	}
}

func TestEstablishNonRetryableError(t *testing.T) {
	attempts := 0
	fatal := errors.New("ERR invalid configuration")

	_, err := Establish(context.Background(), testConfig(), func(config.Config) (store.Store, error) {
		attempts++
		return nil, fatal
	})
	if err == nil {
		t.Fatal("expected establish to fail")
	}
	if !errors.Is(err, fatal) {
		t.Errorf("expected non-retryable error to propagate, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected no retries for non-retryable error, got %d attempts", attempts)
	}
	if errors.Is(err, ErrClusterUnavailable) {
		t.Error("expected non-retryable error to not be tagged unavailable")
	}
}

func TestEstablishContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := store.NewFake()
	f.Health = store.ClusterHealth{State: "fail"}

	_, err := Establish(ctx, testConfig(), func(config.Config) (store.Store, error) {
		return f, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context cancellation to surface, got %v", err)
	}
}

func TestSessionCloseOnce(t *testing.T) {
	f := store.NewFake()

	sess, err := Establish(context.Background(), testConfig(), func(config.Config) (store.Store, error) {
		return f, nil
	})
	if err != nil {
		t.Fatalf("expected establish to succeed: %v", err)
	}

	sess.Close()
	sess.Close()
	sess.Close()

	if f.CloseCount != 1 {
		t.Errorf("expected exactly one close, got %d", f.CloseCount)
	}
}
