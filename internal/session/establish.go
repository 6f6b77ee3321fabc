package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"valkey-bench/internal/config"
	"valkey-bench/internal/logger"
	"valkey-bench/internal/store"
)

// ErrClusterUnavailable はリトライ期限内に健全な接続を得られなかったことを表す
// 最後に観測した失敗を必ずラップする
var ErrClusterUnavailable = errors.New("cluster unavailable")

// DialFunc はクラスタクライアントを構築する
// テストではFakeを返す実装に差し替えられる
type DialFunc func(cfg config.Config) (store.Store, error)

// defaultDial はgo-redisのクラスタクライアントを構築する
// 構築時点では部分的なスロットカバレッジを許容する
// （ヘルスチェックはEstablish側で明示的に行う）
func defaultDial(cfg config.Config) (store.Store, error) {
	return store.Open(store.ClusterConfig{
		Addrs:           cfg.SeedAddrs,
		PoolSize:        cfg.PoolSize,
		SocketTimeout:   cfg.SocketTimeout,
		ConnMaxIdleTime: cfg.HealthCheckInterval,
	}), nil
}

// Session は確立済みのクラスタ接続を表す
// ベンチマーク1回分の間オーケストレーション層が専有し、
// Closeは経路によらず正確に一度だけ実行される
type Session struct {
	store     store.Store
	closeOnce sync.Once
}

// Store は下位の操作面を返す
func (s *Session) Store() store.Store {
	return s.store
}

// Close は接続を解放する。複数回呼んでも二度目以降は何もしない
// 解放自体の失敗はログに記録して飲み込む（元の実行結果を覆い隠さない）
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.store.Close(); err != nil {
			logger.Error("session", "Error closing connection: %v", err)
		}
	})
}

// Establish はリトライ付きでクラスタへの健全な接続を確立する
//
// 接続の構築とCLUSTER INFOによるヘルス検証（state=ok かつ全スロット割り当て済み）
// の両方が通って初めて成功となる。リトライ可能な失敗は指数バックオフで
// 再試行し、初回試行からの経過時間が期限を超えたら最後の失敗を
// ErrClusterUnavailableにラップして返す
func Establish(ctx context.Context, cfg config.Config, dial DialFunc) (*Session, error) {
	if dial == nil {
		dial = defaultDial
	}

	logger.Info("session", "Connecting to Valkey cluster...")

	start := time.Now()
	backoff := cfg.RetryInitialBackoff
	attempt := 0
	var lastFailure error

	for {
		attempt++

		st, err := connectOnce(ctx, cfg, dial)
		if err == nil {
			logger.Info("session", "Connected to cluster successfully (attempt %d)", attempt)
			return &Session{store: st}, nil
		}

		failure, retryable := store.Classify(err)
		if !retryable {
			return nil, fmt.Errorf("connect to cluster: %w", err)
		}
		lastFailure = failure

		if time.Since(start) >= cfg.RetryDeadline {
			break
		}

		logger.Warn("session", "Connection attempt %d failed (%s), retrying in %v: %v",
			attempt, failure.Kind, backoff, failure.Err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff = min(backoff*2, cfg.RetryMaxBackoff)
	}

	return nil, fmt.Errorf("%w after %d attempts in %v: %w",
		ErrClusterUnavailable, attempt, time.Since(start).Round(time.Millisecond), lastFailure)
}

// connectOnce は1回分の接続試行を行う
// ヘルス検証に失敗した場合は部分的に開いたハンドルを閉じてから失敗を返す
func connectOnce(ctx context.Context, cfg config.Config, dial DialFunc) (store.Store, error) {
	st, err := dial(cfg)
	if err != nil {
		return nil, err
	}

	health, err := st.ClusterInfo(ctx)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if !health.Usable() {
		_ = st.Close()
		return nil, store.Unhealthy(health)
	}

	return st, nil
}
