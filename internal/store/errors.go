package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
)

// Kind はリトライ可能な失敗の閉じた分類
type Kind int

const (
	KindTransport   Kind = iota // 接続断、プール枯渇など
	KindTimeout                 // ソケット/コンテキストのタイムアウト
	KindClusterDown             // CLUSTERDOWN応答
	KindTopology                // MOVED/ASK/スロット関連エラー
	KindUnhealthy               // ヘルスチェック不合格
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindClusterDown:
		return "cluster-down"
	case KindTopology:
		return "topology"
	case KindUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Failure はタグ付きのリトライ可能な失敗
// リトライポリシーはこの閉集合のみを対象にする
type Failure struct {
	Kind Kind
	Err  error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// NewFailure はタグ付き失敗を作成する
func NewFailure(kind Kind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}

// Unhealthy はヘルスチェック不合格の失敗を作成する
func Unhealthy(h ClusterHealth) *Failure {
	return &Failure{
		Kind: KindUnhealthy,
		Err:  fmt.Errorf("cluster not healthy: state=%s slots_assigned=%d", h.State, h.SlotsAssigned),
	}
}

// Classify はエラーをリトライ可能な失敗に分類する
// 分類できないエラーはリトライ対象外として (nil, false) を返す
func Classify(err error) (*Failure, bool) {
	if err == nil {
		return nil, false
	}

	// 既にタグ付きならそのまま
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return NewFailure(KindTimeout, err), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NewFailure(KindTimeout, err), true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return NewFailure(KindTransport, err), true
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NewFailure(KindTransport, err), true
	}

	// サーバ応答のエラーは先頭トークンで判別する
	msg := err.Error()
	switch {
	case strings.HasPrefix(msg, "CLUSTERDOWN"):
		return NewFailure(KindClusterDown, err), true
	case strings.HasPrefix(msg, "MOVED"), strings.HasPrefix(msg, "ASK"),
		strings.HasPrefix(msg, "CROSSSLOT"), strings.HasPrefix(msg, "TRYAGAIN"):
		return NewFailure(KindTopology, err), true
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection pool timeout"),
		strings.Contains(msg, "client is closed"):
		return NewFailure(KindTransport, err), true
	case strings.Contains(msg, "i/o timeout"):
		return NewFailure(KindTimeout, err), true
	}

	return nil, false
}

// IsRetryable はエラーがリトライ対象かどうかを返す
func IsRetryable(err error) bool {
	_, ok := Classify(err)
	return ok
}
