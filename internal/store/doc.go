// Package store はValkey/Redisクラスタに対する操作面を提供する。
//
// Storeインターフェースはベンチマークが必要とする操作
// （SET/GET/SCAN/DEL/パイプライン/CLUSTER INFO）のみを公開し、
// スロットルーティングや接続プーリングはクラスタクライアントに委ねる。
//
// # 実装
//
//   - Cluster: go-redisのClusterClientを包む本番実装
//   - Fake: 障害注入フック付きのインメモリ実装（テスト用）
//
// # 失敗の分類
//
// リトライ対象の失敗はFailureとして閉じた集合にタグ付けされる:
// Transport, Timeout, ClusterDown, Topology, Unhealthy。
// Classifyが生のエラーをこの集合へ写像し、分類できないエラーは
// リトライ対象外として扱われる。
package store
