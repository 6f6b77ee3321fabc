// Package bench は固定ワークロードのベンチマークフェーズを実装する。
//
// 各フェーズは単調時計で計測した純粋な逐次処理であり、
// N回の操作を実行してops/sec（バイト系はMB/sec）を算出する。
//
// フェーズは固定順で実行される:
//
//  1. 単発SET
//  2. パイプラインSET
//  3. 単発GET（事前投入あり）
//  4. パイプラインGET（事前投入あり）
//  5. ラージオブジェクト（単一キー vs チャンク分割の比較）
//
// 書き込むキーは全て予約プレフィックス配下にあり、TTL付きで
// クリーンアップ失敗時の影響範囲を限定する。読み戻しの欠損や
// サイズ不一致は警告/エラーとして記録されるが、実行は中断しない。
package bench
